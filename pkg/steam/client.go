// Package steam talks to the public Steam Web API: the full app list used
// to seed the catalog and the store's per-app details.
package steam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gameshelf/gameshelf/pkg/catalog"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const (
	DefaultAppListURL    = "https://api.steampowered.com/ISteamApps/GetAppList/v0002/?format=json"
	DefaultAppDetailsURL = "https://store.steampowered.com/api/appdetails"
	DefaultRetryMax      = 3

	userAgent = "gameshelf (+https://github.com/gameshelf/gameshelf)"
)

// ErrAppNotFound is returned when the store has no details for an app id.
var ErrAppNotFound = errors.New("steam app not found")

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Config wires a Client. Empty URLs fall back to the public endpoints.
type Config struct {
	AppListURL    string
	AppDetailsURL string
	Proxy         string
	RetryMax      int // negative = no retries, 0 = DefaultRetryMax
	Log           Logger
}

type Client struct {
	http       *retryablehttp.Client
	appList    string
	appDetails string
	log        Logger
}

// AppDetails is the subset of the store's appdetails payload gameshelf
// shows. Description is plain text.
type AppDetails struct {
	AppID           string
	Name            string
	Description     string
	Platforms       []string
	Metacritic      int
	MetacriticURL   string
	Categories      []string
	Genres          []string
	Recommendations int
}

func NewClient(cfg Config) (*Client, error) {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	switch {
	case cfg.RetryMax < 0:
		retryClient.RetryMax = 0
	case cfg.RetryMax == 0:
		retryClient.RetryMax = DefaultRetryMax
	default:
		retryClient.RetryMax = cfg.RetryMax
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %v", err)
		}
		retryClient.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	c := &Client{
		http:       retryClient,
		appList:    cfg.AppListURL,
		appDetails: cfg.AppDetailsURL,
		log:        cfg.Log,
	}
	if c.appList == "" {
		c.appList = DefaultAppListURL
	}
	if c.appDetails == "" {
		c.appDetails = DefaultAppDetailsURL
	}
	if c.log == nil {
		c.log = nopLogger{}
	}
	return c, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	c.log.Debugf("GET %s: %d (%d bytes)", rawURL, resp.StatusCode, len(body))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	return string(body), nil
}

// AppList downloads every public Steam app as catalog entries. Apps with a
// blank name are dropped.
func (c *Client) AppList(ctx context.Context) ([]catalog.Entry, error) {
	body, err := c.get(ctx, c.appList)
	if err != nil {
		return nil, err
	}
	apps := gjson.Get(body, "applist.apps")
	if !apps.IsArray() {
		return nil, errors.New("steam app list: missing applist.apps")
	}

	var entries []catalog.Entry
	apps.ForEach(func(_, app gjson.Result) bool {
		name := strings.TrimSpace(app.Get("name").String())
		appID := app.Get("appid").String()
		if name != "" && appID != "" {
			entries = append(entries, catalog.Entry{AppID: appID, Name: name})
		}
		return true
	})
	c.log.Infof("Found %d Steam apps", len(entries))
	return entries, nil
}

// AppDetails fetches the store page data for one app.
func (c *Client) AppDetails(ctx context.Context, appID string) (*AppDetails, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" || strings.Trim(appID, "0123456789") != "" {
		return nil, fmt.Errorf("%q: %w", appID, ErrAppNotFound)
	}
	u, err := url.Parse(c.appDetails)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("appids", appID)
	u.RawQuery = q.Encode()

	body, err := c.get(ctx, u.String())
	if err != nil {
		return nil, err
	}

	root := gjson.Get(body, appID)
	if !root.Get("success").Bool() {
		return nil, fmt.Errorf("%s: %w", appID, ErrAppNotFound)
	}
	data := root.Get("data")

	d := &AppDetails{
		AppID:           appID,
		Name:            data.Get("name").String(),
		Description:     htmlToText(data.Get("short_description").String()),
		Metacritic:      int(data.Get("metacritic.score").Int()),
		MetacriticURL:   data.Get("metacritic.url").String(),
		Categories:      descriptions(data.Get("categories")),
		Genres:          descriptions(data.Get("genres")),
		Recommendations: int(data.Get("recommendations.total").Int()),
	}
	data.Get("platforms").ForEach(func(name, supported gjson.Result) bool {
		if supported.Type == gjson.True {
			d.Platforms = append(d.Platforms, name.String())
		}
		return true
	})
	return d, nil
}

func descriptions(list gjson.Result) []string {
	var out []string
	for _, item := range list.Get("#.description").Array() {
		out = append(out, item.String())
	}
	return out
}

var lineBreak = regexp.MustCompile(`(?i)<br\s*/?>`)

// htmlToText flattens the store's HTML snippets into one line of text.
func htmlToText(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(lineBreak.ReplaceAllString(s, " ")))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
