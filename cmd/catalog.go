package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gameshelf/gameshelf/internal/utils"
	"github.com/gameshelf/gameshelf/pkg/steam"
	"github.com/spf13/cobra"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local copy of the Steam catalog",
}

var catalogSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download the Steam app list into the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newSteamClient()
		if err != nil {
			return err
		}
		entries, err := client.AppList(cmd.Context())
		if err != nil {
			return fmt.Errorf("downloading app list: %w", err)
		}

		db, release, err := openDB(true)
		if err != nil {
			return err
		}
		defer release()

		inserted, err := db.UpsertCatalogEntries(cmd.Context(), entries)
		if err != nil {
			return err
		}
		total, err := db.CatalogCount(cmd.Context())
		if err != nil {
			return err
		}
		utils.Log.Infof("Added %d new catalog entries, %d in total", inserted, total)
		return nil
	},
}

var catalogDetailsCmd = &cobra.Command{
	Use:   "details <appid>",
	Short: "Show the Steam store details of an app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newSteamClient()
		if err != nil {
			return err
		}
		d, err := client.AppDetails(cmd.Context(), args[0])
		if errors.Is(err, steam.ErrAppNotFound) {
			return fmt.Errorf("no Steam app with id %s", args[0])
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "App ID:\t%s\n", d.AppID)
		fmt.Fprintf(w, "Name:\t%s\n", d.Name)
		fmt.Fprintf(w, "Platforms:\t%s\n", strings.Join(d.Platforms, ", "))
		fmt.Fprintf(w, "Genres:\t%s\n", strings.Join(d.Genres, ", "))
		fmt.Fprintf(w, "Categories:\t%s\n", strings.Join(d.Categories, ", "))
		if d.Metacritic > 0 {
			fmt.Fprintf(w, "Metacritic:\t%d (%s)\n", d.Metacritic, d.MetacriticURL)
		}
		fmt.Fprintf(w, "Recommendations:\t%d\n", d.Recommendations)
		w.Flush()
		if d.Description != "" {
			fmt.Printf("\n%s\n", d.Description)
		}
		return nil
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Show the catalog entries closest to a name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		limit, _ := cmd.Flags().GetInt("limit")

		db, release, err := openDB(false)
		if err != nil {
			return err
		}
		defer release()

		return searchCatalog(cmd.Context(), db, os.Stdout, name, limit)
	},
}

func searchCatalog(ctx context.Context, db catalogSource, out io.Writer, name string, limit int) error {
	ix, err := loadIndex(ctx, db)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "APPID\tNAME\tSCORE\tMATCH")
	exact := ix.Exact(name)
	shown := make(map[string]bool, len(exact))
	for _, e := range exact {
		fmt.Fprintf(w, "%s\t%s\t100\texact\n", e.AppID, e.Name)
		shown[e.AppID] = true
	}
	fuzzy := 0
	for _, c := range ix.Top(name, limit+len(exact)) {
		if fuzzy == limit {
			break
		}
		if shown[c.AppID] {
			continue
		}
		shown[c.AppID] = true
		fmt.Fprintf(w, "%s\t%s\t%d\tfuzzy\n", c.AppID, c.Name, c.Score)
		fuzzy++
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogSyncCmd)
	catalogCmd.AddCommand(catalogDetailsCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogSearchCmd.Flags().IntP("limit", "n", 5, "Number of fuzzy candidates to show")
}
