package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gameshelf/gameshelf/internal/utils"
	"github.com/gameshelf/gameshelf/pkg/reconcile"
	"github.com/gameshelf/gameshelf/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// matchCmd implements: gameshelf match
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Link copies without an identifier to catalog entries",
	Long: `Link copies without an identifier to catalog entries.

The threshold policy assigns exact name matches and fuzzy matches scoring at
least match.threshold, and lists everything else for review. The review policy
assigns only unique exact matches and asks before using a fuzzy candidate.
Copies that already have an identifier are never changed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, release, err := openDB(true)
		if err != nil {
			return err
		}
		defer release()

		yes, _ := cmd.Flags().GetBool("yes")
		return runMatch(cmd, db, yes)
	},
}

func runMatch(cmd *cobra.Command, db *storage.DB, yes bool) error {
	policy, err := reconcile.ParsePolicy(viper.GetString("match.policy"))
	if err != nil {
		return err
	}

	ix, err := loadIndex(cmd.Context(), db)
	if err != nil {
		return err
	}

	var confirm reconcile.Confirmer = newPromptConfirmer(os.Stdin, os.Stdout)
	if yes {
		confirm = reconcile.ConfirmFunc(func(string, string, int) (bool, error) { return true, nil })
	}

	engine, err := reconcile.NewEngine(reconcile.Config{
		Index:     ix,
		Store:     db,
		Platform:  viper.GetString("match.platform"),
		Policy:    policy,
		Threshold: viper.GetInt("match.threshold"),
		Confirm:   confirm,
		Log:       utils.Log,
	})
	if err != nil {
		return err
	}

	report, err := engine.Run(cmd.Context())
	if report != nil {
		printMatchReport(os.Stdout, report)
	}
	return err
}

func printMatchReport(out io.Writer, r *reconcile.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ASSIGNED\tNO MATCH\tAMBIGUOUS\tREVIEW\tDECLINED\t")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t\n", len(r.Assigned), len(r.NoMatches), len(r.Ambiguous), len(r.Review), len(r.Declined))
	w.Flush()

	if len(r.Review) > 0 {
		fmt.Fprintln(out, "\nNeeds review:")
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  TITLE\tCANDIDATE\tAPPID\tSCORE")
		for _, item := range r.Review {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%d\n", utils.Truncate(item.Copy.Title, 40), utils.Truncate(item.Candidate.Name, 40), item.Candidate.AppID, item.Score)
		}
		w.Flush()
	}

	if len(r.Ambiguous) > 0 {
		fmt.Fprintln(out, "\nAmbiguous:")
		for _, item := range r.Ambiguous {
			ids := make([]string, 0, len(item.Candidates))
			for _, c := range item.Candidates {
				ids = append(ids, c.AppID)
			}
			fmt.Fprintf(out, "  %s: %s\n", item.Copy.Title, strings.Join(ids, ", "))
		}
	}

	if len(r.NoMatches) > 0 {
		fmt.Fprintln(out, "\nNo match:")
		for _, c := range r.NoMatches {
			fmt.Fprintf(out, "  %s\n", c.Title)
		}
	}
}

// promptConfirmer asks on a terminal whether a fuzzy candidate is right.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm reads one answer line. Only y or yes accepts; end of input
// declines.
func (p *promptConfirmer) Confirm(title, candidate string, score int) (bool, error) {
	fmt.Fprintf(p.out, "%q -> %q (score %d). Assign? [y/N] ", title, candidate, score)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().String("platform", "Steam", "Platform whose copies are matched")
	matchCmd.Flags().String("policy", string(reconcile.PolicyThreshold), "Match policy: threshold or review")
	matchCmd.Flags().Int("threshold", reconcile.DefaultThreshold, "Minimum fuzzy score assigned by the threshold policy")
	matchCmd.Flags().Bool("yes", false, "Accept every fuzzy candidate the review policy would ask about")
	_ = viper.BindPFlag("match.platform", matchCmd.Flags().Lookup("platform"))
	_ = viper.BindPFlag("match.policy", matchCmd.Flags().Lookup("policy"))
	_ = viper.BindPFlag("match.threshold", matchCmd.Flags().Lookup("threshold"))
}
