package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gameshelf/gameshelf/internal/utils"
	"github.com/gameshelf/gameshelf/pkg/csvimport"
	"github.com/gameshelf/gameshelf/pkg/games"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// importCmd implements: gameshelf import <file.csv>
var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import a game collection spreadsheet export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := csvimport.LoadFile(args[0])
		if err != nil {
			return err
		}
		utils.Log.Infof("Loaded %d rows from %s", len(rows), args[0])

		db, release, err := openDB(true)
		if err != nil {
			return err
		}
		defer release()

		cols := columnsFromConfig()
		verbose, _ := cmd.Flags().GetBool("verbose")
		importer := csvimport.NewImporter(csvimport.Config{
			Repository: db,
			Adapter: func(r csvimport.RawRow) games.GameDraftSource {
				return csvimport.NewRowAdapterWithColumns(r, cols)
			},
			Log: utils.Log,
			OnRow: func(o csvimport.Outcome, total int) {
				if verbose {
					fmt.Printf("[%d/%d] %s %s\n", o.Row, total, o.Kind, o.Title)
				}
			},
		})

		summary, err := importer.Process(cmd.Context(), rows)
		if summary != nil {
			printImportSummary(summary)
		}
		if err != nil {
			return err
		}

		if match, _ := cmd.Flags().GetBool("match"); match {
			yes, _ := cmd.Flags().GetBool("yes")
			return runMatch(cmd, db, yes)
		}
		return nil
	},
}

func printImportSummary(s *csvimport.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "CREATED\tDUPLICATES\tSKIPPED\t")
	fmt.Fprintf(w, "%d\t%d\t%d\t\n", s.Created, s.Duplicates, s.Skipped)
	w.Flush()

	if len(s.DuplicateTitles) > 0 {
		fmt.Printf("\nDuplicates merged into existing games:\n  %s\n", strings.Join(s.DuplicateTitles, "\n  "))
	}
}

// defaultColumnConfig maps the import.columns.<field> keys to the default
// spreadsheet headers.
func defaultColumnConfig() map[string]string {
	d := csvimport.DefaultColumns()
	return map[string]string{
		"name":               d.Title,
		"platform_1":         d.Platforms[0],
		"platform_2":         d.Platforms[1],
		"platform_3":         d.Platforms[2],
		"price":              d.Price,
		"added":              d.Added,
		"source":             d.Source,
		"identifier":         d.Identifier,
		"play_priority":      d.PlayPriority,
		"played":             d.Played,
		"controller_support": d.ControllerSupport,
		"max_players":        d.MaxPlayers,
		"party_fit":          d.PartyFit,
		"review":             d.Review,
		"notes":              d.Notes,
		"genre":              d.Genre,
	}
}

// columnsFromConfig builds the column layout from import.columns.*,
// keeping the default header for any key left empty.
func columnsFromConfig() csvimport.Columns {
	col := func(field string) string {
		if v := strings.TrimSpace(viper.GetString("import.columns." + field)); v != "" {
			return v
		}
		return defaultColumnConfig()[field]
	}
	return csvimport.Columns{
		Title:             col("name"),
		Platforms:         [3]string{col("platform_1"), col("platform_2"), col("platform_3")},
		Price:             col("price"),
		Added:             col("added"),
		Source:            col("source"),
		Identifier:        col("identifier"),
		PlayPriority:      col("play_priority"),
		Played:            col("played"),
		ControllerSupport: col("controller_support"),
		MaxPlayers:        col("max_players"),
		PartyFit:          col("party_fit"),
		Review:            col("review"),
		Notes:             col("notes"),
		Genre:             col("genre"),
	}
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Bool("match", false, "Link imported copies to the catalog once the import finishes")
	importCmd.Flags().Bool("yes", false, "With --match and the review policy, accept every fuzzy candidate without asking")
	importCmd.Flags().BoolP("verbose", "v", false, "Print the outcome of every row")
}
