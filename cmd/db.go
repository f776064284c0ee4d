package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/gameshelf/gameshelf/internal/utils"
	"github.com/gameshelf/gameshelf/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the gameshelf database",
}

// shellCmd hands the database to the sqlite3 CLI.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the collection database in the sqlite3 CLI",
	Long:  "Prints the table layout of the collection database and then opens it in sqlite3 for ad-hoc queries.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := utils.GetAbsDBPath(viper.GetString("db.path"))
		if err != nil {
			return err
		}
		if _, err := os.Stat(dbPath); err != nil {
			return fmt.Errorf("no collection database at %s, run an import first", dbPath)
		}
		sqlite3, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("db shell needs the sqlite3 binary: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Tables in %s:\n", dbPath)
		tables := exec.Command(sqlite3, dbPath, ".tables")
		tables.Stdout = out
		tables.Stderr = os.Stderr
		if err := tables.Run(); err != nil {
			utils.Log.Warnf("Listing tables: %v", err)
		}
		fmt.Fprintln(out, "Type .schema <table> for columns, .quit or Ctrl+D to leave.")

		sh := exec.Command(sqlite3, "-header", "-column", dbPath)
		sh.Stdin = os.Stdin
		sh.Stdout = os.Stdout
		sh.Stderr = os.Stderr
		return sh.Run()
	},
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints statistics about the copies in the database.",
	Long:  "Prints per-platform copy counts, how many copies are linked to the catalog and the money spent.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, release, err := openDB(false)
		if err != nil {
			return err
		}
		defer release()

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No data in the database to generate stats.")
			return nil
		}
		printStats(os.Stdout, stats)
		return nil
	},
}

func printStats(out io.Writer, stats []storage.PlatformStats) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "PLATFORM\tGAMES\tCOPIES\tLINKED\tUNLINKED\tSPENT\t")

	var totalCopies, totalResolved, totalUnresolved int
	totalSpent := decimal.Zero
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\t\n", s.Platform, s.GameCount, s.CopyCount, s.Resolved, s.Unresolved, s.Spent.StringFixed(2))
		totalCopies += s.CopyCount
		totalResolved += s.Resolved
		totalUnresolved += s.Unresolved
		totalSpent = totalSpent.Add(s.Spent)
	}

	fmt.Fprintln(w, " \t \t \t \t \t \t")
	fmt.Fprintf(w, "TOTAL\t \t%d\t%d\t%d\t%s\t\n", totalCopies, totalResolved, totalUnresolved, totalSpent.StringFixed(2))

	w.Flush()
}

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List games without any live copy",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, release, err := openDB(false)
		if err != nil {
			return err
		}
		defer release()

		orphans, err := db.ListOrphanedGames(cmd.Context())
		if err != nil {
			return err
		}
		for _, g := range orphans {
			fmt.Printf("%s\t%s\n", g.ID, g.Name)
		}
		utils.Log.Debugf("%d orphaned games", len(orphans))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(shellCmd)
	dbCmd.AddCommand(statsCmd)
	dbCmd.AddCommand(orphansCmd)
}
