package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/gameshelf/gameshelf/internal/utils"
	"github.com/gameshelf/gameshelf/pkg/coerce"
	"github.com/gameshelf/gameshelf/pkg/storage"
	"github.com/spf13/cobra"
)

// gameCmd represents the game command
var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Inspect and edit games in the collection",
}

var gameShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a game and its copies",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		db, release, err := openDB(false)
		if err != nil {
			return err
		}
		defer release()

		ref, err := db.FindByNameIExact(cmd.Context(), name)
		if err != nil {
			return err
		}
		if ref == nil {
			return fmt.Errorf("no game named %q", name)
		}
		g, err := db.GetGame(cmd.Context(), ref.ID)
		if err != nil {
			return err
		}
		printGame(os.Stdout, g)
		return nil
	},
}

var gameRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a game with all its copies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, release, err := openDB(true)
		if err != nil {
			return err
		}
		defer release()

		if err := db.Remove(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("game %s: %w", args[0], err)
			}
			return err
		}
		utils.Log.Infof("Removed game %s", args[0])
		return nil
	},
}

var gameDeleteCopyCmd = &cobra.Command{
	Use:   "delete-copy <copy-id>",
	Short: "Soft-delete one copy of a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCopyID(cmd, args[0], func(db *storage.DB, id int64) error {
			return db.SoftDeleteCopy(cmd.Context(), id)
		})
	},
}

var gameRestoreCopyCmd = &cobra.Command{
	Use:   "restore-copy <copy-id>",
	Short: "Restore a soft-deleted copy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCopyID(cmd, args[0], func(db *storage.DB, id int64) error {
			return db.RestoreCopy(cmd.Context(), id)
		})
	},
}

func withCopyID(cmd *cobra.Command, arg string, fn func(*storage.DB, int64) error) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid copy id %q", arg)
	}
	db, release, err := openDB(true)
	if err != nil {
		return err
	}
	defer release()

	if err := fn(db, id); err != nil {
		return fmt.Errorf("copy %d: %w", id, err)
	}
	return nil
}

func printGame(out io.Writer, g *storage.Game) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", g.ID)
	fmt.Fprintf(w, "Name:\t%s\n", g.Name)
	fmt.Fprintf(w, "Genres:\t%s\n", strings.Join(g.Genres, ", "))
	fmt.Fprintf(w, "Play priority:\t%s\n", optInt(g.PlayPriority))
	fmt.Fprintf(w, "Played:\t%s\n", optBool(g.Played))
	fmt.Fprintf(w, "Controller:\t%s\n", optBool(g.ControllerSupport))
	fmt.Fprintf(w, "Max players:\t%s\n", optInt(g.MaxPlayers))
	fmt.Fprintf(w, "Party fit:\t%s\n", optBool(g.PartyFit))
	fmt.Fprintf(w, "Review:\t%s\n", optInt(g.Review))
	w.Flush()
	if g.Notes != nil {
		fmt.Fprintf(out, "\n%s\n", *g.Notes)
	}

	if len(g.Copies) == 0 {
		return
	}
	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COPY\tPLATFORM\tADDED\tPRICE\tVENDOR\tIDENTIFIER\t")
	for _, c := range g.Copies {
		added, price := "-", "-"
		if c.Added != nil {
			added = c.Added.Format(coerce.DateLayout)
		}
		if c.Price != nil {
			price = c.Price.StringFixed(2)
		}
		platform := c.Platform
		if c.Deleted {
			platform += " (deleted)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t\n", c.ID, platform, added, price, dash(c.Vendor), dash(c.Identifier))
	}
	w.Flush()
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func optBool(v *bool) string {
	if v == nil {
		return "-"
	}
	if *v {
		return "yes"
	}
	return "no"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(gameCmd)
	gameCmd.AddCommand(gameShowCmd)
	gameCmd.AddCommand(gameRemoveCmd)
	gameCmd.AddCommand(gameDeleteCopyCmd)
	gameCmd.AddCommand(gameRestoreCopyCmd)
}
