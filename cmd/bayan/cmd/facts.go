package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/msto63/bayan/internal/store"
)

func newFactsCmd(a *app) *cobra.Command {
	var dbPath string
	c := &cobra.Command{
		Use:   "facts",
		Short: "Inspect stored fact snapshots",
		Long: `Lists and prunes the fact snapshots written by 'bayan run --save' and
by the server. The database defaults to the [store] path of the
configuration.`,
	}
	c.PersistentFlags().StringVar(&dbPath, "facts-db", "", "fact snapshot database (default: [store] path)")

	var limit int
	snapshots := &cobra.Command{
		Use:   "snapshots",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			snaps, err := s.Snapshots(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPROGRAM\tCREATED\tFACTS\tSKIPPED")
			for _, snap := range snaps {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", snap.ID, displayPath(snap.Name),
					snap.CreatedAt.Local().Format("2006-01-02 15:04:05"), snap.Facts, snap.Skipped)
			}
			return w.Flush()
		},
	}
	snapshots.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of snapshots (0 for all)")

	var filter store.FactFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "Print the facts of a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			facts, err := s.Facts(cmd.Context(), filter)
			if err != nil {
				return err
			}
			for _, f := range facts {
				fmt.Fprintf(cmd.OutOrStdout(), "fact %s;\n", f.Text)
			}
			return nil
		},
	}
	list.Flags().StringVarP(&filter.SnapshotID, "snapshot", "s", "", "snapshot ID (default: latest)")
	list.Flags().StringVarP(&filter.Predicate, "predicate", "p", "", "only facts of this predicate")
	list.Flags().IntVarP(&filter.Limit, "limit", "n", 0, "maximum number of facts (0 for all)")

	var keep int
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			removed, err := s.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			if err := s.Vacuum(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d snapshot(s)\n", removed)
			return nil
		},
	}
	prune.Flags().IntVarP(&keep, "keep", "k", 10, "number of snapshots to keep")

	c.AddCommand(snapshots, list, prune)
	return c
}
