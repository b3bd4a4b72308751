package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/msto63/bayan/foundation/bayan/vocabulary"
)

func newKeywordsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "List keywords and native functions with their English and Arabic spellings",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			vocab := vocabulary.Default()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			fmt.Fprintln(w, "KEYWORD\tENGLISH\tARABIC")
			for _, name := range vocab.Keywords() {
				en, _ := vocab.Spelling(name, vocabulary.English)
				ar, _ := vocab.Spelling(name, vocabulary.Arabic)
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, en, ar)
			}

			aliases := vocab.Aliases()
			names := make([]string, 0, len(aliases))
			for alias := range aliases {
				names = append(names, alias)
			}
			sort.Strings(names)

			fmt.Fprintln(w)
			fmt.Fprintln(w, "ALIAS\tNATIVE")
			for _, alias := range names {
				fmt.Fprintf(w, "%s\t%s\n", alias, aliases[alias])
			}
			w.Flush()
		},
	}
}
