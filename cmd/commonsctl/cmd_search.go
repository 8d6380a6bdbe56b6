package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func searchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search members and fields to delegate to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := a.search.Search(cmd.Context(), args[0])
			if results.Fallback {
				cmd.Println(styleMuted.Render("Backend unreachable; showing offline suggestions only."))
			}

			if len(results.People) > 0 {
				cmd.Println(styleHeader.Render("Members"))
				for _, p := range results.People {
					line := fmt.Sprintf("  %-12s %s", p.ID, p.DisplayName)
					if p.TrustScore != nil {
						line += styleMuted.Render(fmt.Sprintf("  trust %.2f", *p.TrustScore))
					}
					if len(p.Domains) > 0 {
						line += styleMuted.Render("  [" + strings.Join(p.Domains, ", ") + "]")
					}
					cmd.Println(line)
				}
			}
			if len(results.Fields) > 0 {
				cmd.Println(styleHeader.Render("Fields"))
				for _, f := range results.Fields {
					line := fmt.Sprintf("  %-12s %s", f.ID, f.Label)
					if f.Trending {
						line += styleMuted.Render("  (trending)")
					}
					cmd.Println(line)
				}
			}
			if len(results.People) == 0 && len(results.Fields) == 0 {
				cmd.Println("No matches.")
			}
			return nil
		},
	}
	return cmd
}
