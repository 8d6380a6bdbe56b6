package main

import (
	"fmt"
	"sort"
	"strings"

	"commons/client/internal/delegation"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// The transparency views are independent reads; each command fetches only
// its own aggregate, and a failure renders inline with a retry hint
// instead of aborting the whole CLI session.

func chainsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "Show your delegation chains grouped by field",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.views.MyChains(cmd.Context())
			if err != nil {
				return retryableError("your chains", err)
			}
			if len(groups) == 0 {
				cmd.Println("You have no delegation chains yet.")
				return nil
			}
			for _, group := range groups {
				cmd.Println(styleHeader.Render(group.FieldLabel))
				for _, hops := range group.Chains {
					chain := make(delegation.Chain, 0, len(hops))
					for _, hop := range hops {
						chain = append(chain, delegation.Hop{UserID: hop.UserID, DisplayName: hop.DisplayName})
					}
					cmd.Printf("  %s %s\n", chain.Display(), styleMuted.Render(fmt.Sprintf("(depth %d)", chain.Depth())))
				}
			}
			return nil
		},
	}
}

func inboundCmd(a *app) *cobra.Command {
	var fieldID string

	cmd := &cobra.Command{
		Use:   "inbound <person-id>",
		Short: "Show delegations flowing to a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.views.Inbound(cmd.Context(), args[0], fieldID)
			if err != nil {
				return retryableError("inbound delegations", err)
			}

			cmd.Printf("Total inbound: %d\n", summary.Total)
			if len(summary.ByField) > 0 {
				fields := make([]string, 0, len(summary.ByField))
				for field := range summary.ByField {
					fields = append(fields, field)
				}
				sort.Strings(fields)
				cmd.Println(styleHeader.Render("By field"))
				for _, field := range fields {
					cmd.Printf("  %-16s %d\n", field, summary.ByField[field])
				}
			}
			if len(summary.Recent) > 0 {
				cmd.Println(styleHeader.Render("Recent"))
				for _, entry := range summary.Recent {
					line := "  " + entry.FromDisplayName
					if entry.FieldLabel != "" {
						line += styleMuted.Render(" (" + entry.FieldLabel + ")")
					}
					line += styleMuted.Render("  " + humanize.Time(entry.CreatedAt))
					cmd.Println(line)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fieldID, "field", "", "only count delegations in this field")
	return cmd
}

func healthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show platform-wide delegation health",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.views.Health(cmd.Context())
			if err != nil {
				return retryableError("the health summary", err)
			}

			cmd.Println(styleHeader.Render("Top delegatees"))
			for i, top := range summary.Overall {
				cmd.Printf("  %2d. %-24s %d\n", i+1, top.DisplayName, top.Count)
			}
			fields := make([]string, 0, len(summary.ByField))
			for field := range summary.ByField {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			for _, field := range fields {
				cmd.Println(styleHeader.Render("Top in " + field))
				for i, top := range summary.ByField[field] {
					cmd.Printf("  %2d. %-24s %d\n", i+1, top.DisplayName, top.Count)
				}
			}
			return nil
		},
	}
}

func retryableError(what string, err error) error {
	msg := err.Error()
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return fmt.Errorf("could not load %s: %s Run the command again to retry", what, msg)
}
