package main

import (
	"fmt"

	"commons/client/internal/delegation"

	"github.com/spf13/cobra"
)

func revokeCmd(a *app) *cobra.Command {
	var (
		scopeFlag string
		pollID    string
		fieldID   string
	)

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke a delegation and vote for yourself again",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.hydrate(cmd)

			scope, err := parseScope(scopeFlag)
			if err != nil {
				return err
			}
			var key delegation.Key
			switch scope {
			case delegation.ScopePoll:
				if pollID == "" {
					return fmt.Errorf("poll scope requires --poll")
				}
				key = delegation.PollKey(pollID)
			case delegation.ScopeField:
				if fieldID == "" {
					return fmt.Errorf("field scope requires --field")
				}
				key = delegation.FieldKey(fieldID)
			default:
				key = delegation.GlobalKey()
			}

			if err := a.coord.SubmitRevoke(cmd.Context(), key); err != nil {
				return describeMutationError(err)
			}
			cmd.Println(styleSuccess.Render("Delegation revoked. You now vote for yourself (" + key.String() + ")."))
			return nil
		},
	}

	cmd.Flags().StringVar(&scopeFlag, "scope", "traditional", "delegation scope: traditional, field, or poll")
	cmd.Flags().StringVar(&pollID, "poll", "", "poll id (poll scope)")
	cmd.Flags().StringVar(&fieldID, "field", "", "field id (field scope)")
	return cmd
}
