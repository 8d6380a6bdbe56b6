package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"commons/client/internal/api"
	"commons/client/internal/composer"
	"commons/client/internal/delegation"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func delegateCmd(a *app) *cobra.Command {
	var (
		scopeFlag  string
		toQuery    string
		fieldQuery string
		pollID     string
		expiresIn  time.Duration
		assumeYes  bool
	)

	cmd := &cobra.Command{
		Use:   "delegate",
		Short: "Delegate your voting power",
		Long: `Delegate your voting power to another member.

Scopes:
  traditional  all decisions (default; expires after 4 years unless --expires-in is given)
  field        one topical field (--field required, no expiry by default)
  poll         one specific poll (--poll required)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a.hydrate(cmd)

			scope, err := parseScope(scopeFlag)
			if err != nil {
				return err
			}

			comp := composer.New(a.coord, a.tel, a.cfg.UserID, composer.WithPollContext(pollID))
			comp.Open(ctx)
			if err := comp.SetScope(scope); err != nil {
				return err
			}

			target, offline, err := pickPerson(cmd, a, toQuery)
			if err != nil {
				return err
			}
			if offline {
				cmd.Println(styleMuted.Render("Backend unreachable; showing offline suggestions only."))
			}
			if err := comp.SelectTarget(target); err != nil {
				return err
			}

			if scope == delegation.ScopeField {
				field, fieldOffline, err := pickField(cmd, a, fieldQuery)
				if err != nil {
					return err
				}
				if fieldOffline {
					cmd.Println(styleMuted.Render("Backend unreachable; showing offline suggestions only."))
				}
				comp.SelectField(field)
			}

			if expiresIn > 0 {
				exp := time.Now().Add(expiresIn)
				comp.SetExpiry(&exp)
			}

			if err := comp.Review(); err != nil {
				return err
			}
			printReview(cmd, comp, target)
			if !assumeYes && !confirm(cmd) {
				cmd.Println("Aborted.")
				return nil
			}

			result, err := comp.Submit(ctx)
			if err != nil {
				return describeMutationError(err)
			}

			cmd.Println(styleSuccess.Render(result.Confirmation))
			for _, banner := range result.Banners {
				cmd.Println(bannerStyle(banner.Level).Render(banner.Message))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scopeFlag, "scope", "traditional", "delegation scope: traditional, field, or poll")
	cmd.Flags().StringVar(&toQuery, "to", "", "delegatee: a name to search for or an exact user id")
	cmd.Flags().StringVar(&fieldQuery, "field", "", "field to delegate (field scope)")
	cmd.Flags().StringVar(&pollID, "poll", "", "poll id (poll scope)")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "expiry as a duration from now, e.g. 8760h")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func parseScope(flag string) (delegation.Scope, error) {
	switch flag {
	case "traditional", "global":
		return delegation.ScopeGlobal, nil
	case "field", "commons":
		return delegation.ScopeField, nil
	case "poll":
		return delegation.ScopePoll, nil
	}
	return "", fmt.Errorf("unknown scope %q (want traditional, field, or poll)", flag)
}

// pickPerson resolves a --to query to exactly one candidate. An exact id
// or display-name match wins; otherwise a single result is accepted and
// anything ambiguous is listed for the user to narrow down.
func pickPerson(cmd *cobra.Command, a *app, query string) (api.PersonCandidate, bool, error) {
	candidates, offline := a.search.People(cmd.Context(), query)
	if len(candidates) == 0 {
		return api.PersonCandidate{}, offline, fmt.Errorf("no member matches %q", query)
	}
	for _, c := range candidates {
		if c.ID == query || strings.EqualFold(c.DisplayName, query) {
			return c, offline, nil
		}
	}
	if len(candidates) == 1 {
		return candidates[0], offline, nil
	}
	cmd.Println("Multiple members match:")
	for _, c := range candidates {
		cmd.Printf("  %s  %s\n", c.ID, c.DisplayName)
	}
	return api.PersonCandidate{}, offline, fmt.Errorf("%q is ambiguous; use an exact id", query)
}

func pickField(cmd *cobra.Command, a *app, query string) (api.FieldCandidate, bool, error) {
	if strings.TrimSpace(query) == "" {
		return api.FieldCandidate{}, false, fmt.Errorf("field scope requires --field")
	}
	candidates, offline := a.search.Fields(cmd.Context(), query)
	if len(candidates) == 0 {
		return api.FieldCandidate{}, offline, fmt.Errorf("no field matches %q", query)
	}
	for _, c := range candidates {
		if c.ID == query || strings.EqualFold(c.Key, query) || strings.EqualFold(c.Label, query) {
			return c, offline, nil
		}
	}
	if len(candidates) == 1 {
		return candidates[0], offline, nil
	}
	cmd.Println("Multiple fields match:")
	for _, c := range candidates {
		cmd.Printf("  %s  %s\n", c.ID, c.Label)
	}
	return api.FieldCandidate{}, offline, fmt.Errorf("%q is ambiguous; use an exact field id", query)
}

func printReview(cmd *cobra.Command, comp *composer.Composer, target api.PersonCandidate) {
	cmd.Println(styleHeader.Render("Review"))
	cmd.Println("Delegatee:", target.DisplayName, styleMuted.Render("("+target.ID+")"))
	switch comp.Scope() {
	case delegation.ScopeField:
		cmd.Println("Scope:    field —", comp.Field().Label)
	case delegation.ScopePoll:
		cmd.Println("Scope:    poll", comp.PollContext())
	default:
		cmd.Println("Scope:    all decisions")
	}
	if exp := comp.EffectiveExpiry(); exp != nil {
		cmd.Println("Expires: ", humanize.Time(*exp))
	} else {
		cmd.Println("Expires:  never")
	}
}

func confirm(cmd *cobra.Command) bool {
	cmd.Print("Proceed? [y/N] ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// describeMutationError surfaces the user-facing message of a failed
// mutation; the store has already been rolled back by the coordinator.
func describeMutationError(err error) error {
	var mutErr *delegation.MutationError
	if errors.As(err, &mutErr) {
		return fmt.Errorf("%s", mutErr.Message)
	}
	return err
}
