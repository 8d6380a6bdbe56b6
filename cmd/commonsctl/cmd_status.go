package main

import (
	"fmt"
	"time"

	"commons/client/internal/delegation"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func statusCmd(a *app) *cobra.Command {
	var pollID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show who currently votes for you",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.hydrate(cmd)
			status := delegation.Resolve(a.store.All(), pollID)
			printStatus(cmd, status, pollID)
			return nil
		},
	}
	cmd.Flags().StringVar(&pollID, "poll", "", "resolve status in the context of a poll")
	return cmd
}

func printStatus(cmd *cobra.Command, status delegation.Status, pollID string) {
	switch status.Mode {
	case delegation.StatusSelf:
		cmd.Println(styleBadge.Render("Votes for self"))
		if pollID != "" {
			cmd.Println(styleMuted.Render("No delegation applies to poll " + pollID + "."))
		}
		return
	case delegation.StatusPoll:
		cmd.Println(styleBadge.Render("Delegating to " + delegateeName(status) + " (this poll)"))
	default:
		cmd.Println(styleBadge.Render("Delegating to " + delegateeName(status)))
	}

	if status.Path != "" {
		cmd.Println("Chain:", status.Path)
		cmd.Println("Depth:", status.Depth)
	}
	if exp := status.Delegation.ExpiresAt; exp != nil {
		cmd.Println(styleMuted.Render(fmt.Sprintf("Expires %s (%s)",
			humanize.Time(*exp), exp.Format(time.DateOnly))))
	}
}

func delegateeName(status delegation.Status) string {
	if status.Delegation == nil {
		return ""
	}
	if status.Delegation.DelegateeDisplayName != "" {
		return status.Delegation.DelegateeDisplayName
	}
	return status.Delegation.DelegateeID
}
