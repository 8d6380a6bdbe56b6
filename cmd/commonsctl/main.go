// Command commonsctl is the terminal client for The Commons delegation
// subsystem: inspect your delegation status, delegate and revoke voting
// power, search for targets, and browse the transparency views.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"commons/client/internal/api"
	"commons/client/internal/config"
	"commons/client/internal/delegation"
	"commons/client/internal/search"
	"commons/client/internal/transparency"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired client stack shared by every subcommand.
type app struct {
	cfg    config.Config
	log    *slog.Logger
	client *api.Client
	tel    *api.Telemetry
	store  *delegation.Store
	coord  *delegation.Coordinator
	search *search.Service
	views  *transparency.Service
}

func rootCmd() *cobra.Command {
	var configPath string
	a := &app{}

	cmd := &cobra.Command{
		Use:           "commonsctl",
		Short:         "The Commons delegation client",
		Long:          "commonsctl manages your voting delegations on The Commons: global, per-poll, and per-field.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultPath()
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			a.init(cfg)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.commons/config.yaml)")

	cmd.AddCommand(
		statusCmd(a),
		delegateCmd(a),
		revokeCmd(a),
		searchCmd(a),
		chainsCmd(a),
		inboundCmd(a),
		healthCmd(a),
	)
	return cmd
}

func (a *app) init(cfg config.Config) {
	a.cfg = cfg
	a.log = newLogger(cfg.LogLevel)

	a.client = api.New(cfg.ServerURL, api.Options{
		Token: func() string { return cfg.Token },
		OnUnauthorized: func() {
			a.log.Warn("session rejected by server; refresh your token")
		},
		Logger: a.log,
	})
	a.tel = api.NewTelemetry(a.client, cfg.Telemetry, a.log)
	a.store = delegation.NewStore()
	a.coord = delegation.NewCoordinator(a.store, a.client,
		delegation.Hop{UserID: cfg.UserID, DisplayName: cfg.DisplayName}, a.log)
	a.search = search.New(a.client,
		search.WithDebounce(cfg.SearchDebounce), search.WithLogger(a.log))
	a.views = transparency.New(a.client, a.log)
}

// hydrate pulls the current snapshots from the server. Failure is
// non-fatal: the store stays empty and status reports self-voting until a
// later refresh succeeds.
func (a *app) hydrate(cmd *cobra.Command) {
	resp, err := a.client.MyDelegations(cmd.Context())
	if err != nil {
		a.log.Warn("could not load current delegations", "error", err)
		return
	}
	snaps := make([]delegation.Snapshot, 0, len(resp.Snapshots))
	for _, payload := range resp.Snapshots {
		snaps = append(snaps, delegation.SnapshotFromWire(payload))
	}
	a.store.Hydrate(snaps)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
