package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/syncpaste/internal/config"
	"github.com/tonimelisma/syncpaste/internal/state"
	"github.com/tonimelisma/syncpaste/internal/sync"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [send|receive]",
		Short: "Show persisted sync state",
		Long: `Display the persisted sync state for the configured resource: when each
engine last ran, the fingerprints of the last content sent and received, and
whether an engine is currently running.

Without an argument both modes are shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStatus,
	}
}

// statusRow is the state of one engine.
type statusRow struct {
	Mode                  string    `json:"mode"`
	Running               bool      `json:"running"`
	StatePath             string    `json:"state_path"`
	HasState              bool      `json:"has_state"`
	LastSyncAt            time.Time `json:"last_sync_at"`
	LastSentFingerprint   string    `json:"last_sent_fingerprint,omitempty"`
	LastRemoteFingerprint string    `json:"last_remote_fingerprint,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	modes := []sync.Mode{sync.ModePush, sync.ModePull}
	if len(args) == 1 {
		modes = []sync.Mode{sync.ParseMode(args[0])}
	}

	logger, closeLog := buildLogger(resolvedCfg)
	defer closeLog()

	rows := make([]statusRow, 0, len(modes))

	for _, mode := range modes {
		row, err := readStatus(cmd, resolvedCfg, mode)
		if err != nil {
			return err
		}

		rows = append(rows, row)
	}

	logger.Debug("status collected", slog.Int("engines", len(rows)))

	if flagJSON {
		return printStatusJSON(os.Stdout, rows)
	}

	printStatusTable(os.Stdout, resolvedCfg, rows)

	return nil
}

// readStatus loads the persisted record for one mode without modifying it.
func readStatus(cmd *cobra.Command, cfg *config.Resolved, mode sync.Mode) (statusRow, error) {
	path := statePath(cfg, mode)

	row := statusRow{
		Mode:      mode.String(),
		Running:   lockHeld(path + ".lock"),
		StatePath: path,
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return row, nil
	}

	backend, err := state.OpenBackend(cmd.Context(), cfg.StateBackend, path, nil)
	if err != nil {
		return row, fmt.Errorf("opening sync state %s: %w", path, err)
	}
	defer backend.Close()

	rec, err := backend.Read(cmd.Context())
	if err != nil {
		return row, fmt.Errorf("reading sync state %s: %w", path, err)
	}

	row.HasState = true
	row.LastSyncAt = rec.LastSyncAt
	row.LastSentFingerprint = rec.LastSentFingerprint
	row.LastRemoteFingerprint = rec.LastRemoteFingerprint

	return row, nil
}

func printStatusJSON(w io.Writer, rows []statusRow) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

func printStatusTable(w io.Writer, cfg *config.Resolved, rows []statusRow) {
	fmt.Fprintf(w, "Resource %q on %s\n\n", cfg.Resource, cfg.ServerURL)

	table := make([][]string, 0, len(rows))

	for _, r := range rows {
		running := "no"
		if r.Running {
			running = "yes"
		}

		lastSync := formatAge(r.LastSyncAt)
		if !r.HasState {
			lastSync = "no state"
		}

		table = append(table, []string{
			r.Mode,
			running,
			lastSync,
			formatFingerprint(r.LastSentFingerprint),
			formatFingerprint(r.LastRemoteFingerprint),
		})
	}

	printTable(w, []string{"MODE", "RUNNING", "LAST SYNC", "LAST SENT", "LAST RECEIVED"}, table)
}
