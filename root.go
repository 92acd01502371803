package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/syncpaste/internal/config"
	"github.com/tonimelisma/syncpaste/internal/state"
	"github.com/tonimelisma/syncpaste/internal/sync"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagServer     string
	flagResource   string
	flagBufferFile string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// resolvedCfg holds the effective configuration loaded by PersistentPreRunE.
// It is available to all subcommands after the root pre-run phase completes.
var resolvedCfg *config.Resolved

// skipConfigCommands lists commands that must work without a valid
// configuration. Uses CommandPath() for explicit matching.
var skipConfigCommands = map[string]bool{
	"syncpaste config":      true,
	"syncpaste config init": true,
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "syncpaste [send|receive]",
		Short: "Keep a clipboard in sync with a shared remote buffer",
		Long: `Synchronize the local clipboard with a shared buffer on a clipboard server.

In send mode (the default) local clipboard changes are pushed to the server.
In receive mode the server is polled and new content is copied into the local
clipboard. Failed requests back off exponentially up to max_poll_interval.`,
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipConfigCommands[cmd.CommandPath()] {
				return nil
			}

			return loadConfig(cmd)
		},
		RunE: runSync,
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagServer, "server", "", "clipboard server base URL")
	cmd.PersistentFlags().StringVar(&flagResource, "resource", "", "shared buffer name on the server")
	cmd.PersistentFlags().StringVar(&flagBufferFile, "buffer-file", "", "use this text file instead of the system clipboard")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.Flags().BoolVar(&flagOnce, "once", false, "run a single sync and exit")

	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newPutCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the four-layer override
// chain and stores the result in resolvedCfg for use by subcommands.
func loadConfig(cmd *cobra.Command) error {
	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
	}

	// Only pass flags the user explicitly set.
	if cmd.Flags().Changed("server") {
		cli.ServerURL = &flagServer
	}

	if cmd.Flags().Changed("resource") {
		cli.Resource = &flagResource
	}

	if cmd.Flags().Changed("buffer-file") {
		cli.BufferFile = &flagBufferFile
	}

	resolved, err := config.Resolve(config.ReadEnvOverrides(), cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = resolved

	return nil
}

// modeFromArgs returns the sync direction named by the optional positional
// argument. Send is the default.
func modeFromArgs(args []string) sync.Mode {
	if len(args) == 0 {
		return sync.ModePush
	}

	return sync.ParseMode(args[0])
}

// statePath returns where the engine for mode keeps its state. Push and pull
// engines for the same resource use separate records so each has a single
// writer.
func statePath(cfg *config.Resolved, mode sync.Mode) string {
	name := cfg.Resource + "-" + mode.String() + state.Extension(cfg.StateBackend)

	return filepath.Join(cfg.StateDir, name)
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
