package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/syncpaste/internal/config"
)

// flagForce allows "config init" to replace an existing file.
var flagForce bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented config file with all defaults",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}

	cmd.Flags().BoolVar(&flagForce, "force", false, "overwrite an existing config file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := config.ResolveConfigPath(config.ReadEnvOverrides(), config.CLIOverrides{ConfigPath: flagConfigPath})
	if path == "" {
		return errors.New("cannot determine config file location; pass --config")
	}

	if err := config.WriteTemplate(path, flagForce); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}

		return err
	}

	statusf(flagQuiet, "Wrote %s\n", path)

	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	if resolvedCfg == nil {
		return fmt.Errorf("no configuration loaded")
	}

	if flagJSON {
		masked := *resolvedCfg
		masked.AuthToken = maskSecret(masked.AuthToken)
		masked.Password = maskSecret(masked.Password)

		data, err := json.MarshalIndent(masked, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}

		_, err = fmt.Fprintln(os.Stdout, string(data))

		return err
	}

	return config.RenderEffective(resolvedCfg, os.Stdout)
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}

	return "********"
}
