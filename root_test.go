package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/syncpaste/internal/config"
	"github.com/tonimelisma/syncpaste/internal/sync"
)

// Global flag reset pattern: newRootCmd() binds flags via StringVar/BoolVar,
// which reset the global flag variables to their zero values. Tests must either:
//   - Set globals AFTER newRootCmd() returns (direct function tests), or
//   - Use cmd.SetArgs() + cmd.Execute() to let Cobra parse flags.

// saveGlobals restores every global the root command touches.
func saveGlobals(t *testing.T) {
	t.Helper()

	oldCfg := resolvedCfg
	oldConfigPath, oldServer, oldResource, oldBufferFile := flagConfigPath, flagServer, flagResource, flagBufferFile
	oldJSON, oldVerbose, oldQuiet, oldOnce, oldForce := flagJSON, flagVerbose, flagQuiet, flagOnce, flagForce

	t.Cleanup(func() {
		resolvedCfg = oldCfg
		flagConfigPath, flagServer, flagResource, flagBufferFile = oldConfigPath, oldServer, oldResource, oldBufferFile
		flagJSON, flagVerbose, flagQuiet, flagOnce, flagForce = oldJSON, oldVerbose, oldQuiet, oldOnce, oldForce
	})
}

// writeConfigFile writes a config pointing at serverURL with state under dir.
func writeConfigFile(t *testing.T, dir, serverURL string) string {
	t.Helper()

	path := filepath.Join(dir, "config.toml")
	content := `server_url = "` + serverURL + `"
resource = "clip"
state_dir = "` + filepath.Join(dir, "state") + `"
poll_interval = "100ms"
max_poll_interval = "1s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// --- command tree ---

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	expected := []string{"status", "put", "config"}
	for _, name := range expected {
		found := false

		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true

				break
			}
		}

		assert.True(t, found, "expected subcommand %q not found", name)
	}
}

func TestNewRootCmd_PersistentFlags(t *testing.T) {
	cmd := newRootCmd()

	expectedFlags := []string{"config", "server", "resource", "buffer-file", "json", "verbose", "quiet"}
	for _, name := range expectedFlags {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "expected persistent flag %q not found", name)
	}

	assert.NotNil(t, cmd.Flags().Lookup("once"))
}

func TestNewRootCmd_VerboseQuietExclusive(t *testing.T) {
	saveGlobals(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--verbose", "--quiet", "config", "init", "--config", filepath.Join(t.TempDir(), "c.toml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestNewRootCmd_TooManyArgs(t *testing.T) {
	saveGlobals(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", writeConfigFile(t, t.TempDir(), "http://localhost:1"), "send", "receive"})

	assert.Error(t, cmd.Execute())
}

func TestSkipConfigCommands_UsesCommandPath(t *testing.T) {
	assert.True(t, skipConfigCommands["syncpaste config init"])
	assert.False(t, skipConfigCommands["syncpaste config show"])
	assert.False(t, skipConfigCommands["init"])
}

// --- loadConfig ---

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	saveGlobals(t)

	dir := t.TempDir()
	cfgPath := writeConfigFile(t, dir, "http://file.example.com")
	bufferFile := filepath.Join(dir, "buf.txt")

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"--config", cfgPath,
		"--server", "https://flag.example.com",
		"--buffer-file", bufferFile,
		"config", "show",
	})

	require.NoError(t, cmd.Execute())
	require.NotNil(t, resolvedCfg)

	assert.Equal(t, "https://flag.example.com", resolvedCfg.ServerURL)
	assert.Equal(t, "clip", resolvedCfg.Resource)
	assert.Equal(t, config.BufferFile, resolvedCfg.Buffer)
	assert.Equal(t, bufferFile, resolvedCfg.BufferFile)
}

func TestLoadConfig_InvalidConfig(t *testing.T) {
	saveGlobals(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`poll_interval = "never"`), 0o600))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", path, "config", "show"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

// --- helpers ---

func TestModeFromArgs(t *testing.T) {
	assert.Equal(t, sync.ModePush, modeFromArgs(nil))
	assert.Equal(t, sync.ModePull, modeFromArgs([]string{"Receive"}))
	assert.False(t, modeFromArgs([]string{"sideways"}).Valid())
}

func TestStatePath(t *testing.T) {
	cfg := &config.Resolved{Resource: "clip", StateDir: "/data", StateBackend: "json"}
	assert.Equal(t, filepath.Join("/data", "clip-send.json"), statePath(cfg, sync.ModePush))

	cfg.StateBackend = "sqlite"
	assert.Equal(t, filepath.Join("/data", "clip-receive.db"), statePath(cfg, sync.ModePull))
}

// --- logging ---

func TestLogLevel(t *testing.T) {
	saveGlobals(t)

	flagVerbose, flagQuiet = false, false
	assert.Equal(t, slog.LevelInfo, logLevel(nil))

	cfg := &config.Resolved{Logging: config.LoggingConfig{LogLevel: "warn"}}
	assert.Equal(t, slog.LevelWarn, logLevel(cfg))

	flagVerbose = true
	assert.Equal(t, slog.LevelDebug, logLevel(cfg))

	flagVerbose, flagQuiet = false, true
	assert.Equal(t, slog.LevelError, logLevel(cfg))
}

func TestBuildLogger_WritesLogFile(t *testing.T) {
	saveGlobals(t)

	flagVerbose, flagQuiet = false, true

	logFile := filepath.Join(t.TempDir(), "syncpaste.log")
	cfg := &config.Resolved{Logging: config.LoggingConfig{
		LogLevel:         "info",
		LogFile:          logFile,
		LogFormat:        "text",
		LogRetentionDays: 1,
	}}

	logger, closeLog := buildLogger(cfg)

	// Console is quiet, but the file records debug detail.
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))

	logger.Debug("tick detail", slog.String("mode", "send"))
	require.NoError(t, closeLog())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"tick detail"`)
	assert.Contains(t, string(data), `"mode":"send"`)
}

func TestBuildLogger_NoFile(t *testing.T) {
	saveGlobals(t)

	flagVerbose, flagQuiet = false, false

	logger, closeLog := buildLogger(&config.Resolved{Logging: config.LoggingConfig{LogLevel: "error", LogFormat: "json"}})
	defer closeLog()

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelError))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
}

func TestConsoleHandler_Formats(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "console")
	require.NoError(t, err)
	defer f.Close()

	assert.IsType(t, &slog.JSONHandler{}, consoleHandler(f, "json", slog.LevelInfo))
	assert.IsType(t, &slog.TextHandler{}, consoleHandler(f, "text", slog.LevelInfo))

	// A regular file is not a terminal, so auto falls back to plain text.
	assert.IsType(t, &slog.TextHandler{}, consoleHandler(f, "auto", slog.LevelInfo))
}

func TestMultiHandler_FansOut(t *testing.T) {
	dir := t.TempDir()

	a, err := os.Create(filepath.Join(dir, "a.log"))
	require.NoError(t, err)
	defer a.Close()

	b, err := os.Create(filepath.Join(dir, "b.log"))
	require.NoError(t, err)
	defer b.Close()

	h := newMultiHandler(
		slog.NewTextHandler(a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(b, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	logger := slog.New(h).With(slog.String("resource", "clip")).WithGroup("tick")
	logger.Info("pushed", slog.Int("bytes", 5))

	aData, err := os.ReadFile(a.Name())
	require.NoError(t, err)
	assert.Contains(t, string(aData), "resource=clip")
	assert.Contains(t, string(aData), "tick.bytes=5")

	bData, err := os.ReadFile(b.Name())
	require.NoError(t, err)
	assert.Empty(t, bData)
}
