package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// errTooLarge is returned when a file exceeds max_upload_size.
var errTooLarge = errors.New("file exceeds max_upload_size")

func newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <file>",
		Short: "Upload a file to the shared buffer",
		Long: `Upload a single file as the content of the shared buffer. The content type
is detected from the file's contents. Files larger than max_upload_size are
rejected before any network request is made.`,
		Args: cobra.ExactArgs(1),
		RunE: runPut,
	}
}

func runPut(cmd *cobra.Command, args []string) error {
	cfg := resolvedCfg
	path := args[0]

	logger, closeLog := buildLogger(cfg)
	defer closeLog()

	data, err := readUpload(path, cfg.MaxUploadSize)
	if err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), logger)
	defer stop()

	client := newRemoteClient(cfg, logger)

	logger.Debug("uploading file",
		slog.String("path", path),
		slog.Int("bytes", len(data)),
	)

	ack, err := client.PutFile(ctx, data)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", path, err)
	}

	statusf(flagQuiet, "Uploaded %s (%s): %s\n", path, humanize.IBytes(uint64(len(data))), ack.Message)

	return nil
}

// readUpload reads path after checking its size against limit.
func readUpload(path string, limit int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	if limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%w: %s is %s, limit is %s", errTooLarge, path,
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(limit)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return data, nil
}
