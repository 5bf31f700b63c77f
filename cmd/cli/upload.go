package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dvloznov/budget-advisor/internal/gcsuploader"
	"github.com/dvloznov/budget-advisor/internal/logger"
	"github.com/dvloznov/budget-advisor/internal/table"
	"github.com/spf13/cobra"
)

var uploadFile string

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a local spreadsheet to GCS",
	Long: `Copies a .csv, .xls or .xlsx file to the configured bucket and prints
its gs:// URI, which can then be passed to advise --gcs-uri.`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadFile, "file", "", "Path to local spreadsheet (required)")
	_ = uploadCmd.MarkFlagRequired("file")
}

func runUpload(cmd *cobra.Command, args []string) error {
	if cfg.GCSBucket == "" {
		return errors.New("--bucket (or GCS_BUCKET) is required")
	}
	if !table.SupportedFile(uploadFile) {
		return fmt.Errorf("%s: %w", filepath.Base(uploadFile), table.ErrUnsupportedFormat)
	}

	ctx := logger.WithContext(context.Background(), log)

	store, err := gcsuploader.New(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Info().
		Str("bucket", cfg.GCSBucket).
		Str("file", uploadFile).
		Msg("Uploading file to GCS")

	uri, err := store.UploadFile(ctx, cfg.GCSBucket, uploadFile)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s to %s\n", uploadFile, uri)
	return nil
}
