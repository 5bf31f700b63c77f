package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/budget-advisor/internal/gcsuploader"
	"github.com/dvloznov/budget-advisor/internal/table"
	"github.com/spf13/cobra"
)

// sourceFlags selects where a spreadsheet is read from. Exactly one field
// must be set.
type sourceFlags struct {
	file    string
	gcsURI  string
	bqQuery string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.file, "file", "", "Path to a local .csv, .xls or .xlsx file")
	cmd.Flags().StringVar(&s.gcsURI, "gcs-uri", "", "gs:// URI of a spreadsheet")
	cmd.Flags().StringVar(&s.bqQuery, "bq-query", "", "BigQuery SQL whose result is used as the spreadsheet")
}

func (s sourceFlags) validate() error {
	set := 0
	for _, v := range []string{s.file, s.gcsURI, s.bqQuery} {
		if v != "" {
			set++
		}
	}
	switch set {
	case 0:
		return errors.New("one of --file, --gcs-uri or --bq-query is required")
	case 1:
		return nil
	default:
		return errors.New("--file, --gcs-uri and --bq-query are mutually exclusive")
	}
}

// name describes the source for logs.
func (s sourceFlags) name() string {
	switch {
	case s.file != "":
		return s.file
	case s.gcsURI != "":
		return s.gcsURI
	default:
		return "bigquery"
	}
}

// loadSource reads the selected spreadsheet into a table.
func loadSource(ctx context.Context, s sourceFlags) (*table.Table, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	switch {
	case s.file != "":
		f, err := os.Open(s.file)
		if err != nil {
			return nil, fmt.Errorf("loadSource: open file: %w", err)
		}
		defer f.Close()
		return table.Load(filepath.Base(s.file), f)

	case s.gcsURI != "":
		store, err := gcsuploader.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("loadSource: %w", err)
		}
		defer store.Close()

		data, err := store.Fetch(ctx, s.gcsURI)
		if err != nil {
			return nil, fmt.Errorf("loadSource: %w", err)
		}
		return table.Load(gcsuploader.ExtractFilename(s.gcsURI), bytes.NewReader(data))

	default:
		if cfg.BigQueryProject == "" {
			return nil, errors.New("--bq-project (or BIGQUERY_PROJECT) is required with --bq-query")
		}
		client, err := bigquery.NewClient(ctx, cfg.BigQueryProject)
		if err != nil {
			return nil, fmt.Errorf("loadSource: create BigQuery client: %w", err)
		}
		defer client.Close()
		return table.LoadBigQuery(ctx, client, s.bqQuery)
	}
}
