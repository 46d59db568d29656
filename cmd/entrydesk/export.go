// ABOUTME: The export command: writes form entries to a CSV or XLSX file
// ABOUTME: Reads the WordPress database directly, without a running server

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/2389/entrydesk/internal/report"
	"github.com/2389/entrydesk/internal/server"
	"github.com/2389/entrydesk/internal/store"
	"github.com/2389/entrydesk/internal/wordpress"
)

// cliUserID is recorded in the export log for command-line exports.
const cliUserID = "cli"

func runExport(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("export", flag.ContinueOnError)
	formatFlag := fset.String("format", "csv", "output format: csv or xlsx")
	outPath := fset.String("out", "", "output file (stdout when empty)")
	formID := fset.Int64("form", 0, "only export entries of this form ID")
	if err := fset.Parse(args); err != nil {
		return err
	}

	format, err := report.ParseFormat(*formatFlag)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogger(cfg.Logging)

	wp, err := server.OpenWordPress(ctx, cfg)
	if err != nil {
		return err
	}
	defer wp.Close()

	table, err := report.Load(ctx, wp, wordpress.Filter{FormID: *formID})
	if err != nil {
		return err
	}
	if table.Empty() {
		return report.ErrNoEntries
	}

	name := "stdout"
	if *outPath == "" {
		err = format.Write(os.Stdout, table)
	} else {
		name = filepath.Base(*outPath)
		err = writeExportFile(*outPath, format, table)
	}
	if err != nil {
		return err
	}

	if err := recordCLIExport(ctx, cfg.Database.Path, format, len(table.Rows), name); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	if *outPath != "" {
		color.New(color.FgGreen).Fprintf(os.Stderr, "  ✓ Exported %d entries to %s\n", len(table.Rows), *outPath)
	}
	return nil
}

// writeExportFile writes to a sibling temp file and renames it into place, so
// a failed export never leaves a truncated file at path.
func writeExportFile(path string, format report.Format, table *report.Table) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entrydesk-export-*")
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = format.Write(tmp, table); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("moving export file into place: %w", err)
	}
	return nil
}

func recordCLIExport(ctx context.Context, dbPath string, format report.Format, rows int, name string) error {
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}
	defer s.Close()

	return s.RecordExport(ctx, &store.ExportRecord{
		UserID:   cliUserID,
		Format:   store.ExportFormat(format),
		RowCount: rows,
		FileName: name,
	})
}
