// ABOUTME: Writes export files to a staging directory and streams them to clients
// ABOUTME: Each file gets a unique name and is removed once it has been served

package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/2389/entrydesk/internal/wordpress"
)

// ErrNoEntries is returned when there is nothing to export.
var ErrNoEntries = errors.New("no entries found to export")

// ErrUnknownFormat is returned for formats other than csv and xlsx.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatXLSX:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write serializes t to w in format f.
func (f Format) Write(w io.Writer, t *Table) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// File is an export written to the staging directory.
type File struct {
	Path   string
	Name   string
	Format Format
	Rows   int
}

// Exporter stages export files in a directory.
type Exporter struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewExporter creates an Exporter writing into dir, creating it if needed.
func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}
	return &Exporter{
		dir:    dir,
		logger: slog.Default().With("component", "export"),
		now:    time.Now,
	}, nil
}

// Export runs the entry queries and writes the result to a new file. It
// returns ErrNoEntries, and writes nothing, when no entries match.
func (x *Exporter) Export(ctx context.Context, src Source, filter wordpress.Filter, format Format) (*File, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}

	table, err := Load(ctx, src, filter)
	if err != nil {
		return nil, err
	}
	if table.Empty() {
		return nil, ErrNoEntries
	}

	return x.WriteTable(table, format)
}

// WriteTable writes an already built table to a new file. A partially
// written file is removed on failure.
func (x *Exporter) WriteTable(table *Table, format Format) (*File, error) {
	name := x.fileName(format)
	path := filepath.Join(x.dir, name)

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating export file: %w", err)
	}

	if err := format.Write(out, table); err != nil {
		out.Close()
		x.remove(path)
		return nil, err
	}
	if err := out.Close(); err != nil {
		x.remove(path)
		return nil, fmt.Errorf("closing export file: %w", err)
	}

	x.logger.Info("export written", "file", name, "rows", len(table.Rows), "format", format)
	return &File{Path: path, Name: name, Format: format, Rows: len(table.Rows)}, nil
}

// Serve streams the file as a download and then deletes it, whether or not
// the transfer succeeded.
func (x *Exporter) Serve(w http.ResponseWriter, f *File) error {
	defer x.remove(f.Path)

	in, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("opening export file: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat export file: %w", err)
	}

	h := w.Header()
	h.Set("Content-Type", f.Format.ContentType())
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, f.Name))
	h.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("streaming export file: %w", err)
	}
	return nil
}

// fileName combines a timestamp with a random suffix so concurrent exports
// never share a name.
func (x *Exporter) fileName(format Format) string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("wpforms-entries-%s-%s.%s", x.now().Format("20060102-150405"), suffix, format)
}

func (x *Exporter) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		x.logger.Warn("failed to remove export file", "path", path, "error", err)
	}
}
