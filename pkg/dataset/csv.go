// Package dataset persists feature rows: CSV output for training
// pipelines and a content-hash keyed disk cache that lets repeated runs
// skip unchanged files.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mlgoperf/ir-feature-query/pkg/features"
)

// WriteCSV writes rows to w with the fixed feature header. perFile omits
// the function_name column, matching file-aggregate rows.
func WriteCSV(w io.Writer, rows []features.Row, perFile bool) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(features.Columns(perFile)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Record(perFile)); err != nil {
			return fmt.Errorf("writing row for %s: %w", row.SourceFile, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes rows to path, creating parent directories as
// needed.
func WriteCSVFile(path string, rows []features.Row, perFile bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, rows, perFile); err != nil {
		return err
	}
	return f.Close()
}
