// Package output writes generated tables and run artifacts to disk.
package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

// TableFileName is "<schema>.<table>.csv".
func TableFileName(schema, table string) string {
	return fmt.Sprintf("%s.%s.csv", schema, table)
}

// WriteTableCSV writes a header and one record per row, columns in ordinal
// order. It returns the number of bytes written.
func WriteTableCSV(path string, table *domain.Table, rows []domain.Row) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	n, err := EncodeTableCSV(bw, table, rows)
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return n, f.Close()
}

// EncodeTableCSV is WriteTableCSV against any writer.
func EncodeTableCSV(w io.Writer, table *domain.Table, rows []domain.Row) (int64, error) {
	counter := &countingWriter{w: w}
	cw := csv.NewWriter(counter)
	columns := table.OrderedColumns()

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Name
	}
	if err := cw.Write(header); err != nil {
		return counter.n, err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i := range columns {
			record[i] = FormatValue(&columns[i], row[strings.ToLower(columns[i].Name)])
		}
		if err := cw.Write(record); err != nil {
			return counter.n, err
		}
	}
	cw.Flush()
	return counter.n, cw.Error()
}

// FormatValue renders v for a CSV cell. Floats use the column's declared
// scale; null is empty.
func FormatValue(column *domain.Column, v domain.Value) string {
	if v.Kind() == domain.KindFloat {
		f, _ := v.Float()
		if scale, ok := column.ColumnType.Scale(); ok && scale >= 0 {
			return strconv.FormatFloat(f, 'f', scale, 64)
		}
	}
	return v.String()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
