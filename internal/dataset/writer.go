package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// WriteCSV writes the table to path in the schema's canonical column
// order. Missing values are written as empty cells.
func WriteCSV(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range t.Subjects {
		rec := []string{
			s.ID,
			formatOptionalInt(s.Age),
			formatOptionalInt(s.Sex),
			s.Treatment,
			formatOptionalFloat(s.Biomarker),
			strconv.FormatFloat(s.Time, 'g', -1, 64),
			strconv.Itoa(s.Event),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush dataset: %w", err)
	}
	return nil
}

func formatOptionalInt(v float64) string {
	if Missing(v) {
		return ""
	}
	return strconv.Itoa(int(v))
}

func formatOptionalFloat(v float64) string {
	if Missing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
