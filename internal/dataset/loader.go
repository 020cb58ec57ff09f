package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Load reads a delimited cohort file into a Table.
//
// The header must contain exactly the schema columns (any order). Every
// row is either fully parsed or the load fails with a *FormatError; rows
// are never silently dropped.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, &FormatError{Code: ErrCodeEmpty, Message: "dataset has a header but no rows"}
	}

	t := &Table{Subjects: make([]Subject, 0, len(rows))}
	seen := make(map[string]int, len(rows))
	for i, rec := range rows {
		row := i + 1 // 1-based data row
		s, err := parseSubject(rec, idx, row)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[s.ID]; dup {
			return nil, &FormatError{
				Code:    ErrCodeDuplicateID,
				Row:     row,
				Column:  ColID,
				Message: fmt.Sprintf("subject id %q already seen at row %d", s.ID, prev),
			}
		}
		seen[s.ID] = row
		t.Subjects = append(t.Subjects, s)
	}
	return t, nil
}

// indexColumns maps schema columns to their position in the header.
// The header must match the schema exactly; order is free.
func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.ToLower(h))
		if _, ok := idx[name]; ok {
			return nil, &FormatError{Code: ErrCodeUnknownColumn, Column: name, Message: "column appears twice"}
		}
		idx[name] = i
	}
	for _, want := range Columns {
		if _, ok := idx[want]; !ok {
			return nil, &FormatError{Code: ErrCodeMissingColumn, Column: want, Message: "required column not found"}
		}
	}
	if len(idx) != len(Columns) {
		for name := range idx {
			if !isSchemaColumn(name) {
				return nil, &FormatError{Code: ErrCodeUnknownColumn, Column: name, Message: "column is not part of the schema"}
			}
		}
	}
	return idx, nil
}

func isSchemaColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}

func parseSubject(rec []string, idx map[string]int, row int) (Subject, error) {
	cell := func(col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var s Subject

	s.ID = cell(ColID)
	if s.ID == "" {
		return s, newBadValue(row, ColID, "subject id is empty")
	}

	age, err := parseOptionalFloat(cell(ColAge))
	if err != nil {
		return s, newBadValue(row, ColAge, err.Error())
	}
	if !Missing(age) && (age <= 0 || age != math.Trunc(age)) {
		return s, newBadValue(row, ColAge, fmt.Sprintf("age must be a positive integer, got %q", cell(ColAge)))
	}
	s.Age = age

	switch v := cell(ColSex); v {
	case "":
		s.Sex = math.NaN()
	case "0":
		s.Sex = 0
	case "1":
		s.Sex = 1
	default:
		return s, newBadValue(row, ColSex, fmt.Sprintf("sex must be 0 or 1, got %q", v))
	}

	switch v := cell(ColTreatment); v {
	case "", TreatmentA, TreatmentB:
		s.Treatment = v
	default:
		return s, newBadValue(row, ColTreatment, fmt.Sprintf("treatment must be %q or %q, got %q", TreatmentA, TreatmentB, v))
	}

	bio, err := parseOptionalFloat(cell(ColBiomarker))
	if err != nil {
		return s, newBadValue(row, ColBiomarker, err.Error())
	}
	s.Biomarker = bio

	tv := cell(ColTime)
	if tv == "" {
		return s, newBadValue(row, ColTime, "time is required")
	}
	tm, err := strconv.ParseFloat(tv, 64)
	if err != nil || math.IsNaN(tm) || math.IsInf(tm, 0) {
		return s, newBadValue(row, ColTime, fmt.Sprintf("time must be a finite number, got %q", tv))
	}
	if tm < 0 {
		return s, newBadValue(row, ColTime, fmt.Sprintf("time must be non-negative, got %q", tv))
	}
	s.Time = tm

	switch v := cell(ColEvent); v {
	case "0":
		s.Event = 0
	case "1":
		s.Event = 1
	default:
		return s, newBadValue(row, ColEvent, fmt.Sprintf("event must be 0 or 1, got %q", v))
	}

	return s, nil
}

// parseOptionalFloat parses a possibly-empty numeric cell. Empty means
// missing and yields NaN without error.
func parseOptionalFloat(v string) (float64, error) {
	if v == "" {
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value must be a finite number, got %q", v)
	}
	return f, nil
}
