package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cohort.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validCSV = `id,age,sex,treatment,biomarker,time,event
S1,64,1,A,1.2,12.5,1
S2,58,0,B,0.8,24,0
S3,71,1,B,2.1,6.25,1
`

// TestLoad_Valid tests loading a well-formed cohort.
func TestLoad_Valid(t *testing.T) {
	tbl, err := Load(writeTemp(t, validCSV))
	require.NoError(t, err)

	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, 2, tbl.Events())
	assert.Equal(t, 1, tbl.Censored())
	assert.Equal(t, 24.0, tbl.MaxTime())

	s := tbl.Subjects[0]
	assert.Equal(t, "S1", s.ID)
	assert.Equal(t, 64.0, s.Age)
	assert.Equal(t, 1.0, s.Sex)
	assert.Equal(t, "A", s.Treatment)
	assert.Equal(t, 1.2, s.Biomarker)
	assert.Equal(t, 12.5, s.Time)
	assert.Equal(t, 1, s.Event)
}

// TestLoad_ColumnOrderFree tests that header order does not matter.
func TestLoad_ColumnOrderFree(t *testing.T) {
	csv := `event,time,biomarker,treatment,sex,age,id
1,10,1.5,B,0,55,X1
`
	tbl, err := Load(writeTemp(t, csv))
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "X1", tbl.Subjects[0].ID)
	assert.Equal(t, 55.0, tbl.Subjects[0].Age)
	assert.Equal(t, 10.0, tbl.Subjects[0].Time)
}

// TestLoad_MissingColumn tests the schema-mismatch failure.
func TestLoad_MissingColumn(t *testing.T) {
	csv := `id,age,sex,treatment,biomarker,time
S1,64,1,A,1.2,12.5
`
	_, err := Load(writeTemp(t, csv))
	require.Error(t, err)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrCodeMissingColumn, fe.Code)
	assert.Equal(t, ColEvent, fe.Column)
}

// TestLoad_UnknownColumn tests rejection of columns outside the schema.
func TestLoad_UnknownColumn(t *testing.T) {
	csv := `id,age,sex,treatment,biomarker,time,event,extra
S1,64,1,A,1.2,12.5,1,x
`
	_, err := Load(writeTemp(t, csv))
	require.Error(t, err)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrCodeUnknownColumn, fe.Code)
	assert.Equal(t, "extra", fe.Column)
}

// TestLoad_NegativeTime tests the malformed-time failure.
func TestLoad_NegativeTime(t *testing.T) {
	csv := `id,age,sex,treatment,biomarker,time,event
S1,64,1,A,1.2,-3,1
`
	_, err := Load(writeTemp(t, csv))
	require.Error(t, err)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrCodeBadValue, fe.Code)
	assert.Equal(t, ColTime, fe.Column)
	assert.Equal(t, 1, fe.Row)
}

// TestLoad_NonBinaryEvent tests the malformed-event failure.
func TestLoad_NonBinaryEvent(t *testing.T) {
	csv := `id,age,sex,treatment,biomarker,time,event
S1,64,1,A,1.2,3,2
`
	_, err := Load(writeTemp(t, csv))
	require.Error(t, err)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrCodeBadValue, fe.Code)
	assert.Equal(t, ColEvent, fe.Column)
}

// TestLoad_DuplicateID tests the unique-identifier invariant.
func TestLoad_DuplicateID(t *testing.T) {
	csv := `id,age,sex,treatment,biomarker,time,event
S1,64,1,A,1.2,3,1
S1,58,0,B,0.8,5,0
`
	_, err := Load(writeTemp(t, csv))
	require.Error(t, err)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrCodeDuplicateID, fe.Code)
	assert.Equal(t, 2, fe.Row)
}

// TestLoad_MissingCovariates tests that empty covariate cells load as
// missing while time and event stay mandatory.
func TestLoad_MissingCovariates(t *testing.T) {
	csv := `id,age,sex,treatment,biomarker,time,event
S1,,,,,3,1
`
	tbl, err := Load(writeTemp(t, csv))
	require.NoError(t, err)

	s := tbl.Subjects[0]
	assert.True(t, Missing(s.Age))
	assert.True(t, Missing(s.Sex))
	assert.True(t, Missing(s.Biomarker))
	assert.Empty(t, s.Treatment)

	csv = `id,age,sex,treatment,biomarker,time,event
S1,64,1,A,1.2,,1
`
	_, err = Load(writeTemp(t, csv))
	require.Error(t, err)
	assert.True(t, IsFormatError(err))
}

// TestLoad_Empty tests the header-only failure.
func TestLoad_Empty(t *testing.T) {
	_, err := Load(writeTemp(t, "id,age,sex,treatment,biomarker,time,event\n"))
	require.Error(t, err)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrCodeEmpty, fe.Code)
}

// TestLoad_FileNotFound tests the missing-file failure.
func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.False(t, IsFormatError(err))
}
