package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cleanviz/internal/dataset"
)

func TestWriteXLSX(t *testing.T) {
	tbl := parse(t, "gene,score,count\nTP53,1.5,3\nBRCA1,,4\n")

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, tbl))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheetName}, f.GetSheetList())

	typ, err := f.GetCellType(DefaultSheetName, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ, "numeric cells are not stored as text")

	reloaded, err := dataset.ParseXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, tbl.Names(), reloaded.Names())
	assert.Equal(t, tbl.NumRows(), reloaded.NumRows())
	assert.Equal(t, tbl.NumericColumns(), reloaded.NumericColumns())

	score, _ := reloaded.Column("score")
	assert.True(t, score.IsMissing(1))
}
