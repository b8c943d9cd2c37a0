package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadGrid(t *testing.T) {
	sheets := []Sheet{
		{
			Name:      "Primera",
			ColWidths: map[int]float64{1: 20},
			Rows: [][]Cell{
				{Text("Codigo"), Text("Nombre")},
				{Text("E001"), {Value: "ROSA", Style: Style{Bold: true, FontColor: "FF0000"}}},
				{Text("E002"), Text(1500.5)},
			},
		},
		{Name: "Segunda", Rows: [][]Cell{{Text("solo")}}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sheets))

	grid, err := ReadGrid(&buf)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(grid), 3)
	assert.Equal(t, "Codigo", grid[0][0])
	assert.Equal(t, "ROSA", grid[1][1])
	assert.True(t, strings.HasPrefix(grid[2][1], "1500.5"))
}

func TestReadGridRejectsGarbage(t *testing.T) {
	_, err := ReadGrid(strings.NewReader("not an xlsx"))
	assert.Error(t, err)
}
