package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hydrocamel/sonarscan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargetMap(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    [][]uint8
		wantErr bool
	}{
		{
			name:  "whitespace separated",
			input: "0 0 1\n1 0 0\n",
			want:  [][]uint8{{0, 0, 1}, {1, 0, 0}},
		},
		{
			name:  "commas, comments and blank lines",
			input: "# survey area\n0,1,0\n\n1, 1, 0 # two mines\n",
			want:  [][]uint8{{0, 1, 0}, {1, 1, 0}},
		},
		{
			name:  "tabs",
			input: "1\t0\n0\t1",
			want:  [][]uint8{{1, 0}, {0, 1}},
		},
		{
			name:    "ragged rows",
			input:   "0 0 0\n0 0\n",
			wantErr: true,
		},
		{
			name:    "non-binary value",
			input:   "0 2 0\n",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "# nothing here\n\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTargetMap(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTargetMap)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadTargetMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mines.txt")
	require.NoError(t, os.WriteFile(path, []byte("0 1\n1 0\n"), 0644))

	got, err := LoadTargetMap(path)
	require.NoError(t, err)
	assert.Equal(t, [][]uint8{{0, 1}, {1, 0}}, got)

	_, err = LoadTargetMap(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("0 1\n1\n"), 0644))
	_, err = LoadTargetMap(bad)
	assert.ErrorIs(t, err, ErrInvalidTargetMap)
	assert.Contains(t, err.Error(), "bad.txt")
}

func TestParseCells(t *testing.T) {
	cells, err := ParseCells("14,7; 16,6;;3.0,2")
	require.NoError(t, err)
	assert.Equal(t, []core.Cell{{Row: 14, Col: 7}, {Row: 16, Col: 6}, {Row: 3, Col: 2}}, cells)

	cells, err = ParseCells("")
	require.NoError(t, err)
	assert.Empty(t, cells)

	for _, bad := range []string{"14", "1,2,3", "a,1", "1,b", "1.5,2"} {
		_, err := ParseCells(bad)
		assert.ErrorIs(t, err, ErrInvalidCell, bad)
	}
}

func TestTargetMapFromCells(t *testing.T) {
	grid, err := TargetMapFromCells(3, 4, []core.Cell{{Row: 0, Col: 3}, {Row: 2, Col: 1}, {Row: 2, Col: 1}})
	require.NoError(t, err)
	assert.Equal(t, [][]uint8{
		{0, 0, 0, 1},
		{0, 0, 0, 0},
		{0, 1, 0, 0},
	}, grid)

	_, err = TargetMapFromCells(3, 4, []core.Cell{{Row: 3, Col: 0}})
	assert.ErrorIs(t, err, ErrInvalidCell)

	_, err = TargetMapFromCells(0, 4, nil)
	assert.ErrorIs(t, err, ErrInvalidTargetMap)
}

func TestRandomTargetMap(t *testing.T) {
	a := RandomTargetMap(25, 20, 0.05, 7)
	b := RandomTargetMap(25, 20, 0.05, 7)
	assert.Equal(t, a, b, "same seed, same map")
	require.Len(t, a, 25)
	require.Len(t, a[0], 20)

	count := 0
	for _, row := range a {
		for _, v := range row {
			assert.LessOrEqual(t, v, uint8(1))
			count += int(v)
		}
	}
	assert.Less(t, count, 100)

	none := RandomTargetMap(5, 5, 0, 1)
	all := RandomTargetMap(5, 5, 1, 1)
	for r := range 5 {
		for c := range 5 {
			assert.Equal(t, uint8(0), none[r][c])
			assert.Equal(t, uint8(1), all[r][c])
		}
	}
}
