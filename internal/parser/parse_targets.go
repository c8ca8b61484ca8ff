package parser

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/hydrocamel/sonarscan/pkg/core"
)

// ParseTargetMap reads a binary target map: one row per line, cells separated by
// whitespace or commas. Blank lines and '#' comments are ignored. Every row must have
// the same width and every cell must be 0 or 1.
func ParseTargetMap(r io.Reader) ([][]uint8, error) {
	var (
		grid  [][]uint8
		width = -1
		line  = 0
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) == 0 {
			continue
		}

		row := make([]uint8, len(fields))
		for i, f := range fields {
			switch f {
			case "0":
			case "1":
				row[i] = 1
			default:
				return nil, fmt.Errorf("%w: line %d column %d: expected 0 or 1, got %q", ErrInvalidTargetMap, line, i, f)
			}
		}

		if width == -1 {
			width = len(row)
		} else if len(row) != width {
			return nil, fmt.Errorf("%w: line %d: expected %d cells, got %d", ErrInvalidTargetMap, line, width, len(row))
		}
		grid = append(grid, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading target map: %w", err)
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidTargetMap)
	}
	return grid, nil
}

// LoadTargetMap reads a target map file.
func LoadTargetMap(path string) ([][]uint8, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open target map: %w", err)
	}
	defer f.Close()

	grid, err := ParseTargetMap(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return grid, nil
}

// ParseCells parses a ';'-separated list of "row,col" pairs, e.g. "14,7;16,6".
func ParseCells(s string) ([]core.Cell, error) {
	var cells []core.Cell
	for _, part := range splitList(s) {
		a, b, ok := parsePair(part)
		if !ok {
			return nil, fmt.Errorf("%w: %q: expected row,col", ErrInvalidCell, part)
		}
		row, err := parseIntFromFloat(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: row: %v", ErrInvalidCell, part, err)
		}
		col, err := parseIntFromFloat(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: col: %v", ErrInvalidCell, part, err)
		}
		cells = append(cells, core.Cell{Row: row, Col: col})
	}
	return cells, nil
}

// TargetMapFromCells builds a rows x cols map with a 1 at every given cell.
func TargetMapFromCells(rows, cols int, cells []core.Cell) ([][]uint8, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: shape %dx%d", ErrInvalidTargetMap, rows, cols)
	}
	grid := emptyGrid(rows, cols)
	for _, c := range cells {
		if c.Row < 0 || c.Row >= rows || c.Col < 0 || c.Col >= cols {
			return nil, fmt.Errorf("%w: %v is outside the %dx%d map", ErrInvalidCell, c, rows, cols)
		}
		grid[c.Row][c.Col] = 1
	}
	return grid, nil
}

// RandomTargetMap marks each cell with probability density. The same seed always
// yields the same map.
func RandomTargetMap(rows, cols int, density float64, seed int64) [][]uint8 {
	rng := rand.New(rand.NewPCG(uint64(seed), 0x5eed))
	grid := emptyGrid(rows, cols)
	for r := range grid {
		for c := range grid[r] {
			if rng.Float64() < density {
				grid[r][c] = 1
			}
		}
	}
	return grid
}

func emptyGrid(rows, cols int) [][]uint8 {
	grid := make([][]uint8, max(rows, 0))
	for r := range grid {
		grid[r] = make([]uint8, max(cols, 0))
	}
	return grid
}
