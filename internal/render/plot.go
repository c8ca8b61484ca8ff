package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hydrocamel/sonarscan/internal/scan"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// codeColors are indexed by display code.
var codeColors = []color.Color{
	Empty:         color.RGBA{R: 8, G: 16, B: 48, A: 255},
	InFOV:         color.RGBA{R: 40, G: 110, B: 200, A: 255},
	TargetInFOV:   color.RGBA{R: 230, G: 40, B: 40, A: 255},
	TargetOutside: color.RGBA{R: 240, G: 170, B: 30, A: 255},
	Vehicle:       color.RGBA{R: 60, G: 220, B: 200, A: 255},
}

// codePalette implements palette.Palette with one color per display code.
type codePalette struct{}

func (codePalette) Colors() []color.Color {
	return codeColors
}

// gridXYZ adapts a Grid to plotter.GridXYZ. Plot rows grow upward, so grid row 0 is
// drawn at the top.
type gridXYZ struct {
	g    Grid
	rows int
	cols int
}

func newGridXYZ(g Grid) gridXYZ {
	cols := 0
	if len(g) > 0 {
		cols = len(g[0])
	}
	return gridXYZ{g: g, rows: len(g), cols: cols}
}

func (x gridXYZ) Dims() (c, r int)   { return x.cols, x.rows }
func (x gridXYZ) Z(c, r int) float64 { return float64(x.g[x.rows-1-r][c]) }
func (x gridXYZ) X(c int) float64    { return float64(c) }
func (x gridXYZ) Y(r int) float64    { return float64(r) }

// rowTicks labels the flipped Y axis with grid row numbers.
type rowTicks struct {
	rows int
}

func (t rowTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i, tk := range ticks {
		if tk.Label == "" {
			continue
		}
		ticks[i].Label = strconv.Itoa(t.rows - 1 - int(tk.Value))
	}
	return ticks
}

// Plot writes one PNG heat map per frame into a directory.
type Plot struct {
	dir    string
	width  vg.Length
	height vg.Length
	title  string
}

// NewPlot creates dir if needed and returns a renderer writing frame_NNNN.png files into it.
func NewPlot(dir, title string) (*Plot, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &Plot{dir: dir, width: 8 * vg.Inch, height: 8 * vg.Inch, title: title}, nil
}

// Dir returns the output directory.
func (p *Plot) Dir() string {
	return p.dir
}

// FramePath returns the file a given step is written to.
func (p *Plot) FramePath(step int) string {
	return filepath.Join(p.dir, fmt.Sprintf("frame_%04d.png", step))
}

func (p *Plot) Render(s scan.Snapshot) error {
	if s.Rows == 0 || s.Cols == 0 {
		return nil
	}
	g := BuildGrid(s)

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("%s - step %d, heading %.0f°, %d targets", p.title, s.Step, s.Heading, len(s.Targets))
	pl.X.Label.Text = "Column"
	pl.Y.Label.Text = "Row"
	pl.Y.Tick.Marker = rowTicks{rows: s.Rows}

	hm := plotter.NewHeatMap(newGridXYZ(g), codePalette{})
	hm.Min = float64(Empty)
	hm.Max = float64(Vehicle)
	pl.Add(hm)

	if err := pl.Save(p.width, p.height, p.FramePath(s.Step)); err != nil {
		return fmt.Errorf("save frame %d: %w", s.Step, err)
	}
	return nil
}
