package render

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/hydrocamel/sonarscan/internal/scan"
)

var glyphs = [...]byte{
	Empty:         '.',
	InFOV:         '~',
	TargetInFOV:   'X',
	TargetOutside: 'x',
	Vehicle:       'A',
}

// Text writes each frame as one character per cell followed by a status line.
type Text struct {
	mu sync.Mutex
	w  io.Writer
}

// NewText returns a text renderer writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

func (t *Text) Render(s scan.Snapshot) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	bw := bufio.NewWriter(t.w)
	grid := BuildGrid(s)
	for _, row := range grid {
		line := make([]byte, len(row)+1)
		for i, v := range row {
			line[i] = glyph(v)
		}
		line[len(row)] = '\n'
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}

	status := fmt.Sprintf("step=%d pos=(%.2f,%.2f) heading=%.1f fov=%d targets=%d inView=%d",
		s.Step, s.Position.Row, s.Position.Col, s.Heading, len(s.FOV), len(s.Targets),
		grid.Count(TargetInFOV))
	if s.Degenerate {
		status += " degenerate"
	}
	if _, err := fmt.Fprintf(bw, "%s\n\n", status); err != nil {
		return err
	}
	return bw.Flush()
}

func glyph(v uint8) byte {
	if int(v) < len(glyphs) {
		return glyphs[v]
	}
	return '?'
}
