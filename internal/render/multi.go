package render

import "github.com/hydrocamel/sonarscan/internal/scan"

// Func adapts a function to scan.Renderer.
type Func = scan.RendererFunc

// Multi fans a snapshot out to several renderers. Every renderer is called; the first
// error is returned.
func Multi(renderers ...scan.Renderer) scan.Renderer {
	var rs []scan.Renderer
	for _, r := range renderers {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return multi(rs)
}

type multi []scan.Renderer

func (m multi) Render(s scan.Snapshot) error {
	var first error
	for _, r := range m {
		if err := r.Render(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}
