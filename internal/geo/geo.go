// Package geo turns grid positions into simplefeatures geometries and, when the
// survey area is georeferenced, projects grid positions into EPSG:3857.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hydrocamel/sonarscan/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Grid geometries use X = column and Y = row, so they stay in grid units.
// Georeferenced geometries are EPSG:3857 metres, stored as WKB like every other
// geometry column.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// maxMercatorLat is the latitude limit of the web mercator projection.
const maxMercatorLat = 85.05112878

// PositionToPoint maps a grid position to an XY point.
func PositionToPoint(p core.Position) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.Col, Y: p.Row},
		Type: geom.DimXY,
	})
}

// CellToPoint maps a grid cell to the point at its integer coordinates.
func CellToPoint(c core.Cell) geom.Point {
	return PositionToPoint(core.Position{Row: float64(c.Row), Col: float64(c.Col)})
}

// TriangleToPolygon returns the footprint as a polygon with the closed ring A-B-C-A.
func TriangleToPolygon(vertices [3]core.Position) geom.Polygon {
	a, b, c := vertices[0], vertices[1], vertices[2]
	seq := geom.NewSequence([]float64{
		a.Col, a.Row,
		b.Col, b.Row,
		c.Col, c.Row,
		a.Col, a.Row,
	}, geom.DimXY)
	return geom.NewPolygon([]geom.LineString{geom.NewLineString(seq)})
}

// FootprintArea is the planar area of the footprint in square grid units.
func FootprintArea(vertices [3]core.Position) float64 {
	return TriangleToPolygon(vertices).Area()
}

// Coords3857From4326 projects a longitude and latitude to web mercator.
func Coords3857From4326(longitude, latitude float64) (geom.Point, error) {
	if math.IsNaN(longitude) || math.IsNaN(latitude) ||
		math.Abs(longitude) > 180 || math.Abs(latitude) > maxMercatorLat {
		return geom.NewEmptyPoint(geom.DimXY), ErrInvalidCoordinates
	}
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: x, Y: y},
		Type: geom.DimXY,
	}), nil
}

// ParseLonLat parses a "lon,lat" string.
func ParseLonLat(s string) (lon, lat float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidCoordinates
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, ErrInvalidCoordinates
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, ErrInvalidCoordinates
	}
	return lon, lat, nil
}

// Georeference anchors grid cell (0,0) at a WGS84 origin. Columns grow east and rows
// grow south, CellSize metres per grid unit.
type Georeference struct {
	origin   geom.XY
	cellSize float64
}

// NewGeoreference projects the origin once so per-cell conversion is plain arithmetic.
func NewGeoreference(originLon, originLat, cellSize float64) (*Georeference, error) {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("cell size must be positive, got %v", cellSize)
	}
	pt, err := Coords3857From4326(originLon, originLat)
	if err != nil {
		return nil, fmt.Errorf("origin (%v,%v): %w", originLon, originLat, err)
	}
	xy, _ := pt.XY()
	return &Georeference{origin: xy, cellSize: cellSize}, nil
}

// CellSize returns the metres per grid unit.
func (g *Georeference) CellSize() float64 {
	return g.cellSize
}

// World returns the EPSG:3857 coordinate of a grid position.
func (g *Georeference) World(p core.Position) core.WorldPosition {
	return core.WorldPosition{
		X: g.origin.X + p.Col*g.cellSize,
		Y: g.origin.Y - p.Row*g.cellSize,
	}
}

// CellTo3857 returns the EPSG:3857 point of a grid position.
func (g *Georeference) CellTo3857(p core.Position) geom.Point {
	w := g.World(p)
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: w.X, Y: w.Y},
		Type: geom.DimXY,
	})
}
