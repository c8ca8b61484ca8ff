package geo

import (
	"fmt"

	"github.com/hydrocamel/sonarscan/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// TrackLineString builds the vehicle track from consecutive apex positions.
// Repeated positions are kept so the track has one vertex per step.
func TrackLineString(track []core.Position) (geom.LineString, error) {
	if len(track) < 2 {
		return geom.LineString{}, fmt.Errorf("track must have at least 2 points, got %d", len(track))
	}

	flatCoords := make([]float64, 0, len(track)*2)
	for _, p := range track {
		flatCoords = append(flatCoords, p.Col, p.Row)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	return geom.NewLineString(seq), nil
}

// TrackLength is the planar length of the track in grid units.
func TrackLength(track []core.Position) float64 {
	ls, err := TrackLineString(track)
	if err != nil {
		return 0
	}
	return ls.Length()
}
