// pkg/core/vehicle.go
package core

// Vehicle is the read-only pose view shared by anything that moves over the grid.
type Vehicle interface {
	Position() Position
	// Heading is in degrees within [0, 360).
	Heading() float64
}
