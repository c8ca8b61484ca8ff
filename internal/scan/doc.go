// Package scan implements the sonar scan engine: a vehicle sweeping a triangular
// field of view over a grid, intersecting it with a static target map and
// accumulating the targets it has seen.
//
// Coordinates follow the grid convention of the target map: a position is
// (row, col), with x = col and y = row for all geometry. Headings are degrees in
// [0, 360), measured from the +col axis toward the +row axis, so a velocity of
// (Δrow, Δcol) points along atan2(Δrow, Δcol).
//
// The engine is synchronous and not safe for concurrent use. Asynchronous
// consumers (recording, telemetry) receive snapshots through a Renderer.
package scan
