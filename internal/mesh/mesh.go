// Package mesh synthesizes the hollow lithophane cylinder as a triangle
// mesh and repairs it toward watertightness.
package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle mesh. Vertices are millimeter coordinates
// with the cylinder axis on +Z and the print bed at z=0. Faces are index
// triples wound counter-clockwise when viewed from outside the material.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]int
}

// ErrEmptyMesh reports a mesh with no geometry left after cleanup.
var ErrEmptyMesh = fmt.Errorf("mesh has no geometry")

// BuildError is a fatal numeric failure during vertex or face synthesis.
type BuildError struct {
	Stage     string
	HeightIdx int
	AngleIdx  int
	Err       error
}

func (e *BuildError) Error() string {
	if e.HeightIdx >= 0 || e.AngleIdx >= 0 {
		return fmt.Sprintf("mesh build failed at stage %s (h=%d, a=%d): %v",
			e.Stage, e.HeightIdx, e.AngleIdx, e.Err)
	}
	return fmt.Sprintf("mesh build failed at stage %s: %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// FaceNormal returns the unnormalized normal of face i (cross product of
// its edge vectors). The magnitude is twice the triangle area.
func (m *Mesh) FaceNormal(i int) r3.Vec {
	f := m.Faces[i]
	a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	return r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
}

// FaceCentroid returns the centroid of face i.
func (m *Mesh) FaceCentroid(i int) r3.Vec {
	f := m.Faces[i]
	a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	return r3.Scale(1.0/3.0, r3.Add(a, r3.Add(b, c)))
}

// SurfaceArea returns the total triangle area in mm².
func (m *Mesh) SurfaceArea() float64 {
	area := 0.0
	for i := range m.Faces {
		area += r3.Norm(m.FaceNormal(i)) / 2
	}
	return area
}

// Volume returns the enclosed volume in mm³ via the divergence theorem.
// Only meaningful for a closed, consistently wound mesh; for the lamp's
// intentionally open rims the result is a close approximation.
func (m *Mesh) Volume() float64 {
	vol := 0.0
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		vol += r3.Dot(a, r3.Cross(b, c)) / 6
	}
	return math.Abs(vol)
}

// Bounds returns the axis-aligned bounding box.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	if len(m.Vertices) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		min.Z = math.Min(min.Z, v.Z)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
		max.Z = math.Max(max.Z, v.Z)
	}
	return min, max
}
