package mesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// latticeCylinder builds a small double-walled cylinder with the same
// vertex and face layout the Builder emits: two vertices per lattice
// point, four faces per quad, open rims. Small enough to reason about
// individual faces in tests.
func latticeCylinder(segments, layers int, outerR, innerR, height float64) *Mesh {
	m := &Mesh{}
	step := 2 * math.Pi / float64(segments)
	for h := 0; h <= layers; h++ {
		z := float64(h) * height / float64(layers)
		for a := 0; a < segments; a++ {
			sin, cos := math.Sincos(float64(a) * step)
			m.Vertices = append(m.Vertices,
				r3.Vec{X: outerR * cos, Y: outerR * sin, Z: z},
				r3.Vec{X: innerR * cos, Y: innerR * sin, Z: z},
			)
		}
	}
	for h := 0; h < layers; h++ {
		layer := h * segments * 2
		nextLayer := (h + 1) * segments * 2
		for a := 0; a < segments; a++ {
			cur := a * 2
			next := ((a + 1) % segments) * 2
			p1o, p1i := layer+cur, layer+cur+1
			p2o, p2i := layer+next, layer+next+1
			p3o, p3i := nextLayer+cur, nextLayer+cur+1
			p4o, p4i := nextLayer+next, nextLayer+next+1
			m.Faces = append(m.Faces,
				[3]int{p1o, p2o, p4o},
				[3]int{p1o, p4o, p3o},
				[3]int{p1i, p3i, p4i},
				[3]int{p1i, p4i, p2i},
			)
		}
	}
	return m
}

const testMidRadius = 1.5

func TestRepairCleanCylinder(t *testing.T) {
	m := latticeCylinder(8, 4, 2, 1, 4)

	report, err := Repair(m, RepairOptions{MidRadius: testMidRadius})
	require.NoError(t, err)

	assert.Zero(t, report.DuplicateFaces)
	assert.Zero(t, report.DegenerateFaces)
	assert.Zero(t, report.DroppedVertices)
	assert.Zero(t, report.FlippedNormals)
	assert.Zero(t, report.FilledHoles)
	assert.True(t, report.Watertight())

	// Four boundary loops: outer and inner ring on each open rim.
	assert.Equal(t, 4*8, report.RimEdges)
	assert.Zero(t, report.LateralHoleEdges)
}

func TestRepairRemovesDuplicateFaces(t *testing.T) {
	m := latticeCylinder(8, 4, 2, 1, 4)
	f := m.Faces[0]
	m.Faces = append(m.Faces, f, [3]int{f[0], f[2], f[1]}) // one exact, one rewound

	report, err := Repair(m, RepairOptions{MidRadius: testMidRadius})
	require.NoError(t, err)
	assert.Equal(t, 2, report.DuplicateFaces)
	assert.True(t, report.Watertight())
}

func TestRepairRemovesDegenerateFaces(t *testing.T) {
	m := latticeCylinder(8, 4, 2, 1, 4)

	// A face with a repeated index, and a zero-area face through a
	// duplicated vertex position.
	dup := len(m.Vertices)
	m.Vertices = append(m.Vertices, m.Vertices[0])
	m.Faces = append(m.Faces, [3]int{0, 0, 2}, [3]int{0, dup, 2})

	report, err := Repair(m, RepairOptions{MidRadius: testMidRadius})
	require.NoError(t, err)
	assert.Equal(t, 2, report.DegenerateFaces)
	assert.Equal(t, 1, report.DroppedVertices)

	for _, f := range m.Faces {
		for _, idx := range f {
			require.Less(t, idx, len(m.Vertices))
		}
	}
}

func TestRepairReorientsNormals(t *testing.T) {
	m := latticeCylinder(8, 4, 2, 1, 4)
	for i := 0; i < 5; i++ {
		f := m.Faces[i*7]
		m.Faces[i*7] = [3]int{f[0], f[2], f[1]}
	}

	report, err := Repair(m, RepairOptions{MidRadius: testMidRadius})
	require.NoError(t, err)
	assert.Equal(t, 5, report.FlippedNormals)

	// A second pass finds nothing left to flip.
	report, err = Repair(m, RepairOptions{MidRadius: testMidRadius})
	require.NoError(t, err)
	assert.Zero(t, report.FlippedNormals)
}

func TestRepairSkipsOrientationWithoutMidRadius(t *testing.T) {
	m := latticeCylinder(8, 4, 2, 1, 4)
	f := m.Faces[0]
	m.Faces[0] = [3]int{f[0], f[2], f[1]}

	report, err := Repair(m, RepairOptions{})
	require.NoError(t, err)
	assert.Zero(t, report.FlippedNormals)
}

func TestRepairFillsSmallLateralHole(t *testing.T) {
	const segments = 8
	m := latticeCylinder(segments, 4, 2, 1, 4)

	// Knock both outer-shell triangles out of one mid-height quad,
	// leaving a four-edge hole that touches neither rim.
	quad := (1*segments + 3) * 4
	m.Faces = append(m.Faces[:quad], m.Faces[quad+2:]...)

	report, err := Repair(m, RepairOptions{MidRadius: testMidRadius})
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilledHoles)
	assert.Zero(t, report.LateralHoleEdges)
	assert.True(t, report.Watertight())
	assert.Equal(t, 4*segments, report.RimEdges)
}

func TestRepairLeavesRimsOpen(t *testing.T) {
	m := latticeCylinder(8, 4, 2, 1, 4)
	before := len(m.Faces)

	report, err := Repair(m, RepairOptions{MidRadius: testMidRadius})
	require.NoError(t, err)

	// Rim loops are intentional openings; nothing gets filled.
	assert.Zero(t, report.FilledHoles)
	assert.Equal(t, before, len(m.Faces))
}

func TestRepairEmptyMeshFatal(t *testing.T) {
	m := &Mesh{
		Vertices: []r3.Vec{{}, {}, {}},
		Faces:    [][3]int{{0, 1, 2}}, // zero area, removed during cleanup
	}

	_, err := Repair(m, RepairOptions{})
	require.ErrorIs(t, err, ErrEmptyMesh)
}

func TestRepairWarnsOnLowVertexCount(t *testing.T) {
	m := latticeCylinder(8, 4, 2, 1, 4)

	report, err := Repair(m, RepairOptions{MidRadius: testMidRadius})
	require.NoError(t, err)

	found := false
	for _, w := range report.Warnings {
		if w.Op == "quality" {
			found = true
		}
	}
	assert.True(t, found, "expected a quality warning for a tiny mesh")
}
