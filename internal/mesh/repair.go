package mesh

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Quality thresholds for the post-repair report.
const (
	minReasonableVertices = 1000
	maxReasonableVertices = 5_000_000

	// Loops longer than this are treated as intentional openings
	// (the lamp rims), not holes to fill.
	maxFillableHoleLen = 16

	degenerateAreaEps = 1e-9
)

// RepairWarning records a non-fatal problem found during cleanup. The
// mesh stays usable; a slicer may need to do minor repair of its own.
type RepairWarning struct {
	Op     string
	Detail string
}

func (w RepairWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Op, w.Detail)
}

// RepairOptions tunes the cleanup phase.
type RepairOptions struct {
	// MidRadius separates the two shells for normal orientation: faces
	// whose centroid lies beyond it belong to the outer shell and must
	// face outward, the rest face inward. Zero disables reorientation.
	MidRadius float64
}

// Report summarizes what the repair phase changed and measured.
type Report struct {
	DuplicateFaces   int
	DegenerateFaces  int
	DroppedVertices  int
	FlippedNormals   int
	FilledHoles      int
	RimEdges         int // boundary edges on the intentionally open top/bottom annuli
	LateralHoleEdges int // boundary edges remaining on the lateral surface
	Warnings         []RepairWarning
}

// Watertight reports whether the lateral surface closed completely.
// The rims are excluded: the lamp needs its top and bottom open for the
// LED fixture.
func (r *Report) Watertight() bool {
	return r.LateralHoleEdges == 0
}

// Repair cleans the mesh in place: duplicate and degenerate faces are
// removed, unreferenced vertices dropped, face normals reoriented, and
// small lateral holes filled. Problems that cannot be fixed are returned
// as warnings; only a mesh with no geometry left is fatal.
func Repair(m *Mesh, opts RepairOptions) (*Report, error) {
	report := &Report{}

	report.DuplicateFaces = removeDuplicateFaces(m)
	report.DegenerateFaces = removeDegenerateFaces(m)
	report.DroppedVertices = removeUnreferencedVertices(m)

	if opts.MidRadius > 0 {
		report.FlippedNormals = orientNormals(m, opts.MidRadius)
		if report.FlippedNormals > 0 {
			report.Warnings = append(report.Warnings, RepairWarning{
				Op:     "normals",
				Detail: fmt.Sprintf("reoriented %d inconsistent faces", report.FlippedNormals),
			})
		}
	}

	report.FilledHoles, report.RimEdges, report.LateralHoleEdges = fillLateralHoles(m)
	if report.LateralHoleEdges > 0 {
		report.Warnings = append(report.Warnings, RepairWarning{
			Op: "watertight",
			Detail: fmt.Sprintf("%d boundary edges remain on the lateral surface",
				report.LateralHoleEdges),
		})
	}

	if len(m.Vertices) == 0 || len(m.Faces) == 0 {
		return nil, fmt.Errorf("%w after cleanup", ErrEmptyMesh)
	}

	if len(m.Vertices) < minReasonableVertices {
		report.Warnings = append(report.Warnings, RepairWarning{
			Op: "quality", Detail: "very low vertex count, surface may look faceted",
		})
	}
	if len(m.Vertices) > maxReasonableVertices {
		report.Warnings = append(report.Warnings, RepairWarning{
			Op: "quality", Detail: "very high vertex count, STL file will be large",
		})
	}

	return report, nil
}

// removeDuplicateFaces drops faces that reference the same vertex set as
// an earlier face, regardless of winding.
func removeDuplicateFaces(m *Mesh) int {
	seen := make(map[[3]int]struct{}, len(m.Faces))
	kept := m.Faces[:0]
	removed := 0
	for _, f := range m.Faces {
		key := f
		sort.Ints(key[:])
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, f)
	}
	m.Faces = kept
	return removed
}

// removeDegenerateFaces drops faces with repeated indices or near-zero area.
func removeDegenerateFaces(m *Mesh) int {
	kept := m.Faces[:0]
	removed := 0
	for _, f := range m.Faces {
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			removed++
			continue
		}
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		if r3.Norm(n)/2 < degenerateAreaEps {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	m.Faces = kept
	return removed
}

// removeUnreferencedVertices compacts the vertex array and remaps face
// indices.
func removeUnreferencedVertices(m *Mesh) int {
	used := make([]bool, len(m.Vertices))
	for _, f := range m.Faces {
		used[f[0]] = true
		used[f[1]] = true
		used[f[2]] = true
	}

	remap := make([]int, len(m.Vertices))
	kept := m.Vertices[:0]
	dropped := 0
	for i, v := range m.Vertices {
		if !used[i] {
			remap[i] = -1
			dropped++
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, v)
	}
	if dropped == 0 {
		return 0
	}

	m.Vertices = kept
	for i, f := range m.Faces {
		m.Faces[i] = [3]int{remap[f[0]], remap[f[1]], remap[f[2]]}
	}
	return dropped
}

// orientNormals flips faces whose normal disagrees with the shell they
// sit on: outer-shell faces must point away from the axis, inner-shell
// faces toward it (they bound the hollow cavity from outside-in).
func orientNormals(m *Mesh, midRadius float64) int {
	flipped := 0
	for i, f := range m.Faces {
		c := m.FaceCentroid(i)
		radial := r3.Vec{X: c.X, Y: c.Y}
		if r3.Norm(radial) == 0 {
			continue
		}

		dot := r3.Dot(m.FaceNormal(i), radial)
		outerShell := math.Hypot(c.X, c.Y) >= midRadius

		if (outerShell && dot < 0) || (!outerShell && dot > 0) {
			m.Faces[i] = [3]int{f[0], f[2], f[1]}
			flipped++
		}
	}
	return flipped
}

// fillLateralHoles finds boundary loops, leaves the intentional rim
// openings alone, and fan-fills small lateral holes. Returns the number
// of holes filled, the rim edge count, and the lateral boundary edges
// that remain open.
func fillLateralHoles(m *Mesh) (filled, rimEdges, lateralEdges int) {
	// Directed boundary edges: present in exactly one face.
	type edge struct{ a, b int }
	count := make(map[edge]int, len(m.Faces)*3)
	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			count[edge{a, b}]++
		}
	}

	next := make(map[int]int) // boundary half-edge successor
	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			ua, ub := a, b
			if ua > ub {
				ua, ub = ub, ua
			}
			if count[edge{ua, ub}] == 1 {
				next[b] = a // walk opposite to face winding to keep fill orientation consistent
			}
		}
	}

	minB, maxB := m.Bounds()
	onRim := func(v int) bool {
		z := m.Vertices[v].Z
		return math.Abs(z-minB.Z) < 1e-9 || math.Abs(z-maxB.Z) < 1e-9
	}

	visited := make(map[int]bool, len(next))
	for start := range next {
		if visited[start] {
			continue
		}

		loop := []int{start}
		visited[start] = true
		for v := next[start]; v != start; {
			if visited[v] || len(loop) > len(next) {
				loop = nil // broken or non-simple loop, leave it
				break
			}
			visited[v] = true
			loop = append(loop, v)
			nv, ok := next[v]
			if !ok {
				loop = nil
				break
			}
			v = nv
		}
		if loop == nil {
			continue
		}

		rim := true
		for _, v := range loop {
			if !onRim(v) {
				rim = false
				break
			}
		}
		switch {
		case rim:
			rimEdges += len(loop)
		case len(loop) >= 3 && len(loop) <= maxFillableHoleLen:
			for i := 1; i < len(loop)-1; i++ {
				m.Faces = append(m.Faces, [3]int{loop[0], loop[i], loop[i+1]})
			}
			filled++
		default:
			lateralEdges += len(loop)
		}
	}

	return filled, rimEdges, lateralEdges
}
