package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"litho-lamp/internal/config"
	"litho-lamp/internal/field"
	"litho-lamp/pkg/geometry"
)

// Curvature compensation constants. A curved backlit wall viewed off-axis
// appears brighter toward its silhouette; thickening the wall slightly
// toward the window center counteracts that.
const (
	curvatureFactor     = 0.03
	curvatureAngleScale = 0.8
)

// Builder walks the angular × vertical lattice of the cylinder and emits
// the double-walled triangle mesh. The outer wall carries the lithophane
// relief inside the coverage window; everything else is a plain wall.
type Builder struct {
	cfg     config.Settings
	sampler *field.Sampler

	angularSegments int
	heightSegments  int

	outerRadius float64
	innerRadius float64
	startAngle  float64 // coverage window in radians, centered on zero
	endAngle    float64
	startZ      float64 // vertical image band
	endZ        float64
}

// NewBuilder validates the configuration and derives the lattice
// resolution. Degenerate configurations are rejected here, before any
// mesh work happens.
func NewBuilder(sampler *field.Sampler, cfg config.Settings) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sampler == nil {
		return nil, fmt.Errorf("%w: nil sampler", field.ErrInvalidInput)
	}

	angular, height := cfg.MeshResolution()
	coverage := geometry.Radians(cfg.CoverageAngle)

	return &Builder{
		cfg:             cfg,
		sampler:         sampler,
		angularSegments: angular,
		heightSegments:  height,
		outerRadius:     cfg.CylinderDiameter / 2,
		innerRadius:     cfg.InnerRadius(),
		startAngle:      -coverage / 2,
		endAngle:        coverage / 2,
		startZ:          cfg.BottomMargin,
		endZ:            cfg.CylinderHeight - cfg.TopMargin,
	}, nil
}

// AngularSegments returns the derived angular lattice resolution.
func (b *Builder) AngularSegments() int { return b.angularSegments }

// HeightSegments returns the derived vertical lattice resolution.
func (b *Builder) HeightSegments() int { return b.heightSegments }

// Build generates vertices and faces and assembles the raw mesh. Repair
// runs separately so the caller can poll for cancellation in between.
func (b *Builder) Build() (*Mesh, error) {
	vertices, err := b.BuildVertices()
	if err != nil {
		return nil, err
	}
	return &Mesh{Vertices: vertices, Faces: b.BuildFaces()}, nil
}

// BuildVertices emits two vertices per lattice point: the outer vertex on
// the modulated lithophane surface (or the plain outer radius) and the
// inner vertex on the fixed inner wall. Vertex order is
// (h*angularSegments + a)*2 for the outer vertex, +1 for the inner one;
// face indexing depends on this layout.
func (b *Builder) BuildVertices() ([]r3.Vec, error) {
	angleRange := b.endAngle - b.startAngle
	heightRange := b.endZ - b.startZ
	if angleRange <= 0 || heightRange <= 0 {
		return nil, &BuildError{
			Stage: "vertices", HeightIdx: -1, AngleIdx: -1,
			Err: fmt.Errorf("degenerate coverage window (%g rad × %g mm)", angleRange, heightRange),
		}
	}

	rows := b.sampler.Rows()
	cols := b.sampler.Cols()
	angularStep := 2 * math.Pi / float64(b.angularSegments)
	heightStep := b.cfg.CylinderHeight / float64(b.heightSegments)

	vertices := make([]r3.Vec, 0, (b.heightSegments+1)*b.angularSegments*2)

	for h := 0; h <= b.heightSegments; h++ {
		z := float64(h) * heightStep

		for a := 0; a < b.angularSegments; a++ {
			angle := float64(a) * angularStep
			normalized := geometry.NormalizeAngle(angle)

			outer := b.outerRadius

			if z >= b.startZ && z <= b.endZ &&
				normalized >= b.startAngle && normalized <= b.endAngle {
				// Map the lattice point into texture space. Image row 0 is
				// the top of the picture and maps to the top of the lamp,
				// so v is flipped when converting to a row index.
				u := (normalized - b.startAngle) / angleRange
				v := (z - b.startZ) / heightRange

				col := u * float64(cols-1)
				row := (1.0 - v) * float64(rows-1)

				thickness := b.sampler.Sample(row, col)
				if math.IsNaN(thickness) || math.IsInf(thickness, 0) {
					return nil, &BuildError{
						Stage: "vertices", HeightIdx: h, AngleIdx: a,
						Err: fmt.Errorf("non-finite thickness sample at (%.2f, %.2f)", row, col),
					}
				}

				compensation := 1.0 + curvatureFactor*math.Cos(normalized*curvatureAngleScale)
				outer = b.outerRadius + thickness*compensation
			}

			sin, cos := math.Sincos(angle)
			vertices = append(vertices,
				r3.Vec{X: outer * cos, Y: outer * sin, Z: z},
				r3.Vec{X: b.innerRadius * cos, Y: b.innerRadius * sin, Z: z},
			)
		}
	}

	return vertices, nil
}

// BuildFaces triangulates each lattice quad on both shells. The angular
// axis wraps modulo angularSegments, closing the full 360° band with no
// seam vertices regardless of the coverage angle. Outer faces wind
// counter-clockwise seen from outside; inner faces wind the opposite way
// because they bound the hollow cavity. No end caps: the top and bottom
// annuli stay open for LED wiring.
func (b *Builder) BuildFaces() [][3]int {
	faces := make([][3]int, 0, b.heightSegments*b.angularSegments*4)

	for h := 0; h < b.heightSegments; h++ {
		layer := h * b.angularSegments * 2
		nextLayer := (h + 1) * b.angularSegments * 2

		for a := 0; a < b.angularSegments; a++ {
			cur := a * 2
			next := ((a + 1) % b.angularSegments) * 2

			p1o, p1i := layer+cur, layer+cur+1
			p2o, p2i := layer+next, layer+next+1
			p3o, p3i := nextLayer+cur, nextLayer+cur+1
			p4o, p4i := nextLayer+next, nextLayer+next+1

			faces = append(faces,
				[3]int{p1o, p2o, p4o},
				[3]int{p1o, p4o, p3o},
				[3]int{p1i, p3i, p4i},
				[3]int{p1i, p4i, p2i},
			)
		}
	}

	return faces
}
