// Package stl serializes triangle meshes to binary STL.
package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"litho-lamp/internal/mesh"
)

const headerSize = 80

// Write serializes the mesh as binary STL: an 80-byte header, a uint32
// triangle count, then per triangle a facet normal, three vertices, and
// an attribute word, all little-endian float32/uint16. Facet normals are
// recomputed from the winding so the file is self-consistent even after
// repair touched the faces.
func Write(w io.Writer, m *mesh.Mesh, name string) error {
	if m == nil || len(m.Faces) == 0 {
		return fmt.Errorf("stl: nothing to write")
	}

	bw := bufio.NewWriter(w)

	header := make([]byte, headerSize)
	copy(header, name)
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("stl: write header: %w", err)
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(m.Faces))); err != nil {
		return fmt.Errorf("stl: write triangle count: %w", err)
	}

	buf := make([]byte, 50) // 12 floats + attribute word per triangle
	for i, f := range m.Faces {
		n := m.FaceNormal(i)
		if norm := r3.Norm(n); norm > 0 {
			n = r3.Scale(1/norm, n)
		}

		putVec(buf[0:], n)
		putVec(buf[12:], m.Vertices[f[0]])
		putVec(buf[24:], m.Vertices[f[1]])
		putVec(buf[36:], m.Vertices[f[2]])
		buf[48], buf[49] = 0, 0

		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("stl: write triangle %d: %w", i, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("stl: flush: %w", err)
	}
	return nil
}

// WriteFile serializes the mesh to a binary STL file.
func WriteFile(path string, m *mesh.Mesh, name string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stl: create %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, m, name); err != nil {
		return err
	}
	return f.Sync()
}

func putVec(b []byte, v r3.Vec) {
	binary.LittleEndian.PutUint32(b[0:], floatBits(v.X))
	binary.LittleEndian.PutUint32(b[4:], floatBits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], floatBits(v.Z))
}

func floatBits(v float64) uint32 {
	return math.Float32bits(float32(v))
}
