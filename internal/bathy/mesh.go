package bathy

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a triangulated surface over a Grid. There is one vertex per
// populated cell, placed at the cell's lattice node, in row-major cell order.
type Mesh struct {
	Grid     Grid
	Vertices []r3.Vec
	Faces    [][3]int
	Cells    []int // Grid cell index of each vertex
}

// MeshFromHeightMap triangulates a height map. Every 2x2 block of populated
// cells produces two triangles split along the (row, col)-(row+1, col+1)
// diagonal; blocks touching an empty cell are skipped and leave a hole.
func MeshFromHeightMap(hm *HeightMap) *Mesh {
	g := hm.Grid
	m := &Mesh{Grid: g}

	vertexOf := make([]int, g.Len())
	for i := range vertexOf {
		vertexOf[i] = -1
	}

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			idx := g.Index(row, col)
			z := hm.Values[idx]
			if IsNoData(z) {
				continue
			}
			x, y := g.Node(row, col)
			vertexOf[idx] = len(m.Vertices)
			m.Vertices = append(m.Vertices, r3.Vec{X: x, Y: y, Z: z})
			m.Cells = append(m.Cells, idx)
		}
	}

	for row := 0; row+1 < g.Rows; row++ {
		for col := 0; col+1 < g.Cols; col++ {
			a := vertexOf[g.Index(row, col)]
			b := vertexOf[g.Index(row, col+1)]
			c := vertexOf[g.Index(row+1, col+1)]
			d := vertexOf[g.Index(row+1, col)]
			if a < 0 || b < 0 || c < 0 || d < 0 {
				continue
			}
			// counter-clockwise seen from above
			m.Faces = append(m.Faces, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}

	return m
}

// Validate checks that every face references existing, distinct vertices.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("face %d references vertex %d of %d", i, v, len(m.Vertices))
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			return fmt.Errorf("face %d is degenerate: %v", i, f)
		}
	}
	return nil
}

// Triangle returns the three vertices of face i.
func (m *Mesh) Triangle(i int) (a, b, c r3.Vec) {
	f := m.Faces[i]
	return m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
}

// Normal returns the unit normal of face i, pointing up for the faces
// produced by MeshFromHeightMap.
func (m *Mesh) Normal(i int) r3.Vec {
	a, b, c := m.Triangle(i)
	return r3.Unit(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}
