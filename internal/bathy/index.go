package bathy

import (
	"slices"

	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/spatial/r3"
)

// MeshIndex answers planar range queries over the faces of a mesh using an R-tree.
type MeshIndex struct {
	mesh  *Mesh
	rtree *rtreego.Rtree
}

// indexedFace wraps a face for R-tree storage.
type indexedFace struct {
	face   int
	bounds BoundingBox
}

// Bounds implements rtreego.Spatial interface.
func (f *indexedFace) Bounds() rtreego.Rect {
	return toRect(f.bounds)
}

// NewMeshIndex indexes every face of m.
func NewMeshIndex(m *Mesh) *MeshIndex {
	rtree := rtreego.NewTree(2, 25, 50)
	for i := range m.Faces {
		a, b, c := m.Triangle(i)
		rtree.Insert(&indexedFace{
			face: i,
			bounds: BoundingBox{
				MinX: min(a.X, b.X, c.X), MaxX: max(a.X, b.X, c.X),
				MinY: min(a.Y, b.Y, c.Y), MaxY: max(a.Y, b.Y, c.Y),
				MinZ: min(a.Z, b.Z, c.Z), MaxZ: max(a.Z, b.Z, c.Z),
			},
		})
	}
	return &MeshIndex{mesh: m, rtree: rtree}
}

// Size returns the number of indexed faces.
func (idx *MeshIndex) Size() int {
	return idx.rtree.Size()
}

// FacesIntersecting returns, in ascending order, the indices of the faces
// whose planar bounding boxes intersect b.
func (idx *MeshIndex) FacesIntersecting(b BoundingBox) []int {
	spatials := idx.rtree.SearchIntersect(toRect(b))

	faces := make([]int, 0, len(spatials))
	for _, s := range spatials {
		faces = append(faces, s.(*indexedFace).face)
	}
	slices.Sort(faces)
	return faces
}

// Crop returns the part of the mesh whose faces intersect the square of the
// given half size centred on center. Vertices keep their relative order and
// faces are re-indexed into the smaller vertex list.
func (idx *MeshIndex) Crop(center r3.Vec, halfSize float64) *Mesh {
	area := BoundingBox{
		MinX: center.X - halfSize, MaxX: center.X + halfSize,
		MinY: center.Y - halfSize, MaxY: center.Y + halfSize,
	}
	faces := idx.FacesIntersecting(area)

	used := make([]bool, len(idx.mesh.Vertices))
	for _, f := range faces {
		for _, v := range idx.mesh.Faces[f] {
			used[v] = true
		}
	}

	cropped := &Mesh{Grid: idx.mesh.Grid}
	remap := make([]int, len(idx.mesh.Vertices))
	for i, ok := range used {
		if !ok {
			continue
		}
		remap[i] = len(cropped.Vertices)
		cropped.Vertices = append(cropped.Vertices, idx.mesh.Vertices[i])
		if i < len(idx.mesh.Cells) {
			cropped.Cells = append(cropped.Cells, idx.mesh.Cells[i])
		}
	}
	for _, f := range faces {
		face := idx.mesh.Faces[f]
		cropped.Faces = append(cropped.Faces, [3]int{remap[face[0]], remap[face[1]], remap[face[2]]})
	}
	return cropped
}

func toRect(b BoundingBox) rtreego.Rect {
	point := rtreego.Point{b.MinX, b.MinY}

	// R-tree requires non-zero dimensions
	lengths := []float64{
		max(b.MaxX-b.MinX, minExtent),
		max(b.MaxY-b.MinY, minExtent),
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}
