package bathy

import (
	"bufio"
	"fmt"
	"io"
)

// WriteOBJ writes the mesh as a Wavefront OBJ document. Heights are written
// relative to refZ; pass 0 to keep them absolute.
func (m *Mesh) WriteOBJ(w io.Writer, refZ float64) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %d vertices, %d faces, resolution %g\n", len(m.Vertices), len(m.Faces), m.Grid.Resolution)
	if refZ != 0 {
		fmt.Fprintf(bw, "# heights relative to %g\n", refZ)
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z-refZ)
	}
	for _, f := range m.Faces {
		// OBJ indices are 1-based
		fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing obj: %w", err)
	}
	return nil
}
