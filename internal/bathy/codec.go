package bathy

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

type heightMapJSON struct {
	Grid   Grid       `json:"grid"`
	Values []*float64 `json:"values"` // null for empty cells
	Counts []int      `json:"counts"`
}

// MarshalJSON encodes empty cells as null since NaN has no JSON form.
func (h *HeightMap) MarshalJSON() ([]byte, error) {
	data := heightMapJSON{
		Grid:   h.Grid,
		Values: make([]*float64, len(h.Values)),
		Counts: h.Counts,
	}
	for i := range h.Values {
		if !IsNoData(h.Values[i]) {
			data.Values[i] = &h.Values[i]
		}
	}
	return json.Marshal(data)
}

func (h *HeightMap) UnmarshalJSON(p []byte) error {
	var data heightMapJSON
	if err := json.Unmarshal(p, &data); err != nil {
		return err
	}
	if n := data.Grid.Len(); len(data.Values) != n || len(data.Counts) != n {
		return fmt.Errorf("height map of %d cells has %d values and %d counts", n, len(data.Values), len(data.Counts))
	}

	h.Grid = data.Grid
	h.Values = make([]float64, len(data.Values))
	h.Counts = data.Counts
	for i, v := range data.Values {
		if v == nil {
			h.Values[i] = math.NaN()
		} else {
			h.Values[i] = *v
		}
	}
	return nil
}

type resultJSON struct {
	HeightMap *HeightMap  `json:"heightMap"`
	Bounds    BoundingBox `json:"bounds"`
}

// MarshalJSON encodes the height map and bounds only. The mesh is derived
// from the height map again on decode.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{HeightMap: r.HeightMap, Bounds: r.Bounds})
}

func (r *Result) UnmarshalJSON(p []byte) error {
	var data resultJSON
	if err := json.Unmarshal(p, &data); err != nil {
		return err
	}
	if data.HeightMap == nil {
		return errors.New("result has no height map")
	}

	r.HeightMap = data.HeightMap
	r.Bounds = data.Bounds
	r.Mesh = MeshFromHeightMap(data.HeightMap)
	return nil
}
