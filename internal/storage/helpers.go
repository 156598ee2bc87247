package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// maxBatchRows bounds the rows of one multi-VALUES insert so the statement
// stays below SQLite's bound parameter limit.
const maxBatchRows = 512

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && cErr != sql.ErrTxDone && *err == nil {
		*err = cErr
	}
}

// batchInsert inserts n rows using multi-VALUES statements of at most
// maxBatchRows rows each. args returns the bound values of row i, one per
// placeholder.
func batchInsert(ctx context.Context, tx *sql.Tx, insertSQL, placeholder string, n int, args func(i int) []any) error {
	for start := 0; start < n; start += maxBatchRows {
		end := min(start+maxBatchRows, n)

		var sb strings.Builder
		sb.WriteString(insertSQL)

		var values []any
		for i := start; i < end; i++ {
			if i > start {
				sb.WriteString(", ")
			}
			sb.WriteString(placeholder)
			values = append(values, args(i)...)
		}

		if _, err := tx.ExecContext(ctx, sb.String(), values...); err != nil {
			return fmt.Errorf("inserting rows %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

// Timestamps are stored as Unix nanoseconds, which keeps range filters
// numeric and round trips exact.
func toNanos(t time.Time) int64 {
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func encodeBeams(beams []r3.Vec) []byte {
	p := make([]byte, 0, len(beams)*24)
	for _, b := range beams {
		p = binary.LittleEndian.AppendUint64(p, math.Float64bits(b.X))
		p = binary.LittleEndian.AppendUint64(p, math.Float64bits(b.Y))
		p = binary.LittleEndian.AppendUint64(p, math.Float64bits(b.Z))
	}
	return p
}

func decodeBeams(p []byte) ([]r3.Vec, error) {
	if len(p)%24 != 0 {
		return nil, fmt.Errorf("beams blob of %d bytes is not a multiple of 24", len(p))
	}
	if len(p) == 0 {
		return nil, nil
	}
	beams := make([]r3.Vec, len(p)/24)
	for i := range beams {
		off := i * 24
		beams[i] = r3.Vec{
			X: math.Float64frombits(binary.LittleEndian.Uint64(p[off:])),
			Y: math.Float64frombits(binary.LittleEndian.Uint64(p[off+8:])),
			Z: math.Float64frombits(binary.LittleEndian.Uint64(p[off+16:])),
		}
	}
	return beams, nil
}

func encodeSamples(samples []int16) []byte {
	p := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		p = binary.LittleEndian.AppendUint16(p, uint16(s))
	}
	return p
}

func decodeSamples(p []byte) ([]int16, error) {
	if len(p)%2 != 0 {
		return nil, fmt.Errorf("samples blob of %d bytes has odd length", len(p))
	}
	if len(p) == 0 {
		return nil, nil
	}
	samples := make([]int16, len(p)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(p[i*2:]))
	}
	return samples, nil
}
