// Package vector holds the similarity primitive and the wire encoding
// shared by both store backends.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arkival/arkival/internal/domain"
)

// Cosine computes the cosine similarity dot(a,b) / (|a|*|b|).
// Vectors of different lengths are a data error, never coerced.
// A zero vector yields exactly 0 so the result still totally orders.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine: %d vs %d: %w", len(a), len(b), domain.ErrDimensionMismatch)
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Encode serializes a vector as a little-endian float32 blob, the format
// FT.SEARCH expects for KNN params and hash vector fields.
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode parses a little-endian float32 blob back into a vector.
func Decode(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("decode vector: len=%d is not a multiple of 4", len(data))
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v, nil
}
