package point

import (
	"encoding/binary"
	"math"

	dompoint "github.com/fuzalab/fuza/internal/domain/point"
)

// buildHashFields converts a domain Point into a flat map[string]string for
// HSET. Reserved fields carry the text and vector; payload fields pass
// through untouched.
func buildHashFields(p *dompoint.Point) map[string]string {
	m := make(map[string]string, 2+len(p.Payload()))
	m["__text"] = p.Text()
	m["__vector"] = vectorToBytes(p.Vector())
	for k, v := range p.Payload() {
		m[k] = v
	}
	return m
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float,
// little-endian), the layout FT.SEARCH expects for FLOAT32 vector fields.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
