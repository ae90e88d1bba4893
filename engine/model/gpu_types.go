package model

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertex is the GPU layout of a textured vertex.
// Matches the VertexInput struct of renderer.TexturedShaderSource.
// Size: 20 bytes (position vec3 at 0, tex_coord vec2 at 12).
type GPUVertex struct {
	Position [3]float32
	TexCoord [2]float32
}

// GPUVertexSize is the byte stride of a marshaled GPUVertex.
const GPUVertexSize = 20

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalVertices serializes vertices into dst, growing it if needed, little-endian.
//
// Parameters:
//   - dst: scratch buffer to reuse (may be nil)
//   - vertices: the vertices to encode
//
// Returns:
//   - []byte: len(vertices)*GPUVertexSize bytes ready for upload
func MarshalVertices(dst []byte, vertices []GPUVertex) []byte {
	n := len(vertices) * GPUVertexSize
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, v := range vertices {
		o := i * GPUVertexSize
		binary.LittleEndian.PutUint32(dst[o:o+4], math.Float32bits(v.Position[0]))
		binary.LittleEndian.PutUint32(dst[o+4:o+8], math.Float32bits(v.Position[1]))
		binary.LittleEndian.PutUint32(dst[o+8:o+12], math.Float32bits(v.Position[2]))
		binary.LittleEndian.PutUint32(dst[o+12:o+16], math.Float32bits(v.TexCoord[0]))
		binary.LittleEndian.PutUint32(dst[o+16:o+20], math.Float32bits(v.TexCoord[1]))
	}
	return dst
}

// MarshalIndices serializes 16-bit indices little-endian, zero-padded to a 4-byte multiple.
//
// Parameters:
//   - indices: the triangle-list indices
//
// Returns:
//   - []byte: the encoded indices
func MarshalIndices(indices []uint16) []byte {
	n := len(indices) * 2
	buf := make([]byte, (n+3)&^3)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(buf[i*2:], idx)
	}
	return buf
}
