package model

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestMarshalIndicesPadsToFourBytes(t *testing.T) {
	tests := []struct {
		indices []uint16
		want    int
	}{
		{nil, 0},
		{[]uint16{1}, 4},
		{[]uint16{1, 2}, 4},
		{[]uint16{1, 2, 3}, 8},
	}
	for _, tt := range tests {
		got := MarshalIndices(tt.indices)
		if len(got) != tt.want {
			t.Errorf("MarshalIndices(%v) = %d bytes, want %d", tt.indices, len(got), tt.want)
		}
		for i, idx := range tt.indices {
			if v := binary.LittleEndian.Uint16(got[i*2:]); v != idx {
				t.Errorf("index %d = %d, want %d", i, v, idx)
			}
		}
	}
}

func TestMarshalVerticesReusesBuffer(t *testing.T) {
	verts := []GPUVertex{
		{Position: [3]float32{1, 2, 3}, TexCoord: [2]float32{0.25, 0.5}},
		{Position: [3]float32{-1, 0, 4}, TexCoord: [2]float32{1, 0}},
	}
	scratch := make([]byte, 0, 64)
	out := MarshalVertices(scratch, verts)
	if len(out) != 2*GPUVertexSize {
		t.Fatalf("len = %d, want %d", len(out), 2*GPUVertexSize)
	}
	if &out[0] != &scratch[:1][0] {
		t.Error("MarshalVertices allocated although the scratch buffer was large enough")
	}
	if v := math.Float32frombits(binary.LittleEndian.Uint32(out[GPUVertexSize+8:])); v != 4 {
		t.Errorf("second vertex z = %v, want 4", v)
	}
	if v := math.Float32frombits(binary.LittleEndian.Uint32(out[16:])); v != 0.5 {
		t.Errorf("first vertex v = %v, want 0.5", v)
	}
	if (&GPUVertex{}).Size() != GPUVertexSize {
		t.Errorf("GPUVertex.Size() = %d, want %d", (&GPUVertex{}).Size(), GPUVertexSize)
	}
}
