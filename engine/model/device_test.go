package model

import (
	"fmt"

	"github.com/Carmen-Shannon/c3-preview/engine/renderer"
)

// fakeBuffer is a renderer.Buffer recorded by fakeDevice.
type fakeBuffer struct {
	label    string
	size     uint64
	data     []byte
	released bool
}

func (b *fakeBuffer) Label() string { return b.label }
func (b *fakeBuffer) Size() uint64  { return b.size }
func (b *fakeBuffer) Release()      { b.released = true }

// fakeDevice records buffer traffic in call order.
type fakeDevice struct {
	buffers []*fakeBuffer
	events  []string
	writes  int
	draws   int
	failOn  string
}

func (d *fakeDevice) CreateVertexBuffer(label string, size uint64) (renderer.Buffer, error) {
	if d.failOn == "vertex" {
		return nil, fmt.Errorf("out of memory")
	}
	b := &fakeBuffer{label: label, size: size}
	d.buffers = append(d.buffers, b)
	d.events = append(d.events, "create-vertex")
	return b, nil
}

func (d *fakeDevice) CreateIndexBuffer(label string, data []byte) (renderer.Buffer, error) {
	b := &fakeBuffer{label: label, size: uint64(len(data)), data: append([]byte(nil), data...)}
	d.buffers = append(d.buffers, b)
	d.events = append(d.events, "create-index")
	return b, nil
}

func (d *fakeDevice) WriteBuffer(buf renderer.Buffer, offset uint64, data []byte) {
	b := buf.(*fakeBuffer)
	b.data = append(b.data[:0], data...)
	d.writes++
	d.events = append(d.events, "write")
}

func (d *fakeDevice) DrawIndexed(pass renderer.EffectPass, vertexBuffer, indexBuffer renderer.Buffer, indexCount uint32) {
	d.draws++
	d.events = append(d.events, fmt.Sprintf("draw %s %d", pass.Label(), indexCount))
}

func (d *fakeDevice) released() int {
	n := 0
	for _, b := range d.buffers {
		if b.released {
			n++
		}
	}
	return n
}
