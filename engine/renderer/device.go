package renderer

// Device is the GPU surface that models draw through.
// It is passed explicitly to every model; there is no process-wide device.
// All methods must be called from the thread that owns the device.
type Device interface {
	// CreateVertexBuffer allocates a vertex buffer of the given size. Its contents are undefined until written.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - size: buffer size in bytes
	//
	// Returns:
	//   - Buffer: the allocated buffer
	//   - error: error if allocation fails
	CreateVertexBuffer(label string, size uint64) (Buffer, error)

	// CreateIndexBuffer allocates an index buffer and fills it with data.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - data: the index bytes (16-bit indices, length a multiple of 4)
	//
	// Returns:
	//   - Buffer: the allocated buffer
	//   - error: error if allocation fails
	CreateIndexBuffer(label string, data []byte) (Buffer, error)

	// WriteBuffer queues a write of data into buf at offset.
	//
	// Parameters:
	//   - buf: a buffer created by this device
	//   - offset: byte offset into the buffer
	//   - data: bytes to write (length a multiple of 4)
	WriteBuffer(buf Buffer, offset uint64, data []byte)

	// DrawIndexed records one indexed triangle-list draw of the given buffers using pass's pipeline state.
	//
	// Parameters:
	//   - pass: the effect pass to apply
	//   - vertexBuffer: the vertex buffer to bind at slot 0
	//   - indexBuffer: the 16-bit index buffer
	//   - indexCount: number of indices to draw
	DrawIndexed(pass EffectPass, vertexBuffer, indexBuffer Buffer, indexCount uint32)
}

// Buffer is a GPU buffer owned by a Device.
type Buffer interface {
	// Label returns the debug label of the buffer.
	Label() string

	// Size returns the buffer size in bytes.
	Size() uint64

	// Release frees the GPU resource. The buffer must not be used afterwards.
	Release()
}

// Texture is an opaque sampled texture.
type Texture interface {
	Label() string
	Width() uint32
	Height() uint32
	Release()
}
