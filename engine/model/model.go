package model

import (
	"fmt"

	"github.com/Carmen-Shannon/c3-preview/common"
	"github.com/Carmen-Shannon/c3-preview/engine/renderer"
	"github.com/Carmen-Shannon/c3-preview/engine/renderer/animator"
	"github.com/pkg/errors"
)

// Model is a CPU-skinned, textured mesh driven by a Motion.
//
// Each Tick advances the active motion; when its frame changes the live vertices are re-posed
// from the bind pose and the vertex buffer becomes dirty. The buffer is uploaded lazily by
// VertexBuffer (and therefore Draw), at most once per change.
// A Model is not safe for concurrent use.
type Model interface {
	// Name returns the model identifier used in buffer labels.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Tick advances the active motion and re-skins the live vertices if its frame changed.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the previous tick, in seconds (used only by time-based motions)
	Tick(deltaTime float32)

	// VertexBuffer returns the GPU vertex buffer, uploading the live vertices first if the buffer is dirty.
	// The same handle is returned on every call.
	//
	// Returns:
	//   - renderer.Buffer: the vertex buffer
	VertexBuffer() renderer.Buffer

	// IndexBuffer returns the GPU index buffer (16-bit indices).
	//
	// Returns:
	//   - renderer.Buffer: the index buffer
	IndexBuffer() renderer.Buffer

	// IndexCount returns the number of indices drawn.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// Draw uploads the vertex buffer if needed and issues one indexed triangle-list draw per effect pass.
	//
	// Parameters:
	//   - effect: the effect whose passes are applied; nil draws nothing
	Draw(effect renderer.Effect)

	// Skeleton returns the bone to vertex mapping.
	//
	// Returns:
	//   - *Skeleton: the immutable skeleton
	Skeleton() *Skeleton

	// BaseMotion returns the motion the model was built with.
	//
	// Returns:
	//   - animator.Motion: the base motion
	BaseMotion() animator.Motion

	// ActiveMotion returns the override motion if one is set, otherwise the base motion.
	//
	// Returns:
	//   - animator.Motion: the motion ticked by Tick
	ActiveMotion() animator.Motion

	// SetOverrideMotion installs a motion that replaces the base motion until cleared.
	// The override is not reset; it plays from its current frame.
	//
	// Parameters:
	//   - m: the override motion
	//
	// Returns:
	//   - error: ErrShapeMismatch (wrapped) if m has fewer bones than the skeleton addresses
	SetOverrideMotion(m animator.Motion) error

	// ClearOverrideMotion removes the override so Tick drives the base motion again.
	// The live vertices keep their last pose until the base motion's frame next changes.
	ClearOverrideMotion()

	// BlendMode returns how multiple influences on one vertex combine.
	//
	// Returns:
	//   - BlendMode: the current blend mode
	BlendMode() BlendMode

	// SetBlendMode changes the blend mode. Takes effect on the next frame change.
	//
	// Parameters:
	//   - mode: the new blend mode
	SetBlendMode(mode BlendMode)

	// Texture returns the texture reference the model was built with, which may be nil.
	//
	// Returns:
	//   - renderer.Texture: the texture reference
	Texture() renderer.Texture

	// BufferState reports whether the GPU vertex buffer matches the live vertices.
	//
	// Returns:
	//   - BufferState: BufferDirty or BufferClean
	BufferState() BufferState

	// LiveVertices returns a copy of the current skinned vertices.
	//
	// Returns:
	//   - []GPUVertex: the live vertices
	LiveVertices() []GPUVertex

	// BindVertices returns a copy of the bind-pose vertices.
	//
	// Returns:
	//   - []GPUVertex: the bind-pose vertices
	BindVertices() []GPUVertex

	// Uploads returns how many times the vertex buffer has been written.
	//
	// Returns:
	//   - int: the upload count
	Uploads() int

	// Release frees the model's GPU buffers.
	Release()
}

// model is the implementation of the Model interface.
type model struct {
	name    string
	device  renderer.Device
	texture renderer.Texture

	bind    []GPUVertex
	live    []GPUVertex
	indices []uint16

	skeleton       *Skeleton
	baseMotion     animator.Motion
	overrideMotion animator.Motion
	motionOptions  []animator.MotionBuilderOption

	blendMode BlendMode
	blend     []blendAccumulator

	vertexBuffer renderer.Buffer
	indexBuffer  renderer.Buffer
	bufferState  BufferState
	uploads      int
	staging      []byte
}

// blendAccumulator collects weighted positions for one vertex in BlendWeighted mode.
type blendAccumulator struct {
	sum    [3]float32
	weight float32
}

var _ Model = &model{}

// NewModel builds a Model from a mesh and the clip that animates it, and creates its GPU buffers on device.
//
// Parameters:
//   - device: the device owning the vertex and index buffers
//   - mesh: the bind-pose geometry and bone influences
//   - clip: the base motion clip
//   - options: functional options (name, texture, blend mode, motion step policy)
//
// Returns:
//   - Model: the new model, with its buffer state Dirty
//   - error: ErrInconsistentData or ErrShapeMismatch (wrapped), or a device allocation error
func NewModel(device renderer.Device, mesh Mesh, clip animator.Clip, options ...ModelBuilderOption) (Model, error) {
	if device == nil {
		return nil, errors.New("model: nil device")
	}

	m := &model{
		name:        common.Coalesce(mesh.Name, clip.Name, "model"),
		device:      device,
		bufferState: BufferDirty,
	}
	for _, opt := range options {
		opt(m)
	}

	for i, idx := range mesh.Indices {
		if int(idx) >= len(mesh.Vertices) {
			return nil, errors.Wrapf(ErrInconsistentData, "model %q: index %d references vertex %d, mesh has %d", m.name, i, idx, len(mesh.Vertices))
		}
	}

	skeleton, err := BuildSkeleton(mesh.Bones, len(mesh.Vertices))
	if err != nil {
		return nil, errors.WithMessagef(err, "model %q", m.name)
	}
	m.skeleton = skeleton

	for key := range mesh.BindPose {
		if key < 0 {
			return nil, errors.Wrapf(ErrShapeMismatch, "model %q: negative bind pose key %d", m.name, key)
		}
	}

	motion, err := animator.NewMotion(clip, mesh.BindPose, m.motionOptions...)
	if err != nil {
		return nil, errors.Wrapf(ErrShapeMismatch, "model %q: %v", m.name, err)
	}
	if err := checkShape(skeleton, motion); err != nil {
		return nil, errors.WithMessagef(err, "model %q", m.name)
	}
	m.baseMotion = motion

	m.bind = make([]GPUVertex, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		m.bind[i] = GPUVertex{Position: v.Position, TexCoord: v.TexCoord}
	}
	m.live = make([]GPUVertex, len(m.bind))
	copy(m.live, m.bind)
	m.indices = make([]uint16, len(mesh.Indices))
	copy(m.indices, mesh.Indices)

	ib, err := device.CreateIndexBuffer(m.name+" Index Buffer", MarshalIndices(m.indices))
	if err != nil {
		return nil, fmt.Errorf("model %q: failed to create index buffer: %w", m.name, err)
	}
	vb, err := device.CreateVertexBuffer(m.name+" Vertex Buffer", uint64(len(m.live)*GPUVertexSize))
	if err != nil {
		ib.Release()
		return nil, fmt.Errorf("model %q: failed to create vertex buffer: %w", m.name, err)
	}
	m.indexBuffer = ib
	m.vertexBuffer = vb

	return m, nil
}

// checkShape verifies every skeleton bone is addressable by the motion.
func checkShape(s *Skeleton, m animator.Motion) error {
	if s.MaxKey() >= m.BoneCount() {
		return errors.Wrapf(ErrShapeMismatch, "skeleton bone %d but motion %q has %d bones", s.MaxKey(), m.Name(), m.BoneCount())
	}
	return nil
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Tick(deltaTime float32) {
	motion := m.ActiveMotion()
	if !motion.Advance(deltaTime) {
		return
	}

	switch m.blendMode {
	case BlendWeighted:
		m.skinWeighted(motion)
	default:
		m.skinLastWriter(motion)
	}
	m.bufferState = BufferDirty
}

// skinLastWriter re-poses each influenced vertex from its bind position, ignoring weights.
func (m *model) skinLastWriter(motion animator.Motion) {
	m.skeleton.each(func(key int, vertices []VertexWeight) {
		mat := motion.Matrix(key)
		for _, vw := range vertices {
			if vw.Weight == 0 {
				continue
			}
			m.live[vw.Index].Position = common.TransformPoint(m.bind[vw.Index].Position, mat)
			m.live[vw.Index].TexCoord = m.bind[vw.Index].TexCoord
		}
	})
}

// skinWeighted re-poses each influenced vertex as the weight-normalised sum of its bone transforms.
func (m *model) skinWeighted(motion animator.Motion) {
	if len(m.blend) != len(m.live) {
		m.blend = make([]blendAccumulator, len(m.live))
	} else {
		clear(m.blend)
	}

	m.skeleton.each(func(key int, vertices []VertexWeight) {
		mat := motion.Matrix(key)
		for _, vw := range vertices {
			if vw.Weight == 0 {
				continue
			}
			p := common.TransformPoint(m.bind[vw.Index].Position, mat)
			acc := &m.blend[vw.Index]
			acc.sum[0] += p[0] * vw.Weight
			acc.sum[1] += p[1] * vw.Weight
			acc.sum[2] += p[2] * vw.Weight
			acc.weight += vw.Weight
		}
	})

	for i, acc := range m.blend {
		if acc.weight == 0 {
			continue
		}
		m.live[i].Position = [3]float32{acc.sum[0] / acc.weight, acc.sum[1] / acc.weight, acc.sum[2] / acc.weight}
		m.live[i].TexCoord = m.bind[i].TexCoord
	}
}

func (m *model) VertexBuffer() renderer.Buffer {
	if m.bufferState == BufferDirty {
		m.staging = MarshalVertices(m.staging, m.live)
		m.device.WriteBuffer(m.vertexBuffer, 0, m.staging)
		m.bufferState = BufferClean
		m.uploads++
	}
	return m.vertexBuffer
}

func (m *model) IndexBuffer() renderer.Buffer {
	return m.indexBuffer
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) Draw(effect renderer.Effect) {
	if effect == nil {
		return
	}
	vb := m.VertexBuffer()
	for _, pass := range effect.Passes() {
		m.device.DrawIndexed(pass, vb, m.indexBuffer, uint32(len(m.indices)))
	}
}

func (m *model) Skeleton() *Skeleton {
	return m.skeleton
}

func (m *model) BaseMotion() animator.Motion {
	return m.baseMotion
}

func (m *model) ActiveMotion() animator.Motion {
	if m.overrideMotion != nil {
		return m.overrideMotion
	}
	return m.baseMotion
}

func (m *model) SetOverrideMotion(motion animator.Motion) error {
	if motion == nil {
		return errors.New("override motion is nil")
	}
	if err := checkShape(m.skeleton, motion); err != nil {
		return errors.WithMessagef(err, "model %q", m.name)
	}
	m.overrideMotion = motion
	return nil
}

func (m *model) ClearOverrideMotion() {
	m.overrideMotion = nil
}

func (m *model) BlendMode() BlendMode {
	return m.blendMode
}

func (m *model) SetBlendMode(mode BlendMode) {
	m.blendMode = mode
}

func (m *model) Texture() renderer.Texture {
	return m.texture
}

func (m *model) BufferState() BufferState {
	return m.bufferState
}

func (m *model) LiveVertices() []GPUVertex {
	out := make([]GPUVertex, len(m.live))
	copy(out, m.live)
	return out
}

func (m *model) BindVertices() []GPUVertex {
	out := make([]GPUVertex, len(m.bind))
	copy(out, m.bind)
	return out
}

func (m *model) Uploads() int {
	return m.uploads
}

func (m *model) Release() {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Release()
		m.indexBuffer = nil
	}
}
