package renderer

import "github.com/go-gl/mathgl/mgl32"

// EffectPass is one pipeline configuration applied before a draw.
// Passes created by a backend carry the backend's pipeline and bind group state.
type EffectPass interface {
	Label() string
}

// Effect is an ordered list of passes; a model draws itself once per pass.
type Effect interface {
	// Passes returns the passes in application order.
	//
	// Returns:
	//   - []EffectPass: the effect passes
	Passes() []EffectPass
}

// TexturedEffect draws unlit textured triangles with a single view-projection uniform.
type TexturedEffect interface {
	Effect

	// SetViewProjection uploads the camera view-projection matrix used by every pass.
	//
	// Parameters:
	//   - viewProjection: projection * view
	SetViewProjection(viewProjection mgl32.Mat4)

	// Release frees the effect's GPU resources.
	Release()
}

// effect is a plain Effect over a fixed pass list.
type effect struct {
	passes []EffectPass
}

var _ Effect = &effect{}

// NewEffect returns an Effect over the given passes.
//
// Parameters:
//   - passes: the passes in application order
//
// Returns:
//   - Effect: the effect
func NewEffect(passes ...EffectPass) Effect {
	return &effect{passes: passes}
}

func (e *effect) Passes() []EffectPass {
	return e.passes
}

// namedPass is an EffectPass carrying only a label. Backends ignore passes they did not create.
type namedPass string

// NewNamedPass returns a label-only EffectPass, for tests and headless devices.
//
// Parameters:
//   - label: the pass label
//
// Returns:
//   - EffectPass: the pass
func NewNamedPass(label string) EffectPass {
	return namedPass(label)
}

func (p namedPass) Label() string {
	return string(p)
}
