package model

import (
	"github.com/Carmen-Shannon/c3-preview/engine/renderer"
	"github.com/Carmen-Shannon/c3-preview/engine/renderer/animator"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
// Defaults to the mesh name, then the clip name.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		if name != "" {
			m.name = name
		}
	}
}

// WithTexture is an option builder that sets the texture reference of the Model.
//
// Parameters:
//   - texture: the texture to reference
//
// Returns:
//   - ModelBuilderOption: a function that applies the texture option to a model
func WithTexture(texture renderer.Texture) ModelBuilderOption {
	return func(m *model) {
		m.texture = texture
	}
}

// WithBlendMode is an option builder that sets how multiple bone influences on one vertex combine.
// Defaults to BlendLastWriterWins.
//
// Parameters:
//   - mode: the blend mode
//
// Returns:
//   - ModelBuilderOption: a function that applies the blend mode option to a model
func WithBlendMode(mode BlendMode) ModelBuilderOption {
	return func(m *model) {
		m.blendMode = mode
	}
}

// WithMotionOptions is an option builder that passes step policy options to the base Motion.
//
// Parameters:
//   - options: the motion options
//
// Returns:
//   - ModelBuilderOption: a function that applies the motion options to a model
func WithMotionOptions(options ...animator.MotionBuilderOption) ModelBuilderOption {
	return func(m *model) {
		m.motionOptions = append(m.motionOptions, options...)
	}
}
