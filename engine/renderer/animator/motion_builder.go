package animator

import "time"

// MotionBuilderOption is a functional option for configuring a Motion via NewMotion.
type MotionBuilderOption func(*motion)

// WithFramesPerTick is an option builder that sets how many frames a single Advance call moves.
// Values below 1 are treated as 1. Ignored when a frame duration is set.
//
// Parameters:
//   - frames: frames to advance per call
//
// Returns:
//   - MotionBuilderOption: a function that applies the frames-per-tick option to a motion
func WithFramesPerTick(frames int) MotionBuilderOption {
	return func(m *motion) {
		m.framesPerTick = frames
	}
}

// WithFrameDuration is an option builder that switches the Motion to time-based stepping.
// Advance accumulates its deltaTime and moves one frame for every elapsed duration.
// A zero or negative duration keeps the fixed per-call step.
//
// Parameters:
//   - d: the playback time of one frame
//
// Returns:
//   - MotionBuilderOption: a function that applies the frame duration option to a motion
func WithFrameDuration(d time.Duration) MotionBuilderOption {
	return func(m *motion) {
		if d <= 0 {
			m.frameDuration = 0
			return
		}
		m.frameDuration = float32(d.Seconds())
	}
}

// WithStartFrame is an option builder that positions the cursor before the first Advance.
// Out-of-range frames wrap modulo the clip frame count.
//
// Parameters:
//   - frame: the initial frame
//
// Returns:
//   - MotionBuilderOption: a function that applies the start frame option to a motion
func WithStartFrame(frame int) MotionBuilderOption {
	return func(m *motion) {
		n := m.data.frameCount
		m.frame = ((frame % n) + n) % n
	}
}
