package animator

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Motion is a playback cursor over an immutable Clip.
// It yields one world matrix per bone for the current frame and advances by a fixed step.
// A Motion is not safe for concurrent use; give each concurrently ticked model its own instance (see Clone).
type Motion interface {
	// Name returns the name of the underlying clip.
	//
	// Returns:
	//   - string: the clip name
	Name() string

	// BoneCount returns the number of bones the clip addresses.
	//
	// Returns:
	//   - int: the clip bone count
	BoneCount() int

	// FrameCount returns the total number of frames in the clip.
	//
	// Returns:
	//   - int: the frame count (always >= 1)
	FrameCount() int

	// Frame returns the current frame index.
	//
	// Returns:
	//   - int: the current frame in [0, FrameCount)
	Frame() int

	// Advance moves the cursor forward according to the step policy, wrapping to frame 0 after the last frame.
	// With the default policy the cursor moves exactly one frame per call and deltaTime is ignored.
	// With WithFrameDuration the cursor moves one frame for every elapsed frame duration.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the previous call, in seconds
	//
	// Returns:
	//   - bool: true iff the current frame index changed
	Advance(deltaTime float32) bool

	// Matrix returns the world matrix of a bone at the current frame.
	// Bones with a track yield keyframe * bindPose; bones without one yield their bind pose,
	// and bones with neither yield identity.
	//
	// Parameters:
	//   - boneKey: the bone to look up
	//
	// Returns:
	//   - mgl32.Mat4: the bone world matrix
	Matrix(boneKey int) mgl32.Mat4

	// HasTrack reports whether the clip animates the given bone.
	//
	// Parameters:
	//   - boneKey: the bone to check
	//
	// Returns:
	//   - bool: true if a keyframe track exists for the bone
	HasTrack(boneKey int) bool

	// SetFrame moves the cursor to a specific frame, taken modulo FrameCount.
	//
	// Parameters:
	//   - frame: the target frame
	SetFrame(frame int)

	// Reset moves the cursor back to frame 0 and clears any accumulated time.
	Reset()

	// Clone returns an independent cursor over the same clip data, positioned at frame 0
	// with the same step policy.
	//
	// Returns:
	//   - Motion: the new cursor
	Clone() Motion
}

// motionData is the immutable, pre-sampled part of a Motion shared between clones.
type motionData struct {
	name       string
	boneCount  int
	frameCount int
	tracks     map[int]sampledTrack
	bindPose   map[int]mgl32.Mat4
}

// motion is the implementation of the Motion interface.
type motion struct {
	data *motionData

	frame int

	// step policy
	framesPerTick int
	frameDuration float32
	elapsed       float32
}

var _ Motion = &motion{}

// NewMotion validates a clip, pre-samples its tracks against the bind pose and returns a cursor at frame 0.
// The bind pose map is copied.
//
// Parameters:
//   - clip: the clip to play back
//   - bindPose: per-bone bind matrices; missing bones use identity
//   - options: step policy options
//
// Returns:
//   - Motion: the new cursor
//   - error: ErrInvalidClip (wrapped) if the clip is inconsistent
func NewMotion(clip Clip, bindPose map[int]mgl32.Mat4, options ...MotionBuilderOption) (Motion, error) {
	if err := validateClip(clip); err != nil {
		return nil, err
	}

	data := &motionData{
		name:       clip.Name,
		boneCount:  clip.BoneCount,
		frameCount: clip.FrameCount,
		tracks:     make(map[int]sampledTrack, len(clip.Tracks)),
		bindPose:   make(map[int]mgl32.Mat4, len(bindPose)),
	}
	for k, m := range bindPose {
		data.bindPose[k] = m
	}
	for _, track := range clip.Tracks {
		if len(track.Keyframes) == 0 {
			continue
		}
		bind, ok := data.bindPose[track.BoneKey]
		if !ok {
			bind = mgl32.Ident4()
		}
		data.tracks[track.BoneKey] = sampleTrack(track, clip.FrameCount, bind)
	}

	m := &motion{
		data:          data,
		framesPerTick: 1,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.framesPerTick < 1 {
		m.framesPerTick = 1
	}
	return m, nil
}

func (m *motion) Name() string {
	return m.data.name
}

func (m *motion) BoneCount() int {
	return m.data.boneCount
}

func (m *motion) FrameCount() int {
	return m.data.frameCount
}

func (m *motion) Frame() int {
	return m.frame
}

func (m *motion) Advance(deltaTime float32) bool {
	steps := m.framesPerTick
	if m.frameDuration > 0 {
		if deltaTime > 0 {
			m.elapsed += deltaTime
		}
		steps = int(m.elapsed / m.frameDuration)
		m.elapsed -= float32(steps) * m.frameDuration
	}
	if steps == 0 || m.data.frameCount <= 1 {
		return false
	}

	next := (m.frame + steps) % m.data.frameCount
	changed := next != m.frame
	m.frame = next
	return changed
}

func (m *motion) Matrix(boneKey int) mgl32.Mat4 {
	if track, ok := m.data.tracks[boneKey]; ok {
		return track.frames[m.frame]
	}
	if bind, ok := m.data.bindPose[boneKey]; ok {
		return bind
	}
	return mgl32.Ident4()
}

func (m *motion) HasTrack(boneKey int) bool {
	_, ok := m.data.tracks[boneKey]
	return ok
}

func (m *motion) SetFrame(frame int) {
	n := m.data.frameCount
	m.frame = ((frame % n) + n) % n
}

func (m *motion) Reset() {
	m.frame = 0
	m.elapsed = 0
}

func (m *motion) Clone() Motion {
	return &motion{
		data:          m.data,
		framesPerTick: m.framesPerTick,
		frameDuration: m.frameDuration,
	}
}
