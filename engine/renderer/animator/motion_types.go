package animator

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrInvalidClip is returned by NewMotion when the clip data is internally inconsistent.
var ErrInvalidClip = errors.New("invalid motion clip")

// Keyframe is a single bone pose sample.
type Keyframe struct {
	// Frame is the frame index the pose applies from.
	Frame int
	// Matrix is the bone transform at Frame, applied after the bind pose.
	Matrix mgl32.Mat4
}

// Track holds every keyframe of one bone, in any order.
type Track struct {
	BoneKey   int
	Keyframes []Keyframe
}

// Clip is the immutable source data for a Motion.
// A Motion never mutates the Clip it was built from, so one Clip may back any number of Motions.
type Clip struct {
	// Name identifies the clip in logs and errors.
	Name string

	// BoneCount is the number of bones the clip addresses. Track keys are in [0, BoneCount).
	BoneCount int

	// FrameCount is the total number of frames. Must be at least 1.
	FrameCount int

	// Tracks are the per-bone keyframe lists. Bones without a track hold their bind pose.
	Tracks []Track
}

// sampledTrack is a track resolved into one world matrix per frame.
type sampledTrack struct {
	frames []mgl32.Mat4
}

// sampleTrack resolves the step-sampled pose of every frame of a track and premultiplies the bind pose.
// Frames before the first keyframe hold the first keyframe.
func sampleTrack(track Track, frameCount int, bind mgl32.Mat4) sampledTrack {
	keyed := make([]*mgl32.Mat4, frameCount)
	first := -1
	for i := range track.Keyframes {
		kf := &track.Keyframes[i]
		keyed[kf.Frame] = &kf.Matrix
		if first < 0 || kf.Frame < first {
			first = kf.Frame
		}
	}

	frames := make([]mgl32.Mat4, frameCount)
	if first < 0 {
		for f := range frames {
			frames[f] = bind
		}
		return sampledTrack{frames: frames}
	}
	current := keyed[first]
	for f := range frameCount {
		if keyed[f] != nil {
			current = keyed[f]
		}
		frames[f] = current.Mul4(bind)
	}
	return sampledTrack{frames: frames}
}

// validateClip checks the clip shape before sampling.
func validateClip(clip Clip) error {
	if clip.FrameCount < 1 {
		return errors.Wrapf(ErrInvalidClip, "clip %q: frame count %d, want >= 1", clip.Name, clip.FrameCount)
	}
	if clip.BoneCount < 0 {
		return errors.Wrapf(ErrInvalidClip, "clip %q: negative bone count %d", clip.Name, clip.BoneCount)
	}

	seen := make(map[int]struct{}, len(clip.Tracks))
	for _, track := range clip.Tracks {
		if track.BoneKey < 0 || track.BoneKey >= clip.BoneCount {
			return errors.Wrapf(ErrInvalidClip, "clip %q: track bone %d outside [0, %d)", clip.Name, track.BoneKey, clip.BoneCount)
		}
		if _, dup := seen[track.BoneKey]; dup {
			return errors.Wrapf(ErrInvalidClip, "clip %q: duplicate track for bone %d", clip.Name, track.BoneKey)
		}
		seen[track.BoneKey] = struct{}{}

		for _, kf := range track.Keyframes {
			if kf.Frame < 0 || kf.Frame >= clip.FrameCount {
				return errors.Wrapf(ErrInvalidClip, "clip %q: bone %d keyframe %d outside [0, %d)", clip.Name, track.BoneKey, kf.Frame, clip.FrameCount)
			}
		}
	}
	return nil
}
