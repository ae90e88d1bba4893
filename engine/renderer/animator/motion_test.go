package animator

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

func translation(x float32) mgl32.Mat4 {
	return mgl32.Translate3D(x, 0, 0)
}

// linearClip moves bone 0 by +1 on X per frame.
func linearClip(frames int) Clip {
	keys := make([]Keyframe, frames)
	for i := range keys {
		keys[i] = Keyframe{Frame: i, Matrix: translation(float32(i))}
	}
	return Clip{
		Name:       "linear",
		BoneCount:  2,
		FrameCount: frames,
		Tracks:     []Track{{BoneKey: 0, Keyframes: keys}},
	}
}

func mustMotion(t *testing.T, clip Clip, bind map[int]mgl32.Mat4, opts ...MotionBuilderOption) Motion {
	t.Helper()
	m, err := NewMotion(clip, bind, opts...)
	if err != nil {
		t.Fatalf("NewMotion() error = %v", err)
	}
	return m
}

func TestAdvanceWrapsAfterLastFrame(t *testing.T) {
	m := mustMotion(t, linearClip(3), nil)

	want := []int{1, 2, 0, 1}
	for i, w := range want {
		if changed := m.Advance(0); !changed {
			t.Fatalf("Advance #%d reported no change", i+1)
		}
		if m.Frame() != w {
			t.Fatalf("after Advance #%d frame = %d, want %d", i+1, m.Frame(), w)
		}
	}
}

func TestAdvanceIgnoresDeltaTimeByDefault(t *testing.T) {
	tests := []struct {
		name  string
		dt    float32
		calls int
	}{
		{"zero dt", 0, 7},
		{"tiny dt", 1e-6, 7},
		{"huge dt", 1000, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustMotion(t, linearClip(5), nil)
			for range tt.calls {
				m.Advance(tt.dt)
			}
			if got, want := m.Frame(), tt.calls%5; got != want {
				t.Fatalf("frame after %d calls = %d, want %d", tt.calls, got, want)
			}
		})
	}
}

func TestAdvanceSingleFrameClipNeverChanges(t *testing.T) {
	m := mustMotion(t, linearClip(1), nil)
	for range 3 {
		if m.Advance(1) {
			t.Fatal("Advance on a single-frame clip reported a change")
		}
	}
	if m.Frame() != 0 {
		t.Fatalf("frame = %d, want 0", m.Frame())
	}
}

func TestFramesPerTick(t *testing.T) {
	m := mustMotion(t, linearClip(5), nil, WithFramesPerTick(2))
	m.Advance(0)
	m.Advance(0)
	m.Advance(0)
	if m.Frame() != 1 {
		t.Fatalf("frame = %d, want 1", m.Frame())
	}

	// a full lap lands on the same frame
	lap := mustMotion(t, linearClip(4), nil, WithFramesPerTick(4))
	if lap.Advance(0) {
		t.Fatal("advancing a full lap should not report a change")
	}
}

func TestFrameDurationAccumulates(t *testing.T) {
	m := mustMotion(t, linearClip(8), nil, WithFrameDuration(250*time.Millisecond))

	if m.Advance(0.125) {
		t.Fatal("half a frame should not change the frame")
	}
	if !m.Advance(0.125) || m.Frame() != 1 {
		t.Fatalf("frame = %d after one frame duration, want 1", m.Frame())
	}
	if !m.Advance(0.5) || m.Frame() != 3 {
		t.Fatalf("frame = %d after two more durations, want 3", m.Frame())
	}
	if m.Advance(-1) {
		t.Fatal("negative delta should not advance")
	}
}

func TestMatrixFallbacks(t *testing.T) {
	bind := map[int]mgl32.Mat4{
		0: mgl32.Translate3D(0, 10, 0),
		1: mgl32.Translate3D(0, 0, 5),
	}
	m := mustMotion(t, linearClip(3), bind)
	m.Advance(0)

	// tracked bone: keyframe * bind
	want := translation(1).Mul4(bind[0])
	if got := m.Matrix(0); !got.ApproxEqual(want) {
		t.Errorf("Matrix(0) = %v, want %v", got, want)
	}
	// untracked bone with a bind pose
	if got := m.Matrix(1); !got.ApproxEqual(bind[1]) {
		t.Errorf("Matrix(1) = %v, want bind pose %v", got, bind[1])
	}
	// unknown bone
	if got := m.Matrix(42); !got.ApproxEqual(mgl32.Ident4()) {
		t.Errorf("Matrix(42) = %v, want identity", got)
	}
	if !m.HasTrack(0) || m.HasTrack(1) {
		t.Error("HasTrack mismatch")
	}
}

func TestStepSamplingHoldsLatestKey(t *testing.T) {
	clip := Clip{
		Name:       "sparse",
		BoneCount:  1,
		FrameCount: 6,
		Tracks: []Track{{BoneKey: 0, Keyframes: []Keyframe{
			{Frame: 4, Matrix: translation(4)},
			{Frame: 1, Matrix: translation(1)},
		}}},
	}
	m := mustMotion(t, clip, nil)

	want := []float32{1, 1, 1, 1, 4, 4}
	for f, x := range want {
		m.SetFrame(f)
		if got := m.Matrix(0).Col(3).X(); got != x {
			t.Errorf("frame %d translation x = %v, want %v", f, got, x)
		}
	}
}

func TestCloneHasIndependentCursor(t *testing.T) {
	a := mustMotion(t, linearClip(4), nil, WithFramesPerTick(1))
	a.Advance(0)
	b := a.Clone()
	if b.Frame() != 0 {
		t.Fatalf("clone frame = %d, want 0", b.Frame())
	}
	b.Advance(0)
	b.Advance(0)
	if a.Frame() != 1 || b.Frame() != 2 {
		t.Fatalf("frames a=%d b=%d, want 1 and 2", a.Frame(), b.Frame())
	}
}

func TestSetFrameAndReset(t *testing.T) {
	m := mustMotion(t, linearClip(4), nil, WithStartFrame(6))
	if m.Frame() != 2 {
		t.Fatalf("start frame = %d, want 2", m.Frame())
	}
	m.SetFrame(-1)
	if m.Frame() != 3 {
		t.Fatalf("SetFrame(-1) = %d, want 3", m.Frame())
	}
	m.Reset()
	if m.Frame() != 0 {
		t.Fatalf("Reset frame = %d, want 0", m.Frame())
	}
}

func TestNewMotionRejectsInvalidClips(t *testing.T) {
	tests := []struct {
		name string
		clip Clip
	}{
		{"no frames", Clip{Name: "a", BoneCount: 1, FrameCount: 0}},
		{"negative bones", Clip{Name: "b", BoneCount: -1, FrameCount: 1}},
		{"track key out of range", Clip{Name: "c", BoneCount: 2, FrameCount: 2, Tracks: []Track{{BoneKey: 2}}}},
		{"duplicate track", Clip{Name: "d", BoneCount: 2, FrameCount: 2, Tracks: []Track{{BoneKey: 1}, {BoneKey: 1}}}},
		{"keyframe out of range", Clip{Name: "e", BoneCount: 1, FrameCount: 2, Tracks: []Track{{BoneKey: 0, Keyframes: []Keyframe{{Frame: 2}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMotion(tt.clip, nil)
			if !errors.Is(err, ErrInvalidClip) {
				t.Fatalf("NewMotion() error = %v, want ErrInvalidClip", err)
			}
		})
	}
}
