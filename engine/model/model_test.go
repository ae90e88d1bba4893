package model

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/c3-preview/engine/renderer"
	"github.com/Carmen-Shannon/c3-preview/engine/renderer/animator"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const eps = 1e-5

func triangleMesh() Mesh {
	return Mesh{
		Name: "triangle",
		Vertices: []Vertex{
			{Position: [3]float32{1, 0, 0}, TexCoord: [2]float32{0, 0}},
			{Position: [3]float32{0, 1, 0}, TexCoord: [2]float32{1, 0}},
			{Position: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 1}},
		},
		Indices: []uint16{0, 1, 2},
		Bones: []BoneBinding{
			{Key: 0, Vertices: []VertexWeight{{Index: 0, Weight: 1}, {Index: 1, Weight: 1}, {Index: 2, Weight: 1}}},
		},
	}
}

// rotationClip rotates bone 0 by 180 degrees about Y on frame 1.
func rotationClip() animator.Clip {
	return animator.Clip{
		Name:       "spin",
		BoneCount:  2,
		FrameCount: 2,
		Tracks: []animator.Track{{BoneKey: 0, Keyframes: []animator.Keyframe{
			{Frame: 0, Matrix: mgl32.Ident4()},
			{Frame: 1, Matrix: mgl32.HomogRotate3DY(mgl32.DegToRad(180))},
		}}},
	}
}

// translationClip moves each bone in bones along X by offset[bone] on frame 1.
func translationClip(offsets map[int]float32) animator.Clip {
	clip := animator.Clip{Name: "shift", BoneCount: 2, FrameCount: 2}
	for key, x := range offsets {
		clip.Tracks = append(clip.Tracks, animator.Track{BoneKey: key, Keyframes: []animator.Keyframe{
			{Frame: 0, Matrix: mgl32.Ident4()},
			{Frame: 1, Matrix: mgl32.Translate3D(x, 0, 0)},
		}})
	}
	return clip
}

func newTestModel(t *testing.T, dev *fakeDevice, mesh Mesh, clip animator.Clip, opts ...ModelBuilderOption) Model {
	t.Helper()
	m, err := NewModel(dev, mesh, clip, opts...)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return m
}

func assertPosition(t *testing.T, m Model, i int, want mgl32.Vec3) {
	t.Helper()
	live := m.LiveVertices()
	if got := mgl32.Vec3(live[i].Position); !got.ApproxEqualThreshold(want, eps) {
		t.Fatalf("vertex %d = %v, want %v\nlive: %s", i, got, want, spew.Sdump(live))
	}
}

func TestTickRotatesTriangle(t *testing.T) {
	dev := &fakeDevice{}
	m := newTestModel(t, dev, triangleMesh(), rotationClip())

	m.Tick(1.0 / 60)

	assertPosition(t, m, 0, mgl32.Vec3{-1, 0, 0})
	assertPosition(t, m, 1, mgl32.Vec3{0, 1, 0})
	assertPosition(t, m, 2, mgl32.Vec3{0, 0, -1})
	if m.LiveVertices()[2].TexCoord != [2]float32{0, 1} {
		t.Errorf("tex coord changed: %v", m.LiveVertices()[2].TexCoord)
	}

	// frame 0 again: back to the bind pose, never compounding
	m.Tick(1.0 / 60)
	assertPosition(t, m, 0, mgl32.Vec3{1, 0, 0})
	if bind := m.BindVertices(); bind[0].Position != [3]float32{1, 0, 0} {
		t.Fatalf("bind pose mutated: %v", bind[0].Position)
	}
}

func TestBufferStateMachine(t *testing.T) {
	dev := &fakeDevice{}
	m := newTestModel(t, dev, triangleMesh(), rotationClip())

	if m.BufferState() != BufferDirty {
		t.Fatalf("new model state = %v, want dirty", m.BufferState())
	}
	vb := m.VertexBuffer()
	if dev.writes != 1 || m.BufferState() != BufferClean {
		t.Fatalf("after first VertexBuffer: writes=%d state=%v", dev.writes, m.BufferState())
	}
	if again := m.VertexBuffer(); again != vb || dev.writes != 1 {
		t.Fatalf("clean VertexBuffer re-uploaded (writes=%d) or changed handle", dev.writes)
	}

	m.Tick(0)
	if m.BufferState() != BufferDirty {
		t.Fatalf("state after changing tick = %v, want dirty", m.BufferState())
	}
	m.VertexBuffer()
	m.VertexBuffer()
	if dev.writes != 2 || m.Uploads() != 2 {
		t.Fatalf("writes = %d, uploads = %d, want 2", dev.writes, m.Uploads())
	}

	uploaded := vb.(*fakeBuffer).data
	if len(uploaded) != 3*GPUVertexSize {
		t.Fatalf("uploaded %d bytes, want %d", len(uploaded), 3*GPUVertexSize)
	}
}

func TestTickWithoutFrameChangeKeepsBufferClean(t *testing.T) {
	dev := &fakeDevice{}
	clip := rotationClip()
	clip.FrameCount = 1
	clip.Tracks[0].Keyframes = clip.Tracks[0].Keyframes[:1]
	m := newTestModel(t, dev, triangleMesh(), clip)

	m.VertexBuffer()
	for range 5 {
		m.Tick(1)
	}
	m.VertexBuffer()
	if dev.writes != 1 || m.BufferState() != BufferClean {
		t.Fatalf("writes = %d, state = %v; a static motion must not dirty the buffer", dev.writes, m.BufferState())
	}
}

func TestZeroWeightAndUninfluencedVerticesKeepBindPose(t *testing.T) {
	mesh := triangleMesh()
	mesh.Bones = []BoneBinding{
		{Key: 0, Vertices: []VertexWeight{{Index: 0, Weight: 1}, {Index: 1, Weight: 0}}},
	}
	m := newTestModel(t, &fakeDevice{}, mesh, rotationClip())

	m.Tick(0)
	assertPosition(t, m, 0, mgl32.Vec3{-1, 0, 0})
	assertPosition(t, m, 1, mgl32.Vec3{0, 1, 0})
	assertPosition(t, m, 2, mgl32.Vec3{0, 0, 1})
}

func sharedVertexMesh(order ...int) Mesh {
	mesh := Mesh{
		Name:     "shared",
		Vertices: []Vertex{{Position: [3]float32{0, 0, 0}}},
		Indices:  []uint16{0, 0, 0},
	}
	for _, key := range order {
		mesh.Bones = append(mesh.Bones, BoneBinding{Key: key, Vertices: []VertexWeight{{Index: 0, Weight: 0.5}}})
	}
	return mesh
}

func TestBlendModes(t *testing.T) {
	clip := translationClip(map[int]float32{0: 1, 1: 10})
	tests := []struct {
		name  string
		order []int
		mode  BlendMode
		wantX float32
	}{
		{"last writer is bone 1", []int{0, 1}, BlendLastWriterWins, 10},
		{"last writer is bone 0", []int{1, 0}, BlendLastWriterWins, 1},
		{"weighted average", []int{0, 1}, BlendWeighted, 5.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, &fakeDevice{}, sharedVertexMesh(tt.order...), clip, WithBlendMode(tt.mode))
			m.Tick(0)
			assertPosition(t, m, 0, mgl32.Vec3{tt.wantX, 0, 0})
		})
	}
}

func TestSetBlendModeAppliesOnNextFrameChange(t *testing.T) {
	clip := translationClip(map[int]float32{0: 1, 1: 10})
	clip.FrameCount = 3
	m := newTestModel(t, &fakeDevice{}, sharedVertexMesh(0, 1), clip)
	m.Tick(0)
	assertPosition(t, m, 0, mgl32.Vec3{10, 0, 0})

	m.SetBlendMode(BlendWeighted)
	if m.BlendMode() != BlendWeighted {
		t.Fatalf("BlendMode() = %v", m.BlendMode())
	}
	// frame 2 holds the frame 1 keys
	m.Tick(0)
	assertPosition(t, m, 0, mgl32.Vec3{5.5, 0, 0})
}

func TestOverrideMotion(t *testing.T) {
	m := newTestModel(t, &fakeDevice{}, triangleMesh(), rotationClip())

	override, err := animator.NewMotion(translationClip(map[int]float32{0: 2}), nil)
	if err != nil {
		t.Fatalf("NewMotion() error = %v", err)
	}
	if err := m.SetOverrideMotion(override); err != nil {
		t.Fatalf("SetOverrideMotion() error = %v", err)
	}
	if m.ActiveMotion() != override {
		t.Fatal("ActiveMotion() is not the override")
	}

	m.Tick(0)
	assertPosition(t, m, 0, mgl32.Vec3{3, 0, 0})
	if m.BaseMotion().Frame() != 0 {
		t.Fatalf("base motion advanced to %d while overridden", m.BaseMotion().Frame())
	}

	m.ClearOverrideMotion()
	if m.ActiveMotion() != m.BaseMotion() {
		t.Fatal("ActiveMotion() is not the base after clearing")
	}
	m.Tick(0)
	assertPosition(t, m, 0, mgl32.Vec3{-1, 0, 0})
}

func TestSetOverrideMotionShapeMismatch(t *testing.T) {
	mesh := triangleMesh()
	mesh.Bones[0].Key = 1
	m := newTestModel(t, &fakeDevice{}, mesh, translationClip(map[int]float32{1: 1}))

	small, err := animator.NewMotion(animator.Clip{Name: "one bone", BoneCount: 1, FrameCount: 2}, nil)
	if err != nil {
		t.Fatalf("NewMotion() error = %v", err)
	}
	if err := m.SetOverrideMotion(small); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("SetOverrideMotion() error = %v, want ErrShapeMismatch", err)
	}
	if m.ActiveMotion() != m.BaseMotion() {
		t.Fatal("rejected override was installed")
	}
}

func TestFrameDurationMotionOption(t *testing.T) {
	m := newTestModel(t, &fakeDevice{}, triangleMesh(), rotationClip(),
		WithMotionOptions(animator.WithFrameDuration(500*time.Millisecond)))

	m.Tick(0.25)
	assertPosition(t, m, 0, mgl32.Vec3{1, 0, 0})
	if m.BufferState() != BufferDirty {
		t.Fatal("new model should still be dirty")
	}
	m.VertexBuffer()
	m.Tick(0.25)
	assertPosition(t, m, 0, mgl32.Vec3{-1, 0, 0})
}

func TestDrawIssuesOneDrawPerPassAfterUpload(t *testing.T) {
	dev := &fakeDevice{}
	m := newTestModel(t, dev, triangleMesh(), rotationClip())
	effect := renderer.NewEffect(renderer.NewNamedPass("base"), renderer.NewNamedPass("outline"))

	m.Draw(effect)

	want := []string{"create-index", "create-vertex", "write", "draw base 3", "draw outline 3"}
	if len(dev.events) != len(want) {
		t.Fatalf("events = %v, want %v", dev.events, want)
	}
	for i := range want {
		if dev.events[i] != want[i] {
			t.Fatalf("events = %v, want %v", dev.events, want)
		}
	}

	m.Draw(nil)
	if dev.draws != 2 {
		t.Fatalf("Draw(nil) issued draws: %d", dev.draws)
	}
}

func TestNewModelErrors(t *testing.T) {
	badIndex := triangleMesh()
	badIndex.Indices = []uint16{0, 1, 5}

	badBone := triangleMesh()
	badBone.Bones[0].Vertices = append(badBone.Bones[0].Vertices, VertexWeight{Index: 9, Weight: 1})

	tooManyBones := triangleMesh()
	tooManyBones.Bones = append(tooManyBones.Bones, BoneBinding{Key: 2})

	badClip := rotationClip()
	badClip.FrameCount = 0

	tests := []struct {
		name string
		mesh Mesh
		clip animator.Clip
		want error
	}{
		{"triangle index out of range", badIndex, rotationClip(), ErrInconsistentData},
		{"bone vertex out of range", badBone, rotationClip(), ErrInconsistentData},
		{"bone key beyond motion", tooManyBones, rotationClip(), ErrShapeMismatch},
		{"invalid clip", triangleMesh(), badClip, ErrShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeDevice{}
			_, err := NewModel(dev, tt.mesh, tt.clip)
			if !errors.Is(err, tt.want) {
				t.Fatalf("NewModel() error = %v, want %v", err, tt.want)
			}
			if len(dev.buffers) != 0 {
				t.Fatalf("buffers created before validation failed: %d", len(dev.buffers))
			}
		})
	}
}

func TestNewModelReleasesIndexBufferOnVertexFailure(t *testing.T) {
	dev := &fakeDevice{failOn: "vertex"}
	if _, err := NewModel(dev, triangleMesh(), rotationClip()); err == nil {
		t.Fatal("NewModel() succeeded with a failing device")
	}
	if dev.released() != 1 {
		t.Fatalf("released %d buffers, want the index buffer", dev.released())
	}
}

func TestModelAccessors(t *testing.T) {
	dev := &fakeDevice{}
	m := newTestModel(t, dev, triangleMesh(), rotationClip(), WithName("banner"))
	if m.Name() != "banner" || m.IndexCount() != 3 || m.Texture() != nil {
		t.Fatalf("Name=%q IndexCount=%d Texture=%v", m.Name(), m.IndexCount(), m.Texture())
	}
	if m.Skeleton().BoneCount() != 1 {
		t.Fatalf("Skeleton().BoneCount() = %d", m.Skeleton().BoneCount())
	}
	m.Release()
	if dev.released() != 2 {
		t.Fatalf("Release freed %d buffers, want 2", dev.released())
	}
}
