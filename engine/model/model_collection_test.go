package model

import (
	"reflect"
	"testing"

	"github.com/Carmen-Shannon/c3-preview/engine/renderer"
	"github.com/Carmen-Shannon/c3-preview/engine/renderer/animator"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

func staticClip() animator.Clip {
	return animator.Clip{Name: "static", BoneCount: 1, FrameCount: 4}
}

func TestNewModelCollectionCountMismatch(t *testing.T) {
	meshes := []Mesh{triangleMesh(), triangleMesh()}
	clips := []animator.Clip{rotationClip(), rotationClip(), rotationClip()}

	_, err := NewModelCollection(&fakeDevice{}, meshes, clips, nil)
	if !errors.Is(err, ErrCountMismatch) {
		t.Fatalf("NewModelCollection() error = %v, want ErrCountMismatch", err)
	}
}

func TestNewModelCollectionSkipsSingleBoneMotions(t *testing.T) {
	meshes := []Mesh{triangleMesh(), triangleMesh(), triangleMesh()}
	meshes[2].Name = ""
	clips := []animator.Clip{rotationClip(), staticClip(), rotationClip()}

	c, err := NewModelCollection(&fakeDevice{}, meshes, clips, nil)
	if err != nil {
		t.Fatalf("NewModelCollection() error = %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if got := c.Skipped(); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("Skipped() = %v, want [1]", got)
	}
	if name := c.Models()[1].Name(); name != "mesh 2" {
		t.Fatalf("unnamed mesh got name %q, want %q", name, "mesh 2")
	}
}

func TestModelCollectionTickAndDraw(t *testing.T) {
	dev := &fakeDevice{}
	meshes := []Mesh{triangleMesh(), triangleMesh()}
	clips := []animator.Clip{rotationClip(), rotationClip()}
	c, err := NewModelCollection(dev, meshes, clips, nil)
	if err != nil {
		t.Fatalf("NewModelCollection() error = %v", err)
	}

	c.Tick(0)
	for i, m := range c.Models() {
		if m.BaseMotion().Frame() != 1 {
			t.Fatalf("model %d frame = %d, want 1", i, m.BaseMotion().Frame())
		}
	}

	c.Draw(renderer.NewEffect(renderer.NewNamedPass("p")))
	if dev.draws != 2 || dev.writes != 2 {
		t.Fatalf("draws = %d, writes = %d, want 2 each", dev.draws, dev.writes)
	}

	stats := c.Stats()
	if stats.Models != 2 || stats.Ticks != 1 || stats.Uploads != 2 {
		t.Fatalf("Stats() = %+v", stats)
	}

	c.Release()
	if dev.released() != 4 {
		t.Fatalf("Release freed %d buffers, want 4", dev.released())
	}
}

func TestModelCollectionParallelTickMatchesSerial(t *testing.T) {
	const n = 8
	meshes := make([]Mesh, n)
	clips := make([]animator.Clip, n)
	for i := range n {
		meshes[i] = triangleMesh()
		clips[i] = rotationClip()
	}

	serial, err := NewModelCollection(&fakeDevice{}, meshes, clips, nil)
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	parallel, err := NewModelCollection(&fakeDevice{}, meshes, clips, nil, WithTickWorkers(4))
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	for range 3 {
		serial.Tick(0)
		parallel.Tick(0)
	}

	for i := range n {
		s := serial.Models()[i].LiveVertices()
		p := parallel.Models()[i].LiveVertices()
		for v := range s {
			if !mgl32.Vec3(s[v].Position).ApproxEqualThreshold(mgl32.Vec3(p[v].Position), eps) {
				t.Fatalf("model %d vertex %d: serial %v, parallel %v", i, v, s[v].Position, p[v].Position)
			}
		}
		if f := parallel.Models()[i].BaseMotion().Frame(); f != 1 {
			t.Fatalf("parallel model %d frame = %d, want 1", i, f)
		}
	}
}

func TestModelCollectionAbortsOnModelError(t *testing.T) {
	dev := &fakeDevice{}
	bad := triangleMesh()
	bad.Indices = []uint16{7}
	meshes := []Mesh{triangleMesh(), bad}
	clips := []animator.Clip{rotationClip(), rotationClip()}

	_, err := NewModelCollection(dev, meshes, clips, nil)
	if !errors.Is(err, ErrInconsistentData) {
		t.Fatalf("NewModelCollection() error = %v, want ErrInconsistentData", err)
	}
	if dev.released() != 2 {
		t.Fatalf("released %d buffers of the first model, want 2", dev.released())
	}
}

func TestModelCollectionAppliesModelOptions(t *testing.T) {
	c, err := NewModelCollection(&fakeDevice{}, []Mesh{sharedVertexMesh(0, 1)},
		[]animator.Clip{translationClip(map[int]float32{0: 1, 1: 10})}, nil,
		WithModelOptions(WithBlendMode(BlendWeighted)))
	if err != nil {
		t.Fatalf("NewModelCollection() error = %v", err)
	}
	c.Tick(0)
	assertPosition(t, c.Models()[0], 0, mgl32.Vec3{5.5, 0, 0})
}
