package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestEyeStartsOnPositiveZ(t *testing.T) {
	c := NewCamera(WithTarget(1, 1, 0), WithOrbit(5, 2))
	eye := c.Eye()
	want := mgl32.Vec3{1, 2, 5}
	if !eye.ApproxEqualThreshold(want, 1e-5) {
		t.Fatalf("eye = %v, want %v", eye, want)
	}
}

func TestUpdateOrbits(t *testing.T) {
	c := NewCamera(WithOrbit(4, 0), WithOrbitSpeed(math.Pi/2))
	before := c.ViewProjection()
	c.Update(1)

	if got := c.Azimuth(); math.Abs(float64(got)-math.Pi/2) > 1e-6 {
		t.Fatalf("azimuth = %v, want pi/2", got)
	}
	if !c.Eye().ApproxEqualThreshold(mgl32.Vec3{4, 0, 0}, 1e-5) {
		t.Fatalf("eye = %v, want (4,0,0)", c.Eye())
	}
	if c.ViewProjection() == before {
		t.Fatal("view-projection unchanged after orbit")
	}
}

func TestUpdateWithoutOrbitSpeedIsNoop(t *testing.T) {
	c := NewCamera()
	c.Update(10)
	if c.Azimuth() != 0 {
		t.Fatalf("azimuth = %v, want 0", c.Azimuth())
	}
}

func TestZoomClampsToBounds(t *testing.T) {
	c := NewCamera(WithOrbit(5, 0), WithRadiusBounds(2, 8))
	c.Zoom(10)
	if c.Radius() != 2 {
		t.Fatalf("radius = %v, want 2", c.Radius())
	}
	c.Zoom(-100)
	if c.Radius() != 8 {
		t.Fatalf("radius = %v, want 8", c.Radius())
	}
}

func TestTargetProjectsToClipCentre(t *testing.T) {
	c := NewCamera(WithTarget(0, 1, 0), WithOrbit(6, 1), WithAspect(1))
	p := c.ViewProjection().Mul4x1(mgl32.Vec4{0, 1, 0, 1})
	if math.Abs(float64(p.X()/p.W())) > 1e-5 || math.Abs(float64(p.Y()/p.W())) > 1e-5 {
		t.Fatalf("target projects to %v, want clip centre", p)
	}
}
