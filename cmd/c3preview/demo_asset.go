package main

import (
	"math"

	"github.com/Carmen-Shannon/c3-preview/engine/model"
	"github.com/Carmen-Shannon/c3-preview/engine/renderer/animator"
	"github.com/go-gl/mathgl/mgl32"
)

// ── Banner Rig Configuration ──────────────────────────────────────
const (
	bannerWidth   = 4.0
	bannerHeight  = 2.5
	bannerColumns = 16
	bannerRows    = 8
	// bannerBones is the number of vertical strips the banner is split into.
	bannerBones = 4
	// bannerFrames is the loop length of both banner clips.
	bannerFrames = 48
	// swayDepth is the Z amplitude of the outermost strip.
	swayDepth = 0.45
	// waveAngle is the peak tilt of the override clip, in radians.
	waveAngle = 0.35
)

// demoPart is one mesh of the demo asset with its base clip and an alternate clip for the override slot.
type demoPart struct {
	mesh     model.Mesh
	clip     animator.Clip
	override animator.Clip
}

// demoAsset builds the preview asset: a multi-bone banner on a pole and a single-bone crate.
// The crate clip addresses one bone, so the collection leaves it out as a static prop.
func demoAsset() []demoPart {
	return []demoPart{
		{
			mesh:     bannerMesh(),
			clip:     bannerSwayClip(),
			override: bannerWaveClip(),
		},
		{
			mesh: crateMesh(),
			clip: animator.Clip{
				Name:       "crate idle",
				BoneCount:  1,
				FrameCount: 1,
			},
		},
	}
}

// bannerMesh builds a vertical cloth grid hanging from the pole at x=0.
// Columns on a strip boundary are shared by both neighbouring bones at half weight.
func bannerMesh() model.Mesh {
	var vertices []model.Vertex
	var influences [][]model.Influence
	for row := 0; row <= bannerRows; row++ {
		v := float32(row) / bannerRows
		for col := 0; col <= bannerColumns; col++ {
			u := float32(col) / bannerColumns
			vertices = append(vertices, model.Vertex{
				Position: [3]float32{u * bannerWidth, bannerHeight * (1 - v), 0},
				TexCoord: [2]float32{u, v},
			})
			influences = append(influences, stripInfluences(u))
		}
	}

	var indices []uint16
	stride := uint16(bannerColumns + 1)
	for row := uint16(0); row < bannerRows; row++ {
		for col := uint16(0); col < bannerColumns; col++ {
			tl := row*stride + col
			tr := tl + 1
			bl := tl + stride
			br := bl + 1
			indices = append(indices, tl, bl, tr, tr, bl, br)
		}
	}

	bind := make(map[int]mgl32.Mat4, bannerBones)
	for b := 0; b < bannerBones; b++ {
		bind[b] = mgl32.Ident4()
	}

	return model.Mesh{
		Name:     "banner",
		Vertices: vertices,
		Indices:  indices,
		Bones:    model.BindingsFromInfluences(influences),
		BindPose: bind,
	}
}

// stripInfluences maps a horizontal texture coordinate to the strip bones moving it.
func stripInfluences(u float32) []model.Influence {
	t := u * bannerBones
	bone := int(t)
	if bone >= bannerBones {
		return []model.Influence{{BoneKey: bannerBones - 1, Weight: 1}}
	}
	if t == float32(bone) && bone > 0 {
		return []model.Influence{
			{BoneKey: bone - 1, Weight: 0.5},
			{BoneKey: bone, Weight: 0.5},
		}
	}
	return []model.Influence{{BoneKey: bone, Weight: 1}}
}

// bannerSwayClip pushes each strip back and forth along Z, phase-shifted so a ripple runs away from the pole.
// Strip 0 has no track and holds its bind pose.
func bannerSwayClip() animator.Clip {
	clip := animator.Clip{
		Name:       "banner sway",
		BoneCount:  bannerBones,
		FrameCount: bannerFrames,
	}
	for b := 1; b < bannerBones; b++ {
		track := animator.Track{BoneKey: b}
		depth := swayDepth * float64(b) / float64(bannerBones-1)
		for f := 0; f < bannerFrames; f++ {
			phase := 2*math.Pi*float64(f)/bannerFrames - float64(b)*0.6
			track.Keyframes = append(track.Keyframes, animator.Keyframe{
				Frame:  f,
				Matrix: mgl32.Translate3D(0, 0, float32(depth*math.Sin(phase))),
			})
		}
		clip.Tracks = append(clip.Tracks, track)
	}
	return clip
}

// bannerWaveClip tilts every strip about the banner's top edge, keyed every fourth frame.
func bannerWaveClip() animator.Clip {
	clip := animator.Clip{
		Name:       "banner wave",
		BoneCount:  bannerBones,
		FrameCount: bannerFrames,
	}
	toPivot := mgl32.Translate3D(0, -bannerHeight, 0)
	fromPivot := mgl32.Translate3D(0, bannerHeight, 0)
	for b := 0; b < bannerBones; b++ {
		track := animator.Track{BoneKey: b}
		for f := 0; f < bannerFrames; f += 4 {
			phase := 2 * math.Pi * float64(f) / bannerFrames
			angle := float32(waveAngle * math.Sin(phase) * float64(b+1) / bannerBones)
			track.Keyframes = append(track.Keyframes, animator.Keyframe{
				Frame:  f,
				Matrix: fromPivot.Mul4(mgl32.HomogRotate3DX(angle)).Mul4(toPivot),
			})
		}
		clip.Tracks = append(clip.Tracks, track)
	}
	return clip
}

// crateMesh builds a unit cube next to the banner pole.
func crateMesh() model.Mesh {
	corners := [8][3]float32{
		{-1.5, 0, -0.5}, {-0.5, 0, -0.5}, {-0.5, 1, -0.5}, {-1.5, 1, -0.5},
		{-1.5, 0, 0.5}, {-0.5, 0, 0.5}, {-0.5, 1, 0.5}, {-1.5, 1, 0.5},
	}
	faces := [6][4]int{
		{4, 5, 6, 7}, {1, 0, 3, 2}, {5, 1, 2, 6},
		{0, 4, 7, 3}, {7, 6, 2, 3}, {0, 1, 5, 4},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	var vertices []model.Vertex
	var indices []uint16
	var weights []model.VertexWeight
	for _, face := range faces {
		base := uint16(len(vertices))
		for i, corner := range face {
			weights = append(weights, model.VertexWeight{Index: len(vertices), Weight: 1})
			vertices = append(vertices, model.Vertex{Position: corners[corner], TexCoord: uvs[i]})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return model.Mesh{
		Name:     "crate",
		Vertices: vertices,
		Indices:  indices,
		Bones:    []model.BoneBinding{{Key: 0, Vertices: weights}},
		BindPose: map[int]mgl32.Mat4{0: mgl32.Ident4()},
	}
}
