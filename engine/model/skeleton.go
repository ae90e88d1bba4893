package model

import (
	"sort"

	"github.com/pkg/errors"
)

// Skeleton maps each bone to the vertices it influences.
// It is immutable after BuildSkeleton and iterates bones in source order.
type Skeleton struct {
	bones  []BoneBinding
	lookup map[int]int
	maxKey int
}

// BuildSkeleton validates and copies per-bone influence lists.
//
// Parameters:
//   - bindings: per-bone vertex lists; their order becomes the iteration order
//   - vertexCount: number of vertices in the mesh
//
// Returns:
//   - *Skeleton: the built skeleton
//   - error: ErrInconsistentData (wrapped) for an out-of-range vertex index or a negative or repeated bone key
func BuildSkeleton(bindings []BoneBinding, vertexCount int) (*Skeleton, error) {
	s := &Skeleton{
		bones:  make([]BoneBinding, 0, len(bindings)),
		lookup: make(map[int]int, len(bindings)),
		maxKey: -1,
	}

	for _, b := range bindings {
		if b.Key < 0 {
			return nil, errors.Wrapf(ErrInconsistentData, "negative bone key %d", b.Key)
		}
		if _, dup := s.lookup[b.Key]; dup {
			return nil, errors.Wrapf(ErrInconsistentData, "bone %d listed twice", b.Key)
		}
		for _, vw := range b.Vertices {
			if vw.Index < 0 || vw.Index >= vertexCount {
				return nil, errors.Wrapf(ErrInconsistentData, "bone %d references vertex %d, mesh has %d", b.Key, vw.Index, vertexCount)
			}
		}

		vertices := make([]VertexWeight, len(b.Vertices))
		copy(vertices, b.Vertices)
		s.lookup[b.Key] = len(s.bones)
		s.bones = append(s.bones, BoneBinding{Key: b.Key, Vertices: vertices})
		s.maxKey = max(s.maxKey, b.Key)
	}
	return s, nil
}

// BoneVertices returns the influence list of a bone.
// The returned slice must not be modified.
func (s *Skeleton) BoneVertices(key int) ([]VertexWeight, bool) {
	i, ok := s.lookup[key]
	if !ok {
		return nil, false
	}
	return s.bones[i].Vertices, true
}

// Keys returns the bone keys in iteration order.
func (s *Skeleton) Keys() []int {
	keys := make([]int, len(s.bones))
	for i, b := range s.bones {
		keys[i] = b.Key
	}
	return keys
}

// BoneCount returns the number of bones.
func (s *Skeleton) BoneCount() int {
	return len(s.bones)
}

// MaxKey returns the largest bone key, or -1 for an empty skeleton.
func (s *Skeleton) MaxKey() int {
	return s.maxKey
}

// each visits bones in iteration order without copying.
func (s *Skeleton) each(fn func(key int, vertices []VertexWeight)) {
	for _, b := range s.bones {
		fn(b.Key, b.Vertices)
	}
}

// BindingsFromInfluences inverts per-vertex influences into per-bone lists ordered by ascending bone key.
// Within a bone, vertices keep ascending index order.
//
// Parameters:
//   - influences: influences[i] lists the bones that move vertex i
//
// Returns:
//   - []BoneBinding: one binding per referenced bone
func BindingsFromInfluences(influences [][]Influence) []BoneBinding {
	byBone := make(map[int][]VertexWeight)
	for vi, list := range influences {
		for _, inf := range list {
			byBone[inf.BoneKey] = append(byBone[inf.BoneKey], VertexWeight{Index: vi, Weight: inf.Weight})
		}
	}

	keys := make([]int, 0, len(byBone))
	for k := range byBone {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	bindings := make([]BoneBinding, len(keys))
	for i, k := range keys {
		bindings[i] = BoneBinding{Key: k, Vertices: byBone[k]}
	}
	return bindings
}
