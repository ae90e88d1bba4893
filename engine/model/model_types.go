package model

import "github.com/go-gl/mathgl/mgl32"

// Vertex is a bind-pose mesh vertex.
type Vertex struct {
	Position [3]float32
	TexCoord [2]float32
}

// VertexWeight is one bone's influence on one vertex.
type VertexWeight struct {
	// Index is the vertex index into the mesh vertex list.
	Index int
	// Weight is the influence weight. Zero-weight influences are never applied.
	Weight float32
}

// BoneBinding is the per-bone influence list of a mesh, in source order.
type BoneBinding struct {
	Key      int
	Vertices []VertexWeight
}

// Influence is a per-vertex bone reference, the inverse of BoneBinding.
type Influence struct {
	BoneKey int
	Weight  float32
}

// Mesh is the source geometry of one skinned model.
type Mesh struct {
	// Name identifies the mesh in buffer labels and errors.
	Name string

	// Vertices are the bind-pose vertices.
	Vertices []Vertex

	// Indices form a triangle list over Vertices.
	Indices []uint16

	// Bones lists the vertices each bone influences. Their order is the skinning order.
	Bones []BoneBinding

	// BindPose holds the per-bone initial matrices handed to the motion.
	BindPose map[int]mgl32.Mat4
}

// BlendMode selects how multiple bone influences on one vertex combine.
type BlendMode int

const (
	// BlendLastWriterWins transforms each influenced vertex by each of its bones in skeleton order,
	// ignoring weights; the last bone visited determines the position.
	BlendLastWriterWins BlendMode = iota

	// BlendWeighted sums weight * transformed position over every influence and divides by the weight total.
	BlendWeighted
)

// String returns the config name of the blend mode.
func (b BlendMode) String() string {
	switch b {
	case BlendWeighted:
		return "weighted"
	default:
		return "last-writer-wins"
	}
}

// ParseBlendMode maps a config name to a BlendMode. The empty string selects BlendLastWriterWins.
//
// Parameters:
//   - s: "last-writer-wins", "weighted" or ""
//
// Returns:
//   - BlendMode: the matching mode
//   - bool: false if the name is unknown
func ParseBlendMode(s string) (BlendMode, bool) {
	switch s {
	case "", "last-writer-wins":
		return BlendLastWriterWins, true
	case "weighted":
		return BlendWeighted, true
	}
	return BlendLastWriterWins, false
}

// BufferState tracks whether the GPU vertex buffer matches the live vertices.
type BufferState int

const (
	// BufferDirty means the live vertices changed since the last upload.
	BufferDirty BufferState = iota
	// BufferClean means the GPU buffer holds the current live vertices.
	BufferClean
)

func (s BufferState) String() string {
	if s == BufferClean {
		return "clean"
	}
	return "dirty"
}
