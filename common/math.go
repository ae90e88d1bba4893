package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// MatrixFromRows builds a matrix from sixteen values laid out as a row-vector transform
// (M11..M14 first, translation in M41..M43), which is how C3 motion and phy data store bones.
// A row-vector matrix read in that order is exactly the column-major storage of the equivalent
// column-vector matrix, so the values are copied through unchanged.
//
// Parameters:
//   - rows: the sixteen matrix values in M11..M44 order
//
// Returns:
//   - mgl32.Mat4: the column-vector matrix usable with mgl32.TransformCoordinate
func MatrixFromRows(rows [16]float32) mgl32.Mat4 {
	return mgl32.Mat4(rows)
}

// TransformPoint transforms a position through a 4x4 matrix including translation and
// the homogeneous divide.
//
// Parameters:
//   - p: the position to transform
//   - m: the transform matrix
//
// Returns:
//   - [3]float32: the transformed position
func TransformPoint(p [3]float32, m mgl32.Mat4) [3]float32 {
	return [3]float32(mgl32.TransformCoordinate(mgl32.Vec3(p), m))
}

// ViewProjection builds a right-handed perspective view-projection matrix for a camera looking at target.
//
// Parameters:
//   - fovYDegrees: vertical field of view in degrees
//   - aspect: viewport width / height
//   - near, far: clip plane distances
//   - eye: camera position
//   - target: the point the camera looks at
//
// Returns:
//   - mgl32.Mat4: projection * view
func ViewProjection(fovYDegrees, aspect, near, far float32, eye, target mgl32.Vec3) mgl32.Mat4 {
	if aspect <= 0 || math.IsNaN(float64(aspect)) {
		aspect = 1
	}
	proj := mgl32.Perspective(mgl32.DegToRad(fovYDegrees), aspect, near, far)
	view := mgl32.LookAtV(eye, target, mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

// OrbitEye returns a camera position orbiting the origin on the XZ plane.
//
// Parameters:
//   - radius: distance from the Y axis
//   - height: Y coordinate of the camera
//   - angle: orbit angle in radians
//
// Returns:
//   - mgl32.Vec3: the eye position
func OrbitEye(radius, height, angle float32) mgl32.Vec3 {
	s, c := math.Sincos(float64(angle))
	return mgl32.Vec3{radius * float32(s), height, radius * float32(c)}
}
