package common

// Key codes understood by the preview controls.
// Values match GLFW key codes, which use ASCII for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyB     = 66  // toggle blend mode
	KeyO     = 79  // toggle override motion
	KeyR     = 82  // reset motions to frame 0
	KeyS     = 83  // single-step while paused
	KeySpace = 32  // pause / resume playback
	KeyEsc   = 256 // handled by the window itself
	KeyPlus  = 61  // '=' / '+', faster playback
	KeyMinus = 45  // '-', slower playback

	KeyZoomIn  = 265 // up arrow
	KeyZoomOut = 264 // down arrow
)
