// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the RGBA pixel data, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// Zero fields fall back to linear filtering with repeat addressing.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level.
	MaxAnisotropy uint16
}

// ImportedTexture represents texture data loaded for a preview.
// Either Data holds raw image bytes or Path names a file on disk.
type ImportedTexture struct {
	// Name is an identifier for this texture.
	Name string

	// Path is the file path for external textures (empty for in-memory data).
	Path string

	// Data contains raw image bytes.
	Data []byte

	// MimeType indicates the image format (e.g., "image/png", "image/x-tga").
	// Required for in-memory TGA data, which has no magic header.
	MimeType string

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int
}

// Decode decodes the texture to raw RGBA pixel data.
// Uses either Data bytes or loads from Path on disk.
// Supports PNG, JPEG, BMP and TGA.
//
// Returns:
//   - TextureStagingData: the decoded RGBA pixels and dimensions
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() (TextureStagingData, error) {
	if t == nil {
		return TextureStagingData{}, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	switch {
	case len(t.Data) > 0:
		img, err = decodeImage(bytes.NewReader(t.Data), t.isTGA())
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode texture %s: %w", t.Name, err)
		}
	case t.Path != "":
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, err = decodeImage(file, t.isTGA())
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	default:
		return TextureStagingData{}, fmt.Errorf("texture has neither data nor path")
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	t.Width = bounds.Dx()
	t.Height = bounds.Dy()

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(t.Width),
		Height: uint32(t.Height),
	}, nil
}

func (t *ImportedTexture) isTGA() bool {
	if strings.EqualFold(t.MimeType, "image/x-tga") || strings.EqualFold(t.MimeType, "image/tga") {
		return true
	}
	return strings.EqualFold(filepath.Ext(t.Path), ".tga")
}

func decodeImage(r io.Reader, isTGA bool) (image.Image, error) {
	if isTGA {
		return tga.Decode(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) >= 2 && data[0] == 'B' && data[1] == 'M' {
		return bmp.Decode(bytes.NewReader(data))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// CheckerTexture generates a two-colour checkerboard used when no texture file is configured.
//
// Parameters:
//   - size: width and height in pixels
//   - cells: number of cells along each edge
//   - a, b: the two cell colours
//
// Returns:
//   - TextureStagingData: the generated RGBA pixels
func CheckerTexture(size, cells int, a, b color.RGBA) TextureStagingData {
	if size <= 0 {
		size = 1
	}
	if cells <= 0 {
		cells = 1
	}
	cell := max(size/cells, 1)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			c := a
			if ((x/cell)+(y/cell))%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return TextureStagingData{Pixels: img.Pix, Width: uint32(size), Height: uint32(size)}
}
