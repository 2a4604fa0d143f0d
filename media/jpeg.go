// Package media provides the default image-encoding collaborator for video
// frames sent over the Live connection.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// JPEGEncoder compresses raw pixel buffers to JPEG. The zero value is ready
// to use with the default quality.
type JPEGEncoder struct {
	// Quality in [1,100]; 0 means jpeg.DefaultQuality.
	Quality int
}

// EncodeJPEG implements live.ImageEncoder for RGBA, RGB and 8-bit grayscale
// ("L") frames. The pixel buffer must be exactly width*height*bytes-per-pixel
// long.
func (e *JPEGEncoder) EncodeJPEG(pixels []byte, format string, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	var img image.Image
	switch format {
	case "RGBA":
		if len(pixels) != width*height*4 {
			return nil, fmt.Errorf("RGBA frame: got %d bytes, want %d", len(pixels), width*height*4)
		}
		rgba := image.NewRGBA(image.Rect(0, 0, width, height))
		copy(rgba.Pix, pixels)
		img = rgba

	case "RGB":
		if len(pixels) != width*height*3 {
			return nil, fmt.Errorf("RGB frame: got %d bytes, want %d", len(pixels), width*height*3)
		}
		rgba := image.NewRGBA(image.Rect(0, 0, width, height))
		for i := 0; i < width*height; i++ {
			rgba.Pix[i*4+0] = pixels[i*3+0]
			rgba.Pix[i*4+1] = pixels[i*3+1]
			rgba.Pix[i*4+2] = pixels[i*3+2]
			rgba.Pix[i*4+3] = 0xFF
		}
		img = rgba

	case "L":
		if len(pixels) != width*height {
			return nil, fmt.Errorf("grayscale frame: got %d bytes, want %d", len(pixels), width*height)
		}
		gray := image.NewGray(image.Rect(0, 0, width, height))
		copy(gray.Pix, pixels)
		img = gray

	default:
		return nil, fmt.Errorf("unsupported pixel format %q", format)
	}

	quality := e.Quality
	if quality == 0 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}
