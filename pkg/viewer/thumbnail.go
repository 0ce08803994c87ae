package viewer

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/philipparndt/plmview/pkg/scene"
	"golang.org/x/image/draw"
)

// supersample is the render scale used before downscaling a thumbnail
const supersample = 2

// Thumbnail renders the frame larger than needed and scales it down to fit
// size x size, keeping the aspect ratio of the camera.
func Thumbnail(frame scene.Frame, size int) *image.RGBA {
	aspect := frame.Camera.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	w, h := size, size
	if aspect > 1 {
		h = max(1, int(float64(size)/aspect))
	} else {
		w = max(1, int(float64(size)*aspect))
	}

	large := Render(frame, w*supersample, h*supersample)
	return Scale(large, w, h)
}

// Scale resamples img to width x height with a Catmull-Rom filter
func Scale(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// WritePNG encodes img as PNG
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// SavePNG writes img to a PNG file
func SavePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WritePNG(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
