package pdftext

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// cropBottom rewrites the PNG at path with px pixels removed from the bottom.
// Rendering happens only once; the crop works on the already-written file.
func cropBottom(path string, px int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	img, err := png.Decode(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	bottom := bounds.Max.Y - px
	if bottom <= bounds.Min.Y {
		return fmt.Errorf("crop of %dpx leaves no image (height %d)", px, bounds.Dy())
	}

	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return fmt.Errorf("image type %T does not support cropping", img)
	}
	cropped := sub.SubImage(image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bottom))

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, cropped); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
