package reftest

import (
	"image"
	"log/slog"

	"github.com/disintegration/gift"
)

// Which names one side of a comparison.
type Which string

const (
	WhichTest      Which = "test"
	WhichReference Which = "reference"
)

// Crop records that one side of a comparison was cut down to the common size.
type Crop struct {
	Which  Which
	Width  int
	Height int
}

// Reconcile crops test and ref to their common top-left intersection.
// Mismatched sizes are never an error. Both returned images are NRGBA with
// their origin at 0,0.
func Reconcile(test image.Image, ref image.Image, logger *slog.Logger) (*image.NRGBA, *image.NRGBA, []Crop) {
	t := toNRGBA(test)
	r := toNRGBA(ref)

	width := min(t.Rect.Dx(), r.Rect.Dx())
	height := min(r.Rect.Dy(), t.Rect.Dy())

	var crops []Crop
	if t.Rect.Dx() != width || t.Rect.Dy() != height {
		logger.Info("cropping image", "image", WhichTest, "width", width, "height", height)
		t = cropTopLeft(t, width, height)
		crops = append(crops, Crop{Which: WhichTest, Width: width, Height: height})
	}
	if r.Rect.Dx() != width || r.Rect.Dy() != height {
		logger.Info("cropping image", "image", WhichReference, "width", width, "height", height)
		r = cropTopLeft(r, width, height)
		crops = append(crops, Crop{Which: WhichReference, Width: width, Height: height})
	}

	return t, r, crops
}

func cropTopLeft(src *image.NRGBA, width int, height int) *image.NRGBA {
	g := gift.New(gift.CropToSize(width, height, gift.TopLeftAnchor))
	g.SetParallelization(false)
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}
