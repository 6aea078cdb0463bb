package reftest

import (
	"image"

	"golang.org/x/image/draw"
)

// Image is an RGBA8 (non-premultiplied) pixel buffer in row-major order with
// its origin at the top-left corner.
type Image struct {
	Data   []byte
	Width  uint32
	Height uint32
}

// FromImage copies src into a tightly packed RGBA8 buffer.
func FromImage(src image.Image) *Image {
	nrgba := toNRGBA(src)
	width, height := nrgba.Rect.Dx(), nrgba.Rect.Dy()

	data := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		offset := nrgba.PixOffset(nrgba.Rect.Min.X, nrgba.Rect.Min.Y+y)
		copy(data[y*width*4:(y+1)*width*4], nrgba.Pix[offset:offset+width*4])
	}

	return &Image{
		Data:   data,
		Width:  uint32(width),
		Height: uint32(height),
	}
}

func (i *Image) byteLen() int {
	return int(i.Width) * int(i.Height) * 4
}

// toNRGBA returns src as an NRGBA image anchored at the origin. Sources that
// are already NRGBA at the origin are returned as is.
func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	n, isNRGBA := src.(*image.NRGBA)
	if isNRGBA && bounds.Min == (image.Point{}) {
		return n
	}

	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if !isNRGBA {
		draw.Copy(dst, image.Point{}, src, bounds, draw.Src, nil)
		return dst
	}

	// copy rows directly; a round trip through premultiplied color loses precision
	rowLen := bounds.Dx() * 4
	for y := 0; y < bounds.Dy(); y++ {
		offset := n.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowLen], n.Pix[offset:offset+rowLen])
	}
	return dst
}
