package reftest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/gift"
)

const dataURIPrefix = "data:image/png;base64,"

// IntoDataURI encodes the image as a vertically flipped PNG data URI.
//
// The image gives up its buffer: it must not be used after this call, and a
// second call panics.
func (i *Image) IntoDataURI() string {
	if len(i.Data) != i.byteLen() {
		panic(fmt.Sprintf("reftest: unable to construct image buffer: %d bytes for %dx%d", len(i.Data), i.Width, i.Height))
	}
	width, height := int(i.Width), int(i.Height)

	src := &image.NRGBA{
		Pix:    i.Data,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	i.Data = nil

	// captured textures are stored bottom-up
	g := gift.New(gift.FlipVertical())
	g.SetParallelization(false)
	flipped := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(flipped, src)

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, flipped); err != nil {
		panic(fmt.Sprintf("reftest: unable to encode PNG: %v", err))
	}

	return dataURIPrefix + base64.StdEncoding.EncodeToString(buffer.Bytes())
}
