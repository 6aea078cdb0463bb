package reftest

import (
	"bytes"
	"fmt"
)

// Comparison is either Equal or NotEqual.
type Comparison interface {
	comparison()
}

// Equal means every pixel of both images matches exactly.
type Equal struct{}

// NotEqual carries statistics over the pixels that differ.
type NotEqual struct {
	// Largest absolute difference of a single channel over all differing pixels.
	MaxDifference uint8
	// Number of pixels with at least one differing channel.
	CountDifferent uint64
}

func (Equal) comparison()    {}
func (NotEqual) comparison() {}

// Compare scans both images in full and reports how they differ. Both images
// must have the same size; callers are expected to run Reconcile first.
func (i *Image) Compare(other *Image) Comparison {
	if i.Width != other.Width || i.Height != other.Height {
		panic(fmt.Sprintf("reftest: size mismatch: %dx%d != %dx%d", i.Width, i.Height, other.Width, other.Height))
	}
	if len(i.Data) != len(other.Data) {
		panic(fmt.Sprintf("reftest: data length mismatch: %d != %d", len(i.Data), len(other.Data)))
	}
	if len(i.Data)%4 != 0 {
		panic(fmt.Sprintf("reftest: data length %d is not a multiple of 4", len(i.Data)))
	}
	if len(i.Data) != i.byteLen() {
		panic(fmt.Sprintf("reftest: data length %d does not match %dx%d", len(i.Data), i.Width, i.Height))
	}

	var count uint64
	var maxDiff uint8

	for offset := 0; offset < len(i.Data); offset += 4 {
		a := i.Data[offset : offset+4]
		b := other.Data[offset : offset+4]
		if bytes.Equal(a, b) {
			continue
		}

		var pixelMax uint8
		for c := 0; c < 4; c++ {
			pixelMax = max(pixelMax, absDiff(a[c], b[c]))
		}

		count++
		maxDiff = max(maxDiff, pixelMax)
	}

	if count == 0 {
		return Equal{}
	}
	return NotEqual{
		MaxDifference:  maxDiff,
		CountDifferent: count,
	}
}

func absDiff(a uint8, b uint8) uint8 {
	d := int(a) - int(b)
	if d < 0 {
		return uint8(-d)
	}
	return uint8(d)
}
