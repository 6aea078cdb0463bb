package reftest

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromImage(t *testing.T) {
	type in struct {
		first image.Image
	}

	type want struct {
		first *Image
	}

	tests := []struct {
		name string
		in   in
		want want
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				func() image.Image {
					img := image.NewGray(image.Rect(0, 0, 2, 1))
					img.SetGray(0, 0, color.Gray{Y: 10})
					img.SetGray(1, 0, color.Gray{Y: 200})
					return img
				}(),
			},
			want{
				&Image{
					Data:   []byte{10, 10, 10, 255, 200, 200, 200, 255},
					Width:  2,
					Height: 1,
				},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				func() image.Image {
					img := image.NewPaletted(image.Rect(0, 0, 1, 2), color.Palette{red, blue})
					img.SetColorIndex(0, 0, 1)
					img.SetColorIndex(0, 1, 0)
					return img
				}(),
			},
			want{
				&Image{
					Data:   []byte{0, 0, 255, 255, 255, 0, 0, 255},
					Width:  1,
					Height: 2,
				},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				func() image.Image {
					img := image.NewRGBA(image.Rect(0, 0, 1, 1))
					img.SetRGBA(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
					return img
				}(),
			},
			want{
				&Image{
					Data:   []byte{1, 2, 3, 255},
					Width:  1,
					Height: 1,
				},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				func() image.Image {
					img := image.NewNRGBA64(image.Rect(0, 0, 1, 1))
					img.SetNRGBA64(0, 0, color.NRGBA64{R: 0xffff, G: 0x8080, B: 0, A: 0xffff})
					return img
				}(),
			},
			want{
				&Image{
					Data:   []byte{255, 128, 0, 255},
					Width:  1,
					Height: 1,
				},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				createGradientImage(4, 4).SubImage(image.Rect(1, 2, 3, 4)),
			},
			want{
				func() *Image {
					full := createGradientImage(4, 4)
					var data []byte
					for y := 2; y < 4; y++ {
						for x := 1; x < 3; x++ {
							offset := full.PixOffset(x, y)
							data = append(data, full.Pix[offset:offset+4]...)
						}
					}
					return &Image{Data: data, Width: 2, Height: 2}
				}(),
			},
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := FromImage(in.first)
			if diff := cmp.Diff(want.first, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
			if len(got.Data) != int(got.Width*got.Height*4) {
				t.Errorf("data length %d does not match %dx%d", len(got.Data), got.Width, got.Height)
			}
		})
	}
}
