package reftest

import (
	"fmt"
	"image/color"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompare(t *testing.T) {
	type in struct {
		first  *Image
		second *Image
	}

	type want struct {
		first Comparison
	}

	withPixel := func(x, y int, c color.NRGBA) *Image {
		img := createTestImage(2, 2, red)
		img.SetNRGBA(x, y, c)
		return FromImage(img)
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
				FromImage(createTestImage(2, 2, red)),
				FromImage(createTestImage(2, 2, red)),
			},
			want{
				Equal{},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				withPixel(1, 1, red),
				withPixel(1, 1, blue),
			},
			want{
				NotEqual{MaxDifference: 255, CountDifferent: 1},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				withPixel(0, 1, color.NRGBA{R: 255, G: 7, A: 255}),
				FromImage(createTestImage(2, 2, red)),
			},
			want{
				NotEqual{MaxDifference: 7, CountDifferent: 1},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				withPixel(1, 0, color.NRGBA{R: 255, A: 200}),
				FromImage(createTestImage(2, 2, red)),
			},
			want{
				NotEqual{MaxDifference: 55, CountDifferent: 1},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				FromImage(createTestImage(3, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})),
				FromImage(createTestImage(3, 2, color.NRGBA{R: 12, G: 15, B: 30, A: 255})),
			},
			want{
				NotEqual{MaxDifference: 5, CountDifferent: 6},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				FromImage(createTestImage(0, 0, red)),
				FromImage(createTestImage(0, 0, blue)),
			},
			want{
				Equal{},
			},
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := in.first.Compare(in.second)
			if diff := cmp.Diff(want.first, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}

			swapped := in.second.Compare(in.first)
			if diff := cmp.Diff(got, swapped); diff != "" {
				t.Errorf("compare is not symmetric (-forward +swapped):\n%s", diff)
			}
		})
	}
}

func TestCompare_Self(t *testing.T) {
	img := FromImage(createGradientImage(7, 5))

	if diff := cmp.Diff(Comparison(Equal{}), img.Compare(img)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	copied := &Image{
		Data:   append([]byte(nil), img.Data...),
		Width:  img.Width,
		Height: img.Height,
	}
	if diff := cmp.Diff(Comparison(Equal{}), img.Compare(copied)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCompare_Bounds(t *testing.T) {
	a := FromImage(createGradientImage(9, 4))
	b := FromImage(createTestImage(9, 4, color.NRGBA{R: 128, G: 128, B: 128, A: 128}))

	got, ok := a.Compare(b).(NotEqual)
	if !ok {
		t.Fatalf("expected NotEqual, got %#v", a.Compare(b))
	}
	if got.CountDifferent > uint64(a.Width)*uint64(a.Height) {
		t.Errorf("CountDifferent %d exceeds pixel count %d", got.CountDifferent, a.Width*a.Height)
	}
	if got.MaxDifference == 0 {
		t.Errorf("MaxDifference must be positive for NotEqual")
	}
}

func TestCompare_Precondition(t *testing.T) {
	t.Run("SizeMismatch", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic on size mismatch")
			}
		}()
		FromImage(createTestImage(2, 2, red)).Compare(FromImage(createTestImage(2, 3, red)))
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic on data length mismatch")
			}
		}()
		a := FromImage(createTestImage(2, 2, red))
		b := FromImage(createTestImage(2, 2, red))
		b.Data = b.Data[:len(b.Data)-4]
		a.Compare(b)
	})

	t.Run("NotMultipleOfFour", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic on partial pixel")
			}
		}()
		a := &Image{Data: make([]byte, 6), Width: 1, Height: 1}
		b := &Image{Data: make([]byte, 6), Width: 1, Height: 1}
		a.Compare(b)
	})
}

func BenchmarkCompare(b *testing.B) {
	img1 := FromImage(createTestImage(1920, 1080, color.White))
	img2 := FromImage(createTestImage(1920, 1080, color.White))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		img1.Compare(img2)
	}
}
