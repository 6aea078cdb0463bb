package reftest

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"

	"ref-image/internal/storage"

	"golang.org/x/xerrors"
)

var ErrUnsupportedExtension = errors.New("unsupported extension")

// Load reads a PNG image from s. Only .png and .PNG paths are accepted.
func Load(ctx context.Context, s storage.Storage, path string) (image.Image, error) {
	if !strings.HasSuffix(path, ".png") && !strings.HasSuffix(path, ".PNG") {
		return nil, xerrors.Errorf("unable to load %s: %w", path, ErrUnsupportedExtension)
	}

	data, err := s.Get(ctx, path)
	if err != nil {
		return nil, xerrors.Errorf("unable to load %s: %w", path, err)
	}

	img, err := Decode(data)
	if err != nil {
		return nil, xerrors.Errorf("unable to parse %s: %w", path, err)
	}

	return img, nil
}

func Decode(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}
