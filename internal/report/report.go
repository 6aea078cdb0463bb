package report

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"ref-image/internal/reftest"
	"ref-image/internal/storage"

	"golang.org/x/xerrors"
)

const DefaultLogName = "reftest.log"

// Failure is a reftest log entry for a pair of images that did not match.
type Failure struct {
	TestPath       string
	ReferencePath  string
	MaxDifference  uint8
	CountDifferent uint64
	TestURI        string
	ReferenceURI   string
}

// NewFailure consumes test and ref by encoding them as data URIs.
func NewFailure(testPath string, refPath string, result reftest.NotEqual, test *reftest.Image, ref *reftest.Image) *Failure {
	return &Failure{
		TestPath:       testPath,
		ReferencePath:  refPath,
		MaxDifference:  result.MaxDifference,
		CountDifferent: result.CountDifferent,
		TestURI:        test.IntoDataURI(),
		ReferenceURI:   ref.IntoDataURI(),
	}
}

func (f *Failure) Name() string {
	return fmt.Sprintf("%s == %s", f.TestPath, f.ReferencePath)
}

// WriteTo writes the log in the format consumed by reftest log analyzers.
func (f *Failure) WriteTo(w io.Writer) (int64, error) {
	var buffer bytes.Buffer
	name := f.Name()
	fmt.Fprintf(&buffer, "REFTEST TEST-UNEXPECTED-FAIL | %s | image comparison, max difference: %d, number of differing pixels: %d\n", name, f.MaxDifference, f.CountDifferent)
	fmt.Fprintf(&buffer, "REFTEST IMAGE 1 (TEST): %s\n", f.TestURI)
	fmt.Fprintf(&buffer, "REFTEST IMAGE 2 (REFERENCE): %s\n", f.ReferenceURI)
	fmt.Fprintf(&buffer, "REFTEST TEST-END | %s\n", name)
	return buffer.WriteTo(w)
}

func (f *Failure) Bytes() []byte {
	var buffer bytes.Buffer
	_, _ = f.WriteTo(&buffer)
	return buffer.Bytes()
}

type Writer struct {
	storage storage.Storage
	logName string
}

func NewWriter(s storage.Storage, logName string) *Writer {
	if logName == "" {
		logName = DefaultLogName
	}
	return &Writer{
		storage: s,
		logName: logName,
	}
}

// Write stores the log and returns where it was written.
func (w *Writer) Write(ctx context.Context, f *Failure) (string, error) {
	path, err := w.storage.Put(ctx, w.logName, f.Bytes())
	if err != nil {
		return "", xerrors.Errorf("failed to write %s: %w", w.logName, err)
	}
	return path, nil
}
