package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"ref-image/internal/config"
	"ref-image/internal/report"
	"ref-image/internal/reftest"
	"ref-image/internal/retry"
	"ref-image/internal/storage"

	"golang.org/x/xerrors"
)

const (
	exitEqual    = 0
	exitNotEqual = 1
	exitFatal    = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	var directory string
	var logName string
	var storageBackend string
	var callbackURL string
	var callbackRetryOn string
	var failOnMismatch bool
	var debug bool

	flags := flag.NewFlagSet("compare", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&directory, "directory", config.EnvOrDefaultValue("DIRECTORY", "."), "Directory the difference log is written to")
	flags.StringVar(&logName, "log-name", config.EnvOrDefaultValue("LOG_NAME", report.DefaultLogName), "File name of the difference log")
	flags.StringVar(&storageBackend, "storage-backend", config.EnvOrDefaultValue("STORAGE_BACKEND", "file"), "Storage backend (file or s3)")
	flags.StringVar(&callbackURL, "callback-url", config.EnvOrDefaultValue("CALLBACK_URL", ""), "URL the JSON result is sent to")
	flags.StringVar(&callbackRetryOn, "callback-retry-on", config.EnvOrDefaultValue("CALLBACK_RETRY_ON", "gateway-error,connect-failure,retriable-4xx"), "Retry policy for the callback")
	flags.BoolVar(&failOnMismatch, "fail-on-mismatch", config.EnvOrDefaultValue("FAIL_ON_MISMATCH", true), "Exit with status 1 when the images differ")
	flags.BoolVar(&debug, "debug", config.EnvOrDefaultValue("DEBUG", false), "Log in text format")
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "Usage: compare [flags] <test.png> <reference.png>")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return exitFatal
	}

	logger, err := config.NewLogger(stderr, debug)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFatal
	}

	if flags.NArg() != 2 {
		flags.Usage()
		return exitFatal
	}
	testPath := flags.Arg(0)
	refPath := flags.Arg(1)

	fmt.Fprintln(stdout, "Standalone image comparison tool")

	s, err := newStorage(ctx, storageBackend, directory)
	if err != nil {
		logger.Error("failed to create storage backend", "error", err)
		return exitFatal
	}

	fmt.Fprintln(stdout, "Loading images...")
	testImage, err := reftest.Load(ctx, s, testPath)
	if err != nil {
		logger.Error("failed to load test image", "error", err)
		return exitFatal
	}
	refImage, err := reftest.Load(ctx, s, refPath)
	if err != nil {
		logger.Error("failed to load reference image", "error", err)
		return exitFatal
	}

	croppedTest, croppedRef, crops := reftest.Reconcile(testImage, refImage, logger)
	for _, c := range crops {
		path := testPath
		if c.Which == reftest.WhichReference {
			path = refPath
		}
		fmt.Fprintf(stdout, "\tCropping %s to %dx%d\n", path, c.Width, c.Height)
	}
	rtiTest := reftest.FromImage(croppedTest)
	rtiRef := reftest.FromImage(croppedRef)

	comparison := rtiTest.Compare(rtiRef)
	result := report.NewResult(testPath, refPath, comparison)

	code := exitEqual
	switch c := comparison.(type) {
	case reftest.Equal:
		fmt.Fprintln(stdout, "REFTEST TEST-PASS")
	case reftest.NotEqual:
		failure := report.NewFailure(testPath, refPath, c, rtiTest, rtiRef)
		path, err := report.NewWriter(s, logName).Write(ctx, failure)
		if err != nil {
			logger.Error("failed to write difference log", "error", err)
			return exitFatal
		}
		result.LogPath = path
		fmt.Fprintf(stdout, "Difference log written to '%s'\n", path)
		if failOnMismatch {
			code = exitNotEqual
		}
	}

	if callbackURL != "" {
		retryOn, err := retry.NewRetryOnFromString(callbackRetryOn)
		if err != nil {
			logger.Error("invalid callback retry policy", "error", err)
			return exitFatal
		}
		if err := report.NewCallback(callbackURL, retryOn).Send(ctx, result); err != nil {
			logger.Error("failed to send callback", "error", err)
			return exitFatal
		}
	}

	return code
}

func newStorage(ctx context.Context, backend string, directory string) (storage.Storage, error) {
	switch backend {
	case "file":
		return storage.NewFileStorage(ctx, storage.FileConfig{
			Directory: directory,
		})
	case "s3":
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:      os.Getenv("S3_BUCKET"),
			EndpointURL: os.Getenv("S3_ENDPOINT_URL"),
		})
	default:
		return nil, xerrors.Errorf("unknown storage backend: %s", backend)
	}
}
