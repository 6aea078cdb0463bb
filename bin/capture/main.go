package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"ref-image/internal/capture"
	"ref-image/internal/config"
	"ref-image/internal/storage"

	"golang.org/x/sync/errgroup"
)

type CaptureResult struct {
	TestPath      string `json:"testPath"`
	ReferencePath string `json:"referencePath"`
}

type headers []string

func (h *headers) String() string {
	return strings.Join(*h, ", ")
}

func (h *headers) Set(value string) error {
	*h = append(*h, value)
	return nil
}

func main() {
	var directory string
	var maskSelectors string
	var delay time.Duration
	var viewportWidth int
	var viewportHeight int
	var chromeDevtoolsProtocolURL string
	var headers headers
	flag.StringVar(&directory, "directory", config.EnvOrDefaultValue("DIRECTORY", "."), "Output directory for test.png and reference.png")
	flag.StringVar(&maskSelectors, "mask-selectors", config.EnvOrDefaultValue("MASK_SELECTORS", ""), "Comma-separated list of CSS selectors to mask during capture")
	flag.DurationVar(&delay, "delay", config.EnvOrDefaultValue("DELAY", time.Duration(0)), "Delay before capturing")
	flag.IntVar(&viewportWidth, "viewport-width", config.EnvOrDefaultValue("VIEWPORT_WIDTH", 800), "Viewport width in pixels")
	flag.IntVar(&viewportHeight, "viewport-height", config.EnvOrDefaultValue("VIEWPORT_HEIGHT", 1000), "Viewport height in pixels")
	flag.StringVar(&chromeDevtoolsProtocolURL, "chrome-devtools-protocol-url", config.EnvOrDefaultValue("CHROME_DEVTOOLS_PROTOCOL_URL", ""), "Connect to existing browser via Chrome DevTools Protocol URL (e.g., http://localhost:9222)")
	flag.Var(&headers, "H", "Add HTTP header (can be used multiple times, e.g., -H 'Accept: text/html')")

	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		log.Fatalf("usage: capture [flags] <test-url> <reference-url>")
	}
	testURL, referenceURL := args[0], args[1]

	ctx := context.Background()

	s, err := storage.NewFileStorage(ctx, storage.FileConfig{
		Directory: directory,
	})
	if err != nil {
		log.Fatalf("Failed to create storage backend: %v", err)
	}

	c := capture.DefaultPlaywrightConfig()
	if delay > 0 {
		c.Delay = delay
	}
	if chromeDevtoolsProtocolURL != "" {
		c.ChromeDevtoolsProtocolURL = chromeDevtoolsProtocolURL
	}
	if display := os.Getenv("DISPLAY"); display != "" {
		c.Headless = false
	}
	if viewportWidth > 0 {
		c.ViewportWidth = viewportWidth
	}
	if viewportHeight > 0 {
		c.ViewportHeight = viewportHeight
	}

	capturer, err := capture.NewPlaywrightCapturer(ctx, c)
	if err != nil {
		log.Fatalf("Failed to create capturer: %v", err)
	}

	options := capture.CaptureOptions{
		MaskSelectors: splitSelectors(maskSelectors),
		Headers:       parseHeaders(headers),
	}

	var result CaptureResult
	{
		eg, ctx := errgroup.WithContext(ctx)

		eg.Go(func() error {
			path, err := captureTo(ctx, capturer, s, testURL, "test.png", options)
			if err != nil {
				return err
			}
			result.TestPath = path
			return nil
		})

		eg.Go(func() error {
			path, err := captureTo(ctx, capturer, s, referenceURL, "reference.png", options)
			if err != nil {
				return err
			}
			result.ReferencePath = path
			return nil
		})

		if err := eg.Wait(); err != nil {
			log.Fatalf("Failed to capture: %v", err)
		}
	}

	if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}

func captureTo(ctx context.Context, capturer capture.Capturer, s storage.Storage, url string, key string, options capture.CaptureOptions) (string, error) {
	screenshot, err := capturer.Capture(ctx, url, options)
	if err != nil {
		return "", err
	}
	return s.Put(ctx, key, screenshot)
}

func splitSelectors(value string) []string {
	var selectors []string
	for _, selector := range strings.Split(value, ",") {
		if selector = strings.TrimSpace(selector); selector != "" {
			selectors = append(selectors, selector)
		}
	}
	return selectors
}

func parseHeaders(values []string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	m := make(map[string]string, len(values))
	for _, header := range values {
		key, value, ok := strings.Cut(header, ":")
		if !ok {
			continue
		}
		m[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return m
}
