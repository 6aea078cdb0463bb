package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEnvOrDefaultValue(t *testing.T) {
	t.Setenv("REFTEST_STRING", "reftest.log")
	t.Setenv("REFTEST_BOOL", "false")
	t.Setenv("REFTEST_INT", "not a number")
	t.Setenv("REFTEST_DURATION", "250ms")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			EnvOrDefaultValue("REFTEST_STRING", "default"),
			"reftest.log",
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			EnvOrDefaultValue("REFTEST_BOOL", true),
			false,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			EnvOrDefaultValue("REFTEST_INT", 42),
			42,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			EnvOrDefaultValue("REFTEST_DURATION", time.Second),
			250 * time.Millisecond,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			EnvOrDefaultValue("REFTEST_UNSET", uint(7)),
			uint(7),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := NewLogger(&buffer, false)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("cropping image", "width", 8)

	var record map[string]any
	if err := json.Unmarshal(buffer.Bytes(), &record); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("cropping image", record["body"]); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("INFO", record["severitytext"]); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	t.Setenv("GO_LOG", "loud")
	if _, err := NewLogger(&bytes.Buffer{}, false); err == nil {
		t.Error("expected error for invalid GO_LOG")
	}
}
