package report

import (
	"ref-image/internal/reftest"
)

const (
	ResultEqual    = "equal"
	ResultNotEqual = "not-equal"
)

// Result is the machine-readable summary of one comparison.
type Result struct {
	Test           string `json:"test"`
	Reference      string `json:"reference"`
	Result         string `json:"result"`
	MaxDifference  uint8  `json:"maxDifference"`
	CountDifferent uint64 `json:"countDifferent"`
	LogPath        string `json:"logPath,omitempty"`
}

func NewResult(testPath string, refPath string, comparison reftest.Comparison) *Result {
	r := &Result{
		Test:      testPath,
		Reference: refPath,
		Result:    ResultEqual,
	}
	if c, ok := comparison.(reftest.NotEqual); ok {
		r.Result = ResultNotEqual
		r.MaxDifference = c.MaxDifference
		r.CountDifferent = c.CountDifferent
	}
	return r
}
