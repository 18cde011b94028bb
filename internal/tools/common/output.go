package common

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

type CIResult struct {
	OK         bool     `json:"ok"`
	Title      string   `json:"title"`
	DurationMS int64    `json:"duration_ms"`
	Details    []string `json:"details,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func PrintCIResult(title string, details []string, elapsed time.Duration, err error) {
	_ = WriteCIResult(os.Stdout, title, details, elapsed, err)
}

func WriteCIResult(w io.Writer, title string, details []string, elapsed time.Duration, err error) error {
	result := CIResult{OK: err == nil, Title: title, DurationMS: elapsed.Milliseconds(), Details: details}
	if err != nil {
		result.Error = err.Error()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
