// Package payload enforces image payload limits without decoding. Decoded
// sizes are derived arithmetically from the base64 text so an oversized
// request is rejected before any expensive work or memory allocation.
package payload

import (
	"errors"
	"strings"
)

const (
	// DefaultPerImageCap is the decoded-byte limit for a single image.
	DefaultPerImageCap = 10 * 1024 * 1024
	// DefaultTotalCap is the decoded-byte limit for all images combined.
	DefaultTotalCap = 20 * 1024 * 1024
)

// ErrImageTooLarge and ErrTotalTooLarge distinguish the two 413 outcomes.
// Their messages are part of the API contract.
var (
	ErrImageTooLarge = errors.New("An individual image exceeds allowed size")
	ErrTotalTooLarge = errors.New("Total image payload exceeds allowed size")
)

// EstimateDecodedSize computes the decoded byte count of a base64 string
// from its length and trailing padding, without decoding. Whitespace and an
// optional leading "data:...," URL prefix are stripped first. The result is
// never negative.
func EstimateDecodedSize(b64 string) int {
	s := strings.TrimSpace(b64)
	if strings.HasPrefix(s, "data:") {
		if comma := strings.IndexByte(s, ','); comma != -1 {
			s = s[comma+1:]
		}
	}
	if strings.ContainsAny(s, " \t\r\n") {
		var b strings.Builder
		b.Grow(len(s))
		for _, r := range s {
			switch r {
			case ' ', '\t', '\r', '\n':
			default:
				b.WriteRune(r)
			}
		}
		s = b.String()
	}
	if s == "" {
		return 0
	}
	padding := 0
	if strings.HasSuffix(s, "==") {
		padding = 2
	} else if strings.HasSuffix(s, "=") {
		padding = 1
	}
	n := (len(s)*3)/4 - padding
	if n < 0 {
		return 0
	}
	return n
}

// Enforce sizes every image and applies the per-item and aggregate caps.
// It fails fast with ErrImageTooLarge the moment a single image exceeds
// perImageCap; the total is checked against totalCap only after all items
// are sized. Boundaries are inclusive: a size of exactly the cap passes.
func Enforce(images []string, perImageCap, totalCap int) error {
	total := 0
	for _, img := range images {
		size := EstimateDecodedSize(img)
		if size > perImageCap {
			return ErrImageTooLarge
		}
		total += size
	}
	if total > totalCap {
		return ErrTotalTooLarge
	}
	return nil
}
