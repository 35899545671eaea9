package payload

import (
	"encoding/base64"
	"strings"
	"testing"
)

func b64Of(n int) string {
	return base64.StdEncoding.EncodeToString(make([]byte, n))
}

func TestEstimateDecodedSizeExact(t *testing.T) {
	// For well-formed standard base64 the estimate equals the decoded length
	// exactly, across all three padding cases (N%3 == 0, 1, 2).
	for _, n := range []int{0, 1, 2, 3, 4, 5, 6, 100, 3000, 3001, 3002} {
		got := EstimateDecodedSize(b64Of(n))
		if got != n {
			t.Errorf("EstimateDecodedSize(b64 of %d bytes) = %d, want %d", n, got, n)
		}
	}
}

func TestEstimateDecodedSizeDataURL(t *testing.T) {
	enc := b64Of(42)
	got := EstimateDecodedSize("data:image/png;base64," + enc)
	if got != 42 {
		t.Errorf("with data URL prefix: got %d, want 42", got)
	}
}

func TestEstimateDecodedSizeWhitespace(t *testing.T) {
	enc := b64Of(300)
	// Wrap at 76 columns the way MIME encoders do.
	var wrapped strings.Builder
	for i := 0; i < len(enc); i += 76 {
		end := i + 76
		if end > len(enc) {
			end = len(enc)
		}
		wrapped.WriteString(enc[i:end])
		wrapped.WriteString("\r\n")
	}
	if got := EstimateDecodedSize(wrapped.String()); got != 300 {
		t.Errorf("wrapped input: got %d, want 300", got)
	}
}

func TestEstimateDecodedSizeEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t", "data:image/png;base64,"} {
		if got := EstimateDecodedSize(in); got != 0 {
			t.Errorf("EstimateDecodedSize(%q) = %d, want 0", in, got)
		}
	}
}

func TestEnforcePerImageCap(t *testing.T) {
	over := b64Of(DefaultPerImageCap + 1)
	small := b64Of(16)

	err := Enforce([]string{small, over}, DefaultPerImageCap, DefaultTotalCap)
	if err != ErrImageTooLarge {
		t.Errorf("per-image breach: err = %v, want ErrImageTooLarge", err)
	}

	// A single over-cap image fails even though the total stays under the
	// aggregate cap.
	err = Enforce([]string{over}, DefaultPerImageCap, DefaultTotalCap)
	if err != ErrImageTooLarge {
		t.Errorf("single over-cap image: err = %v, want ErrImageTooLarge", err)
	}
}

func TestEnforceTotalCapInclusive(t *testing.T) {
	ten := b64Of(DefaultPerImageCap)

	// Two 10 MiB images total exactly 20 MiB: the boundary is inclusive.
	if err := Enforce([]string{ten, ten}, DefaultPerImageCap, DefaultTotalCap); err != nil {
		t.Errorf("exactly at total cap: err = %v, want nil", err)
	}

	// One byte over the aggregate cap fails with the total-cap error.
	err := Enforce([]string{ten, ten, b64Of(1)}, DefaultPerImageCap, DefaultTotalCap)
	if err != ErrTotalTooLarge {
		t.Errorf("one byte over total cap: err = %v, want ErrTotalTooLarge", err)
	}
}

func TestEnforceAtPerImageBoundary(t *testing.T) {
	exact := b64Of(DefaultPerImageCap)
	if err := Enforce([]string{exact}, DefaultPerImageCap, DefaultTotalCap); err != nil {
		t.Errorf("exactly at per-image cap: err = %v, want nil", err)
	}
}

func TestEnforceEmptyList(t *testing.T) {
	if err := Enforce(nil, DefaultPerImageCap, DefaultTotalCap); err != nil {
		t.Errorf("empty list: err = %v, want nil", err)
	}
}
