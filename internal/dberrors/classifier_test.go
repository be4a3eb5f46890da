package dberrors

import (
	"errors"
	"testing"

	"github.com/kartikbazzad/queryhost/internal/backtrace"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()
	cases := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"client", NewClientError("bad"), ErrorValidation},
		{"parse", NewParseError(backtrace.Empty, "bad"), ErrorValidation},
		{"io", NewIoError(errors.New("short read")), ErrorTransient},
		{"range", NewRangeError("bad length"), ErrorPermanent},
	}
	for _, tc := range cases {
		got := c.Classify(tc.err)
		if got != tc.want {
			t.Errorf("%s: Classify() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassifier_ShouldRetry(t *testing.T) {
	c := NewClassifier()
	if !c.ShouldRetry(ErrorTransient) {
		t.Error("ShouldRetry(ErrorTransient) = false, want true")
	}
	if c.ShouldRetry(ErrorValidation) {
		t.Error("ShouldRetry(ErrorValidation) = true, want false")
	}
	if c.ShouldRetry(ErrorPermanent) {
		t.Error("ShouldRetry(ErrorPermanent) = true, want false")
	}
}
