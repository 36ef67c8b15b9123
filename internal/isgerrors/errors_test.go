// SPDX-License-Identifier: AGPL-3.0-only

package isgerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsgErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *IsgError
		want string
	}{
		{
			name: "with underlying error",
			err:  &IsgError{Message: "failed to parse x.rs", Err: fmt.Errorf("unexpected token")},
			want: "failed to parse x.rs: unexpected token",
		},
		{
			name: "without underlying error",
			err:  &IsgError{Message: "node 42 not found"},
			want: "node 42 not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsgErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := New(Io, "snapshot write failed", "", "", cause)
	if !errors.Is(err, cause) {
		t.Errorf("expected errors.Is to find wrapped cause")
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{EntityNotFound, ExitNotFound},
		{AmbiguousName, ExitNotFound},
		{NodeNotFound, ExitNotFound},
		{ParseError, ExitParse},
		{InvalidInput, ExitInput},
		{PerformanceViolation, ExitPerf},
		{Io, ExitIo},
		{Serde, ExitIo},
		{StateCorrupted, ExitInternal},
	}

	for _, tt := range tests {
		e := New(tt.kind, "msg", "", "", nil)
		if got := e.ExitCode(); got != tt.want {
			t.Errorf("Kind(%v).ExitCode() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestNewAmbiguousNameMessage(t *testing.T) {
	e := NewAmbiguousName("parse", 3)
	if e.Kind != AmbiguousName {
		t.Errorf("expected AmbiguousName kind")
	}
	if e.Cause == "" || e.Fix == "" {
		t.Errorf("expected cause and fix to be populated")
	}
}

func TestFormatOmitsEmptyFields(t *testing.T) {
	e := New(EntityNotFound, "no entity named \"foo\"", "", "", nil)
	out := e.Format(true)
	if want := "Error: no entity named \"foo\"\n"; out != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}
}

func TestToJSON(t *testing.T) {
	e := NewParseError("a.rs", fmt.Errorf("bad token"))
	j := e.ToJSON()
	if j.Kind != "ParseError" {
		t.Errorf("expected Kind ParseError, got %s", j.Kind)
	}
	if j.ExitCode != ExitParse {
		t.Errorf("expected ExitCode %d, got %d", ExitParse, j.ExitCode)
	}
}
