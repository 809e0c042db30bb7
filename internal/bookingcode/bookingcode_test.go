package bookingcode

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func never(context.Context, string) (bool, error) { return false, nil }

func TestGenerate(t *testing.T) {
	for range 200 {
		code, err := Generate(context.Background(), never)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != Length {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), Length)
		}
		for _, c := range code {
			if !strings.ContainsRune(Alphabet, c) {
				t.Fatalf("code %q contains %q outside alphabet", code, c)
			}
		}
		got, err := Format(code)
		if err != nil {
			t.Fatalf("format %q: %v", code, err)
		}
		if got != code {
			t.Errorf("Format(%q) = %q, want no-op", code, got)
		}
	}
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	calls := 0
	exists := func(context.Context, string) (bool, error) {
		calls++
		return calls < 4, nil
	}

	if _, err := Generate(context.Background(), exists); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if calls != 4 {
		t.Errorf("expected 4 lookups, got %d", calls)
	}
}

func TestGenerateExhausted(t *testing.T) {
	calls := 0
	always := func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	}

	_, err := Generate(context.Background(), always)
	if !errors.Is(err, ErrCodeGenerationExhausted) {
		t.Fatalf("expected ErrCodeGenerationExhausted, got %v", err)
	}
	if calls != MaxAttempts {
		t.Errorf("expected %d lookups, got %d", MaxAttempts, calls)
	}
}

func TestGenerateLookupError(t *testing.T) {
	boom := errors.New("db down")
	_, err := Generate(context.Background(), func(context.Context, string) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"ABC234", true},
		{"abc234", true},
		{"O0I1AB", true},
		{"ABC23", false},
		{"ABC2345", false},
		{"ABC-23", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.code); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "abc234", want: "ABC234"},
		{in: "ab-c2 34", want: "ABC234"},
		{in: "O0I1AB", wantErr: true},
		{in: "ABC23", wantErr: true},
		{in: "ABCDEFG", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Format(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCodeFormat) {
				t.Errorf("Format(%q): expected ErrInvalidCodeFormat, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Format(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonical(t *testing.T) {
	if got, err := Canonical("o0i1ab", false); err != nil || got != "O0I1AB" {
		t.Errorf("loose: got %q, %v", got, err)
	}
	if _, err := Canonical("o0i1ab", true); !errors.Is(err, ErrInvalidCodeFormat) {
		t.Errorf("strict: expected ErrInvalidCodeFormat, got %v", err)
	}
	if _, err := Canonical("ab-234", false); !errors.Is(err, ErrInvalidCodeFormat) {
		t.Errorf("loose with dash: expected ErrInvalidCodeFormat, got %v", err)
	}
	if got, err := Canonical("ab-c234", true); err != nil || got != "ABC234" {
		t.Errorf("strict with dash: got %q, %v", got, err)
	}
}
