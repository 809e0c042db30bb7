// Package bookingcode generates and normalises the short codes players type
// in to start or resume a booked game.
package bookingcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// Alphabet excludes 0, 1, I and O so codes survive being read aloud or
// copied from paper.
const Alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const (
	Length      = 6
	MaxAttempts = 10
)

var (
	ErrInvalidCodeFormat       = errors.New("invalid booking code format")
	ErrCodeGenerationExhausted = errors.New("could not generate unique booking code")
)

var (
	looseRe  = regexp.MustCompile(`^[A-Z0-9]{6}$`)
	strictRe = regexp.MustCompile(`^[` + Alphabet + `]{6}$`)
	stripRe  = regexp.MustCompile(`[^A-Z0-9]`)
)

// ExistsFunc reports whether a code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generate draws random codes until one is not taken, giving up after
// MaxAttempts collisions.
func Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for range MaxAttempts {
		code, err := random()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking code %s: %w", code, err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationExhausted
}

func random() (string, error) {
	size := big.NewInt(int64(len(Alphabet)))
	b := make([]byte, Length)
	for i := range b {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("reading random: %w", err)
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b), nil
}

// Valid reports whether code, uppercased, is six characters of A-Z or 0-9.
// It accepts characters Generate never produces.
func Valid(code string) bool {
	return looseRe.MatchString(strings.ToUpper(code))
}

// Format uppercases code, drops anything that is not a letter or digit and
// requires the result to be six symbols of Alphabet.
func Format(code string) (string, error) {
	cleaned := stripRe.ReplaceAllString(strings.ToUpper(code), "")
	if !strictRe.MatchString(cleaned) {
		return "", ErrInvalidCodeFormat
	}
	return cleaned, nil
}

// Canonical returns the stored form of a code received from a client. In
// strict mode it applies Format; otherwise it only uppercases and checks
// Valid.
func Canonical(code string, strict bool) (string, error) {
	if strict {
		return Format(code)
	}
	upper := strings.ToUpper(code)
	if !Valid(upper) {
		return "", ErrInvalidCodeFormat
	}
	return upper, nil
}
