// Package code generates and validates the short numeric codes used to
// address rooms and saved layouts.
package code

import (
	"math/rand"
	"regexp"
	"strings"
)

const digits = "0123456789"

const (
	// RoomLength is the number of digits in a room code.
	RoomLength = 4
	// SaveLength is the number of digits in a saved-layout code.
	SaveLength = 8
)

var (
	roomPattern = regexp.MustCompile(`^[0-9]{4}$`)
	savePattern = regexp.MustCompile(`^[0-9]{8}$`)
)

func random(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = digits[rand.Intn(len(digits))]
	}
	return string(b)
}

// NewRoom returns a fresh 4-digit room code without any uniqueness check.
func NewRoom() string { return random(RoomLength) }

// NewSave returns a fresh 8-digit saved-layout code.
func NewSave() string { return random(SaveLength) }

// UniqueRoom retries up to 1000 times to find a code for which taken
// reports false, then falls back to an unchecked code. At four digits the
// fallback only matters once the table holds most of the 10000 codes.
func UniqueRoom(taken func(string) bool) string {
	return unique(RoomLength, taken)
}

// UniqueSave is UniqueRoom for 8-digit saved-layout codes.
func UniqueSave(taken func(string) bool) string {
	return unique(SaveLength, taken)
}

func unique(length int, taken func(string) bool) string {
	for i := 0; i < 1000; i++ {
		c := random(length)
		if !taken(c) {
			return c
		}
	}
	return random(length)
}

// NormalizeRoom trims the input and reports whether it is a well-formed
// room code. Anything that fails the format must be rejected before any
// registry lookup.
func NormalizeRoom(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, roomPattern.MatchString(s)
}

// NormalizeSave is NormalizeRoom for saved-layout codes.
func NormalizeSave(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, savePattern.MatchString(s)
}
