package main

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	"unicode/utf8"
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Distance returns the distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// TruncateRunes limits s to at most n runes, never splitting a
// multi-byte rune the way a byte slice would.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// NormalizeDegrees wraps an angle to [0, 360)
func NormalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// HeadingVector converts a heading in degrees to a unit direction vector.
// 0 degrees points along +X, 90 along +Y.
func HeadingVector(deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}

// randFloat returns a random float64 in [0, 1) using a xorshift generator
// seeded from crypto/rand. Game randomness only, nothing security-relevant.
var randSrc uint64

func randFloat() float64 {
	randSrc ^= randSrc << 13
	randSrc ^= randSrc >> 7
	randSrc ^= randSrc << 17
	if randSrc == 0 {
		randSrc = 1
	}
	return float64(randSrc%10000) / 10000.0
}

func init() {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	for i, v := range b {
		randSrc |= uint64(v) << (uint(i) * 8)
	}
	if randSrc == 0 {
		randSrc = 1
	}
}
