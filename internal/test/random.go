package test

import (
	"fmt"
	"math/rand/v2"
)

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomASCIIString returns a pseudo-random alphanumeric string of length
// within [minLen, maxLen].
func RandomASCIIString(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	buf := make([]byte, minLen+rand.IntN(maxLen-minLen+1))
	for i := range buf {
		buf[i] = asciiLetters[rand.IntN(len(asciiLetters))]
	}
	return string(buf)
}

// RandomFilename returns a client-style upload name with the given extension.
func RandomFilename(ext string) string {
	return fmt.Sprintf("%s.%s", RandomASCIIString(4, 16), ext)
}
