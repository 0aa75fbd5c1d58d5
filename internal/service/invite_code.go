package service

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
)

const (
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeSegments    = 3
	codeSegmentSize = 4
	// Largest multiple of len(codeAlphabet) below 256; bytes at or above it are rejected.
	codeByteLimit = 252
)

// InviteCodePattern matches every code GenerateCode produces.
var InviteCodePattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// GenerateCode returns a random XXXX-XXXX-XXXX code drawn from uppercase
// letters and digits using crypto/rand.
func GenerateCode() (string, error) {
	return generateCodeFrom(rand.Reader)
}

func generateCodeFrom(r io.Reader) (string, error) {
	const n = codeSegments * codeSegmentSize
	out := make([]byte, 0, n+codeSegments-1)
	buf := make([]byte, 2*n)

	count := 0
	for count < n {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= codeByteLimit {
				continue
			}
			if count > 0 && count%codeSegmentSize == 0 {
				out = append(out, '-')
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			count++
			if count == n {
				break
			}
		}
	}
	return string(out), nil
}
