package utils

import (
	"crypto/rand"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// NewReference generates a short, URL-safe base58 code from n random
// bytes. Base58 drops the lookalike characters (0/O, I/l), which matters
// because customers read these codes to reception staff. 5 bytes give
// ~7 characters and a trillion possibilities; the unique column catches
// the rare collision and callers retry.
func NewReference(n int) (string, error) {
	if n < 1 {
		n = 5
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes for reference")
	}

	return base58.Encode(buf), nil
}
