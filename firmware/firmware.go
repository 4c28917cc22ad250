// Package firmware loads the vendor-supplied sensor microcode image. The
// image is an opaque binary asset: the driver uploads it byte-for-byte and
// never interprets its contents, so the only validation here is that the
// file exists and has a sane size.
package firmware

import (
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"
)

// MaxSize is a sanity bound on the image file; real images are a few KiB.
const MaxSize = 64 * 1024

// Load reads the image at path.
func Load(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("firmware: %w", err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("firmware: %s is empty", path)
	}
	if len(b) > MaxSize {
		return nil, fmt.Errorf("firmware: %s is %d bytes, over the %d byte bound", path, len(b), MaxSize)
	}
	return b, nil
}

// Digest returns a short BLAKE2b digest identifying an image in logs, so
// bring-up problems can be correlated with the exact blob that was
// uploaded.
func Digest(image []byte) string {
	sum := blake2b.Sum256(image)
	return hex.EncodeToString(sum[:8])
}
