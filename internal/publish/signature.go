package publish

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// FileSignature returns the hex sha256 of the file contents, streamed so
// large binaries never sit in memory.
func FileSignature(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("signature: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("signature: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
