package fileutil

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// HashContent returns a short, stable fingerprint of file content.
func HashContent(content []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(content))
}
