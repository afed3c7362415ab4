package ingest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// checksumChunkSize is the read buffer for streaming checksums; files are
// never loaded whole for hashing.
const checksumChunkSize = 4096

// Checksum computes the MD5 content hash of a file, streamed in fixed-size
// chunks. The hash is recorded for idempotency/lineage logging and audit
// tooling; the pipeline never skips a file because its checksum repeats.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, checksumChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
