package serialization

import (
	"crypto/sha256"
	"hash"
	"io"
)

// ComputeChecksum returns the SHA-256 of a .nami data section.
func ComputeChecksum(data []byte) [ChecksumSize]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum returns ErrChecksumMismatch unless computed equals the
// checksum stored in the fixed header.
func ValidateChecksum(computed, stored [ChecksumSize]byte) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}

// checksumReader hashes the data section while it is read, so the section
// never has to be hashed in a second pass.
type checksumReader struct {
	r io.Reader
	h hash.Hash
}

// newChecksumReader reads at most n bytes from r through a SHA-256 hash.
func newChecksumReader(r io.Reader, n int64) *checksumReader {
	return &checksumReader{r: io.LimitReader(r, n), h: sha256.New()}
}

func (c *checksumReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.h.Write(p[:n])
	return n, err
}

// Verify compares the hash of everything read so far against stored.
func (c *checksumReader) Verify(stored [ChecksumSize]byte) error {
	var sum [ChecksumSize]byte
	c.h.Sum(sum[:0])
	return ValidateChecksum(sum, stored)
}
