package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Chunker splits an upload stream into fixed-size parts for staged
// (multipart) blob writes.
type Chunker struct {
	partSize int64
}

// NewChunker creates a chunker with the given part size in bytes.
func NewChunker(partSize int64) *Chunker {
	return &Chunker{partSize: partSize}
}

// PartSize returns the configured part size.
func (c *Chunker) PartSize() int64 {
	return c.partSize
}

// Part is one staged piece of an upload.
type Part struct {
	Data   []byte
	Number int // 1-based, the order in which parts are committed
	Hash   string
	Size   int64
}

// NextPart reads the next part from the stream. It returns io.EOF when the
// stream is exhausted. The final part may be shorter than the part size.
func (c *Chunker) NextPart(reader io.Reader, number int) (*Part, error) {
	buffer := make([]byte, c.partSize)
	n, err := io.ReadFull(reader, buffer)

	if n > 0 {
		data := buffer[:n]
		return &Part{
			Data:   data,
			Number: number,
			Hash:   ComputeHash(data),
			Size:   int64(n),
		}, nil
	}

	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, io.EOF
	}
	return nil, fmt.Errorf("error reading part %d: %w", number, err)
}

// PartCount returns how many parts a file of totalSize will produce.
func (c *Chunker) PartCount(totalSize int64) int {
	if totalSize <= 0 {
		return 0
	}
	return int((totalSize + c.partSize - 1) / c.partSize)
}

// ComputeHash computes the SHA256 hash of data.
func ComputeHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// VerifyHash verifies that data matches the expected hash.
func VerifyHash(data []byte, expectedHash string) bool {
	return ComputeHash(data) == expectedHash
}
