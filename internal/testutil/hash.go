package testutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
)

// SHA256Hex returns the SHA-256 checksum of data as a lowercase hex string.
func SHA256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// BinaryPayload returns n deterministic bytes that include NUL runs, 0xFF runs,
// CR/LF pairs and dash sequences, the bytes most likely to confuse a
// multipart scanner.
func BinaryPayload(n int) []byte {
	rng := rand.New(rand.NewSource(42))
	var b bytes.Buffer
	b.Grow(n)
	for b.Len() < n {
		switch rng.Intn(6) {
		case 0:
			b.Write(bytes.Repeat([]byte{0x00}, 1+rng.Intn(64)))
		case 1:
			b.Write(bytes.Repeat([]byte{0xFF}, 1+rng.Intn(64)))
		case 2:
			b.WriteString("\r\n--\r\n")
		case 3:
			b.WriteString("--")
		default:
			chunk := make([]byte, 1+rng.Intn(256))
			rng.Read(chunk)
			b.Write(chunk)
		}
	}
	return b.Bytes()[:n]
}
