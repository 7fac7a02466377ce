package deduplication

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"
)

const (
	AlgorithmMD5    = "md5"
	AlgorithmSHA256 = "sha256"
)

// Hasher turns the selected fields of an inspection payload into a stable
// digest.
type Hasher struct {
	newHash func() hash.Hash
}

func NewHasher(algorithm string) (*Hasher, error) {
	switch algorithm {
	case AlgorithmSHA256, "":
		return &Hasher{newHash: sha256.New}, nil
	case AlgorithmMD5:
		return &Hasher{newHash: md5.New}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
}

// ComputeHash hashes fields in the given order. A missing field hashes as
// the empty string so adding an optional field does not collide with its
// neighbour.
func (h *Hasher) ComputeHash(payload map[string]interface{}, fields []string) (string, error) {
	if len(fields) == 0 {
		return "", fmt.Errorf("no fields specified for hashing")
	}

	var b strings.Builder
	for _, field := range fields {
		b.WriteString(field)
		b.WriteByte('=')
		b.WriteString(formatValue(payload[field]))
		b.WriteByte('|')
	}

	sum := h.newHash()
	sum.Write([]byte(b.String()))
	return hex.EncodeToString(sum.Sum(nil)), nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
