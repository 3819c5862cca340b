package form

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed hashing. The version suffix
// enables future algorithm migration without ambiguity.
const (
	DomainAudit  = "fieldline/audit/v1"
	DomainSchema = "fieldline/schema/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PayloadHash computes the content hash recorded alongside each audit
// entry. The input must already be canonical JSON.
func PayloadHash(canonical []byte) string {
	return hashWithDomain(DomainAudit, canonical)
}

// SchemaHash computes a stable content hash for a schema. Two schemas
// with identical content hash identically regardless of field order or
// Unicode representation of their strings.
func SchemaHash(s *Schema) (string, error) {
	canonical, err := MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("SchemaHash: %w", err)
	}
	return hashWithDomain(DomainSchema, canonical), nil
}
