package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainBinding = "linjoin/binding/v1"
	DomainDataset = "linjoin/dataset/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BindingHash computes the content-addressed identity of a solution.
// Two bindings hash equal iff they bind the same variables to the same terms.
// Used to compare solution multisets.
func BindingHash(b Binding) string {
	return hashWithDomain(DomainBinding, []byte(CanonicalBinding(b)))
}
