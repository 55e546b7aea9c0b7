// Package hasher computes the content hashes used for project identities
// and archive digests.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/nightconcept/cratesmith/internal/core/project"
)

// CalculateSHA256 computes the SHA256 hash of the given content
// and returns it in the format "sha256:<hex_hash>".
func CalculateSHA256(content []byte) string {
	sum := sha256.Sum256(content)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// Description hashes the canonical JSON form of a generation request.
// Equal descriptions always produce equal hashes.
func Description(desc *project.Description) (string, error) {
	if desc == nil {
		return "", fmt.Errorf("hash description: nil description")
	}
	data, err := json.Marshal(desc)
	if err != nil {
		return "", fmt.Errorf("failed to encode description for hashing: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
