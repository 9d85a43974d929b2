package schema

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
)

// HashLen is the length of a schema hash string.
const HashLen = 8

// Hash computes the short content hash used to tag records with their
// originating schema and to detect schema identity across devices without
// transmitting the full schema: the first 8 hex characters of the MD5 of the
// schema's canonical JSON encoding.
func (s *Schema) Hash() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal schema for hashing: %w", err)
	}
	sum := md5.Sum(data)
	return fmt.Sprintf("%x", sum)[:HashLen], nil
}
