package search

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// computeFingerprint generates a stable hash of the document slice.
// The fingerprint changes when candidate content changes, enabling
// efficient cache invalidation for the full-text index.
func computeFingerprint(docs []Doc) string {
	h := sha256.New()

	for _, doc := range docs {
		h.Write([]byte(doc.Name))
		h.Write([]byte{0}) // separator

		h.Write([]byte(doc.Version))
		h.Write([]byte{0})

		h.Write([]byte(doc.Synopsis))
		h.Write([]byte{0})

		h.Write([]byte(doc.Description))
		h.Write([]byte{0})

		// Tags are sorted for order-independence, then joined with a
		// separator.
		sortedTags := slices.Clone(doc.Tags)
		slices.Sort(sortedTags)
		h.Write([]byte(strings.Join(sortedTags, "\x01")))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
