package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// GenerateHash builds a stable cache key "<resourceType>:<sha256>" from the
// resource and its query parameters. Keys are sorted so parameter order does
// not change the key.
func GenerateHash(resourceType string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("resource=" + resourceType)
	for _, key := range keys {
		fmt.Fprintf(&b, "&%s=%s", key, params[key])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s:%s", resourceType, hex.EncodeToString(sum[:]))
}
