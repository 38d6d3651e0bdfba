package util

import "strings"

// Sep ends the kind in a storage key. Kinds never contain it, so no two
// (kind, key) pairs share a storage key.
const Sep = ':'

// ValidKind reports whether kind can namespace storage keys.
func ValidKind(kind string) bool {
	return kind != "" && strings.IndexByte(kind, Sep) < 0
}

// StorageKey joins a kind namespace and a logical key as "<kind>:<key>".
// The result depends only on its inputs, so a key is stable across calls and
// restarts.
func StorageKey(kind string, key []byte) string {
	b := make([]byte, 0, len(kind)+1+len(key))
	b = append(b, kind...)
	b = append(b, Sep)
	b = append(b, key...)
	return string(b)
}
