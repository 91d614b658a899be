// Package keys builds the composite storage keys shared by every process that
// reads or writes a namespace. The layout is persisted and must not change.
package keys

import (
	"strconv"
	"strings"
)

// Primary returns "<ns>:<id>", the key of an entity's scalar hash.
func Primary(ns string, id uint32) string {
	return ns + ":" + strconv.FormatUint(uint64(id), 10)
}

// Sub returns "<ns>:<id>:<sub>", the key of a named numeric sub-hash.
func Sub(ns string, id uint32, sub string) string {
	return Primary(ns, id) + ":" + sub
}

// Index returns the key of the set holding every composite key ever written.
func Index(ns string) string { return ns + "-Keys" }

// Timestamps returns the key of the hash mapping entity ids to last activity.
func Timestamps(ns string) string { return ns + "-TimeStamps" }

// TimestampField is the Timestamps hash field for id.
func TimestampField(id uint32) string { return strconv.FormatUint(uint64(id), 10) }

// Parse splits a composite key back into entity id and sub-key. The sub-key is
// empty for a primary key. ok is false for keys outside ns.
func Parse(ns, key string) (id uint32, sub string, ok bool) {
	rest, found := strings.CutPrefix(key, ns+":")
	if !found {
		return 0, "", false
	}
	idPart, sub, _ := strings.Cut(rest, ":")
	n, err := strconv.ParseUint(idPart, 10, 32)
	if err != nil {
		return 0, "", false
	}
	return uint32(n), sub, true
}
