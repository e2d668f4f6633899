// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package features

// KeyEncoder assigns dense keys starting at 1 to string identifiers in
// first-seen order. Key 0 means "unknown". Not safe for concurrent use.
type KeyEncoder struct {
	keys map[string]uint32
	ids  []string
}

// NewKeyEncoder returns an empty encoder.
func NewKeyEncoder() *KeyEncoder {
	return &KeyEncoder{keys: make(map[string]uint32)}
}

// Key returns the key for id, assigning the next one on first sight.
func (k *KeyEncoder) Key(id string) uint32 {
	if key, ok := k.keys[id]; ok {
		return key
	}
	k.ids = append(k.ids, id)
	key := uint32(len(k.ids))
	k.keys[id] = key
	return key
}

// Lookup returns the key without assigning one.
func (k *KeyEncoder) Lookup(id string) (uint32, bool) {
	key, ok := k.keys[id]
	return key, ok
}

// ID returns the identifier for key, or "" when key is unknown.
func (k *KeyEncoder) ID(key uint32) string {
	if key == 0 || int(key) > len(k.ids) {
		return ""
	}
	return k.ids[key-1]
}

// Len returns the number of distinct identifiers seen.
func (k *KeyEncoder) Len() int {
	return len(k.ids)
}
