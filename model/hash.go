package model

import "github.com/minio/highwayhash"

// hashKey is a fixed 32-byte key; FlowSight only needs a stable content
// fingerprint, not a keyed MAC, so a constant key is adequate here exactly
// as in the teacher's own inspector/graph/hash.go.
var hashKey = []byte("FlowSight-ContentHashKey-v1-0000")

// Hash returns a 64-bit content fingerprint of data, used for file version
// tracking and parse/tree cache keys throughout the index package.
func Hash(data []byte) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	if _, err := h.Write(data); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
