package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Domain prefixes for content-addressed hashes. The version suffix allows
// migrating the algorithm later.
const (
	DomainTimeline = "reelsync/timeline/v1"
	DomainSnapshot = "reelsync/snapshot/v1"
	DomainQueue    = "reelsync/queue/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null separator
// prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TimelineHash hashes the canonical tuple form of a log.
func TimelineHash(lines []Line) (string, error) {
	arr := make(Array, len(lines))
	for i, l := range lines {
		arr[i] = l.Tuple()
	}
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("TimelineHash: %w", err)
	}
	return hashWithDomain(DomainTimeline, canonical), nil
}

// SnapshotHash hashes a whole save snapshot.
func SnapshotHash(s *Save) (string, error) {
	h, err := hashJSON(DomainSnapshot, s)
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: %w", err)
	}
	return h, nil
}

// QueueHash hashes a compiled instruction queue.
func QueueHash(q []Instruction) (string, error) {
	if q == nil {
		q = []Instruction{}
	}
	h, err := hashJSON(DomainQueue, q)
	if err != nil {
		return "", fmt.Errorf("QueueHash: %w", err)
	}
	return h, nil
}

// hashJSON canonicalises the wire encoding of v before hashing, so field
// order and whitespace never affect the result.
func hashJSON(domain string, v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	val, err := DecodeValue(raw)
	if err != nil {
		return "", err
	}
	canonical, err := MarshalCanonical(val)
	if err != nil {
		return "", err
	}
	return hashWithDomain(domain, canonical), nil
}

// MustQueueHash is like QueueHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustQueueHash(q []Instruction) string {
	h, err := QueueHash(q)
	if err != nil {
		panic(err)
	}
	return h
}
