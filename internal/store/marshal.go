package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/reelsync/internal/ir"
)

// marshalCanonical converts v to RFC 8785 canonical JSON TEXT for storage,
// going through the wire encoding first so custom marshalers apply.
func marshalCanonical(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	val, err := ir.DecodeValue(raw)
	if err != nil {
		return "", err
	}
	data, err := ir.MarshalCanonical(val)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func marshalSave(s *ir.Save) (string, error) {
	body, err := marshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("marshal save %d: %w", s.ID, err)
	}
	return body, nil
}

func unmarshalSave(body string) (*ir.Save, error) {
	var s ir.Save
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return nil, fmt.Errorf("unmarshal save: %w", err)
	}
	return &s, nil
}

func marshalQueue(q []ir.Instruction) (string, error) {
	if q == nil {
		q = []ir.Instruction{}
	}
	body, err := marshalCanonical(q)
	if err != nil {
		return "", fmt.Errorf("marshal queue: %w", err)
	}
	return body, nil
}

// unmarshalQueue parses a stored queue. An empty array comes back as an
// empty, non-nil slice.
func unmarshalQueue(body string) ([]ir.Instruction, error) {
	q := []ir.Instruction{}
	if err := json.Unmarshal([]byte(body), &q); err != nil {
		return nil, fmt.Errorf("unmarshal queue: %w", err)
	}
	return q, nil
}
