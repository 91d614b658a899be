package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Codec serializes values of type V.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

type JSON[V any] struct{}

var _ Codec[Snapshot] = JSON[Snapshot]{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}

// Formats lists the names accepted by ByName.
var Formats = []string{"json", "msgpack", "cbor", "proto"}

// ByName returns the snapshot codec for a format name.
func ByName(name string) (Codec[Snapshot], error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSON[Snapshot]{}, nil
	case "msgpack":
		return Msgpack{}, nil
	case "cbor":
		return NewCBOR(true)
	case "proto", "protobuf":
		return Proto{}, nil
	default:
		return nil, fmt.Errorf("snapshot: unknown format %q (want one of %s)", name, strings.Join(Formats, ", "))
	}
}
