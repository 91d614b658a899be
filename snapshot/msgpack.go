package snapshot

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack encodes snapshots with vmihailenco/msgpack. Map keys are sorted so
// output is stable, and unknown fields fail the import.
type Msgpack struct{}

var _ Codec[Snapshot] = Msgpack{}

func (Msgpack) Encode(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Msgpack) Decode(b []byte) (Snapshot, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields(true)
	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: msgpack: %v", ErrInvalidSnapshot, err)
	}
	return s, nil
}
