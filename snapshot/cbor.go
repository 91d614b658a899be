package snapshot

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBOR encodes snapshots with fxamacker/cbor. Construct with NewCBOR.
//
// Timestamps travel as RFC3339Nano text so the writer's zone offset survives.
// Decoding rejects duplicate map keys and unknown struct fields: an import
// must describe exactly one entity.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[Snapshot] = CBOR{}

// NewCBOR builds the codec. deterministic selects RFC 8949 core deterministic
// encoding, so two exports of the same entity are byte-identical.
func NewCBOR(deterministic bool) (CBOR, error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR{}, fmt.Errorf("snapshot: cbor encoder: %w", err)
	}
	dm, err := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		return CBOR{}, fmt.Errorf("snapshot: cbor decoder: %w", err)
	}
	return CBOR{enc: em, dec: dm}, nil
}

// MustCBOR is like NewCBOR but panics on error.
func MustCBOR(deterministic bool) CBOR {
	c, err := NewCBOR(deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR) Encode(s Snapshot) ([]byte, error) { return c.enc.Marshal(s) }

func (c CBOR) Decode(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := c.dec.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: cbor: %v", ErrInvalidSnapshot, err)
	}
	return s, nil
}
