package snapshot

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Proto encodes a Snapshot as a google.protobuf.Struct, so any protobuf
// runtime can read an export without a generated schema. The Struct mirrors
// the JSON form field for field.
type Proto struct{}

var _ Codec[Snapshot] = Proto{}

func (Proto) Encode(s Snapshot) ([]byte, error) {
	st, err := toStruct(s)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

func (Proto) Decode(b []byte) (Snapshot, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(b, &st); err != nil {
		return Snapshot{}, err
	}
	return fromStruct(&st)
}

// toStruct goes through the JSON form: every value in it is a string, an
// object, or the uint32 id, all of which a Struct represents exactly.
func toStruct(s Snapshot) (*structpb.Struct, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("snapshot: to struct: %w", err)
	}
	return st, nil
}

func fromStruct(st *structpb.Struct) (Snapshot, error) {
	b, err := json.Marshal(st.AsMap())
	if err != nil {
		return Snapshot{}, err
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: from struct: %w", err)
	}
	return s, nil
}
