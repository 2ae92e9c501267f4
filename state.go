package ooze

import (
	"bytes"
	"errors"
	"sort"
	"strings"

	"github.com/Tnze/go-mc/nbt"
)

// Tag names Minecraft uses when it serializes a block state.
const (
	tagName       = "Name"
	tagProperties = "Properties"
)

// DefaultBlockState is the state assumed wherever no block was explicitly
// set. It is always palette ID 0.
var DefaultBlockState = BlockState{Name: "minecraft:air"}

// BlockState identifies a block by its namespaced name plus, optionally, the
// block's property map. Two states are the same iff both parts are equal;
// property order never matters.
type BlockState struct {
	Name       string
	Properties map[string]string
}

func (s BlockState) HasProperties() bool {
	return len(s.Properties) > 0
}

func (s BlockState) Equal(other BlockState) bool {
	if s.Name != other.Name || len(s.Properties) != len(other.Properties) {
		return false
	}
	for name, value := range s.Properties {
		if otherValue, ok := other.Properties[name]; !ok || otherValue != value {
			return false
		}
	}
	return true
}

// key is the canonical form used for palette lookups, with properties sorted
// by name.
func (s BlockState) key() string {
	if !s.HasProperties() {
		return s.Name
	}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('[')
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(s.Properties[name])
	}
	b.WriteByte(']')
	return b.String()
}

func (s BlockState) String() string {
	return s.key()
}

// EncodeState renders the Name/Properties compound Minecraft stores palette
// entries in. The Properties tag is omitted for states without properties.
func EncodeState(state BlockState) ([]byte, error) {
	if state.Name == "" {
		return nil, errors.New("cannot encode a block state without a name")
	}

	encoded := make(map[string]interface{}, 2)
	encoded[tagName] = state.Name
	if state.HasProperties() {
		encoded[tagProperties] = state.Properties
	}

	var buf bytes.Buffer
	if err := nbt.NewEncoder(&buf).Encode(encoded, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeState is the inverse of EncodeState.
func DecodeState(data []byte) (BlockState, error) {
	var encoded struct {
		Name       string            `nbt:"Name"`
		Properties map[string]string `nbt:"Properties"`
	}
	if _, err := nbt.NewDecoder(bytes.NewReader(data)).Decode(&encoded); err != nil {
		return BlockState{}, err
	}
	if encoded.Name == "" {
		return BlockState{}, errors.New("block state is missing a name")
	}

	state := BlockState{Name: encoded.Name}
	if len(encoded.Properties) > 0 {
		state.Properties = encoded.Properties
	}
	return state, nil
}
