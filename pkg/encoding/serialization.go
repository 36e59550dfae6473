// Package encoding holds the gob plumbing shared by everything that
// persists agent state.
package encoding

import (
	"bytes"
	"encoding/gob"

	"github.com/turnpilot/turnpilot/pkg/generic"
)

var buffers = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) })

// EncodeGob serializes v with gob, reusing pooled buffers across calls.
func EncodeGob(v any) ([]byte, error) {
	buf := buffers.Get()
	defer func() {
		buf.Reset()
		buffers.Put(buf)
	}()
	if err := gob.NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// DecodeGob restores v from gob data. v must be a pointer.
func DecodeGob(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
