package chttp

import (
	"encoding/json"
	"io"
)

// Codec (de)serializes request bodies and default response values. The decode contract is
// synchronous: body-sourced bindings hand it fully-buffered bytes.
type Codec interface {
	Decode(r io.Reader, v any) error
	Encode(w io.Writer, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Decode(r io.Reader, v any) error { return json.NewDecoder(r).Decode(v) }
func (jsonCodec) Encode(w io.Writer, v any) error { return json.NewEncoder(w).Encode(v) }

// JSONCodec is the default codec.
var JSONCodec Codec = jsonCodec{}
