// Package jsonx provides JSON serialization for the kernel using Sonic.
// All persisted documents (vault snapshots, the global wisdom store)
// go through this package so the encoding configuration lives in one place.
package jsonx

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

// Marshal returns the JSON encoding of v using Sonic.
func Marshal(v interface{}) ([]byte, error) {
	return sonic.Marshal(v)
}

// MarshalIndent returns human-readable JSON. Persisted blobs are meant
// to be inspectable on disk, so indentation is worth the extra bytes.
func MarshalIndent(v interface{}) ([]byte, error) {
	return sonic.MarshalIndent(v, "", "  ")
}

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v interface{}) error {
	return sonic.Unmarshal(data, v)
}

// MarshalToString is like Marshal but returns the JSON as a string.
func MarshalToString(v interface{}) (string, error) {
	return sonic.MarshalString(v)
}

// UnmarshalFromString parses the JSON string and stores the result in v.
func UnmarshalFromString(data string, v interface{}) error {
	return sonic.UnmarshalString(data, v)
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return sonic.Valid(data)
}

// DecodeFrom reads all of r and unmarshals it into v.
func DecodeFrom(r io.Reader, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(data, v)
}

// EncodeTo marshals v and writes it to w followed by a newline, using a
// pooled buffer to avoid per-call allocations on hot notification paths.
func EncodeTo(w io.Writer, v interface{}) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.Write(data)
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}
