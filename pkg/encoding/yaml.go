// Package encoding holds the document codecs shared by configuration,
// scenario files and CLI exports.
package encoding

import (
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

var ErrEmptyDocument = errors.New("encoding: empty document")

// DecodeYAML reads the first YAML document of r into out. With strict set,
// keys that do not map to a field are an error.
func DecodeYAML(r io.Reader, out any, strict bool) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(strict)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyDocument
		}
		return err
	}
	return nil
}

// EncodeYAML writes v as a single YAML document indented by two spaces.
func EncodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}
