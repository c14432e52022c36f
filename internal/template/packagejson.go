package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
)

// PackageJSON is the npm manifest file name.
const PackageJSON = "package.json"

// SetPackageName sets the "name" field of dir/package.json to name.
//
// Comments and trailing commas are stripped first (tidwall/jsonc). Top-level
// keys keep their order and nested values are copied verbatim, so scripts
// such as "tsc && node server.js" are not escaped. A missing "name" is
// appended last. The manifest is written back with two-space indentation
// and a trailing newline, the format npm itself writes. A missing manifest
// is not an error: it returns false.
func SetPackageName(fs afero.Fs, dir, name string) (bool, error) {
	path := filepath.Join(dir, PackageJSON)

	info, err := fs.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	manifest, err := decodeObject(jsonc.ToJSON(raw))
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	value, err := encodeString(name)
	if err != nil {
		return false, fmt.Errorf("failed to encode package name: %w", err)
	}
	manifest.set("name", value)

	out, err := manifest.indent()
	if err != nil {
		return false, fmt.Errorf("failed to serialize %s: %w", path, err)
	}

	if err := afero.WriteFile(fs, path, out, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// object is a JSON object whose members keep their source order. Values are
// kept as raw JSON.
type object struct {
	keys   []string
	values map[string]json.RawMessage
}

// set replaces the value of key in place, or appends key when absent.
func (o *object) set(key string, value json.RawMessage) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// indent renders the object with two-space indentation and a trailing
// newline.
func (o *object) indent() ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			compact.WriteByte(',')
		}
		k, err := encodeString(key)
		if err != nil {
			return nil, err
		}
		compact.Write(k)
		compact.WriteByte(':')
		compact.Write(o.values[key])
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// decodeObject reads a top-level JSON object member by member. A repeated
// key keeps its first position and its last value.
func decodeObject(data []byte) (*object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	o := &object{values: map[string]json.RawMessage{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("invalid value for %q: %w", key, err)
		}
		o.set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the top-level object")
	}
	return o, nil
}

// encodeString encodes s as a JSON string without HTML escaping.
func encodeString(s string) (json.RawMessage, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}
