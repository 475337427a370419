// Package coding holds the small text utilities behind the Coding page and
// the CLI: JSON formatting, regex testing, encoding, hashing and time
// conversion. Every function is pure; malformed input yields an error and no
// partial output.
package coding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidJSON is wrapped by every JSON helper when the input does not parse.
var ErrInvalidJSON = errors.New("could not parse JSON")

// FormatJSON pretty-prints input with the given indent width (2 or 4). With
// sortKeys the object keys are ordered; otherwise the input order is kept.
func FormatJSON(input string, indent int, sortKeys bool) (string, error) {
	if indent != 4 {
		indent = 2
	}
	raw := []byte(strings.TrimSpace(input))
	if !json.Valid(raw) {
		return "", invalidJSON(raw)
	}
	prefix := strings.Repeat(" ", indent)

	if !sortKeys {
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", prefix); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return out.String(), nil
	}

	v, err := decode(raw)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", prefix)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encoding JSON: %w", err)
	}
	return strings.TrimRight(out.String(), "\n"), nil
}

// MinifyJSON strips all insignificant whitespace from input.
func MinifyJSON(input string) (string, error) {
	raw := []byte(strings.TrimSpace(input))
	var out bytes.Buffer
	if err := json.Compact(&out, raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return out.String(), nil
}

// JSONToYAML converts a JSON document to block-style YAML, keeping key order.
func JSONToYAML(input string) (string, error) {
	raw := []byte(strings.TrimSpace(input))
	if !json.Valid(raw) {
		return "", invalidJSON(raw)
	}

	// JSON is a subset of YAML, so yaml.v3 can parse it into a node tree that
	// keeps key order. Clearing the styles turns flow mappings into blocks.
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	resetStyle(&doc)

	var out bytes.Buffer
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding YAML: %w", err)
	}
	return out.String(), nil
}

func resetStyle(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style = 0
	}
	if n.Kind == yaml.ScalarNode && n.Style == yaml.DoubleQuotedStyle && n.Tag == "!!str" {
		// Let the encoder decide whether the string needs quoting.
		n.Style = 0
	}
	for _, c := range n.Content {
		resetStyle(c)
	}
}

func decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return v, nil
}

func invalidJSON(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return ErrInvalidJSON
}
