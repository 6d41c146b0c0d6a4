package vars

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"
)

// Format identifies the syntax of a variable document.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
)

// FormatForPath determines the document format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonc":
		return FormatJSONC, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q: expected .json, .jsonc, .yaml or .yml", filepath.Ext(path))
	}
}

// Load reads and parses the document at path, detecting the format from the
// file extension.
func Load(path string) (map[string]interface{}, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document in the given format. The top level must be an
// object.
func Parse(data []byte, format Format) (map[string]interface{}, error) {
	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatJSONC:
		return parseJSON(stripJSONC(data))
	case FormatYAML:
		jsonData, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		return parseJSON(jsonData)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// parseJSON decodes JSON into a generic document. Numbers are kept as
// json.Number so flattening can render them exactly as written.
func parseJSON(data []byte) (map[string]interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("invalid JSON: unexpected content after document")
	}

	doc, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("top-level value must be an object, got %T", value)
	}
	return doc, nil
}

// stripJSONC removes // and /* */ comments and trailing commas from JSONC
// input so it can be fed to the standard JSON decoder. The scan is
// string-aware: comment markers and commas inside string literals are left
// untouched. Comment bytes are replaced with spaces (newlines preserved) so
// decoder error offsets still point at the original text.
func stripJSONC(data []byte) []byte {
	stripped := stripComments(data)
	return stripTrailingCommas(stripped)
}

func stripComments(data []byte) []byte {
	out := make([]byte, 0, len(data))

	const (
		scanNormal = iota
		scanString
		scanLineComment
		scanBlockComment
	)

	state := scanNormal
	escaped := false

	for i := 0; i < len(data); i++ {
		c := data[i]

		switch state {
		case scanNormal:
			switch {
			case c == '"':
				state = scanString
				out = append(out, c)
			case c == '/' && i+1 < len(data) && data[i+1] == '/':
				state = scanLineComment
				out = append(out, ' ', ' ')
				i++
			case c == '/' && i+1 < len(data) && data[i+1] == '*':
				state = scanBlockComment
				out = append(out, ' ', ' ')
				i++
			default:
				out = append(out, c)
			}

		case scanString:
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				state = scanNormal
			}

		case scanLineComment:
			if c == '\n' {
				state = scanNormal
				out = append(out, c)
			} else {
				out = append(out, ' ')
			}

		case scanBlockComment:
			if c == '*' && i+1 < len(data) && data[i+1] == '/' {
				state = scanNormal
				out = append(out, ' ', ' ')
				i++
			} else if c == '\n' {
				out = append(out, c)
			} else {
				out = append(out, ' ')
			}
		}
	}

	return out
}

func stripTrailingCommas(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false
	escaped := false

	for i := 0; i < len(data); i++ {
		c := data[i]

		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			out = append(out, c)
		case ',':
			// Drop the comma when the next non-whitespace byte closes the
			// containing object or array.
			j := i + 1
			for j < len(data) && isJSONWhitespace(data[j]) {
				j++
			}
			if j < len(data) && (data[j] == '}' || data[j] == ']') {
				out = append(out, ' ')
			} else {
				out = append(out, c)
			}
		default:
			out = append(out, c)
		}
	}

	return out
}

func isJSONWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
