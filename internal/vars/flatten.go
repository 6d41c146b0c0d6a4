package vars

import (
	"encoding/json"
	"path"
	"sort"
	"strconv"
	"strings"
)

// DefaultSeparator joins nested key segments in flattened variable names.
const DefaultSeparator = "."

// DefaultSecretPatterns are the glob patterns (matched case-insensitively
// against the flattened name) that mark a variable as secret.
var DefaultSecretPatterns = []string{"*secret*", "*password*", "*token*"}

// Variable is a single flattened name/value pair.
type Variable struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Secret bool   `json:"secret,omitempty"`
}

// Options controls how a document is flattened.
type Options struct {
	// Separator joins nested key segments. Defaults to ".".
	Separator string

	// Prefix is prepended to every variable name.
	Prefix string

	// Uppercase converts variable names to upper case.
	Uppercase bool

	// SanitizeEnv replaces characters outside [A-Za-z0-9_] with underscores
	// so names are valid environment variable identifiers.
	SanitizeEnv bool

	// SecretPatterns override DefaultSecretPatterns.
	SecretPatterns []string
}

func (o Options) withDefaults() Options {
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	if o.SecretPatterns == nil {
		o.SecretPatterns = DefaultSecretPatterns
	}
	return o
}

// Flatten walks the document depth-first and returns one variable per scalar
// leaf, sorted by name. Keys at each level are visited in sorted order so the
// output is deterministic.
func Flatten(doc map[string]interface{}, opts Options) []Variable {
	opts = opts.withDefaults()

	var variables []Variable
	flattenValue(doc, "", opts, &variables)

	sort.Slice(variables, func(i, j int) bool {
		return variables[i].Name < variables[j].Name
	})
	return variables
}

func flattenValue(value interface{}, prefix string, opts Options, out *[]Variable) {
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			flattenValue(v[key], joinPath(prefix, key, opts.Separator), opts, out)
		}

	case []interface{}:
		for i, element := range v {
			flattenValue(element, joinPath(prefix, strconv.Itoa(i), opts.Separator), opts, out)
		}

	default:
		if prefix == "" {
			return
		}
		*out = append(*out, Variable{
			Name:   finalizeName(prefix, opts),
			Value:  renderScalar(v),
			Secret: matchesSecret(prefix, opts.SecretPatterns),
		})
	}
}

func joinPath(prefix, segment, separator string) string {
	if prefix == "" {
		return segment
	}
	return prefix + separator + segment
}

// finalizeName applies the cosmetic name transforms after secret matching has
// run against the raw joined path.
func finalizeName(name string, opts Options) string {
	if opts.SanitizeEnv {
		name = sanitizeEnvName(name)
	}
	if opts.Uppercase {
		name = strings.ToUpper(name)
	}
	if opts.Prefix != "" {
		name = opts.Prefix + name
	}
	return name
}

func sanitizeEnvName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// renderScalar converts a leaf value to its string form. Numbers decoded as
// json.Number keep the exact literal from the source document.
func renderScalar(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func matchesSecret(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range patterns {
		if ok, err := path.Match(strings.ToLower(pattern), lower); err == nil && ok {
			return true
		}
	}
	return false
}
