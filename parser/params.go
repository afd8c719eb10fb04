package parser

import "strings"

// Default argument keys applied when call parameters carry no key=value pairs.
const (
	KeyInput  = "input"
	KeyQuery  = "query"
	KeyAction = "action"
)

// positionalDefaults is the closed table of tools whose positional argument
// maps to something other than the generic input key. Extra holds implied
// arguments added alongside the positional value.
var positionalDefaults = map[string]struct {
	key   string
	extra map[string]string
}{
	"search": {key: KeyQuery},
	"memory": {key: KeyQuery, extra: map[string]string{KeyAction: "search"}},
}

// ParseParameters coerces raw call parameters into a key/value map.
//
// Parameters containing '=' are split on ',' into key=value pairs (pairs
// without '=' are ignored; keys and values are trimmed). Otherwise the whole
// text is stored under the tool's positional key: "query" for search,
// "query" plus action=search for memory, and "input" for every other tool.
func ParseParameters(toolName, params string) map[string]string {
	if strings.Contains(params, "=") {
		args := map[string]string{}

		for _, pair := range strings.Split(params, ",") {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				continue
			}

			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}

			args[key] = strings.TrimSpace(value)
		}

		return args
	}

	def, ok := positionalDefaults[toolName]
	if !ok {
		return map[string]string{KeyInput: params}
	}

	args := make(map[string]string, len(def.extra)+1)
	for k, v := range def.extra {
		args[k] = v
	}

	args[def.key] = params

	return args
}

// PositionalKey returns the key ParseParameters uses for a bare positional
// argument of the named tool.
func PositionalKey(toolName string) string {
	if def, ok := positionalDefaults[toolName]; ok {
		return def.key
	}

	return KeyInput
}
