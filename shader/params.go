package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseParams parses a region's raw shader-parameter string (§3's
// "a list of shader-parameter strings", §4.B's "typed fields") into a
// Params map a shader's setup reads by name. The grammar is a flat
// whitespace-separated key=value list, the simplest shape that covers
// every field the built-in shaders actually read (floats, ints, bools)
// plus comma-separated triplets for the colour/vec3 fields §4.B also
// calls out. A token with no '=' or an empty key is a structured parse
// error per §4.B ("unknown fields fail the setup with a structured
// error") rather than a silently-dropped field.
func ParseParams(raw string) (Params, error) {
	out := make(Params)
	for _, tok := range strings.Fields(raw) {
		key, val, ok := strings.Cut(tok, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("shader: malformed parameter token %q", tok)
		}
		out[key] = parseValue(val)
	}
	return out, nil
}

// parseValue infers a token's type in the same order a reader would try
// them: bool keyword, comma triplet (vec3/colour), int, then float,
// falling back to the raw string for an enumerated token a shader's
// setup compares by name.
func parseValue(val string) any {
	switch val {
	case "true":
		return true
	case "false":
		return false
	}
	if strings.Contains(val, ",") {
		parts := strings.Split(val, ",")
		if len(parts) == 3 {
			var triplet [3]float64
			allNum := true
			for i, p := range parts {
				f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
				if err != nil {
					allNum = false
					break
				}
				triplet[i] = f
			}
			if allNum {
				return triplet
			}
		}
	}
	if i, err := strconv.Atoi(val); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f
	}
	return val
}
