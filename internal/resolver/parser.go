package resolver

import (
	"strings"

	"harness/internal/harnesserr"
)

// occurrence is a raw "${...}" match found by scan, before its interior is
// parsed into a Reference.
type occurrence struct {
	raw    string // interior text, without the "${" / "}" delimiters
	offset int    // offset of the leading "$" in the source string
	end    int    // offset one past the closing "}"
}

// scan finds every top-level "${...}" span in src. Resolution is
// non-recursive (spec §4.F), and the grammar never nests braces inside an
// expr, so a simple "${" ... first "}" scan is exact.
func scan(src string) []occurrence {
	var out []occurrence
	i := 0
	for i < len(src) {
		start := strings.Index(src[i:], "${")
		if start < 0 {
			break
		}
		start += i
		closeIdx := strings.IndexByte(src[start+2:], '}')
		if closeIdx < 0 {
			break
		}
		closeIdx += start + 2
		out = append(out, occurrence{
			raw:    src[start+2 : closeIdx],
			offset: start,
			end:    closeIdx + 1,
		})
		i = closeIdx + 1
	}
	return out
}

// parseExpr parses the interior of one "${...}" occurrence into a
// Reference, per the grammar in §4.F. offset is the occurrence's position
// in the enclosing source string, used to produce a precise ConfigError.
func parseExpr(raw string, offset int) (Reference, error) {
	if raw == "" {
		return Reference{}, harnesserr.NewConfigErrorAt("empty reference", offset)
	}

	first := rune(raw[0])
	if first >= 'A' && first <= 'Z' || first == '_' {
		return parseEnvRef(raw, offset)
	}
	if first >= 'a' && first <= 'z' {
		return parseServiceRef(raw, offset)
	}
	return Reference{}, harnesserr.NewConfigErrorAt("reference must start with a letter", offset)
}

func parseEnvRef(raw string, offset int) (Reference, error) {
	name := raw
	def := ""
	hasDefault := false
	if idx := strings.Index(raw, ":-"); idx >= 0 {
		name = raw[:idx]
		def = raw[idx+2:]
		hasDefault = true
	}
	if name == "" {
		return Reference{}, harnesserr.NewConfigErrorAt("missing environment variable name", offset)
	}
	for _, c := range name {
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			return Reference{}, harnesserr.NewConfigErrorAt("invalid environment variable name: "+name, offset)
		}
	}
	return Reference{
		Kind:       KindEnv,
		Raw:        "${" + raw + "}",
		Offset:     offset,
		EnvName:    name,
		EnvDefault: def,
		HasDefault: hasDefault,
	}, nil
}

func parseServiceRef(raw string, offset int) (Reference, error) {
	dot := strings.IndexByte(raw, '.')
	if dot < 0 {
		return Reference{}, harnesserr.NewConfigErrorAt("service reference missing \".property\": "+raw, offset)
	}
	service := raw[:dot]
	propStr := raw[dot+1:]
	if service == "" {
		return Reference{}, harnesserr.NewConfigErrorAt("missing service name", offset)
	}

	// Point property errors at the property substring itself (e.g. the
	// offset of ".unknown_prop"), not the start of the whole "${...}".
	propOffset := offset + len("${") + dot
	prop, err := parseProperty(propStr, propOffset)
	if err != nil {
		return Reference{}, err
	}

	return Reference{
		Kind:        KindService,
		Raw:         "${" + raw + "}",
		Offset:      offset,
		ServiceName: service,
		Property:    prop,
		PropOffset:  propOffset,
	}, nil
}

func parseProperty(propStr string, offset int) (Property, error) {
	switch propStr {
	case PropertyIP, PropertyPort, PropertyHost:
		return Property{Name: propStr}, nil
	}

	for _, name := range []string{PropertyEndpoint, PropertyEnv} {
		prefix := name + "["
		if strings.HasPrefix(propStr, prefix) && strings.HasSuffix(propStr, "]") {
			arg := propStr[len(prefix) : len(propStr)-1]
			if arg == "" {
				return Property{}, harnesserr.NewConfigErrorAt("empty "+name+"[] argument", offset)
			}
			return Property{Name: name, Arg: arg}, nil
		}
	}

	return Property{}, harnesserr.NewConfigErrorAt("unknown property: "+propStr, offset)
}

// ParseAll parses every "${...}" occurrence in src and returns the
// References in source order. It does not evaluate them against live
// state — see Resolve.
func ParseAll(src string) ([]Reference, error) {
	occs := scan(src)
	refs := make([]Reference, 0, len(occs))
	for _, occ := range occs {
		ref, err := parseExpr(occ.raw, occ.offset)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
