package resolver

import (
	"strconv"
	"strings"

	"harness/internal/harnesserr"
)

// Resolve parses and substitutes every "${...}" occurrence in src against
// lookup, returning the fully-substituted string plus the side-list of
// observed (service, property) pairs. A missing service or unknown
// property is a configuration error carrying the byte offset of the
// offending reference (fatal at parse/validation time, never at runtime).
// Substitution is non-recursive: resolved values are not re-scanned.
func Resolve(src string, mode Mode, lookup Lookup) (Result, error) {
	occs := scan(src)
	if len(occs) == 0 {
		return Result{Value: src}, nil
	}

	var b strings.Builder
	var observed []ObservedRef
	last := 0

	for _, occ := range occs {
		ref, err := parseExpr(occ.raw, occ.offset)
		if err != nil {
			return Result{}, err
		}

		value, err := evaluate(ref, mode, lookup)
		if err != nil {
			return Result{}, err
		}

		if ref.Kind == KindService {
			observed = append(observed, ObservedRef{
				Service:  ref.ServiceName,
				Property: propertyKey(ref.Property),
			})
		}

		b.WriteString(src[last:occ.offset])
		b.WriteString(value)
		last = occ.end
	}
	b.WriteString(src[last:])

	return Result{Value: b.String(), Observed: observed}, nil
}

func propertyKey(p Property) string {
	if p.Arg == "" {
		return p.Name
	}
	return p.Name + "[" + p.Arg + "]"
}

func evaluate(ref Reference, mode Mode, lookup Lookup) (string, error) {
	switch ref.Kind {
	case KindEnv:
		return evaluateEnv(ref, mode, lookup)
	case KindService:
		return evaluateService(ref, lookup)
	default:
		return "", harnesserr.NewConfigErrorAt("unknown reference kind", ref.Offset)
	}
}

func evaluateEnv(ref Reference, mode Mode, lookup Lookup) (string, error) {
	if v, ok := lookup.LookupEnv(ref.EnvName); ok {
		return v, nil
	}
	if ref.HasDefault {
		return ref.EnvDefault, nil
	}
	if mode == ModeLax {
		return "", nil
	}
	return "", harnesserr.NewConfigErrorAt("environment variable not set: "+ref.EnvName, ref.Offset)
}

func evaluateService(ref Reference, lookup Lookup) (string, error) {
	info, ok := lookup.LookupService(ref.ServiceName)
	if !ok {
		return "", harnesserr.NewConfigErrorAt("unknown service: "+ref.ServiceName, ref.Offset)
	}

	switch ref.Property.Name {
	case PropertyIP:
		return info.IP, nil
	case PropertyPort:
		return strconv.Itoa(info.Port), nil
	case PropertyHost:
		return info.Host, nil
	case PropertyEndpoint:
		v, ok := info.Endpoints[ref.Property.Arg]
		if !ok {
			return "", harnesserr.NewConfigErrorAt(
				"unknown endpoint \""+ref.Property.Arg+"\" on service "+ref.ServiceName, ref.PropOffset)
		}
		return v, nil
	case PropertyEnv:
		v, ok := info.Env[ref.Property.Arg]
		if !ok {
			return "", harnesserr.NewConfigErrorAt(
				"unknown env \""+ref.Property.Arg+"\" on service "+ref.ServiceName, ref.PropOffset)
		}
		return v, nil
	default:
		return "", harnesserr.NewConfigErrorAt("unknown property: "+ref.Property.Name, ref.PropOffset)
	}
}
