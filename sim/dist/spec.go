package dist

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Spec names a distribution family and its parameters.
// For the table family, Params maps each value (as a decimal string) to its
// probability.
type Spec struct {
	Type   string             `yaml:"type" json:"type"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

// String renders the spec in the form accepted by ParseSpec, with parameters
// sorted by name.
func (s Spec) String() string {
	if len(s.Params) == 0 {
		return s.Type
	}
	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strconv.FormatFloat(s.Params[k], 'g', -1, 64))
	}
	return s.Type + ":" + strings.Join(parts, ",")
}

// ParseSpec parses the compact CLI form "family:name=value,name=value",
// e.g. "exponential:rate=2" or "table:1=0.25,3=0.75".
// Only syntax is checked here; parameter domains are checked by New.
func ParseSpec(text string) (Spec, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Spec{}, fmt.Errorf("%w: empty distribution", ErrInvalidSpec)
	}
	name, rest, hasParams := strings.Cut(text, ":")
	spec := Spec{Type: strings.TrimSpace(name), Params: map[string]float64{}}
	if !hasParams || strings.TrimSpace(rest) == "" {
		return spec, nil
	}
	for _, pair := range strings.Split(rest, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return Spec{}, fmt.Errorf("%w: %q: malformed parameter %q, want name=value", ErrInvalidSpec, text, pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: %q: parameter %q: %v", ErrInvalidSpec, text, key, err)
		}
		if _, dup := spec.Params[key]; dup {
			return Spec{}, fmt.Errorf("%w: %q: duplicate parameter %q", ErrInvalidSpec, text, key)
		}
		spec.Params[key] = v
	}
	return spec, nil
}

// requireExactly checks that params holds exactly the named keys, all finite.
func requireExactly(f Family, params map[string]float64, keys ...string) error {
	for _, k := range keys {
		v, ok := params[k]
		if !ok {
			return specErrorf(f, "requires parameter %q", k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return specErrorf(f, "parameter %q must be finite, got %v", k, v)
		}
	}
	if len(params) != len(keys) {
		want := make(map[string]bool, len(keys))
		for _, k := range keys {
			want[k] = true
		}
		for k := range params {
			if !want[k] {
				return specErrorf(f, "unknown parameter %q; want %s", k, strings.Join(keys, ", "))
			}
		}
	}
	return nil
}

func requirePositive(f Family, name string, v float64) error {
	if v <= 0 {
		return specErrorf(f, "%s must be positive, got %v", name, v)
	}
	return nil
}

// requireFiniteMax checks that the largest value a sampler can return is finite.
func requireFiniteMax(f Family, max float64) error {
	if math.IsNaN(max) || math.IsInf(max, 0) {
		return domainErrorf(f, "samples can overflow float64")
	}
	return nil
}

func requireProbability(f Family, name string, v float64) error {
	if v < 0 || v > 1 {
		return specErrorf(f, "%s must be in [0, 1], got %v", name, v)
	}
	return nil
}

// requireCount checks v is a non-negative integer and returns it as an int.
func requireCount(f Family, name string, v float64) (int, error) {
	if v < 0 || v != math.Trunc(v) {
		return 0, specErrorf(f, "%s must be a non-negative integer, got %v", name, v)
	}
	if v > math.MaxInt32 {
		return 0, specErrorf(f, "%s too large, got %v", name, v)
	}
	return int(v), nil
}
