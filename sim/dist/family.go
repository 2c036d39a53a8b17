// Package dist provides the random-variate samplers that drive a queue
// simulation: one Sampler for interarrival times and one for service times.
//
// The set of families is closed. A Spec names a family and its parameters;
// New validates the parameters once and returns a Sampler whose Sample method
// is pure arithmetic over a caller-supplied *rand.Rand. Families without a
// closed-form generator are built from a standard primitive (uniform,
// standard exponential, standard normal) by an exact algebraic transform.
package dist

import (
	"fmt"
	"strings"
)

// Family identifies a distribution family.
type Family int

const (
	Bernoulli Family = iota + 1
	Beta
	Binomial
	ChiSquare
	Erlang
	Exponential
	F
	Gamma
	Geometric
	Hypergeometric
	Lognormal
	NegativeBinomial
	Pareto
	Poisson
	Table
	Triangular
	Uniform
	Weibull
)

var familyNames = map[Family]string{
	Bernoulli:        "bernoulli",
	Beta:             "beta",
	Binomial:         "binomial",
	ChiSquare:        "chisquare",
	Erlang:           "erlang",
	Exponential:      "exponential",
	F:                "f",
	Gamma:            "gamma",
	Geometric:        "geometric",
	Hypergeometric:   "hypergeometric",
	Lognormal:        "lognormal",
	NegativeBinomial: "negativebinomial",
	Pareto:           "pareto",
	Poisson:          "poisson",
	Table:            "table",
	Triangular:       "triangular",
	Uniform:          "uniform",
	Weibull:          "weibull",
}

var familiesByName = func() map[string]Family {
	m := make(map[string]Family, len(familyNames))
	for f, name := range familyNames {
		m[name] = f
	}
	return m
}()

// Families returns every supported family in declaration order.
func Families() []Family {
	out := make([]Family, 0, len(familyNames))
	for f := Bernoulli; f <= Weibull; f++ {
		out = append(out, f)
	}
	return out
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// ParseFamily resolves a family name. Matching ignores case, '_', '-' and
// spaces, so "Chi-Square", "chi_square" and "chisquare" are equivalent.
func ParseFamily(name string) (Family, error) {
	key := strings.ToLower(name)
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	if f, ok := familiesByName[key]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: unknown distribution %q; valid: %s", ErrInvalidSpec, name, strings.Join(validNames(), ", "))
}

func validNames() []string {
	names := make([]string, 0, len(familyNames))
	for _, f := range Families() {
		names = append(names, f.String())
	}
	return names
}
