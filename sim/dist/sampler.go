package dist

import (
	"fmt"
	"math"
	"math/rand"
)

// validationSeed seeds the throwaway stream used for the construction-time
// validation sample. It never touches a run's own streams.
const validationSeed = 0x5eed

// Sampler draws non-negative real samples from one distribution.
type Sampler interface {
	// Family returns the distribution family this sampler draws from.
	Family() Family
	// Sample returns one draw, advancing rng deterministically.
	Sample(rng *rand.Rand) float64
}

// New validates spec and returns the Sampler for its family.
// All parameter errors wrap ErrInvalidSpec. Parameters whose samples can
// overflow float64 wrap ErrSamplerDomain, as does an undefined result of the
// single validation sample drawn from a private stream.
func New(spec Spec) (Sampler, error) {
	family, err := ParseFamily(spec.Type)
	if err != nil {
		return nil, err
	}
	s, err := newSampler(family, spec.Params)
	if err != nil {
		return nil, err
	}
	probe := s.Sample(rand.New(rand.NewSource(validationSeed)))
	if math.IsNaN(probe) || math.IsInf(probe, 0) || probe < 0 {
		return nil, fmt.Errorf("%w: %s: validation sample %v is not a finite non-negative value", ErrSamplerDomain, spec, probe)
	}
	return s, nil
}

// MustNew is New for statically known specs; it panics on error.
func MustNew(spec Spec) Sampler {
	s, err := New(spec)
	if err != nil {
		panic(err)
	}
	return s
}

func newSampler(f Family, p map[string]float64) (Sampler, error) {
	switch f {
	case Bernoulli:
		return newBernoulli(p)
	case Beta:
		return newBeta(p)
	case Binomial:
		return newBinomial(p)
	case ChiSquare:
		return newChiSquare(p)
	case Erlang:
		return newErlang(p)
	case Exponential:
		return newExponential(p)
	case F:
		return newF(p)
	case Gamma:
		return newGamma(p)
	case Geometric:
		return newGeometric(p)
	case Hypergeometric:
		return newHypergeometric(p)
	case Lognormal:
		return newLognormal(p)
	case NegativeBinomial:
		return newNegativeBinomial(p)
	case Pareto:
		return newPareto(p)
	case Poisson:
		return newPoisson(p)
	case Table:
		return newTable(p)
	case Triangular:
		return newTriangular(p)
	case Uniform:
		return newUniform(p)
	case Weibull:
		return newWeibull(p)
	default:
		return nil, fmt.Errorf("%w: unsupported family %v", ErrInvalidSpec, f)
	}
}
