package dist

import (
	"math"
	"math/rand"
)

// Bounds on the raw variates drawn from *rand.Rand, used to reject parameters
// whose transforms overflow.
const (
	// minUnitOpen is the smallest value of 1 - rng.Float64().
	minUnitOpen = 0x1p-53
	// maxExpVariate bounds rng.ExpFloat64() for any non-zero tail draw.
	maxExpVariate = 52.0
	// maxNormVariate bounds |rng.NormFloat64()| for any non-zero tail draw.
	maxNormVariate = 17.0
)

// ExponentialSampler scales the standard exponential: X = E / rate.
type ExponentialSampler struct {
	rate float64
}

func newExponential(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Exponential, p, "rate"); err != nil {
		return nil, err
	}
	if err := requirePositive(Exponential, "rate", p["rate"]); err != nil {
		return nil, err
	}
	if err := requireFiniteMax(Exponential, maxExpVariate/p["rate"]); err != nil {
		return nil, err
	}
	return &ExponentialSampler{rate: p["rate"]}, nil
}

func (s *ExponentialSampler) Family() Family { return Exponential }

func (s *ExponentialSampler) Sample(rng *rand.Rand) float64 {
	return rng.ExpFloat64() / s.rate
}

// ErlangSampler sums k standard exponentials and scales by 1/rate.
type ErlangSampler struct {
	k    int
	rate float64
}

func newErlang(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Erlang, p, "k", "rate"); err != nil {
		return nil, err
	}
	k, err := requireCount(Erlang, "k", p["k"])
	if err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, specErrorf(Erlang, "k must be at least 1, got %d", k)
	}
	if err := requirePositive(Erlang, "rate", p["rate"]); err != nil {
		return nil, err
	}
	return &ErlangSampler{k: k, rate: p["rate"]}, nil
}

func (s *ErlangSampler) Family() Family { return Erlang }

func (s *ErlangSampler) Sample(rng *rand.Rand) float64 {
	sum := 0.0
	for i := 0; i < s.k; i++ {
		sum += rng.ExpFloat64()
	}
	return sum / s.rate
}

// GammaSampler draws Gamma(shape, scale) with Marsaglia-Tsang.
type GammaSampler struct {
	shape float64
	scale float64
}

func newGamma(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Gamma, p, "shape", "scale"); err != nil {
		return nil, err
	}
	if err := requirePositive(Gamma, "shape", p["shape"]); err != nil {
		return nil, err
	}
	if err := requirePositive(Gamma, "scale", p["scale"]); err != nil {
		return nil, err
	}
	return &GammaSampler{shape: p["shape"], scale: p["scale"]}, nil
}

func (s *GammaSampler) Family() Family { return Gamma }

func (s *GammaSampler) Sample(rng *rand.Rand) float64 {
	return gammaRand(rng, s.shape, s.scale)
}

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape >= 1: direct method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		// Squeeze test
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// ChiSquareSampler uses chi2(k) = Gamma(k/2, 2).
type ChiSquareSampler struct {
	k float64
}

func newChiSquare(p map[string]float64) (Sampler, error) {
	if err := requireExactly(ChiSquare, p, "k"); err != nil {
		return nil, err
	}
	if err := requirePositive(ChiSquare, "k", p["k"]); err != nil {
		return nil, err
	}
	return &ChiSquareSampler{k: p["k"]}, nil
}

func (s *ChiSquareSampler) Family() Family { return ChiSquare }

func (s *ChiSquareSampler) Sample(rng *rand.Rand) float64 {
	return gammaRand(rng, s.k/2, 2)
}

// BetaSampler uses X = Ga / (Ga + Gb) with unit-scale gamma draws.
type BetaSampler struct {
	alpha float64
	beta  float64
}

func newBeta(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Beta, p, "alpha", "beta"); err != nil {
		return nil, err
	}
	if err := requirePositive(Beta, "alpha", p["alpha"]); err != nil {
		return nil, err
	}
	if err := requirePositive(Beta, "beta", p["beta"]); err != nil {
		return nil, err
	}
	return &BetaSampler{alpha: p["alpha"], beta: p["beta"]}, nil
}

func (s *BetaSampler) Family() Family { return Beta }

func (s *BetaSampler) Sample(rng *rand.Rand) float64 {
	x := gammaRand(rng, s.alpha, 1)
	y := gammaRand(rng, s.beta, 1)
	if x+y == 0 {
		// both draws underflowed; only reachable with very small shapes
		return 0
	}
	return x / (x + y)
}

// FSampler uses F = (X1/d1) / (X2/d2) with Xi ~ chi2(di).
type FSampler struct {
	d1 float64
	d2 float64
}

func newF(p map[string]float64) (Sampler, error) {
	if err := requireExactly(F, p, "d1", "d2"); err != nil {
		return nil, err
	}
	if err := requirePositive(F, "d1", p["d1"]); err != nil {
		return nil, err
	}
	if err := requirePositive(F, "d2", p["d2"]); err != nil {
		return nil, err
	}
	return &FSampler{d1: p["d1"], d2: p["d2"]}, nil
}

func (s *FSampler) Family() Family { return F }

func (s *FSampler) Sample(rng *rand.Rand) float64 {
	x1 := gammaRand(rng, s.d1/2, 2)
	x2 := gammaRand(rng, s.d2/2, 2)
	if x2 == 0 {
		x2 = math.SmallestNonzeroFloat64
	}
	return (x1 / s.d1) / (x2 / s.d2)
}

// LognormalSampler exponentiates a normal: X = exp(mu + sigma*Z).
type LognormalSampler struct {
	mu    float64
	sigma float64
}

func newLognormal(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Lognormal, p, "mu", "sigma"); err != nil {
		return nil, err
	}
	if p["sigma"] < 0 {
		return nil, specErrorf(Lognormal, "sigma must be non-negative, got %v", p["sigma"])
	}
	if err := requireFiniteMax(Lognormal, math.Exp(p["mu"]+p["sigma"]*maxNormVariate)); err != nil {
		return nil, err
	}
	return &LognormalSampler{mu: p["mu"], sigma: p["sigma"]}, nil
}

func (s *LognormalSampler) Family() Family { return Lognormal }

func (s *LognormalSampler) Sample(rng *rand.Rand) float64 {
	return math.Exp(s.mu + s.sigma*rng.NormFloat64())
}

// ParetoSampler uses the inverse CDF: X = xm / U^(1/alpha).
type ParetoSampler struct {
	alpha float64 // shape
	xm    float64 // scale (minimum)
}

func newPareto(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Pareto, p, "alpha", "xm"); err != nil {
		return nil, err
	}
	if err := requirePositive(Pareto, "alpha", p["alpha"]); err != nil {
		return nil, err
	}
	if err := requirePositive(Pareto, "xm", p["xm"]); err != nil {
		return nil, err
	}
	if err := requireFiniteMax(Pareto, p["xm"]/math.Pow(minUnitOpen, 1.0/p["alpha"])); err != nil {
		return nil, err
	}
	return &ParetoSampler{alpha: p["alpha"], xm: p["xm"]}, nil
}

func (s *ParetoSampler) Family() Family { return Pareto }

func (s *ParetoSampler) Sample(rng *rand.Rand) float64 {
	u := 1 - rng.Float64() // (0, 1]
	return s.xm / math.Pow(u, 1.0/s.alpha)
}

// TriangularSampler uses the piecewise inverse CDF over [min, max] peaking at mode.
type TriangularSampler struct {
	min, mode, max float64
}

func newTriangular(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Triangular, p, "min", "mode", "max"); err != nil {
		return nil, err
	}
	lo, mode, hi := p["min"], p["mode"], p["max"]
	if lo < 0 {
		return nil, specErrorf(Triangular, "min must be non-negative, got %v", lo)
	}
	if !(lo < hi) {
		return nil, specErrorf(Triangular, "min must be below max, got [%v, %v]", lo, hi)
	}
	if mode < lo || mode > hi {
		return nil, specErrorf(Triangular, "mode %v outside [%v, %v]", mode, lo, hi)
	}
	return &TriangularSampler{min: lo, mode: mode, max: hi}, nil
}

func (s *TriangularSampler) Family() Family { return Triangular }

func (s *TriangularSampler) Sample(rng *rand.Rand) float64 {
	u := rng.Float64()
	width := s.max - s.min
	fc := (s.mode - s.min) / width
	if u < fc {
		return s.min + math.Sqrt(u*width*(s.mode-s.min))
	}
	return s.max - math.Sqrt((1-u)*width*(s.max-s.mode))
}

// UniformSampler shifts and scales the standard uniform: X = min + (max-min)U.
type UniformSampler struct {
	min, max float64
}

func newUniform(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Uniform, p, "min", "max"); err != nil {
		return nil, err
	}
	lo, hi := p["min"], p["max"]
	if lo < 0 {
		return nil, specErrorf(Uniform, "min must be non-negative, got %v", lo)
	}
	if !(lo < hi) {
		return nil, specErrorf(Uniform, "min must be below max, got [%v, %v]", lo, hi)
	}
	return &UniformSampler{min: lo, max: hi}, nil
}

func (s *UniformSampler) Family() Family { return Uniform }

func (s *UniformSampler) Sample(rng *rand.Rand) float64 {
	return s.min + (s.max-s.min)*rng.Float64()
}

// WeibullSampler uses the inverse CDF: scale * (-ln U)^(1/shape).
type WeibullSampler struct {
	shape float64 // k
	scale float64 // lambda
}

func newWeibull(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Weibull, p, "shape", "scale"); err != nil {
		return nil, err
	}
	if err := requirePositive(Weibull, "shape", p["shape"]); err != nil {
		return nil, err
	}
	if err := requirePositive(Weibull, "scale", p["scale"]); err != nil {
		return nil, err
	}
	maxLog := -math.Log(math.SmallestNonzeroFloat64)
	if err := requireFiniteMax(Weibull, p["scale"]*math.Pow(maxLog, 1.0/p["shape"])); err != nil {
		return nil, err
	}
	return &WeibullSampler{shape: p["shape"], scale: p["scale"]}, nil
}

func (s *WeibullSampler) Family() Family { return Weibull }

func (s *WeibullSampler) Sample(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64 // prevent -ln(0) = +Inf
	}
	return s.scale * math.Pow(-math.Log(u), 1.0/s.shape)
}
