package dist

import (
	"math"
	"math/rand"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
)

// BernoulliSampler returns 1 with probability p, else 0.
type BernoulliSampler struct {
	p float64
}

func newBernoulli(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Bernoulli, p, "p"); err != nil {
		return nil, err
	}
	if err := requireProbability(Bernoulli, "p", p["p"]); err != nil {
		return nil, err
	}
	return &BernoulliSampler{p: p["p"]}, nil
}

func (s *BernoulliSampler) Family() Family { return Bernoulli }

func (s *BernoulliSampler) Sample(rng *rand.Rand) float64 {
	if rng.Float64() < s.p {
		return 1
	}
	return 0
}

// BinomialSampler counts successes in n Bernoulli(p) trials.
type BinomialSampler struct {
	n int
	p float64
}

func newBinomial(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Binomial, p, "n", "p"); err != nil {
		return nil, err
	}
	n, err := requireCount(Binomial, "n", p["n"])
	if err != nil {
		return nil, err
	}
	if err := requireProbability(Binomial, "p", p["p"]); err != nil {
		return nil, err
	}
	return &BinomialSampler{n: n, p: p["p"]}, nil
}

func (s *BinomialSampler) Family() Family { return Binomial }

func (s *BinomialSampler) Sample(rng *rand.Rand) float64 {
	successes := 0
	for i := 0; i < s.n; i++ {
		if rng.Float64() < s.p {
			successes++
		}
	}
	return float64(successes)
}

// GeometricSampler counts failures before the first success:
// X = floor(ln U / ln(1-p)).
type GeometricSampler struct {
	p float64
}

func newGeometric(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Geometric, p, "p"); err != nil {
		return nil, err
	}
	if v := p["p"]; v <= 0 || v > 1 {
		return nil, specErrorf(Geometric, "p must be in (0, 1], got %v", v)
	}
	return &GeometricSampler{p: p["p"]}, nil
}

func (s *GeometricSampler) Family() Family { return Geometric }

func (s *GeometricSampler) Sample(rng *rand.Rand) float64 {
	return geometricRand(rng, s.p)
}

func geometricRand(rng *rand.Rand, p float64) float64 {
	if p == 1 {
		return 0
	}
	u := 1 - rng.Float64() // (0, 1]
	return math.Floor(math.Log(u) / math.Log1p(-p))
}

// NegativeBinomialSampler counts failures before the r-th success as a sum of
// r geometric draws.
type NegativeBinomialSampler struct {
	r int
	p float64
}

func newNegativeBinomial(p map[string]float64) (Sampler, error) {
	if err := requireExactly(NegativeBinomial, p, "r", "p"); err != nil {
		return nil, err
	}
	r, err := requireCount(NegativeBinomial, "r", p["r"])
	if err != nil {
		return nil, err
	}
	if r < 1 {
		return nil, specErrorf(NegativeBinomial, "r must be at least 1, got %d", r)
	}
	if v := p["p"]; v <= 0 || v > 1 {
		return nil, specErrorf(NegativeBinomial, "p must be in (0, 1], got %v", v)
	}
	return &NegativeBinomialSampler{r: r, p: p["p"]}, nil
}

func (s *NegativeBinomialSampler) Family() Family { return NegativeBinomial }

func (s *NegativeBinomialSampler) Sample(rng *rand.Rand) float64 {
	failures := 0.0
	for i := 0; i < s.r; i++ {
		failures += geometricRand(rng, s.p)
	}
	return failures
}

// HypergeometricSampler counts successes in draws taken without replacement
// from a population holding the given number of successes.
type HypergeometricSampler struct {
	population int
	successes  int
	draws      int
}

func newHypergeometric(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Hypergeometric, p, "population", "successes", "draws"); err != nil {
		return nil, err
	}
	population, err := requireCount(Hypergeometric, "population", p["population"])
	if err != nil {
		return nil, err
	}
	successes, err := requireCount(Hypergeometric, "successes", p["successes"])
	if err != nil {
		return nil, err
	}
	draws, err := requireCount(Hypergeometric, "draws", p["draws"])
	if err != nil {
		return nil, err
	}
	if population < successes {
		return nil, specErrorf(Hypergeometric, "population %d smaller than successes %d", population, successes)
	}
	if population < draws {
		return nil, specErrorf(Hypergeometric, "population %d smaller than draws %d", population, draws)
	}
	return &HypergeometricSampler{population: population, successes: successes, draws: draws}, nil
}

func (s *HypergeometricSampler) Family() Family { return Hypergeometric }

func (s *HypergeometricSampler) Sample(rng *rand.Rand) float64 {
	remaining, good := s.population, s.successes
	hits := 0
	for i := 0; i < s.draws; i++ {
		if rng.Intn(remaining) < good {
			hits++
			good--
		}
		remaining--
	}
	return float64(hits)
}

// PoissonSampler counts unit-rate exponential partial sums that stay within
// lambda, i.e. arrivals of a rate-lambda Poisson process in unit time.
type PoissonSampler struct {
	lambda float64
}

func newPoisson(p map[string]float64) (Sampler, error) {
	if err := requireExactly(Poisson, p, "lambda"); err != nil {
		return nil, err
	}
	if err := requirePositive(Poisson, "lambda", p["lambda"]); err != nil {
		return nil, err
	}
	return &PoissonSampler{lambda: p["lambda"]}, nil
}

func (s *PoissonSampler) Family() Family { return Poisson }

func (s *PoissonSampler) Sample(rng *rand.Rand) float64 {
	n := 0
	for t := rng.ExpFloat64(); t <= s.lambda; t += rng.ExpFloat64() {
		n++
	}
	return float64(n)
}

// TableSampler samples a finite value table using inverse CDF via binary
// search.
type TableSampler struct {
	values []float64 // sorted ascending
	cdf    []float64 // cumulative probabilities (same length as values)
}

func newTable(p map[string]float64) (Sampler, error) {
	if len(p) == 0 {
		return nil, specErrorf(Table, "requires at least one value=probability entry")
	}
	pdf := make(map[float64]float64, len(p))
	for key, prob := range p {
		v, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return nil, specErrorf(Table, "value %q is not a number", key)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, specErrorf(Table, "value %v must be finite and non-negative", v)
		}
		if math.IsNaN(prob) || math.IsInf(prob, 0) || prob < 0 {
			return nil, specErrorf(Table, "probability for %v must be finite and non-negative, got %v", v, prob)
		}
		if _, dup := pdf[v]; dup {
			return nil, specErrorf(Table, "value %v listed twice", v)
		}
		pdf[v] = prob
	}
	return NewTableSampler(pdf)
}

// NewTableSampler builds a sampler from a value -> probability map.
// Probabilities are normalized if they do not sum to 1.
func NewTableSampler(pdf map[float64]float64) (*TableSampler, error) {
	values := make([]float64, 0, len(pdf))
	total := 0.0
	for v, prob := range pdf {
		values = append(values, v)
		total += prob
	}
	if total <= 0 {
		return nil, specErrorf(Table, "probabilities must have a positive total")
	}
	if math.Abs(total-1) > 1e-9 {
		logrus.Warnf("table probabilities sum to %g; normalizing", total)
	}
	sort.Float64s(values)

	s := &TableSampler{
		values: make([]float64, 0, len(values)),
		cdf:    make([]float64, 0, len(values)),
	}
	cumulative := 0.0
	for _, v := range values {
		prob := pdf[v]
		if prob == 0 {
			continue
		}
		cumulative += prob / total
		s.values = append(s.values, v)
		s.cdf = append(s.cdf, cumulative)
	}
	// Ensure last CDF entry is exactly 1.0
	s.cdf[len(s.cdf)-1] = 1.0
	return s, nil
}

func (s *TableSampler) Family() Family { return Table }

func (s *TableSampler) Sample(rng *rand.Rand) float64 {
	if len(s.values) == 1 {
		return s.values[0]
	}
	u := rng.Float64()
	idx := sort.SearchFloat64s(s.cdf, u)
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	}
	return s.values[idx]
}
