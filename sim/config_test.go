package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/queue-sim/sim/dist"
)

func validConfig() Config {
	return Config{
		NumTasks:     10,
		NumServers:   2,
		Interarrival: dist.Spec{Type: "exponential", Params: map[string]float64{"rate": 1}},
		Service:      dist.Spec{Type: "exponential", Params: map[string]float64{"rate": 0.8}},
	}.WithSeed(42)
}

func TestConfig_Validate_NonPositiveCounts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero tasks", func(c *Config) { c.NumTasks = 0 }},
		{"negative tasks", func(c *Config) { c.NumTasks = -3 }},
		{"zero servers", func(c *Config) { c.NumServers = 0 }},
		{"negative servers", func(c *Config) { c.NumServers = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

			// THEN construction fails before any event exists
			s, err := NewSimulator(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, s)
		})
	}
}

func TestNewSimulator_InvalidDistribution_FailsAtConstruction(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		prefix  string
	}{
		{"unknown interarrival family", func(c *Config) { c.Interarrival = dist.Spec{Type: "cauchy"} }, dist.ErrInvalidSpec, "interarrival distribution"},
		{"service out of domain", func(c *Config) {
			c.Service = dist.Spec{Type: "bernoulli", Params: map[string]float64{"p": 2}}
		}, dist.ErrInvalidSpec, "service distribution"},
		{"undefined validation sample", func(c *Config) {
			c.Service = dist.Spec{Type: "lognormal", Params: map[string]float64{"mu": 900, "sigma": 0}}
		}, dist.ErrSamplerDomain, "service distribution"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			s, err := NewSimulator(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.prefix)
			assert.Nil(t, s)
		})
	}
}

func TestNewSimulatorFromSamplers_NilSampler_ReturnsError(t *testing.T) {
	_, err := NewSimulatorFromSamplers(validConfig(), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewSimulator_NoSeed_PicksAndReportsOne(t *testing.T) {
	cfg := validConfig()
	cfg.Seed = nil
	s, err := NewSimulator(cfg)
	require.NoError(t, err)

	// WHEN the reported seed is fed back in
	replay, err := NewSimulator(cfg.WithSeed(s.Seed()))
	require.NoError(t, err)

	// THEN both runs are identical
	assert.Equal(t, eventsOf(s.Run()), eventsOf(replay.Run()))
}
