package stats

import (
	"errors"
	"fmt"
)

// ErrUnstable is returned by ErlangC when the offered load reaches capacity.
var ErrUnstable = errors.New("queue is unstable: utilization >= 1")

// Analytic holds the steady-state M/M/c reference values.
type Analytic struct {
	Rho   float64 `json:"rho"`    // per-server utilization lambda/(c*mu)
	PWait float64 `json:"p_wait"` // probability an arrival waits
	Lq    float64 `json:"lq"`
	Wq    float64 `json:"wq"`
	L     float64 `json:"l"`
	W     float64 `json:"w"`
}

// ErlangC returns the M/M/c steady state for arrival rate lambda, per-server
// service rate mu and c servers.
func ErlangC(lambda, mu float64, c int) (Analytic, error) {
	if lambda <= 0 || mu <= 0 || c <= 0 {
		return Analytic{}, fmt.Errorf("ErlangC: lambda, mu and c must be positive, got %g, %g, %d", lambda, mu, c)
	}
	a := lambda / mu
	rho := a / float64(c)
	if rho >= 1 {
		return Analytic{}, fmt.Errorf("%w: rho=%g", ErrUnstable, rho)
	}

	// sum_{k<c} a^k/k!, with term carried incrementally
	term, sum := 1.0, 0.0
	for k := 0; k < c; k++ {
		sum += term
		term *= a / float64(k+1)
	}
	// term is now a^c/c!
	tail := term / (1 - rho)
	pWait := tail / (sum + tail)

	lq := pWait * rho / (1 - rho)
	wq := lq / lambda
	w := wq + 1/mu
	return Analytic{
		Rho:   rho,
		PWait: pWait,
		Lq:    lq,
		Wq:    wq,
		L:     lambda * w,
		W:     w,
	}, nil
}
