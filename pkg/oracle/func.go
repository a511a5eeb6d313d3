/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: func.go
Description: In-process oracle adapter for the Arvada grammar miner. Wraps a plain Go
predicate as an Oracle, used by the evaluation utility, the demo harness, and tests
where spawning an external checker per probe would be wasteful.
*/

package oracle

import (
	"context"
	"sync"

	"github.com/rifatarefin/arvada/pkg/interfaces"
)

// FuncOracle adapts a Go predicate to the Oracle interface
type FuncOracle struct {
	fn func(string) bool

	mu    sync.Mutex
	stats interfaces.OracleStats
}

// NewFuncOracle wraps the given predicate
func NewFuncOracle(fn func(string) bool) *FuncOracle {
	return &FuncOracle{fn: fn}
}

// IsValid evaluates the predicate directly
func (o *FuncOracle) IsValid(_ context.Context, input string) (bool, error) {
	valid := o.fn(input)
	o.mu.Lock()
	o.stats.Calls++
	o.stats.RealCalls++
	if valid {
		o.stats.Accepted++
	} else {
		o.stats.Rejected++
	}
	o.mu.Unlock()
	return valid, nil
}

// Stats returns cumulative invocation counters
func (o *FuncOracle) Stats() interfaces.OracleStats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}
