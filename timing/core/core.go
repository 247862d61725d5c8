// Package core provides the cycle-accurate processor core model.
// It wraps the pipeline implementation to provide a high-level interface.
package core

import (
	"github.com/archsim/oosim/timing/pipeline"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of dynamic instructions processed.
	Instructions uint64
}

// IPC returns the instructions per cycle.
func (s Stats) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Instructions) / float64(s.Cycles)
}

// Core represents one simulated out-of-order processor core.
type Core struct {
	// Pipeline is the underlying nine-stage engine.
	Pipeline *pipeline.Pipeline
}

// NewCore creates a Core with the given configuration and trace source.
func NewCore(cfg pipeline.Config, src pipeline.InstructionSource, opts ...pipeline.Option) *Core {
	return &Core{
		Pipeline: pipeline.New(cfg, src, opts...),
	}
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() {
	c.Pipeline.Tick()
}

// Done reports whether the trace is exhausted and the pipeline has drained.
func (c *Core) Done() bool {
	return c.Pipeline.Done()
}

// Run executes the core until the pipeline drains.
// Returns the final statistics.
func (c *Core) Run() Stats {
	c.Pipeline.Run()
	return c.Stats()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	ps := c.Pipeline.Stats()
	return Stats{
		Cycles:       ps.Cycles,
		Instructions: ps.Instructions,
	}
}
