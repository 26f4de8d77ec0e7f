package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"cnc-telemetry-backend/config"
	"cnc-telemetry-backend/internal/generator"
	"cnc-telemetry-backend/internal/model"
	"cnc-telemetry-backend/internal/store"
)

// Scheduler drives the telemetry streams. Each stream owns an independent
// periodic loop over the machine population; a failing or slow round in one
// stream never delays another.
type Scheduler struct {
	cfg   *config.Config
	store store.Store
	gen   *generator.Generator
}

// NewScheduler creates a scheduler over the given store and generator.
func NewScheduler(cfg *config.Config, st store.Store, gen *generator.Generator) *Scheduler {
	return &Scheduler{
		cfg:   cfg,
		store: st,
		gen:   gen,
	}
}

// machineIDs returns the configured population in insertion order.
func (s *Scheduler) machineIDs() []int64 {
	ids := make([]int64, s.cfg.Fleet.MachineCount)
	for i := range ids {
		ids[i] = s.cfg.Fleet.StartMachineID + int64(i)
	}
	return ids
}

// Provision inserts the static machine and axis rows. It runs before any
// stream starts and is idempotent, so a process restart re-runs it safely.
func (s *Scheduler) Provision(ctx context.Context) error {
	ids := s.machineIDs()

	for _, machineID := range ids {
		name := strconv.FormatInt(machineID, 10)
		if err := s.store.UpsertMachine(ctx, machineID, name, s.cfg.Fleet.ToolCapacity); err != nil {
			return fmt.Errorf("provision machines: %w", err)
		}
	}
	log.Printf("Provisioned machine rows for %d machines", len(ids))

	for _, machineID := range ids {
		for _, axisName := range model.AxisNames {
			err := s.store.UpsertAxis(ctx, machineID, axisName,
				s.cfg.Fleet.MaxAcceleration, s.cfg.Fleet.MaxVelocity)
			if err != nil {
				return fmt.Errorf("provision axes: %w", err)
			}
		}
	}
	log.Printf("Provisioned axis rows for %d machines", len(ids))

	return nil
}

// Run starts one goroutine per telemetry stream and blocks until every loop
// has observed cancellation and exited.
func (s *Scheduler) Run(ctx context.Context) {
	log.Println("Starting ingestion streams...")

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		s.runStream(ctx, "tool", s.cfg.Streams.ToolInterval, s.ToolRound)
	}()
	go func() {
		defer wg.Done()
		s.runStream(ctx, "tool_usage", s.cfg.Streams.ToolUsageInterval, s.ToolUsageRound)
	}()
	go func() {
		defer wg.Done()
		s.runAxisStream(ctx)
	}()

	wg.Wait()
	log.Println("All ingestion streams stopped.")
}

// runStream executes round immediately, then on a fixed delay: the timer is
// re-armed only after the round finishes, so an overrunning round starts the
// next one right away instead of compensating.
func (s *Scheduler) runStream(ctx context.Context, name string, interval time.Duration, round func(ctx context.Context)) {
	round(ctx)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("%s stream shutting down.", name)
			return
		case <-timer.C:
			round(ctx)
			timer.Reset(interval)
		}
	}
}

// ToolRound appends one tool sample per machine. A failed write is logged
// and skipped; the round always visits the full population.
func (s *Scheduler) ToolRound(ctx context.Context) {
	for _, machineID := range s.machineIDs() {
		sample := s.gen.ToolSample()
		if err := s.store.AppendToolSample(ctx, machineID, sample.ToolOffset, sample.Feedrate); err != nil {
			log.Printf("Error writing tool sample: %v", err)
		}
	}
}

// ToolUsageRound appends one tool-in-use event per machine.
func (s *Scheduler) ToolUsageRound(ctx context.Context) {
	for _, machineID := range s.machineIDs() {
		if err := s.store.AppendToolUsage(ctx, machineID, s.gen.ToolInUse()); err != nil {
			log.Printf("Error writing tool usage: %v", err)
		}
	}
}

// runAxisStream is runStream for the axis sample stream, with a throughput
// counter: the axis cadence is the hot path and the achieved insert rate is
// logged once per second.
func (s *Scheduler) runAxisStream(ctx context.Context) {
	var inserted int
	windowStart := time.Now()

	round := func(ctx context.Context) {
		inserted += s.AxisRound(ctx)
		if elapsed := time.Since(windowStart); elapsed >= time.Second {
			log.Printf("axis stream: %d inserts in the last %v", inserted, elapsed.Round(time.Millisecond))
			inserted = 0
			windowStart = time.Now()
		}
	}

	s.runStream(ctx, "axis", s.cfg.Streams.AxisInterval, round)
}

// AxisRound appends one sample per (machine, axis) pair and reports how many
// rows were written. A sample for an unprovisioned axis is dropped by policy:
// axis definitions are expected to exist before sampling starts.
func (s *Scheduler) AxisRound(ctx context.Context) int {
	written := 0
	for _, machineID := range s.machineIDs() {
		for _, axisName := range model.AxisNames {
			sample := s.gen.AxisSample()
			err := s.store.AppendAxisSample(ctx, machineID, axisName, store.AxisSample{
				ActualPosition: sample.ActualPosition,
				TargetPosition: sample.TargetPosition,
				Homed:          sample.Homed,
				Acceleration:   sample.Acceleration,
				Velocity:       sample.Velocity,
			})
			if errors.Is(err, store.ErrAxisNotFound) {
				log.Printf("Error: dropping axis sample: %v", err)
				continue
			}
			if err != nil {
				log.Printf("Error writing axis sample: %v", err)
				continue
			}
			written++
		}
	}
	return written
}
