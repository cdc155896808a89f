package ecs

import (
	"context"
	"reflect"
	"time"
)

// Scheduler steps a set of systems against one registry.
//
// A frame runs every system in registration order with the registry's
// iteration guard held, so a system that creates or removes entities or
// components directly is fatal. Systems queue such changes on
// frame.Commands instead; the buffer is flushed once the last system has
// returned and the guard is released.
type Scheduler struct {
	registry *Registry
	systems  []*scheduledSystem
	commands *Commands

	frames  int64
	applied int64
	last    FrameStats
}

type scheduledSystem struct {
	system  System
	name    string
	queries int
	timing  durationStats
}

// FrameStats describes one frame and the store right after its flush.
type FrameStats struct {
	Duration time.Duration
	Commands int // operations applied by the flush
	Created  int
	Entities int
	Pools    int
	Remaps   int
}

// SchedulerStats is a snapshot of a scheduler's history.
type SchedulerStats struct {
	SystemCount     int
	Frames          int64
	TotalExecutions int64
	CommandsApplied int64
	LastFrame       FrameStats
	Systems         []SystemStats
}

// SystemStats holds the execution times of one system.
type SystemStats struct {
	Name           string
	Queries        int
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type durationStats struct {
	count                 int64
	min, max, last, total time.Duration
}

func (d *durationStats) observe(elapsed time.Duration) {
	if d.count == 0 || elapsed < d.min {
		d.min = elapsed
	}
	if elapsed > d.max {
		d.max = elapsed
	}
	d.count++
	d.last = elapsed
	d.total += elapsed
}

func (d *durationStats) avg() time.Duration {
	if d.count == 0 {
		return 0
	}
	return d.total / time.Duration(d.count)
}

// queryField is implemented by *Query[T].
type queryField interface {
	Init(registry *Registry)
}

// NewScheduler creates a scheduler for registry.
func NewScheduler(registry *Registry) *Scheduler {
	return &Scheduler{
		registry: registry,
		commands: NewCommands(),
	}
}

// Register appends system to the frame. If system is a pointer to a struct,
// each of its exported Query fields is bound to the registry.
func (s *Scheduler) Register(system System) {
	entry := &scheduledSystem{
		system:  system,
		name:    systemName(system),
		queries: s.bindQueries(system),
	}
	s.systems = append(s.systems, entry)
	s.registry.log.Debug("registered system", "name", entry.name, "queries", entry.queries)
}

func systemName(system System) string {
	t := reflect.TypeOf(system)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func (s *Scheduler) bindQueries(system System) int {
	v := reflect.ValueOf(system)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return 0
	}
	v = v.Elem()

	bound := 0
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}
		if q, ok := field.Addr().Interface().(queryField); ok {
			q.Init(s.registry)
			bound++
		}
	}
	return bound
}

// Once runs one frame with the given delta time in seconds.
func (s *Scheduler) Once(dt float64) FrameStats {
	if pending := s.commands.Len(); pending > 0 {
		// Left over from a frame that panicked before its flush.
		s.registry.log.Warn("discarding commands from an interrupted frame", "pending", pending)
		s.commands.reset()
	}

	start := time.Now()
	frame := newUpdateFrame(dt, s.registry, s.commands)
	s.execute(frame)

	queued := s.commands.Len()
	created := s.commands.Flush(s.registry)

	s.frames++
	s.applied += int64(queued)
	s.last = FrameStats{
		Duration: time.Since(start),
		Commands: queued,
		Created:  len(created),
		Entities: s.registry.Len(),
		Pools:    s.registry.PoolCount(),
		Remaps:   s.registry.remaps.Len(),
	}
	return s.last
}

func (s *Scheduler) execute(frame *UpdateFrame) {
	defer s.registry.beginIteration()()
	for _, entry := range s.systems {
		start := time.Now()
		entry.system.Execute(frame)
		entry.timing.observe(time.Since(start))
	}
}

// Run calls Once on every tick of interval, passing the measured time since
// the previous tick, until ctx is done. It returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Once(now.Sub(prev).Seconds())
			prev = now
		}
	}
}

// Stats returns a snapshot of frame and per-system statistics.
func (s *Scheduler) Stats() SchedulerStats {
	stats := SchedulerStats{
		SystemCount:     len(s.systems),
		Frames:          s.frames,
		CommandsApplied: s.applied,
		LastFrame:       s.last,
		Systems:         make([]SystemStats, len(s.systems)),
	}
	for i, entry := range s.systems {
		stats.Systems[i] = SystemStats{
			Name:           entry.name,
			Queries:        entry.queries,
			ExecutionCount: entry.timing.count,
			MinDuration:    entry.timing.min,
			MaxDuration:    entry.timing.max,
			AvgDuration:    entry.timing.avg(),
			LastDuration:   entry.timing.last,
			TotalDuration:  entry.timing.total,
		}
		stats.TotalExecutions += entry.timing.count
	}
	return stats
}
