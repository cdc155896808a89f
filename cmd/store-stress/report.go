package main

import (
	"io"
	"runtime"
	"slices"
	"text/template"
	"time"

	"github.com/plus3/archstore/ecs"
	"github.com/rotisserie/eris"
)

type Report struct {
	// Configuration
	Config Config

	// Results
	TotalUpdates int64
	TotalTime    time.Duration
	UpdateTime   Stats
	Spawned      int
	Despawned    int
	BoostsAdded  int
	BoostsGone   int

	Store         ecs.StoreStats
	Scheduler     ecs.SchedulerStats
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	P95     time.Duration
	Samples []time.Duration
}

// Finalize computes the summary figures. It sorts Samples in place.
func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	slices.Sort(s.Samples)

	var total time.Duration
	for _, sample := range s.Samples {
		total += sample
	}
	s.Min = s.Samples[0]
	s.Max = s.Samples[len(s.Samples)-1]
	s.Avg = total / time.Duration(len(s.Samples))
	s.P95 = s.Samples[(len(s.Samples)-1)*95/100]
}

const reportTemplate = `
# Archetype Store Stress Report

## Configuration
- **Run Duration:** {{.Config.Duration}}
- **Initial Entities:** {{.Config.Entities}}
- **Spawned Per Frame:** {{.Config.SpawnPerFrame}}
- **Max Age:** {{.Config.MaxAge}}s
- **Seed:** {{.Config.Seed}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **P95:** {{.UpdateTime.P95}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}

## Churn
- Spawned: {{.Spawned}}
- Despawned: {{.Despawned}}
- Boosts added: {{.BoostsAdded}}
- Boosts expired: {{.BoostsGone}}

## Store
- Pools: {{.Store.PoolCount}}
- Live entities: {{.Store.TotalEntityCount}}
- Remap entries: {{.Store.RemapCount}}
{{range .Store.Pools}}  - {{printf "%016x" .Key}} {{.ComponentNames}}: {{.EntityCount}}
{{end}}
## Systems
- Frames: {{.Scheduler.Frames}}
- Commands applied: {{.Scheduler.CommandsApplied}}
- Last frame: {{.Scheduler.LastFrame.Duration}}, {{.Scheduler.LastFrame.Commands}} commands, {{.Scheduler.LastFrame.Entities}} entities
{{range .Scheduler.Systems}}- {{.Name}} ({{.Queries}} queries): {{.ExecutionCount}} runs, avg {{.AvgDuration}}, max {{.MaxDuration}}
{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .Config.GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{ns (usub64 .MemStatsEnd.PauseTotalNs .MemStatsStart.PauseTotalNs)}}
- **Num GC Cycles:** {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{end}}`

var reportFuncs = template.FuncMap{
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"usub64": func(a, b uint64) uint64 {
		return a - b
	},
	"ns": func(ns uint64) string {
		return time.Duration(ns).String()
	},
}

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportTemplate))

func (r *Report) Generate(w io.Writer) error {
	if err := reportTmpl.Execute(w, r); err != nil {
		return eris.Wrap(err, "render report")
	}
	return nil
}
