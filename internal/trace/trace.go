// Package trace records instrumented model-call timelines and exports them as
// Chrome trace JSON.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Schedule describes which calls inside a session are captured. Each repeat
// cycle is Wait throwaway calls, then Warmup calls discarded from the trace,
// then Active captured calls.
type Schedule struct {
	Wait   int
	Warmup int
	Active int
	Repeat int
}

func (s Schedule) cycleLen() int { return s.Wait + s.Warmup + s.Active }

// Phase is the position of the current call within the schedule.
type Phase int

const (
	PhaseWait Phase = iota
	PhaseWarmup
	PhaseActive
	PhaseDone
)

// Span is one captured call boundary, in microseconds since session start.
type Span struct {
	Name  string
	Start float64
	Dur   float64
}

// Session captures timed call boundaries according to a schedule. The
// on-ready handler fires exactly once, when the schedule completes.
type Session struct {
	schedule Schedule
	onReady  func(*Session)
	epoch    time.Time
	step     int
	fired    bool
	spans    []Span
}

// NewSession creates a session. onReady receives the session after the final
// active call of the last repeat cycle has been stepped past.
func NewSession(s Schedule, onReady func(*Session)) (*Session, error) {
	if s.Active <= 0 || s.Repeat <= 0 || s.Wait < 0 || s.Warmup < 0 {
		return nil, fmt.Errorf("invalid schedule %+v", s)
	}
	return &Session{schedule: s, onReady: onReady, epoch: time.Now()}, nil
}

// CurrentPhase reports where the next call falls in the schedule.
func (s *Session) CurrentPhase() Phase {
	cycle := s.schedule.cycleLen()
	if s.step >= cycle*s.schedule.Repeat {
		return PhaseDone
	}
	pos := s.step % cycle
	switch {
	case pos < s.schedule.Wait:
		return PhaseWait
	case pos < s.schedule.Wait+s.schedule.Warmup:
		return PhaseWarmup
	}
	return PhaseActive
}

// Record times fn and captures a span when the current call is in the active
// phase. Wait and warmup calls execute but leave no trace.
func (s *Session) Record(name string, fn func() error) error {
	phase := s.CurrentPhase()
	start := time.Now()
	err := fn()
	if err != nil {
		return err
	}
	if phase == PhaseActive {
		s.spans = append(s.spans, Span{
			Name:  name,
			Start: float64(start.Sub(s.epoch).Nanoseconds()) / 1e3,
			Dur:   float64(time.Since(start).Nanoseconds()) / 1e3,
		})
	}
	return nil
}

// Step advances the schedule past the call just recorded. When the schedule
// completes, the on-ready handler fires once.
func (s *Session) Step() {
	s.step++
	if !s.fired && s.CurrentPhase() == PhaseDone {
		s.fired = true
		if s.onReady != nil {
			s.onReady(s)
		}
	}
}

// Spans returns the captured spans.
func (s *Session) Spans() []Span { return s.spans }

// Chrome trace event JSON, the format consumed by chrome://tracing and Perfetto.
type traceEvent struct {
	Name string  `json:"name"`
	Cat  string  `json:"cat"`
	Ph   string  `json:"ph"`
	Ts   float64 `json:"ts"`
	Dur  float64 `json:"dur"`
	Pid  int     `json:"pid"`
	Tid  int     `json:"tid"`
}

type traceFile struct {
	TraceEvents     []traceEvent `json:"traceEvents"`
	DisplayTimeUnit string       `json:"displayTimeUnit"`
}

// Export writes the captured spans to path as a Chrome trace artifact.
func (s *Session) Export(path string) error {
	events := make([]traceEvent, len(s.spans))
	for i, sp := range s.spans {
		events[i] = traceEvent{
			Name: sp.Name,
			Cat:  "model",
			Ph:   "X",
			Ts:   sp.Start,
			Dur:  sp.Dur,
			Pid:  1,
			Tid:  1,
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(traceFile{TraceEvents: events, DisplayTimeUnit: "ms"}); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}
