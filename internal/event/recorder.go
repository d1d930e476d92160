package event

// Recorder accumulates the ordered event log for a single in-progress tick.
// Systems append during the pipeline; the simulation loop flushes the log to
// the bus only after every system has committed, so no observer ever sees a
// partial tick.
type Recorder struct {
	tick   uint64
	events []Event
}

// NewRecorder starts a log for the given tick.
func NewRecorder(tick uint64) *Recorder {
	return &Recorder{tick: tick}
}

// Tick returns the tick this recorder stamps onto events.
func (r *Recorder) Tick() uint64 { return r.tick }

// Emit appends a tick-stamped event.
func (r *Recorder) Emit(kind Kind, payload any) {
	r.events = append(r.events, Event{Kind: kind, Tick: r.tick, Payload: payload})
}

// Diagnostic is shorthand for the contained-error event every system uses
// when it clamps or repairs instead of failing.
func (r *Recorder) Diagnostic(code, system, subject, detail string) {
	r.Emit(KindDiagnostic, DiagnosticPayload{
		Code:    code,
		System:  system,
		Subject: subject,
		Detail:  detail,
	})
}

// Events returns the log in emission order. The slice is the recorder's own;
// callers must not mutate it after flush.
func (r *Recorder) Events() []Event {
	return r.events
}

// Count returns how many events have been recorded.
func (r *Recorder) Count() int { return len(r.events) }
