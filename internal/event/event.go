// Package event defines the typed, tick-stamped event records produced by
// the system pipeline, the per-tick recorder they accumulate in, and the bus
// that flushes committed ticks to read-only observers.
package event

import "fmt"

// Kind identifies what an event describes.
type Kind uint8

const (
	// KindDiagnostic reports a contained per-tick error (invariant repair,
	// numeric-domain clamp). Producer: any system | Payload: DiagnosticPayload
	KindDiagnostic Kind = iota

	// KindExtraction reports value transferred along one extraction or
	// tenancy edge. Producer: extraction system | Payload: ExtractionPayload
	KindExtraction

	// KindSolidarityFormed reports a new solidarity edge.
	// Producer: solidarity system | Payload: EdgePayload
	KindSolidarityFormed

	// KindSolidarityPruned reports a solidarity edge dropped below the
	// minimum-strength threshold. Producer: solidarity system | Payload: EdgePayload
	KindSolidarityPruned

	// KindBifurcation reports a class routed into an attractor.
	// Producer: consciousness system | Payload: BifurcationPayload
	KindBifurcation

	// KindContradictionStage reports a stage transition.
	// Producer: contradiction system | Payload: ContradictionPayload
	KindContradictionStage

	// KindRupture reports a contradiction held above the rupture ceiling for
	// the configured window. Producer: contradiction system | Payload: ContradictionPayload
	KindRupture

	// KindResolution reports an explicit resolution action applied to a
	// contradiction. Producer: struggle system | Payload: ResolutionPayload
	KindResolution

	// KindOvershoot reports a territory drawing above regeneration.
	// Producer: metabolism system | Payload: OvershootPayload
	KindOvershoot

	// KindDecomposition reports a class decomposed into the informal
	// proletariat. Producer: decomposition system | Payload: DecompositionPayload
	KindDecomposition

	// KindStruggle reports an open struggle action (revolt, strike,
	// suppression). Producer: struggle system | Payload: StrugglePayload
	KindStruggle

	// KindTerminal reports the single endgame outcome of the run.
	// Producer: endgame detector | Payload: TerminalPayload
	KindTerminal
)

var kindNames = [...]string{
	"diagnostic",
	"extraction",
	"solidarity_formed",
	"solidarity_pruned",
	"bifurcation",
	"contradiction_stage",
	"rupture",
	"resolution",
	"overshoot",
	"decomposition",
	"struggle",
	"terminal",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Event is an immutable record of something that occurred during a tick.
// Payload is one of the payload structs below, matched by Kind.
type Event struct {
	Kind    Kind   `json:"kind"`
	Tick    uint64 `json:"tick"`
	Payload any    `json:"payload,omitempty"`
}

// Stable diagnostic codes carried by DiagnosticPayload.
const (
	CodeNumericDomain  = "E_NUMERIC_DOMAIN"
	CodeOrphanEdge     = "E_INVARIANT_ORPHAN_EDGE"
	CodeNegativeWealth = "E_INVARIANT_NEGATIVE_WEALTH"
	CodeObserverPanic  = "E_OBSERVER_PANIC"
)

// DiagnosticPayload describes a contained error. Code is one of the E_*
// constants; Subject names the offending node or edge.
type DiagnosticPayload struct {
	Code    string `json:"code"`
	System  string `json:"system"`
	Subject string `json:"subject,omitempty"`
	Detail  string `json:"detail"`
}

// ExtractionPayload reports one rent transfer.
type ExtractionPayload struct {
	Relation string  `json:"relation"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Amount   float64 `json:"amount"`
}

// EdgePayload identifies a solidarity edge and its strength at the time of
// the event.
type EdgePayload struct {
	Relation string  `json:"relation"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Strength float64 `json:"strength"`
}

// BifurcationPayload reports a routing decision.
type BifurcationPayload struct {
	Class     string  `json:"class"`
	Alignment string  `json:"alignment"`
	Drift     float64 `json:"accumulated_drift"`
}

// ContradictionPayload reports a stage transition or rupture.
type ContradictionPayload struct {
	Contradiction string  `json:"contradiction"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	Intensity     float64 `json:"intensity"`
}

// ResolutionPayload reports an explicit resolution action and the fresh
// latent contradictions it seeded.
type ResolutionPayload struct {
	Contradiction string   `json:"contradiction"`
	Action        string   `json:"action"` // reform, suppression, revolution
	Seeded        []string `json:"seeded,omitempty"`
}

// OvershootPayload reports a territory's metabolic state.
type OvershootPayload struct {
	Territory string  `json:"territory"`
	Ratio     float64 `json:"ratio"`
}

// DecompositionPayload reports a class decomposition.
type DecompositionPayload struct {
	Class    string  `json:"class"`
	Reason   string  `json:"reason"`
	Absorbed string  `json:"absorbed_by,omitempty"`
	Wealth   float64 `json:"wealth"`
}

// StrugglePayload reports an open struggle action.
type StrugglePayload struct {
	Class  string  `json:"class"`
	Action string  `json:"action"` // revolt, strike, suppression
	Won    bool    `json:"won"`
	Power  float64 `json:"power"`
}

// TerminalPayload carries the endgame outcome and a digest of the final
// committed snapshot.
type TerminalPayload struct {
	Outcome string `json:"outcome"`
	RunID   string `json:"run_id,omitempty"`
	Digest  string `json:"digest"`
}
