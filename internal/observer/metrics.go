// Package observer provides the read-only subscribers shipped with the
// engine: rolling metrics, the narrative trigger queue, a graph-topology
// monitor, and the endgame detector. Observers see only fully committed
// tick boundaries and never write to the world.
package observer

import (
	"log/slog"
	"sync"

	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// MetricsTag is the registry tag of the metrics observer.
const MetricsTag = "metrics"

// reportEvery is how often the metrics observer writes a summary log.
const reportEvery = 50

// MetricsReport is a point-in-time aggregate view, serializable for the
// observation API.
type MetricsReport struct {
	Tick             uint64         `json:"tick"`
	Classes          int            `json:"classes"`
	Territories      int            `json:"territories"`
	Relations        int            `json:"relations"`
	TotalWealth      float64        `json:"total_wealth"`
	TotalPopulation  float64        `json:"total_population"`
	AvgConsciousness float64        `json:"avg_consciousness"`
	RentPool         float64        `json:"rent_pool"`
	LiberationIndex  float64        `json:"liberation_index"`
	RepressionIndex  float64        `json:"repression_index"`
	Overshoot        float64        `json:"overshoot"`
	EventCounts      map[string]int `json:"event_counts"`
}

// Metrics keeps rolling aggregates over committed ticks.
type Metrics struct {
	mu     sync.Mutex
	report MetricsReport
	counts map[string]int
}

// NewMetrics returns an empty metrics observer.
func NewMetrics() *Metrics {
	return &Metrics{counts: make(map[string]int)}
}

func (m *Metrics) Tag() string { return MetricsTag }

func (m *Metrics) OnTick(before, after *world.State, events []event.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ev := range events {
		m.counts[ev.Kind.String()]++
	}

	var consciousness float64
	for _, id := range after.ClassIDs() {
		consciousness += after.Classes[id].Consciousness
	}
	avg := 0.0
	if n := len(after.Classes); n > 0 {
		avg = consciousness / float64(n)
	}

	counts := make(map[string]int, len(m.counts))
	for k, v := range m.counts {
		counts[k] = v
	}
	m.report = MetricsReport{
		Tick:             after.Tick,
		Classes:          len(after.Classes),
		Territories:      len(after.Territories),
		Relations:        len(after.Relations),
		TotalWealth:      after.TotalWealth(),
		TotalPopulation:  after.TotalPopulation(),
		AvgConsciousness: avg,
		RentPool:         after.Aggregates.RentPool,
		LiberationIndex:  after.Aggregates.LiberationIndex,
		RepressionIndex:  after.Aggregates.RepressionIndex,
		Overshoot:        after.Aggregates.Overshoot,
		EventCounts:      counts,
	}

	if after.Tick%reportEvery == 0 {
		slog.Info("tick report",
			"tick", after.Tick,
			"classes", m.report.Classes,
			"relations", m.report.Relations,
			"total_wealth", m.report.TotalWealth,
			"avg_consciousness", m.report.AvgConsciousness,
			"rent_pool", m.report.RentPool,
			"liberation_index", m.report.LiberationIndex,
			"repression_index", m.report.RepressionIndex,
			"overshoot", m.report.Overshoot,
			"events_struggle", counts["struggle"],
			"events_rupture", counts["rupture"],
			"events_diagnostic", counts["diagnostic"],
		)
	}
}

// Report returns the latest aggregate view.
func (m *Metrics) Report() MetricsReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.report
}
