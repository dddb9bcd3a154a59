package ports

import (
	"time"

	"github.com/bnema/taskmate/internal/domain"
)

type Metrics interface {
	ObserveVerdict(verdict domain.Verdict)
	ObserveAdvance(outcome domain.Outcome)
	ObserveSweep(removed int)
	SetActiveSessions(n int)
	ObserveCompletion(model string, duration time.Duration, err error)
}

type NopMetrics struct{}

func (NopMetrics) ObserveVerdict(domain.Verdict)                  {}
func (NopMetrics) ObserveAdvance(domain.Outcome)                  {}
func (NopMetrics) ObserveSweep(int)                               {}
func (NopMetrics) SetActiveSessions(int)                          {}
func (NopMetrics) ObserveCompletion(string, time.Duration, error) {}
