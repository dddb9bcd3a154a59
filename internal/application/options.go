package application

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/bnema/taskmate/internal/ports"
)

type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics ports.Metrics
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(metrics ports.Metrics) Option {
	return func(o *options) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), metrics: ports.NopMetrics{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// idSource mints ULIDs; math/rand sources are not safe for concurrent use.
type idSource struct {
	mu      sync.Mutex
	entropy *rand.Rand
}

func newIDSource() *idSource {
	return &idSource{entropy: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *idSource) next(at time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), s.entropy).String()
}
