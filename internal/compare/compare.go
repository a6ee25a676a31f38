// Package compare fans one prompt out to every configured backend and
// collects the replies as panels in a fixed order.
package compare

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"llm_compare/internal/metrics"
	"llm_compare/internal/providers"
)

// Responder is the part of a provider the comparison needs.
type Responder interface {
	Name() string
	Label() string
	GetResponse(ctx context.Context, prompt string) providers.Result
}

// Panel is one column of the comparison view.
type Panel struct {
	Provider string `json:"provider"`
	Label    string `json:"label"`
	Text     string `json:"text"`
	Failed   bool   `json:"failed"`
}

type Service struct {
	responders []Responder
	concurrent bool
	metrics    metrics.Metrics
	logger     zerolog.Logger
}

// NewService keeps responders in the order given; panels come back in the
// same order regardless of execution mode.
func NewService(responders []Responder, concurrent bool, m metrics.Metrics, logger zerolog.Logger) *Service {
	if m == nil {
		m = metrics.NewNoopMetrics()
	}
	return &Service{
		responders: append([]Responder(nil), responders...),
		concurrent: concurrent,
		metrics:    m,
		logger:     logger.With().Str("component", "compare").Logger(),
	}
}

// FromProviders adapts registry providers to responders.
func FromProviders(ps []*providers.Provider) []Responder {
	out := make([]Responder, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

// Run calls every responder with prompt. An empty prompt yields no panels and
// no backend calls.
func (s *Service) Run(ctx context.Context, prompt string) []Panel {
	if prompt == "" {
		return nil
	}

	panels := make([]Panel, len(s.responders))
	if !s.concurrent {
		for i, r := range s.responders {
			panels[i] = s.call(ctx, r, prompt)
		}
		return panels
	}

	// Each goroutine owns its slot, so no locking is needed. call never
	// returns an error, it only uses the group for the wait.
	var g errgroup.Group
	for i, r := range s.responders {
		g.Go(func() error {
			panels[i] = s.call(ctx, r, prompt)
			return nil
		})
	}
	_ = g.Wait()
	return panels
}

func (s *Service) call(ctx context.Context, r Responder, prompt string) Panel {
	start := time.Now()
	res := r.GetResponse(ctx, prompt)
	elapsed := time.Since(start)

	outcome := metrics.OutcomeSuccess
	if res.Failed() {
		outcome = metrics.OutcomeError
	}
	s.metrics.ObserveProviderCall(r.Name(), outcome, elapsed)
	s.logger.Debug().
		Str("provider", r.Name()).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("provider call finished")

	return Panel{
		Provider: r.Name(),
		Label:    r.Label(),
		Text:     res.String(),
		Failed:   res.Failed(),
	}
}
