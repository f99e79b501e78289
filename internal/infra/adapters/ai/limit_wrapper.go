package ai

import (
	"context"
	"time"

	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/infra/metrics"
)

// Compile-time check
var _ adapter.InterviewGenerator = (*limitedGenerator)(nil)

type limitedGenerator struct {
	inner adapter.InterviewGenerator
	sem   chan struct{}
}

// NewLimitedGenerator caps concurrent calls to inner. Waiting callers give up
// when their context ends.
func NewLimitedGenerator(inner adapter.InterviewGenerator, maxConcurrent int) adapter.InterviewGenerator {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedGenerator{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedGenerator) GenerateInterview(ctx context.Context, jobDescription, candidateDescription string) (adapter.InterviewPlan, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return adapter.InterviewPlan{}, ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.GenerateInterview(ctx, jobDescription, candidateDescription)
}

// Compile-time check
var _ adapter.InterviewGenerator = (*instrumented)(nil)

type instrumented struct {
	provider string
	inner    adapter.InterviewGenerator
}

// Instrument records latency and outcome of every call under provider.
func Instrument(provider string, inner adapter.InterviewGenerator) adapter.InterviewGenerator {
	return &instrumented{provider: provider, inner: inner}
}

func (i *instrumented) GenerateInterview(ctx context.Context, jobDescription, candidateDescription string) (adapter.InterviewPlan, error) {
	start := time.Now()
	plan, err := i.inner.GenerateInterview(ctx, jobDescription, candidateDescription)
	metrics.ObserveInterview(i.provider, time.Since(start).Milliseconds(), err == nil)
	return plan, err
}
