package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
)

var _ adapter.InterviewGenerator = (*NoopGenerator)(nil)

// NoopGenerator returns a fixed plan for local/dev runs.
type NoopGenerator struct {
	log *zerolog.Logger
}

func NewNoopGenerator(logger *zerolog.Logger) *NoopGenerator {
	l := logger.With().Str("component", "NoopAI").Logger()
	return &NoopGenerator{log: &l}
}

func (n *NoopGenerator) GenerateInterview(ctx context.Context, jobDescription, candidateDescription string) (adapter.InterviewPlan, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return adapter.InterviewPlan{}, ctx.Err()
	}
	n.log.Debug().Int("job_tokens", CountTokens(jobDescription)).Int("candidate_tokens", CountTokens(candidateDescription)).Msg("noop interview plan")
	return adapter.InterviewPlan{
		Script:    "Olá! Obrigado pelo interesse na vaga. Vamos conversar sobre sua experiência e disponibilidade.",
		Checklist: []string{"Disponibilidade de horário", "Experiência anterior", "Distância até a loja"},
		Duration:  10,
	}, nil
}
