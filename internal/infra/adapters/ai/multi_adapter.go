package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
)

var _ adapter.InterviewGenerator = (*MultiGenerator)(nil)

// MultiGenerator calls the default provider first and falls back to the
// others, in name order, when it fails.
type MultiGenerator struct {
	order      []string
	byProvider map[string]adapter.InterviewGenerator
}

func NewMultiGenerator(defaultProvider string, byProvider map[string]adapter.InterviewGenerator) *MultiGenerator {
	def := strings.ToLower(defaultProvider)
	names := make([]string, 0, len(byProvider))
	for name, g := range byProvider {
		if g != nil && name != def {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if byProvider[def] != nil {
		names = append([]string{def}, names...)
	}
	return &MultiGenerator{order: names, byProvider: byProvider}
}

func (m *MultiGenerator) GenerateInterview(ctx context.Context, jobDescription, candidateDescription string) (adapter.InterviewPlan, error) {
	if len(m.order) == 0 {
		return adapter.InterviewPlan{}, errors.New("no interview generator configured")
	}
	var errs []error
	for _, name := range m.order {
		plan, err := m.byProvider[name].GenerateInterview(ctx, jobDescription, candidateDescription)
		if err == nil {
			return plan, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
		if ctx.Err() != nil {
			break
		}
	}
	return adapter.InterviewPlan{}, errors.Join(errs...)
}
