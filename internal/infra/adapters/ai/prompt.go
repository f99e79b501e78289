package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
)

const systemPrompt = `Você é um recrutador preparando uma entrevista por voz curta e acolhedora.
Responda somente com um objeto JSON com as chaves:
"script": roteiro da entrevista em português, em texto corrido;
"checklist": lista de 3 a 8 pontos objetivos a confirmar com o candidato;
"duration": duração estimada em minutos (inteiro).`

// userPrompt clips both descriptions so the request fits maxTokens.
func userPrompt(jobDescription, candidateDescription string, maxTokens int) string {
	half := maxTokens / 2
	return "Vaga:\n" + TruncateTokens(jobDescription, half) +
		"\n\nCandidato:\n" + TruncateTokens(candidateDescription, half)
}

var errEmptyScript = errors.New("interview plan has no script")

// parsePlan reads the model answer, tolerating a fenced code block around the JSON.
func parsePlan(raw string) (adapter.InterviewPlan, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	var plan adapter.InterviewPlan
	if err := json.Unmarshal([]byte(s), &plan); err != nil {
		return adapter.InterviewPlan{}, fmt.Errorf("decode interview plan: %w", err)
	}
	plan.Script = strings.TrimSpace(plan.Script)
	if plan.Script == "" {
		return adapter.InterviewPlan{}, errEmptyScript
	}
	items := plan.Checklist[:0]
	for _, it := range plan.Checklist {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}
	plan.Checklist = items
	if plan.Duration < 0 {
		plan.Duration = 0
	}
	return plan, nil
}
