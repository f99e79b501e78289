package adapter

import "context"

// InterviewPlan is what the generator returns for one candidate and job.
type InterviewPlan struct {
	Script    string   `json:"script"`
	Checklist []string `json:"checklist"`
	// Duration is the expected interview length in minutes.
	Duration int `json:"duration"`
}

type InterviewGenerator interface {
	GenerateInterview(ctx context.Context, jobDescription, candidateDescription string) (InterviewPlan, error)
}

// InterviewLinks builds the link a candidate follows to start the voice interview.
type InterviewLinks interface {
	LinkFor(applicationID, conversationID, jobID string) (string, error)
}
