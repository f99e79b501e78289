package model

import "time"

type ApplicationStatus string

const (
	ApplicationInProgress ApplicationStatus = "IN_PROGRESS"
	ApplicationRejected   ApplicationStatus = "REJECTED"
)

type ApplicationStep string

const (
	StepMatchWithJob ApplicationStep = "MATCH_WITH_JOB"
	// StepAcceptJob is reserved; no transition enters or leaves it.
	StepAcceptJob ApplicationStep = "ACCEPT_JOB"
	StepInterview ApplicationStep = "INTERVIEW"
	StepRanking   ApplicationStep = "RANKING"
	StepFinalist  ApplicationStep = "FINALIST"
)

var stepOrder = map[ApplicationStep]int{
	StepMatchWithJob: 0,
	StepAcceptJob:    1,
	StepInterview:    2,
	StepRanking:      3,
	StepFinalist:     4,
}

// Rank is the position of the step in the funnel; unknown steps rank -1.
func (s ApplicationStep) Rank() int {
	r, ok := stepOrder[s]
	if !ok {
		return -1
	}
	return r
}

// Beyond reports whether s is strictly after other in the funnel.
func (s ApplicationStep) Beyond(other ApplicationStep) bool { return s.Rank() > other.Rank() }

type ChecklistItem struct {
	Text string `json:"text"`
	Tick bool   `json:"tick"`
}

type InterviewData struct {
	Script              string          `json:"script"`
	Checklist           []ChecklistItem `json:"checklist"`
	Notes               string          `json:"notes,omitempty"`
	Transcription       string          `json:"transcription,omitempty"`
	TranscriptSummary   string          `json:"transcriptSummary,omitempty"`
	CallDurationSeconds *int            `json:"callDurationSeconds,omitempty"`
	CallStatus          string          `json:"callStatus,omitempty"`
	MainLanguage        string          `json:"mainLanguage,omitempty"`
}

// Application is one candidate's progress record for one job.
type Application struct {
	ID             string            `json:"id"`
	JobID          string            `json:"jobId"`
	ConversationID string            `json:"conversationId"`
	Status         ApplicationStatus `json:"status"`
	CurrentStep    ApplicationStep   `json:"currentStep"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
	InterviewData  *InterviewData    `json:"interviewData,omitempty"`
}

func NewApplication(id, jobID, conversationID string, now time.Time) *Application {
	return &Application{
		ID:             id,
		JobID:          jobID,
		ConversationID: conversationID,
		Status:         ApplicationInProgress,
		CurrentStep:    StepMatchWithJob,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (a *Application) IsRejected() bool { return a.Status == ApplicationRejected }

// IsInterviewCandidate reports whether the application is waiting in the interview step.
func (a *Application) IsInterviewCandidate() bool {
	return a.Status == ApplicationInProgress && a.CurrentStep == StepInterview
}

// ApplicationPatch is a merge-style partial update. Nil fields are left untouched.
type ApplicationPatch struct {
	Status        *ApplicationStatus `json:"status,omitempty"`
	CurrentStep   *ApplicationStep   `json:"currentStep,omitempty"`
	UpdatedAt     *time.Time         `json:"updatedAt,omitempty"`
	InterviewData *InterviewData     `json:"interviewData,omitempty"`
}

func StepPatch(step ApplicationStep, now time.Time) ApplicationPatch {
	return ApplicationPatch{CurrentStep: &step, UpdatedAt: &now}
}

func RejectPatch(now time.Time) ApplicationPatch {
	st := ApplicationRejected
	return ApplicationPatch{Status: &st, UpdatedAt: &now}
}
