package model

type ConversationRole string

const (
	RoleAdmin ConversationRole = "ADMIN"
	RoleUser  ConversationRole = "USER"
)

// FitResult is the similarity score computed between a candidate profile and a job.
type FitResult struct {
	JobID    string  `json:"jobId"`
	FitScore float64 `json:"fitScore"`
}

// RelevantData is the candidate profile collected during the chat.
type RelevantData struct {
	Summary    string   `json:"summary,omitempty"`
	City       string   `json:"city,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Experience string   `json:"experience,omitempty"`
}

// Conversation is keyed by the phone-derived ID of the candidate.
type Conversation struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Photo                string           `json:"photo,omitempty"`
	LastMessageTimestamp int64            `json:"lastMessageTimestamp"`
	Role                 ConversationRole `json:"role"`
	ProfileCompleted     bool             `json:"profileCompleted"`
	RelevantData         *RelevantData    `json:"relevantData,omitempty"`
	CurrentJobIDs        []string         `json:"currentJobIds,omitempty"`
	FitResults           []FitResult      `json:"fitResults,omitempty"`
	Employed             *bool            `json:"employed,omitempty"`
}

func NewConversation(id, name string, ts int64) *Conversation {
	return &Conversation{
		ID:                   id,
		Name:                 name,
		LastMessageTimestamp: ts,
		Role:                 RoleUser,
	}
}

// FitResultJobIDs returns the job ids of every recorded fit result, in order.
func (c *Conversation) FitResultJobIDs() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.FitResults))
	for _, f := range c.FitResults {
		out = append(out, f.JobID)
	}
	return out
}

// AddFitResult appends a score unless the job already has one.
func (c *Conversation) AddFitResult(jobID string, score float64) bool {
	for _, f := range c.FitResults {
		if f.JobID == jobID {
			return false
		}
	}
	c.FitResults = append(c.FitResults, FitResult{JobID: jobID, FitScore: score})
	return true
}

// OptIn adds jobID to the opt-in set.
func (c *Conversation) OptIn(jobID string) bool {
	for _, id := range c.CurrentJobIDs {
		if id == jobID {
			return false
		}
	}
	c.CurrentJobIDs = append(c.CurrentJobIDs, jobID)
	return true
}

// Description renders the candidate profile for the interview generator.
func (c *Conversation) Description() string {
	if c.RelevantData == nil {
		return c.Name
	}
	d := c.RelevantData
	out := "Nome: " + c.Name
	if d.Summary != "" {
		out += "\nResumo: " + d.Summary
	}
	if d.City != "" {
		out += "\nCidade: " + d.City
	}
	if d.Experience != "" {
		out += "\nExperiência: " + d.Experience
	}
	for i, s := range d.Skills {
		if i == 0 {
			out += "\nHabilidades: " + s
			continue
		}
		out += ", " + s
	}
	return out
}
