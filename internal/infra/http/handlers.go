package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/infra/logging"
	"whatsapp-recruiting-funnel/internal/infra/redis"
	"whatsapp-recruiting-funnel/internal/payload"
	"whatsapp-recruiting-funnel/internal/usecase"
)

const maxBody = 1 << 20

type errorBody struct {
	Error  string                   `json:"error"`
	Issues []domain.ValidationIssue `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid argument", Issues: ve.Issues})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, domain.ErrPreconditionFailed):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		ve := &domain.ValidationError{}
		ve.Add("body", err.Error())
		return ve
	}
	return nil
}

func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request) {
	var msg usecase.InboundMessage
	if err := decode(w, r, &msg); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.deps.Limiter != nil && msg.From != "" {
		ok, err := s.deps.Limiter.Allow(r.Context(), redis.InboundKey(msg.From), s.deps.InboundLimit, s.deps.InboundWindow)
		if err != nil {
			// fail open: a limiter outage must not drop inbound messages
			s.log.Warn().Err(err).Msg("inbound rate limiter unavailable")
		} else if !ok {
			s.log.Warn().Str("from", logging.Redact(msg.From, s.deps.Dev)).Msg("inbound rate limited")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limited"})
			return
		}
	}
	conv, created, err := s.deps.Conversations.RecordInbound(r.Context(), msg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	writeJSON(w, code, map[string]any{"conversationId": conv.ID, "created": created})
}

type matchRequest struct {
	JobID    string  `json:"jobId"`
	FitScore float64 `json:"fitScore"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Conversations.RecordMatch(r.Context(), chi.URLParam(r, "id"), req.JobID, req.FitScore); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var job model.Job
	if err := decode(w, r, &job); err != nil {
		s.writeError(w, r, err)
		return
	}
	if job.Status == "" {
		job.Status = model.JobStatusOpen
	}
	if err := s.deps.Jobs.Save(r.Context(), &job); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.deps.Jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type statusRequest struct {
	Status model.JobStatus `json:"status"`
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Jobs.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PayloadReport describes a validated payload.
type PayloadReport struct {
	Payload           payload.Payload   `json:"payload"`
	CharacterCount    int               `json:"characterCount"`
	PrimaryTextFields map[string]string `json:"primaryTextFields"`
	TypingDelay       int               `json:"typingDelay"`
}

// Inspect validates raw and reports its derived properties.
func Inspect(reg *payload.Registry, raw []byte, speed float64) (*PayloadReport, error) {
	p, err := reg.ValidateDetailed(raw)
	if err != nil {
		return nil, err
	}
	count, err := reg.CharacterCount(p)
	if err != nil {
		return nil, err
	}
	fields, err := reg.PrimaryTextFields(p)
	if err != nil {
		return nil, err
	}
	delay, err := reg.TypingDelay(p, speed)
	if err != nil {
		return nil, err
	}
	return &PayloadReport{Payload: p, CharacterCount: count, PrimaryTextFields: fields, TypingDelay: delay}, nil
}

func (s *Server) handleValidatePayload(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&raw); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:  domain.ErrInvalidPayload.Error(),
			Issues: []domain.ValidationIssue{{Field: "value", Reason: "is not valid JSON"}},
		})
		return
	}
	report, err := Inspect(s.deps.Registry, raw, s.deps.TypingSpeed)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPayload) {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: domain.ErrInvalidPayload.Error(), Issues: payload.Issues(err)})
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleInterview(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tokens == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	claims, err := s.deps.Tokens.Parse(r.URL.Query().Get("token"))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
		return
	}
	if claims.Subject != chi.URLParam(r, "applicationId") {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"applicationId":  claims.Subject,
		"conversationId": claims.ConversationID,
		"jobId":          claims.JobID,
	})
}
