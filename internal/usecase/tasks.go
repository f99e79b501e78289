package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"whatsapp-recruiting-funnel/internal/domain"
)

// Task names. The prefix selects the asynq queue.
const (
	TaskCreateApplication = "funnel:create_application"
	TaskOptIn             = "funnel:opt_in"
	TaskJobClosed         = "funnel:job_closed"
)

// ApplicationTaskData identifies one (job, conversation) pair.
type ApplicationTaskData struct {
	JobID          string `json:"jobId" validate:"required"`
	ConversationID string `json:"conversationId" validate:"required"`
}

type JobClosedTaskData struct {
	JobID string `json:"jobId" validate:"required"`
}

var (
	taskValidatorOnce sync.Once
	taskValidator     *validator.Validate
)

func taskRules() *validator.Validate {
	taskValidatorOnce.Do(func() {
		taskValidator = validator.New()
		taskValidator.RegisterTagNameFunc(func(f reflect.StructField) string {
			return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		})
	})
	return taskValidator
}

// DecodeTaskData strictly parses raw into T. Every failure is a
// *domain.ValidationError, so it is never retried.
func DecodeTaskData[T any](raw []byte) (T, error) {
	var out T
	ve := &domain.ValidationError{}
	if len(bytes.TrimSpace(raw)) == 0 {
		ve.Add("data", "is empty")
		return out, ve
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		ve.Add("data", err.Error())
		return out, ve
	}
	if err := validateStruct(out); err != nil {
		return out, err
	}
	return out, nil
}

// validateStruct applies the validate tags of v.
func validateStruct(v any) error {
	err := taskRules().Struct(v)
	if err == nil {
		return nil
	}
	ve := &domain.ValidationError{}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		ve.Add("data", err.Error())
		return ve
	}
	for _, fe := range fes {
		ve.Add(fe.Field(), "failed "+fe.Tag())
	}
	return ve
}
