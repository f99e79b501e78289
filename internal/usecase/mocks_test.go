// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/payload"
)

// memConversationRepo is a small in-memory implementation used by unit tests.
type memConversationRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Conversation
}

func newMemConversationRepo(cs ...*model.Conversation) *memConversationRepo {
	m := &memConversationRepo{store: make(map[string]*model.Conversation)}
	for _, c := range cs {
		m.store[c.ID] = c
	}
	return m
}

func (m *memConversationRepo) FindByID(_ context.Context, id string) (*model.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memConversationRepo) Save(_ context.Context, c *model.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *memConversationRepo) Touch(_ context.Context, id string, ts int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.LastMessageTimestamp = ts
	return nil
}

type memJobRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Job
}

func newMemJobRepo(js ...*model.Job) *memJobRepo {
	m := &memJobRepo{store: make(map[string]*model.Job)}
	for _, j := range js {
		m.store[j.ID] = j
	}
	return m
}

func (m *memJobRepo) FindByID(_ context.Context, id string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) Save(_ context.Context, j *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	cp := *j
	m.store[j.ID] = &cp
	return nil
}

func (m *memJobRepo) UpdateStatus(_ context.Context, id string, status model.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	j.Status = status
	return nil
}

func (m *memJobRepo) ListOpen(_ context.Context) ([]*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Job
	for _, j := range m.store {
		if j.IsOpen() {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// memApplicationRepo applies patches through JSON like the document store does.
type memApplicationRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Application

	// hooks used by tests to inject failures or pauses
	FindFunc   func() // called before the lookup
	CreateFunc func() // called after the insert
	UpdateFunc func(id string, patch model.ApplicationPatch) error
}

func newMemApplicationRepo(as ...*model.Application) *memApplicationRepo {
	m := &memApplicationRepo{store: make(map[string]*model.Application)}
	for _, a := range as {
		m.store[a.ID] = a
	}
	return m
}

func (m *memApplicationRepo) FindByID(_ context.Context, id string) (*model.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memApplicationRepo) FindByJobAndConversation(_ context.Context, jobID, conversationID string) (*model.Application, error) {
	if m.FindFunc != nil {
		m.FindFunc()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.store {
		if a.JobID == jobID && a.ConversationID == conversationID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memApplicationRepo) ListByJob(_ context.Context, jobID string) ([]*model.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Application
	for _, a := range m.store {
		if a.JobID == jobID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memApplicationRepo) Create(_ context.Context, a *model.Application) error {
	m.mu.Lock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	cp := *a
	m.store[a.ID] = &cp
	m.mu.Unlock()
	if m.CreateFunc != nil {
		m.CreateFunc()
	}
	return nil
}

func (m *memApplicationRepo) Update(_ context.Context, id string, patch model.ApplicationPatch) error {
	if m.UpdateFunc != nil {
		if err := m.UpdateFunc(id, patch); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	b, _ := json.Marshal(patch)
	return json.Unmarshal(b, a)
}

func (m *memApplicationRepo) get(id string) *model.Application {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := *m.store[id]
	return &cp
}

func (m *memApplicationRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newMemLocker() *memLocker { return &memLocker{held: make(map[string]string)} }

func (l *memLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", domain.ErrLockNotAcquired
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *memLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

type enqueued struct {
	Name string
	Data any
	At   time.Time
}

type memTaskQueue struct {
	mu    sync.Mutex
	tasks []enqueued
	Err   error
}

func (q *memTaskQueue) Enqueue(_ context.Context, name string, data any, at time.Time) error {
	if q.Err != nil {
		return q.Err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, enqueued{Name: name, Data: data, At: at})
	return nil
}

type stubGenerator struct {
	GenerateFunc func(job, cand string) (adapter.InterviewPlan, error)
	calls        int
	mu           sync.Mutex
}

func (g *stubGenerator) GenerateInterview(_ context.Context, job, cand string) (adapter.InterviewPlan, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.GenerateFunc != nil {
		return g.GenerateFunc(job, cand)
	}
	return adapter.InterviewPlan{Script: "Olá! Vamos conversar.", Checklist: []string{"Disponibilidade", "Experiência"}, Duration: 10}, nil
}

type stubLinks struct{}

func (stubLinks) LinkFor(appID, _, _ string) (string, error) {
	return "https://entrevista.example.com/" + appID + "?token=t", nil
}

type sentMessage struct {
	Address       string
	Payload       payload.Payload
	CorrelationID string
}

type memSender struct {
	mu   sync.Mutex
	sent []sentMessage
	Err  error
}

func (s *memSender) Send(_ context.Context, address string, p payload.Payload, correlationID string) (adapter.SendResult, error) {
	if s.Err != nil {
		return adapter.SendResult{}, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{Address: address, Payload: p, CorrelationID: correlationID})
	return adapter.SendResult{DeliveryID: "d-" + correlationID}, nil
}

func (s *memSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type mapTranslator map[string]string

func (m mapTranslator) T(key string, _ ...interface{}) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}

var testTranslator = mapTranslator{
	"interview_invite":        "🎉 Parabéns! [nome], sua candidatura para [vaga] avançou. Prazo: [prazo].",
	"interview_button":        "Fazer entrevista",
	"interview_title":         "Entrevista",
	"interview_deadline_open": "o encerramento da vaga",
}
