package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/messaging"
	"whatsapp-recruiting-funnel/internal/payload"
)

// drain runs every queued task through its handler, in enqueue order, until
// the queue is empty.
func drain(t *testing.T, q *memTaskQueue, handlers ...adapter.TaskHandler) {
	t.Helper()
	byName := make(map[string]adapter.TaskHandler, len(handlers))
	for _, h := range handlers {
		byName[h.TaskName()] = h
	}
	for len(q.tasks) > 0 {
		next := q.tasks[0]
		q.tasks = q.tasks[1:]
		h, ok := byName[next.Name]
		require.True(t, ok, "no handler for %s", next.Name)
		data, err := json.Marshal(next.Data)
		require.NoError(t, err)
		require.NoError(t, h.HandleTask(context.Background(), adapter.Task{Name: next.Name, ID: next.Name, ScheduledTime: next.At, Data: data}))
	}
}

func TestFunnelScenario(t *testing.T) {
	t.Parallel()
	logger := zerolog.Nop()
	ctx := context.Background()

	// --- Arrange ---
	job := &model.Job{ID: "J1", Title: "Auxiliar de loja", Description: "Atendimento", Status: model.JobStatusOpen}
	c1 := model.NewConversation("C1", "Ana", 1)
	c2 := model.NewConversation("C2", "Bruno", 1)
	convs := newMemConversationRepo(c1, c2)
	jobs := newMemJobRepo(job)
	apps := newMemApplicationRepo()
	sender := &memSender{}
	q := &memTaskQueue{}

	observer := NewObserverUseCase(q, time.Second, &logger)
	match := NewMatchUseCase(apps, jobs, newMemLocker(), time.Second, &logger)
	optIn := NewOptInUseCase(OptInDeps{
		Conversations: convs,
		Jobs:          jobs,
		Applications:  apps,
		Interviews:    &stubGenerator{},
		Links:         stubLinks{},
		Sender:        sender,
		Messages:      messaging.New(nil),
		Translator:    testTranslator,
	}, &logger)
	ranking := NewRankingUseCase(jobs, apps, &logger)
	handlers := []adapter.TaskHandler{match, optIn, ranking}

	write := func(before, after any, collection, id string) {
		b, a := rawJSON(t, before), rawJSON(t, after)
		require.NoError(t, observer.HandleChange(ctx, model.ChangeEvent{Collection: collection, DocID: id, Kind: model.KindOf(b, a), Before: b, After: a}))
		drain(t, q, handlers...)
	}

	// --- Act ---
	// both candidates are matched
	c1Matched := *c1
	c1Matched.AddFitResult("J1", 0.92)
	write(c1, &c1Matched, model.CollectionConversations, "C1")
	c2Matched := *c2
	c2Matched.AddFitResult("J1", 0.71)
	write(c2, &c2Matched, model.CollectionConversations, "C2")

	// only C1 opts in
	c1OptedIn := c1Matched
	c1OptedIn.FitResults = append([]model.FitResult(nil), c1Matched.FitResults...)
	c1OptedIn.OptIn("J1")
	write(&c1Matched, &c1OptedIn, model.CollectionConversations, "C1")

	// the job closes
	closed := *job
	closed.Status = model.JobStatusClosed
	require.NoError(t, jobs.UpdateStatus(ctx, "J1", model.JobStatusClosed))
	write(job, &closed, model.CollectionJobs, "J1")

	// --- Assert ---
	require.Equal(t, 2, apps.count())
	all, err := apps.ListByJob(ctx, "J1")
	require.NoError(t, err)
	byConv := map[string]*model.Application{}
	for _, a := range all {
		byConv[a.ConversationID] = a
	}

	first := byConv["C1"]
	require.NotNil(t, first)
	assert.Equal(t, model.ApplicationInProgress, first.Status)
	assert.Equal(t, model.StepInterview, first.CurrentStep)
	assert.NotNil(t, first.InterviewData)

	second := byConv["C2"]
	require.NotNil(t, second)
	assert.Equal(t, model.ApplicationRejected, second.Status)
	assert.Equal(t, model.StepMatchWithJob, second.CurrentStep)

	require.Equal(t, 1, sender.count())
	msg := sender.sent[0].Payload.(payload.ButtonActions)
	assert.True(t, strings.HasPrefix(msg.Text, "🎉 Parabéns! Ana"))
	assert.Equal(t, "C1", sender.sent[0].Address)
}
