package adapter

import (
	"context"
	"time"
)

// TaskQueue schedules a named task at or after at. Delivery is at-least-once and
// unordered; enqueuing the same name and data twice schedules it once.
type TaskQueue interface {
	Enqueue(ctx context.Context, name string, data any, at time.Time) error
}

// Task is what a task entry point receives. Data is unvalidated.
type Task struct {
	Name          string
	ID            string
	ScheduledTime time.Time
	Data          []byte
}

// TaskHandler is a task entry point.
type TaskHandler interface {
	TaskName() string
	HandleTask(ctx context.Context, t Task) error
}
