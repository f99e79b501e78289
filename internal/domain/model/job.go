package model

import "time"

type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
)

// Job is an opening published by a store. ApplyStart/ApplyEnd are epoch milliseconds.
type Job struct {
	ID                string    `json:"id"`
	StoreID           string    `json:"storeId"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Status            JobStatus `json:"status"`
	ApplyStart        int64     `json:"applyStart"`
	ApplyEnd          int64     `json:"applyEnd"`
	NumberOfPositions int       `json:"numberOfPositions"`
}

func (j *Job) IsOpen() bool { return j.Status == JobStatusOpen }

// ApplyEndTime returns the application deadline.
func (j *Job) ApplyEndTime() time.Time { return time.UnixMilli(j.ApplyEnd) }

// Expired reports whether the application window has ended at now.
func (j *Job) Expired(now time.Time) bool {
	return j.ApplyEnd > 0 && !now.Before(j.ApplyEndTime())
}
