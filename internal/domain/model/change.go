package model

import (
	"encoding/json"
	"time"
)

const (
	CollectionConversations = "conversations"
	CollectionJobs          = "jobs"
	CollectionApplications  = "applications"
)

type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEvent is one document write observed by the store, with both snapshots.
// Before is empty on create, After is empty on delete.
type ChangeEvent struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	DocID      string          `json:"docId"`
	Kind       ChangeKind      `json:"kind"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	At         time.Time       `json:"at"`
}

// KindOf derives the change kind from snapshot presence.
func KindOf(before, after json.RawMessage) ChangeKind {
	switch {
	case len(before) == 0:
		return ChangeCreate
	case len(after) == 0:
		return ChangeDelete
	default:
		return ChangeUpdate
	}
}
