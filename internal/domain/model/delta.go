package model

// SetDelta holds the elements added and removed between two snapshots of a set.
type SetDelta[T comparable] struct {
	Added   []T
	Removed []T
}

func (d SetDelta[T]) Empty() bool { return len(d.Added) == 0 && len(d.Removed) == 0 }

// DiffSets computes after\before and before\after, preserving the order of
// the input slices and dropping duplicates.
func DiffSets[T comparable](before, after []T) SetDelta[T] {
	inBefore := make(map[T]struct{}, len(before))
	for _, v := range before {
		inBefore[v] = struct{}{}
	}
	inAfter := make(map[T]struct{}, len(after))
	for _, v := range after {
		inAfter[v] = struct{}{}
	}
	var d SetDelta[T]
	seen := make(map[T]struct{})
	for _, v := range after {
		if _, ok := inBefore[v]; ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		d.Added = append(d.Added, v)
	}
	clear(seen)
	for _, v := range before {
		if _, ok := inAfter[v]; ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		d.Removed = append(d.Removed, v)
	}
	return d
}

// ConversationDelta is computed once per conversation write and consumed by
// every decision branch of the observer.
type ConversationDelta struct {
	Kind       ChangeKind
	FitResults SetDelta[string]
	OptIns     SetDelta[string]
}

// NewConversationDelta diffs two snapshots; either may be nil.
func NewConversationDelta(kind ChangeKind, before, after *Conversation) ConversationDelta {
	var bFit, bOpt, aFit, aOpt []string
	if before != nil {
		bFit, bOpt = before.FitResultJobIDs(), before.CurrentJobIDs
	}
	if after != nil {
		aFit, aOpt = after.FitResultJobIDs(), after.CurrentJobIDs
	}
	return ConversationDelta{
		Kind:       kind,
		FitResults: DiffSets(bFit, aFit),
		OptIns:     DiffSets(bOpt, aOpt),
	}
}

// NewJobIDs returns every job id that was newly matched or opted into, once each.
func (d ConversationDelta) NewJobIDs() []string {
	out := make([]string, 0, len(d.FitResults.Added)+len(d.OptIns.Added))
	seen := make(map[string]struct{})
	for _, ids := range [][]string{d.FitResults.Added, d.OptIns.Added} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// JobDelta captures the status transition of a job write.
type JobDelta struct {
	Kind       ChangeKind
	StatusFrom JobStatus
	StatusTo   JobStatus
}

func NewJobDelta(kind ChangeKind, before, after *Job) JobDelta {
	d := JobDelta{Kind: kind}
	if before != nil {
		d.StatusFrom = before.Status
	}
	if after != nil {
		d.StatusTo = after.Status
	}
	return d
}

// Closed is true only for an update that moved the job from open to closed.
func (d JobDelta) Closed() bool {
	return d.Kind == ChangeUpdate && d.StatusFrom == JobStatusOpen && d.StatusTo == JobStatusClosed
}
