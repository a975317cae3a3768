package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"casetrail/internal/domain"
	"casetrail/pkg/requestcontext"
)

// InMemoryStore keeps the decision log in process memory. The single mutex is
// the write-serialization discipline: identifier and timestamp assignment are
// atomic with respect to concurrent appends.
type InMemoryStore struct {
	mu         sync.RWMutex
	records    []domain.DecisionRecord
	nextID     uint64
	lastByCase map[string]time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1, lastByCase: make(map[string]time.Time)}
}

// Append assigns the next record identifier and a per-case non-decreasing
// timestamp. If the clock reads earlier than the case's previous record, the
// previous timestamp plus one microsecond is used instead.
func (s *InMemoryStore) Append(ctx context.Context, record domain.DecisionRecord) (domain.DecisionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := requestcontext.Now(ctx)
	if last, ok := s.lastByCase[record.CaseID]; ok && !ts.After(last) {
		ts = last.Add(time.Microsecond)
	}

	record.RecordID = s.nextID
	record.Timestamp = ts
	s.nextID++
	s.lastByCase[record.CaseID] = ts
	s.records = append(s.records, record)

	return record, nil
}

// Query returns matching records in timestamp order.
func (s *InMemoryStore) Query(_ context.Context, filter Filter) ([]domain.DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DecisionRecord
	for _, r := range s.records {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
