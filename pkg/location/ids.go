package location

import (
	"strconv"

	"github.com/google/uuid"
)

// IDAllocator hands out ids for new records.
type IDAllocator interface {
	// Next returns an id for which taken reports false.
	Next(taken func(id string) bool) string
	// Observe is called with the full id set after a load.
	Observe(ids []string)
}

// SequentialIDs allocates "0", "1", "2", ... and never goes backwards, so an id
// freed by a delete is not handed out again.
type SequentialIDs struct {
	next int
}

var _ IDAllocator = (*SequentialIDs)(nil)

func (s *SequentialIDs) Next(taken func(string) bool) string {
	for {
		id := strconv.Itoa(s.next)
		s.next++
		if !taken(id) {
			return id
		}
	}
}

// Observe resumes the counter past every numeric id and past the record count.
func (s *SequentialIDs) Observe(ids []string) {
	next := len(ids)
	for _, id := range ids {
		if n, err := strconv.Atoi(id); err == nil && n >= next {
			next = n + 1
		}
	}
	s.next = next
}

// UUIDs allocates random UUID strings.
type UUIDs struct{}

var _ IDAllocator = UUIDs{}

func (UUIDs) Next(taken func(string) bool) string {
	for {
		id := uuid.NewString()
		if !taken(id) {
			return id
		}
	}
}

func (UUIDs) Observe([]string) {}
