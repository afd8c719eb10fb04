package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

// DefaultNamespace is used when a caller has no natural grouping key.
const DefaultNamespace = "default"

// ErrNotFound is returned when deleting an unknown entry.
var ErrNotFound = errors.New("memory not found")

// Entry is one stored memory.
type Entry struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Seq       int64             `json:"seq"`
}

// Store persists and retrieves memories.
//
// List and Search return newest entries first; a non-positive limit means no
// limit.
type Store interface {
	Add(ctx context.Context, namespace, content string, metadata map[string]string) (Entry, error)
	Search(ctx context.Context, namespace, query string, limit int) ([]Entry, error)
	List(ctx context.Context, namespace string, limit int) ([]Entry, error)
	Delete(ctx context.Context, namespace, id string) error
	Clear(ctx context.Context, namespace string) error
}

func matches(e Entry, query string) bool {
	if query == "" {
		return true
	}

	return strings.Contains(strings.ToLower(e.Content), strings.ToLower(query))
}

// newestFirst sorts entries by descending sequence and applies limit.
func newestFirst(entries []Entry, limit int) []Entry {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq > entries[j].Seq })

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries
}

func copyMetadata(md map[string]string) map[string]string {
	if md == nil {
		return nil
	}

	out := make(map[string]string, len(md))
	for k, v := range md {
		out[k] = v
	}

	return out
}
