package dossier

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-norms/internal/subtests"
)

type memoryStore struct {
	mu       sync.RWMutex
	dossiers map[string]Dossier
}

// NewInMemoryStore keeps dossiers for the life of the process only.
func NewInMemoryStore() Store {
	return &memoryStore{dossiers: map[string]Dossier{}}
}

func (m *memoryStore) Put(_ context.Context, d Dossier) (Dossier, error) {
	d, err := prepare(d)
	if err != nil {
		return Dossier{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, other := range m.dossiers {
		if other.Code == d.Code && id != d.ID {
			return Dossier{}, ErrDuplicateCode
		}
	}
	now := time.Now().Unix()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if prev, ok := m.dossiers[d.ID]; ok {
		d.CreatedAt = prev.CreatedAt
		d.CreatedBy = prev.CreatedBy
	} else {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	stored := d
	stored.Scores = copyScores(d.Scores)
	m.dossiers[d.ID] = stored
	d.Scores = copyScores(d.Scores)
	return d, nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Dossier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.dossiers[id]
	if !ok {
		return Dossier{}, ErrNotFound
	}
	d.Scores = copyScores(d.Scores)
	return d, nil
}

func (m *memoryStore) GetByCode(_ context.Context, code string) (Dossier, error) {
	code = strings.TrimSpace(code)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.dossiers {
		if d.Code == code {
			d.Scores = copyScores(d.Scores)
			return d, nil
		}
	}
	return Dossier{}, ErrNotFound
}

func (m *memoryStore) List(_ context.Context, opts ListOpts) ([]Dossier, error) {
	opts = opts.normalized()
	m.mu.RLock()
	out := make([]Dossier, 0, len(m.dossiers))
	for _, d := range m.dossiers {
		if opts.Q == "" || strings.HasPrefix(d.Code, opts.Q) {
			d.Scores = copyScores(d.Scores)
			out = append(out, d)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	if opts.Offset >= len(out) {
		return []Dossier{}, nil
	}
	out = out[opts.Offset:]
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dossiers[id]; !ok {
		return ErrNotFound
	}
	delete(m.dossiers, id)
	return nil
}

func copyScores(s subtests.Scores) subtests.Scores {
	out := make(subtests.Scores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
