package dossier

import (
	"context"
	"errors"
	"strings"

	"github.com/mind-engage/mindengage-norms/internal/subtests"
)

var (
	ErrNotFound      = errors.New("dossier not found")
	ErrDuplicateCode = errors.New("dossier code already in use")
	ErrCodeRequired  = errors.New("dossier code required")
)

// Dossier is the examinee record kept between sessions: identifying code,
// the two dates and the raw standard scores. Converted results are never
// stored; they are recomputed from this snapshot.
type Dossier struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	DOB       string          `json:"dob,omitempty"`
	TestDate  string          `json:"test_date,omitempty"`
	Scores    subtests.Scores `json:"scores"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt int64           `json:"created_at,omitempty"`
	UpdatedAt int64           `json:"updated_at,omitempty"`
}

type ListOpts struct {
	Q      string // literal, case-sensitive code prefix
	Limit  int
	Offset int
}

func (o ListOpts) normalized() ListOpts {
	o.Q = strings.TrimSpace(o.Q)
	if o.Limit <= 0 || o.Limit > 200 {
		o.Limit = 50
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

type Store interface {
	// Put inserts d, or replaces the dossier with the same ID. An empty ID
	// gets a fresh one.
	Put(ctx context.Context, d Dossier) (Dossier, error)
	Get(ctx context.Context, id string) (Dossier, error)
	GetByCode(ctx context.Context, code string) (Dossier, error)
	List(ctx context.Context, opts ListOpts) ([]Dossier, error)
	Delete(ctx context.Context, id string) error
}

func prepare(d Dossier) (Dossier, error) {
	d.Code = strings.TrimSpace(d.Code)
	if d.Code == "" {
		return Dossier{}, ErrCodeRequired
	}
	d.DOB = strings.TrimSpace(d.DOB)
	d.TestDate = strings.TrimSpace(d.TestDate)
	if d.Scores == nil {
		d.Scores = subtests.Scores{}
	}
	return d, nil
}
