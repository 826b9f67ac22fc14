package dossier

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	syncx "github.com/mind-engage/mindengage-norms/internal/sync"
)

type SQLStore struct {
	db     *sql.DB
	events *syncx.EventRepo
}

// NewSQLStore stores dossiers in db. events may be nil.
func NewSQLStore(db *sql.DB, events *syncx.EventRepo) *SQLStore {
	return &SQLStore{db: db, events: events}
}

const dossierCols = `id,code,dob,test_date,scores_json,created_by,created_at,updated_at`

func (s *SQLStore) Put(ctx context.Context, d Dossier) (Dossier, error) {
	d, err := prepare(d)
	if err != nil {
		return Dossier{}, err
	}
	if other, err := s.GetByCode(ctx, d.Code); err == nil && other.ID != d.ID {
		return Dossier{}, ErrDuplicateCode
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return Dossier{}, err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	sj, err := json.Marshal(d.Scores)
	if err != nil {
		return Dossier{}, err
	}
	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `INSERT INTO dossiers (`+dossierCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
		ON CONFLICT (id) DO UPDATE SET code=EXCLUDED.code, dob=EXCLUDED.dob, test_date=EXCLUDED.test_date,
			scores_json=EXCLUDED.scores_json, updated_at=EXCLUDED.updated_at`,
		d.ID, d.Code, d.DOB, d.TestDate, string(sj), d.CreatedBy, now)
	if isUniqueViolation(err) {
		// lost a race with another writer after the code check above
		return Dossier{}, ErrDuplicateCode
	}
	if err != nil {
		return Dossier{}, fmt.Errorf("put dossier: %w", err)
	}
	s.emit(ctx, syncx.TypeDossierSaved, d.ID, d.Code)
	return s.Get(ctx, d.ID)
}

func (s *SQLStore) Get(ctx context.Context, id string) (Dossier, error) {
	return s.one(ctx, `SELECT `+dossierCols+` FROM dossiers WHERE id=$1`, id)
}

func (s *SQLStore) GetByCode(ctx context.Context, code string) (Dossier, error) {
	return s.one(ctx, `SELECT `+dossierCols+` FROM dossiers WHERE code=$1`, code)
}

func (s *SQLStore) one(ctx context.Context, q string, arg string) (Dossier, error) {
	d, err := scanDossier(s.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return Dossier{}, ErrNotFound
	}
	return d, err
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Dossier, error) {
	opts = opts.normalized()
	rows, err := s.db.QueryContext(ctx, `SELECT `+dossierCols+` FROM dossiers
		WHERE ($1 = '' OR substr(code, 1, length($1)) = $1)
		ORDER BY code LIMIT $2 OFFSET $3`, opts.Q, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Dossier{}
	for rows.Next() {
		d, err := scanDossier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM dossiers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.emit(ctx, syncx.TypeDossierDeleted, id, "")
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure from
// either supported driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

type scanner interface{ Scan(dest ...any) error }

func scanDossier(row scanner) (Dossier, error) {
	var d Dossier
	var sj string
	if err := row.Scan(&d.ID, &d.Code, &d.DOB, &d.TestDate, &sj, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return Dossier{}, err
	}
	if err := json.Unmarshal([]byte(sj), &d.Scores); err != nil || d.Scores == nil {
		d.Scores = map[string]int{}
	}
	return d, nil
}

// emit records a change in the event log. Failures are not fatal to the
// write that already happened.
func (s *SQLStore) emit(ctx context.Context, typ, id, code string) {
	if s.events == nil {
		return
	}
	data, _ := json.Marshal(map[string]string{"code": code})
	_ = s.events.Append(ctx, syncx.Event{Type: typ, Key: id, DataJSON: string(data)})
}
