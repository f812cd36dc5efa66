// Package repo contains all database access logic for the Ieum planner API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/goormcoder/ieum/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// Repos bundles every repository bound to the same connection or transaction.
type Repos struct {
	Members      MemberRepo
	Destinations DestinationRepo
	Categories   CategoryRepo
	Plans        PlanRepo
	Places       PlaceRepo
}

// NewRepos binds all repositories to db.
func NewRepos(db db) Repos {
	return Repos{
		Members:      NewMemberRepo(db),
		Destinations: NewDestinationRepo(db),
		Categories:   NewCategoryRepo(db),
		Plans:        NewPlanRepo(db),
		Places:       NewPlaceRepo(db),
	}
}

// TxMode selects the isolation used by Store.InTx.
type TxMode int

const (
	// ReadWrite runs at READ COMMITTED and may mutate rows.
	ReadWrite TxMode = iota
	// ReadOnly runs at REPEATABLE READ so every query in the unit sees one snapshot.
	ReadOnly
)

func (m TxMode) options() pgx.TxOptions {
	if m == ReadOnly {
		return pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	}
	return pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}
}

// Transactor runs fn as one atomic unit of work. If fn returns an error every
// write made through the supplied Repos is rolled back; otherwise it commits.
type Transactor interface {
	InTx(ctx context.Context, mode TxMode, fn func(Repos) error) error
}

// TxBeginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Store is the Postgres Transactor.
type Store struct {
	db TxBeginner
}

// NewStore constructs a Store. In production pass *pgxpool.Pool.
func NewStore(db TxBeginner) *Store {
	return &Store{db: db}
}

// InTx implements Transactor using pgx.BeginTxFunc.
func (s *Store) InTx(ctx context.Context, mode TxMode, fn func(Repos) error) error {
	return pgx.BeginTxFunc(ctx, s.db, mode.options(), func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
}

// uniqueViolation is the SQLSTATE Postgres raises for unique index conflicts.
const uniqueViolation = "23505"

// conflictMessages maps unique index names to the message surfaced to callers.
var conflictMessages = map[string]string{
	"places_proposal_uniq": "place already proposed by this member",
	"places_shared_uniq":   "place already shared in this plan",
}

// mapWriteError converts unique violations into domain.ErrConflict and
// missing rows into domain.ErrNotFound; other errors pass through unchanged.
func mapWriteError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		msg, ok := conflictMessages[pgErr.ConstraintName]
		if !ok {
			msg = pgErr.ConstraintName
		}
		return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
	}
	return err
}

// optTime converts a nullable timestamptz into a *time.Time.
func optTime(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func toUUID(id pgtype.UUID) uuid.UUID {
	return uuid.UUID(id.Bytes)
}
