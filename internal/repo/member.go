package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/goormcoder/ieum/backend/internal/domain"
)

// MemberRepo defines the persistence operations for Members.
type MemberRepo interface {
	// Create inserts a member and returns the persisted record.
	Create(ctx context.Context, m domain.Member) (domain.Member, error)

	// GetByID retrieves a member by primary key.
	// Returns domain.ErrNotFound if no member with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Member, error)
}

type pgMemberRepo struct {
	db db
}

// NewMemberRepo constructs a MemberRepo backed by the provided db connection.
func NewMemberRepo(db db) MemberRepo {
	return &pgMemberRepo{db: db}
}

func (r *pgMemberRepo) Create(ctx context.Context, m domain.Member) (domain.Member, error) {
	const q = `
		INSERT INTO members (name, email)
		VALUES (@name, @email)
		RETURNING id, name, email, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": m.Name, "email": m.Email})
	result, err := scanMember(row)
	if err != nil {
		return domain.Member{}, fmt.Errorf("repo.MemberRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgMemberRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Member, error) {
	const q = `
		SELECT id, name, email, created_at
		FROM members
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanMember(row)
	if err != nil {
		return domain.Member{}, fmt.Errorf("repo.MemberRepo.GetByID: %w", err)
	}
	return result, nil
}

func scanMember(s scanner) (domain.Member, error) {
	var (
		m  domain.Member
		id pgtype.UUID
	)
	if err := s.Scan(&id, &m.Name, &m.Email, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Member{}, domain.ErrNotFound
		}
		return domain.Member{}, err
	}
	m.ID = toUUID(id)
	return m, nil
}
