package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the store adapter contract the auth core needs: lookup by
// email or id, creation under a unique-email constraint, and the two
// mutators the role-grant and deactivation flows use. Any store honoring
// these semantics can back the core; the bun implementation below is the
// reference.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	Save(ctx context.Context, record *User) (*User, error)
	GrantRole(ctx context.Context, id uuid.UUID, role string) (*User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error)
}

type users struct {
	db               bun.IDB
	defaultRole      string
	deterministicIDs bool
}

var _ Users = (*users)(nil)

type UsersOption func(*users)

// WithDefaultRole sets the role granted to new records, usually wired
// from Config.DefaultRole. Defaults to RoleUser.
func WithDefaultRole(role string) UsersOption {
	return func(u *users) {
		if role != "" {
			u.defaultRole = role
		}
	}
}

// WithDeterministicIDs derives new ids from the normalized email instead
// of random UUIDs. Useful for fixtures and idempotent seeding.
func WithDeterministicIDs() UsersOption {
	return func(u *users) {
		u.deterministicIDs = true
	}
}

// NewUsersRepository returns the bun-backed Users store.
func NewUsersRepository(db bun.IDB, opts ...UsersOption) Users {
	repo := &users{
		db:          db,
		defaultRole: RoleUser,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)

	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, NewRecordNotFound("email", email)
		}
		return nil, NewPersistenceError(err)
	}

	return record, nil
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, NewRecordNotFound("id", id.String())
		}
		return nil, NewPersistenceError(err)
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	a.prepareUserDefaults(record)

	if _, err := a.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, duplicateEmail(record.Email)
		}
		return nil, NewPersistenceError(err)
	}

	return record, nil
}

func (a *users) Save(ctx context.Context, record *User) (*User, error) {
	if record == nil || record.ID == uuid.Nil {
		return nil, goerrors.New("cannot save user without id", goerrors.CategoryBadInput)
	}

	if _, err := a.db.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, duplicateEmail(record.Email)
		}
		return nil, NewPersistenceError(err)
	}

	return record, nil
}

func (a *users) GrantRole(ctx context.Context, id uuid.UUID, role string) (*User, error) {
	if !IsValidRole(role) {
		return nil, goerrors.New(
			fmt.Sprintf("unknown role: %s", role),
			goerrors.CategoryValidation,
		).WithCode(goerrors.CodeBadRequest)
	}

	record, err := a.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.HasAnyRole(role) {
		return record, nil
	}

	return a.Save(ctx, record.AddRole(role))
}

func (a *users) SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	record, err := a.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	record.IsActive = active
	_, err = a.db.NewUpdate().
		Model(record).
		Column("is_active", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, NewPersistenceError(err)
	}

	return record, nil
}

func (a *users) prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if len(record.Roles) == 0 {
		record.Roles = []string{a.defaultRole}
	}

	record.IsActive = true

	if record.ID == uuid.Nil {
		if a.deterministicIDs {
			if id, err := hashid.NewUUID(NormalizeEmail(record.Email)); err == nil {
				record.ID = id
			}
		}
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
	}
}

func duplicateEmail(email string) *goerrors.Error {
	return goerrors.New(ErrDuplicateEmail.Message, ErrDuplicateEmail.Category).
		WithTextCode(ErrDuplicateEmail.TextCode).
		WithCode(ErrDuplicateEmail.Code).
		WithMetadata(map[string]any{"email": NormalizeEmail(email)})
}

// isUniqueViolation matches the unique-constraint shapes of the dialects
// we deploy on: sqlite (tests, example app) and postgres (code 23505).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "23505")
}
