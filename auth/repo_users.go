package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the user directory. GetBySubjectID and Provision are the two
// operations the session issuer depends on; the rest serve the profile and
// admin surfaces.
type Users interface {
	repository.Repository[*User]

	GetBySubjectID(ctx context.Context, subjectID string) (*User, error)
	GetBySubjectIDTx(ctx context.Context, tx bun.IDB, subjectID string) (*User, error)

	Provision(ctx context.Context, record *User) (*User, error)
	ProvisionTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)

	UpdateProfile(ctx context.Context, record *User) (*User, error)
	AssignRoles(ctx context.Context, id uuid.UUID, roles []string) (*User, error)
	AssignRolesTx(ctx context.Context, tx bun.IDB, id uuid.UUID, roles []string) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetBySubjectID(ctx context.Context, subjectID string) (*User, error) {
	return a.GetBySubjectIDTx(ctx, a.db, subjectID)
}

func (a *users) GetBySubjectIDTx(ctx context.Context, tx bun.IDB, subjectID string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.subject_id = ?", subjectID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"subject_id": subjectID,
				})
		}
		return nil, err
	}

	return record, nil
}

// Provision inserts a first-login user record. Callers must treat a unique
// violation on subject_id as "already created elsewhere" and re-fetch.
func (a *users) Provision(ctx context.Context, record *User) (*User, error) {
	return a.ProvisionTx(ctx, a.db, record)
}

func (a *users) ProvisionTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record)
}

// UpdateProfile persists mutable profile fields, skipping zero values so a
// partial patch leaves the rest of the record alone.
func (a *users) UpdateProfile(ctx context.Context, record *User) (*User, error) {
	return a.Repository.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateSkipZeroValues(),
	)
}

func (a *users) AssignRoles(ctx context.Context, id uuid.UUID, roles []string) (*User, error) {
	return a.AssignRolesTx(ctx, a.db, id, roles)
}

func (a *users) AssignRolesTx(ctx context.Context, tx bun.IDB, id uuid.UUID, roles []string) (*User, error) {
	record := &User{
		ID:    id,
		Roles: normalizeRoles(roles),
	}

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(id.String()))
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if len(record.Roles) == 0 {
		record.Roles = []string{RoleUser}
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func normalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	seen := map[string]bool{}
	for _, r := range roles {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	if len(out) == 0 {
		out = []string{RoleUser}
	}
	return out
}
