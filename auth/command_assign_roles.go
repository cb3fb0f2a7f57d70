package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AssignRolesMessage replaces a user's role set. This is the only write path
// for roles; the session issuer never touches them after provisioning, so
// the next authentication for the subject picks the new set up from the
// directory.
type AssignRolesMessage struct {
	UserID     string   `json:"user_id"`
	Roles      []string `json:"roles"`
	OnResponse func(u *User)
}

func (e AssignRolesMessage) Type() string { return "user.assign_roles" }

type AssignRolesHandler struct {
	repo RepositoryManager
}

func NewAssignRolesHandler(repo RepositoryManager) *AssignRolesHandler {
	return &AssignRolesHandler{repo: repo}
}

func (h *AssignRolesHandler) Execute(ctx context.Context, event AssignRolesMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during role assignment",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *AssignRolesHandler) execute(ctx context.Context, event AssignRolesMessage) error {
	id, err := uuid.Parse(event.UserID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user id").
			WithCode(goerrors.CodeBadRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var updated *User

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := h.repo.Users().GetByID(ctx, id.String()); err != nil {
			return err
		}

		updated, err = h.repo.Users().AssignRolesTx(ctx, tx, id, event.Roles)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "role assignment transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(updated)
	}

	return nil
}
