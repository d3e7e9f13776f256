package usecase

import (
	"context"
	"time"

	"github.com/superstar306/dexmate-robot/internal/config"

	"github.com/google/uuid"
)

type GlobalRole string

const (
	GlobalRoleUser  GlobalRole = "USER"
	GlobalRoleAdmin GlobalRole = "ADMIN"
)

type User struct {
	ID        uuid.UUID
	Email     string
	Username  string
	Name      string
	Role      GlobalRole
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListUsersOption struct {
	Skip     int
	Limit    int
	SortBy   string
	SortIn   string
	Name     string
	Username string
}

func (u Usecase) ListUsers(ctx context.Context, opt ListUsersOption) ([]User, int, error) {
	return u.repo.ListUsers(ctx, opt)
}

func (u Usecase) GetUserByID(ctx context.Context, id string) (User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return User{}, err
	}
	return u.repo.GetUserByID(ctx, uid)
}

func (u Usecase) CreateUser(ctx context.Context, user User) (User, error) {
	if user.Role == "" {
		user.Role = GlobalRoleUser
	}
	return u.repo.CreateUser(ctx, user)
}

// UpdateUser updates profile fields. Users may only edit their own
// profile, and changing the global role takes an elevated actor.
func (u Usecase) UpdateUser(ctx context.Context, user User) (User, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return User{}, err
	}
	role, _ := ctx.Value(config.CTX_KEY_USER_ROLE).(GlobalRole)
	if user.ID != actorID && role != GlobalRoleAdmin {
		return User{}, ErrForbidden{Message: "cannot modify another user"}
	}
	if user.Role != "" && role != GlobalRoleAdmin {
		return User{}, ErrForbidden{Message: "only admins may change user roles"}
	}
	return u.repo.UpdateUser(ctx, user)
}

// DeleteUser removes the user and cascades away their robots,
// memberships, permission rows and settings. Self-or-elevated only.
func (u Usecase) DeleteUser(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return err
	}
	role, _ := ctx.Value(config.CTX_KEY_USER_ROLE).(GlobalRole)
	if uid != actorID && role != GlobalRoleAdmin {
		return ErrForbidden{Message: "cannot delete another user"}
	}
	return u.repo.DeleteUser(ctx, uid)
}
