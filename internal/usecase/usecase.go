package usecase

import (
	"context"

	"github.com/google/uuid"
)

func New(repo Repository) Usecase {
	return Usecase{repo: repo}
}

// Repository is implemented by the database service.
type Repository interface {
	Health() map[string]string
	Close() error

	ListUsers(context.Context, ListUsersOption) ([]User, int, error)
	GetUserByID(context.Context, uuid.UUID) (User, error)
	CreateUser(context.Context, User) (User, error)
	UpdateUser(context.Context, User) (User, error)
	DeleteUser(context.Context, uuid.UUID) error

	CreateGroup(context.Context, Group) (Group, error)
	GetGroupByID(context.Context, uuid.UUID) (Group, error)
	ListGroups(context.Context, ListGroupsOption) ([]Group, int, error)
	DeleteGroup(context.Context, uuid.UUID) error

	GetMembership(ctx context.Context, groupID, userID uuid.UUID) (Membership, error)
	UpsertMembership(context.Context, Membership) (Membership, error)
	DeleteMembership(ctx context.Context, groupID, userID uuid.UUID) error

	CreateRobot(context.Context, Robot) (Robot, error)
	GetRobotBySerial(context.Context, string) (Robot, error)
	ListRobots(context.Context, ListRobotsOption) ([]Robot, int, error)
	SetAssignedUser(ctx context.Context, serial string, userID *uuid.UUID) error
	DeleteRobot(context.Context, string) error

	GetRobotPermission(ctx context.Context, serial string, userID uuid.UUID) (RobotPermission, error)
	UpsertRobotPermission(context.Context, RobotPermission) (RobotPermission, error)
	DeleteRobotPermission(ctx context.Context, serial string, userID uuid.UUID) error

	GetRobotSetting(ctx context.Context, serial string, userID uuid.UUID) (RobotSetting, error)
	SaveRobotSetting(context.Context, RobotSetting) (RobotSetting, error)
}

type Usecase struct {
	repo Repository
}

func (u Usecase) Health() map[string]string {
	return u.repo.Health()
}

func (u Usecase) Close() error {
	return u.repo.Close()
}
