package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Robot is identified by its globally unique serial number. Exactly
// one of OwnerUserID and OwnerGroupID is set.
type Robot struct {
	Serial         string
	Name           string
	Model          string
	OwnerUserID    *uuid.UUID
	OwnerGroupID   *uuid.UUID
	AssignedUserID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time

	OwnerUser    *User
	Group        *Group
	AssignedUser *User
}

type ListRobotsOption struct {
	Skip   int
	Limit  int
	SortBy string
	SortIn string

	Model              string
	OwnerUserID        *uuid.UUID
	OwnerGroupID       *uuid.UUID
	AssignedUserID     *uuid.UUID
	AccessibleToUserID *uuid.UUID
}

// CreateRobot registers a robot owned by the acting user.
func (u Usecase) CreateRobot(ctx context.Context, robot Robot) (Robot, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return Robot{}, err
	}
	robot.OwnerUserID = &actorID
	robot.OwnerGroupID = nil
	robot.AssignedUserID = nil
	return u.repo.CreateRobot(ctx, robot)
}

// CreateGroupRobot registers a robot owned by the group. Requires
// group admin authority. Serials are globally unique; a duplicate
// anywhere fails Conflict.
func (u Usecase) CreateGroupRobot(ctx context.Context, groupID uuid.UUID, robot Robot) (Robot, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return Robot{}, err
	}
	group, err := u.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return Robot{}, err
	}
	ok, err := u.canAdministerGroup(ctx, group, actorID)
	if err != nil {
		return Robot{}, err
	}
	if !ok {
		return Robot{}, ErrForbidden{Message: "group admin authority required"}
	}
	robot.OwnerUserID = nil
	robot.OwnerGroupID = &groupID
	robot.AssignedUserID = nil
	return u.repo.CreateRobot(ctx, robot)
}

// GetRobot returns the robot if the acting user can access it at all.
func (u Usecase) GetRobot(ctx context.Context, serial string) (Robot, AccessLevel, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return Robot{}, AccessLevelNone, err
	}
	level, err := u.ResolveAccess(ctx, actorID, serial)
	if err != nil {
		return Robot{}, AccessLevelNone, err
	}
	if level == AccessLevelNone {
		return Robot{}, AccessLevelNone, ErrForbidden{Message: "no access to robot " + serial}
	}
	robot, err := u.repo.GetRobotBySerial(ctx, serial)
	if err != nil {
		return Robot{}, AccessLevelNone, err
	}
	return robot, level, nil
}

// ListRobots returns the robots accessible to the acting user.
func (u Usecase) ListRobots(ctx context.Context, opt ListRobotsOption) ([]Robot, int, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	return u.ListAccessibleRobots(ctx, actorID, opt)
}

// ListGroupRobots returns the robots owned by the group. Any current
// member may browse the inventory, plain members included, even though
// membership alone gives them no access to the robots themselves.
func (u Usecase) ListGroupRobots(ctx context.Context, groupID uuid.UUID, opt ListRobotsOption) ([]Robot, int, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	group, err := u.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}
	if group.OwnerID != actorID {
		if _, err := u.repo.GetMembership(ctx, groupID, actorID); err != nil {
			if errors.As(err, &ErrNotFound{}) {
				return nil, 0, ErrForbidden{Message: "group membership required"}
			}
			return nil, 0, err
		}
	}
	opt.OwnerGroupID = &groupID
	opt.AccessibleToUserID = nil
	return u.repo.ListRobots(ctx, opt)
}

// AssignRobot designates targetUserID as the robot's operator, or
// clears the assignment when nil. Only group-owned robots can be
// assigned, and only to current members of the owning group.
func (u Usecase) AssignRobot(ctx context.Context, serial string, targetUserID *uuid.UUID) error {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return err
	}
	level, err := u.ResolveAccess(ctx, actorID, serial)
	if err != nil {
		return err
	}
	if level != AccessLevelAdmin {
		return ErrForbidden{Message: "admin access required to assign robot " + serial}
	}
	robot, err := u.repo.GetRobotBySerial(ctx, serial)
	if err != nil {
		return err
	}
	if robot.OwnerGroupID == nil {
		return ErrInvalidOperation{Message: "user-owned robots cannot be assigned"}
	}
	if targetUserID != nil {
		if _, err := u.repo.GetMembership(ctx, *robot.OwnerGroupID, *targetUserID); err != nil {
			if errors.As(err, &ErrNotFound{}) {
				return ErrInvalidOperation{Message: "assignee is not a member of the owning group"}
			}
			return err
		}
	}
	return u.repo.SetAssignedUser(ctx, serial, targetUserID)
}

// DeleteRobot removes the robot and, by cascade, its permissions and
// settings. Requires admin access.
func (u Usecase) DeleteRobot(ctx context.Context, serial string) error {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return err
	}
	level, err := u.ResolveAccess(ctx, actorID, serial)
	if err != nil {
		return err
	}
	if level != AccessLevelAdmin {
		return ErrForbidden{Message: "admin access required to delete robot " + serial}
	}
	return u.repo.DeleteRobot(ctx, serial)
}
