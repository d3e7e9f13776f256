package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/superstar306/dexmate-robot/internal/config"

	"github.com/google/uuid"
)

type AccessLevel string

const (
	AccessLevelNone  AccessLevel = "NONE"
	AccessLevelUsage AccessLevel = "USAGE"
	AccessLevelAdmin AccessLevel = "ADMIN"
)

var accessLevelRank = map[AccessLevel]int{
	AccessLevelNone:  0,
	AccessLevelUsage: 1,
	AccessLevelAdmin: 2,
}

func maxAccessLevel(a, b AccessLevel) AccessLevel {
	if accessLevelRank[b] > accessLevelRank[a] {
		return b
	}
	return a
}

func actorFromContext(ctx context.Context) (uuid.UUID, error) {
	actorID, ok := ctx.Value(config.CTX_KEY_USER_ID).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("user id not found in context")
	}
	return actorID, nil
}

// ResolveAccess computes the effective access level of a user on a
// robot from current state. Ownership, group administration,
// assignment and explicit grants are independent sources; the highest
// applicable level wins, so every source is evaluated rather than
// returning on the first match.
func (u Usecase) ResolveAccess(ctx context.Context, userID uuid.UUID, serial string) (AccessLevel, error) {
	robot, err := u.repo.GetRobotBySerial(ctx, serial)
	if err != nil {
		return AccessLevelNone, err
	}

	level := AccessLevelNone

	if robot.OwnerUserID != nil && *robot.OwnerUserID == userID {
		level = maxAccessLevel(level, AccessLevelAdmin)
	}

	if robot.OwnerGroupID != nil {
		if robot.Group != nil && robot.Group.OwnerID == userID {
			level = maxAccessLevel(level, AccessLevelAdmin)
		}
		m, err := u.repo.GetMembership(ctx, *robot.OwnerGroupID, userID)
		switch {
		case err == nil:
			if m.Role == MembershipRoleAdmin {
				level = maxAccessLevel(level, AccessLevelAdmin)
			}
		case !errors.As(err, &ErrNotFound{}):
			return AccessLevelNone, err
		}
	}

	if robot.AssignedUserID != nil && *robot.AssignedUserID == userID {
		level = maxAccessLevel(level, AccessLevelUsage)
	}

	perm, err := u.repo.GetRobotPermission(ctx, serial, userID)
	switch {
	case err == nil:
		level = maxAccessLevel(level, AccessLevel(perm.Level))
	case !errors.As(err, &ErrNotFound{}):
		return AccessLevelNone, err
	}

	return level, nil
}

// ListAccessibleRobots returns every robot the user can access, as a
// single union of the four indexed sets (owned, group-owned via admin
// membership, assigned, explicitly granted) computed by the
// repository. The union is exactly {robot | ResolveAccess != NONE}.
func (u Usecase) ListAccessibleRobots(ctx context.Context, userID uuid.UUID, opt ListRobotsOption) ([]Robot, int, error) {
	opt.AccessibleToUserID = &userID
	return u.repo.ListRobots(ctx, opt)
}
