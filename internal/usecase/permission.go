package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PermissionLevel string

const (
	PermissionLevelUsage PermissionLevel = "USAGE"
	PermissionLevelAdmin PermissionLevel = "ADMIN"
)

type RobotPermission struct {
	ID          uuid.UUID
	RobotSerial string
	UserID      uuid.UUID
	Level       PermissionLevel
	GrantedByID uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User *User
}

// GrantPermission gives targetUserID explicit usage or admin access on
// the robot. Re-granting updates the existing row in place. The direct
// owner is implicitly admin and cannot be granted an explicit row.
func (u Usecase) GrantPermission(ctx context.Context, serial string, targetUserID uuid.UUID, level PermissionLevel) (RobotPermission, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return RobotPermission{}, err
	}
	actorLevel, err := u.ResolveAccess(ctx, actorID, serial)
	if err != nil {
		return RobotPermission{}, err
	}
	if actorLevel != AccessLevelAdmin {
		return RobotPermission{}, ErrForbidden{Message: "admin access required to grant permission on robot " + serial}
	}
	robot, err := u.repo.GetRobotBySerial(ctx, serial)
	if err != nil {
		return RobotPermission{}, err
	}
	if robot.OwnerUserID != nil && *robot.OwnerUserID == targetUserID {
		return RobotPermission{}, ErrInvalidOperation{Message: "robot owner already holds admin access"}
	}
	if _, err := u.repo.GetUserByID(ctx, targetUserID); err != nil {
		return RobotPermission{}, err
	}
	return u.repo.UpsertRobotPermission(ctx, RobotPermission{
		RobotSerial: serial,
		UserID:      targetUserID,
		Level:       level,
		GrantedByID: actorID,
	})
}

// RevokePermission deletes the explicit permission row for
// targetUserID. The direct owner never has a revocable row.
func (u Usecase) RevokePermission(ctx context.Context, serial string, targetUserID uuid.UUID) error {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return err
	}
	actorLevel, err := u.ResolveAccess(ctx, actorID, serial)
	if err != nil {
		return err
	}
	if actorLevel != AccessLevelAdmin {
		return ErrForbidden{Message: "admin access required to revoke permission on robot " + serial}
	}
	robot, err := u.repo.GetRobotBySerial(ctx, serial)
	if err != nil {
		return err
	}
	if robot.OwnerUserID != nil && *robot.OwnerUserID == targetUserID {
		return ErrInvalidOperation{Message: "robot owner access is implicit and cannot be revoked"}
	}
	if _, err := u.repo.GetRobotPermission(ctx, serial, targetUserID); err != nil {
		return err
	}
	return u.repo.DeleteRobotPermission(ctx, serial, targetUserID)
}
