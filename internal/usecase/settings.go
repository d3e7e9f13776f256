package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type RobotSetting struct {
	ID          uuid.UUID
	RobotSerial string
	UserID      uuid.UUID
	Data        json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GetSettings returns the acting user's settings blob for the robot.
// When no row exists yet an empty object is returned without
// persisting anything; the row materializes on the first save.
func (u Usecase) GetSettings(ctx context.Context, serial string) (RobotSetting, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return RobotSetting{}, err
	}
	level, err := u.ResolveAccess(ctx, actorID, serial)
	if err != nil {
		return RobotSetting{}, err
	}
	if level == AccessLevelNone {
		return RobotSetting{}, ErrForbidden{Message: "no access to robot " + serial}
	}
	setting, err := u.repo.GetRobotSetting(ctx, serial, actorID)
	if err != nil {
		if errors.As(err, &ErrNotFound{}) {
			return RobotSetting{
				RobotSerial: serial,
				UserID:      actorID,
				Data:        json.RawMessage("{}"),
			}, nil
		}
		return RobotSetting{}, err
	}
	return setting, nil
}

// SaveSettings replaces the acting user's settings blob for the robot.
func (u Usecase) SaveSettings(ctx context.Context, serial string, data json.RawMessage) (RobotSetting, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return RobotSetting{}, err
	}
	level, err := u.ResolveAccess(ctx, actorID, serial)
	if err != nil {
		return RobotSetting{}, err
	}
	if level == AccessLevelNone {
		return RobotSetting{}, ErrForbidden{Message: "no access to robot " + serial}
	}
	return u.repo.SaveRobotSetting(ctx, RobotSetting{
		RobotSerial: serial,
		UserID:      actorID,
		Data:        data,
	})
}
