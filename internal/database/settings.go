package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/superstar306/dexmate-robot/internal/usecase"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

type RobotSetting struct {
	ID          uuid.UUID      `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	RobotSerial string         `gorm:"column:robot_serial;type:varchar(64);not null;uniqueIndex:idx_robot_user_setting"`
	Robot       *Robot         `gorm:"foreignKey:RobotSerial;references:Serial;constraint:OnDelete:CASCADE"`
	UserID      uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_robot_user_setting"`
	User        *User          `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Data        datatypes.JSON `gorm:"column:data"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (RobotSetting) TableName() string {
	return "robot_settings"
}

func (rs RobotSetting) ConvertToUsecase() usecase.RobotSetting {
	return usecase.RobotSetting{
		ID:          rs.ID,
		RobotSerial: rs.RobotSerial,
		UserID:      rs.UserID,
		Data:        json.RawMessage(rs.Data),
		CreatedAt:   rs.CreatedAt,
		UpdatedAt:   rs.UpdatedAt,
	}
}

func (s *service) GetRobotSetting(ctx context.Context, serial string, userID uuid.UUID) (usecase.RobotSetting, error) {
	var rs RobotSetting
	err := s.db.
		WithContext(ctx).
		Where("robot_serial = ? AND user_id = ?", serial, userID).
		First(&rs).
		Error
	if err != nil {
		return usecase.RobotSetting{}, translateError(err, "setting", serial)
	}
	return rs.ConvertToUsecase(), nil
}

// SaveRobotSetting replaces the blob wholesale on conflict.
func (s *service) SaveRobotSetting(ctx context.Context, setting usecase.RobotSetting) (usecase.RobotSetting, error) {
	rs := RobotSetting{
		RobotSerial: setting.RobotSerial,
		UserID:      setting.UserID,
		Data:        datatypes.JSON(setting.Data),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "robot_serial"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rs).Error
	if err != nil {
		return usecase.RobotSetting{}, translateError(err, "setting", setting.RobotSerial)
	}
	return s.GetRobotSetting(ctx, setting.RobotSerial, setting.UserID)
}
