package database

import (
	"context"
	"time"

	"github.com/superstar306/dexmate-robot/internal/usecase"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

type RobotPermission struct {
	ID          uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	RobotSerial string    `gorm:"column:robot_serial;type:varchar(64);not null;uniqueIndex:idx_robot_user"`
	Robot       *Robot    `gorm:"foreignKey:RobotSerial;references:Serial;constraint:OnDelete:CASCADE"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_robot_user"`
	User        *User     `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Level       string    `gorm:"column:level;check:level IN ('USAGE', 'ADMIN');not null"`
	GrantedByID uuid.UUID `gorm:"column:granted_by_id;type:uuid"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (RobotPermission) TableName() string {
	return "robot_permissions"
}

func (p RobotPermission) ConvertToUsecase() usecase.RobotPermission {
	return usecase.RobotPermission{
		ID:          p.ID,
		RobotSerial: p.RobotSerial,
		UserID:      p.UserID,
		Level:       usecase.PermissionLevel(p.Level),
		GrantedByID: p.GrantedByID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (s *service) GetRobotPermission(ctx context.Context, serial string, userID uuid.UUID) (usecase.RobotPermission, error) {
	var p RobotPermission
	err := s.db.
		WithContext(ctx).
		Where("robot_serial = ? AND user_id = ?", serial, userID).
		First(&p).
		Error
	if err != nil {
		return usecase.RobotPermission{}, translateError(err, "permission", serial)
	}
	return p.ConvertToUsecase(), nil
}

// UpsertRobotPermission re-granting updates level and granter in
// place; the unique (robot_serial, user_id) index prevents duplicates
// under concurrent grants.
func (s *service) UpsertRobotPermission(ctx context.Context, perm usecase.RobotPermission) (usecase.RobotPermission, error) {
	p := RobotPermission{
		RobotSerial: perm.RobotSerial,
		UserID:      perm.UserID,
		Level:       string(perm.Level),
		GrantedByID: perm.GrantedByID,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "robot_serial"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"level", "granted_by_id", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return usecase.RobotPermission{}, translateError(err, "permission", perm.RobotSerial)
	}
	return s.GetRobotPermission(ctx, perm.RobotSerial, perm.UserID)
}

func (s *service) DeleteRobotPermission(ctx context.Context, serial string, userID uuid.UUID) error {
	res := s.db.
		WithContext(ctx).
		Where("robot_serial = ? AND user_id = ?", serial, userID).
		Delete(&RobotPermission{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrNotFound{Resource: "permission", ID: serial}
	}
	return nil
}
