package database

import (
	"context"
	"time"

	"github.com/superstar306/dexmate-robot/internal/usecase"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Membership struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	GroupID   uuid.UUID `gorm:"column:group_id;type:uuid;not null;uniqueIndex:idx_group_user"`
	Group     *Group    `gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:CASCADE"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_group_user"`
	User      *User     `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Role      string    `gorm:"column:role;check:role IN ('MEMBER', 'ADMIN');default:'MEMBER'"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Membership) TableName() string {
	return "group_memberships"
}

func (m Membership) ConvertToUsecase() usecase.Membership {
	return usecase.Membership{
		ID:        m.ID,
		GroupID:   m.GroupID,
		UserID:    m.UserID,
		Role:      usecase.MembershipRole(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (s *service) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (usecase.Membership, error) {
	var m Membership
	err := s.db.
		WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&m).
		Error
	if err != nil {
		return usecase.Membership{}, translateError(err, "membership", userID.String())
	}
	return m.ConvertToUsecase(), nil
}

func (s *service) UpsertMembership(ctx context.Context, membership usecase.Membership) (usecase.Membership, error) {
	m := Membership{
		GroupID: membership.GroupID,
		UserID:  membership.UserID,
		Role:    string(membership.Role),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return usecase.Membership{}, translateError(err, "membership", membership.UserID.String())
	}
	return s.GetMembership(ctx, membership.GroupID, membership.UserID)
}

// DeleteMembership removes the membership row and clears any
// assignment the user holds on the group's robots, in one
// transaction. Assignment is only legal for current members.
func (s *service) DeleteMembership(ctx context.Context, groupID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Where("group_id = ? AND user_id = ?", groupID, userID).
			Delete(&Membership{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrNotFound{Resource: "membership", ID: userID.String()}
		}
		return tx.
			Model(&Robot{}).
			Where("owner_group_id = ? AND assigned_user_id = ?", groupID, userID).
			Update("assigned_user_id", nil).
			Error
	})
}
