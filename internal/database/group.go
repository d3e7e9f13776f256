package database

import (
	"context"
	"time"

	"github.com/superstar306/dexmate-robot/internal/usecase"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Group struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	Name      string    `gorm:"column:name;type:varchar(255);not null"`
	OwnerID   uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	Owner     *User     `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	Memberships []Membership
}

func (Group) TableName() string {
	return "groups"
}

func (g Group) ConvertToUsecase() usecase.Group {
	return usecase.Group{
		ID:        g.ID,
		Name:      g.Name,
		OwnerID:   g.OwnerID,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// CreateGroup inserts the group and the owner's admin membership in a
// single transaction; neither row exists without the other.
func (s *service) CreateGroup(ctx context.Context, group usecase.Group) (usecase.Group, error) {
	g := Group{
		Name:    group.Name,
		OwnerID: group.OwnerID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&g).Error; err != nil {
			return err
		}
		return tx.Create(&Membership{
			GroupID: g.ID,
			UserID:  g.OwnerID,
			Role:    string(usecase.MembershipRoleAdmin),
		}).Error
	})
	if err != nil {
		return usecase.Group{}, translateError(err, "group", group.Name)
	}
	return g.ConvertToUsecase(), nil
}

func (s *service) GetGroupByID(ctx context.Context, id uuid.UUID) (usecase.Group, error) {
	var g Group
	err := s.db.
		WithContext(ctx).
		Preload("Owner").
		Preload("Memberships").
		Preload("Memberships.User").
		Where("id = ?", id).
		First(&g).
		Error
	if err != nil {
		return usecase.Group{}, translateError(err, "group", id.String())
	}

	group := g.ConvertToUsecase()
	if g.Owner != nil {
		o := g.Owner.ConvertToUsecase()
		group.Owner = &o
	}
	for _, m := range g.Memberships {
		mem := m.ConvertToUsecase()
		if m.User != nil {
			mu := m.User.ConvertToUsecase()
			mem.User = &mu
		}
		group.Memberships = append(group.Memberships, mem)
	}
	return group, nil
}

func (s *service) ListGroups(ctx context.Context, opt usecase.ListGroupsOption) ([]usecase.Group, int, error) {
	var (
		groups  []Group
		ugroups []usecase.Group
		count   int64
	)

	db := s.db.Model([]Group{}).WithContext(ctx)

	if opt.Name != "" {
		db = db.Where("name ILIKE ?", "%"+opt.Name+"%")
	}
	if opt.OwnerID != uuid.Nil {
		db = db.Where("owner_id = ?", opt.OwnerID)
	}
	if opt.UserID != uuid.Nil {
		db = db.Where("id IN (?)", s.db.
			Model(&Membership{}).
			Select("group_id").
			Where("user_id = ?", opt.UserID))
	}

	var (
		orderIn = "DESC"
		orderBy = "created_at"
	)
	if opt.SortBy != "" {
		orderBy = opt.SortBy
	}
	if opt.SortIn != "" {
		orderIn = opt.SortIn
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return db.WithContext(gctx).Count(&count).Error
	})
	g.Go(func() error {
		return db.
			WithContext(gctx).
			Preload("Owner").
			Limit(opt.Limit).
			Offset(opt.Skip).
			Order(orderBy + " " + orderIn).
			Find(&groups).
			Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	for _, grp := range groups {
		ug := grp.ConvertToUsecase()
		if grp.Owner != nil {
			o := grp.Owner.ConvertToUsecase()
			ug.Owner = &o
		}
		ugroups = append(ugroups, ug)
	}
	return ugroups, int(count), nil
}

func (s *service) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Group{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrNotFound{Resource: "group", ID: id.String()}
	}
	return nil
}
