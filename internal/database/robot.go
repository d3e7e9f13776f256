package database

import (
	"context"
	"time"

	"github.com/superstar306/dexmate-robot/internal/usecase"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Robot rows carry exactly one owner reference; the check constraint
// rejects rows with both or neither set.
type Robot struct {
	Serial         string     `gorm:"column:serial;primaryKey;type:varchar(64);check:chk_robot_single_owner,(owner_user_id IS NULL) <> (owner_group_id IS NULL)"`
	Name           string     `gorm:"column:name;type:varchar(255)"`
	Model          string     `gorm:"column:model;type:varchar(255)"`
	OwnerUserID    *uuid.UUID `gorm:"column:owner_user_id;type:uuid;index"`
	OwnerUser      *User      `gorm:"foreignKey:OwnerUserID;references:ID;constraint:OnDelete:CASCADE"`
	OwnerGroupID   *uuid.UUID `gorm:"column:owner_group_id;type:uuid;index"`
	Group          *Group     `gorm:"foreignKey:OwnerGroupID;references:ID;constraint:OnDelete:CASCADE"`
	AssignedUserID *uuid.UUID `gorm:"column:assigned_user_id;type:uuid;index"`
	AssignedUser   *User      `gorm:"foreignKey:AssignedUserID;references:ID;constraint:OnDelete:SET NULL"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (Robot) TableName() string {
	return "robots"
}

func (r Robot) ConvertToUsecase() usecase.Robot {
	return usecase.Robot{
		Serial:         r.Serial,
		Name:           r.Name,
		Model:          r.Model,
		OwnerUserID:    r.OwnerUserID,
		OwnerGroupID:   r.OwnerGroupID,
		AssignedUserID: r.AssignedUserID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (s *service) CreateRobot(ctx context.Context, robot usecase.Robot) (usecase.Robot, error) {
	r := Robot{
		Serial:       robot.Serial,
		Name:         robot.Name,
		Model:        robot.Model,
		OwnerUserID:  robot.OwnerUserID,
		OwnerGroupID: robot.OwnerGroupID,
	}

	err := s.db.WithContext(ctx).Create(&r).Error
	if err != nil {
		return usecase.Robot{}, translateError(err, "robot", robot.Serial)
	}
	return r.ConvertToUsecase(), nil
}

func (s *service) GetRobotBySerial(ctx context.Context, serial string) (usecase.Robot, error) {
	var r Robot
	err := s.db.
		WithContext(ctx).
		Preload("OwnerUser").
		Preload("Group").
		Preload("AssignedUser").
		Where("serial = ?", serial).
		First(&r).
		Error
	if err != nil {
		return usecase.Robot{}, translateError(err, "robot", serial)
	}

	robot := r.ConvertToUsecase()
	if r.OwnerUser != nil {
		o := r.OwnerUser.ConvertToUsecase()
		robot.OwnerUser = &o
	}
	if r.Group != nil {
		g := r.Group.ConvertToUsecase()
		robot.Group = &g
	}
	if r.AssignedUser != nil {
		a := r.AssignedUser.ConvertToUsecase()
		robot.AssignedUser = &a
	}
	return robot, nil
}

// ListRobots filters robots. With AccessibleToUserID set the result is
// the union of four indexed sets: robots the user owns, robots owned
// by groups the user administers, robots assigned to the user, and
// robots with an explicit permission row for the user. Plain
// membership confers no access, so it contributes nothing here; the
// owner is covered by the admin membership created with the group.
func (s *service) ListRobots(ctx context.Context, opt usecase.ListRobotsOption) ([]usecase.Robot, int, error) {
	var (
		robots  []Robot
		urobots []usecase.Robot
		count   int64
	)

	db := s.db.Model([]Robot{}).WithContext(ctx)

	if opt.Model != "" {
		db = db.Where("model = ?", opt.Model)
	}
	if opt.OwnerUserID != nil {
		db = db.Where("owner_user_id = ?", *opt.OwnerUserID)
	}
	if opt.OwnerGroupID != nil {
		db = db.Where("owner_group_id = ?", *opt.OwnerGroupID)
	}
	if opt.AssignedUserID != nil {
		db = db.Where("assigned_user_id = ?", *opt.AssignedUserID)
	}
	if opt.AccessibleToUserID != nil {
		uid := *opt.AccessibleToUserID
		db = db.Where(
			s.db.
				Where("owner_user_id = ?", uid).
				Or("owner_group_id IN (?)", s.db.
					Model(&Membership{}).
					Select("group_id").
					Where("user_id = ? AND role = ?", uid, "ADMIN")).
				Or("assigned_user_id = ?", uid).
				Or("serial IN (?)", s.db.
					Model(&RobotPermission{}).
					Select("robot_serial").
					Where("user_id = ?", uid)),
		)
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
			Preload("Group").
			Limit(opt.Limit).
			Offset(opt.Skip).
			Order(orderBy + " " + orderIn).
			Find(&robots).
			Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	for _, r := range robots {
		ur := r.ConvertToUsecase()
		if r.Group != nil {
			grp := r.Group.ConvertToUsecase()
			ur.Group = &grp
		}
		urobots = append(urobots, ur)
	}
	return urobots, int(count), nil
}

func (s *service) SetAssignedUser(ctx context.Context, serial string, userID *uuid.UUID) error {
	res := s.db.
		WithContext(ctx).
		Model(&Robot{}).
		Where("serial = ?", serial).
		Update("assigned_user_id", userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrNotFound{Resource: "robot", ID: serial}
	}
	return nil
}

func (s *service) DeleteRobot(ctx context.Context, serial string) error {
	res := s.db.WithContext(ctx).Where("serial = ?", serial).Delete(&Robot{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrNotFound{Resource: "robot", ID: serial}
	}
	return nil
}
