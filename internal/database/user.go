package database

import (
	"context"
	"time"

	"github.com/superstar306/dexmate-robot/internal/usecase"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type User struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	Email     string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	Username  string    `gorm:"column:username;type:varchar(255);not null;uniqueIndex"`
	Name      string    `gorm:"column:name;type:varchar(255)"`
	Role      string    `gorm:"column:role;check:role IN ('USER', 'ADMIN');default:'USER'"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	Memberships []Membership
}

func (User) TableName() string {
	return "users"
}

func (u User) ConvertToUsecase() usecase.User {
	return usecase.User{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Name:      u.Name,
		Role:      usecase.GlobalRole(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (s *service) ListUsers(ctx context.Context, opt usecase.ListUsersOption) ([]usecase.User, int, error) {
	var (
		users  []User
		uusers []usecase.User
		count  int64
	)

	db := s.db.Model([]User{}).WithContext(ctx)

	if opt.Name != "" {
		db = db.Where("name ILIKE ?", "%"+opt.Name+"%")
	}
	if opt.Username != "" {
		db = db.Where("username = ?", opt.Username)
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
			Limit(opt.Limit).
			Offset(opt.Skip).
			Order(orderBy + " " + orderIn).
			Find(&users).
			Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	for _, u := range users {
		uusers = append(uusers, u.ConvertToUsecase())
	}
	return uusers, int(count), nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (usecase.User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		return usecase.User{}, translateError(err, "user", id.String())
	}
	return u.ConvertToUsecase(), nil
}

func (s *service) CreateUser(ctx context.Context, user usecase.User) (usecase.User, error) {
	u := User{
		Email:    user.Email,
		Username: user.Username,
		Name:     user.Name,
		Role:     string(user.Role),
	}

	err := s.db.WithContext(ctx).Create(&u).Error
	if err != nil {
		return usecase.User{}, translateError(err, "user", user.Username)
	}
	return u.ConvertToUsecase(), nil
}

func (s *service) UpdateUser(ctx context.Context, user usecase.User) (usecase.User, error) {
	u := User{
		Name: user.Name,
		Role: string(user.Role),
	}

	err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Updates(&u).Error
	if err != nil {
		return usecase.User{}, translateError(err, "user", user.ID.String())
	}
	return s.GetUserByID(ctx, user.ID)
}

// DeleteUser removes the user; memberships, permissions, settings and
// user-owned robots go with it via FK cascade, and assignments held by
// the user are cleared.
func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrNotFound{Resource: "user", ID: id.String()}
	}
	return nil
}
