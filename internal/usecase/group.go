package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type MembershipRole string

const (
	MembershipRoleMember MembershipRole = "MEMBER"
	MembershipRoleAdmin  MembershipRole = "ADMIN"
)

type Group struct {
	ID        uuid.UUID
	Name      string
	OwnerID   uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	Owner       *User
	Memberships []Membership
}

type Membership struct {
	ID        uuid.UUID
	GroupID   uuid.UUID
	UserID    uuid.UUID
	Role      MembershipRole
	CreatedAt time.Time
	UpdatedAt time.Time

	User *User
}

type ListGroupsOption struct {
	Skip    int
	Limit   int
	SortBy  string
	SortIn  string
	Name    string
	UserID  uuid.UUID
	OwnerID uuid.UUID
}

// CreateGroup creates the group and the owner's admin membership as
// one atomic unit; the acting user becomes the owner.
func (u Usecase) CreateGroup(ctx context.Context, group Group) (Group, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return Group{}, err
	}
	group.OwnerID = actorID
	return u.repo.CreateGroup(ctx, group)
}

func (u Usecase) GetGroupByID(ctx context.Context, id string) (Group, error) {
	gid, err := uuid.Parse(id)
	if err != nil {
		return Group{}, err
	}
	return u.repo.GetGroupByID(ctx, gid)
}

func (u Usecase) ListGroups(ctx context.Context, opt ListGroupsOption) ([]Group, int, error) {
	return u.repo.ListGroups(ctx, opt)
}

func (u Usecase) DeleteGroup(ctx context.Context, id string) error {
	gid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	group, err := u.repo.GetGroupByID(ctx, gid)
	if err != nil {
		return err
	}
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return err
	}
	if group.OwnerID != actorID {
		return ErrForbidden{Message: "only the group owner may delete the group"}
	}
	return u.repo.DeleteGroup(ctx, gid)
}

// canAdministerGroup reports whether the acting user is the group's
// owner or holds an admin membership in it.
func (u Usecase) canAdministerGroup(ctx context.Context, group Group, userID uuid.UUID) (bool, error) {
	if group.OwnerID == userID {
		return true, nil
	}
	m, err := u.repo.GetMembership(ctx, group.ID, userID)
	if err != nil {
		if errors.As(err, &ErrNotFound{}) {
			return false, nil
		}
		return false, err
	}
	return m.Role == MembershipRoleAdmin, nil
}

// UpsertMembership adds the target user to the group or updates their
// role. Idempotent: repeating the same (group, user, role) leaves one
// row behind. The owner's admin membership is immutable.
func (u Usecase) UpsertMembership(ctx context.Context, groupID, targetUserID uuid.UUID, role MembershipRole) (Membership, error) {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return Membership{}, err
	}
	group, err := u.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return Membership{}, err
	}
	ok, err := u.canAdministerGroup(ctx, group, actorID)
	if err != nil {
		return Membership{}, err
	}
	if !ok {
		return Membership{}, ErrForbidden{Message: "group admin authority required"}
	}
	if targetUserID == group.OwnerID && role != MembershipRoleAdmin {
		return Membership{}, ErrConflict{Message: "group owner cannot be demoted"}
	}
	if _, err := u.repo.GetUserByID(ctx, targetUserID); err != nil {
		return Membership{}, err
	}
	return u.repo.UpsertMembership(ctx, Membership{
		GroupID: groupID,
		UserID:  targetUserID,
		Role:    role,
	})
}

// RemoveMembership removes the target user from the group. The owner
// can never be removed. Any robot of the group assigned to the removed
// member is unassigned in the same transaction, since assignment is
// only legal for current members.
func (u Usecase) RemoveMembership(ctx context.Context, groupID, targetUserID uuid.UUID) error {
	actorID, err := actorFromContext(ctx)
	if err != nil {
		return err
	}
	group, err := u.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return err
	}
	ok, err := u.canAdministerGroup(ctx, group, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden{Message: "group admin authority required"}
	}
	if targetUserID == group.OwnerID {
		return ErrConflict{Message: "group owner cannot be removed"}
	}
	if _, err := u.repo.GetMembership(ctx, groupID, targetUserID); err != nil {
		return err
	}
	return u.repo.DeleteMembership(ctx, groupID, targetUserID)
}
