package usecase_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/superstar306/dexmate-robot/internal/config"
	"github.com/superstar306/dexmate-robot/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actorCtx(u usecase.User) context.Context {
	ctx := context.WithValue(context.Background(), config.CTX_KEY_USER_ID, u.ID)
	return context.WithValue(ctx, config.CTX_KEY_USER_ROLE, u.Role)
}

func seedUser(t *testing.T, repo *fakeRepo, username string) usecase.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), usecase.User{
		Email:    username + "@example.com",
		Username: username,
		Name:     username,
		Role:     usecase.GlobalRoleUser,
	})
	require.NoError(t, err)
	return u
}

func TestResolveAccess_DirectOwner(t *testing.T) {
	repo := newFakeRepo()
	uc := usecase.New(repo)

	owner := seedUser(t, repo, "owner")
	_, err := repo.CreateRobot(context.Background(), usecase.Robot{
		Serial:      "RB-100",
		Name:        "arm",
		Model:       "M1",
		OwnerUserID: &owner.ID,
	})
	require.NoError(t, err)

	level, err := uc.ResolveAccess(context.Background(), owner.ID, "RB-100")
	require.NoError(t, err)
	assert.Equal(t, usecase.AccessLevelAdmin, level)
}

func TestResolveAccess_DirectOwnerBeatsConflictingGrantRow(t *testing.T) {
	repo := newFakeRepo()
	uc := usecase.New(repo)

	owner := seedUser(t, repo, "owner")
	_, err := repo.CreateRobot(context.Background(), usecase.Robot{
		Serial:      "RB-100",
		OwnerUserID: &owner.ID,
	})
	require.NoError(t, err)

	// a stale usage-level row must not lower the owner's level
	_, err = repo.UpsertRobotPermission(context.Background(), usecase.RobotPermission{
		RobotSerial: "RB-100",
		UserID:      owner.ID,
		Level:       usecase.PermissionLevelUsage,
	})
	require.NoError(t, err)

	level, err := uc.ResolveAccess(context.Background(), owner.ID, "RB-100")
	require.NoError(t, err)
	assert.Equal(t, usecase.AccessLevelAdmin, level)
}

func TestResolveAccess_GroupSources(t *testing.T) {
	repo := newFakeRepo()
	uc := usecase.New(repo)

	owner := seedUser(t, repo, "owner")
	admin := seedUser(t, repo, "admin")
	member := seedUser(t, repo, "member")
	outsider := seedUser(t, repo, "outsider")

	group, err := repo.CreateGroup(context.Background(), usecase.Group{Name: "lab", OwnerID: owner.ID})
	require.NoError(t, err)
	_, err = repo.UpsertMembership(context.Background(), usecase.Membership{
		GroupID: group.ID, UserID: admin.ID, Role: usecase.MembershipRoleAdmin,
	})
	require.NoError(t, err)
	_, err = repo.UpsertMembership(context.Background(), usecase.Membership{
		GroupID: group.ID, UserID: member.ID, Role: usecase.MembershipRoleMember,
	})
	require.NoError(t, err)

	_, err = repo.CreateRobot(context.Background(), usecase.Robot{
		Serial:       "RB-200",
		OwnerGroupID: &group.ID,
	})
	require.NoError(t, err)

	for name, tc := range map[string]struct {
		userID uuid.UUID
		want   usecase.AccessLevel
	}{
		"group owner is admin":           {owner.ID, usecase.AccessLevelAdmin},
		"admin membership is admin":      {admin.ID, usecase.AccessLevelAdmin},
		"plain membership grants none":   {member.ID, usecase.AccessLevelNone},
		"outsider has none":              {outsider.ID, usecase.AccessLevelNone},
	} {
		t.Run(name, func(t *testing.T) {
			level, err := uc.ResolveAccess(context.Background(), tc.userID, "RB-200")
			require.NoError(t, err)
			assert.Equal(t, tc.want, level)
		})
	}
}

func TestResolveAccess_AssignmentAndGrantCombine(t *testing.T) {
	repo := newFakeRepo()
	uc := usecase.New(repo)

	owner := seedUser(t, repo, "owner")
	operator := seedUser(t, repo, "operator")

	group, err := repo.CreateGroup(context.Background(), usecase.Group{Name: "lab", OwnerID: owner.ID})
	require.NoError(t, err)
	_, err = repo.UpsertMembership(context.Background(), usecase.Membership{
		GroupID: group.ID, UserID: operator.ID, Role: usecase.MembershipRoleMember,
	})
	require.NoError(t, err)
	_, err = repo.CreateRobot(context.Background(), usecase.Robot{
		Serial:       "RB-300",
		OwnerGroupID: &group.ID,
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetAssignedUser(context.Background(), "RB-300", &operator.ID))

	level, err := uc.ResolveAccess(context.Background(), operator.ID, "RB-300")
	require.NoError(t, err)
	assert.Equal(t, usecase.AccessLevelUsage, level, "assignment alone yields usage")

	// an independent admin grant must win over the usage assignment
	_, err = repo.UpsertRobotPermission(context.Background(), usecase.RobotPermission{
		RobotSerial: "RB-300",
		UserID:      operator.ID,
		Level:       usecase.PermissionLevelAdmin,
		GrantedByID: owner.ID,
	})
	require.NoError(t, err)

	level, err = uc.ResolveAccess(context.Background(), operator.ID, "RB-300")
	require.NoError(t, err)
	assert.Equal(t, usecase.AccessLevelAdmin, level)
}

func TestResolveAccess_ExplicitGrantLevels(t *testing.T) {
	repo := newFakeRepo()
	uc := usecase.New(repo)

	owner := seedUser(t, repo, "owner")
	grantee := seedUser(t, repo, "grantee")
	_, err := repo.CreateRobot(context.Background(), usecase.Robot{
		Serial:      "RB-400",
		OwnerUserID: &owner.ID,
	})
	require.NoError(t, err)

	for _, lvl := range []usecase.PermissionLevel{usecase.PermissionLevelUsage, usecase.PermissionLevelAdmin} {
		_, err = repo.UpsertRobotPermission(context.Background(), usecase.RobotPermission{
			RobotSerial: "RB-400",
			UserID:      grantee.ID,
			Level:       lvl,
			GrantedByID: owner.ID,
		})
		require.NoError(t, err)

		level, err := uc.ResolveAccess(context.Background(), grantee.ID, "RB-400")
		require.NoError(t, err)
		assert.Equal(t, usecase.AccessLevel(lvl), level)
	}
}

func TestResolveAccess_UnknownRobot(t *testing.T) {
	repo := newFakeRepo()
	uc := usecase.New(repo)

	user := seedUser(t, repo, "user")
	_, err := uc.ResolveAccess(context.Background(), user.ID, "RB-MISSING")
	assert.ErrorAs(t, err, &usecase.ErrNotFound{})
}

// TestListAccessibleRobots_MatchesResolve checks soundness and
// completeness of the union listing against the resolver over
// randomized combinations of ownership, membership, assignment and
// explicit grants.
func TestListAccessibleRobots_MatchesResolve(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	repo := newFakeRepo()
	uc := usecase.New(repo)
	ctx := context.Background()

	var users []usecase.User
	for i := 0; i < 8; i++ {
		users = append(users, seedUser(t, repo, fmt.Sprintf("user%d", i)))
	}

	var groups []usecase.Group
	for i := 0; i < 4; i++ {
		g, err := repo.CreateGroup(ctx, usecase.Group{
			Name:    fmt.Sprintf("group%d", i),
			OwnerID: users[rng.Intn(len(users))].ID,
		})
		require.NoError(t, err)
		groups = append(groups, g)

		for _, u := range users {
			if rng.Intn(3) == 0 {
				role := usecase.MembershipRoleMember
				if rng.Intn(2) == 0 {
					role = usecase.MembershipRoleAdmin
				}
				_, err := repo.UpsertMembership(ctx, usecase.Membership{
					GroupID: g.ID, UserID: u.ID, Role: role,
				})
				require.NoError(t, err)
			}
		}
	}

	var serials []string
	for i := 0; i < 30; i++ {
		serial := fmt.Sprintf("RB-%03d", i)
		robot := usecase.Robot{Serial: serial, Model: "M1"}
		if rng.Intn(2) == 0 {
			robot.OwnerUserID = &users[rng.Intn(len(users))].ID
		} else {
			g := groups[rng.Intn(len(groups))]
			robot.OwnerGroupID = &g.ID
			// assign to a random member, sometimes
			if rng.Intn(2) == 0 {
				full, err := repo.GetGroupByID(ctx, g.ID)
				require.NoError(t, err)
				if len(full.Memberships) > 0 {
					m := full.Memberships[rng.Intn(len(full.Memberships))]
					robot.AssignedUserID = &m.UserID
				}
			}
		}
		_, err := repo.CreateRobot(ctx, robot)
		require.NoError(t, err)
		serials = append(serials, serial)

		for _, u := range users {
			if rng.Intn(5) == 0 {
				lvl := usecase.PermissionLevelUsage
				if rng.Intn(2) == 0 {
					lvl = usecase.PermissionLevelAdmin
				}
				_, err := repo.UpsertRobotPermission(ctx, usecase.RobotPermission{
					RobotSerial: serial, UserID: u.ID, Level: lvl,
				})
				require.NoError(t, err)
			}
		}
	}

	for _, u := range users {
		want := map[string]bool{}
		for _, serial := range serials {
			level, err := uc.ResolveAccess(ctx, u.ID, serial)
			require.NoError(t, err)
			if level != usecase.AccessLevelNone {
				want[serial] = true
			}
		}

		robots, total, err := uc.ListAccessibleRobots(ctx, u.ID, usecase.ListRobotsOption{Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, len(want), total)

		got := map[string]bool{}
		for _, r := range robots {
			got[r.Serial] = true
		}
		assert.Equal(t, want, got, "accessible set for %s", u.Username)
	}
}

// TestListAccessibleRobots_PlainMembershipExcluded pins the listing to
// the resolver on the membership edge: a plain member resolves NONE on
// the group's robot, so the listing must not show it either. An admin
// membership brings it in.
func TestListAccessibleRobots_PlainMembershipExcluded(t *testing.T) {
	repo := newFakeRepo()
	uc := usecase.New(repo)
	ctx := context.Background()

	owner := seedUser(t, repo, "owner")
	member := seedUser(t, repo, "member")

	group, err := repo.CreateGroup(ctx, usecase.Group{Name: "lab", OwnerID: owner.ID})
	require.NoError(t, err)
	_, err = repo.UpsertMembership(ctx, usecase.Membership{
		GroupID: group.ID, UserID: member.ID, Role: usecase.MembershipRoleMember,
	})
	require.NoError(t, err)
	_, err = repo.CreateRobot(ctx, usecase.Robot{
		Serial:       "RB-900",
		OwnerGroupID: &group.ID,
	})
	require.NoError(t, err)

	level, err := uc.ResolveAccess(ctx, member.ID, "RB-900")
	require.NoError(t, err)
	require.Equal(t, usecase.AccessLevelNone, level)

	robots, total, err := uc.ListAccessibleRobots(ctx, member.ID, usecase.ListRobotsOption{Limit: 100})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, robots)

	_, err = repo.UpsertMembership(ctx, usecase.Membership{
		GroupID: group.ID, UserID: member.ID, Role: usecase.MembershipRoleAdmin,
	})
	require.NoError(t, err)

	robots, total, err = uc.ListAccessibleRobots(ctx, member.ID, usecase.ListRobotsOption{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, robots, 1)
	assert.Equal(t, "RB-900", robots[0].Serial)
}

// TestGroupRobotScenario walks the end-to-end flow: A creates a group,
// adds B, registers a group robot, assigns it to B, grants B admin,
// then B tries to revoke A's implicit access.
func TestGroupRobotScenario(t *testing.T) {
	repo := newFakeRepo()
	uc := usecase.New(repo)

	a := seedUser(t, repo, "alice")
	b := seedUser(t, repo, "bob")

	group, err := uc.CreateGroup(actorCtx(a), usecase.Group{Name: "field-ops"})
	require.NoError(t, err)

	m, err := repo.GetMembership(context.Background(), group.ID, a.ID)
	require.NoError(t, err, "owner membership created with the group")
	assert.Equal(t, usecase.MembershipRoleAdmin, m.Role)

	_, err = uc.UpsertMembership(actorCtx(a), group.ID, b.ID, usecase.MembershipRoleMember)
	require.NoError(t, err)

	_, err = uc.CreateGroupRobot(actorCtx(a), group.ID, usecase.Robot{
		Serial: "S1", Name: "scout", Model: "M2",
	})
	require.NoError(t, err)

	require.NoError(t, uc.AssignRobot(actorCtx(a), "S1", &b.ID))
	level, err := uc.ResolveAccess(context.Background(), b.ID, "S1")
	require.NoError(t, err)
	assert.Equal(t, usecase.AccessLevelUsage, level)

	_, err = uc.GrantPermission(actorCtx(a), "S1", b.ID, usecase.PermissionLevelAdmin)
	require.NoError(t, err)
	level, err = uc.ResolveAccess(context.Background(), b.ID, "S1")
	require.NoError(t, err)
	assert.Equal(t, usecase.AccessLevelAdmin, level)

	// A's admin access derives from group ownership, not an explicit
	// row, so there is nothing for B to revoke.
	err = uc.RevokePermission(actorCtx(b), "S1", a.ID)
	assert.ErrorAs(t, err, &usecase.ErrNotFound{})
}
