package usecase_test

import (
	"context"
	"sort"
	"time"

	"github.com/superstar306/dexmate-robot/internal/usecase"

	"github.com/google/uuid"
)

type membershipKey struct {
	GroupID uuid.UUID
	UserID  uuid.UUID
}

type robotUserKey struct {
	Serial string
	UserID uuid.UUID
}

// fakeRepo implements usecase.Repository in memory with the same
// semantics the database service provides: unique constraints surface
// as ErrConflict, missing rows as ErrNotFound, and the accessible
// listing is the union of the four indexed sets, not a resolve loop.
type fakeRepo struct {
	users       map[uuid.UUID]usecase.User
	groups      map[uuid.UUID]usecase.Group
	memberships map[membershipKey]usecase.Membership
	robots      map[string]usecase.Robot
	permissions map[robotUserKey]usecase.RobotPermission
	settings    map[robotUserKey]usecase.RobotSetting
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       map[uuid.UUID]usecase.User{},
		groups:      map[uuid.UUID]usecase.Group{},
		memberships: map[membershipKey]usecase.Membership{},
		robots:      map[string]usecase.Robot{},
		permissions: map[robotUserKey]usecase.RobotPermission{},
		settings:    map[robotUserKey]usecase.RobotSetting{},
	}
}

func (f *fakeRepo) Health() map[string]string { return map[string]string{"status": "up"} }
func (f *fakeRepo) Close() error              { return nil }

func (f *fakeRepo) ListUsers(ctx context.Context, opt usecase.ListUsersOption) ([]usecase.User, int, error) {
	var out []usecase.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id uuid.UUID) (usecase.User, error) {
	u, ok := f.users[id]
	if !ok {
		return usecase.User{}, usecase.ErrNotFound{Resource: "user", ID: id.String()}
	}
	return u, nil
}

func (f *fakeRepo) CreateUser(ctx context.Context, user usecase.User) (usecase.User, error) {
	for _, u := range f.users {
		if u.Email == user.Email || u.Username == user.Username {
			return usecase.User{}, usecase.ErrConflict{Message: "user " + user.Username + " already exists"}
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeRepo) UpdateUser(ctx context.Context, user usecase.User) (usecase.User, error) {
	u, ok := f.users[user.ID]
	if !ok {
		return usecase.User{}, usecase.ErrNotFound{Resource: "user", ID: user.ID.String()}
	}
	if user.Name != "" {
		u.Name = user.Name
	}
	if user.Role != "" {
		u.Role = user.Role
	}
	u.UpdatedAt = time.Now()
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return usecase.ErrNotFound{Resource: "user", ID: id.String()}
	}
	delete(f.users, id)
	for k := range f.memberships {
		if k.UserID == id {
			delete(f.memberships, k)
		}
	}
	for serial, r := range f.robots {
		if r.OwnerUserID != nil && *r.OwnerUserID == id {
			f.deleteRobotCascade(serial)
			continue
		}
		if r.AssignedUserID != nil && *r.AssignedUserID == id {
			r.AssignedUserID = nil
			f.robots[serial] = r
		}
	}
	for k := range f.permissions {
		if k.UserID == id {
			delete(f.permissions, k)
		}
	}
	for k := range f.settings {
		if k.UserID == id {
			delete(f.settings, k)
		}
	}
	return nil
}

func (f *fakeRepo) CreateGroup(ctx context.Context, group usecase.Group) (usecase.Group, error) {
	group.ID = uuid.New()
	group.CreatedAt = time.Now()
	group.UpdatedAt = group.CreatedAt
	f.groups[group.ID] = group
	f.memberships[membershipKey{group.ID, group.OwnerID}] = usecase.Membership{
		ID:      uuid.New(),
		GroupID: group.ID,
		UserID:  group.OwnerID,
		Role:    usecase.MembershipRoleAdmin,
	}
	return group, nil
}

func (f *fakeRepo) GetGroupByID(ctx context.Context, id uuid.UUID) (usecase.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return usecase.Group{}, usecase.ErrNotFound{Resource: "group", ID: id.String()}
	}
	for k, m := range f.memberships {
		if k.GroupID == id {
			g.Memberships = append(g.Memberships, m)
		}
	}
	return g, nil
}

func (f *fakeRepo) ListGroups(ctx context.Context, opt usecase.ListGroupsOption) ([]usecase.Group, int, error) {
	var out []usecase.Group
	for id, g := range f.groups {
		if opt.OwnerID != uuid.Nil && g.OwnerID != opt.OwnerID {
			continue
		}
		if opt.UserID != uuid.Nil {
			if _, ok := f.memberships[membershipKey{id, opt.UserID}]; !ok {
				continue
			}
		}
		out = append(out, g)
	}
	return out, len(out), nil
}

func (f *fakeRepo) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.groups[id]; !ok {
		return usecase.ErrNotFound{Resource: "group", ID: id.String()}
	}
	delete(f.groups, id)
	for k := range f.memberships {
		if k.GroupID == id {
			delete(f.memberships, k)
		}
	}
	for serial, r := range f.robots {
		if r.OwnerGroupID != nil && *r.OwnerGroupID == id {
			f.deleteRobotCascade(serial)
		}
	}
	return nil
}

func (f *fakeRepo) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (usecase.Membership, error) {
	m, ok := f.memberships[membershipKey{groupID, userID}]
	if !ok {
		return usecase.Membership{}, usecase.ErrNotFound{Resource: "membership", ID: userID.String()}
	}
	return m, nil
}

func (f *fakeRepo) UpsertMembership(ctx context.Context, membership usecase.Membership) (usecase.Membership, error) {
	key := membershipKey{membership.GroupID, membership.UserID}
	if existing, ok := f.memberships[key]; ok {
		existing.Role = membership.Role
		f.memberships[key] = existing
		return existing, nil
	}
	membership.ID = uuid.New()
	f.memberships[key] = membership
	return membership, nil
}

func (f *fakeRepo) DeleteMembership(ctx context.Context, groupID, userID uuid.UUID) error {
	key := membershipKey{groupID, userID}
	if _, ok := f.memberships[key]; !ok {
		return usecase.ErrNotFound{Resource: "membership", ID: userID.String()}
	}
	delete(f.memberships, key)
	for serial, r := range f.robots {
		if r.OwnerGroupID != nil && *r.OwnerGroupID == groupID &&
			r.AssignedUserID != nil && *r.AssignedUserID == userID {
			r.AssignedUserID = nil
			f.robots[serial] = r
		}
	}
	return nil
}

func (f *fakeRepo) CreateRobot(ctx context.Context, robot usecase.Robot) (usecase.Robot, error) {
	if _, ok := f.robots[robot.Serial]; ok {
		return usecase.Robot{}, usecase.ErrConflict{Message: "robot " + robot.Serial + " already exists"}
	}
	if (robot.OwnerUserID == nil) == (robot.OwnerGroupID == nil) {
		return usecase.Robot{}, usecase.ErrConflict{Message: "robot must have exactly one owner"}
	}
	robot.CreatedAt = time.Now()
	robot.UpdatedAt = robot.CreatedAt
	f.robots[robot.Serial] = robot
	return robot, nil
}

func (f *fakeRepo) GetRobotBySerial(ctx context.Context, serial string) (usecase.Robot, error) {
	r, ok := f.robots[serial]
	if !ok {
		return usecase.Robot{}, usecase.ErrNotFound{Resource: "robot", ID: serial}
	}
	if r.OwnerGroupID != nil {
		if g, ok := f.groups[*r.OwnerGroupID]; ok {
			r.Group = &g
		}
	}
	return r, nil
}

func (f *fakeRepo) ListRobots(ctx context.Context, opt usecase.ListRobotsOption) ([]usecase.Robot, int, error) {
	var out []usecase.Robot
	for serial, r := range f.robots {
		if opt.Model != "" && r.Model != opt.Model {
			continue
		}
		if opt.OwnerUserID != nil && (r.OwnerUserID == nil || *r.OwnerUserID != *opt.OwnerUserID) {
			continue
		}
		if opt.OwnerGroupID != nil && (r.OwnerGroupID == nil || *r.OwnerGroupID != *opt.OwnerGroupID) {
			continue
		}
		if opt.AssignedUserID != nil && (r.AssignedUserID == nil || *r.AssignedUserID != *opt.AssignedUserID) {
			continue
		}
		if opt.AccessibleToUserID != nil {
			uid := *opt.AccessibleToUserID
			owned := r.OwnerUserID != nil && *r.OwnerUserID == uid
			var viaGroup bool
			if r.OwnerGroupID != nil {
				m, ok := f.memberships[membershipKey{*r.OwnerGroupID, uid}]
				viaGroup = ok && m.Role == usecase.MembershipRoleAdmin
			}
			assigned := r.AssignedUserID != nil && *r.AssignedUserID == uid
			_, granted := f.permissions[robotUserKey{serial, uid}]
			if !owned && !viaGroup && !assigned && !granted {
				continue
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Serial < out[j].Serial })
	return out, len(out), nil
}

func (f *fakeRepo) SetAssignedUser(ctx context.Context, serial string, userID *uuid.UUID) error {
	r, ok := f.robots[serial]
	if !ok {
		return usecase.ErrNotFound{Resource: "robot", ID: serial}
	}
	r.AssignedUserID = userID
	f.robots[serial] = r
	return nil
}

func (f *fakeRepo) DeleteRobot(ctx context.Context, serial string) error {
	if _, ok := f.robots[serial]; !ok {
		return usecase.ErrNotFound{Resource: "robot", ID: serial}
	}
	f.deleteRobotCascade(serial)
	return nil
}

func (f *fakeRepo) deleteRobotCascade(serial string) {
	delete(f.robots, serial)
	for k := range f.permissions {
		if k.Serial == serial {
			delete(f.permissions, k)
		}
	}
	for k := range f.settings {
		if k.Serial == serial {
			delete(f.settings, k)
		}
	}
}

func (f *fakeRepo) GetRobotPermission(ctx context.Context, serial string, userID uuid.UUID) (usecase.RobotPermission, error) {
	p, ok := f.permissions[robotUserKey{serial, userID}]
	if !ok {
		return usecase.RobotPermission{}, usecase.ErrNotFound{Resource: "permission", ID: serial}
	}
	return p, nil
}

func (f *fakeRepo) UpsertRobotPermission(ctx context.Context, perm usecase.RobotPermission) (usecase.RobotPermission, error) {
	key := robotUserKey{perm.RobotSerial, perm.UserID}
	if existing, ok := f.permissions[key]; ok {
		existing.Level = perm.Level
		existing.GrantedByID = perm.GrantedByID
		f.permissions[key] = existing
		return existing, nil
	}
	perm.ID = uuid.New()
	f.permissions[key] = perm
	return perm, nil
}

func (f *fakeRepo) DeleteRobotPermission(ctx context.Context, serial string, userID uuid.UUID) error {
	key := robotUserKey{serial, userID}
	if _, ok := f.permissions[key]; !ok {
		return usecase.ErrNotFound{Resource: "permission", ID: serial}
	}
	delete(f.permissions, key)
	return nil
}

func (f *fakeRepo) GetRobotSetting(ctx context.Context, serial string, userID uuid.UUID) (usecase.RobotSetting, error) {
	rs, ok := f.settings[robotUserKey{serial, userID}]
	if !ok {
		return usecase.RobotSetting{}, usecase.ErrNotFound{Resource: "setting", ID: serial}
	}
	return rs, nil
}

func (f *fakeRepo) SaveRobotSetting(ctx context.Context, setting usecase.RobotSetting) (usecase.RobotSetting, error) {
	key := robotUserKey{setting.RobotSerial, setting.UserID}
	if existing, ok := f.settings[key]; ok {
		existing.Data = setting.Data
		existing.UpdatedAt = time.Now()
		f.settings[key] = existing
		return existing, nil
	}
	setting.ID = uuid.New()
	setting.CreatedAt = time.Now()
	setting.UpdatedAt = setting.CreatedAt
	f.settings[key] = setting
	return setting, nil
}
