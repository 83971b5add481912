package handlers

import (
	"context"
	"sort"
	"sync"

	"github.com/userpanel/adminserver/internal/store"
	"github.com/userpanel/adminserver/types"
)

// fakeUserRepo is an in-memory services.UserRepository.
type fakeUserRepo struct {
	mu          sync.Mutex
	users       map[string]types.User
	nextID      int
	deleteCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]types.User), nextID: 1}
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) List(_ context.Context) ([]types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(), nil
}

func (f *fakeUserRepo) ListPage(_ context.Context, offset, limit int) ([]types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := f.sorted()
	if offset >= len(users) {
		return nil, nil
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}
	return users[offset:end], nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users), nil
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Username]; ok {
		return types.User{}, store.ErrDuplicate
	}
	user.ID = f.nextID
	f.nextID++
	user.Active = true
	f.users[user.Username] = user
	return user, nil
}

func (f *fakeUserRepo) UpdateFullName(_ context.Context, username, fullName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[username]
	if !ok {
		return store.ErrNotFound
	}
	user.FullName = fullName
	f.users[username] = user
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if _, ok := f.users[username]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, username)
	return nil
}

func (f *fakeUserRepo) sorted() []types.User {
	users := make([]types.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

// setGroups replaces a user's eager-loaded membership set.
func (f *fakeUserRepo) setGroups(username string, groups ...types.Group) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.users[username]
	user.Groups = groups
	f.users[username] = user
}

// fakeGroupRepo is an in-memory services.GroupRepository.
type fakeGroupRepo struct {
	mu      sync.Mutex
	groups  map[string]types.Group
	members map[int]map[int]bool // group ID -> user IDs
	nextID  int
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:  make(map[string]types.Group),
		members: make(map[int]map[int]bool),
		nextID:  1,
	}
}

func (f *fakeGroupRepo) GetByID(_ context.Context, id int) (types.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, group := range f.groups {
		if group.ID == id {
			return group, nil
		}
	}
	return types.Group{}, store.ErrNotFound
}

func (f *fakeGroupRepo) GetByName(_ context.Context, name string) (types.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	group, ok := f.groups[name]
	if !ok {
		return types.Group{}, store.ErrNotFound
	}
	return group, nil
}

func (f *fakeGroupRepo) List(_ context.Context) ([]types.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	groups := make([]types.Group, 0, len(f.groups))
	for _, group := range f.groups {
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (f *fakeGroupRepo) MemberCounts(_ context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, group := range f.groups {
		counts[group.Name] = len(f.members[group.ID])
	}
	return counts, nil
}

func (f *fakeGroupRepo) Create(_ context.Context, name string) (types.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[name]; ok {
		return types.Group{}, store.ErrDuplicate
	}
	group := types.Group{ID: f.nextID, Name: name}
	f.nextID++
	f.groups[name] = group
	f.members[group.ID] = make(map[int]bool)
	return group, nil
}

func (f *fakeGroupRepo) Rename(_ context.Context, id int, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[newName]; ok {
		return store.ErrDuplicate
	}
	for name, group := range f.groups {
		if group.ID == id {
			delete(f.groups, name)
			group.Name = newName
			f.groups[newName] = group
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeGroupRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, group := range f.groups {
		if group.ID == id {
			delete(f.groups, name)
			delete(f.members, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeGroupRepo) AddMember(_ context.Context, userID, groupID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[groupID] == nil {
		f.members[groupID] = make(map[int]bool)
	}
	f.members[groupID][userID] = true
	return nil
}

func (f *fakeGroupRepo) RemoveMember(_ context.Context, userID, groupID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members[groupID], userID)
	return nil
}
