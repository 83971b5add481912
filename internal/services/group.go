package services

import (
	"context"

	"github.com/userpanel/adminserver/types"
)

// GroupRepository defines persistence operations for groups and
// membership.
type GroupRepository interface {
	GetByID(ctx context.Context, id int) (types.Group, error)
	GetByName(ctx context.Context, name string) (types.Group, error)
	List(ctx context.Context) ([]types.Group, error)
	MemberCounts(ctx context.Context) (map[string]int, error)
	Create(ctx context.Context, name string) (types.Group, error)
	Rename(ctx context.Context, id int, newName string) error
	Delete(ctx context.Context, id int) error
	AddMember(ctx context.Context, userID, groupID int) error
	RemoveMember(ctx context.Context, userID, groupID int) error
}

// GroupService encapsulates group use-cases.
type GroupService struct {
	repo GroupRepository
}

func NewGroupService(repo GroupRepository) *GroupService {
	return &GroupService{repo: repo}
}

func (s *GroupService) GetByID(ctx context.Context, id int) (types.Group, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *GroupService) GetByName(ctx context.Context, name string) (types.Group, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *GroupService) List(ctx context.Context) ([]types.Group, error) {
	return s.repo.List(ctx)
}

func (s *GroupService) MemberCounts(ctx context.Context) (map[string]int, error) {
	return s.repo.MemberCounts(ctx)
}

func (s *GroupService) Create(ctx context.Context, name string) (types.Group, error) {
	return s.repo.Create(ctx, name)
}

func (s *GroupService) Rename(ctx context.Context, id int, newName string) error {
	return s.repo.Rename(ctx, id, newName)
}

func (s *GroupService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *GroupService) AddMember(ctx context.Context, userID, groupID int) error {
	return s.repo.AddMember(ctx, userID, groupID)
}

func (s *GroupService) RemoveMember(ctx context.Context, userID, groupID int) error {
	return s.repo.RemoveMember(ctx, userID, groupID)
}
