package services

import (
	"context"

	"github.com/userpanel/adminserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	ListPage(ctx context.Context, offset, limit int) ([]types.User, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateFullName(ctx context.Context, username, fullName string) error
	Delete(ctx context.Context, username string) error
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) ListPage(ctx context.Context, offset, limit int) ([]types.User, error) {
	return s.repo.ListPage(ctx, offset, limit)
}

func (s *UserService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

func (s *UserService) UpdateFullName(ctx context.Context, username, fullName string) error {
	return s.repo.UpdateFullName(ctx, username, fullName)
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	return s.repo.Delete(ctx, username)
}
