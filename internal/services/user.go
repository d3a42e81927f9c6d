package services

import (
	"context"

	userrepo "github.com/yungbote/placeshare-backend/internal/data/repos/user"
	"github.com/yungbote/placeshare-backend/internal/domain/user"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

type UserService interface {
	ListUsers(ctx context.Context) ([]*user.User, error)
}

type userService struct {
	log   *logger.Logger
	users userrepo.UserRepo
}

func NewUserService(log *logger.Logger, users userrepo.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), users: users}
}

func (s *userService) ListUsers(ctx context.Context) ([]*user.User, error) {
	out, err := s.users.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, outward("UserService.ListUsers", "Fetching users failed, please try again later.", err)
	}
	if out == nil {
		out = []*user.User{}
	}
	return out, nil
}
