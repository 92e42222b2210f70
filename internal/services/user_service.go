package services

import (
	"errors"

	"github.com/google/uuid"

	"dumplin/internal/repositories"
)

var ErrInvalidDumpCount = errors.New("dump_count must be a non-negative integer")

type UserService interface {
	UpdateDumpCount(userID uuid.UUID, count int) error
}

type userService struct {
	repo repositories.UserRepository
}

func NewUserService(repo repositories.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) UpdateDumpCount(userID uuid.UUID, count int) error {
	if count < 0 {
		return ErrInvalidDumpCount
	}
	return s.repo.UpdateDumpCount(userID, count)
}
