package badges

import (
	"context"

	"serotonyl.ru/ecobot/internal/common"
)

// Lister: чтение значков пользователя.
type Lister interface {
	ListForUser(ctx context.Context, userID int64) ([]View, error)
}

// Service отдаёт витрину значков.
type Service struct {
	repo Lister
}

// NewService создаёт сервис значков.
func NewService(repo Lister) *Service {
	return &Service{repo: repo}
}

// GetBadges возвращает все значки с отметкой «получен/не получен» и временем получения.
func (s *Service) GetBadges(ctx context.Context, userID int64) ([]View, error) {
	views, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, common.StorageError("list badges", err)
	}
	return views, nil
}

// CountEarned считает полученные значки.
func CountEarned(views []View) int {
	n := 0
	for _, v := range views {
		if v.Earned {
			n++
		}
	}
	return n
}
