// Package companion: service.go отвечает за выбор компаньона, каталог и выдачу владения.
package companion

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
)

// Store: операции хранилища, которые нужны сервису.
type Store interface {
	Get(ctx context.Context, id int64) (*Companion, error)
	List(ctx context.Context, userID int64) ([]ListItem, error)
	Collection(ctx context.Context, userID int64) ([]CollectionItem, error)
	Stages(ctx context.Context, companionID int64) ([]Stage, error)
	Ownership(ctx context.Context, userID, companionID int64) (*Ownership, error)
	InsertOwnership(ctx context.Context, userID, companionID int64) (bool, error)
	Select(ctx context.Context, userID, companionID int64) error
	SelectedProgress(ctx context.Context, userID int64) (*Progress, error)
	GrantPlanetPass(ctx context.Context, userID int64) (int64, error)
}

// Service управляет компаньонами пользователя.
type Service struct {
	store Store
}

// NewService создаёт сервис компаньонов.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Select делает компаньона выбранным.
//
//   - нет такого компаньона → common.ErrCompanionNotFound;
//   - уже открыт → просто выбираем;
//   - бесплатный и не открыт → открываем на стадии 1 и выбираем;
//   - премиальный и не открыт → common.ErrCompanionLocked (открывает только платёжный сервис).
func (s *Service) Select(ctx context.Context, userID, companionID int64) (*Companion, error) {
	c, err := s.store.Get(ctx, companionID)
	if err != nil {
		return nil, wrapStore("get companion", err)
	}

	own, err := s.store.Ownership(ctx, userID, companionID)
	if err != nil {
		return nil, wrapStore("get ownership", err)
	}

	if own == nil {
		if c.IsPremium {
			return nil, common.ErrCompanionLocked
		}
		created, err := s.store.InsertOwnership(ctx, userID, companionID)
		if err != nil {
			return nil, wrapStore("unlock free companion", err)
		}
		if created {
			log.WithFields(log.Fields{"user_id": userID, "companion_id": companionID}).Info("Бесплатный компаньон открыт")
		}
	}

	if err := s.store.Select(ctx, userID, companionID); err != nil {
		return nil, wrapStore("select companion", err)
	}
	log.WithFields(log.Fields{"user_id": userID, "companion_id": companionID}).Info("Компаньон выбран")
	return c, nil
}

// List возвращает каталог с отметками для пользователя.
func (s *Service) List(ctx context.Context, userID int64) ([]ListItem, error) {
	items, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, wrapStore("list companions", err)
	}
	return items, nil
}

// Collection возвращает открытых компаньонов пользователя.
func (s *Service) Collection(ctx context.Context, userID int64) ([]CollectionItem, error) {
	items, err := s.store.Collection(ctx, userID)
	if err != nil {
		return nil, wrapStore("collection", err)
	}
	return items, nil
}

// Stages возвращает стадии компаньона и текущую стадию пользователя (0, если не открыт).
func (s *Service) Stages(ctx context.Context, userID, companionID int64) (*StagesView, error) {
	c, err := s.store.Get(ctx, companionID)
	if err != nil {
		return nil, wrapStore("get companion", err)
	}
	stages, err := s.store.Stages(ctx, companionID)
	if err != nil {
		return nil, wrapStore("stages", err)
	}
	own, err := s.store.Ownership(ctx, userID, companionID)
	if err != nil {
		return nil, wrapStore("get ownership", err)
	}

	view := &StagesView{Companion: *c, Stages: stages}
	if own != nil {
		view.CurrentStage = own.CurrentStage
	}
	return view, nil
}

// SelectedProgress возвращает прогресс выбранного компаньона или nil.
func (s *Service) SelectedProgress(ctx context.Context, userID int64) (*Progress, error) {
	p, err := s.store.SelectedProgress(ctx, userID)
	if err != nil {
		return nil, wrapStore("selected progress", err)
	}
	return p, nil
}

// GrantOwnership открывает компаньона по факту оплаты. Повтор: no-op.
// Возвращает true, если компаньон открыт впервые.
func (s *Service) GrantOwnership(ctx context.Context, userID, companionID int64) (bool, error) {
	if _, err := s.store.Get(ctx, companionID); err != nil {
		return false, wrapStore("get companion", err)
	}
	created, err := s.store.InsertOwnership(ctx, userID, companionID)
	if err != nil {
		return false, wrapStore("grant ownership", err)
	}
	log.WithFields(log.Fields{
		"user_id":      userID,
		"companion_id": companionID,
		"created":      created,
	}).Info("Владение компаньоном записано")
	return created, nil
}

// GrantPlanetPass включает премиум и открывает всех премиальных компаньонов.
func (s *Service) GrantPlanetPass(ctx context.Context, userID int64) (int64, error) {
	n, err := s.store.GrantPlanetPass(ctx, userID)
	if err != nil {
		return 0, wrapStore("planet pass", err)
	}
	log.WithFields(log.Fields{"user_id": userID, "unlocked": n}).Info("Planet Pass выдан")
	return n, nil
}

// wrapStore пропускает доменные ошибки как есть, остальное превращает в ErrStorage.
func wrapStore(op string, err error) error {
	if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrForbidden) {
		return err
	}
	return common.StorageError(op, err)
}
