// Package admin: service.go содержит логику аутентификации, управления сессиями
// и ручной выдачи компаньонов.
package admin

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
)

// Store: сессии и попытки входа.
type Store interface {
	CreateSession(ctx context.Context, session *AdminSession) error
	GetActiveSession(ctx context.Context, userID int64) (*AdminSession, error)
	DeactivateSession(ctx context.Context, userID int64) error
	UpdateActivity(ctx context.Context, userID int64) error
	LogAttempt(ctx context.Context, userID int64, success bool) error
	GetRecentAttempts(ctx context.Context, userID int64, since time.Time) (int, error)
}

// AdminChecker: флаг is_admin из таблицы участников.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// Granter: выдача владения компаньонами.
type Granter interface {
	GrantOwnership(ctx context.Context, userID, companionID int64) (bool, error)
	GrantPlanetPass(ctx context.Context, userID int64) (int64, error)
}

// Options: параметры админки.
type Options struct {
	PasswordHash string
	AdminIDs     []int64 // ADMIN_IDS из конфига
}

// Service управляет админ-панелью.
type Service struct {
	repo       Store
	members    AdminChecker
	companions Granter
	opts       Options
	states     map[int64]*AdminState // Состояния диалогов (in-memory)
	statesMu   sync.RWMutex
	now        func() time.Time
}

// NewService создаёт сервис админ-панели.
func NewService(repo Store, members AdminChecker, companions Granter, opts Options) *Service {
	return &Service{
		repo:       repo,
		members:    members,
		companions: companions,
		opts:       opts,
		states:     make(map[int64]*AdminState),
		now:        time.Now,
	}
}

// IsAdmin: пользователь в ADMIN_IDS или помечен is_admin в БД.
func (s *Service) IsAdmin(ctx context.Context, userID int64) bool {
	for _, id := range s.opts.AdminIDs {
		if id == userID {
			return true
		}
	}
	ok, err := s.members.IsAdmin(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось проверить права администратора")
		return false
	}
	return ok
}

// VerifyPassword проверяет пароль администратора.
// Три неудачные попытки за час блокируют вход до конца окна.
func (s *Service) VerifyPassword(ctx context.Context, userID int64, password string) error {
	attempts, err := s.repo.GetRecentAttempts(ctx, userID, s.now().Add(-AttemptsWindow))
	if err != nil {
		return common.StorageError("admin attempts", err)
	}
	if attempts >= MaxFailedAttempts {
		return common.ErrTooManyAttempts
	}

	match := CheckPassword(password, s.opts.PasswordHash)
	if err := s.repo.LogAttempt(ctx, userID, match); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Не удалось записать попытку входа")
	}
	if !match {
		log.WithField("user_id", userID).Warn("Неверный пароль администратора")
		return common.ErrWrongPassword
	}

	token, err := generateSecureToken()
	if err != nil {
		return err
	}
	session := &AdminSession{
		UserID:       userID,
		SessionToken: token,
		ExpiresAt:    s.now().Add(SessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return common.StorageError("admin session", err)
	}
	log.WithField("user_id", userID).Info("Администратор вошёл в панель")
	return nil
}

// HasActiveSession проверяет, есть ли у пользователя активная сессия.
func (s *Service) HasActiveSession(ctx context.Context, userID int64) bool {
	session, err := s.repo.GetActiveSession(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка чтения админ-сессии")
		return false
	}
	if session == nil {
		return false
	}
	if err := s.repo.UpdateActivity(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось обновить активность сессии")
	}
	return true
}

// Logout завершает сессию.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	s.ClearState(userID)
	if err := s.repo.DeactivateSession(ctx, userID); err != nil {
		return common.StorageError("admin logout", err)
	}
	return nil
}

// GrantCompanion открывает компаньона пользователю вручную.
func (s *Service) GrantCompanion(ctx context.Context, adminID, userID, companionID int64) (bool, error) {
	created, err := s.companions.GrantOwnership(ctx, userID, companionID)
	if err != nil {
		return false, err
	}
	log.WithFields(log.Fields{
		"admin_id":     adminID,
		"user_id":      userID,
		"companion_id": companionID,
	}).Info("Компаньон выдан вручную")
	return created, nil
}

// GrantPass выдаёт Planet Pass вручную.
func (s *Service) GrantPass(ctx context.Context, adminID, userID int64) (int64, error) {
	n, err := s.companions.GrantPlanetPass(ctx, userID)
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{"admin_id": adminID, "user_id": userID}).Info("Planet Pass выдан вручную")
	return n, nil
}

// GetState возвращает текущее состояние диалога.
func (s *Service) GetState(userID int64) *AdminState {
	s.statesMu.RLock()
	defer s.statesMu.RUnlock()

	state, ok := s.states[userID]
	if !ok || s.now().After(state.ExpiresAt) {
		return nil
	}
	return state
}

// SetState устанавливает состояние диалога.
func (s *Service) SetState(userID int64, stateName string) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()

	s.states[userID] = &AdminState{
		State:     stateName,
		ExpiresAt: s.now().Add(StateTTL),
	}
}

// ClearState сбрасывает состояние диалога.
func (s *Service) ClearState(userID int64) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	delete(s.states, userID)
}

// CleanupStates удаляет истёкшие состояния. Вызывается планировщиком.
func (s *Service) CleanupStates() int {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()

	n := 0
	now := s.now()
	for id, st := range s.states {
		if now.After(st.ExpiresAt) {
			delete(s.states, id)
			n++
		}
	}
	return n
}

