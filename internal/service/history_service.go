package service

import (
	"context"
	"fmt"

	"github.com/mkajic20/smart-charger-backend/internal/model"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

const (
	defaultUserHistoryPageSize = 5
	defaultFullHistoryPageSize = 20
	msgNoEvents                = "There are no events with that parameters."
)

// HistoryService lists finished charging sessions.
type HistoryService interface {
	GetUsersChargingHistory(ctx context.Context, userID uint, q repository.PageQuery) Result[[]model.Event]
	GetFullChargingHistory(ctx context.Context, q repository.PageQuery) Result[[]model.Event]
}

type historyService struct {
	events repository.EventRepository
	users  repository.UserRepository
}

// NewHistoryService creates a new history service.
func NewHistoryService(events repository.EventRepository, users repository.UserRepository) HistoryService {
	return &historyService{events: events, users: users}
}

func (s *historyService) GetUsersChargingHistory(ctx context.Context, userID uint, q repository.PageQuery) Result[[]model.Event] {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fail[[]model.Event](missing(err, "get user", msgUserNotFound))
	}

	q = q.Normalize(defaultUserHistoryPageSize)
	evts, total, err := s.events.ListClosedByUser(ctx, userID, q)
	if err != nil {
		return fail[[]model.Event](fmt.Errorf("list user events: %w", err))
	}
	return pageOf(evts, total, q, fmt.Sprintf("List of %s's events.", user.FullName()), msgNoEvents)
}

func (s *historyService) GetFullChargingHistory(ctx context.Context, q repository.PageQuery) Result[[]model.Event] {
	q = q.Normalize(defaultFullHistoryPageSize)
	evts, total, err := s.events.ListClosed(ctx, q)
	if err != nil {
		return fail[[]model.Event](fmt.Errorf("list events: %w", err))
	}
	return pageOf(evts, total, q, "List of all events.", msgNoEvents)
}
