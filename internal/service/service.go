// Package service объединяет каталог станций, журнал бронирований и учётные записи в единый API маркетплейса.
package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mmeshcher/evolve-charging/internal/account"
	"github.com/mmeshcher/evolve-charging/internal/catalog"
	"github.com/mmeshcher/evolve-charging/internal/ledger"
	"github.com/mmeshcher/evolve-charging/internal/model"
)

// Service содержит бизнес-логику маркетплейса.
type Service struct {
	catalog  *catalog.Catalog
	ledger   *ledger.Ledger
	accounts *account.Accounts
	latency  time.Duration
}

// Option настраивает Service.
type Option func(*Service)

// WithLatency задаёт искусственную задержку перед каждой операцией.
func WithLatency(d time.Duration) Option {
	return func(s *Service) {
		s.latency = d
	}
}

// NewService создаёт сервис поверх каталога, журнала и учётных записей.
func NewService(cat *catalog.Catalog, led *ledger.Ledger, acc *account.Accounts, opts ...Option) *Service {
	s := &Service{
		catalog:  cat,
		ledger:   led,
		accounts: acc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// simulate имитирует сетевую задержку. Отменённый до начала операции контекст прерывает её.
func (s *Service) simulate(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ListStations возвращает все станции.
func (s *Service) ListStations(ctx context.Context) ([]model.Station, error) {
	if err := s.simulate(ctx); err != nil {
		return nil, err
	}
	return s.catalog.ListStations(ctx)
}

// GetStation возвращает станцию по идентификатору.
func (s *Service) GetStation(ctx context.Context, id string) (model.Station, bool, error) {
	if err := s.simulate(ctx); err != nil {
		return model.Station{}, false, err
	}
	return s.catalog.GetStation(ctx, id)
}

// CreateStation добавляет станцию владельца.
func (s *Service) CreateStation(ctx context.Context, d model.StationDraft) (model.Station, error) {
	if err := s.simulate(ctx); err != nil {
		return model.Station{}, err
	}
	return s.catalog.CreateStation(ctx, d)
}

// ListStationsByHost возвращает станции владельца.
func (s *Service) ListStationsByHost(ctx context.Context, hostID string) ([]model.Station, error) {
	if err := s.simulate(ctx); err != nil {
		return nil, err
	}
	return s.catalog.ListStationsByHost(ctx, hostID)
}

// PredictedWaitTime возвращает прогноз ожидания на станции в минутах.
func (s *Service) PredictedWaitTime(ctx context.Context, stationID string) (int, error) {
	if err := s.simulate(ctx); err != nil {
		return 0, err
	}
	return s.catalog.PredictedWaitTime(ctx, stationID)
}

// CreateBooking создаёт бронирование.
func (s *Service) CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error) {
	if err := s.simulate(ctx); err != nil {
		return model.Booking{}, err
	}
	return s.ledger.CreateBooking(ctx, req)
}

// GetBooking возвращает бронирование по идентификатору.
func (s *Service) GetBooking(ctx context.Context, id string) (model.Booking, bool, error) {
	if err := s.simulate(ctx); err != nil {
		return model.Booking{}, false, err
	}
	return s.ledger.GetBooking(ctx, id)
}

// ListBookingsByUser возвращает бронирования пользователя.
func (s *Service) ListBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	if err := s.simulate(ctx); err != nil {
		return nil, err
	}
	return s.ledger.ListBookingsByUser(ctx, userID)
}

// ListBookingsByStation возвращает бронирования станции.
func (s *Service) ListBookingsByStation(ctx context.Context, stationID string) ([]model.Booking, error) {
	if err := s.simulate(ctx); err != nil {
		return nil, err
	}
	return s.ledger.ListBookingsByStation(ctx, stationID)
}

// ProcessPayment оплачивает бронирование.
func (s *Service) ProcessPayment(ctx context.Context, req model.PaymentRequest) (model.Transaction, error) {
	if err := s.simulate(ctx); err != nil {
		return model.Transaction{}, err
	}
	return s.ledger.ProcessPayment(ctx, req)
}

// Login возвращает пользователя по email.
func (s *Service) Login(ctx context.Context, email string) (model.User, error) {
	if err := s.simulate(ctx); err != nil {
		return model.User{}, err
	}
	return s.accounts.Login(ctx, email)
}

// Register регистрирует пользователя.
func (s *Service) Register(ctx context.Context, name, email string, role model.Role) (model.User, error) {
	if err := s.simulate(ctx); err != nil {
		return model.User{}, err
	}
	return s.accounts.Register(ctx, name, email, role)
}

// GetUser возвращает пользователя по идентификатору.
func (s *Service) GetUser(ctx context.Context, id string) (model.User, bool, error) {
	return s.accounts.GetUser(ctx, id)
}

// EcoBalance возвращает баланс эко-баллов пользователя.
func (s *Service) EcoBalance(ctx context.Context, userID string) (int, error) {
	if err := s.simulate(ctx); err != nil {
		return 0, err
	}
	return s.accounts.EcoBalance(ctx, userID)
}

// AdminStats собирает сводные показатели маркетплейса.
func (s *Service) AdminStats(ctx context.Context) (model.AdminStats, error) {
	if err := s.simulate(ctx); err != nil {
		return model.AdminStats{}, err
	}

	users, err := s.accounts.CountUsers(ctx)
	if err != nil {
		return model.AdminStats{}, fmt.Errorf("count users: %w", err)
	}

	summary, err := s.ledger.Summary(ctx)
	if err != nil {
		return model.AdminStats{}, fmt.Errorf("ledger summary: %w", err)
	}

	stations, err := s.catalog.ListStations(ctx)
	if err != nil {
		return model.AdminStats{}, fmt.Errorf("list stations: %w", err)
	}

	active, total, occupied := 0, 0, 0
	for _, st := range stations {
		if st.Status == model.StationStatusOnline {
			active++
		}
		total += st.SlotsTotal
		occupied += st.SlotsTotal - st.SlotsAvailable
	}

	utilization := 0
	if total > 0 {
		utilization = int(math.Round(float64(occupied) * 100 / float64(total)))
	}

	return model.AdminStats{
		TotalUsers:      users,
		TotalBookings:   summary.TotalBookings,
		TotalRevenue:    summary.TotalRevenue,
		ActiveStations:  active,
		UtilizationRate: utilization,
		EcoPointsIssued: summary.EcoPointsIssued,
	}, nil
}

// BookingTrends возвращает число бронирований по дням.
func (s *Service) BookingTrends(ctx context.Context, days int) ([]model.BookingTrend, error) {
	if err := s.simulate(ctx); err != nil {
		return nil, err
	}
	return s.ledger.BookingTrends(ctx, days)
}

// RevenueTrends возвращает выручку по месяцам.
func (s *Service) RevenueTrends(ctx context.Context, months int) ([]model.RevenueTrend, error) {
	if err := s.simulate(ctx); err != nil {
		return nil, err
	}
	return s.ledger.RevenueTrends(ctx, months)
}

// Reset возвращает каталог, журнал и учётные записи в исходное состояние.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.ledger.Reset(); err != nil {
		return err
	}
	if err := s.accounts.Reset(ctx); err != nil {
		return err
	}
	return s.catalog.Reset(ctx)
}
