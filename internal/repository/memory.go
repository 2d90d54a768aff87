package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/mmeshcher/evolve-charging/internal/model"
)

// StationMemory хранит станции в памяти процесса. Порядок вставки сохраняется.
type StationMemory struct {
	mu       sync.RWMutex
	stations []model.Station
}

// NewStationMemory создаёт пустое хранилище станций.
func NewStationMemory() *StationMemory {
	return &StationMemory{}
}

// ListStations возвращает копии всех станций в порядке добавления.
func (m *StationMemory) ListStations(_ context.Context) ([]model.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make([]model.Station, 0, len(m.stations))
	for _, s := range m.stations {
		res = append(res, s.Clone())
	}
	return res, nil
}

// GetStation возвращает станцию по идентификатору.
func (m *StationMemory) GetStation(_ context.Context, id string) (*model.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.stations {
		if s.ID == id {
			c := s.Clone()
			return &c, nil
		}
	}
	return nil, model.ErrStationNotFound
}

// AddStation добавляет станцию в конец списка.
func (m *StationMemory) AddStation(_ context.Context, s model.Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stations = append(m.stations, s.Clone())
	return nil
}

// ListStationsByHost возвращает станции указанного владельца.
func (m *StationMemory) ListStationsByHost(_ context.Context, hostID string) ([]model.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make([]model.Station, 0)
	for _, s := range m.stations {
		if s.HostID == hostID {
			res = append(res, s.Clone())
		}
	}
	return res, nil
}

// CountStations возвращает число станций.
func (m *StationMemory) CountStations(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stations), nil
}

// Reset удаляет все станции.
func (m *StationMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations = nil
}

// BookingMemory хранит бронирования и платёжные транзакции в памяти процесса.
type BookingMemory struct {
	mu           sync.RWMutex
	bookings     []model.Booking
	transactions []model.Transaction
}

// NewBookingMemory создаёт пустой журнал бронирований.
func NewBookingMemory() *BookingMemory {
	return &BookingMemory{}
}

// AddBooking добавляет бронирование.
func (m *BookingMemory) AddBooking(_ context.Context, b model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bookings = append(m.bookings, b)
	return nil
}

// GetBooking возвращает бронирование по идентификатору.
func (m *BookingMemory) GetBooking(_ context.Context, id string) (*model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.bookings {
		if b.ID == id {
			c := b
			return &c, nil
		}
	}
	return nil, model.ErrBookingNotFound
}

// ListBookings возвращает все бронирования в порядке создания.
func (m *BookingMemory) ListBookings(_ context.Context) ([]model.Booking, error) {
	return m.filter(func(model.Booking) bool { return true }), nil
}

// ListBookingsByUser возвращает бронирования пользователя в порядке создания.
func (m *BookingMemory) ListBookingsByUser(_ context.Context, userID string) ([]model.Booking, error) {
	return m.filter(func(b model.Booking) bool { return b.UserID == userID }), nil
}

// ListBookingsByStation возвращает бронирования станции в порядке создания.
func (m *BookingMemory) ListBookingsByStation(_ context.Context, stationID string) ([]model.Booking, error) {
	return m.filter(func(b model.Booking) bool { return b.StationID == stationID }), nil
}

func (m *BookingMemory) filter(keep func(model.Booking) bool) []model.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make([]model.Booking, 0)
	for _, b := range m.bookings {
		if keep(b) {
			res = append(res, b)
		}
	}
	return res
}

// ConfirmBooking переводит бронирование в статус confirmed и возвращает его вместе с предыдущим статусом.
func (m *BookingMemory) ConfirmBooking(_ context.Context, id string) (*model.Booking, model.BookingStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.bookings {
		if m.bookings[i].ID != id {
			continue
		}
		prev := m.bookings[i].Status
		m.bookings[i].Status = model.BookingStatusConfirmed
		c := m.bookings[i]
		return &c, prev, nil
	}
	return nil, "", model.ErrBookingNotFound
}

// AddTransaction сохраняет платёжную транзакцию.
func (m *BookingMemory) AddTransaction(_ context.Context, t model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions = append(m.transactions, t)
	return nil
}

// ListTransactions возвращает все транзакции в порядке создания.
func (m *BookingMemory) ListTransactions(_ context.Context) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]model.Transaction{}, m.transactions...), nil
}

// Reset очищает журнал.
func (m *BookingMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = nil
	m.transactions = nil
}

// UserMemory хранит пользователей в памяти процесса.
type UserMemory struct {
	mu    sync.RWMutex
	users []model.User
}

// NewUserMemory создаёт пустое хранилище пользователей.
func NewUserMemory() *UserMemory {
	return &UserMemory{}
}

// CreateUser сохраняет пользователя. Email сравнивается без учёта регистра.
func (m *UserMemory) CreateUser(_ context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.ID == u.ID || strings.EqualFold(existing.Email, u.Email) {
			return model.ErrUserExists
		}
	}
	m.users = append(m.users, u)
	return nil
}

// GetUser возвращает пользователя по идентификатору.
func (m *UserMemory) GetUser(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ID == id {
			c := u
			return &c, nil
		}
	}
	return nil, model.ErrUserNotFound
}

// GetUserByEmail возвращает пользователя по email.
func (m *UserMemory) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			c := u
			return &c, nil
		}
	}
	return nil, model.ErrUserNotFound
}

// AddEcoPoints начисляет эко-баллы пользователю.
func (m *UserMemory) AddEcoPoints(_ context.Context, userID string, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if m.users[i].ID == userID {
			m.users[i].EcoPoints += points
			return nil
		}
	}
	return model.ErrUserNotFound
}

// CountUsers возвращает число пользователей.
func (m *UserMemory) CountUsers(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

// Reset удаляет всех пользователей.
func (m *UserMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = nil
}
