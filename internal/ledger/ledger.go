// Package ledger реализует журнал бронирований: создание бронирований, расчёт стоимости и эко-баллов, оплату.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/evolve-charging/internal/metrics"
	"github.com/mmeshcher/evolve-charging/internal/model"
	"github.com/mmeshcher/evolve-charging/internal/validation"
)

const (
	// SessionEnergyKwh задаёт объём энергии, по которому считается стоимость одной сессии.
	SessionEnergyKwh = 20
	// EcoPointsPerPriceUnit задаёт число эко-баллов за единицу цены киловатт-часа.
	EcoPointsPerPriceUnit = 2
	// PlatformFee задаёт сервисный сбор, который клиент добавляет к сумме бронирования при оплате.
	PlatformFee = 10.0
)

// Repository описывает хранилище бронирований и транзакций.
type Repository interface {
	AddBooking(ctx context.Context, b model.Booking) error
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	ListBookings(ctx context.Context) ([]model.Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ListBookingsByStation(ctx context.Context, stationID string) ([]model.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (*model.Booking, model.BookingStatus, error)
	AddTransaction(ctx context.Context, t model.Transaction) error
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
}

// Stations предоставляет журналу доступ к каталогу только на чтение.
type Stations interface {
	GetStation(ctx context.Context, id string) (model.Station, bool, error)
}

// Rewards начисляет эко-баллы пользователю.
type Rewards interface {
	AddEcoPoints(ctx context.Context, userID string, points int) error
}

type resetter interface {
	Reset()
}

// Ledger ведёт бронирования и платежи по ним.
type Ledger struct {
	repo     Repository
	stations Stations
	rewards  Rewards
	logger   *zap.Logger

	now    func() time.Time
	slotFn func(n int) int
	newID  func(prefix string) string
}

// New создаёт журнал бронирований. rewards может быть nil, тогда эко-баллы не начисляются.
func New(repo Repository, stations Stations, rewards Rewards, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		repo:     repo,
		stations: stations,
		rewards:  rewards,
		logger:   logger,
		now:      time.Now,
		slotFn:   rand.IntN,
		newID: func(prefix string) string {
			return prefix + "-" + strings.ToUpper(uuid.NewString())
		},
	}
}

// BookingAmount возвращает стоимость сессии для указанной цены за киловатт-час.
func BookingAmount(pricePerKwh float64) float64 {
	return pricePerKwh * SessionEnergyKwh
}

// BookingEcoPoints возвращает число эко-баллов за сессию для указанной цены за киловатт-час.
func BookingEcoPoints(pricePerKwh float64) int {
	return int(math.Floor(pricePerKwh * EcoPointsPerPriceUnit))
}

// CreateBooking создаёт бронирование в статусе pending.
// Доступность слотов станции не проверяется и не уменьшается: номер слота выбирается случайно из [1, SlotsTotal].
func (l *Ledger) CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return model.Booking{}, fmt.Errorf("%w: user id is required", model.ErrInvalidInput)
	}
	if !req.EndTime.After(req.StartTime) {
		return model.Booking{}, fmt.Errorf("%w: end time must be after start time", model.ErrInvalidInput)
	}

	station, ok, err := l.stations.GetStation(ctx, req.StationID)
	if err != nil {
		return model.Booking{}, fmt.Errorf("get station: %w", err)
	}
	if !ok {
		return model.Booking{}, fmt.Errorf("%w: %s", model.ErrStationNotFound, req.StationID)
	}

	slot := 1
	if station.SlotsTotal > 0 {
		slot = l.slotFn(station.SlotsTotal) + 1
	}

	b := model.Booking{
		ID:              l.newID("BKG"),
		UserID:          req.UserID,
		StationID:       station.ID,
		StationName:     station.Name,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		SlotNo:          slot,
		Status:          model.BookingStatusPending,
		Amount:          BookingAmount(station.PricePerKwh),
		EcoPointsEarned: BookingEcoPoints(station.PricePerKwh),
		ScanCode:        l.newID("QR"),
		CreatedAt:       l.now().UTC(),
	}

	if err := l.repo.AddBooking(ctx, b); err != nil {
		return model.Booking{}, fmt.Errorf("add booking: %w", err)
	}

	metrics.ObserveBooking(string(station.Kind))
	l.logger.Info("booking created",
		zap.String("bookingID", b.ID),
		zap.String("userID", b.UserID),
		zap.String("stationID", b.StationID),
		zap.Int("slot", b.SlotNo),
		zap.Float64("amount", b.Amount),
	)

	return b, nil
}

// GetBooking возвращает бронирование по идентификатору; второй результат равен false, если бронирование не найдено.
func (l *Ledger) GetBooking(ctx context.Context, id string) (model.Booking, bool, error) {
	b, err := l.repo.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrBookingNotFound) {
			return model.Booking{}, false, nil
		}
		return model.Booking{}, false, err
	}
	return *b, true, nil
}

// ListBookingsByUser возвращает бронирования пользователя в порядке создания.
func (l *Ledger) ListBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return l.repo.ListBookingsByUser(ctx, userID)
}

// ListBookingsByStation возвращает бронирования станции в порядке создания.
func (l *Ledger) ListBookingsByStation(ctx context.Context, stationID string) ([]model.Booking, error) {
	return l.repo.ListBookingsByStation(ctx, stationID)
}

// ProcessPayment симулирует оплату бронирования и переводит его в статус confirmed.
//
// Оплата неизвестного бронирования завершается ошибкой model.ErrBookingNotFound.
// Повторная оплата не считается ошибкой: создаётся новая успешная транзакция,
// бронирование остаётся confirmed, а эко-баллы начисляются только при первом подтверждении.
// Сумма платежа не сверяется с суммой бронирования.
func (l *Ledger) ProcessPayment(ctx context.Context, req model.PaymentRequest) (model.Transaction, error) {
	method := req.Method
	if method == "" {
		method = model.PaymentMethodCard
	}
	if !method.IsValid() {
		return model.Transaction{}, fmt.Errorf("%w: unknown payment method %q", model.ErrInvalidInput, req.Method)
	}
	if req.Amount < 0 {
		return model.Transaction{}, fmt.Errorf("%w: payment amount must not be negative", model.ErrInvalidInput)
	}
	if method == model.PaymentMethodCard && req.CardNumber != "" &&
		!validation.IsValidCardNumber(req.CardNumber) {
		return model.Transaction{}, fmt.Errorf("%w: card number failed checksum", model.ErrInvalidInput)
	}

	booking, prev, err := l.repo.ConfirmBooking(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, model.ErrBookingNotFound) {
			return model.Transaction{}, fmt.Errorf("%w: %s", model.ErrBookingNotFound, req.BookingID)
		}
		return model.Transaction{}, fmt.Errorf("confirm booking: %w", err)
	}

	tx := model.Transaction{
		ID:        l.newID("TXN"),
		BookingID: booking.ID,
		Amount:    req.Amount,
		Status:    model.TransactionStatusSuccess,
		Method:    method,
		Timestamp: l.now().UTC(),
		Reference: l.newID("PAY"),
	}

	if err := l.repo.AddTransaction(ctx, tx); err != nil {
		return model.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	if prev == model.BookingStatusPending {
		l.creditEcoPoints(ctx, *booking)
	}

	metrics.ObservePayment(string(tx.Method), string(tx.Status), tx.Amount)
	l.logger.Info("payment processed",
		zap.String("transactionID", tx.ID),
		zap.String("bookingID", booking.ID),
		zap.String("previousStatus", string(prev)),
		zap.Float64("amount", tx.Amount),
	)

	return tx, nil
}

func (l *Ledger) creditEcoPoints(ctx context.Context, b model.Booking) {
	if l.rewards == nil || b.EcoPointsEarned == 0 {
		return
	}
	if err := l.rewards.AddEcoPoints(ctx, b.UserID, b.EcoPointsEarned); err != nil {
		l.logger.Warn("eco points not credited",
			zap.Error(err),
			zap.String("userID", b.UserID),
			zap.String("bookingID", b.ID),
		)
	}
}

// Reset очищает журнал. Поддерживается только хранилищем в памяти.
func (l *Ledger) Reset() error {
	r, ok := l.repo.(resetter)
	if !ok {
		return errors.New("ledger repository does not support reset")
	}
	r.Reset()
	return nil
}
