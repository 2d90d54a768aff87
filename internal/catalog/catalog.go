// Package catalog реализует каталог зарядных станций: поиск, фильтрацию и добавление станций владельцами.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/evolve-charging/internal/metrics"
	"github.com/mmeshcher/evolve-charging/internal/model"
)

// Значения по умолчанию для полей новой станции.
const (
	DefaultName        = "New Station"
	DefaultKind        = model.StationKindFast
	DefaultSlotsTotal  = 4
	DefaultPricePerKwh = 12.0
	DefaultLat         = 12.9716
	DefaultLon         = 77.5946
	DefaultHostID      = "2"
	DefaultHostName    = "Host"
	InitialRating      = 5.0

	// FallbackWaitTime используется, когда прогноз ожидания для станции неизвестен.
	FallbackWaitTime = 15
)

// Repository описывает хранилище станций, используемое каталогом.
type Repository interface {
	ListStations(ctx context.Context) ([]model.Station, error)
	GetStation(ctx context.Context, id string) (*model.Station, error)
	AddStation(ctx context.Context, s model.Station) error
	ListStationsByHost(ctx context.Context, hostID string) ([]model.Station, error)
	CountStations(ctx context.Context) (int, error)
}

type resetter interface {
	Reset()
}

// Catalog хранит станции маркетплейса и отвечает на запросы к ним.
type Catalog struct {
	repo   Repository
	logger *zap.Logger
	newID  func() string
}

// New создаёт каталог поверх указанного хранилища.
func New(repo Repository, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		repo:   repo,
		logger: logger,
		newID: func() string {
			return "STN-" + uuid.NewString()
		},
	}
}

// ListStations возвращает все станции в порядке добавления.
func (c *Catalog) ListStations(ctx context.Context) ([]model.Station, error) {
	return c.repo.ListStations(ctx)
}

// GetStation возвращает станцию по идентификатору. Отсутствие станции не является ошибкой: второй результат равен false.
func (c *Catalog) GetStation(ctx context.Context, id string) (model.Station, bool, error) {
	s, err := c.repo.GetStation(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrStationNotFound) {
			return model.Station{}, false, nil
		}
		return model.Station{}, false, err
	}
	return *s, true, nil
}

// ListStationsByHost возвращает станции владельца.
func (c *Catalog) ListStationsByHost(ctx context.Context, hostID string) ([]model.Station, error) {
	return c.repo.ListStationsByHost(ctx, hostID)
}

// CreateStation добавляет станцию, заполняя незаданные поля значениями по умолчанию.
func (c *Catalog) CreateStation(ctx context.Context, d model.StationDraft) (model.Station, error) {
	if err := validateDraft(d); err != nil {
		return model.Station{}, err
	}

	s := model.Station{
		ID:                c.newID(),
		Name:              stringOr(d.Name, DefaultName),
		Lat:               floatOr(d.Lat, DefaultLat),
		Lon:               floatOr(d.Lon, DefaultLon),
		Kind:              DefaultKind,
		SlotsTotal:        DefaultSlotsTotal,
		PricePerKwh:       floatOr(d.PricePerKwh, DefaultPricePerKwh),
		Rating:            InitialRating,
		HostID:            stringOr(d.HostID, DefaultHostID),
		HostName:          stringOr(d.HostName, DefaultHostName),
		Status:            model.StationStatusOnline,
		Address:           stringOr(d.Address, ""),
		Amenities:         append([]string{}, d.Amenities...),
		Images:            append([]string{}, d.Images...),
		PredictedWaitTime: 0,
	}
	if d.Kind != nil {
		s.Kind = *d.Kind
	}
	if d.SlotsTotal != nil {
		s.SlotsTotal = *d.SlotsTotal
	}
	s.SlotsAvailable = s.SlotsTotal

	if err := c.repo.AddStation(ctx, s); err != nil {
		return model.Station{}, fmt.Errorf("add station: %w", err)
	}

	metrics.ObserveStation()
	c.logger.Info("station created",
		zap.String("stationID", s.ID),
		zap.String("hostID", s.HostID),
		zap.Int("slots", s.SlotsTotal),
	)

	return s, nil
}

// PredictedWaitTime возвращает прогноз ожидания на станции в минутах.
func (c *Catalog) PredictedWaitTime(ctx context.Context, stationID string) (int, error) {
	s, ok, err := c.GetStation(ctx, stationID)
	if err != nil {
		return 0, err
	}
	if !ok || s.PredictedWaitTime <= 0 {
		return FallbackWaitTime, nil
	}
	return s.PredictedWaitTime, nil
}

// Seed заполняет пустой каталог демонстрационными станциями.
func (c *Catalog) Seed(ctx context.Context) error {
	n, err := c.repo.CountStations(ctx)
	if err != nil {
		return fmt.Errorf("count stations: %w", err)
	}
	if n > 0 {
		return nil
	}

	for _, s := range SeedStations() {
		if err := c.repo.AddStation(ctx, s); err != nil {
			return fmt.Errorf("seed station %s: %w", s.ID, err)
		}
	}
	return nil
}

// Reset возвращает каталог в исходное состояние. Поддерживается только хранилищем в памяти.
func (c *Catalog) Reset(ctx context.Context) error {
	r, ok := c.repo.(resetter)
	if !ok {
		return errors.New("catalog repository does not support reset")
	}
	r.Reset()
	return c.Seed(ctx)
}

func validateDraft(d model.StationDraft) error {
	if d.SlotsTotal != nil && *d.SlotsTotal <= 0 {
		return fmt.Errorf("%w: slots total must be positive", model.ErrInvalidInput)
	}
	if d.PricePerKwh != nil && *d.PricePerKwh < 0 {
		return fmt.Errorf("%w: price per kWh must not be negative", model.ErrInvalidInput)
	}
	if d.Kind != nil && !d.Kind.IsValid() {
		return fmt.Errorf("%w: unknown station kind %q", model.ErrInvalidInput, *d.Kind)
	}
	if d.Lat != nil && (*d.Lat < -90 || *d.Lat > 90) {
		return fmt.Errorf("%w: latitude out of range", model.ErrInvalidInput)
	}
	if d.Lon != nil && (*d.Lon < -180 || *d.Lon > 180) {
		return fmt.Errorf("%w: longitude out of range", model.ErrInvalidInput)
	}
	return nil
}

// stringOr считает пустую строку незаданной.
func stringOr(v *string, def string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def
	}
	return strings.TrimSpace(*v)
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
