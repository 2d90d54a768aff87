// Package handler содержит HTTP-обработчики API маркетплейса зарядных станций.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/evolve-charging/internal/middleware"
	"github.com/mmeshcher/evolve-charging/internal/model"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	ListStations(ctx context.Context) ([]model.Station, error)
	GetStation(ctx context.Context, id string) (model.Station, bool, error)
	CreateStation(ctx context.Context, d model.StationDraft) (model.Station, error)
	ListStationsByHost(ctx context.Context, hostID string) ([]model.Station, error)
	PredictedWaitTime(ctx context.Context, stationID string) (int, error)

	CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error)
	GetBooking(ctx context.Context, id string) (model.Booking, bool, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ListBookingsByStation(ctx context.Context, stationID string) ([]model.Booking, error)
	ProcessPayment(ctx context.Context, req model.PaymentRequest) (model.Transaction, error)

	Login(ctx context.Context, email string) (model.User, error)
	Register(ctx context.Context, name, email string, role model.Role) (model.User, error)
	GetUser(ctx context.Context, id string) (model.User, bool, error)
	EcoBalance(ctx context.Context, userID string) (int, error)

	AdminStats(ctx context.Context) (model.AdminStats, error)
	BookingTrends(ctx context.Context, days int) ([]model.BookingTrend, error)
	RevenueTrends(ctx context.Context, months int) ([]model.RevenueTrend, error)
}

// Handler реализует HTTP-обработчики API маркетплейса.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	corsOrigins    []string
	serveMetrics   bool
}

// Option настраивает Handler.
type Option func(*Handler)

// WithMetricsEndpoint включает или выключает /metrics на основном роутере.
// Выключается, когда метрики отдаёт отдельный сервер.
func WithMetricsEndpoint(enabled bool) Option {
	return func(h *Handler) {
		h.serveMetrics = enabled
	}
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, corsOrigins []string, opts ...Option) *Handler {
	h := &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		corsOrigins:    corsOrigins,
		serveMetrics:   true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeStatus(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}

// writeError переводит доменную ошибку в HTTP-статус. Непредвиденные ошибки логируются.
func (h *Handler) writeError(w http.ResponseWriter, err error, msg string, fields ...zap.Field) {
	switch {
	case errors.Is(err, model.ErrStationNotFound),
		errors.Is(err, model.ErrBookingNotFound),
		errors.Is(err, model.ErrUserNotFound):
		writeStatus(w, http.StatusNotFound)
	case errors.Is(err, model.ErrInvalidInput):
		writeStatus(w, http.StatusUnprocessableEntity)
	case errors.Is(err, model.ErrUserExists):
		writeStatus(w, http.StatusConflict)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeStatus(w, http.StatusServiceUnavailable)
	default:
		h.logger.Error(msg, append(fields, zap.Error(err))...)
		writeStatus(w, http.StatusInternalServerError)
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Phone     string `json:"phone,omitempty"`
	EcoPoints int    `json:"ecoPoints"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Phone:     u.Phone,
		EcoPoints: u.EcoPoints,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login выполняет вход пользователя по email и устанавливает cookie сессии.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	u, err := h.service.Login(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			writeStatus(w, http.StatusBadRequest)
			return
		}
		h.writeError(w, err, "login error")
		return
	}

	if err := h.authMiddleware.SetAuthCookie(w, u.ID, u.Role); err != nil {
		h.logger.Error("set auth cookie error", zap.Error(err))
		writeStatus(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register регистрирует пользователя и сразу открывает для него сессию.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	u, err := h.service.Register(r.Context(), req.Name, req.Email, model.Role(req.Role))
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			writeStatus(w, http.StatusBadRequest)
			return
		}
		h.writeError(w, err, "register error")
		return
	}

	if err := h.authMiddleware.SetAuthCookie(w, u.ID, u.Role); err != nil {
		h.logger.Error("set auth cookie error", zap.Error(err))
		writeStatus(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// Logout завершает сессию пользователя.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me возвращает профиль текущего пользователя.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeStatus(w, http.StatusUnauthorized)
		return
	}

	u, found, err := h.service.GetUser(r.Context(), s.UserID)
	if err != nil {
		h.writeError(w, err, "get user error", zap.String("userID", s.UserID))
		return
	}
	if !found {
		h.authMiddleware.ClearAuthCookie(w)
		writeStatus(w, http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

type ecoPointsResponse struct {
	UserID    string `json:"userId"`
	EcoPoints int    `json:"ecoPoints"`
}

// GetEcoPoints возвращает баланс эко-баллов текущего пользователя.
func (h *Handler) GetEcoPoints(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeStatus(w, http.StatusUnauthorized)
		return
	}

	balance, err := h.service.EcoBalance(r.Context(), s.UserID)
	if err != nil {
		h.writeError(w, err, "get eco points error", zap.String("userID", s.UserID))
		return
	}

	writeJSON(w, http.StatusOK, ecoPointsResponse{UserID: s.UserID, EcoPoints: balance})
}
