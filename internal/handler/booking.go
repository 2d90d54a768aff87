package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/evolve-charging/internal/middleware"
	"github.com/mmeshcher/evolve-charging/internal/model"
)

type bookingResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"userId"`
	StationID       string  `json:"stationId"`
	StationName     string  `json:"stationName"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	SlotNo          int     `json:"slotNo"`
	Status          string  `json:"status"`
	Amount          float64 `json:"amount"`
	EcoPointsEarned int     `json:"ecoPointsEarned"`
	QRCode          string  `json:"qrCode"`
	CreatedAt       string  `json:"createdAt"`
}

func toBookingResponse(b model.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		StationID:       b.StationID,
		StationName:     b.StationName,
		StartTime:       b.StartTime.Format(time.RFC3339),
		EndTime:         b.EndTime.Format(time.RFC3339),
		SlotNo:          b.SlotNo,
		Status:          string(b.Status),
		Amount:          b.Amount,
		EcoPointsEarned: b.EcoPointsEarned,
		QRCode:          b.ScanCode,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
}

func toBookingResponses(bookings []model.Booking) []bookingResponse {
	resp := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, toBookingResponse(b))
	}
	return resp
}

type createBookingRequest struct {
	StationID string    `json:"stationId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// CreateBooking создаёт бронирование от имени текущего пользователя.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeStatus(w, http.StatusUnauthorized)
		return
	}

	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, http.StatusBadRequest)
		return
	}
	if req.StationID == "" {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	b, err := h.service.CreateBooking(r.Context(), model.BookingRequest{
		UserID:    s.UserID,
		StationID: req.StationID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		h.writeError(w, err, "create booking error",
			zap.String("userID", s.UserID),
			zap.String("stationID", req.StationID),
		)
		return
	}

	writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

// ListBookings возвращает бронирования текущего пользователя.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeStatus(w, http.StatusUnauthorized)
		return
	}

	bookings, err := h.service.ListBookingsByUser(r.Context(), s.UserID)
	if err != nil {
		h.writeError(w, err, "list bookings error", zap.String("userID", s.UserID))
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponses(bookings))
}

// GetBooking возвращает бронирование. Водитель видит только свои бронирования.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeStatus(w, http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	b, found, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "get booking error", zap.String("bookingID", id))
		return
	}
	if !found || !canSeeBooking(s, b) {
		writeStatus(w, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

type paymentRequest struct {
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
	CardNumber string  `json:"cardNumber"`
}

type transactionResponse struct {
	ID            string  `json:"id"`
	BookingID     string  `json:"bookingId"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	Method        string  `json:"method"`
	Timestamp     string  `json:"timestamp"`
	TransactionID string  `json:"transactionId"`
}

// ProcessPayment оплачивает бронирование текущего пользователя.
func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeStatus(w, http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	b, found, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "get booking error", zap.String("bookingID", id))
		return
	}
	if !found || !canSeeBooking(s, b) {
		writeStatus(w, http.StatusNotFound)
		return
	}

	tx, err := h.service.ProcessPayment(r.Context(), model.PaymentRequest{
		BookingID:  id,
		Amount:     req.Amount,
		Method:     model.PaymentMethod(req.Method),
		CardNumber: req.CardNumber,
	})
	if err != nil {
		h.writeError(w, err, "process payment error",
			zap.String("userID", s.UserID),
			zap.String("bookingID", id),
		)
		return
	}

	writeJSON(w, http.StatusOK, transactionResponse{
		ID:            tx.ID,
		BookingID:     tx.BookingID,
		Amount:        tx.Amount,
		Status:        string(tx.Status),
		Method:        string(tx.Method),
		Timestamp:     tx.Timestamp.Format(time.RFC3339),
		TransactionID: tx.Reference,
	})
}

func canSeeBooking(s middleware.Session, b model.Booking) bool {
	return s.Role == model.RoleAdmin || b.UserID == s.UserID
}
