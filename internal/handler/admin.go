package handler

import (
	"net/http"
	"strconv"
)

const (
	defaultTrendDays   = 7
	defaultTrendMonths = 6
)

// GetAdminStats возвращает сводные показатели маркетплейса.
func (h *Handler) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.AdminStats(r.Context())
	if err != nil {
		h.writeError(w, err, "admin stats error")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// GetBookingTrends возвращает число бронирований по дням; период задаётся параметром days.
func (h *Handler) GetBookingTrends(w http.ResponseWriter, r *http.Request) {
	days, ok := intQuery(r, "days", defaultTrendDays)
	if !ok {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	trends, err := h.service.BookingTrends(r.Context(), days)
	if err != nil {
		h.writeError(w, err, "booking trends error")
		return
	}

	writeJSON(w, http.StatusOK, trends)
}

// GetRevenueTrends возвращает выручку по месяцам; период задаётся параметром months.
func (h *Handler) GetRevenueTrends(w http.ResponseWriter, r *http.Request) {
	months, ok := intQuery(r, "months", defaultTrendMonths)
	if !ok {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	trends, err := h.service.RevenueTrends(r.Context(), months)
	if err != nil {
		h.writeError(w, err, "revenue trends error")
		return
	}

	writeJSON(w, http.StatusOK, trends)
}

func intQuery(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
