package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/evolve-charging/internal/middleware"
	"github.com/mmeshcher/evolve-charging/internal/model"
)

type stationResponse struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Lat               float64  `json:"lat"`
	Lon               float64  `json:"lon"`
	Type              string   `json:"type"`
	SlotsTotal        int      `json:"slotsTotal"`
	SlotsAvailable    int      `json:"slotsAvailable"`
	PricePerKwh       float64  `json:"pricePerKwh"`
	Rating            float64  `json:"rating"`
	HostID            string   `json:"hostId"`
	HostName          string   `json:"hostName"`
	Status            string   `json:"status"`
	Address           string   `json:"address"`
	Amenities         []string `json:"amenities"`
	Images            []string `json:"images,omitempty"`
	PredictedWaitTime int      `json:"predictedWaitTime,omitempty"`
}

func toStationResponse(s model.Station) stationResponse {
	amenities := s.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return stationResponse{
		ID:                s.ID,
		Name:              s.Name,
		Lat:               s.Lat,
		Lon:               s.Lon,
		Type:              string(s.Kind),
		SlotsTotal:        s.SlotsTotal,
		SlotsAvailable:    s.SlotsAvailable,
		PricePerKwh:       s.PricePerKwh,
		Rating:            s.Rating,
		HostID:            s.HostID,
		HostName:          s.HostName,
		Status:            string(s.Status),
		Address:           s.Address,
		Amenities:         amenities,
		Images:            s.Images,
		PredictedWaitTime: s.PredictedWaitTime,
	}
}

func toStationResponses(stations []model.Station) []stationResponse {
	resp := make([]stationResponse, 0, len(stations))
	for _, s := range stations {
		resp = append(resp, toStationResponse(s))
	}
	return resp
}

// ListStations возвращает все станции.
func (h *Handler) ListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.service.ListStations(r.Context())
	if err != nil {
		h.writeError(w, err, "list stations error")
		return
	}

	writeJSON(w, http.StatusOK, toStationResponses(stations))
}

// GetStation возвращает станцию по идентификатору.
func (h *Handler) GetStation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s, ok, err := h.service.GetStation(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "get station error", zap.String("stationID", id))
		return
	}
	if !ok {
		writeStatus(w, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, toStationResponse(s))
}

type waitTimeResponse struct {
	StationID         string `json:"stationId"`
	PredictedWaitTime int    `json:"predictedWaitTime"`
}

// GetWaitTime возвращает прогноз ожидания на станции в минутах.
func (h *Handler) GetWaitTime(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	minutes, err := h.service.PredictedWaitTime(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "predicted wait time error", zap.String("stationID", id))
		return
	}

	writeJSON(w, http.StatusOK, waitTimeResponse{StationID: id, PredictedWaitTime: minutes})
}

type createStationRequest struct {
	Name        *string  `json:"name"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Type        *string  `json:"type"`
	SlotsTotal  *int     `json:"slotsTotal"`
	PricePerKwh *float64 `json:"pricePerKwh"`
	Address     *string  `json:"address"`
	Amenities   []string `json:"amenities"`
	Images      []string `json:"images"`
}

// CreateStation добавляет станцию от имени текущего владельца.
func (h *Handler) CreateStation(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeStatus(w, http.StatusUnauthorized)
		return
	}

	var req createStationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	draft := model.StationDraft{
		Name:        req.Name,
		Lat:         req.Lat,
		Lon:         req.Lon,
		SlotsTotal:  req.SlotsTotal,
		PricePerKwh: req.PricePerKwh,
		HostID:      &s.UserID,
		Address:     req.Address,
		Amenities:   req.Amenities,
		Images:      req.Images,
	}
	if req.Type != nil {
		kind := model.StationKind(*req.Type)
		draft.Kind = &kind
	}

	host, found, err := h.service.GetUser(r.Context(), s.UserID)
	if err != nil {
		h.writeError(w, err, "get host error", zap.String("userID", s.UserID))
		return
	}
	if found {
		draft.HostName = &host.Name
	}

	station, err := h.service.CreateStation(r.Context(), draft)
	if err != nil {
		h.writeError(w, err, "create station error", zap.String("hostID", s.UserID))
		return
	}

	writeJSON(w, http.StatusCreated, toStationResponse(station))
}

// ListHostStations возвращает станции текущего владельца.
func (h *Handler) ListHostStations(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeStatus(w, http.StatusUnauthorized)
		return
	}

	stations, err := h.service.ListStationsByHost(r.Context(), s.UserID)
	if err != nil {
		h.writeError(w, err, "list host stations error", zap.String("hostID", s.UserID))
		return
	}

	writeJSON(w, http.StatusOK, toStationResponses(stations))
}

// ListStationBookings возвращает бронирования станции. Владелец видит только бронирования своих станций.
func (h *Handler) ListStationBookings(w http.ResponseWriter, r *http.Request) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeStatus(w, http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	station, found, err := h.service.GetStation(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "get station error", zap.String("stationID", id))
		return
	}
	if !found {
		writeStatus(w, http.StatusNotFound)
		return
	}
	if s.Role == model.RoleHost && station.HostID != s.UserID {
		writeStatus(w, http.StatusForbidden)
		return
	}

	bookings, err := h.service.ListBookingsByStation(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "list station bookings error", zap.String("stationID", id))
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponses(bookings))
}
