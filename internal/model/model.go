// Package model содержит доменные сущности маркетплейса зарядных станций.
package model

import "time"

// StationKind описывает тип станции.
type StationKind string

const (
	StationKindFast StationKind = "fast"
	StationKindSlow StationKind = "slow"
	StationKindSwap StationKind = "swap"
)

// IsValid сообщает, является ли тип станции допустимым.
func (k StationKind) IsValid() bool {
	switch k {
	case StationKindFast, StationKindSlow, StationKindSwap:
		return true
	default:
		return false
	}
}

// StationStatus описывает эксплуатационный статус станции.
type StationStatus string

const (
	StationStatusOnline      StationStatus = "online"
	StationStatusOffline     StationStatus = "offline"
	StationStatusMaintenance StationStatus = "maintenance"
)

// Station описывает зарядную станцию или станцию замены батарей.
type Station struct {
	ID                string
	Name              string
	Lat               float64
	Lon               float64
	Kind              StationKind
	SlotsTotal        int
	SlotsAvailable    int
	PricePerKwh       float64
	Rating            float64
	HostID            string
	HostName          string
	Status            StationStatus
	Address           string
	Amenities         []string
	Images            []string
	PredictedWaitTime int
}

// Clone возвращает копию станции, не разделяющую срезы с оригиналом.
func (s Station) Clone() Station {
	c := s
	if s.Amenities != nil {
		c.Amenities = append(make([]string, 0, len(s.Amenities)), s.Amenities...)
	}
	if s.Images != nil {
		c.Images = append(make([]string, 0, len(s.Images)), s.Images...)
	}
	return c
}

// StationDraft содержит поля новой станции. Незаданные (nil) поля заполняются значениями по умолчанию.
type StationDraft struct {
	Name        *string
	Lat         *float64
	Lon         *float64
	Kind        *StationKind
	SlotsTotal  *int
	PricePerKwh *float64
	HostID      *string
	HostName    *string
	Address     *string
	Amenities   []string
	Images      []string
}

// BookingStatus описывает статус бронирования.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking описывает бронирование слота станции на интервал времени.
type Booking struct {
	ID              string
	UserID          string
	StationID       string
	StationName     string
	StartTime       time.Time
	EndTime         time.Time
	SlotNo          int
	Status          BookingStatus
	Amount          float64
	EcoPointsEarned int
	ScanCode        string
	CreatedAt       time.Time
}

// BookingRequest содержит параметры создания бронирования.
type BookingRequest struct {
	UserID    string
	StationID string
	StartTime time.Time
	EndTime   time.Time
}

// TransactionStatus описывает результат попытки оплаты.
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// PaymentMethod описывает способ оплаты.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// IsValid сообщает, является ли способ оплаты допустимым.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodWallet:
		return true
	default:
		return false
	}
}

// Transaction описывает результат одной попытки оплаты бронирования.
type Transaction struct {
	ID        string
	BookingID string
	Amount    float64
	Status    TransactionStatus
	Method    PaymentMethod
	Timestamp time.Time
	Reference string
}

// PaymentRequest содержит параметры оплаты бронирования.
type PaymentRequest struct {
	BookingID  string
	Amount     float64
	Method     PaymentMethod
	CardNumber string
}

// Role описывает роль пользователя и набор доступных ему разделов.
type Role string

const (
	RoleRider Role = "user"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

// IsValid сообщает, является ли роль допустимой.
func (r Role) IsValid() bool {
	switch r {
	case RoleRider, RoleHost, RoleAdmin:
		return true
	default:
		return false
	}
}

// User описывает пользователя маркетплейса.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	Phone     string
	EcoPoints int
	CreatedAt time.Time
}

// AdminStats содержит сводные показатели для панели администратора.
type AdminStats struct {
	TotalUsers      int     `json:"totalUsers"`
	TotalBookings   int     `json:"totalBookings"`
	TotalRevenue    float64 `json:"totalRevenue"`
	ActiveStations  int     `json:"activeStations"`
	UtilizationRate int     `json:"utilizationRate"`
	EcoPointsIssued int     `json:"ecoPointsIssued"`
}

// BookingTrend содержит число бронирований за день.
type BookingTrend struct {
	Date     string `json:"date"`
	Bookings int    `json:"bookings"`
}

// RevenueTrend содержит выручку за месяц.
type RevenueTrend struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}
