// Package metrics содержит счётчики Prometheus для бронирований и платежей.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var bookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "evolve",
	Name:      "bookings_created_total",
	Help:      "Total number of bookings created by station kind.",
}, []string{"kind"})

var paymentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "evolve",
	Name:      "payments_processed_total",
	Help:      "Total number of payment transactions by method and status.",
}, []string{"method", "status"})

var paymentsAmount = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "evolve",
	Name:      "payments_amount_total",
	Help:      "Total amount charged by payment method.",
}, []string{"method"})

var stationsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "evolve",
	Name:      "stations_created_total",
	Help:      "Total number of stations created by hosts.",
})

// ObserveBooking учитывает созданное бронирование.
func ObserveBooking(kind string) {
	if len(kind) == 0 {
		kind = "unknown"
	}
	bookingsCreated.With(prometheus.Labels{"kind": kind}).Inc()
}

// ObservePayment учитывает обработанный платёж.
func ObservePayment(method, status string, amount float64) {
	paymentsProcessed.With(prometheus.Labels{"method": method, "status": status}).Inc()
	if amount > 0 {
		paymentsAmount.With(prometheus.Labels{"method": method}).Add(amount)
	}
}

// ObserveStation учитывает созданную станцию.
func ObserveStation() {
	stationsCreated.Inc()
}
