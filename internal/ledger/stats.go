package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/mmeshcher/evolve-charging/internal/model"
)

// Summary содержит итоговые показатели журнала.
type Summary struct {
	TotalBookings   int
	TotalRevenue    float64
	EcoPointsIssued int
}

// Summary считает итоги по всем бронированиям и успешным транзакциям.
func (l *Ledger) Summary(ctx context.Context) (Summary, error) {
	bookings, err := l.repo.ListBookings(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list bookings: %w", err)
	}
	txs, err := l.repo.ListTransactions(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list transactions: %w", err)
	}

	var s Summary
	s.TotalBookings = len(bookings)
	for _, b := range bookings {
		if b.Status == model.BookingStatusConfirmed || b.Status == model.BookingStatusCompleted {
			s.EcoPointsIssued += b.EcoPointsEarned
		}
	}
	for _, t := range txs {
		if t.Status == model.TransactionStatusSuccess {
			s.TotalRevenue += t.Amount
		}
	}
	return s, nil
}

// BookingTrends возвращает число созданных бронирований по дням (UTC) за последние days дней, включая текущий.
func (l *Ledger) BookingTrends(ctx context.Context, days int) ([]model.BookingTrend, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", model.ErrInvalidInput)
	}

	bookings, err := l.repo.ListBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	today := truncateDay(l.now().UTC())
	first := today.AddDate(0, 0, -(days - 1))

	counts := make(map[string]int, days)
	for _, b := range bookings {
		day := truncateDay(b.CreatedAt.UTC())
		if day.Before(first) || day.After(today) {
			continue
		}
		counts[day.Format(time.DateOnly)]++
	}

	res := make([]model.BookingTrend, 0, days)
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		res = append(res, model.BookingTrend{Date: key, Bookings: counts[key]})
	}
	return res, nil
}

// RevenueTrends возвращает выручку успешных транзакций по месяцам (UTC) за последние months месяцев, включая текущий.
func (l *Ledger) RevenueTrends(ctx context.Context, months int) ([]model.RevenueTrend, error) {
	if months <= 0 {
		return nil, fmt.Errorf("%w: months must be positive", model.ErrInvalidInput)
	}

	txs, err := l.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	now := l.now().UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	first := current.AddDate(0, -(months - 1), 0)

	sums := make(map[time.Time]float64, months)
	for _, t := range txs {
		if t.Status != model.TransactionStatusSuccess {
			continue
		}
		ts := t.Timestamp.UTC()
		month := time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
		if month.Before(first) || month.After(current) {
			continue
		}
		sums[month] += t.Amount
	}

	res := make([]model.RevenueTrend, 0, months)
	for m := first; !m.After(current); m = m.AddDate(0, 1, 0) {
		res = append(res, model.RevenueTrend{Month: m.Format("Jan"), Revenue: sums[m]})
	}
	return res, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
