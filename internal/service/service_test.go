package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/evolve-charging/internal/account"
	"github.com/mmeshcher/evolve-charging/internal/catalog"
	"github.com/mmeshcher/evolve-charging/internal/ledger"
	"github.com/mmeshcher/evolve-charging/internal/model"
	"github.com/mmeshcher/evolve-charging/internal/repository"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()

	ctx := context.Background()

	cat := catalog.New(repository.NewStationMemory(), nil)
	if err := cat.Seed(ctx); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	acc := account.New(repository.NewUserMemory(), nil)
	if err := acc.Seed(ctx); err != nil {
		t.Fatalf("seed accounts: %v", err)
	}

	led := ledger.New(repository.NewBookingMemory(), cat, acc, nil)

	return NewService(cat, led, acc, opts...)
}

func TestBookingFlow_CreditsEcoPoints(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	start := time.Now().Add(time.Hour)
	b, err := svc.CreateBooking(ctx, model.BookingRequest{
		UserID:    account.RiderID,
		StationID: "4",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBooking error: %v", err)
	}

	tx, err := svc.ProcessPayment(ctx, model.PaymentRequest{
		BookingID: b.ID,
		Amount:    b.Amount + ledger.PlatformFee,
		Method:    model.PaymentMethodUPI,
	})
	if err != nil {
		t.Fatalf("ProcessPayment error: %v", err)
	}
	if tx.Status != model.TransactionStatusSuccess {
		t.Fatalf("status = %s, want success", tx.Status)
	}

	balance, err := svc.EcoBalance(ctx, account.RiderID)
	if err != nil {
		t.Fatalf("EcoBalance error: %v", err)
	}
	if balance != 850+36 {
		t.Fatalf("balance = %d, want %d", balance, 850+36)
	}
}

func TestAdminStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	start := time.Now()
	b, err := svc.CreateBooking(ctx, model.BookingRequest{
		UserID:    account.RiderID,
		StationID: "1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBooking error: %v", err)
	}
	if _, err := svc.ProcessPayment(ctx, model.PaymentRequest{BookingID: b.ID, Amount: 250}); err != nil {
		t.Fatalf("ProcessPayment error: %v", err)
	}

	stats, err := svc.AdminStats(ctx)
	if err != nil {
		t.Fatalf("AdminStats error: %v", err)
	}

	// seeded stations: 42 slots, 24 available
	want := model.AdminStats{
		TotalUsers:      3,
		TotalBookings:   1,
		TotalRevenue:    250,
		ActiveStations:  6,
		UtilizationRate: 43,
		EcoPointsIssued: 24,
	}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestSimulatedLatency_CancelledContext(t *testing.T) {
	svc := newTestService(t, WithLatency(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.ListStations(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestSimulatedLatency_Delays(t *testing.T) {
	svc := newTestService(t, WithLatency(30*time.Millisecond))

	started := time.Now()
	stations, err := svc.ListStations(context.Background())
	if err != nil {
		t.Fatalf("ListStations error: %v", err)
	}
	if elapsed := time.Since(started); elapsed < 30*time.Millisecond {
		t.Fatalf("elapsed = %v, want at least 30ms", elapsed)
	}
	if len(stations) != len(catalog.SeedStations()) {
		t.Fatalf("len = %d, want %d", len(stations), len(catalog.SeedStations()))
	}
}

func TestReset(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateStation(ctx, model.StationDraft{}); err != nil {
		t.Fatalf("CreateStation error: %v", err)
	}
	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("Reset error: %v", err)
	}

	stations, err := svc.ListStations(ctx)
	if err != nil {
		t.Fatalf("ListStations error: %v", err)
	}
	if len(stations) != len(catalog.SeedStations()) {
		t.Fatalf("len = %d, want %d", len(stations), len(catalog.SeedStations()))
	}
}

func TestReset_RestoresEcoBalances(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	start := time.Now().Add(time.Hour)
	b, err := svc.CreateBooking(ctx, model.BookingRequest{
		UserID:    account.RiderID,
		StationID: "4",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBooking error: %v", err)
	}

	var g errgroup.Group
	for range 50 {
		g.Go(func() error {
			_, err := svc.ProcessPayment(ctx, model.PaymentRequest{BookingID: b.ID, Amount: b.Amount, Method: model.PaymentMethodWallet})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("ProcessPayment error: %v", err)
	}

	balance, err := svc.EcoBalance(ctx, account.RiderID)
	if err != nil {
		t.Fatalf("EcoBalance error: %v", err)
	}
	if balance != 850+36 {
		t.Fatalf("balance = %d, want %d", balance, 850+36)
	}

	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("Reset error: %v", err)
	}

	bookings, err := svc.ListBookingsByUser(ctx, account.RiderID)
	if err != nil {
		t.Fatalf("ListBookingsByUser error: %v", err)
	}
	if len(bookings) != 0 {
		t.Fatalf("bookings = %d, want 0", len(bookings))
	}

	balance, err = svc.EcoBalance(ctx, account.RiderID)
	if err != nil {
		t.Fatalf("EcoBalance error: %v", err)
	}
	if balance != 850 {
		t.Fatalf("balance after reset = %d, want 850", balance)
	}
}
