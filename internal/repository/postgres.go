// Package repository содержит хранилища станций, бронирований и пользователей: в памяти процесса и в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/evolve-charging/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresRepository предоставляет доступ к данным маркетплейса в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if !isRetryable(err) || i == len(delays) {
			break
		}

		timer := time.NewTimer(delays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

// isRetryable сообщает, имеет ли смысл повторить запрос: конфликт сериализации, дедлок или обрыв соединения.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fromCents(v int64) float64 {
	return float64(v) / 100
}

const stationColumns = `id, name, lat, lon, kind, slots_total, slots_available, price_per_kwh,
	rating, host_id, host_name, status, address, amenities, images, predicted_wait_time`

func scanStation(row pgx.Row) (model.Station, error) {
	var (
		s      model.Station
		kind   string
		status string
		priceC int64
	)
	err := row.Scan(&s.ID, &s.Name, &s.Lat, &s.Lon, &kind, &s.SlotsTotal, &s.SlotsAvailable, &priceC,
		&s.Rating, &s.HostID, &s.HostName, &status, &s.Address, &s.Amenities, &s.Images, &s.PredictedWaitTime)
	if err != nil {
		return model.Station{}, err
	}
	s.Kind = model.StationKind(kind)
	s.Status = model.StationStatus(status)
	s.PricePerKwh = fromCents(priceC)
	return s, nil
}

func (r *PostgresRepository) queryStations(ctx context.Context, query string, args ...any) ([]model.Station, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select stations: %w", err)
	}
	defer rows.Close()

	res := make([]model.Station, 0)
	for rows.Next() {
		s, err := scanStation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		res = append(res, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// ListStations возвращает все станции в порядке добавления.
func (r *PostgresRepository) ListStations(ctx context.Context) ([]model.Station, error) {
	return r.queryStations(ctx, `SELECT `+stationColumns+` FROM stations ORDER BY seq`)
}

// ListStationsByHost возвращает станции указанного владельца.
func (r *PostgresRepository) ListStationsByHost(ctx context.Context, hostID string) ([]model.Station, error) {
	return r.queryStations(ctx, `SELECT `+stationColumns+` FROM stations WHERE host_id = $1 ORDER BY seq`, hostID)
}

// GetStation возвращает станцию по идентификатору.
func (r *PostgresRepository) GetStation(ctx context.Context, id string) (*model.Station, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+stationColumns+` FROM stations WHERE id = $1`, id)
	s, err := scanStation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrStationNotFound
		}
		return nil, fmt.Errorf("get station: %w", err)
	}
	return &s, nil
}

// AddStation сохраняет новую станцию.
func (r *PostgresRepository) AddStation(ctx context.Context, s model.Station) error {
	amenities := s.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	images := s.Images
	if images == nil {
		images = []string{}
	}

	return r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO stations (`+stationColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			s.ID, s.Name, s.Lat, s.Lon, string(s.Kind), s.SlotsTotal, s.SlotsAvailable, toCents(s.PricePerKwh),
			s.Rating, s.HostID, s.HostName, string(s.Status), s.Address, amenities, images, s.PredictedWaitTime,
		)
		if err != nil {
			return fmt.Errorf("insert station: %w", err)
		}
		return nil
	})
}

// CountStations возвращает число станций.
func (r *PostgresRepository) CountStations(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stations: %w", err)
	}
	return n, nil
}

const bookingColumns = `id, user_id, station_id, station_name, start_time, end_time, slot_no,
	status, amount, eco_points, scan_code, created_at`

func scanBooking(row pgx.Row) (model.Booking, error) {
	var (
		b       model.Booking
		status  string
		amountC int64
	)
	err := row.Scan(&b.ID, &b.UserID, &b.StationID, &b.StationName, &b.StartTime, &b.EndTime, &b.SlotNo,
		&status, &amountC, &b.EcoPointsEarned, &b.ScanCode, &b.CreatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	b.Status = model.BookingStatus(status)
	b.Amount = fromCents(amountC)
	return b, nil
}

func (r *PostgresRepository) queryBookings(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select bookings: %w", err)
	}
	defer rows.Close()

	res := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		res = append(res, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// AddBooking сохраняет бронирование.
func (r *PostgresRepository) AddBooking(ctx context.Context, b model.Booking) error {
	return r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO bookings (`+bookingColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			b.ID, b.UserID, b.StationID, b.StationName, b.StartTime, b.EndTime, b.SlotNo,
			string(b.Status), toCents(b.Amount), b.EcoPointsEarned, b.ScanCode, b.CreatedAt,
		)
		if err != nil {
			return bookingInsertError(err, b.StationID)
		}
		return nil
	})
}

// bookingInsertError переводит нарушение внешнего ключа на станцию в model.ErrStationNotFound.
func bookingInsertError(err error, stationID string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return fmt.Errorf("%w: %s", model.ErrStationNotFound, stationID)
	}
	return fmt.Errorf("insert booking: %w", err)
}

// GetBooking возвращает бронирование по идентификатору.
func (r *PostgresRepository) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

// ListBookings возвращает все бронирования в порядке создания.
func (r *PostgresRepository) ListBookings(ctx context.Context) ([]model.Booking, error) {
	return r.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY seq`)
}

// ListBookingsByUser возвращает бронирования пользователя в порядке создания.
func (r *PostgresRepository) ListBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return r.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY seq`, userID)
}

// ListBookingsByStation возвращает бронирования станции в порядке создания.
func (r *PostgresRepository) ListBookingsByStation(ctx context.Context, stationID string) ([]model.Booking, error) {
	return r.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE station_id = $1 ORDER BY seq`, stationID)
}

// ConfirmBooking переводит бронирование в статус confirmed. Блокирует строку, чтобы предыдущий статус был прочитан атомарно.
func (r *PostgresRepository) ConfirmBooking(ctx context.Context, id string) (*model.Booking, model.BookingStatus, error) {
	var (
		booking *model.Booking
		prev    model.BookingStatus
	)

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var status string
		err = tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrBookingNotFound
			}
			return fmt.Errorf("lock booking: %w", err)
		}

		row := tx.QueryRow(ctx,
			`UPDATE bookings SET status = $2 WHERE id = $1 RETURNING `+bookingColumns,
			id, string(model.BookingStatusConfirmed),
		)
		b, err := scanBooking(row)
		if err != nil {
			return fmt.Errorf("update booking: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		booking = &b
		prev = model.BookingStatus(status)
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return booking, prev, nil
}

// AddTransaction сохраняет платёжную транзакцию.
func (r *PostgresRepository) AddTransaction(ctx context.Context, t model.Transaction) error {
	return r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO transactions (id, booking_id, amount, status, method, created_at, reference)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			t.ID, t.BookingID, toCents(t.Amount), string(t.Status), string(t.Method), t.Timestamp, t.Reference,
		)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		return nil
	})
}

// ListTransactions возвращает все транзакции в порядке создания.
func (r *PostgresRepository) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, booking_id, amount, status, method, created_at, reference
		 FROM transactions
		 ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	res := make([]model.Transaction, 0)
	for rows.Next() {
		var (
			t       model.Transaction
			amountC int64
			status  string
			method  string
		)
		if err := rows.Scan(&t.ID, &t.BookingID, &amountC, &status, &method, &t.Timestamp, &t.Reference); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Amount = fromCents(amountC)
		t.Status = model.TransactionStatus(status)
		t.Method = model.PaymentMethod(method)
		res = append(res, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

const userColumns = `id, name, email, role, phone, eco_points, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Phone, &u.EcoPoints, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

// CreateUser создаёт нового пользователя.
func (r *PostgresRepository) CreateUser(ctx context.Context, u model.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, strings.ToLower(u.Email), string(u.Role), u.Phone, u.EcoPoints, u.CreatedAt,
	)
	if err != nil {
		return userInsertError(err, u.Email)
	}
	return nil
}

func userInsertError(err error, email string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s", model.ErrUserExists, email)
	}
	return fmt.Errorf("create user: %w", err)
}

// GetUser возвращает пользователя по идентификатору.
func (r *PostgresRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// AddEcoPoints начисляет эко-баллы пользователю.
func (r *PostgresRepository) AddEcoPoints(ctx context.Context, userID string, points int) error {
	return r.withRetry(ctx, func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users SET eco_points = eco_points + $2 WHERE id = $1`,
			userID, points,
		)
		if err != nil {
			return fmt.Errorf("update eco points: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrUserNotFound
		}
		return nil
	})
}

// CountUsers возвращает число пользователей.
func (r *PostgresRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
