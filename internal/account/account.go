// Package account реализует демонстрационные учётные записи маркетплейса и баланс эко-баллов.
//
// Пароли не проверяются: пользователь определяется по email, как в демонстрационном клиенте.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/evolve-charging/internal/model"
)

// Идентификаторы и адреса демонстрационных пользователей.
const (
	AdminID    = "1"
	HostID     = "2"
	RiderID    = "3"
	AdminEmail = "admin@evolve.com"
	HostEmail  = "host@evolve.com"
	RiderEmail = "rider@evolve.com"
)

type resetter interface {
	Reset()
}

// Repository описывает хранилище пользователей.
type Repository interface {
	CreateUser(ctx context.Context, u model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	AddEcoPoints(ctx context.Context, userID string, points int) error
	CountUsers(ctx context.Context) (int, error)
}

// Accounts управляет пользователями и их эко-баллами.
type Accounts struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// New создаёт сервис учётных записей.
func New(repo Repository, logger *zap.Logger) *Accounts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accounts{repo: repo, logger: logger, now: time.Now}
}

// SeedUsers возвращает демонстрационных пользователей.
func SeedUsers() []model.User {
	return []model.User{
		{ID: AdminID, Name: "Admin User", Email: AdminEmail, Role: model.RoleAdmin, EcoPoints: 5000},
		{ID: HostID, Name: "Host User", Email: HostEmail, Role: model.RoleHost, Phone: "+91-9876543210", EcoPoints: 2500},
		{ID: RiderID, Name: "rider", Email: RiderEmail, Role: model.RoleRider, Phone: "+91-9876543210", EcoPoints: 850},
	}
}

// Seed добавляет демонстрационных пользователей, которых ещё нет в хранилище.
func (a *Accounts) Seed(ctx context.Context) error {
	for _, u := range SeedUsers() {
		u.CreatedAt = a.now().UTC()
		if err := a.repo.CreateUser(ctx, u); err != nil && !errors.Is(err, model.ErrUserExists) {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	return nil
}

// Login возвращает пользователя по email. Для незарегистрированного адреса возвращается
// демонстрационный профиль водителя с именем из локальной части адреса.
func (a *Accounts) Login(ctx context.Context, email string) (model.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return model.User{}, err
	}

	u, err := a.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return *u, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, fmt.Errorf("get user by email: %w", err)
	}

	rider, err := a.repo.GetUser(ctx, RiderID)
	if err != nil {
		return model.User{}, fmt.Errorf("get demo rider: %w", err)
	}
	rider.Email = email
	rider.Name = strings.SplitN(email, "@", 2)[0]
	return *rider, nil
}

// Register создаёт пользователя с указанной ролью. Пустая роль означает водителя;
// самостоятельно можно зарегистрироваться только водителем или владельцем станций.
func (a *Accounts) Register(ctx context.Context, name, email string, role model.Role) (model.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return model.User{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, fmt.Errorf("%w: name is required", model.ErrInvalidInput)
	}
	if role == "" {
		role = model.RoleRider
	}
	if role != model.RoleRider && role != model.RoleHost {
		return model.User{}, fmt.Errorf("%w: role %q is not available for registration", model.ErrInvalidInput, role)
	}

	u := model.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: a.now().UTC(),
	}
	if err := a.repo.CreateUser(ctx, u); err != nil {
		return model.User{}, err
	}

	a.logger.Info("user registered", zap.String("userID", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// GetUser возвращает пользователя по идентификатору; второй результат равен false, если пользователь не найден.
func (a *Accounts) GetUser(ctx context.Context, id string) (model.User, bool, error) {
	u, err := a.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, false, nil
		}
		return model.User{}, false, err
	}
	return *u, true, nil
}

// AddEcoPoints начисляет эко-баллы пользователю.
func (a *Accounts) AddEcoPoints(ctx context.Context, userID string, points int) error {
	if points < 0 {
		return fmt.Errorf("%w: points must not be negative", model.ErrInvalidInput)
	}
	return a.repo.AddEcoPoints(ctx, userID, points)
}

// EcoBalance возвращает текущий баланс эко-баллов пользователя.
func (a *Accounts) EcoBalance(ctx context.Context, userID string) (int, error) {
	u, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.EcoPoints, nil
}

// CountUsers возвращает число зарегистрированных пользователей.
func (a *Accounts) CountUsers(ctx context.Context) (int, error) {
	return a.repo.CountUsers(ctx)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: malformed email", model.ErrInvalidInput)
	}
	return email, nil
}

// Reset возвращает демонстрационных пользователей и их балансы в исходное состояние.
// Поддерживается только хранилищем в памяти.
func (a *Accounts) Reset(ctx context.Context) error {
	r, ok := a.repo.(resetter)
	if !ok {
		return errors.New("user repository does not support reset")
	}
	r.Reset()
	return a.Seed(ctx)
}
