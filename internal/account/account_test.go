package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/evolve-charging/internal/model"
	"github.com/mmeshcher/evolve-charging/internal/repository"
)

func newTestAccounts(t *testing.T) *Accounts {
	t.Helper()

	a := New(repository.NewUserMemory(), nil)
	require.NoError(t, a.Seed(context.Background()))
	return a
}

func TestLogin_DemoUsers(t *testing.T) {
	a := newTestAccounts(t)

	tests := []struct {
		email    string
		wantID   string
		wantRole model.Role
		wantName string
	}{
		{email: "admin@evolve.com", wantID: AdminID, wantRole: model.RoleAdmin, wantName: "Admin User"},
		{email: "Host@Evolve.com", wantID: HostID, wantRole: model.RoleHost, wantName: "Host User"},
		{email: "priya@example.com", wantID: RiderID, wantRole: model.RoleRider, wantName: "priya"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			u, err := a.Login(context.Background(), tt.email)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, u.ID)
			assert.Equal(t, tt.wantRole, u.Role)
			assert.Equal(t, tt.wantName, u.Name)
		})
	}
}

func TestLogin_MalformedEmail(t *testing.T) {
	a := newTestAccounts(t)

	_, err := a.Login(context.Background(), "not-an-email")
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestRegister(t *testing.T) {
	a := newTestAccounts(t)
	ctx := context.Background()

	u, err := a.Register(ctx, "Asha", "asha@example.com", model.RoleHost)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, model.RoleHost, u.Role)
	assert.Equal(t, 0, u.EcoPoints)

	logged, err := a.Login(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	_, err = a.Register(ctx, "Asha again", "ASHA@example.com", "")
	require.ErrorIs(t, err, model.ErrUserExists)
}

func TestRegister_InvalidInput(t *testing.T) {
	a := newTestAccounts(t)
	ctx := context.Background()

	_, err := a.Register(ctx, "", "x@example.com", model.RoleRider)
	require.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = a.Register(ctx, "X", "x@example.com", model.Role("superuser"))
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestRegister_AdminIsNotSelfService(t *testing.T) {
	a := newTestAccounts(t)
	ctx := context.Background()

	_, err := a.Register(ctx, "Mallory", "mallory@example.com", model.RoleAdmin)
	require.ErrorIs(t, err, model.ErrInvalidInput)

	u, err := a.Login(ctx, "mallory@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleRider, u.Role)
	assert.Equal(t, RiderID, u.ID)
}

func TestReset_RestoresSeedBalances(t *testing.T) {
	a := newTestAccounts(t)
	ctx := context.Background()

	require.NoError(t, a.AddEcoPoints(ctx, RiderID, 36))
	_, err := a.Register(ctx, "Asha", "asha@example.com", model.RoleHost)
	require.NoError(t, err)

	require.NoError(t, a.Reset(ctx))

	balance, err := a.EcoBalance(ctx, RiderID)
	require.NoError(t, err)
	assert.Equal(t, 850, balance)

	n, err := a.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(SeedUsers()), n)
}

func TestEcoPoints(t *testing.T) {
	a := newTestAccounts(t)
	ctx := context.Background()

	require.NoError(t, a.AddEcoPoints(ctx, RiderID, 24))

	balance, err := a.EcoBalance(ctx, RiderID)
	require.NoError(t, err)
	assert.Equal(t, 874, balance)

	require.ErrorIs(t, a.AddEcoPoints(ctx, "ghost", 5), model.ErrUserNotFound)
	require.ErrorIs(t, a.AddEcoPoints(ctx, RiderID, -1), model.ErrInvalidInput)
}

func TestSeed_Idempotent(t *testing.T) {
	a := newTestAccounts(t)
	ctx := context.Background()

	require.NoError(t, a.Seed(ctx))

	n, err := a.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(SeedUsers()), n)
}
