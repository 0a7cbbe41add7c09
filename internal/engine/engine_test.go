package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rms-sync-service/internal/domain"
	"rms-sync-service/internal/engine"
	"rms-sync-service/internal/persist"
)

func newTestEngine(t *testing.T, opts engine.Options) (*engine.Engine, *persist.Memory) {
	t.Helper()
	mem := persist.NewMemory()
	eng, err := engine.New(context.Background(), mem, zap.NewNop(), opts)
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	return eng, mem
}

func userByEmail(t *testing.T, eng *engine.Engine, email string) domain.User {
	t.Helper()
	for _, u := range eng.Snapshot().Users {
		if u.Email == email {
			return u
		}
	}
	t.Fatalf("no user with email %s", email)
	return domain.User{}
}

// recorder captures everything the engine broadcasts.
type recorder struct {
	mu     sync.Mutex
	snaps  int
	events []engine.Notification
}

func (r *recorder) BroadcastSnapshot(domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps++
}

func (r *recorder) BroadcastEvent(event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, engine.Notification{Event: event, Payload: payload})
}

func (r *recorder) adminTitles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var titles []string
	for _, ev := range r.events {
		if ev.Event == engine.EventAdminNotification {
			titles = append(titles, ev.Payload.(engine.AdminNotification).Title)
		}
	}
	return titles
}

func (r *recorder) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Event == event {
			n++
		}
	}
	return n
}

func TestLogin(t *testing.T) {
	eng, _ := newTestEngine(t, engine.Options{})
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		res, err := eng.Apply(ctx, nil, engine.LoginOp{
			Email:    "cashier@rms.com",
			Password: "password123",
			Role:     domain.RoleCashier,
		})
		require.NoError(t, err)
		require.NotNil(t, res.User)
		require.Equal(t, domain.UserOnline, res.User.Status)
		require.Empty(t, res.User.PasswordHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := eng.Apply(ctx, nil, engine.LoginOp{
			Email:    "cashier@rms.com",
			Password: "nope",
			Role:     domain.RoleCashier,
		})
		require.ErrorIs(t, err, engine.ErrAuth)
	})

	t.Run("wrong role", func(t *testing.T) {
		_, err := eng.Apply(ctx, nil, engine.LoginOp{
			Email:    "cashier@rms.com",
			Password: "password123",
			Role:     domain.RoleAdmin,
		})
		require.ErrorIs(t, err, engine.ErrAuth)
	})
}

func TestSignup(t *testing.T) {
	eng, _ := newTestEngine(t, engine.Options{})
	ctx := context.Background()

	res, err := eng.Apply(ctx, nil, engine.SignupOp{Name: "New Nancy", Email: "nancy@example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	require.Equal(t, domain.RoleCustomer, res.User.Role)
	require.NotNil(t, res.User.LoyaltyPoints)
	require.Equal(t, 0, *res.User.LoyaltyPoints)

	_, err = eng.Apply(ctx, nil, engine.SignupOp{Name: "Other", Email: "nancy@example.com", Password: "x"})
	require.ErrorIs(t, err, engine.ErrAuth)
}

func TestAddStaffReturnsCredentials(t *testing.T) {
	eng, _ := newTestEngine(t, engine.Options{})
	admin := userByEmail(t, eng, "admin@rms.com")

	res, err := eng.Apply(context.Background(), &admin, engine.AddStaffOp{
		Name: "Waiter Wade", Email: "wade@rms.com", Role: domain.RoleServer, HourlyRate: 110,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Credentials)
	require.Equal(t, "wade@rms.com", res.Credentials.Email)
	require.Len(t, res.Credentials.Password, 8)

	created, err := eng.Apply(context.Background(), nil, engine.LoginOp{
		Email:    "wade@rms.com",
		Password: res.Credentials.Password,
		Role:     domain.RoleServer,
	})
	require.NoError(t, err)
	require.Equal(t, "Waiter Wade", created.User.Name)
}

func TestDeleteUser(t *testing.T) {
	eng, _ := newTestEngine(t, engine.Options{})
	admin := userByEmail(t, eng, "admin@rms.com")
	victim := userByEmail(t, eng, "server@rms.com")

	_, err := eng.Apply(context.Background(), &admin, engine.DeleteUserOp{UserID: victim.ID})
	require.NoError(t, err)

	for _, u := range eng.Snapshot().Users {
		require.NotEqual(t, victim.ID, u.ID)
	}
}

func TestActivityLogBoundedNewestFirst(t *testing.T) {
	eng, _ := newTestEngine(t, engine.Options{})
	admin := userByEmail(t, eng, "admin@rms.com")
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		_, err := eng.Apply(ctx, &admin, engine.SaveIngredientOp{
			Ingredient: domain.Ingredient{Name: fmt.Sprintf("Spice %d", i), Unit: domain.UnitGram, Stock: 5},
		})
		require.NoError(t, err)
	}

	log := eng.Snapshot().ActivityLog
	require.Len(t, log, 50)
	require.Contains(t, log[0].Message, "Spice 59")
}

func TestPersistEveryMutation(t *testing.T) {
	eng, mem := newTestEngine(t, engine.Options{})
	admin := userByEmail(t, eng, "admin@rms.com")
	before := mem.Saves

	_, err := eng.Apply(context.Background(), &admin, engine.SaveIngredientOp{
		Ingredient: domain.Ingredient{Name: "Basil", Unit: domain.UnitGram, Stock: 200},
	})
	require.NoError(t, err)
	require.Equal(t, before+1, mem.Saves)
}

func TestPersistFailureKeepsState(t *testing.T) {
	eng, mem := newTestEngine(t, engine.Options{})
	admin := userByEmail(t, eng, "admin@rms.com")

	mem.FailNext = errors.New("disk gone")
	_, err := eng.Apply(context.Background(), &admin, engine.SaveIngredientOp{
		Ingredient: domain.Ingredient{Name: "Basil", Unit: domain.UnitGram, Stock: 200},
	})
	require.NoError(t, err)

	found := false
	for _, ing := range eng.Snapshot().Ingredients {
		if ing.Name == "Basil" {
			found = true
		}
	}
	require.True(t, found)
}

func TestEngineResumesFromPersistedSnapshot(t *testing.T) {
	mem := persist.NewMemory()

	eng, err := engine.New(context.Background(), mem, zap.NewNop(), engine.Options{})
	require.NoError(t, err)
	admin := userByEmail(t, eng, "admin@rms.com")
	_, err = eng.Apply(context.Background(), &admin, engine.SaveIngredientOp{
		Ingredient: domain.Ingredient{Name: "Saffron", Unit: domain.UnitGram, Stock: 2},
	})
	require.NoError(t, err)
	eng.Close()

	eng2, err := engine.New(context.Background(), mem, zap.NewNop(), engine.Options{})
	require.NoError(t, err)
	defer eng2.Close()

	found := false
	for _, ing := range eng2.Snapshot().Ingredients {
		if ing.Name == "Saffron" {
			found = true
		}
	}
	require.True(t, found)
}

func TestClosedEngineRejectsOperations(t *testing.T) {
	mem := persist.NewMemory()
	eng, err := engine.New(context.Background(), mem, zap.NewNop(), engine.Options{})
	require.NoError(t, err)
	eng.Close()

	_, err = eng.Apply(context.Background(), nil, engine.LogoutOp{UserID: "usr_001"})
	require.ErrorIs(t, err, engine.ErrClosed)
}

func TestConcurrentOperationsSerialize(t *testing.T) {
	eng, _ := newTestEngine(t, engine.Options{})
	admin := userByEmail(t, eng, "admin@rms.com")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := eng.Apply(ctx, &admin, engine.SaveScheduleOp{
				Schedule: domain.StaffSchedule{
					StaffID: "usr_003",
					Start:   time.Now(),
					End:     time.Now().Add(4 * time.Hour),
				},
			})
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Len(t, eng.Snapshot().StaffSchedules, 20)
}

func TestUpsertsMintAndReplace(t *testing.T) {
	eng, _ := newTestEngine(t, engine.Options{})
	admin := userByEmail(t, eng, "admin@rms.com")
	ctx := context.Background()

	_, err := eng.Apply(ctx, &admin, engine.SaveIngredientOp{
		Ingredient: domain.Ingredient{Name: "Garlic", Unit: domain.UnitKilogram, Stock: 3},
	})
	require.NoError(t, err)

	var garlic domain.Ingredient
	for _, ing := range eng.Snapshot().Ingredients {
		if ing.Name == "Garlic" {
			garlic = ing
		}
	}
	require.NotEmpty(t, garlic.ID)

	garlic.Stock = 7
	_, err = eng.Apply(ctx, &admin, engine.SaveIngredientOp{Ingredient: garlic})
	require.NoError(t, err)

	count := 0
	for _, ing := range eng.Snapshot().Ingredients {
		if ing.Name == "Garlic" {
			count++
			require.Equal(t, 7.0, ing.Stock)
		}
	}
	require.Equal(t, 1, count)
}

func TestMenuLowStockNotifications(t *testing.T) {
	eng, _ := newTestEngine(t, engine.Options{})
	rec := &recorder{}
	eng.SetBroadcaster(rec)
	admin := userByEmail(t, eng, "admin@rms.com")
	ctx := context.Background()

	item := eng.Snapshot().MenuItems[0]

	item.Stock = 14
	_, err := eng.Apply(ctx, &admin, engine.UpdateMenuItemOp{Item: item})
	require.NoError(t, err)
	require.Contains(t, rec.adminTitles(), "Low Stock Alert")

	item.Stock = 0
	_, err = eng.Apply(ctx, &admin, engine.UpdateMenuItemOp{Item: item})
	require.NoError(t, err)
	require.Contains(t, rec.adminTitles(), "Item Out of Stock")
}

func TestUpdateUserLocation(t *testing.T) {
	eng, _ := newTestEngine(t, engine.Options{})
	courier := userByEmail(t, eng, "delivery@rms.com")

	_, err := eng.Apply(context.Background(), &courier, engine.UpdateUserLocationOp{
		UserID:   courier.ID,
		Location: domain.Location{Lat: 34.1, Lng: -118.3},
	})
	require.NoError(t, err)

	updated := userByEmail(t, eng, "delivery@rms.com")
	require.NotNil(t, updated.Location)
	require.Equal(t, 34.1, updated.Location.Lat)
}
