package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(context.Background(), DefaultConfig(":memory:"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestUser(id, email string) *domain.User {
	user := domain.NewUser(id, "Ana", email, "$2a$10$fakehashfakehashfakehash")
	// The store keeps second precision.
	user.CreatedAt = user.CreatedAt.Truncate(time.Second)
	user.UpdatedAt = user.UpdatedAt.Truncate(time.Second)
	return user
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newTestUser("u1", "ana@example.com")
	user.CPF = "123.456.789-00"
	user.Address = &domain.Address{Street: "Rua das Flores", Number: "12", City: "São Paulo", State: "SP", Zip: "01000-000"}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)
	require.Equal(t, user.CPF, got.CPF)
	require.NotNil(t, got.Address)
	require.Equal(t, "São Paulo", got.Address.City)
	require.Equal(t, domain.RoleCustomer, got.Role)

	byEmail, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", byEmail.ID)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("u1", "ana@example.com")))

	err := repo.Create(ctx, newTestUser("u2", "ana@example.com"))
	require.ErrorIs(t, err, repository.ErrDuplicate)

	exists, err := repo.ExistsByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestUserRepository_NilAddressRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("u1", "ana@example.com")))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, got.Address)
}

func TestUserRepository_UpdateAndAdminExists(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newTestUser("u1", "ana@example.com")
	require.NoError(t, repo.Create(ctx, user))

	exists, err := repo.AdminExists(ctx)
	require.NoError(t, err)
	require.False(t, exists)

	user.Role = domain.RoleAdmin
	user.Name = "Ana Maria"
	require.NoError(t, repo.Update(ctx, user))

	exists, err = repo.AdminExists(ctx)
	require.NoError(t, err)
	require.True(t, exists)

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "Ana Maria", got.Name)

	missing := newTestUser("ghost", "ghost@example.com")
	require.ErrorIs(t, repo.Update(ctx, missing), repository.ErrNotFound)
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, newTestUser("u1", "ana@example.com")))

	now := time.Now().UTC().Truncate(time.Second)
	session := &domain.Session{Token: "tok-1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)
	require.False(t, got.Expired(now))

	require.NoError(t, repo.Delete(ctx, "tok-1"))
	_, err = repo.GetByToken(ctx, "tok-1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	// Deleting again is not an error.
	require.NoError(t, repo.Delete(ctx, "tok-1"))
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, newTestUser("u1", "ana@example.com")))

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Create(ctx, &domain.Session{Token: "live", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &domain.Session{Token: "dead", UserID: "u1", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}))

	deleted, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, err = repo.GetByToken(ctx, "live")
	require.NoError(t, err)
	_, err = repo.GetByToken(ctx, "dead")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCartRepository_SnapshotRewrite(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	// A missing cart reads as empty.
	cart, err := repo.Get(ctx, "cart-1")
	require.NoError(t, err)
	require.Empty(t, cart.Lines)

	cart.Lines = []domain.CartLine{
		{ProductID: "1", Name: "Cupcake de Baunilha", Price: 10.00, Quantity: 2},
		{ProductID: "2", Name: "Cupcake Red Velvet", Price: 12.00, Quantity: 1},
	}
	require.NoError(t, repo.Save(ctx, cart))

	got, err := repo.Get(ctx, "cart-1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	// Insertion order survives the round trip.
	require.Equal(t, "1", got.Lines[0].ProductID)
	require.Equal(t, 32.00, got.Total())

	// Saving again replaces the whole snapshot.
	got.Lines = got.Lines[:1]
	require.NoError(t, repo.Save(ctx, got))
	got, err = repo.Get(ctx, "cart-1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)

	require.NoError(t, repo.Delete(ctx, "cart-1"))
	got, err = repo.Get(ctx, "cart-1")
	require.NoError(t, err)
	require.Empty(t, got.Lines)
}

func TestCartRepository_CartsAreIsolated(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.Cart{ID: "user-1", Lines: []domain.CartLine{
		{ProductID: "1", Name: "Cupcake", Price: 10.00, Quantity: 1},
	}}))
	require.NoError(t, repo.Save(ctx, &domain.Cart{ID: "guest:abc", Lines: []domain.CartLine{
		{ProductID: "2", Name: "Outro", Price: 12.00, Quantity: 3},
	}}))

	a, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	b, err := repo.Get(ctx, "guest:abc")
	require.NoError(t, err)
	require.Equal(t, "1", a.Lines[0].ProductID)
	require.Equal(t, "2", b.Lines[0].ProductID)
}

func newTestOrder(id, userID string, createdAt time.Time, total float64) *domain.Order {
	return &domain.Order{
		ID:        id,
		UserID:    userID,
		UserName:  "Ana",
		CreatedAt: createdAt,
		Status:    domain.StatusReceived,
		Items: []domain.OrderItem{
			{ProductID: "1", Name: "Cupcake de Baunilha", Price: total, Quantity: 1},
		},
		Total:           total,
		ShippingAddress: domain.Address{Street: "Rua das Flores", Number: "12", City: "São Paulo", State: "SP", Zip: "01000-000"},
		CustomerInfo:    domain.CustomerInfo{Name: "Ana", CPF: "123.456.789-00"},
		PaymentMethod:   domain.PaymentPix,
	}
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	order := newTestOrder("ORD-1-AAAA", "u1", now, 10.00)
	require.NoError(t, repo.Create(ctx, order))

	got, err := repo.GetByID(ctx, "ORD-1-AAAA")
	require.NoError(t, err)
	require.Equal(t, order.Total, got.Total)
	require.Equal(t, domain.StatusReceived, got.Status)
	require.Len(t, got.Items, 1)
	require.Equal(t, "Cupcake de Baunilha", got.Items[0].Name)
	require.Equal(t, "São Paulo", got.ShippingAddress.City)
	require.Equal(t, "123.456.789-00", got.CustomerInfo.CPF)

	_, err = repo.GetByID(ctx, "ORD-0-XXXX")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOrderRepository_ListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, newTestOrder("ORD-1-AAAA", "u1", base, 10.00)))
	require.NoError(t, repo.Create(ctx, newTestOrder("ORD-2-BBBB", "u1", base.Add(time.Minute), 12.00)))
	require.NoError(t, repo.Create(ctx, newTestOrder("ORD-3-CCCC", "u2", base.Add(2*time.Minute), 15.00)))

	mine, err := repo.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, "ORD-2-BBBB", mine[0].ID)
	require.Equal(t, "ORD-1-AAAA", mine[1].ID)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "ORD-3-CCCC", all[0].ID)
	// Items come back attached on listings too.
	require.Len(t, all[0].Items, 1)
}

func TestOrderRepository_ListNewestFirstSubSecond(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	// Orders placed within the same second must still list newest first.
	// Fractional seconds with fewer digits ("...00.5") would sort after
	// longer ones ("...00.51") if the stored text were not zero padded.
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newTestOrder("ORD-1-AAAA", "u1", base.Add(500*time.Millisecond), 10.00)))
	require.NoError(t, repo.Create(ctx, newTestOrder("ORD-2-BBBB", "u1", base.Add(510*time.Millisecond), 12.00)))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "ORD-2-BBBB", all[0].ID)
	require.Equal(t, "ORD-1-AAAA", all[1].ID)

	mine, err := repo.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "ORD-2-BBBB", mine[0].ID)

	// The padded form round-trips to the original instant.
	got, err := repo.GetByID(ctx, "ORD-1-AAAA")
	require.NoError(t, err)
	require.True(t, got.CreatedAt.Equal(base.Add(500*time.Millisecond)))
}

func TestOrderRepository_UpdateStatusAndCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, newTestOrder("ORD-1-AAAA", "u1", now, 10.00)))
	require.NoError(t, repo.Create(ctx, newTestOrder("ORD-2-BBBB", "u1", now, 12.00)))

	require.NoError(t, repo.UpdateStatus(ctx, "ORD-1-AAAA", domain.StatusPreparing))
	require.ErrorIs(t, repo.UpdateStatus(ctx, "ORD-0-XXXX", domain.StatusPreparing), repository.ErrNotFound)

	got, err := repo.GetByID(ctx, "ORD-1-AAAA")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPreparing, got.Status)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts[domain.StatusPreparing].Orders)
	require.Equal(t, int64(1), counts[domain.StatusReceived].Orders)
	require.Equal(t, 10.00, counts[domain.StatusPreparing].Sales)
	require.Equal(t, 12.00, counts[domain.StatusReceived].Sales)
}
