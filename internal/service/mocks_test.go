package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/repository"
)

// =============================================================================
// Mock Repository Types
// =============================================================================

// MockUserRepository is an in-memory implementation of
// repository.UserRepository for service tests.
type MockUserRepository struct {
	users     map[string]*domain.User // keyed by id
	order     []string                // ids in registration order
	createErr error
	getErr    error
	updateErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	m.order = append(m.order, user.ID)
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	result := make([]*domain.User, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.users[id]
		result = append(result, &cp)
	}
	return result, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) AdminExists(ctx context.Context) (bool, error) {
	for _, u := range m.users {
		if u.Role == domain.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the registry size, used to assert failed signups leave
// the registry unchanged.
func (m *MockUserRepository) Count() int {
	return len(m.users)
}

// MockSessionRepository is an in-memory implementation of
// repository.SessionRepository.
type MockSessionRepository struct {
	sessions map[string]*domain.Session
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*domain.Session),
	}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	cp := *session
	m.sessions[session.Token] = &cp
	return nil
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	s, ok := m.sessions[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func (m *MockSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	for token, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, token)
		}
	}
	return nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	var deleted int64
	for token, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

// MockCartRepository is an in-memory implementation of
// repository.CartRepository.
type MockCartRepository struct {
	carts   map[string]*domain.Cart
	saveErr error
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]*domain.Cart),
	}
}

func (m *MockCartRepository) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	c, ok := m.carts[cartID]
	if !ok {
		return &domain.Cart{ID: cartID}, nil
	}
	cp := domain.Cart{ID: c.ID, Lines: append([]domain.CartLine(nil), c.Lines...)}
	return &cp, nil
}

func (m *MockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := domain.Cart{ID: cart.ID, Lines: append([]domain.CartLine(nil), cart.Lines...)}
	m.carts[cart.ID] = &cp
	return nil
}

func (m *MockCartRepository) Delete(ctx context.Context, cartID string) error {
	delete(m.carts, cartID)
	return nil
}

// MockOrderRepository is an in-memory implementation of
// repository.OrderRepository. Orders are listed newest first.
type MockOrderRepository struct {
	orders    []*domain.Order
	createErr error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{}
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *order
	cp.Items = append([]domain.OrderItem(nil), order.Items...)
	m.orders = append(m.orders, &cp)
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			cp := *o
			cp.Items = append([]domain.OrderItem(nil), o.Items...)
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockOrderRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			cp := *o
			result = append(result, &cp)
		}
	}
	sortOrdersNewestFirst(result)
	return result, nil
}

func (m *MockOrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	result := make([]*domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		cp := *o
		result = append(result, &cp)
	}
	sortOrdersNewestFirst(result)
	return result, nil
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	for _, o := range m.orders {
		if o.ID == id {
			o.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]repository.StatusCount, error) {
	counts := make(map[domain.OrderStatus]repository.StatusCount)
	for _, o := range m.orders {
		c := counts[o.Status]
		c.Orders++
		c.Sales += o.Total
		counts[o.Status] = c
	}
	return counts, nil
}

func sortOrdersNewestFirst(orders []*domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// =============================================================================
// Mock Cache, Locker and Catalog
// =============================================================================

// MockCache is a minimal in-memory repository.Cache without expiry.
type MockCache struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return v, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value
	return true, nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MockCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok, nil
}

// MockLocker is a lock.Locker whose acquisition outcome is scripted.
type MockLocker struct {
	denied bool
	held   map[string]bool
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: make(map[string]bool)}
}

func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.denied {
		return false, nil
	}
	m.held[key] = true
	return true, nil
}

func (m *MockLocker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error) {
	return m.Acquire(ctx, key, ttl)
}

func (m *MockLocker) Release(ctx context.Context, key string) (bool, error) {
	held := m.held[key]
	delete(m.held, key)
	return held, nil
}

func (m *MockLocker) IsHeld(ctx context.Context, key string) (bool, error) {
	return m.held[key], nil
}

// mockProductLookup serves a fixed product set for cart tests.
type mockProductLookup struct {
	products map[string]domain.Product
}

func newMockProductLookup(products ...domain.Product) *mockProductLookup {
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &mockProductLookup{products: byID}
}

func (m *mockProductLookup) Product(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}
