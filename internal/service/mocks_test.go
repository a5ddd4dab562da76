package service

import (
	"context"
	"time"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/dkoval/shoply/internal/store"
	"github.com/dkoval/shoply/pkg/messaging"
	"github.com/google/uuid"
)

// mockOrderStore is a hand-rolled mock of the OrderStore interface.
// CreateOrder echoes its params back so tests can verify what the
// service computed.
type mockOrderStore struct {
	createdOrder  *store.CreateOrderParams
	createdItems  []store.CreateOrderItemParams
	createErr     error
	order         *store.Order
	items         []store.OrderItemDetail
	findErr       error
	orders        []store.Order
	total         int64
	listErr       error
	cancelled     *store.Order
	cancelErr     error
	cancelledIDs  []uuid.UUID
	statusUpdates map[uuid.UUID]store.OrderStatus
	statusErr     error
}

func (m *mockOrderStore) CreateOrder(_ context.Context, order *store.CreateOrderParams, items []store.CreateOrderItemParams) (*store.Order, []store.OrderItem, error) {
	if m.createErr != nil {
		return nil, nil, m.createErr
	}
	m.createdOrder = order
	m.createdItems = items

	created := &store.Order{
		ID:              uuid.New(),
		UserID:          order.UserID,
		Status:          order.Status,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		Notes:           order.Notes,
		CreatedAt:       time.Now().UTC(),
	}
	createdItems := make([]store.OrderItem, len(items))
	for i, item := range items {
		createdItems[i] = store.OrderItem{
			ID:        uuid.New(),
			OrderID:   created.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			CreatedAt: created.CreatedAt,
		}
	}
	return created, createdItems, nil
}

func (m *mockOrderStore) FindByID(_ context.Context, _ uuid.UUID) (*store.Order, []store.OrderItemDetail, error) {
	if m.findErr != nil {
		return nil, nil, m.findErr
	}
	return m.order, m.items, nil
}

func (m *mockOrderStore) FindOrdersByUserID(_ context.Context, _ store.FindOrdersParams) ([]store.Order, int64, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.orders, m.total, nil
}

func (m *mockOrderStore) FindItemsByOrderIDs(_ context.Context, _ []uuid.UUID) (map[uuid.UUID][]store.OrderItemDetail, error) {
	return map[uuid.UUID][]store.OrderItemDetail{}, nil
}

func (m *mockOrderStore) Cancel(_ context.Context, id uuid.UUID) (*store.Order, error) {
	if m.cancelErr != nil {
		return nil, m.cancelErr
	}
	m.cancelledIDs = append(m.cancelledIDs, id)
	return m.cancelled, nil
}

func (m *mockOrderStore) UpdateStatus(_ context.Context, id uuid.UUID, status store.OrderStatus) (*store.Order, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	if m.statusUpdates == nil {
		m.statusUpdates = make(map[uuid.UUID]store.OrderStatus)
	}
	m.statusUpdates[id] = status
	if m.order != nil {
		m.order.Status = status
		return m.order, nil
	}
	return &store.Order{ID: id, Status: status}, nil
}

// mockCartStore keeps cart lines in memory.
type mockCartStore struct {
	lines      []store.CartLine
	findErr    error
	item       *store.CartItem
	itemErr    error
	inserted   []store.CartItem
	updated    map[uuid.UUID]int32
	deleteErr  error
	clearCalls int
	clearErr   error
}

func (m *mockCartStore) FindByUserID(_ context.Context, _ uuid.UUID) ([]store.CartLine, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.lines, nil
}

func (m *mockCartStore) FindItem(_ context.Context, _, _ uuid.UUID) (*store.CartItem, error) {
	if m.itemErr != nil {
		return nil, m.itemErr
	}
	return m.item, nil
}

func (m *mockCartStore) Insert(_ context.Context, userID, productID uuid.UUID, quantity int32) (*store.CartItem, error) {
	item := store.CartItem{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: quantity, CreatedAt: time.Now()}
	m.inserted = append(m.inserted, item)
	return &item, nil
}

func (m *mockCartStore) UpdateQuantity(_ context.Context, id uuid.UUID, quantity int32) (*store.CartItem, error) {
	if m.updated == nil {
		m.updated = make(map[uuid.UUID]int32)
	}
	m.updated[id] = quantity
	return &store.CartItem{ID: id, Quantity: quantity}, nil
}

func (m *mockCartStore) DeleteItem(_ context.Context, _, _ uuid.UUID) error {
	return m.deleteErr
}

func (m *mockCartStore) Clear(_ context.Context, _ uuid.UUID) (int64, error) {
	m.clearCalls++
	if m.clearErr != nil {
		return 0, m.clearErr
	}
	removed := int64(len(m.lines))
	m.lines = nil
	return removed, nil
}

// mockProductStore serves canned products keyed by ID.
type mockProductStore struct {
	products   map[uuid.UUID]*store.Product
	findErr    error
	listed     []store.Product
	total      int64
	listErr    error
	reviews    []store.ReviewDetail
	review     *store.Review
	reviewErr  error
	recomputed []uuid.UUID
	rating     float64
}

func (m *mockProductStore) FindActiveByID(_ context.Context, id uuid.UUID) (*store.Product, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, apperrors.ErrProductNotFound
}

func (m *mockProductStore) List(_ context.Context, _ store.ListProductsParams) ([]store.Product, int64, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.listed, m.total, nil
}

func (m *mockProductStore) FindFeatured(_ context.Context, _ int32) ([]store.Product, error) {
	return m.listed, nil
}

func (m *mockProductStore) Categories(_ context.Context) ([]store.CategoryCount, error) {
	return nil, nil
}

func (m *mockProductStore) FindReviews(_ context.Context, _ uuid.UUID, _, _ int32) ([]store.ReviewDetail, int64, error) {
	return m.reviews, int64(len(m.reviews)), nil
}

func (m *mockProductStore) CreateReview(_ context.Context, productID, userID uuid.UUID, rating int32, comment string) (*store.Review, error) {
	if m.reviewErr != nil {
		return nil, m.reviewErr
	}
	if m.review != nil {
		return m.review, nil
	}
	return &store.Review{ID: uuid.New(), ProductID: productID, UserID: userID, Rating: rating, Comment: comment, CreatedAt: time.Now()}, nil
}

func (m *mockProductStore) RecomputeRating(_ context.Context, productID uuid.UUID) (float64, error) {
	m.recomputed = append(m.recomputed, productID)
	return m.rating, nil
}

// mockUserStore serves a single user and records mutations.
type mockUserStore struct {
	user          *store.User
	findErr       error
	createErr     error
	passwordHash  string
	avatarURL     *string
	avatarCleared bool
	addresses     []store.Address
	address       *store.Address
	addressErr    error
	wishlist      []store.WishlistEntry
	wishlistItem  *store.WishlistItem
	wishlistErr   error
}

func (m *mockUserStore) Create(_ context.Context, email, passwordHash, fullName string) (*store.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.passwordHash = passwordHash
	user := &store.User{ID: uuid.New(), Email: email, PasswordHash: passwordHash, FullName: fullName, IsActive: true, CreatedAt: time.Now()}
	m.user = user
	return user, nil
}

func (m *mockUserStore) FindByEmail(_ context.Context, _ string) (*store.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.user, nil
}

func (m *mockUserStore) FindByID(_ context.Context, _ uuid.UUID) (*store.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.user, nil
}

func (m *mockUserStore) UpdateProfile(_ context.Context, _ uuid.UUID, params store.UpdateProfileParams) (*store.User, error) {
	if params.FullName != nil {
		m.user.FullName = *params.FullName
	}
	if params.Phone != nil {
		m.user.Phone = params.Phone
	}
	return m.user, nil
}

func (m *mockUserStore) UpdatePassword(_ context.Context, _ uuid.UUID, passwordHash string) error {
	m.passwordHash = passwordHash
	return nil
}

func (m *mockUserStore) UpdateAvatar(_ context.Context, _ uuid.UUID, avatarURL *string) error {
	m.avatarURL = avatarURL
	if avatarURL == nil {
		m.avatarCleared = true
	}
	if m.user != nil {
		m.user.AvatarURL = avatarURL
	}
	return nil
}

func (m *mockUserStore) ListAddresses(_ context.Context, _ uuid.UUID) ([]store.Address, error) {
	return m.addresses, nil
}

func (m *mockUserStore) FindAddress(_ context.Context, _, _ uuid.UUID) (*store.Address, error) {
	if m.addressErr != nil {
		return nil, m.addressErr
	}
	return m.address, nil
}

func (m *mockUserStore) CreateAddress(_ context.Context, params store.CreateAddressParams) (*store.Address, error) {
	addr := store.Address{
		ID: uuid.New(), UserID: params.UserID, Label: params.Label, FullName: params.FullName,
		Phone: params.Phone, Line1: params.Line1, Line2: params.Line2, City: params.City,
		State: params.State, PostalCode: params.PostalCode, Country: params.Country,
		IsDefault: params.IsDefault, CreatedAt: time.Now(),
	}
	m.addresses = append(m.addresses, addr)
	return &addr, nil
}

func (m *mockUserStore) UpdateAddress(_ context.Context, params store.UpdateAddressParams) (*store.Address, error) {
	if m.addressErr != nil {
		return nil, m.addressErr
	}
	return m.address, nil
}

func (m *mockUserStore) DeleteAddress(_ context.Context, _, _ uuid.UUID) error {
	return m.addressErr
}

func (m *mockUserStore) ClearDefaultAddress(_ context.Context, _ uuid.UUID) error {
	for i := range m.addresses {
		m.addresses[i].IsDefault = false
	}
	return nil
}

func (m *mockUserStore) ListWishlist(_ context.Context, _ uuid.UUID) ([]store.WishlistEntry, error) {
	return m.wishlist, nil
}

func (m *mockUserStore) AddToWishlist(_ context.Context, userID, productID uuid.UUID) (*store.WishlistItem, error) {
	if m.wishlistErr != nil {
		return nil, m.wishlistErr
	}
	if m.wishlistItem != nil {
		return m.wishlistItem, nil
	}
	return &store.WishlistItem{ID: uuid.New(), UserID: userID, ProductID: productID, CreatedAt: time.Now()}, nil
}

func (m *mockUserStore) RemoveFromWishlist(_ context.Context, _, _ uuid.UUID) error {
	return m.wishlistErr
}

func (m *mockUserStore) InWishlist(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return false, nil
}

// mockPaymentStore keeps one intent in memory.
type mockPaymentStore struct {
	intent  *store.PaymentIntent
	findErr error
}

func (m *mockPaymentStore) CreateIntent(_ context.Context, params store.CreatePaymentIntentParams) (*store.PaymentIntent, error) {
	m.intent = &store.PaymentIntent{
		ID: params.ID, OrderID: params.OrderID, UserID: params.UserID, Amount: params.Amount,
		Currency: params.Currency, Status: params.Status, PaymentMethod: params.PaymentMethod,
		ClientSecret: params.ClientSecret, CreatedAt: time.Now(),
	}
	return m.intent, nil
}

func (m *mockPaymentStore) FindIntent(_ context.Context, _ string, _ uuid.UUID) (*store.PaymentIntent, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.intent, nil
}

func (m *mockPaymentStore) UpdateIntentStatus(_ context.Context, _ string, _ uuid.UUID, status string) (*store.PaymentIntent, error) {
	m.intent.Status = status
	return m.intent, nil
}

// mockBlobStore records uploads and deletions in memory.
type mockBlobStore struct {
	objects   map[string][]byte
	uploadErr error
	listErr   error
	removed   []string
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{objects: make(map[string][]byte)}
}

func (m *mockBlobStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.objects[key] = data
	return nil
}

func (m *mockBlobStore) List(_ context.Context, prefix string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var keys []string
	for key := range m.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (m *mockBlobStore) Remove(_ context.Context, keys []string) error {
	for _, key := range keys {
		delete(m.objects, key)
		m.removed = append(m.removed, key)
	}
	return nil
}

func (m *mockBlobStore) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

// mockPublisher records published events.
type mockPublisher struct {
	events []messaging.Event
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}
