package handlers

import (
	"context"

	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/address"
	"storeadmin/internal/services/auth"
	"storeadmin/internal/services/cart"
	"storeadmin/internal/services/kyc"
	"storeadmin/internal/services/ledger"
	"storeadmin/internal/services/order"
	"storeadmin/internal/services/support"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// Auth

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) AdminLogin(ctx context.Context, email, password string) (*auth.Session, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(0).(*auth.Session)
	return s, args.Error(1)
}

func (m *MockAuthService) CustomerLogin(ctx context.Context, email, password string) (*auth.Session, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(0).(*auth.Session)
	return s, args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, in auth.RegisterInput) (*auth.Session, error) {
	args := m.Called(ctx, in)
	s, _ := args.Get(0).(*auth.Session)
	return s, args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*auth.Session, error) {
	args := m.Called(ctx, refreshToken)
	s, _ := args.Get(0).(*auth.Session)
	return s, args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	return m.Called(ctx, userID, oldPassword, newPassword).Error(0)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID uint, in auth.ProfileInput) (*models.User, error) {
	args := m.Called(ctx, userID, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockAuthService) ChangeEmail(ctx context.Context, userID uint, newEmail, password string) (*models.User, error) {
	args := m.Called(ctx, userID, newEmail, password)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockAuthService) TokenVersion(ctx context.Context, userID uint) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// Cart

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) view(args mock.Arguments) (*cart.View, error) {
	v, _ := args.Get(0).(*cart.View)
	return v, args.Error(1)
}

func (m *MockCartService) GetOrCreateCart(ctx context.Context, userID uint) (uint, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, userID uint) (*cart.View, error) {
	return m.view(m.Called(ctx, userID))
}

func (m *MockCartService) AddItem(ctx context.Context, userID, productID uint, quantity int, attrs models.AttributeSet) (*cart.View, error) {
	return m.view(m.Called(ctx, userID, productID, quantity, attrs))
}

func (m *MockCartService) UpdateItem(ctx context.Context, userID, itemID uint, quantity int) (*cart.View, error) {
	return m.view(m.Called(ctx, userID, itemID, quantity))
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, itemID uint) (*cart.View, error) {
	return m.view(m.Called(ctx, userID, itemID))
}

func (m *MockCartService) Clear(ctx context.Context, userID uint) (*cart.View, error) {
	return m.view(m.Called(ctx, userID))
}

func (m *MockCartService) Sync(ctx context.Context, userID uint, items []cart.SyncItem) (*cart.View, error) {
	return m.view(m.Called(ctx, userID, items))
}

// Orders

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, in order.CreateInput) (*models.Order, error) {
	args := m.Called(ctx, in)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	args := m.Called(ctx, orderID, status)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, f repositories.OrderFilter) ([]models.Order, int64, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]models.Order)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderService) ListByCustomer(ctx context.Context, customerID uint, page repositories.Page) ([]models.Order, int64, error) {
	args := m.Called(ctx, customerID, page)
	list, _ := args.Get(0).([]models.Order)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderService) Stats(ctx context.Context) (*repositories.OrderStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*repositories.OrderStats)
	return s, args.Error(1)
}

// Addresses

type MockAddressService struct {
	mock.Mock
}

func (m *MockAddressService) address(args mock.Arguments) (*models.CustomerAddress, error) {
	a, _ := args.Get(0).(*models.CustomerAddress)
	return a, args.Error(1)
}

func (m *MockAddressService) Create(ctx context.Context, customerID uint, in address.Input) (*models.CustomerAddress, error) {
	return m.address(m.Called(ctx, customerID, in))
}

func (m *MockAddressService) Update(ctx context.Context, addressID uint, in address.Input) (*models.CustomerAddress, error) {
	return m.address(m.Called(ctx, addressID, in))
}

func (m *MockAddressService) SetDefault(ctx context.Context, customerID, addressID uint, addressType string) (*models.CustomerAddress, error) {
	return m.address(m.Called(ctx, customerID, addressID, addressType))
}

func (m *MockAddressService) Delete(ctx context.Context, addressID uint) error {
	return m.Called(ctx, addressID).Error(0)
}

func (m *MockAddressService) Get(ctx context.Context, addressID uint) (*models.CustomerAddress, error) {
	return m.address(m.Called(ctx, addressID))
}

func (m *MockAddressService) ListByCustomer(ctx context.Context, customerID uint, addressType string) ([]models.CustomerAddress, error) {
	args := m.Called(ctx, customerID, addressType)
	list, _ := args.Get(0).([]models.CustomerAddress)
	return list, args.Error(1)
}

func (m *MockAddressService) List(ctx context.Context, f repositories.AddressFilter) ([]models.CustomerAddress, int64, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]models.CustomerAddress)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockAddressService) Stats(ctx context.Context) (*repositories.AddressStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*repositories.AddressStats)
	return s, args.Error(1)
}

// KYC

type MockKYCService struct {
	mock.Mock
}

func (m *MockKYCService) application(args mock.Arguments) (*models.KYCApplication, error) {
	a, _ := args.Get(0).(*models.KYCApplication)
	return a, args.Error(1)
}

func (m *MockKYCService) Create(ctx context.Context, userID uint, in kyc.CreateInput) (*models.KYCApplication, error) {
	return m.application(m.Called(ctx, userID, in))
}

func (m *MockKYCService) CreateForUser(ctx context.Context, adminID uint, email string, in kyc.CreateInput) (*models.KYCApplication, error) {
	return m.application(m.Called(ctx, adminID, email, in))
}

func (m *MockKYCService) UpdateStatus(ctx context.Context, id uint, status, reason string, reviewerID uint) (*models.KYCApplication, error) {
	return m.application(m.Called(ctx, id, status, reason, reviewerID))
}

func (m *MockKYCService) GetStatus(ctx context.Context, userID uint) (*models.KYCApplication, error) {
	return m.application(m.Called(ctx, userID))
}

func (m *MockKYCService) Get(ctx context.Context, id uint) (*models.KYCApplication, error) {
	return m.application(m.Called(ctx, id))
}

func (m *MockKYCService) List(ctx context.Context, f repositories.KYCFilter) ([]models.KYCApplication, int64, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]models.KYCApplication)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockKYCService) Stats(ctx context.Context) (*repositories.KYCStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*repositories.KYCStats)
	return s, args.Error(1)
}

// Ledger

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) transaction(args mock.Arguments) (*models.Transaction, error) {
	t, _ := args.Get(0).(*models.Transaction)
	return t, args.Error(1)
}

func (m *MockLedgerService) Create(ctx context.Context, in ledger.CreateInput) (*models.Transaction, error) {
	return m.transaction(m.Called(ctx, in))
}

func (m *MockLedgerService) UpdateStatus(ctx context.Context, id uint, u ledger.StatusUpdate) (*models.Transaction, error) {
	return m.transaction(m.Called(ctx, id, u))
}

func (m *MockLedgerService) ProcessRefund(ctx context.Context, transactionID string, amount decimal.Decimal, reason string) (*ledger.RefundOutcome, error) {
	args := m.Called(ctx, transactionID, amount, reason)
	out, _ := args.Get(0).(*ledger.RefundOutcome)
	return out, args.Error(1)
}

func (m *MockLedgerService) Get(ctx context.Context, id uint) (*models.Transaction, error) {
	return m.transaction(m.Called(ctx, id))
}

func (m *MockLedgerService) List(ctx context.Context, f repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]models.Transaction)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) ListByCustomer(ctx context.Context, customerID uint, f repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	args := m.Called(ctx, customerID, f)
	list, _ := args.Get(0).([]models.Transaction)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) Stats(ctx context.Context) (*repositories.TransactionStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*repositories.TransactionStats)
	return s, args.Error(1)
}

// Support

type MockSupportService struct {
	mock.Mock
}

func (m *MockSupportService) ticket(args mock.Arguments) (*models.SupportTicket, error) {
	t, _ := args.Get(0).(*models.SupportTicket)
	return t, args.Error(1)
}

func (m *MockSupportService) Create(ctx context.Context, customerID uint, in support.CreateInput) (*models.SupportTicket, error) {
	return m.ticket(m.Called(ctx, customerID, in))
}

func (m *MockSupportService) Update(ctx context.Context, id uint, in support.UpdateInput) (*models.SupportTicket, error) {
	return m.ticket(m.Called(ctx, id, in))
}

func (m *MockSupportService) Rate(ctx context.Context, customerID, id uint, rating int) (*models.SupportTicket, error) {
	return m.ticket(m.Called(ctx, customerID, id, rating))
}

func (m *MockSupportService) Get(ctx context.Context, id uint) (*models.SupportTicket, error) {
	return m.ticket(m.Called(ctx, id))
}

func (m *MockSupportService) List(ctx context.Context, f repositories.TicketFilter) ([]models.SupportTicket, int64, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]models.SupportTicket)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockSupportService) Stats(ctx context.Context) (*repositories.TicketStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*repositories.TicketStats)
	return s, args.Error(1)
}
