package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store aggregates every repository over one gorm handle.
type Store struct {
	DB           *gorm.DB
	Users        UserRepo
	Categories   CategoryRepo
	Products     ProductRepo
	Images       ImageRepo
	Carts        CartRepo
	Orders       OrderRepo
	Addresses    AddressRepo
	KYC          KYCRepo
	Transactions TransactionRepo
	Returns      ReturnRepo
	Reviews      ReviewRepo
	Tickets      TicketRepo
	Blogs        BlogRepo
	Dashboard    DashboardRepo
}

func build(db *gorm.DB) *Store {
	return &Store{
		DB:           db,
		Users:        NewUserRepo(db),
		Categories:   NewCategoryRepo(db),
		Products:     NewProductRepo(db),
		Images:       NewImageRepo(db),
		Carts:        NewCartRepo(db),
		Orders:       NewOrderRepo(db),
		Addresses:    NewAddressRepo(db),
		KYC:          NewKYCRepo(db),
		Transactions: NewTransactionRepo(db),
		Returns:      NewReturnRepo(db),
		Reviews:      NewReviewRepo(db),
		Tickets:      NewTicketRepo(db),
		Blogs:        NewBlogRepo(db),
		Dashboard:    NewDashboardRepo(db),
	}
}

func New(db *gorm.DB) *Store { return build(db) }

// WithTx runs fn in one database transaction. Returning an error from fn rolls
// everything back; the context deadline applies to every statement inside.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(build(tx))
	})
}
