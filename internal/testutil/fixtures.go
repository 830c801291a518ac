package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"storeadmin/internal/models"
	"storeadmin/internal/repositories"

	"github.com/shopspring/decimal"
)

var seq atomic.Int64

func next() int64 { return seq.Add(1) }

// CreateUser inserts an active user with the given role.
func CreateUser(t *testing.T, store *repositories.Store, role string) *models.User {
	t.Helper()
	n := next()
	u := &models.User{
		Email:    fmt.Sprintf("user%d@example.com", n),
		Password: "not-a-real-hash",
		FullName: fmt.Sprintf("User %d", n),
		Role:     role,
		Status:   models.UserStatusActive,
	}
	if err := store.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreateProduct inserts an active product priced at price with stock units.
func CreateProduct(t *testing.T, store *repositories.Store, price string, stock int) *models.Product {
	t.Helper()
	n := next()
	p := &models.Product{
		Name:          fmt.Sprintf("Product %d", n),
		Slug:          fmt.Sprintf("product-%d", n),
		SKU:           fmt.Sprintf("SKU-%d", n),
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		StockStatus:   models.StockStatusFor(stock, ""),
		Status:        models.ProductStatusActive,
	}
	if err := store.Products.Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}
