// Package cart keeps one cart per user and holds every line at or below the
// product's live stock.
package cart

import (
	"context"
	"sort"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ItemView struct {
	ID                 uint                `json:"id"`
	ProductID          uint                `json:"productId"`
	ProductName        string              `json:"productName"`
	SKU                string              `json:"sku"`
	Price              decimal.Decimal     `json:"price"`
	SalePrice          decimal.NullDecimal `json:"salePrice"`
	StockStatus        string              `json:"stockStatus"`
	MaxQuantity        int                 `json:"maxQuantity"`
	ImageURL           string              `json:"imageUrl,omitempty"`
	SelectedAttributes models.AttributeSet `json:"selectedAttributes,omitempty"`
	Quantity           int                 `json:"quantity"`
	LineTotal          decimal.Decimal     `json:"lineTotal"`
}

// View is the cart as returned by every operation.
type View struct {
	CartID     uint            `json:"cartId"`
	Items      []ItemView      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type SyncItem struct {
	ProductID          uint                `json:"productId"`
	Quantity           int                 `json:"quantity"`
	SelectedAttributes models.AttributeSet `json:"selectedAttributes"`
}

type Service interface {
	GetOrCreateCart(ctx context.Context, userID uint) (uint, error)
	GetCart(ctx context.Context, userID uint) (*View, error)
	AddItem(ctx context.Context, userID, productID uint, quantity int, attrs models.AttributeSet) (*View, error)
	UpdateItem(ctx context.Context, userID, itemID uint, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, itemID uint) (*View, error)
	Clear(ctx context.Context, userID uint) (*View, error)
	Sync(ctx context.Context, userID uint, items []SyncItem) (*View, error)
}

type service struct {
	store *repositories.Store
	log   *zap.Logger
}

func NewService(store *repositories.Store, log *zap.Logger) Service {
	if store == nil {
		panic("cart: store is required")
	}
	return &service{store: store, log: log}
}

func (s *service) GetOrCreateCart(ctx context.Context, userID uint) (uint, error) {
	c, err := s.store.Carts.GetOrCreate(ctx, userID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return c.ID, nil
}

func (s *service) GetCart(ctx context.Context, userID uint) (*View, error) {
	cartID, err := s.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cartID)
}

func (s *service) AddItem(ctx context.Context, userID, productID uint, quantity int, attrs models.AttributeSet) (*View, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var cartID uint
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		c, err := tx.Carts.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		cartID = c.ID

		// FOR SHARE keeps the stock figure stable until the line is written.
		p, err := tx.Products.ShareLockByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}
		if p.StockStatus == models.StockOutOfStock || p.StockQuantity <= 0 {
			return ErrOutOfStock
		}

		item := &models.CartItem{
			CartID:             c.ID,
			ProductID:          p.ID,
			SelectedAttributes: attrs,
			Quantity:           min(quantity, p.StockQuantity),
		}
		return tx.Carts.UpsertItem(ctx, item, p.StockQuantity)
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.view(ctx, cartID)
}

func (s *service) UpdateItem(ctx context.Context, userID, itemID uint, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var cartID uint
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		c, err := tx.Carts.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		cartID = c.ID

		item, err := tx.Carts.GetItem(ctx, c.ID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrCartItemNotFound
		}

		p, err := tx.Products.ShareLockByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}

		qty := min(quantity, p.StockQuantity)
		if qty <= 0 {
			_, err := tx.Carts.DeleteItem(ctx, c.ID, item.ID)
			return err
		}
		return tx.Carts.SetItemQuantity(ctx, item.ID, qty)
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.view(ctx, cartID)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uint) (*View, error) {
	c, err := s.store.Carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	deleted, err := s.store.Carts.DeleteItem(ctx, c.ID, itemID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !deleted {
		return nil, ErrCartItemNotFound
	}
	return s.view(ctx, c.ID)
}

func (s *service) Clear(ctx context.Context, userID uint) (*View, error) {
	c, err := s.store.Carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.store.Carts.Clear(ctx, c.ID); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.view(ctx, c.ID)
}

type lineKey struct {
	productID uint
	attrs     string
}

// Sync replaces the whole cart. Lines for unknown or unavailable products and
// non-positive quantities are dropped; duplicates are summed before clamping.
func (s *service) Sync(ctx context.Context, userID uint, items []SyncItem) (*View, error) {
	merged := make(map[lineKey]*models.CartItem)
	var order []lineKey
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		k := lineKey{productID: it.ProductID, attrs: it.SelectedAttributes.Key()}
		if line, ok := merged[k]; ok {
			line.Quantity += it.Quantity
			continue
		}
		merged[k] = &models.CartItem{
			ProductID:          it.ProductID,
			SelectedAttributes: it.SelectedAttributes,
			Quantity:           it.Quantity,
		}
		order = append(order, k)
	}

	var cartID uint
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		c, err := tx.Carts.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		cartID = c.ID
		if err := tx.Carts.Clear(ctx, c.ID); err != nil {
			return err
		}

		products, err := s.shareLockProducts(ctx, tx, order)
		if err != nil {
			return err
		}

		for _, k := range order {
			line := merged[k]
			p := products[k.productID]
			if p == nil || p.StockStatus == models.StockOutOfStock {
				continue
			}
			line.Quantity = min(line.Quantity, p.StockQuantity)
			if line.Quantity <= 0 {
				continue
			}
			line.ID = 0
			line.CartID = c.ID
			if err := tx.Carts.UpsertItem(ctx, line, p.StockQuantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.view(ctx, cartID)
}

func (s *service) shareLockProducts(ctx context.Context, tx *repositories.Store, keys []lineKey) (map[uint]*models.Product, error) {
	ids := make([]uint, 0, len(keys))
	seen := make(map[uint]bool, len(keys))
	for _, k := range keys {
		if !seen[k.productID] {
			seen[k.productID] = true
			ids = append(ids, k.productID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make(map[uint]*models.Product, len(ids))
	for _, id := range ids {
		p, err := tx.Products.ShareLockByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			s.log.Debug("cart sync skipped unknown product", zap.Uint("product_id", id))
			continue
		}
		out[id] = p
	}
	return out, nil
}

func (s *service) view(ctx context.Context, cartID uint) (*View, error) {
	items, err := s.store.Carts.Items(ctx, cartID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return buildView(cartID, items), nil
}

func buildView(cartID uint, items []models.CartItem) *View {
	v := &View{CartID: cartID, Items: make([]ItemView, 0, len(items)), TotalPrice: decimal.Zero}
	for _, it := range items {
		iv := ItemView{
			ID:                 it.ID,
			ProductID:          it.ProductID,
			SelectedAttributes: it.SelectedAttributes,
			Quantity:           it.Quantity,
			LineTotal:          decimal.Zero,
		}
		if p := it.Product; p != nil {
			iv.ProductName = p.Name
			iv.SKU = p.SKU
			iv.Price = p.Price
			iv.SalePrice = p.SalePrice
			iv.StockStatus = p.StockStatus
			iv.MaxQuantity = p.StockQuantity
			iv.ImageURL = p.PrimaryImageURL()
			iv.LineTotal = p.EffectivePrice().Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		v.Items = append(v.Items, iv)
		v.TotalItems += it.Quantity
		v.TotalPrice = v.TotalPrice.Add(iv.LineTotal)
	}
	v.TotalPrice = v.TotalPrice.Round(2)
	return v
}
