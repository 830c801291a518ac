// Package address manages customer addresses. Per customer and address type at
// most one address is the default.
package address

import (
	"context"
	"errors"

	apperrors "storeadmin/internal/errors"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/validation"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Input struct {
	AddressType   string `json:"addressType"`
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"streetAddress"`
	AddressLine2  string `json:"addressLine2"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
	IsDefault     bool   `json:"isDefault"`
}

func (in Input) validate() error {
	v := validation.New()
	v.OneOf("addressType", in.AddressType, models.AddressTypeBilling, models.AddressTypeShipping)
	v.Required("streetAddress", in.StreetAddress)
	v.Required("city", in.City)
	v.Required("state", in.State)
	v.Required("postalCode", in.PostalCode)
	v.Required("country", in.Country)
	v.MaxLength("fullName", in.FullName, validation.MaxNameLength)
	v.MaxLength("streetAddress", in.StreetAddress, validation.MaxNameLength)
	if in.Phone != "" {
		v.Phone("phone", in.Phone)
	}
	return v.Err()
}

func (in Input) apply(a *models.CustomerAddress) {
	a.AddressType = in.AddressType
	a.FullName = in.FullName
	a.Phone = in.Phone
	a.StreetAddress = in.StreetAddress
	a.AddressLine2 = in.AddressLine2
	a.City = in.City
	a.State = in.State
	a.PostalCode = in.PostalCode
	a.Country = in.Country
	a.IsDefault = in.IsDefault
}

type Service interface {
	Create(ctx context.Context, customerID uint, in Input) (*models.CustomerAddress, error)
	Update(ctx context.Context, addressID uint, in Input) (*models.CustomerAddress, error)
	SetDefault(ctx context.Context, customerID, addressID uint, addressType string) (*models.CustomerAddress, error)
	Delete(ctx context.Context, addressID uint) error
	Get(ctx context.Context, addressID uint) (*models.CustomerAddress, error)
	ListByCustomer(ctx context.Context, customerID uint, addressType string) ([]models.CustomerAddress, error)
	List(ctx context.Context, f repositories.AddressFilter) ([]models.CustomerAddress, int64, error)
	Stats(ctx context.Context) (*repositories.AddressStats, error)
}

type service struct {
	store *repositories.Store
	log   *zap.Logger
}

func NewService(store *repositories.Store, log *zap.Logger) Service {
	if store == nil {
		panic("address: store is required")
	}
	return &service{store: store, log: log}
}

// lockCustomer serialises every default-address change of one customer.
func lockCustomer(ctx context.Context, tx *repositories.Store, customerID uint) error {
	u, err := tx.Users.LockByID(ctx, customerID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrCustomerNotFound
	}
	return nil
}

func (s *service) Create(ctx context.Context, customerID uint, in Input) (*models.CustomerAddress, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	a := &models.CustomerAddress{CustomerID: customerID}
	in.apply(a)
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		if err := lockCustomer(ctx, tx, customerID); err != nil {
			return err
		}
		if a.IsDefault {
			if err := tx.Addresses.ClearDefault(ctx, customerID, a.AddressType, 0); err != nil {
				return err
			}
		}
		return tx.Addresses.Create(ctx, a)
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (s *service) Update(ctx context.Context, addressID uint, in Input) (*models.CustomerAddress, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var a *models.CustomerAddress
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		current, err := tx.Addresses.GetByID(ctx, addressID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrAddressNotFound
		}
		if err := lockCustomer(ctx, tx, current.CustomerID); err != nil {
			return err
		}
		in.apply(current)
		if current.IsDefault {
			if err := tx.Addresses.ClearDefault(ctx, current.CustomerID, current.AddressType, current.ID); err != nil {
				return err
			}
		}
		a = current
		return tx.Addresses.Save(ctx, current)
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (s *service) SetDefault(ctx context.Context, customerID, addressID uint, addressType string) (*models.CustomerAddress, error) {
	if !models.IsAddressType(addressType) {
		return nil, apperrors.Validation(map[string]string{"addressType": "must be billing or shipping"})
	}

	var a *models.CustomerAddress
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		if err := lockCustomer(ctx, tx, customerID); err != nil {
			return err
		}
		current, err := tx.Addresses.GetByID(ctx, addressID)
		if err != nil {
			return err
		}
		if current == nil || current.CustomerID != customerID || current.AddressType != addressType {
			return ErrAddressNotFound
		}
		if err := tx.Addresses.ClearDefault(ctx, customerID, addressType, addressID); err != nil {
			return err
		}
		if err := tx.Addresses.MarkDefault(ctx, addressID); err != nil {
			return err
		}
		current.IsDefault = true
		a = current
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (s *service) Delete(ctx context.Context, addressID uint) error {
	deleted, err := s.store.Addresses.Delete(ctx, addressID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !deleted {
		return ErrAddressNotFound
	}
	return nil
}

func (s *service) Get(ctx context.Context, addressID uint) (*models.CustomerAddress, error) {
	a, err := s.store.Addresses.GetByID(ctx, addressID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if a == nil {
		return nil, ErrAddressNotFound
	}
	return a, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uint, addressType string) ([]models.CustomerAddress, error) {
	out, err := s.store.Addresses.ListByCustomer(ctx, customerID, addressType)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return out, nil
}

func (s *service) List(ctx context.Context, f repositories.AddressFilter) ([]models.CustomerAddress, int64, error) {
	out, total, err := s.store.Addresses.List(ctx, f)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return out, total, nil
}

func (s *service) Stats(ctx context.Context) (*repositories.AddressStats, error) {
	st, err := s.store.Addresses.Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return st, nil
}

// mapErr turns a hit on the partial unique index into a conflict; the row lock
// makes that unreachable unless a writer bypasses this service.
func mapErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDefaultConflict
	}
	return apperrors.Internal(err)
}
