package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var (
	ErrNotOwner     = errors.New("product does not belong to this farmer")
	ErrInvalidPrice = errors.New("price must be greater than zero")
	ErrInvalidStock = errors.New("quantity cannot be negative")
	ErrNameRequired = errors.New("name is required")
)

type Service interface {
	Create(ctx context.Context, farmerID int64, p *Product) (*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, category string) ([]Product, error)
	ListByFarmer(ctx context.Context, farmerID int64) ([]Product, error)
	Update(ctx context.Context, farmerID int64, p *Product) (*Product, error)
	Delete(ctx context.Context, farmerID, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validate(p *Product) error {
	if p.Name == "" {
		return ErrNameRequired
	}
	if p.Price <= 0 {
		return ErrInvalidPrice
	}
	if p.Quantity < 0 {
		return ErrInvalidStock
	}
	return nil
}

func (s *service) Create(ctx context.Context, farmerID int64, p *Product) (*Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	p.FarmerID = farmerID

	if _, err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Int64("farmer_id", farmerID).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Int64("product_id", p.ID).Int64("farmer_id", farmerID).Msg("service: product created")
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to fetch product")
		return nil, fmt.Errorf("service: failed to fetch product: %w", err)
	}
	return p, nil
}

func (s *service) List(ctx context.Context, category string) ([]Product, error) {
	products, err := s.repo.List(ctx, category)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

func (s *service) ListByFarmer(ctx context.Context, farmerID int64) ([]Product, error) {
	products, err := s.repo.ListByFarmer(ctx, farmerID)
	if err != nil {
		log.Error().Err(err).Int64("farmer_id", farmerID).Msg("service: failed to list farmer products")
		return nil, fmt.Errorf("service: failed to list farmer products: %w", err)
	}
	return products, nil
}

// requireOwner loads the product and checks it belongs to the farmer. Every
// mutation goes through it so route handlers never touch another farmer's
// rows.
func (s *service) requireOwner(ctx context.Context, farmerID, productID int64) (*Product, error) {
	existing, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch product for ownership check: %w", err)
	}
	if existing.FarmerID != farmerID {
		return nil, ErrNotOwner
	}
	return existing, nil
}

func (s *service) Update(ctx context.Context, farmerID int64, p *Product) (*Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	existing, err := s.requireOwner(ctx, farmerID, p.ID)
	if err != nil {
		return nil, err
	}
	p.FarmerID = existing.FarmerID

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("product_id", p.ID).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}
	return p, nil
}

func (s *service) Delete(ctx context.Context, farmerID, id int64) error {
	if _, err := s.requireOwner(ctx, farmerID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrProductInUse) {
			return err
		}
		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	log.Info().Int64("product_id", id).Int64("farmer_id", farmerID).Msg("service: product deleted")
	return nil
}
