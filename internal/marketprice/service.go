package marketprice

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidPrice = errors.New("price must be greater than zero")
	ErrNameRequired = errors.New("product name is required")
)

type Service interface {
	Create(ctx context.Context, mp *MarketPrice) (*MarketPrice, error)
	List(ctx context.Context) ([]MarketPrice, error)
	UpdatePrice(ctx context.Context, id int64, price float64) (*MarketPrice, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, mp *MarketPrice) (*MarketPrice, error) {
	if mp.ProductName == "" {
		return nil, ErrNameRequired
	}
	if mp.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	mp.PreviousPrice = nil

	if err := s.repo.Create(ctx, mp); err != nil {
		log.Error().Err(err).Str("product_name", mp.ProductName).Msg("service: failed to create market price")
		return nil, fmt.Errorf("service: failed to create market price: %w", err)
	}
	return mp, nil
}

func (s *service) List(ctx context.Context) ([]MarketPrice, error) {
	prices, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list market prices")
		return nil, fmt.Errorf("service: failed to list market prices: %w", err)
	}
	return prices, nil
}

func (s *service) UpdatePrice(ctx context.Context, id int64, price float64) (*MarketPrice, error) {
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	if err := s.repo.UpdatePrice(ctx, id, price); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("market_price_id", id).Msg("service: failed to update market price")
		return nil, fmt.Errorf("service: failed to update market price: %w", err)
	}

	mp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to reload market price: %w", err)
	}
	return mp, nil
}
