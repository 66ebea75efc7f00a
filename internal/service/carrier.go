package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/internal/repository"
	"github.com/ThomasMo54/teaching-shop-example/pkg/validator"
)

const maxCarrierNameLength = 100

// CarrierService manages shipping carriers.
type CarrierService struct {
	repo   repository.CarrierRepository
	logger *slog.Logger
}

func NewCarrierService(repo repository.CarrierRepository, logger *slog.Logger) *CarrierService {
	return &CarrierService{repo: repo, logger: logger}
}

type CarrierInput struct {
	Name      string
	DelayDays int
}

type PatchCarrierInput struct {
	Name      *string
	DelayDays *int
}

func validateCarrier(c *domain.Carrier) error {
	if err := checkText("name", c.Name, maxCarrierNameLength); err != nil {
		return err
	}
	if c.DelayDays < 0 {
		return validator.NewFieldError("delay_days", "must be greater than or equal to 0")
	}
	return nil
}

func (s *CarrierService) CreateCarrier(ctx context.Context, input *CarrierInput) (*domain.Carrier, error) {
	now := time.Now().UTC()
	carrier := &domain.Carrier{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(input.Name),
		DelayDays: input.DelayDays,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateCarrier(carrier); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, carrier); err != nil {
		return nil, fmt.Errorf("create carrier: %w", err)
	}

	s.logger.InfoContext(ctx, "carrier created",
		slog.String("carrier_id", carrier.ID),
		slog.String("name", carrier.Name),
	)
	return carrier, nil
}

func (s *CarrierService) GetCarrier(ctx context.Context, id string) (*domain.Carrier, error) {
	carrier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get carrier: %w", err)
	}
	return carrier, nil
}

// ListCarriers returns every carrier ordered by name.
func (s *CarrierService) ListCarriers(ctx context.Context) ([]domain.Carrier, error) {
	carriers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	return carriers, nil
}

func (s *CarrierService) UpdateCarrier(ctx context.Context, id string, input *CarrierInput) (*domain.Carrier, error) {
	name, delay := input.Name, input.DelayDays
	return s.update(ctx, id, &PatchCarrierInput{Name: &name, DelayDays: &delay})
}

func (s *CarrierService) PatchCarrier(ctx context.Context, id string, input *PatchCarrierInput) (*domain.Carrier, error) {
	return s.update(ctx, id, input)
}

func (s *CarrierService) update(ctx context.Context, id string, input *PatchCarrierInput) (*domain.Carrier, error) {
	carrier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get carrier for update: %w", err)
	}

	if input.Name != nil {
		carrier.Name = strings.TrimSpace(*input.Name)
	}
	if input.DelayDays != nil {
		carrier.DelayDays = *input.DelayDays
	}
	if err := validateCarrier(carrier); err != nil {
		return nil, err
	}

	carrier.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, carrier); err != nil {
		return nil, fmt.Errorf("update carrier: %w", err)
	}

	s.logger.InfoContext(ctx, "carrier updated", slog.String("carrier_id", carrier.ID))
	return carrier, nil
}

func (s *CarrierService) DeleteCarrier(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete carrier: %w", err)
	}
	s.logger.InfoContext(ctx, "carrier deleted", slog.String("carrier_id", id))
	return nil
}
