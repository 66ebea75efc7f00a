package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	apperrors "github.com/ThomasMo54/teaching-shop-example/pkg/errors"
)

func newTestCarrierService() (*CarrierService, *mockCarrierRepository) {
	repo := new(mockCarrierRepository)
	return NewCarrierService(repo, newTestLogger()), repo
}

func sampleCarrier() *domain.Carrier {
	return &domain.Carrier{ID: testCarrierID, Name: "Colissimo", DelayDays: 3}
}

func TestCreateCarrier_Success(t *testing.T) {
	svc, repo := newTestCarrierService()
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Carrier")).Return(nil)

	c, err := svc.CreateCarrier(ctx, &CarrierInput{Name: " DHL ", DelayDays: 0})

	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "DHL", c.Name)
	assert.Equal(t, 0, c.DelayDays)
}

func TestCreateCarrier_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input CarrierInput
		field string
	}{
		{"blank name", CarrierInput{Name: "", DelayDays: 1}, "name"},
		{"negative delay", CarrierInput{Name: "UPS", DelayDays: -1}, "delay_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestCarrierService()
			_, err := svc.CreateCarrier(context.Background(), &tt.input)
			requireFieldError(t, err, tt.field)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateCarrier_DuplicateName(t *testing.T) {
	svc, repo := newTestCarrierService()
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(apperrors.AlreadyExists("carrier", "name", "DHL"))

	_, err := svc.CreateCarrier(ctx, &CarrierInput{Name: "DHL", DelayDays: 2})

	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestUpdateCarrier(t *testing.T) {
	svc, repo := newTestCarrierService()
	ctx := context.Background()

	repo.On("GetByID", ctx, testCarrierID).Return(sampleCarrier(), nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	c, err := svc.UpdateCarrier(ctx, testCarrierID, &CarrierInput{Name: "Chronopost", DelayDays: 1})

	require.NoError(t, err)
	assert.Equal(t, "Chronopost", c.Name)
	assert.Equal(t, 1, c.DelayDays)
	assert.False(t, c.UpdatedAt.IsZero())
}

func TestPatchCarrier_DelayOnly(t *testing.T) {
	svc, repo := newTestCarrierService()
	ctx := context.Background()

	repo.On("GetByID", ctx, testCarrierID).Return(sampleCarrier(), nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	c, err := svc.PatchCarrier(ctx, testCarrierID, &PatchCarrierInput{DelayDays: intPtr(5)})

	require.NoError(t, err)
	assert.Equal(t, "Colissimo", c.Name)
	assert.Equal(t, 5, c.DelayDays)
}

func TestPatchCarrier_NotFound(t *testing.T) {
	svc, repo := newTestCarrierService()
	ctx := context.Background()

	repo.On("GetByID", ctx, testCarrierID).Return(nil, apperrors.NotFound("carrier", testCarrierID))

	_, err := svc.PatchCarrier(ctx, testCarrierID, &PatchCarrierInput{})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListAndDeleteCarriers(t *testing.T) {
	svc, repo := newTestCarrierService()
	ctx := context.Background()

	repo.On("List", ctx).Return([]domain.Carrier{*sampleCarrier()}, nil)
	repo.On("Delete", ctx, testCarrierID).Return(nil)

	list, err := svc.ListCarriers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteCarrier(ctx, testCarrierID))
	repo.AssertExpectations(t)
}
