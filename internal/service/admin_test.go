package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ThomasMo54/teaching-shop-example/internal/auth"
	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/internal/repository"
	apperrors "github.com/ThomasMo54/teaching-shop-example/pkg/errors"
)

type adminMocks struct {
	products *mockProductRepository
	reviews  *mockReviewRepository
	carriers *mockCarrierRepository
}

func newTestAdminService(t *testing.T) (*AdminService, *auth.JWTManager, *adminMocks) {
	t.Helper()
	hash, err := auth.HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)

	jwt := auth.NewJWTManager("test-secret-key-that-is-long-enough-32", time.Hour)
	m := &adminMocks{
		products: new(mockProductRepository),
		reviews:  new(mockReviewRepository),
		carriers: new(mockCarrierRepository),
	}
	svc := NewAdminService(auth.NewCredentials("admin", hash), jwt, m.products, m.reviews, m.carriers, newTestLogger())
	return svc, jwt, m
}

func TestAdminLogin_Success(t *testing.T) {
	svc, jwt, _ := newTestAdminService(t)

	tok, err := svc.Login(context.Background(), "admin", "hunter2")

	require.NoError(t, err)
	claims, err := jwt.ValidateAccessToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestAdminLogin_BadCredentials(t *testing.T) {
	svc, _, _ := newTestAdminService(t)

	_, err := svc.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Login(context.Background(), "root", "hunter2")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAdminProducts(t *testing.T) {
	svc, _, m := newTestAdminService(t)
	ctx := context.Background()

	cat := categoryPtr(domain.CategoryBooks)
	rows := []domain.AdminProductRow{{ID: testProductID, Name: "Go", Category: domain.CategoryBooks, ReviewCount: 2, AverageRating: 4.5, ViewCount: 7}}
	m.products.On("AdminList", ctx, cat).Return(rows, nil)

	out, err := svc.Products(ctx, cat)

	require.NoError(t, err)
	assert.Equal(t, rows, out)

	_, err = svc.Products(ctx, categoryPtr("toys"))
	requireFieldError(t, err, "category")
}

func TestAdminReviews(t *testing.T) {
	svc, _, m := newTestAdminService(t)
	ctx := context.Background()

	m.reviews.On("List", ctx, repository.ReviewFilter{Rating: intPtr(5), ProductID: strPtr(testProductID)}).
		Return([]domain.Review{*sampleReview()}, 1, nil)

	out, err := svc.Reviews(ctx, intPtr(5), strPtr(testProductID))

	require.NoError(t, err)
	assert.Len(t, out, 1)

	_, err = svc.Reviews(ctx, intPtr(7), nil)
	requireFieldError(t, err, "rating")
}

func TestAdminCarriers(t *testing.T) {
	svc, _, m := newTestAdminService(t)
	ctx := context.Background()

	m.carriers.On("List", ctx).Return([]domain.Carrier{*sampleCarrier()}, nil)

	out, err := svc.Carriers(ctx)

	require.NoError(t, err)
	assert.Equal(t, "Colissimo", out[0].Name)
}
