package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThomasMo54/teaching-shop-example/internal/auth"
	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/internal/repository"
	apperrors "github.com/ThomasMo54/teaching-shop-example/pkg/errors"
	"github.com/ThomasMo54/teaching-shop-example/pkg/validator"
)

// AdminService backs the authenticated admin surface: login and the
// read-only admin list views.
type AdminService struct {
	credentials *auth.Credentials
	jwt         *auth.JWTManager
	products    repository.ProductRepository
	reviews     repository.ReviewRepository
	carriers    repository.CarrierRepository
	logger      *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(
	credentials *auth.Credentials,
	jwt *auth.JWTManager,
	products repository.ProductRepository,
	reviews repository.ReviewRepository,
	carriers repository.CarrierRepository,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		credentials: credentials,
		jwt:         jwt,
		products:    products,
		reviews:     reviews,
		carriers:    carriers,
		logger:      logger,
	}
}

// Login checks the admin credentials and issues an access token.
func (s *AdminService) Login(ctx context.Context, username, password string) (*auth.Token, error) {
	if err := s.credentials.Check(username, password); err != nil {
		s.logger.WarnContext(ctx, "admin login failed", slog.String("username", username))
		return nil, apperrors.Unauthorized("invalid username or password")
	}

	token, err := s.jwt.GenerateAccessToken(username, auth.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.logger.InfoContext(ctx, "admin logged in", slog.String("username", username))
	return token, nil
}

// Products returns the admin product rows, optionally for one category.
func (s *AdminService) Products(ctx context.Context, category *domain.Category) ([]domain.AdminProductRow, error) {
	if category != nil && !category.IsValid() {
		return nil, validator.NewFieldError("category", "unknown category")
	}
	rows, err := s.products.AdminList(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("admin list products: %w", err)
	}
	return rows, nil
}

// Reviews returns every review, optionally filtered by exact rating and product.
func (s *AdminService) Reviews(ctx context.Context, rating *int, productID *string) ([]domain.Review, error) {
	if rating != nil && !domain.IsValidRating(*rating) {
		return nil, errRatingRange
	}
	reviews, _, err := s.reviews.List(ctx, repository.ReviewFilter{ProductID: productID, Rating: rating})
	if err != nil {
		return nil, fmt.Errorf("admin list reviews: %w", err)
	}
	return reviews, nil
}

// Carriers returns every carrier ordered by name.
func (s *AdminService) Carriers(ctx context.Context) ([]domain.Carrier, error) {
	carriers, err := s.carriers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin list carriers: %w", err)
	}
	return carriers, nil
}
