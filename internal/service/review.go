package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ThomasMo54/teaching-shop-example/internal/domain"
	"github.com/ThomasMo54/teaching-shop-example/internal/repository"
	apperrors "github.com/ThomasMo54/teaching-shop-example/pkg/errors"
	"github.com/ThomasMo54/teaching-shop-example/pkg/validator"
)

const maxAuthorNameLength = 100

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	repo        repository.ReviewRepository
	productRepo repository.ProductRepository
	publisher   EventPublisher
	logger      *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	repo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	publisher EventPublisher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		repo:        repo,
		productRepo: productRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// ReviewInput holds every writable review field.
type ReviewInput struct {
	ProductID  string
	AuthorName string
	Rating     int
	Comment    string
}

// PatchReviewInput holds the fields of a partial update.
type PatchReviewInput struct {
	ProductID  *string
	AuthorName *string
	Rating     *int
	Comment    *string
}

// ListReviewsInput holds the list filters accepted by ListReviews.
type ListReviewsInput struct {
	ProductID *string
	Rating    *int
	MinRating *int
	Limit     int
	Offset    int
}

var errRatingRange = validator.NewFieldError("rating",
	fmt.Sprintf("must be between %d and %d", domain.MinRating, domain.MaxRating))

func validateReview(r *domain.Review) error {
	if strings.TrimSpace(r.ProductID) == "" {
		return validator.NewFieldError("product_id", "is required")
	}
	if err := checkText("author_name", r.AuthorName, maxAuthorNameLength); err != nil {
		return err
	}
	if !domain.IsValidRating(r.Rating) {
		return errRatingRange
	}
	return nil
}

// ensureProduct fails with InvalidInput when the referenced product is missing.
func (s *ReviewService) ensureProduct(ctx context.Context, productID string) error {
	exists, err := s.productRepo.Exists(ctx, productID)
	if err != nil {
		return fmt.Errorf("check product exists: %w", err)
	}
	if !exists {
		return apperrors.InvalidInput("product does not exist")
	}
	return nil
}

// CreateReview validates input and stores a new review for an existing product.
func (s *ReviewService) CreateReview(ctx context.Context, input *ReviewInput) (*domain.Review, error) {
	review := &domain.Review{
		ID:         uuid.New().String(),
		ProductID:  input.ProductID,
		AuthorName: strings.TrimSpace(input.AuthorName),
		Rating:     input.Rating,
		Comment:    input.Comment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := validateReview(review); err != nil {
		return nil, err
	}
	if err := s.ensureProduct(ctx, review.ProductID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.publisher.PublishReviewCreated(ctx, review); err != nil {
		logPublishError(ctx, s.logger, "review.created", review.ID, err)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// GetReview retrieves a review by its ID.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// ListReviews returns the reviews matching input, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, input ListReviewsInput) ([]domain.Review, int, error) {
	if input.Rating != nil && !domain.IsValidRating(*input.Rating) {
		return nil, 0, errRatingRange
	}
	if input.MinRating != nil && !domain.IsValidRating(*input.MinRating) {
		return nil, 0, validator.NewFieldError("min_rating",
			fmt.Sprintf("must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	reviews, total, err := s.repo.List(ctx, repository.ReviewFilter{
		ProductID: input.ProductID,
		Rating:    input.Rating,
		MinRating: input.MinRating,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

// UpdateReview replaces every writable field of a review.
func (s *ReviewService) UpdateReview(ctx context.Context, id string, input *ReviewInput) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review for update: %w", err)
	}

	productChanged := review.ProductID != input.ProductID
	review.ProductID = input.ProductID
	review.AuthorName = strings.TrimSpace(input.AuthorName)
	review.Rating = input.Rating
	review.Comment = input.Comment

	return s.save(ctx, review, productChanged)
}

// PatchReview applies the non-nil fields of input to a review.
func (s *ReviewService) PatchReview(ctx context.Context, id string, input *PatchReviewInput) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review for update: %w", err)
	}

	productChanged := false
	if input.ProductID != nil {
		productChanged = review.ProductID != *input.ProductID
		review.ProductID = *input.ProductID
	}
	if input.AuthorName != nil {
		review.AuthorName = strings.TrimSpace(*input.AuthorName)
	}
	if input.Rating != nil {
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = *input.Comment
	}

	return s.save(ctx, review, productChanged)
}

func (s *ReviewService) save(ctx context.Context, review *domain.Review, productChanged bool) (*domain.Review, error) {
	if err := validateReview(review); err != nil {
		return nil, err
	}
	if productChanged {
		if err := s.ensureProduct(ctx, review.ProductID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.logger.InfoContext(ctx, "review updated", slog.String("review_id", review.ID))

	return review, nil
}

// DeleteReview removes a review.
func (s *ReviewService) DeleteReview(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	s.logger.InfoContext(ctx, "review deleted", slog.String("review_id", id))

	return nil
}

// ProductReviews returns all reviews of a product with their rating summary.
func (s *ReviewService) ProductReviews(ctx context.Context, productID string) (*domain.ProductReviews, error) {
	exists, err := s.productRepo.Exists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("check product exists: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFound("product", productID)
	}

	reviews, _, err := s.repo.List(ctx, repository.ReviewFilter{ProductID: &productID})
	if err != nil {
		return nil, fmt.Errorf("list product reviews: %w", err)
	}

	summary, err := s.repo.GetSummary(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			summary = &domain.ReviewSummary{}
		} else {
			return nil, fmt.Errorf("get review summary: %w", err)
		}
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}
	return &domain.ProductReviews{
		ProductID: productID,
		Summary:   *summary,
		Reviews:   reviews,
	}, nil
}
