package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"goodnight/application/ports"
	"goodnight/domain/entities"
	apperrors "goodnight/pkg/errors"
)

// FollowService owns the directed follow graph. The validation order below
// is a contract: callers assert specific messages per failure, and the
// order decides which message wins when several conditions are violated at
// once (a nonexistent self-id reports "user not found", not self-follow).
type FollowService struct {
	follows ports.FollowRepository
	users   ports.UserRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewFollowService creates a new follow service
func NewFollowService(
	follows ports.FollowRepository,
	users ports.UserRepository,
	logger *zap.Logger,
) *FollowService {
	return &FollowService{
		follows: follows,
		users:   users,
		logger:  logger,
		now:     time.Now,
	}
}

// Follow creates a follow edge from follower to followed
func (s *FollowService) Follow(ctx context.Context, followerID, followedID string) (*entities.FollowEdge, error) {
	if err := s.validateTarget(ctx, followerID, followedID, "cannot follow yourself"); err != nil {
		return nil, err
	}

	exists, err := s.follows.Exists(ctx, followerID, followedID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to check follow edge")
	}
	if exists {
		return nil, apperrors.NewInvalidError("already following")
	}

	edge := entities.NewFollowEdge(followerID, followedID, s.now())
	if err := s.follows.Create(ctx, edge); err != nil {
		return nil, apperrors.Wrap(err, "failed to create follow edge")
	}

	s.logger.Info("follow created",
		zap.String("followerID", followerID),
		zap.String("followedID", followedID),
	)

	return edge, nil
}

// Unfollow destroys the follow edge from follower to followed
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID string) error {
	if err := s.validateTarget(ctx, followerID, followedID, "cannot unfollow yourself"); err != nil {
		return err
	}

	exists, err := s.follows.Exists(ctx, followerID, followedID)
	if err != nil {
		return apperrors.Wrap(err, "failed to check follow edge")
	}
	if !exists {
		return apperrors.NewInvalidError("not following this user")
	}

	if err := s.follows.Delete(ctx, followerID, followedID); err != nil {
		return apperrors.Wrap(err, "failed to delete follow edge")
	}

	s.logger.Info("follow removed",
		zap.String("followerID", followerID),
		zap.String("followedID", followedID),
	)

	return nil
}

// validateTarget runs the shared leading checks for follow and unfollow,
// stopping at the first failure
func (s *FollowService) validateTarget(ctx context.Context, followerID, followedID, selfMessage string) error {
	if followedID == "" {
		return apperrors.NewInvalidError("user id required")
	}

	target, err := s.users.GetByID(ctx, followedID)
	if err != nil {
		return apperrors.Wrap(err, "failed to load user")
	}
	if target == nil {
		return apperrors.NewInvalidError("user not found")
	}

	if followerID == followedID {
		return apperrors.NewInvalidError(selfMessage)
	}

	return nil
}
