package memory

import (
	"context"
	"fmt"
	"sync"

	"goodnight/domain/entities"
)

// FollowRepository is a mutex-guarded in-memory follow edge store
type FollowRepository struct {
	mu        sync.RWMutex
	following map[string]map[string]*entities.FollowEdge // follower -> followed
	followers map[string]map[string]bool                 // followed -> follower set
}

// NewFollowRepository creates an in-memory follow repository
func NewFollowRepository() *FollowRepository {
	return &FollowRepository{
		following: make(map[string]map[string]*entities.FollowEdge),
		followers: make(map[string]map[string]bool),
	}
}

// Create implements ports.FollowRepository
func (r *FollowRepository) Create(ctx context.Context, edge *entities.FollowEdge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.following[edge.FollowerID] == nil {
		r.following[edge.FollowerID] = make(map[string]*entities.FollowEdge)
	}
	if _, exists := r.following[edge.FollowerID][edge.FollowedID]; exists {
		return fmt.Errorf("follow edge %s -> %s already exists", edge.FollowerID, edge.FollowedID)
	}
	r.following[edge.FollowerID][edge.FollowedID] = edge

	if r.followers[edge.FollowedID] == nil {
		r.followers[edge.FollowedID] = make(map[string]bool)
	}
	r.followers[edge.FollowedID][edge.FollowerID] = true

	return nil
}

// Delete implements ports.FollowRepository
func (r *FollowRepository) Delete(ctx context.Context, followerID, followedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.following[followerID][followedID]; !exists {
		return fmt.Errorf("follow edge %s -> %s not found", followerID, followedID)
	}
	delete(r.following[followerID], followedID)
	delete(r.followers[followedID], followerID)
	return nil
}

// Exists implements ports.FollowRepository
func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.following[followerID][followedID]
	return exists, nil
}

// FollowedIDs implements ports.FollowRepository
func (r *FollowRepository) FollowedIDs(ctx context.Context, followerID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.following[followerID]))
	for id := range r.following[followerID] {
		ids = append(ids, id)
	}
	return ids, nil
}

// FollowerIDs implements ports.FollowRepository
func (r *FollowRepository) FollowerIDs(ctx context.Context, followedID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.followers[followedID]))
	for id := range r.followers[followedID] {
		ids = append(ids, id)
	}
	return ids, nil
}
