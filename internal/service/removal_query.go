package service

import (
	"context"
	"errors"
	"fmt"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"
	"removaltracker/internal/repository"
	"removaltracker/internal/workflow"

	"github.com/google/uuid"
)

// ListFilter narrows ListRemovals beyond what the actor may see.
type ListFilter struct {
	Status string
	Page   int
	Limit  int
}

// List returns the removals visible to the actor, newest first.
func (s *RemovalService) List(ctx context.Context, actor *authz.Actor, filter ListFilter) ([]model.Removal, int64, error) {
	if actor == nil {
		return nil, 0, ErrUnauthenticated
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	visibility := authz.VisibilityFor(actor)
	if visibility.Empty() {
		return []model.Removal{}, 0, nil
	}

	removals, total, err := s.repo.List(ctx, repository.RemovalFilter{
		Visibility: visibility,
		Status:     filter.Status,
		Page:       filter.Page,
		Limit:      filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list removals: %w", err)
	}
	return removals, total, nil
}

// Get returns one removal if the actor may view it.
func (s *RemovalService) Get(ctx context.Context, actor *authz.Actor, id uuid.UUID) (*model.Removal, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	removal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanView(actor, removal) {
		return nil, fmt.Errorf("%w: removal %s is not visible to you", ErrPermissionDenied, id)
	}
	return removal, nil
}

// AllowedTransitions lists the edges the actor could take on the removal
// right now. Advisory only: mutations check again under the lock.
func (s *RemovalService) AllowedTransitions(ctx context.Context, actor *authz.Actor, id uuid.UUID) ([]workflow.Transition, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	removal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return workflow.AllowedTransitions(actor, removal), nil
}

// Steps returns the workflow steps in display order.
func (s *RemovalService) Steps() []workflow.Step {
	return workflow.Steps()
}

// Step returns the workflow step of a status.
func (s *RemovalService) Step(status string) (workflow.Step, error) {
	step, ok := workflow.StepFor(status)
	if !ok {
		return workflow.Step{}, fmt.Errorf("%w: workflow step %s", ErrNotFound, status)
	}
	return step, nil
}

// Transitions returns the full transition table.
func (s *RemovalService) Transitions() []workflow.Transition {
	return workflow.Transitions()
}

func (s *RemovalService) load(ctx context.Context, id uuid.UUID) (*model.Removal, error) {
	removal, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: removal %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load removal: %w", err)
	}
	return removal, nil
}
