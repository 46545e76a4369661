package service

import (
	"context"

	"github.com/shaibs3/studyhub/internal/apperr"
	"github.com/shaibs3/studyhub/internal/db_model"
	"github.com/shaibs3/studyhub/internal/events"
	"github.com/shaibs3/studyhub/internal/storage"
	"go.uber.org/zap"
)

const msgResourceIDRequired = "Resource ID is required"

// NewResource is the input of ResourceService.Create. Empty optional fields
// are stored as NULL.
type NewResource struct {
	Title       string
	URL         string
	Category    string
	Description string
}

// ResourceService manages the shared catalog and each user's viewed and
// pinned marks.
type ResourceService struct {
	store  storage.Provider
	events events.Publisher
	logger *zap.Logger
}

func NewResourceService(store storage.Provider, pub events.Publisher, logger *zap.Logger) *ResourceService {
	return &ResourceService{store: store, events: pub, logger: logger.Named("resources")}
}

func (s *ResourceService) Create(ctx context.Context, userID int64, in NewResource) (int64, error) {
	if in.Title == "" || in.URL == "" {
		return 0, apperr.Validation("Title and URL are required")
	}
	id, err := s.store.CreateResource(ctx, db_model.Resource{
		Title:       in.Title,
		URL:         in.URL,
		Category:    optional(in.Category),
		Description: optional(in.Description),
		UserID:      userID,
	})
	if err != nil {
		return 0, apperr.Internal("Error adding resource", err)
	}
	publish(ctx, s.events, s.logger, events.New(events.ResourceCreated, userID, id))
	return id, nil
}

func (s *ResourceService) List(ctx context.Context) ([]db_model.Resource, error) {
	resources, err := s.store.ListResources(ctx)
	if err != nil {
		return nil, apperr.Internal("Error fetching resources", err)
	}
	return resources, nil
}

// MarkViewed reports false when the resource was already viewed.
func (s *ResourceService) MarkViewed(ctx context.Context, userID, resourceID int64) (bool, error) {
	if resourceID <= 0 {
		return false, apperr.Validation(msgResourceIDRequired)
	}
	added, err := s.store.MarkViewed(ctx, userID, resourceID)
	if err != nil {
		return false, apperr.Internal("Error marking resource as viewed", err)
	}
	if added {
		publish(ctx, s.events, s.logger, events.New(events.ResourceViewed, userID, resourceID))
	}
	return added, nil
}

func (s *ResourceService) ListViewed(ctx context.Context, userID int64) ([]db_model.ResourceRef, error) {
	ids, err := s.store.ListViewed(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Error fetching viewed resources", err)
	}
	return refs(ids), nil
}

// Pin reports false when the resource was already pinned.
func (s *ResourceService) Pin(ctx context.Context, userID, resourceID int64) (bool, error) {
	if resourceID <= 0 {
		return false, apperr.Validation(msgResourceIDRequired)
	}
	added, err := s.store.Pin(ctx, userID, resourceID)
	if err != nil {
		return false, apperr.Internal("Error pinning resource", err)
	}
	if added {
		publish(ctx, s.events, s.logger, events.New(events.ResourcePinned, userID, resourceID))
	}
	return added, nil
}

func (s *ResourceService) Unpin(ctx context.Context, userID, resourceID int64) error {
	if resourceID <= 0 {
		return apperr.Validation("Resource ID is required in URL")
	}
	removed, err := s.store.Unpin(ctx, userID, resourceID)
	if err != nil {
		return apperr.Internal("Error unpinning resource", err)
	}
	if !removed {
		return apperr.NotFound("Resource pin not found or does not belong to user")
	}
	publish(ctx, s.events, s.logger, events.New(events.ResourceUnpinned, userID, resourceID))
	return nil
}

func (s *ResourceService) ListPinned(ctx context.Context, userID int64) ([]db_model.ResourceRef, error) {
	ids, err := s.store.ListPinned(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Error fetching pinned resources", err)
	}
	return refs(ids), nil
}

func refs(ids []int64) []db_model.ResourceRef {
	out := make([]db_model.ResourceRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, db_model.ResourceRef{ResourceID: id})
	}
	return out
}
