/**
 * @description
 * Pay-per-view purchase resolution: the direct (user, content) access check
 * and the indirect video-to-content lookup used when a caller only knows the
 * video being played.
 */
package app

import (
	"context"
	"errors"

	"github.com/streamvibe/entitlement-service/internal/store"
)

// HasPurchaseAccess reports whether the user holds a completed, active,
// unexpired purchase for the content.
func (s *Service) HasPurchaseAccess(ctx context.Context, userID, contentID string) (bool, error) {
	if userID == "" || contentID == "" {
		return false, nil
	}
	return s.repo.HasActivePurchase(ctx, userID, contentID)
}

// ResolveContentID maps a video id to its pay-per-view content id. A video
// with no pay-per-view mapping resolves to the empty string with no error:
// the content is simply not sold pay-per-view. Store failures are real errors.
func (s *Service) ResolveContentID(ctx context.Context, videoID string) (string, error) {
	if videoID == "" {
		return "", nil
	}
	contentID, err := s.repo.ResolveContentIDByVideoID(ctx, videoID)
	if err != nil {
		if errors.Is(err, store.ErrContentNotFound) {
			return "", nil
		}
		return "", err
	}
	return contentID, nil
}
