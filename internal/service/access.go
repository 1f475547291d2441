package service

import (
	"context"
	"fmt"

	"github.com/mmynk/payhive/internal/auth"
	"github.com/mmynk/payhive/internal/ledger"
	"github.com/mmynk/payhive/internal/middleware"
	"github.com/mmynk/payhive/internal/models"
)

// callerID returns the authenticated user ID placed in ctx by middleware.RequireAuth.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", auth.ErrMissingToken
	}
	return userID, nil
}

// memberGroup loads a group and checks that the caller belongs to it.
func memberGroup(ctx context.Context, l *ledger.Ledger, groupID string) (*models.Group, string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, "", err
	}
	if groupID == "" {
		return nil, "", fmt.Errorf("%w: group ID is required", ledger.ErrValidation)
	}

	group, err := l.GetGroup(ctx, groupID)
	if err != nil {
		return nil, "", err
	}
	if !group.HasMember(userID) {
		return nil, "", fmt.Errorf("%w: group %s", ErrNotGroupMember, groupID)
	}
	return group, userID, nil
}
