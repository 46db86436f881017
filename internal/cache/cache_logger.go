package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern invalidates a cache pattern, logging instead of
// propagating failures.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys, logging instead of propagating failures.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateReservationCaches drops every cached view derived from the
// reservation tables. Called after any booking mutation.
func InvalidateReservationCaches(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Week, "*")
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}

// InvalidateUserCaches drops cached user listings after account changes.
// Reservation views embed user names so they go too.
func InvalidateUserCaches(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.User, "*")
	InvalidateReservationCaches(ctx, cm)
}
