package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cnc-voile/cantine-service/internal/models"
	"github.com/cnc-voile/cantine-service/internal/validator"
)

func newExtraServiceForTest(t *testing.T) *extraService {
	t.Helper()

	db := newTestDB(t)
	return &extraService{
		repo:      newTestRepo(t, db),
		db:        db,
		logger:    testLogger(),
		validator: validator.New(),
		cache:     noCache(),
	}
}

func TestExtraService_Set(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	t.Run("records counts per category", func(t *testing.T) {
		svc := newExtraServiceForTest(t)

		err := svc.Set(ctx, 1, &SetExtrasRequest{
			Date: "2025-06-02",
			Extras: map[string]int{
				string(models.ExtraEDS):      3,
				string(models.ExtraBenevole): 1,
			},
		})
		if err != nil {
			t.Fatalf("set failed: %v", err)
		}

		got, err := svc.Get(ctx, day)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got[string(models.ExtraEDS)] != 3 || got[string(models.ExtraBenevole)] != 1 {
			t.Errorf("unexpected counts: %v", got)
		}
	})

	t.Run("setting again overwrites", func(t *testing.T) {
		svc := newExtraServiceForTest(t)

		for _, count := range []int{3, 5} {
			err := svc.Set(ctx, 1, &SetExtrasRequest{
				Date:   "2025-06-02",
				Extras: map[string]int{string(models.ExtraEDS): count},
			})
			if err != nil {
				t.Fatalf("set failed: %v", err)
			}
		}

		got, err := svc.Get(ctx, day)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got[string(models.ExtraEDS)] != 5 {
			t.Errorf("expected count 5, got %d", got[string(models.ExtraEDS)])
		}
	})

	t.Run("unknown category fails the whole batch", func(t *testing.T) {
		svc := newExtraServiceForTest(t)

		err := svc.Set(ctx, 1, &SetExtrasRequest{
			Date: "2025-06-02",
			Extras: map[string]int{
				string(models.ExtraEDS): 3,
				"Inconnu":               1,
			},
		})
		if !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected ErrValidationFailed, got %v", err)
		}

		got, err := svc.Get(ctx, day)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("nothing should be written on a rejected batch, got %v", got)
		}
	})

	t.Run("negative count is rejected", func(t *testing.T) {
		svc := newExtraServiceForTest(t)

		err := svc.Set(ctx, 1, &SetExtrasRequest{
			Date:   "2025-06-02",
			Extras: map[string]int{string(models.ExtraAutre): -1},
		})
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("unset categories are absent from get", func(t *testing.T) {
		svc := newExtraServiceForTest(t)

		got, err := svc.Get(ctx, day)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no entries, got %v", got)
		}
	})
}
