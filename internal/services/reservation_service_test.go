package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cnc-voile/cantine-service/internal/events"
	"github.com/cnc-voile/cantine-service/internal/models"
	"github.com/cnc-voile/cantine-service/internal/validator"
)

func newReservationServiceForTest(t *testing.T) (*reservationService, *events.MockEventPublisher) {
	t.Helper()

	db := newTestDB(t)
	repo := newTestRepo(t, db)
	publisher := events.NewMockEventPublisher(testLogger())

	svc := &reservationService{
		repo:      repo,
		db:        db,
		logger:    testLogger(),
		validator: validator.New(),
		publisher: publisher,
		cache:     noCache(),
		// Fixed clock so past-date checks are deterministic.
		now: func() time.Time {
			return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
		},
	}

	return svc, publisher
}

func TestReservationService_Toggle(t *testing.T) {
	ctx := context.Background()

	t.Run("reserve creates a booking", func(t *testing.T) {
		svc, publisher := newReservationServiceForTest(t)
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "01")

		err := svc.Toggle(ctx, user.ID, &ToggleReservationRequest{Date: "2025-06-02", Reserved: true})
		if err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
		if n := countReservations(t, svc.db); n != 1 {
			t.Errorf("expected 1 reservation, got %d", n)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("expected 1 event, got %d", len(published))
		}
		event := published[0]
		if event.Type != events.EventReservationCreated {
			t.Errorf("expected %s, got %s", events.EventReservationCreated, event.Type)
		}
		if event.ID == "" {
			t.Error("event ID should not be empty")
		}
		if event.Source != "cantine-service" {
			t.Errorf("expected source 'cantine-service', got %q", event.Source)
		}
		if event.Version != "1.0" {
			t.Errorf("expected version '1.0', got %q", event.Version)
		}
		if event.Timestamp.IsZero() {
			t.Error("event timestamp should not be zero")
		}
	})

	t.Run("reserve twice keeps one row", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "01")

		req := &ToggleReservationRequest{Date: "2025-06-02", Reserved: true}
		if err := svc.Toggle(ctx, user.ID, req); err != nil {
			t.Fatalf("first toggle failed: %v", err)
		}

		// Back-date the row so the conflict branch has to refresh it.
		stale := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		if err := svc.db.Model(&models.Reservation{}).Where("user_id = ?", user.ID).
			Update("updated_at", stale).Error; err != nil {
			t.Fatalf("failed to back-date reservation: %v", err)
		}

		req.Benevole = true
		if err := svc.Toggle(ctx, user.ID, req); err != nil {
			t.Fatalf("second toggle failed: %v", err)
		}

		if n := countReservations(t, svc.db); n != 1 {
			t.Errorf("expected 1 reservation after repeated toggle, got %d", n)
		}

		var r models.Reservation
		if err := svc.db.First(&r).Error; err != nil {
			t.Fatalf("failed to load reservation: %v", err)
		}
		if !r.Benevole {
			t.Error("expected the volunteer flag to be updated")
		}
		if !r.UpdatedAt.After(stale) {
			t.Errorf("expected updated_at to be refreshed by the upsert, still %v", r.UpdatedAt)
		}
	})

	t.Run("cancel removes the booking", func(t *testing.T) {
		svc, publisher := newReservationServiceForTest(t)
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "01")
		mustCreateReservation(t, svc.db, user.ID, "2025-06-02", false)

		err := svc.Toggle(ctx, user.ID, &ToggleReservationRequest{Date: "2025-06-02", Reserved: false})
		if err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
		if n := countReservations(t, svc.db); n != 0 {
			t.Errorf("expected 0 reservations, got %d", n)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventReservationDeleted {
			t.Errorf("expected one %s event, got %v", events.EventReservationDeleted, published)
		}
	})

	t.Run("cancel without a booking is not an error", func(t *testing.T) {
		svc, publisher := newReservationServiceForTest(t)
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "01")

		err := svc.Toggle(ctx, user.ID, &ToggleReservationRequest{Date: "2025-06-02", Reserved: false})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(publisher.GetPublishedEvents()) != 0 {
			t.Error("no event should be published when nothing was deleted")
		}
	})

	t.Run("past date is rejected and writes nothing", func(t *testing.T) {
		svc, publisher := newReservationServiceForTest(t)
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "01")

		err := svc.Toggle(ctx, user.ID, &ToggleReservationRequest{Date: "2025-05-31", Reserved: true})
		if !errors.Is(err, ErrPastDate) {
			t.Fatalf("expected ErrPastDate, got %v", err)
		}
		if n := countReservations(t, svc.db); n != 0 {
			t.Errorf("expected 0 reservations, got %d", n)
		}
		if len(publisher.GetPublishedEvents()) != 0 {
			t.Error("no event should be published for a rejected booking")
		}
	})

	t.Run("today is accepted", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "01")

		err := svc.Toggle(ctx, user.ID, &ToggleReservationRequest{Date: "2025-06-01", Reserved: true})
		if err != nil {
			t.Fatalf("expected same-day booking to pass, got %v", err)
		}
	})

	t.Run("today is accepted west of UTC", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "01")

		// Local midnight in a negative-offset zone lies after UTC midnight
		// of the same calendar day. The guard must still let today through.
		svc.now = func() time.Time {
			return time.Date(2025, 6, 1, 9, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
		}

		err := svc.Toggle(ctx, user.ID, &ToggleReservationRequest{Date: "2025-06-01", Reserved: true})
		if err != nil {
			t.Fatalf("expected same-day booking to pass, got %v", err)
		}

		err = svc.Toggle(ctx, user.ID, &ToggleReservationRequest{Date: "2025-05-31", Reserved: true})
		if !errors.Is(err, ErrPastDate) {
			t.Errorf("expected ErrPastDate for yesterday, got %v", err)
		}
	})

	t.Run("malformed date fails validation", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "01")

		err := svc.Toggle(ctx, user.ID, &ToggleReservationRequest{Date: "02/06/2025", Reserved: true})
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})
}

func TestReservationService_UpdateOwnStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("flips the volunteer flag", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "01")
		mustCreateReservation(t, svc.db, user.ID, "2025-06-02", false)

		err := svc.UpdateOwnStatus(ctx, user.ID, &UpdateOwnStatusRequest{Date: "2025-06-02", Benevole: true})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}

		var r models.Reservation
		if err := svc.db.First(&r).Error; err != nil {
			t.Fatalf("failed to load reservation: %v", err)
		}
		if !r.Benevole {
			t.Error("expected the volunteer flag to be set")
		}
	})

	t.Run("creates the booking when missing", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "01")

		err := svc.UpdateOwnStatus(ctx, user.ID, &UpdateOwnStatusRequest{Date: "2025-06-02", Benevole: true})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if n := countReservations(t, svc.db); n != 1 {
			t.Errorf("expected 1 reservation, got %d", n)
		}
	})

	t.Run("past date is rejected", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "01")

		err := svc.UpdateOwnStatus(ctx, user.ID, &UpdateOwnStatusRequest{Date: "2025-05-30", Benevole: true})
		if !errors.Is(err, ErrPastDate) {
			t.Errorf("expected ErrPastDate, got %v", err)
		}
	})
}

func TestReservationService_Weeks(t *testing.T) {
	ctx := context.Background()
	weekStart := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	t.Run("user week keyed by date", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "01")
		mustCreateReservation(t, svc.db, user.ID, "2025-06-02", false)
		mustCreateReservation(t, svc.db, user.ID, "2025-06-04", true)
		// Outside the requested week.
		mustCreateReservation(t, svc.db, user.ID, "2025-06-09", false)

		resp, err := svc.ListForUserWeek(ctx, user.ID, weekStart)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}

		if resp.UserStatus != string(models.StatusMoniteur) {
			t.Errorf("expected user status Moniteur, got %s", resp.UserStatus)
		}
		if len(resp.Reservations) != 2 {
			t.Fatalf("expected 2 days, got %d", len(resp.Reservations))
		}
		monday, ok := resp.Reservations["2025-06-02"]
		if !ok || !monday.Reserved || monday.Benevole {
			t.Errorf("unexpected entry for monday: %+v", monday)
		}
		wednesday, ok := resp.Reservations["2025-06-04"]
		if !ok || !wednesday.Benevole {
			t.Errorf("unexpected entry for wednesday: %+v", wednesday)
		}
	})

	t.Run("user week for unknown user", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)

		_, err := svc.ListForUserWeek(ctx, 42, weekStart)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("week overview groups by day", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)
		alice := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "01")
		bob := mustCreateUser(t, svc.db, "bob", "Bob", models.StatusBar, "02")
		mustCreateReservation(t, svc.db, alice.ID, "2025-06-02", false)
		mustCreateReservation(t, svc.db, bob.ID, "2025-06-02", true)
		mustCreateReservation(t, svc.db, alice.ID, "2025-06-03", false)

		resp, err := svc.ListForWeek(ctx, weekStart)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}

		monday := resp.Reservations["2025-06-02"]
		if len(monday) != 2 {
			t.Fatalf("expected 2 entries on monday, got %d", len(monday))
		}
		// Entries come back ordered by user name.
		if monday[0].UserName != "Alice" || monday[1].UserName != "Bob" {
			t.Errorf("unexpected order: %s, %s", monday[0].UserName, monday[1].UserName)
		}
		if monday[0].ShortID != "01" {
			t.Errorf("expected short id 01, got %s", monday[0].ShortID)
		}
		// Bob is flagged volunteer, so his effective status overrides Bar.
		if monday[1].Status != string(models.StatusBenevole) {
			t.Errorf("expected effective status Bénévole, got %s", monday[1].Status)
		}
		if monday[1].UserStatus != string(models.StatusBar) {
			t.Errorf("expected account status Bar, got %s", monday[1].UserStatus)
		}

		if len(resp.Reservations["2025-06-03"]) != 1 {
			t.Errorf("expected 1 entry on tuesday, got %d", len(resp.Reservations["2025-06-03"]))
		}
	})
}

func TestReservationService_ManagerOps(t *testing.T) {
	ctx := context.Background()

	t.Run("create for another user ignores past dates", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)
		manager := mustCreateUser(t, svc.db, "boss", "Boss", models.StatusBar, "01")
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "02")

		err := svc.CreateOrUpdate(ctx, manager.ID, &CreateReservationRequest{
			UserID: user.ID,
			Date:   "2025-05-20",
		})
		if err != nil {
			t.Fatalf("expected back-dated create to pass, got %v", err)
		}
		if n := countReservations(t, svc.db); n != 1 {
			t.Errorf("expected 1 reservation, got %d", n)
		}
	})

	t.Run("create for unknown user", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)
		manager := mustCreateUser(t, svc.db, "boss", "Boss", models.StatusBar, "01")

		err := svc.CreateOrUpdate(ctx, manager.ID, &CreateReservationRequest{UserID: 999, Date: "2025-06-02"})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("set status publishes a change event", func(t *testing.T) {
		svc, publisher := newReservationServiceForTest(t)
		manager := mustCreateUser(t, svc.db, "boss", "Boss", models.StatusBar, "01")
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "02")
		r := mustCreateReservation(t, svc.db, user.ID, "2025-06-02", false)

		if err := svc.SetStatus(ctx, manager.ID, r.ID, true); err != nil {
			t.Fatalf("set status failed: %v", err)
		}

		var updated models.Reservation
		if err := svc.db.First(&updated, r.ID).Error; err != nil {
			t.Fatalf("failed to load reservation: %v", err)
		}
		if !updated.Benevole {
			t.Error("expected the volunteer flag to be set")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventReservationStatusChanged {
			t.Fatalf("expected one %s event, got %v", events.EventReservationStatusChanged, published)
		}
	})

	t.Run("set status on missing reservation", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)
		manager := mustCreateUser(t, svc.db, "boss", "Boss", models.StatusBar, "01")

		err := svc.SetStatus(ctx, manager.ID, 999, true)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete removes the reservation", func(t *testing.T) {
		svc, publisher := newReservationServiceForTest(t)
		manager := mustCreateUser(t, svc.db, "boss", "Boss", models.StatusBar, "01")
		user := mustCreateUser(t, svc.db, "alice", "Alice", models.StatusMoniteur, "02")
		r := mustCreateReservation(t, svc.db, user.ID, "2025-06-02", false)

		if err := svc.Delete(ctx, manager.ID, r.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if n := countReservations(t, svc.db); n != 0 {
			t.Errorf("expected 0 reservations, got %d", n)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventReservationDeleted {
			t.Fatalf("expected one %s event, got %v", events.EventReservationDeleted, published)
		}
	})

	t.Run("delete on missing reservation", func(t *testing.T) {
		svc, _ := newReservationServiceForTest(t)
		manager := mustCreateUser(t, svc.db, "boss", "Boss", models.StatusBar, "01")

		err := svc.Delete(ctx, manager.ID, 999)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
