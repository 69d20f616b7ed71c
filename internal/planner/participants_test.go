package planner

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type stubDirectory map[int64]bool

func (d stubDirectory) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if d[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

type failingDirectory struct{}

func (failingDirectory) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return nil, errors.New("directory offline")
}

func TestService_ParticipantsNormalized(t *testing.T) {
	svc := NewService(NewMemoryRepo(), WithDirectory(stubDirectory{2: true, 3: true}))
	ctx := context.Background()

	e, err := svc.Create(ctx, 1, Draft{Title: "review", StartDate: "2026-06-01", ParticipantIDs: []int64{3, 1, 2, 3, 77}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if want := []int64{3, 2}; !reflect.DeepEqual(e.ParticipantIDs, want) {
		t.Fatalf("expected participants %v, got %v", want, e.ParticipantIDs)
	}

	if _, err := svc.Create(ctx, 1, Draft{Title: "x", StartDate: "2026-06-01", ParticipantIDs: []int64{0}}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for id 0, got %v", err)
	}

	many := make([]int64, maxParticipants+1)
	for i := range many {
		many[i] = int64(i + 10)
	}
	if _, err := NewService(NewMemoryRepo()).Create(ctx, 1, Draft{Title: "x", StartDate: "2026-06-01", ParticipantIDs: many}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument over the participant cap, got %v", err)
	}

	broken := NewService(NewMemoryRepo(), WithDirectory(failingDirectory{}))
	if _, err := broken.Create(ctx, 1, Draft{Title: "x", StartDate: "2026-06-01", ParticipantIDs: []int64{2}}); err == nil || errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected directory failure to surface, got %v", err)
	}
}

func TestService_ParticipantReadsButCannotEdit(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()
	e, err := svc.Create(ctx, 1, Draft{Title: "offsite", StartDate: "2026-06-10", ParticipantIDs: []int64{2}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !e.Editable {
		t.Fatalf("expected owner to see the event as editable")
	}

	seen, err := svc.Get(ctx, 2, e.ID)
	if err != nil {
		t.Fatalf("participant get: %v", err)
	}
	if seen.Editable || seen.OwnerID != 1 {
		t.Fatalf("expected read-only view for participant, got %+v", seen)
	}
	list, err := svc.List(ctx, 2, "", "")
	if err != nil || len(list) != 1 || list[0].Editable {
		t.Fatalf("expected participant listing, got %+v %v", list, err)
	}

	if _, err := svc.Update(ctx, 2, e.ID, Draft{Title: "hijack", StartDate: "2026-06-10"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on participant update, got %v", err)
	}
	if _, err := svc.SetShared(ctx, 2, e.ID, true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on participant share, got %v", err)
	}
	if err := svc.Delete(ctx, 2, e.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on participant delete, got %v", err)
	}

	if _, err := svc.Get(ctx, 3, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected outsider to get ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, 3, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected outsider delete to get ErrNotFound, got %v", err)
	}

	if _, err := svc.Update(ctx, 1, e.ID, Draft{Title: "offsite", StartDate: "2026-06-10"}); err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if _, err := svc.Get(ctx, 2, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected removed participant to lose access, got %v", err)
	}
}

func TestService_PublicViewHidesParticipants(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()
	e, _ := svc.Create(ctx, 1, Draft{Title: "open house", StartDate: "2026-07-01", ParticipantIDs: []int64{2}})
	shared, err := svc.SetShared(ctx, 1, e.ID, true)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	pub, err := svc.FindShared(ctx, shared.ShareCode)
	if err != nil {
		t.Fatalf("find shared: %v", err)
	}
	if !reflect.DeepEqual(pub, e.Public()) {
		t.Fatalf("unexpected public view: %+v", pub)
	}
}
