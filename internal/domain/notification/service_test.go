package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubRepo struct {
	created   []*Notification
	createErr error
	read      map[uuid.UUID]bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{read: make(map[uuid.UUID]bool)}
}

func (s *stubRepo) Create(_ context.Context, n *Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, n)
	return nil
}

func (s *stubRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	var out []*Notification
	for _, n := range s.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (s *stubRepo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range s.created {
		if n.UserID == userID && !s.read[n.ID] {
			count++
		}
	}
	return count, nil
}

func (s *stubRepo) MarkRead(_ context.Context, id, userID uuid.UUID) (bool, error) {
	for _, n := range s.created {
		if n.ID == id && n.UserID == userID {
			s.read[id] = true
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for _, n := range s.created {
		if n.UserID == userID {
			s.read[n.ID] = true
		}
	}
	return nil
}

func (s *stubRepo) PruneRead(_ context.Context, olderThan time.Time) (int, error) {
	return 0, nil
}

type stubPusher struct {
	pushed map[uuid.UUID]int
}

func (s *stubPusher) Push(userID uuid.UUID, _ any) error {
	if s.pushed == nil {
		s.pushed = make(map[uuid.UUID]int)
	}
	s.pushed[userID]++
	return nil
}

func TestCreatePersistsAndPushes(t *testing.T) {
	repo := newStubRepo()
	pusher := &stubPusher{}
	svc := NewService(repo, pusher)

	userID := uuid.New()
	entityID := uuid.New()

	n, err := svc.Create(context.Background(), userID, TypeReservationConfirmed, "Reservation confirmed", "body", entityID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !n.EntityID.Valid || n.EntityID.UUID != entityID {
		t.Errorf("entity id not carried: %+v", n.EntityID)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(repo.created))
	}
	if pusher.pushed[userID] != 1 {
		t.Errorf("expected 1 push for user, got %d", pusher.pushed[userID])
	}
}

func TestCreateWithoutEntityID(t *testing.T) {
	svc := NewService(newStubRepo(), nil)

	n, err := svc.Create(context.Background(), uuid.New(), TypeKYCApproved, "Identity verified", "", uuid.Nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.EntityID.Valid {
		t.Error("nil entity id should produce invalid NullUUID")
	}
	if n.ToResponse().EntityID != nil {
		t.Error("response should omit entity id")
	}
}

func TestOrderFilledNotifiesBothParties(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)

	buyer, seller := uuid.New(), uuid.New()
	svc.OrderFilled(context.Background(), buyer, seller, uuid.New(), 25)

	if len(repo.created) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(repo.created))
	}
	byUser := map[uuid.UUID]*Notification{}
	for _, n := range repo.created {
		byUser[n.UserID] = n
	}
	if byUser[buyer] == nil || byUser[seller] == nil {
		t.Fatal("both buyer and seller should be notified")
	}
	if byUser[buyer].Type != TypeOrderFilled || byUser[seller].Type != TypeOrderFilled {
		t.Error("wrong notification type")
	}
}

func TestPollOpenedFansOutToMembers(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)

	members := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	svc.PollOpened(context.Background(), members, uuid.New(), "Renovate the lobby?")

	if len(repo.created) != len(members) {
		t.Fatalf("expected %d notifications, got %d", len(members), len(repo.created))
	}
}

func TestNotifySwallowsRepoErrors(t *testing.T) {
	repo := newStubRepo()
	repo.createErr = errors.New("db down")
	svc := NewService(repo, nil)

	// Must not panic or propagate
	svc.ReservationConfirmed(context.Background(), uuid.New(), uuid.New())
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)

	owner := uuid.New()
	n, err := svc.Create(context.Background(), owner, TypePollOpened, "New poll", "", uuid.Nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.MarkRead(context.Background(), n.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("stranger mark-read: want ErrNotFound, got %v", err)
	}
	if err := svc.MarkRead(context.Background(), n.ID, owner); err != nil {
		t.Errorf("owner mark-read: %v", err)
	}

	count, _ := svc.UnreadCount(context.Background(), owner)
	if count != 0 {
		t.Errorf("expected 0 unread after mark-read, got %d", count)
	}
}

func TestListPagination(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)

	userID := uuid.New()
	for i := 0; i < 5; i++ {
		if _, err := svc.Create(context.Background(), userID, TypeReservationCancelled, "Reservation cancelled", "", uuid.Nil); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, total, err := svc.List(context.Background(), userID, 2, 4)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 1 {
		t.Errorf("page size = %d, want 1", len(page))
	}
}

func TestHubPushReachesLocalConnections(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	userID := uuid.New()
	conn := &Connection{UserID: userID, Send: make(chan []byte, 1)}
	hub.Register(conn)

	// Registration is processed by the Run loop, wait for it to land
	deadline := time.Now().Add(time.Second)
	for hub.ConnectionCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection never registered")
		}
		time.Sleep(time.Millisecond)
	}

	if err := hub.Push(userID, map[string]string{"title": "hello"}); err != nil {
		t.Fatalf("Push: %v", err)
	}

	select {
	case data := <-conn.Send:
		if len(data) == 0 {
			t.Error("empty payload delivered")
		}
	case <-time.After(time.Second):
		t.Fatal("push never reached the connection")
	}

	hub.Unregister(conn)
}
