package kyc

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/pkg/imaging"
)

type stubRepo struct {
	byID   map[uuid.UUID]*Verification
	byUser map[uuid.UUID][]*Verification
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		byID:   make(map[uuid.UUID]*Verification),
		byUser: make(map[uuid.UUID][]*Verification),
	}
}

func (s *stubRepo) Create(_ context.Context, v *Verification) error {
	s.byID[v.ID] = v
	s.byUser[v.UserID] = append(s.byUser[v.UserID], v)
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*Verification, error) {
	return s.byID[id], nil
}

func (s *stubRepo) GetLatestByUser(_ context.Context, userID uuid.UUID) (*Verification, error) {
	list := s.byUser[userID]
	if len(list) == 0 {
		return nil, nil
	}
	return list[len(list)-1], nil
}

func (s *stubRepo) ListPending(_ context.Context, _, _ int) ([]*Verification, int, error) {
	var out []*Verification
	for _, v := range s.byID {
		if v.Status == StatusPending {
			out = append(out, v)
		}
	}
	return out, len(out), nil
}

func (s *stubRepo) Decide(_ context.Context, id, reviewerID uuid.UUID, status Status, reason string) error {
	v, ok := s.byID[id]
	if !ok || v.Status != StatusPending {
		return ErrAlreadyDecided
	}
	v.Status = status
	v.ReviewedBy.Valid = true
	v.ReviewedBy.UUID = reviewerID
	if reason != "" {
		v.Reason.Valid = true
		v.Reason.String = reason
	}
	v.UpdatedAt = time.Now()
	return nil
}

func (s *stubRepo) HasApproved(_ context.Context, userID uuid.UUID) (bool, error) {
	for _, v := range s.byUser[userID] {
		if v.Status == StatusApproved {
			return true, nil
		}
	}
	return false, nil
}

type stubStorage struct {
	objects map[string][]byte
}

func newStubStorage() *stubStorage {
	return &stubStorage{objects: make(map[string][]byte)}
}

func (s *stubStorage) Put(_ context.Context, key string, reader io.Reader, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *stubStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.objects[key])), nil
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *stubStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.objects[key]
	return ok, nil
}

func (s *stubStorage) GetURL(key string) string {
	return "https://cdn.test/" + key
}

func testImage(t *testing.T) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return &buf
}

func newTestService(repo *stubRepo, store *stubStorage) *Service {
	return NewService(repo, store, imaging.NewProcessor(imaging.DefaultConfig()), nil)
}

func TestSubmit(t *testing.T) {
	repo := newStubRepo()
	store := newStubStorage()
	svc := newTestService(repo, store)

	userID := uuid.New()
	v, err := svc.Submit(context.Background(), userID, DocPassport, testImage(t))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if v.Status != StatusPending {
		t.Errorf("expected pending status, got %s", v.Status)
	}
	if !strings.HasPrefix(v.DocumentKey, "kyc/"+userID.String()+"/") {
		t.Errorf("unexpected document key %s", v.DocumentKey)
	}
	if _, ok := store.objects[v.DocumentKey]; !ok {
		t.Errorf("document was not stored")
	}
}

func TestSubmitWhilePending(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, newStubStorage())

	userID := uuid.New()
	if _, err := svc.Submit(context.Background(), userID, DocPassport, testImage(t)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := svc.Submit(context.Background(), userID, DocPassport, testImage(t)); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("expected ErrAlreadySubmitted, got %v", err)
	}
}

func TestSubmitInvalidImage(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, newStubStorage())

	_, err := svc.Submit(context.Background(), uuid.New(), DocPassport, strings.NewReader("not an image"))
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestApproveAndVerifiedGate(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, newStubStorage())

	userID := uuid.New()
	v, err := svc.Submit(context.Background(), userID, DocNationalID, testImage(t))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if ok, _ := svc.IsVerified(context.Background(), userID); ok {
		t.Errorf("expected unverified before decision")
	}

	reviewerID := uuid.New()
	approved, err := svc.Approve(context.Background(), reviewerID, v.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != StatusApproved {
		t.Errorf("expected approved status, got %s", approved.Status)
	}

	if ok, _ := svc.IsVerified(context.Background(), userID); !ok {
		t.Errorf("expected verified after approval")
	}

	// Resubmission after approval is pointless
	if _, err := svc.Submit(context.Background(), userID, DocPassport, testImage(t)); !errors.Is(err, ErrAlreadyApproved) {
		t.Errorf("expected ErrAlreadyApproved, got %v", err)
	}
	// A decision lands once
	if _, err := svc.Reject(context.Background(), reviewerID, v.ID, "blurry"); !errors.Is(err, ErrAlreadyDecided) {
		t.Errorf("expected ErrAlreadyDecided, got %v", err)
	}
}

func TestRejectAllowsResubmission(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, newStubStorage())

	userID := uuid.New()
	v, err := svc.Submit(context.Background(), userID, DocUtilityBill, testImage(t))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := svc.Reject(context.Background(), uuid.New(), v.ID, ""); !errors.Is(err, ErrReasonRequired) {
		t.Errorf("empty reason: expected ErrReasonRequired, got %v", err)
	}

	rejected, err := svc.Reject(context.Background(), uuid.New(), v.ID, "document is unreadable")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != StatusRejected || rejected.Reason.String != "document is unreadable" {
		t.Errorf("expected rejected with reason, got %s/%q", rejected.Status, rejected.Reason.String)
	}

	if _, err := svc.Submit(context.Background(), userID, DocPassport, testImage(t)); err != nil {
		t.Errorf("resubmission after rejection should pass, got %v", err)
	}
}
