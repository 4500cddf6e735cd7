package governance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/domain/property"
)

type stubPropertyStore struct {
	props map[uuid.UUID]*property.Property
}

func (s *stubPropertyStore) GetByID(_ context.Context, id uuid.UUID) (*property.Property, error) {
	return s.props[id], nil
}

type memberKey struct {
	group uuid.UUID
	user  uuid.UUID
}

type voteKey struct {
	poll uuid.UUID
	user uuid.UUID
}

type stubRepo struct {
	groups  map[uuid.UUID]*Group
	members map[memberKey]*Member
	polls   map[uuid.UUID]*Poll
	options map[uuid.UUID][]Option
	votes   map[voteKey]*Vote
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		groups:  make(map[uuid.UUID]*Group),
		members: make(map[memberKey]*Member),
		polls:   make(map[uuid.UUID]*Poll),
		options: make(map[uuid.UUID][]Option),
		votes:   make(map[voteKey]*Vote),
	}
}

func (s *stubRepo) CreateGroup(_ context.Context, g *Group, creator *Member) error {
	s.groups[g.ID] = g
	s.members[memberKey{g.ID, creator.UserID}] = creator
	return nil
}

func (s *stubRepo) GetGroup(_ context.Context, id uuid.UUID) (*Group, error) {
	return s.groups[id], nil
}

func (s *stubRepo) ListGroupsByProperty(_ context.Context, propertyID uuid.UUID) ([]*Group, error) {
	var out []*Group
	for _, g := range s.groups {
		if g.PropertyID == propertyID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *stubRepo) GetMember(_ context.Context, groupID, userID uuid.UUID) (*Member, error) {
	return s.members[memberKey{groupID, userID}], nil
}

func (s *stubRepo) ListMemberIDs(_ context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for key := range s.members {
		if key.group == groupID {
			ids = append(ids, key.user)
		}
	}
	return ids, nil
}

func (s *stubRepo) AddMember(_ context.Context, m *Member) error {
	key := memberKey{m.GroupID, m.UserID}
	if _, ok := s.members[key]; ok {
		return ErrAlreadyMember
	}
	s.members[key] = m
	return nil
}

func (s *stubRepo) RemoveMember(_ context.Context, groupID, userID uuid.UUID) error {
	delete(s.members, memberKey{groupID, userID})
	return nil
}

func (s *stubRepo) CreatePoll(_ context.Context, p *Poll, options []Option) error {
	s.polls[p.ID] = p
	s.options[p.ID] = options
	return nil
}

func (s *stubRepo) GetPoll(_ context.Context, id uuid.UUID) (*Poll, error) {
	return s.polls[id], nil
}

func (s *stubRepo) ListPollsByGroup(_ context.Context, groupID uuid.UUID) ([]*Poll, error) {
	var out []*Poll
	for _, p := range s.polls {
		if p.GroupID == groupID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubRepo) GetOptions(_ context.Context, pollID uuid.UUID) ([]Option, error) {
	return s.options[pollID], nil
}

func (s *stubRepo) CastVote(_ context.Context, v *Vote) error {
	key := voteKey{v.PollID, v.UserID}
	if _, ok := s.votes[key]; ok {
		return ErrAlreadyVoted
	}
	s.votes[key] = v
	return nil
}

func (s *stubRepo) CountVotes(_ context.Context, pollID uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int)
	for key, v := range s.votes {
		if key.poll == pollID {
			counts[v.OptionID]++
		}
	}
	return counts, nil
}

func (s *stubRepo) CloseEnded(_ context.Context, now time.Time) (int, error) {
	n := 0
	for _, p := range s.polls {
		if p.Status == PollOpen && !p.ClosesAt.After(now) {
			p.Status = PollClosed
			n++
		}
	}
	return n, nil
}

func fixedTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(repo *stubRepo, props ...*property.Property) *Service {
	store := &stubPropertyStore{props: make(map[uuid.UUID]*property.Property)}
	for _, p := range props {
		store.props[p.ID] = p
	}
	svc := NewService(repo, store, nil)
	svc.now = fixedTime
	return svc
}

func setupGroupWithPoll(t *testing.T, svc *Service, prop *property.Property) (*Group, *Poll, []Option, uuid.UUID) {
	t.Helper()
	creatorID := uuid.New()
	group, err := svc.CreateGroup(context.Background(), creatorID, prop.ID, "Block A investors")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	poll, options, err := svc.CreatePoll(context.Background(), creatorID, group.ID,
		"Approve the renovation budget?", []string{"Yes", "No"}, fixedTime().Add(48*time.Hour))
	if err != nil {
		t.Fatalf("CreatePoll: %v", err)
	}
	return group, poll, options, creatorID
}

func TestCreateGroupMakesCreatorAdmin(t *testing.T) {
	prop := &property.Property{ID: uuid.New()}
	repo := newStubRepo()
	svc := newTestService(repo, prop)

	creatorID := uuid.New()
	group, err := svc.CreateGroup(context.Background(), creatorID, prop.ID, "Block A investors")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	member := repo.members[memberKey{group.ID, creatorID}]
	if member == nil || member.Role != RoleAdmin {
		t.Errorf("expected creator as group admin")
	}
}

func TestJoinAndLeave(t *testing.T) {
	prop := &property.Property{ID: uuid.New()}
	repo := newStubRepo()
	svc := newTestService(repo, prop)
	group, _, _, creatorID := setupGroupWithPoll(t, svc, prop)

	userID := uuid.New()
	if err := svc.Join(context.Background(), userID, group.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := svc.Join(context.Background(), userID, group.ID); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("double join: expected ErrAlreadyMember, got %v", err)
	}

	if err := svc.Leave(context.Background(), creatorID, group.ID); !errors.Is(err, ErrCreatorLeaving) {
		t.Errorf("creator leave: expected ErrCreatorLeaving, got %v", err)
	}
	if err := svc.Leave(context.Background(), userID, group.ID); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if err := svc.Leave(context.Background(), userID, group.ID); !errors.Is(err, ErrNotMember) {
		t.Errorf("second leave: expected ErrNotMember, got %v", err)
	}
}

func TestCreatePollRequiresGroupAdmin(t *testing.T) {
	prop := &property.Property{ID: uuid.New()}
	repo := newStubRepo()
	svc := newTestService(repo, prop)
	group, _, _, _ := setupGroupWithPoll(t, svc, prop)

	memberID := uuid.New()
	if err := svc.Join(context.Background(), memberID, group.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}

	_, _, err := svc.CreatePoll(context.Background(), memberID, group.ID, "Repaint the lobby?", []string{"Yes", "No"}, fixedTime().Add(time.Hour))
	if !errors.Is(err, ErrNotGroupAdmin) {
		t.Errorf("expected ErrNotGroupAdmin, got %v", err)
	}

	_, _, err = svc.CreatePoll(context.Background(), uuid.New(), group.ID, "Repaint the lobby?", []string{"Yes"}, fixedTime().Add(time.Hour))
	if !errors.Is(err, ErrTooFewOptions) {
		t.Errorf("one option: expected ErrTooFewOptions, got %v", err)
	}
}

func TestCastVoteOncePerPoll(t *testing.T) {
	prop := &property.Property{ID: uuid.New()}
	repo := newStubRepo()
	svc := newTestService(repo, prop)
	group, poll, options, _ := setupGroupWithPoll(t, svc, prop)

	voterID := uuid.New()
	if err := svc.Join(context.Background(), voterID, group.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}

	if err := svc.CastVote(context.Background(), voterID, poll.ID, options[0].ID); err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if err := svc.CastVote(context.Background(), voterID, poll.ID, options[1].ID); !errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("second vote: expected ErrAlreadyVoted, got %v", err)
	}

	if err := svc.CastVote(context.Background(), uuid.New(), poll.ID, options[0].ID); !errors.Is(err, ErrNotMember) {
		t.Errorf("non-member: expected ErrNotMember, got %v", err)
	}
	if err := svc.CastVote(context.Background(), voterID, poll.ID, uuid.New()); !errors.Is(err, ErrAlreadyVoted) && !errors.Is(err, ErrOptionNotFound) {
		t.Errorf("foreign option: expected ErrOptionNotFound, got %v", err)
	}
}

func TestCastVoteClosedPoll(t *testing.T) {
	prop := &property.Property{ID: uuid.New()}
	repo := newStubRepo()
	svc := newTestService(repo, prop)
	group, poll, options, _ := setupGroupWithPoll(t, svc, prop)

	voterID := uuid.New()
	if err := svc.Join(context.Background(), voterID, group.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}

	poll.Status = PollClosed
	if err := svc.CastVote(context.Background(), voterID, poll.ID, options[0].ID); !errors.Is(err, ErrPollClosed) {
		t.Errorf("expected ErrPollClosed, got %v", err)
	}
}

func TestGetResults(t *testing.T) {
	prop := &property.Property{ID: uuid.New()}
	repo := newStubRepo()
	svc := newTestService(repo, prop)
	group, poll, options, creatorID := setupGroupWithPoll(t, svc, prop)

	voters := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, v := range voters {
		if err := svc.Join(context.Background(), v, group.ID); err != nil {
			t.Fatalf("Join: %v", err)
		}
	}
	// 3 for Yes, 1 for No
	for _, v := range voters {
		if err := svc.CastVote(context.Background(), v, poll.ID, options[0].ID); err != nil {
			t.Fatalf("CastVote: %v", err)
		}
	}
	if err := svc.CastVote(context.Background(), creatorID, poll.ID, options[1].ID); err != nil {
		t.Fatalf("CastVote: %v", err)
	}

	results, err := svc.GetResults(context.Background(), creatorID, poll.ID)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}
	if results.TotalVotes != 4 {
		t.Errorf("expected 4 votes, got %d", results.TotalVotes)
	}
	if results.Options[0].Votes != 3 || results.Options[0].Percent != 75 {
		t.Errorf("Yes: expected 3 votes / 75%%, got %d / %.1f", results.Options[0].Votes, results.Options[0].Percent)
	}
	if results.Options[1].Votes != 1 || results.Options[1].Percent != 25 {
		t.Errorf("No: expected 1 vote / 25%%, got %d / %.1f", results.Options[1].Votes, results.Options[1].Percent)
	}
}

func TestCloseEnded(t *testing.T) {
	prop := &property.Property{ID: uuid.New()}
	repo := newStubRepo()
	svc := newTestService(repo, prop)
	_, poll, _, _ := setupGroupWithPoll(t, svc, prop)

	poll.ClosesAt = fixedTime().Add(-time.Hour)
	n, err := svc.CloseEnded(context.Background())
	if err != nil {
		t.Fatalf("CloseEnded: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 closed poll, got %d", n)
	}
	if poll.Status != PollClosed {
		t.Errorf("expected closed status, got %s", poll.Status)
	}
}
