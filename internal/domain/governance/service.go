package governance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/domain/property"
)

// PropertyStore is the subset of the property repository the service needs
type PropertyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*property.Property, error)
}

// Notifier announces new polls to group members. May be nil.
type Notifier interface {
	PollOpened(ctx context.Context, memberIDs []uuid.UUID, pollID uuid.UUID, question string)
}

// Service handles governance business logic
type Service struct {
	repo       Repository
	properties PropertyStore
	notifier   Notifier
	now        func() time.Time
}

// NewService creates governance service
func NewService(repo Repository, properties PropertyStore, notifier Notifier) *Service {
	return &Service{repo: repo, properties: properties, notifier: notifier, now: time.Now}
}

// CreateGroup opens an investment group around a property. The creator
// joins as group admin.
func (s *Service) CreateGroup(ctx context.Context, creatorID, propertyID uuid.UUID, name string) (*Group, error) {
	prop, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, property.ErrNotFound
	}

	now := s.now().UTC()
	group := &Group{
		ID:         uuid.New(),
		PropertyID: propertyID,
		Name:       name,
		CreatorID:  creatorID,
		CreatedAt:  now,
	}
	creator := &Member{
		GroupID:  group.ID,
		UserID:   creatorID,
		Role:     RoleAdmin,
		JoinedAt: now,
	}
	if err := s.repo.CreateGroup(ctx, group, creator); err != nil {
		return nil, err
	}
	return group, nil
}

// GetGroup returns a single group
func (s *Service) GetGroup(ctx context.Context, id uuid.UUID) (*Group, error) {
	group, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// ListGroups returns the groups around a property
func (s *Service) ListGroups(ctx context.Context, propertyID uuid.UUID) ([]*Group, error) {
	return s.repo.ListGroupsByProperty(ctx, propertyID)
}

// Join adds the user to a group as a regular member
func (s *Service) Join(ctx context.Context, userID, groupID uuid.UUID) error {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrGroupNotFound
	}

	return s.repo.AddMember(ctx, &Member{
		GroupID:  groupID,
		UserID:   userID,
		Role:     RoleMember,
		JoinedAt: s.now().UTC(),
	})
}

// Leave removes the user from a group. The creator stays for the
// lifetime of the group.
func (s *Service) Leave(ctx context.Context, userID, groupID uuid.UUID) error {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrGroupNotFound
	}
	if group.CreatorID == userID {
		return ErrCreatorLeaving
	}

	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotMember
	}

	return s.repo.RemoveMember(ctx, groupID, userID)
}

// CreatePoll opens a poll for a group. Group admins only.
func (s *Service) CreatePoll(ctx context.Context, userID, groupID uuid.UUID, question string, optionTexts []string, closesAt time.Time) (*Poll, []Option, error) {
	if len(optionTexts) < 2 {
		return nil, nil, ErrTooFewOptions
	}

	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, nil, err
	}
	if member == nil {
		return nil, nil, ErrNotMember
	}
	if member.Role != RoleAdmin {
		return nil, nil, ErrNotGroupAdmin
	}

	now := s.now().UTC()
	poll := &Poll{
		ID:        uuid.New(),
		GroupID:   groupID,
		Question:  question,
		Status:    PollOpen,
		ClosesAt:  closesAt.UTC(),
		CreatedAt: now,
	}
	options := make([]Option, len(optionTexts))
	for i, text := range optionTexts {
		options[i] = Option{
			ID:       uuid.New(),
			PollID:   poll.ID,
			Text:     text,
			Position: i,
		}
	}

	if err := s.repo.CreatePoll(ctx, poll, options); err != nil {
		return nil, nil, err
	}

	if s.notifier != nil {
		memberIDs, err := s.repo.ListMemberIDs(ctx, groupID)
		if err == nil {
			others := memberIDs[:0]
			for _, id := range memberIDs {
				if id != userID {
					others = append(others, id)
				}
			}
			s.notifier.PollOpened(ctx, others, poll.ID, poll.Question)
		}
	}

	return poll, options, nil
}

// ListPolls returns a group's polls to its members
func (s *Service) ListPolls(ctx context.Context, userID, groupID uuid.UUID) ([]*Poll, error) {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotMember
	}
	return s.repo.ListPollsByGroup(ctx, groupID)
}

// CastVote records one member's choice while the poll is open
func (s *Service) CastVote(ctx context.Context, userID, pollID, optionID uuid.UUID) error {
	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if poll == nil {
		return ErrPollNotFound
	}
	if !poll.IsOpen(s.now()) {
		return ErrPollClosed
	}

	member, err := s.repo.GetMember(ctx, poll.GroupID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotMember
	}

	options, err := s.repo.GetOptions(ctx, pollID)
	if err != nil {
		return err
	}
	valid := false
	for _, opt := range options {
		if opt.ID == optionID {
			valid = true
			break
		}
	}
	if !valid {
		return ErrOptionNotFound
	}

	return s.repo.CastVote(ctx, &Vote{
		PollID:    pollID,
		OptionID:  optionID,
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	})
}

// GetResults tallies a poll for a group member
func (s *Service) GetResults(ctx context.Context, userID, pollID uuid.UUID) (*Results, error) {
	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll == nil {
		return nil, ErrPollNotFound
	}

	member, err := s.repo.GetMember(ctx, poll.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotMember
	}

	options, err := s.repo.GetOptions(ctx, pollID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountVotes(ctx, pollID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	results := &Results{
		PollID:     poll.ID,
		Question:   poll.Question,
		Status:     poll.Status,
		TotalVotes: total,
		Options:    make([]OptionResult, len(options)),
	}
	for i, opt := range options {
		n := counts[opt.ID]
		var pct float64
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		results.Options[i] = OptionResult{
			OptionID: opt.ID,
			Text:     opt.Text,
			Votes:    n,
			Percent:  pct,
		}
	}
	return results, nil
}

// CloseEnded closes open polls past their closing time
func (s *Service) CloseEnded(ctx context.Context) (int, error) {
	return s.repo.CloseEnded(ctx, s.now().UTC())
}
