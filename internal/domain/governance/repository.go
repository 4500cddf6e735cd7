package governance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the postgres error code for unique_violation
const uniqueViolation = "23505"

// Repository defines governance data access
type Repository interface {
	CreateGroup(ctx context.Context, group *Group, creator *Member) error
	GetGroup(ctx context.Context, id uuid.UUID) (*Group, error)
	ListGroupsByProperty(ctx context.Context, propertyID uuid.UUID) ([]*Group, error)
	GetMember(ctx context.Context, groupID, userID uuid.UUID) (*Member, error)
	AddMember(ctx context.Context, member *Member) error
	ListMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	CreatePoll(ctx context.Context, poll *Poll, options []Option) error
	GetPoll(ctx context.Context, id uuid.UUID) (*Poll, error)
	ListPollsByGroup(ctx context.Context, groupID uuid.UUID) ([]*Poll, error)
	GetOptions(ctx context.Context, pollID uuid.UUID) ([]Option, error)
	CastVote(ctx context.Context, vote *Vote) error
	CountVotes(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int, error)
	CloseEnded(ctx context.Context, now time.Time) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates governance repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateGroup(ctx context.Context, group *Group, creator *Member) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO investment_groups (id, property_id, name, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, group.ID, group.PropertyID, group.Name, group.CreatorID, group.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`, creator.GroupID, creator.UserID, creator.Role, creator.JoinedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) GetGroup(ctx context.Context, id uuid.UUID) (*Group, error) {
	var group Group
	err := r.db.GetContext(ctx, &group, `SELECT * FROM investment_groups WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *repository) ListGroupsByProperty(ctx context.Context, propertyID uuid.UUID) ([]*Group, error) {
	var groups []*Group
	err := r.db.SelectContext(ctx, &groups, `
		SELECT * FROM investment_groups WHERE property_id = $1 ORDER BY created_at
	`, propertyID)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *repository) GetMember(ctx context.Context, groupID, userID uuid.UUID) (*Member, error) {
	var member Member
	err := r.db.GetContext(ctx, &member, `
		SELECT * FROM group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *repository) AddMember(ctx context.Context, member *Member) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`, member.GroupID, member.UserID, member.Role, member.JoinedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyMember
	}
	return err
}

func (r *repository) ListMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, `
		SELECT user_id FROM group_members WHERE group_id = $1
	`, groupID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	return err
}

func (r *repository) CreatePoll(ctx context.Context, poll *Poll, options []Option) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO polls (id, group_id, question, status, closes_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, poll.ID, poll.GroupID, poll.Question, poll.Status, poll.ClosesAt, poll.CreatedAt); err != nil {
		return err
	}

	for _, opt := range options {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO poll_options (id, poll_id, text, position)
			VALUES ($1, $2, $3, $4)
		`, opt.ID, opt.PollID, opt.Text, opt.Position); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) GetPoll(ctx context.Context, id uuid.UUID) (*Poll, error) {
	var poll Poll
	err := r.db.GetContext(ctx, &poll, `SELECT * FROM polls WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &poll, nil
}

func (r *repository) ListPollsByGroup(ctx context.Context, groupID uuid.UUID) ([]*Poll, error) {
	var polls []*Poll
	err := r.db.SelectContext(ctx, &polls, `
		SELECT * FROM polls WHERE group_id = $1 ORDER BY created_at DESC
	`, groupID)
	if err != nil {
		return nil, err
	}
	return polls, nil
}

func (r *repository) GetOptions(ctx context.Context, pollID uuid.UUID) ([]Option, error) {
	var options []Option
	err := r.db.SelectContext(ctx, &options, `
		SELECT * FROM poll_options WHERE poll_id = $1 ORDER BY position
	`, pollID)
	if err != nil {
		return nil, err
	}
	return options, nil
}

// CastVote inserts the vote; the (poll_id, user_id) unique constraint
// turns a second vote into ErrAlreadyVoted.
func (r *repository) CastVote(ctx context.Context, vote *Vote) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO votes (poll_id, option_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, vote.PollID, vote.OptionID, vote.UserID, vote.CreatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyVoted
	}
	return err
}

func (r *repository) CountVotes(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int, error) {
	rows := []struct {
		OptionID uuid.UUID `db:"option_id"`
		Count    int       `db:"count"`
	}{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT option_id, COUNT(*) AS count
		FROM votes WHERE poll_id = $1
		GROUP BY option_id
	`, pollID)
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.OptionID] = row.Count
	}
	return counts, nil
}

// CloseEnded flips open polls whose closing time has passed
func (r *repository) CloseEnded(ctx context.Context, now time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE polls SET status = 'closed' WHERE status = 'open' AND closes_at <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
