package governance

import "errors"

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrPollNotFound   = errors.New("poll not found")
	ErrOptionNotFound = errors.New("option does not belong to the poll")
	ErrNotMember      = errors.New("user is not a member of the group")
	ErrNotGroupAdmin  = errors.New("user is not a group admin")
	ErrAlreadyMember  = errors.New("user is already a member")
	ErrAlreadyVoted   = errors.New("user has already voted in this poll")
	ErrPollClosed     = errors.New("poll is closed")
	ErrTooFewOptions  = errors.New("poll needs at least two options")
	ErrCreatorLeaving = errors.New("group creator cannot leave the group")
)
