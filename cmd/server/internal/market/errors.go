package market

import "errors"

var (
	// ErrMarketClosed rejects votes outside the daily trading window.
	ErrMarketClosed = errors.New("market is closed")
	// ErrInvalidVoteType rejects anything but "upvote" or "downvote".
	ErrInvalidVoteType = errors.New("invalid vote type")
	// ErrProfessorNotFound rejects votes and lookups for unknown ids.
	ErrProfessorNotFound = errors.New("professor not found")
)
