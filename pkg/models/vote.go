package models

import "time"

const (
	VoteUp   = "upvote"
	VoteDown = "downvote"
)

// Vote is the receipt returned for an accepted vote. Votes are not
// persisted; the receipt exists only in the HTTP response and the journal.
type Vote struct {
	ID          string    `json:"id"`
	ProfessorID string    `json:"professorId"`
	VoteType    string    `json:"voteType"`
	CreatedAt   time.Time `json:"createdAt"`
}
