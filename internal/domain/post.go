package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusPublished, StatusFailed:
		return true
	}
	return false
}

// ParseStatus maps a stored status back to a Status.
func ParseStatus(name string) (Status, error) {
	s := Status(name)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, name)
	}
	return s, nil
}

// Post is the aggregate root. Content and publication history are only
// reachable through methods so the lifecycle guards cannot be bypassed.
type Post struct {
	id           uuid.UUID
	userID       int64
	content      PostContent
	status       Status
	createdAt    time.Time
	updatedAt    time.Time
	publications []PublicationResult
}

// NewPost creates a draft owned by userID.
func NewPost(id uuid.UUID, userID int64, content PostContent) *Post {
	now := time.Now().UTC()
	return &Post{
		id:        id,
		userID:    userID,
		content:   content,
		status:    StatusDraft,
		createdAt: now,
		updatedAt: now,
	}
}

// RestorePost rebuilds a post from storage without running any guard.
func RestorePost(id uuid.UUID, userID int64, content PostContent, status Status, createdAt, updatedAt time.Time, publications []PublicationResult) *Post {
	pubs := make([]PublicationResult, len(publications))
	copy(pubs, publications)
	return &Post{
		id:           id,
		userID:       userID,
		content:      content,
		status:       status,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		publications: pubs,
	}
}

// Clone returns a deep copy of the post.
func (p *Post) Clone() *Post {
	return RestorePost(p.id, p.userID, p.Content(), p.status, p.createdAt, p.updatedAt, p.publications)
}

func (p *Post) ID() uuid.UUID           { return p.id }
func (p *Post) UserID() int64           { return p.userID }
func (p *Post) Status() Status          { return p.status }
func (p *Post) CreatedAt() time.Time    { return p.createdAt }
func (p *Post) UpdatedAt() time.Time    { return p.updatedAt }
func (p *Post) OwnedBy(user int64) bool { return p.userID == user }

func (p *Post) Content() PostContent {
	c := p.content
	c.Tags = cloneTags(p.content.Tags)
	return c
}

func (p *Post) Publications() []PublicationResult {
	out := make([]PublicationResult, len(p.publications))
	copy(out, p.publications)
	return out
}

func (p *Post) Confirm() error {
	if p.status != StatusDraft {
		return &TransitionError{From: p.status, Event: "confirm", Reason: "only draft posts can be confirmed"}
	}
	p.status = StatusConfirmed
	p.touch()
	return nil
}

func (p *Post) UpdateContent(content PostContent) error {
	if p.status != StatusDraft {
		return &TransitionError{From: p.status, Event: "update", Reason: "only draft posts can be updated"}
	}
	p.content = content
	p.content.Tags = cloneTags(content.Tags)
	p.touch()
	return nil
}

// RecordPublications appends publish attempts to the history.
func (p *Post) RecordPublications(results ...PublicationResult) error {
	if p.status != StatusConfirmed {
		return &TransitionError{From: p.status, Event: "record publications for", Reason: "only confirmed posts can be published"}
	}
	p.publications = append(p.publications, results...)
	p.touch()
	return nil
}

func (p *Post) MarkPublished() error {
	if p.status != StatusConfirmed {
		return &TransitionError{From: p.status, Event: "publish", Reason: "only confirmed posts can be published"}
	}
	if !AnySucceeded(p.publications) {
		return &TransitionError{From: p.status, Event: "publish", Reason: "no successful publications found"}
	}
	p.status = StatusPublished
	p.touch()
	return nil
}

// MarkFailed moves a confirmed post whose every publish attempt failed to
// Failed. The reason is not stored; per-platform messages already are.
func (p *Post) MarkFailed(reason string) error {
	if p.status != StatusConfirmed {
		return &TransitionError{From: p.status, Event: "fail", Reason: reason}
	}
	if AnySucceeded(p.publications) {
		return &TransitionError{From: p.status, Event: "fail", Reason: "post has successful publications"}
	}
	p.status = StatusFailed
	p.touch()
	return nil
}

func (p *Post) SuccessfulPublications() []PublicationResult {
	var out []PublicationResult
	for _, r := range p.publications {
		if r.Success {
			out = append(out, r)
		}
	}
	return out
}

func (p *Post) FailedPublications() []PublicationResult {
	var out []PublicationResult
	for _, r := range p.publications {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

func (p *Post) IsPublishedOn(platform Platform) bool {
	for _, r := range p.publications {
		if r.Platform == platform && r.Success {
			return true
		}
	}
	return false
}

func (p *Post) touch() {
	now := time.Now().UTC()
	if !now.After(p.updatedAt) {
		now = p.updatedAt.Add(time.Microsecond)
	}
	p.updatedAt = now
}
