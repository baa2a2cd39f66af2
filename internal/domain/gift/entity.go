package gift

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyTitle      = errors.New("gift title cannot be empty")
	ErrTitleTooLong    = errors.New("gift title is too long (max 255 characters)")
	ErrAlreadyReserved = errors.New("gift already reserved by another user")
	ErrNotReserved     = errors.New("gift is not reserved")
	ErrNotHolder       = errors.New("gift is reserved by someone else")
	ErrEmptyClaimantID = errors.New("claimant id cannot be empty")
	ErrEmptyNickname   = errors.New("claimant nickname cannot be empty")
)

const MaxTitleLength = 255

type Status string

const (
	StatusFree     Status = "Free"
	StatusReserved Status = "Reserved"
)

func ParseStatus(s string) (Status, bool) {
	switch {
	case strings.EqualFold(s, string(StatusFree)):
		return StatusFree, true
	case strings.EqualFold(s, string(StatusReserved)):
		return StatusReserved, true
	default:
		return "", false
	}
}

// Claimant is the identity recorded against a reserved gift.
type Claimant struct {
	ID        string
	Nickname  string
	FirstName string
	LastName  string
}

func NewClaimant(id, nickname, firstName, lastName string) (Claimant, error) {
	if strings.TrimSpace(id) == "" {
		return Claimant{}, ErrEmptyClaimantID
	}
	if strings.TrimSpace(nickname) == "" {
		return Claimant{}, ErrEmptyNickname
	}
	return Claimant{
		ID:        id,
		Nickname:  nickname,
		FirstName: firstName,
		LastName:  lastName,
	}, nil
}

type Gift struct {
	id         uuid.UUID
	title      string
	link       string
	status     Status
	reservedBy *Claimant
	reservedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

func New(title, link string) (*Gift, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	return &Gift{
		id:     uuid.New(),
		title:  strings.TrimSpace(title),
		link:   strings.TrimSpace(link),
		status: StatusFree,
	}, nil
}

// Reconstruct rebuilds a gift from storage without re-running creation
// validation. The reservedBy/reservedAt pair must be set or nil together.
func Reconstruct(
	id uuid.UUID,
	title, link string,
	status Status,
	reservedBy *Claimant,
	reservedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Gift {
	return &Gift{
		id:         id,
		title:      title,
		link:       link,
		status:     status,
		reservedBy: reservedBy,
		reservedAt: reservedAt,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// Reserve transitions the gift to Reserved for the given claimant.
// Re-reserving by the claimant already holding the gift is a no-op
// success; a different claimant gets ErrAlreadyReserved.
func (g *Gift) Reserve(claimant Claimant, now time.Time) error {
	if g.status == StatusReserved {
		if g.reservedBy != nil && g.reservedBy.ID == claimant.ID {
			return nil
		}
		return ErrAlreadyReserved
	}

	reservedAt := now
	g.status = StatusReserved
	g.reservedBy = &claimant
	g.reservedAt = &reservedAt
	return nil
}

// Release clears the reservation. Only the recorded holder, keyed by
// nickname, may release; all reservation fields are cleared together.
func (g *Gift) Release(nickname string) error {
	if g.status != StatusReserved || g.reservedBy == nil {
		return ErrNotReserved
	}
	if g.reservedBy.Nickname != nickname {
		return ErrNotHolder
	}

	g.status = StatusFree
	g.reservedBy = nil
	g.reservedAt = nil
	return nil
}

func (g *Gift) Rename(title string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	g.title = strings.TrimSpace(title)
	return nil
}

func (g *Gift) SetLink(link string) {
	g.link = strings.TrimSpace(link)
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func (g *Gift) ID() uuid.UUID          { return g.id }
func (g *Gift) Title() string          { return g.title }
func (g *Gift) Link() string           { return g.link }
func (g *Gift) Status() Status         { return g.status }
func (g *Gift) ReservedBy() *Claimant  { return g.reservedBy }
func (g *Gift) ReservedAt() *time.Time { return g.reservedAt }
func (g *Gift) CreatedAt() time.Time   { return g.createdAt }
func (g *Gift) UpdatedAt() time.Time   { return g.updatedAt }
