// Package draft holds receipts between structuring and confirmation.
//
// A draft is created when a receipt comes back from the structuring backend,
// is mutated by allocator calls while the owner reviews and splits it, and is
// discarded once it is confirmed or abandoned. Drafts older than the TTL are
// swept.
package draft

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mmynk/jomsplit/internal/calculator"
	"github.com/mmynk/jomsplit/internal/models"
)

var (
	ErrNotFound  = errors.New("draft not found")
	ErrForbidden = errors.New("draft belongs to another user")
	ErrClosed    = errors.New("draft is no longer open")
)

// Stage is where a draft is in its lifecycle.
type Stage string

const (
	StageReview Stage = "review"
	StageSplit  Stage = "split"

	// StageConfirming holds a draft while its receipt is being persisted.
	StageConfirming Stage = "confirming"
	StageConfirmed  Stage = "confirmed"
	StageAbandoned  Stage = "abandoned"
)

// Open reports whether the draft can still be changed.
func (s Stage) Open() bool {
	return s == StageReview || s == StageSplit
}

// Draft is the state of one receipt while it is being split.
type Draft struct {
	ID string `json:"id"`

	// OwnerID is empty until an authenticated user touches the draft.
	OwnerID string `json:"owner_id,omitempty"`

	Receipt      models.Receipt       `json:"receipt"`
	Participants []models.Participant `json:"participants"`
	Policy       calculator.Policy    `json:"policy"`
	Stage        Stage                `json:"stage"`

	// Confidence is the structuring backend's score in [0, 1], zero if unknown.
	Confidence float64 `json:"confidence,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// previous is the stage to return to if a confirmation fails.
	previous Stage
}

// New creates a draft in the review stage.
func New(ownerID string, r models.Receipt, participants []models.Participant, policy calculator.Policy, confidence float64, now time.Time) *Draft {
	if policy == "" {
		policy = calculator.PolicyItemBased
	}
	return &Draft{
		ID:           ulid.Make().String(),
		OwnerID:      ownerID,
		Receipt:      r,
		Participants: models.CloneParticipants(participants),
		Policy:       policy,
		Stage:        StageReview,
		Confidence:   confidence,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy of d.
func (d *Draft) Clone() *Draft {
	c := *d
	c.Receipt.Items = append([]models.Item(nil), d.Receipt.Items...)
	c.Participants = models.CloneParticipants(d.Participants)
	return &c
}

// ApplyAllocation stores the result of an allocator call and moves the draft
// to the split stage.
func (d *Draft) ApplyAllocation(a *calculator.Allocation) {
	d.Participants = models.CloneParticipants(a.Participants)
	d.Policy = a.Policy
	d.Stage = StageSplit
}

// Claim sets the owner if none is set yet. It fails if someone else owns it.
func (d *Draft) Claim(userID string) error {
	if userID == "" || d.OwnerID == userID {
		return nil
	}
	if d.OwnerID != "" {
		return ErrForbidden
	}
	d.OwnerID = userID
	return nil
}

func (d *Draft) accessibleBy(userID string) bool {
	return d.OwnerID == "" || d.OwnerID == userID
}
