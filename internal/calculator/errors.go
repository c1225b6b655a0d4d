package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/jomsplit/internal/models"
)

var (
	// ErrInvalidInput matches every *InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrItemNotFound matches every *ItemNotFoundError.
	ErrItemNotFound = errors.New("item not found")
)

// InvalidInputError rejects an input before any allocation is attempted.
type InvalidInputError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input on field '%s': %s", e.Field, e.Message)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ItemNotFoundError reports an item id missing from the receipt, or from the
// source participant's shares during a move.
type ItemNotFoundError struct {
	ItemID string `json:"item_id"`

	// ParticipantID is set when the item was looked up in a participant's shares.
	ParticipantID models.ParticipantID `json:"participant_id,omitempty"`
}

func (e *ItemNotFoundError) Error() string {
	if e.ParticipantID != "" {
		return fmt.Sprintf("no share of item '%s' held by participant '%s'", e.ItemID, e.ParticipantID)
	}
	return fmt.Sprintf("item '%s' not found on receipt", e.ItemID)
}

func (e *ItemNotFoundError) Is(target error) bool {
	return target == ErrItemNotFound
}
