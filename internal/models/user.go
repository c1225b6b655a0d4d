package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a row in the users table. Users created from a contact the owner
// split a bill with are inactive until they sign in.
type User struct {
	// ID is the unique identifier for the user (UUID format, or the identity
	// provider's subject for signed-in users).
	ID string

	Name  string
	Email string

	// Phone is normalized with NormalizePhone. Empty when unknown.
	Phone string

	// InvitedBy is the user who created this account on someone's behalf.
	InvitedBy string

	IsActive bool

	// CreatedAt is the Unix timestamp when the user row was created.
	CreatedAt int64
}

// NewInvitedUser creates an inactive user for a contact that has never signed
// in. Phone-only contacts get a placeholder address so the email column stays
// unique and non-empty.
func NewInvitedUser(name, email, phone, invitedBy string) *User {
	phone = NormalizePhone(phone)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = PlaceholderEmail(phone)
	}
	if strings.TrimSpace(name) == "" {
		name = "Unknown"
	}
	return &User{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     email,
		Phone:     phone,
		InvitedBy: invitedBy,
		IsActive:  false,
		CreatedAt: time.Now().Unix(),
	}
}

const placeholderDomain = "@no-reply.local"

// PlaceholderEmail is "<digits>@no-reply.local".
func PlaceholderEmail(phone string) string {
	return strings.TrimPrefix(NormalizePhone(phone), "+") + placeholderDomain
}

// UserPlaceholderEmail is the address given to a signed-in user whose
// provider sent none, "<id>@no-reply.local".
func UserPlaceholderEmail(userID string) string {
	return strings.ToLower(strings.TrimSpace(userID)) + placeholderDomain
}

// IsPlaceholderEmail reports whether address was generated rather than given.
func IsPlaceholderEmail(address string) bool {
	return strings.HasSuffix(strings.ToLower(address), placeholderDomain)
}

// ParticipantID returns the user-namespaced participant id for u.
func (u *User) ParticipantID() ParticipantID {
	return UserParticipant(u.ID)
}

// Contact returns the phone number if known, otherwise the email.
func (u *User) Contact() string {
	if u.Phone != "" {
		return u.Phone
	}
	return u.Email
}
