package models

import (
	"strings"
	"unicode"
)

// ParticipantID is the stable identity of a participant at the allocation
// boundary. It is one of:
//
//	user:<user id>      a registered user
//	email:<address>     an external contact known by email (lowercased)
//	phone:<+digits>     an external contact known by phone
type ParticipantID string

// IdentityKind is the namespace part of a ParticipantID.
type IdentityKind string

const (
	IdentityUser  IdentityKind = "user"
	IdentityEmail IdentityKind = "email"
	IdentityPhone IdentityKind = "phone"
)

// UserParticipant returns the ParticipantID of a registered user.
func UserParticipant(userID string) ParticipantID {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ""
	}
	return ParticipantID(string(IdentityUser) + ":" + userID)
}

// EmailParticipant returns the ParticipantID for an email contact.
func EmailParticipant(email string) ParticipantID {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	return ParticipantID(string(IdentityEmail) + ":" + email)
}

// PhoneParticipant returns the ParticipantID for a phone contact. Everything
// except digits and a leading plus sign is stripped.
func PhoneParticipant(phone string) ParticipantID {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return ""
	}
	return ParticipantID(string(IdentityPhone) + ":" + normalized)
}

// ContactParticipant converts a legacy contact string, which older clients
// sent as either an email or a phone number, into a ParticipantID.
func ContactParticipant(contact string) ParticipantID {
	contact = strings.TrimSpace(contact)
	if strings.Contains(contact, "@") {
		return EmailParticipant(contact)
	}
	return PhoneParticipant(contact)
}

// ParseParticipantID accepts an already namespaced id, or falls back to
// ContactParticipant for bare contact strings.
func ParseParticipantID(s string) ParticipantID {
	s = strings.TrimSpace(s)
	if kind, value, ok := strings.Cut(s, ":"); ok {
		switch IdentityKind(kind) {
		case IdentityUser:
			return UserParticipant(value)
		case IdentityEmail:
			return EmailParticipant(value)
		case IdentityPhone:
			return PhoneParticipant(value)
		}
	}
	return ContactParticipant(s)
}

// Kind returns the namespace of the id, or "" if it has none.
func (id ParticipantID) Kind() IdentityKind {
	kind, _, ok := strings.Cut(string(id), ":")
	if !ok {
		return ""
	}
	return IdentityKind(kind)
}

// Value returns the id without its namespace.
func (id ParticipantID) Value() string {
	_, value, ok := strings.Cut(string(id), ":")
	if !ok {
		return string(id)
	}
	return value
}

func (id ParticipantID) String() string {
	return string(id)
}

// NormalizePhone keeps digits and a leading plus sign.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}
