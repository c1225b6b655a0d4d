// Package models defines the domain types shared by every jomsplit package.
//
// # Receipts
//
// A Receipt is produced once by the structuring backend and is treated as an
// immutable input afterwards: allocations never modify it. Its NettAmount is
// the authoritative total every allocation reconciles to.
//
// # Participants
//
// A Participant carries the shares it has been allocated. Participants are
// identified by a ParticipantID, never by a raw email or phone string; use the
// constructors in identity.go to convert contact details at the boundary.
//
// # Persistence shapes
//
// ConfirmedReceipt, ReceiptConsumer, Friendship and Contact mirror the rows the
// storage layer writes once a draft is confirmed.
//
// All money fields are decimal.Decimal with two-decimal semantics.
package models
