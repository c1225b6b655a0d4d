package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/jomsplit/internal/calculator"
	"github.com/mmynk/jomsplit/internal/middleware"
	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/storage"
)

// identityResolver maps participant ids to users, creating inactive invited
// users for contacts nobody has registered yet.
type identityResolver struct {
	store   storage.UserStore
	ownerID string
}

func (r *identityResolver) resolve(ctx context.Context, id models.ParticipantID, name string) (*models.User, error) {
	switch id.Kind() {
	case models.IdentityUser:
		u, err := r.store.GetUserByID(ctx, id.Value())
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &calculator.InvalidInputError{Field: "participants", Message: fmt.Sprintf("unknown user '%s'", id.Value())}
		}
		return u, err
	case models.IdentityEmail:
		return r.findOrInvite(ctx, func() (*models.User, error) {
			return r.store.GetUserByEmail(ctx, id.Value())
		}, models.NewInvitedUser(name, id.Value(), "", r.ownerID))
	case models.IdentityPhone:
		return r.findOrInvite(ctx, func() (*models.User, error) {
			return r.store.GetUserByPhone(ctx, id.Value())
		}, models.NewInvitedUser(name, "", id.Value(), r.ownerID))
	}
	return nil, &calculator.InvalidInputError{Field: "participants", Message: fmt.Sprintf("participant id '%s' has no identity", id)}
}

func (r *identityResolver) findOrInvite(ctx context.Context, find func() (*models.User, error), invited *models.User) (*models.User, error) {
	u, err := find()
	if err == nil || !errors.Is(err, storage.ErrNotFound) {
		return u, err
	}
	err = r.store.CreateUser(ctx, invited)
	if errors.Is(err, storage.ErrAlreadyExists) {
		// Created concurrently.
		return find()
	}
	if err != nil {
		return nil, err
	}
	return invited, nil
}

// consumers resolves every participant. Two participants resolving to the
// same user are rejected.
func (r *identityResolver) consumers(ctx context.Context, ps []models.Participant) ([]models.ReceiptConsumer, error) {
	out := make([]models.ReceiptConsumer, 0, len(ps))
	seen := make(map[string]models.ParticipantID, len(ps))
	for _, p := range ps {
		u, err := r.resolve(ctx, p.ID, p.Name)
		if err != nil {
			return nil, err
		}
		if other, ok := seen[u.ID]; ok {
			return nil, &calculator.InvalidInputError{
				Field:   "participants",
				Message: fmt.Sprintf("participants '%s' and '%s' are the same user", other, p.ID),
			}
		}
		seen[u.ID] = p.ID

		name := p.Name
		if name == "" {
			name = u.Name
		}
		contact := p.Contact
		if contact == "" {
			contact = u.Contact()
		}
		out = append(out, models.ReceiptConsumer{
			UserID:        u.ID,
			ParticipantID: p.ID,
			Name:          name,
			Contact:       contact,
			TotalPaid:     p.TotalPaid,
			Breakdown:     p.ItemsPaid,
		})
	}
	return out, nil
}

// ensureUser makes sure the signed-in caller has a users row, creating an
// active one from the token's claims on first use.
func ensureUser(ctx context.Context, store storage.UserStore, userID string) (*models.User, error) {
	u := &models.User{
		ID:    userID,
		Name:  middleware.GetName(ctx),
		Email: middleware.GetEmail(ctx),
	}
	placeholder := models.UserPlaceholderEmail(userID)
	if u.Email == "" {
		u.Email = placeholder
	}
	user, err := store.EnsureUser(ctx, u)
	if errors.Is(err, storage.ErrAlreadyExists) && u.Email != placeholder {
		// The address belongs to an invited user.
		u.Email = placeholder
		user, err = store.EnsureUser(ctx, u)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user %s: %w", userID, err)
	}
	return user, nil
}
