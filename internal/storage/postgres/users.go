package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/storage"
)

const userColumns = "id, name, email, phone, invited_by, is_active, created_at"

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Phone = models.NormalizePhone(user.Phone)

	_, err := s.pool.Exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		user.ID, user.Name, user.Email, user.Phone, user.InvitedBy, user.IsActive, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Email, storage.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// EnsureUser inserts the user unless its id exists, then returns the stored row.
func (s *Store) EnsureUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		 ON CONFLICT (id) DO NOTHING`,
		user.ID, user.Name, strings.ToLower(strings.TrimSpace(user.Email)), models.NormalizePhone(user.Phone), user.InvitedBy, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("user %s: %w", user.Email, storage.ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return s.GetUserByID(ctx, user.ID)
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = $1", id)
}

// GetUserByEmail retrieves a user by their email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = $1", strings.ToLower(strings.TrimSpace(email)))
}

// GetUserByPhone retrieves a user by their normalized phone number.
func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	phone = models.NormalizePhone(phone)
	if phone == "" {
		return nil, storage.ErrNotFound
	}
	return s.getUser(ctx, "phone = $1", phone)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone, &user.InvitedBy, &user.IsActive, &user.CreatedAt,
	)
	if isNoRows(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

