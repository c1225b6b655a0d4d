package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/jomsplit/internal/ledger"
	"github.com/mmynk/jomsplit/internal/middleware"
	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/storage"
	"github.com/mmynk/jomsplit/pkg/api"
)

// FriendService implements the Connect FriendService.
type FriendService struct {
	store storage.Store
	now   func() time.Time
}

// NewFriendService creates a FriendService.
func NewFriendService(store storage.Store) *FriendService {
	return &FriendService{store: store, now: time.Now}
}

// AddFriend befriends the user with the given phone number, inviting them
// if they have no account yet.
func (s *FriendService) AddFriend(ctx context.Context, req *connect.Request[api.AddFriendRequest]) (*connect.Response[api.AddFriendResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	phone := models.NormalizePhone(req.Msg.Phone)
	if phone == "" {
		return nil, invalidArgument("phone is required")
	}

	viewer, err := ensureUser(ctx, s.store, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	resolver := &identityResolver{store: s.store, ownerID: viewer.ID}
	friend, err := resolver.resolve(ctx, models.PhoneParticipant(phone), req.Msg.Name)
	if err != nil {
		slog.ErrorContext(ctx, "AddFriend: failed to resolve friend", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	f, err := ledger.NewFriendship(viewer.ID, friend.ID, req.Msg.Name, s.now())
	if errors.Is(err, ledger.ErrSelfFriendship) {
		return nil, invalidArgument("cannot add yourself as a friend")
	}
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.CreateFriendship(ctx, &f); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, connect.NewError(connect.CodeAlreadyExists, fmt.Errorf("already friends"))
		}
		slog.ErrorContext(ctx, "AddFriend failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	entries, err := ledger.Project([]models.FriendshipView{orderedView(f, *viewer, *friend)}, viewer.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.InfoContext(ctx, "Friend added", "friendship_id", f.ID, "user_id", viewer.ID, "invited", !friend.IsActive)
	return connect.NewResponse(&api.AddFriendResponse{Friend: friendToAPI(entries[0])}), nil
}

// ListFriends pages through the caller's friends with balances signed from
// their side, plus totals over all friendships.
func (s *FriendService) ListFriends(ctx context.Context, req *connect.Request[api.ListFriendsRequest]) (*connect.Response[api.ListFriendsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	page := storage.Page{Number: req.Msg.Page, Limit: req.Msg.Limit}.Normalize(storage.DefaultFriendsLimit)
	views, info, err := s.store.ListFriendships(ctx, userID, page)
	if err != nil {
		slog.ErrorContext(ctx, "ListFriends failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	entries, err := ledger.Project(views, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	summary, err := s.summary(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "ListFriends: failed to total balances", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.ListFriendsResponse{
		Friends:   make([]api.Friend, len(entries)),
		PageInfo:  pageInfoToAPI(info),
		OwedToYou: summary.OwedToViewer,
		YouOwe:    summary.ViewerOwes,
		Nett:      summary.Nett,
	}
	for i, e := range entries {
		resp.Friends[i] = friendToAPI(e)
	}
	return connect.NewResponse(resp), nil
}

// ListContacts returns the people the caller has split bills with.
func (s *FriendService) ListContacts(ctx context.Context, req *connect.Request[api.ListContactsRequest]) (*connect.Response[api.ListContactsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	contacts, err := s.store.ListContacts(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	resp := &api.ListContactsResponse{Contacts: make([]api.Contact, len(contacts))}
	for i, c := range contacts {
		resp.Contacts[i] = api.Contact{
			Contact:    c.Contact,
			Name:       c.Name,
			InvitedAt:  c.InvitedAt,
			LastUsedAt: c.LastUsedAt,
		}
	}
	return connect.NewResponse(resp), nil
}

func (s *FriendService) summary(ctx context.Context, userID string) (ledger.Summary, error) {
	records, err := s.store.FriendBalances(ctx, userID)
	if err != nil {
		return ledger.Summary{}, err
	}
	entries := make([]models.FriendLedgerEntry, 0, len(records))
	for _, f := range records {
		balance, err := ledger.ViewerBalance(f, userID)
		if err != nil {
			return ledger.Summary{}, err
		}
		entries = append(entries, models.FriendLedgerEntry{NettBalance: balance})
	}
	return ledger.Summarize(entries), nil
}

// orderedView pairs the users with the friendship's canonical sides.
func orderedView(f models.Friendship, a, b models.User) models.FriendshipView {
	if f.User1ID == b.ID {
		a, b = b, a
	}
	return models.FriendshipView{Friendship: f, User1: a, User2: b}
}
