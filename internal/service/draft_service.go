package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/jomsplit/internal/calculator"
	"github.com/mmynk/jomsplit/internal/draft"
	"github.com/mmynk/jomsplit/internal/ledger"
	"github.com/mmynk/jomsplit/internal/metrics"
	"github.com/mmynk/jomsplit/internal/middleware"
	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/notify"
	"github.com/mmynk/jomsplit/internal/ocr"
	"github.com/mmynk/jomsplit/internal/storage"
	"github.com/mmynk/jomsplit/pkg/api"
)

// DraftService implements the Connect DraftService.
type DraftService struct {
	store      storage.Store
	drafts     *draft.Store
	dispatcher *notify.Dispatcher
	metrics    *metrics.Metrics
	currency   string
}

// NewDraftService creates a DraftService. dispatcher and m may be nil.
func NewDraftService(store storage.Store, drafts *draft.Store, dispatcher *notify.Dispatcher, m *metrics.Metrics, currency string) *DraftService {
	return &DraftService{
		store:      store,
		drafts:     drafts,
		dispatcher: dispatcher,
		metrics:    m,
		currency:   currency,
	}
}

// CreateDraft starts a draft from the structuring backend's JSON or a typed receipt.
func (s *DraftService) CreateDraft(ctx context.Context, req *connect.Request[api.CreateDraftRequest]) (*connect.Response[api.DraftResponse], error) {
	userID := middleware.GetUserID(ctx)

	var (
		receipt      models.Receipt
		participants []models.Participant
		policyName   = req.Msg.Policy
		confidence   float64
	)
	switch {
	case len(req.Msg.Structured) > 0:
		result, err := ocr.Decode(req.Msg.Structured)
		if err != nil {
			slog.WarnContext(ctx, "CreateDraft: structured receipt rejected", "error", err)
			return nil, toConnectError(err)
		}
		receipt, participants, confidence = result.Receipt, result.Participants, result.Confidence
		if policyName == "" {
			policyName = result.SplitMethod
		}
	case req.Msg.Receipt != nil:
		receipt = receiptFromAPI(*req.Msg.Receipt)
	default:
		return nil, invalidArgument("either structured or receipt is required")
	}
	if len(req.Msg.Participants) > 0 {
		participants = participantsFromAPI(req.Msg.Participants)
	}

	if err := calculator.ValidateReceipt(&receipt); err != nil {
		return nil, toConnectError(err)
	}
	policy, err := calculator.ParsePolicy(policyName)
	if err != nil {
		return nil, toConnectError(err)
	}
	if receipt.PaidBy == "" && userID != "" {
		receipt.PaidBy = models.UserParticipant(userID)
	}

	d := s.drafts.Put(draft.New(userID, receipt, participants, policy, confidence, s.drafts.Now()))
	slog.InfoContext(ctx, "Draft created",
		"draft_id", d.ID,
		"user_id", userID,
		"items", len(d.Receipt.Items),
		"participants", len(d.Participants),
		"confidence", d.Confidence,
	)
	return s.response(d), nil
}

// GetDraft returns the current state of a draft.
func (s *DraftService) GetDraft(ctx context.Context, req *connect.Request[api.GetDraftRequest]) (*connect.Response[api.DraftResponse], error) {
	d, err := s.drafts.Get(req.Msg.DraftID, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return s.response(d), nil
}

// UpdateDraft replaces the receipt or participants during review. A draft
// that was already split is re-split with its policy.
func (s *DraftService) UpdateDraft(ctx context.Context, req *connect.Request[api.UpdateDraftRequest]) (*connect.Response[api.DraftResponse], error) {
	return s.update(ctx, req.Msg.DraftID, func(d *draft.Draft) error {
		if req.Msg.Receipt != nil {
			r := receiptFromAPI(*req.Msg.Receipt)
			if err := calculator.ValidateReceipt(&r); err != nil {
				return err
			}
			if r.PaidBy == "" {
				r.PaidBy = d.Receipt.PaidBy
			}
			d.Receipt = r
		}
		if req.Msg.Participants != nil {
			ps := participantsFromAPI(req.Msg.Participants)
			if err := calculator.ValidateParticipants(ps); err != nil {
				return err
			}
			d.Participants = ps
		}
		if d.Stage == draft.StageSplit {
			return s.allocate(d, d.Participants, d.Policy)
		}
		return nil
	})
}

// ApplySplit runs a policy over the draft.
func (s *DraftService) ApplySplit(ctx context.Context, req *connect.Request[api.ApplySplitRequest]) (*connect.Response[api.DraftResponse], error) {
	policy, err := calculator.ParsePolicy(req.Msg.Policy)
	if err != nil {
		return nil, toConnectError(err)
	}
	return s.update(ctx, req.Msg.DraftID, func(d *draft.Draft) error {
		return s.allocate(d, d.Participants, policy)
	})
}

// MoveDraftItem moves shares between participants. The draft becomes item based.
func (s *DraftService) MoveDraftItem(ctx context.Context, req *connect.Request[api.MoveDraftItemRequest]) (*connect.Response[api.DraftResponse], error) {
	return s.update(ctx, req.Msg.DraftID, func(d *draft.Draft) error {
		moved, err := moveShares(d.Participants, req.Msg.ItemID, req.Msg.From, req.Msg.To, req.Msg.All)
		if err != nil {
			return err
		}
		return s.allocate(d, moved, calculator.PolicyItemBased)
	})
}

// AssignDraftItem reassigns one item equally or by percentages. The draft
// becomes item based.
func (s *DraftService) AssignDraftItem(ctx context.Context, req *connect.Request[api.AssignDraftItemRequest]) (*connect.Response[api.DraftResponse], error) {
	return s.update(ctx, req.Msg.DraftID, func(d *draft.Draft) error {
		assigned, err := assignItem(&d.Receipt, d.Participants, req.Msg.ItemID, req.Msg.Assignees, req.Msg.Percentages)
		if err != nil {
			return err
		}
		return s.allocate(d, assigned, calculator.PolicyItemBased)
	})
}

// AbandonDraft discards a draft.
func (s *DraftService) AbandonDraft(ctx context.Context, req *connect.Request[api.AbandonDraftRequest]) (*connect.Response[api.AbandonDraftResponse], error) {
	d, err := s.drafts.Close(req.Msg.DraftID, middleware.GetUserID(ctx), draft.StageAbandoned)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.InfoContext(ctx, "Draft abandoned", "draft_id", d.ID)
	return connect.NewResponse(&api.AbandonDraftResponse{}), nil
}

// ConfirmDraft persists the draft as a receipt, updates friendship balances
// and notifies the other participants. Notification failures do not fail the
// confirmation.
func (s *DraftService) ConfirmDraft(ctx context.Context, req *connect.Request[api.ConfirmDraftRequest]) (*connect.Response[api.ConfirmDraftResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	// The draft stays reserved until the receipt is stored or the confirm fails.
	d, err := s.drafts.BeginConfirm(req.Msg.DraftID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	confirmed := false
	defer func() {
		if !confirmed {
			s.drafts.AbortConfirm(d.ID)
		}
	}()

	// Equal splits are recomputed so the stored shares match the final receipt.
	a, err := calculator.Allocate(&d.Receipt, d.Participants, d.Policy)
	if err != nil {
		return nil, toConnectError(err)
	}
	for _, w := range a.Warnings {
		if w.Kind == calculator.WarningOverAllocated || w.Kind == calculator.WarningUnknownItem {
			return nil, connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("cannot confirm: %s", w.Message))
		}
	}

	owner, err := ensureUser(ctx, s.store, userID)
	if err != nil {
		slog.ErrorContext(ctx, "ConfirmDraft: failed to ensure owner", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	resolver := &identityResolver{store: s.store, ownerID: owner.ID}
	consumers, err := resolver.consumers(ctx, a.Participants)
	if err != nil {
		return nil, toConnectError(err)
	}
	payer := owner.ID
	if d.Receipt.PaidBy != "" {
		u, err := resolver.resolve(ctx, d.Receipt.PaidBy, "")
		if err != nil {
			return nil, toConnectError(err)
		}
		payer = u.ID
	}

	now := s.drafts.Now().Unix()
	receipt := d.Receipt
	receipt.ID = uuid.New().String()
	if receipt.Currency == "" {
		receipt.Currency = s.currency
	}
	cr := &models.ConfirmedReceipt{
		Receipt:     receipt,
		OwnerID:     owner.ID,
		SplitMethod: a.Policy.SplitMethod(),
		Consumers:   consumers,
		CreatedAt:   now,
	}

	deltas, err := ledger.ReceiptDeltas(payer, consumers)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.SaveReceipt(ctx, cr, deltas); err != nil {
		slog.ErrorContext(ctx, "ConfirmDraft: failed to save receipt", "draft_id", d.ID, "error", err)
		return nil, toConnectError(err)
	}

	confirmed = true
	if _, err := s.drafts.EndConfirm(d.ID); err != nil {
		slog.WarnContext(ctx, "ConfirmDraft: failed to close draft", "draft_id", d.ID, "error", err)
	}
	if s.metrics != nil {
		s.metrics.ReceiptsConfirmed.Inc()
	}
	recordAllocation(s.metrics, a)

	if contacts := contactsOf(owner.ID, consumers, now); len(contacts) > 0 {
		if err := s.store.RecordContacts(ctx, contacts); err != nil {
			slog.WarnContext(ctx, "ConfirmDraft: failed to record contacts", "receipt_id", receipt.ID, "error", err)
		}
	}

	msgs := notify.Compose(cr, owner.Name)
	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, msgs)
	}

	slog.InfoContext(ctx, "Receipt confirmed",
		"receipt_id", receipt.ID,
		"draft_id", d.ID,
		"user_id", owner.ID,
		"consumers", len(consumers),
		"deltas", len(deltas),
	)
	return connect.NewResponse(&api.ConfirmDraftResponse{ReceiptID: receipt.ID, Notified: len(msgs)}), nil
}

func (s *DraftService) update(ctx context.Context, id string, fn func(*draft.Draft) error) (*connect.Response[api.DraftResponse], error) {
	userID := middleware.GetUserID(ctx)
	d, err := s.drafts.Update(id, userID, func(d *draft.Draft) error {
		if err := d.Claim(userID); err != nil {
			return err
		}
		return fn(d)
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return s.response(d), nil
}

func (s *DraftService) allocate(d *draft.Draft, participants []models.Participant, policy calculator.Policy) error {
	a, err := calculator.Allocate(&d.Receipt, participants, policy)
	if err != nil {
		return err
	}
	d.ApplyAllocation(a)
	return nil
}

func (s *DraftService) response(d *draft.Draft) *connect.Response[api.DraftResponse] {
	currency := d.Receipt.Currency
	if currency == "" {
		currency = s.currency
	}
	return connect.NewResponse(&api.DraftResponse{Draft: draftToAPI(d, currency)})
}

func contactsOf(ownerID string, consumers []models.ReceiptConsumer, now int64) []models.Contact {
	var contacts []models.Contact
	for _, c := range consumers {
		if c.UserID == ownerID || c.Contact == "" || models.IsPlaceholderEmail(c.Contact) {
			continue
		}
		contacts = append(contacts, models.Contact{
			OwnerID:    ownerID,
			Contact:    c.Contact,
			Name:       c.Name,
			InvitedAt:  now,
			LastUsedAt: now,
		})
	}
	return contacts
}
