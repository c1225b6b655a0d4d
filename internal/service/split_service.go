package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/jomsplit/internal/calculator"
	"github.com/mmynk/jomsplit/internal/metrics"
	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/money"
	"github.com/mmynk/jomsplit/pkg/api"
)

// SplitService implements the Connect SplitService. It is stateless: every
// call carries the receipt and participants it works on.
type SplitService struct {
	metrics  *metrics.Metrics
	currency string
}

// NewSplitService creates a SplitService. m may be nil.
func NewSplitService(m *metrics.Metrics, currency string) *SplitService {
	if currency == "" {
		currency = money.DefaultCurrency
	}
	return &SplitService{metrics: m, currency: currency}
}

// Allocate runs a split policy over the receipt.
func (s *SplitService) Allocate(ctx context.Context, req *connect.Request[api.AllocateRequest]) (*connect.Response[api.AllocateResponse], error) {
	r := receiptFromAPI(req.Msg.Receipt)
	a, err := s.allocate(ctx, &r, participantsFromAPI(req.Msg.Participants), req.Msg.Policy)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AllocateResponse{Allocation: allocationToAPI(a, s.currencyOf(&r))}), nil
}

// VerifyReceipt reconciles the items, and the participant totals if given,
// against the receipt's nett amount.
func (s *SplitService) VerifyReceipt(ctx context.Context, req *connect.Request[api.VerifyReceiptRequest]) (*connect.Response[api.VerifyReceiptResponse], error) {
	r := receiptFromAPI(req.Msg.Receipt)
	if err := calculator.ValidateReceipt(&r); err != nil {
		return nil, toConnectError(err)
	}

	report := calculator.VerifyReceipt(&r)
	if !report.Accurate() {
		slog.InfoContext(ctx, "Receipt does not reconcile",
			"bill_id", r.BillID,
			"difference", report.Difference.String(),
		)
		if s.metrics != nil {
			s.metrics.ReceiptDifferences.Inc()
		}
	}

	resp := &api.VerifyReceiptResponse{Receipt: balanceToAPI(report, s.currencyOf(&r))}
	if len(req.Msg.Participants) > 0 {
		split := balanceToAPI(calculator.VerifySplit(&r, participantsFromAPI(req.Msg.Participants)), s.currencyOf(&r))
		resp.Split = &split
	}
	return connect.NewResponse(resp), nil
}

// MoveItem moves one share, or every share, between two participants.
func (s *SplitService) MoveItem(ctx context.Context, req *connect.Request[api.MoveItemRequest]) (*connect.Response[api.MoveItemResponse], error) {
	r := receiptFromAPI(req.Msg.Receipt)
	moved, err := moveShares(participantsFromAPI(req.Msg.Participants), req.Msg.ItemID, req.Msg.From, req.Msg.To, req.Msg.All)
	if err != nil {
		return nil, toConnectError(err)
	}
	a, err := s.allocate(ctx, &r, moved, string(calculator.PolicyItemBased))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.MoveItemResponse{Allocation: allocationToAPI(a, s.currencyOf(&r))}), nil
}

// SplitItem reassigns one item equally among assignees or by percentages.
func (s *SplitService) SplitItem(ctx context.Context, req *connect.Request[api.SplitItemRequest]) (*connect.Response[api.SplitItemResponse], error) {
	r := receiptFromAPI(req.Msg.Receipt)
	split, err := assignItem(&r, participantsFromAPI(req.Msg.Participants), req.Msg.ItemID, req.Msg.Assignees, req.Msg.Percentages)
	if err != nil {
		return nil, toConnectError(err)
	}
	a, err := s.allocate(ctx, &r, split, string(calculator.PolicyItemBased))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.SplitItemResponse{Allocation: allocationToAPI(a, s.currencyOf(&r))}), nil
}

func (s *SplitService) allocate(ctx context.Context, r *models.Receipt, participants []models.Participant, policyName string) (*calculator.Allocation, error) {
	policy, err := calculator.ParsePolicy(policyName)
	if err != nil {
		return nil, toConnectError(err)
	}
	a, err := calculator.Allocate(r, participants, policy)
	if err != nil {
		slog.WarnContext(ctx, "Allocate rejected", "policy", policy, "error", err)
		return nil, toConnectError(err)
	}
	recordAllocation(s.metrics, a)
	slog.DebugContext(ctx, "Allocated",
		"policy", policy,
		"participants", len(a.Participants),
		"warnings", len(a.Warnings),
		"difference", a.ReceiptBalance.Difference.String(),
	)
	return a, nil
}

func (s *SplitService) currencyOf(r *models.Receipt) string {
	if r.Currency != "" {
		return r.Currency
	}
	return s.currency
}

func recordAllocation(m *metrics.Metrics, a *calculator.Allocation) {
	if m == nil {
		return
	}
	m.Allocations.WithLabelValues(string(a.Policy)).Inc()
	for _, w := range a.Warnings {
		m.AllocationWarnings.WithLabelValues(string(w.Kind)).Inc()
	}
	if !a.ReceiptBalance.Accurate() {
		m.ReceiptDifferences.Inc()
	}
}

func moveShares(ps []models.Participant, itemID, from, to string, all bool) ([]models.Participant, error) {
	fromID, toID := models.ParseParticipantID(from), models.ParseParticipantID(to)
	if all {
		return calculator.MoveAllItems(ps, fromID, toID)
	}
	return calculator.MoveItem(ps, itemID, fromID, toID)
}

func assignItem(r *models.Receipt, ps []models.Participant, itemID string, assignees []string, percentages []api.PercentageAssignment) ([]models.Participant, error) {
	if len(percentages) > 0 {
		return calculator.AssignItemPercentages(r, ps, itemID, percentagesFromAPI(percentages))
	}
	return calculator.SplitItem(r, ps, itemID, participantIDs(assignees))
}
