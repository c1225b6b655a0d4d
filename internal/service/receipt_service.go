package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/jomsplit/internal/ledger"
	"github.com/mmynk/jomsplit/internal/middleware"
	"github.com/mmynk/jomsplit/internal/money"
	"github.com/mmynk/jomsplit/internal/storage"
	"github.com/mmynk/jomsplit/pkg/api"
)

// ReceiptService implements the Connect ReceiptService.
type ReceiptService struct {
	store    storage.Store
	currency string
	now      func() time.Time
}

// NewReceiptService creates a ReceiptService.
func NewReceiptService(store storage.Store, currency string) *ReceiptService {
	return &ReceiptService{store: store, currency: currency, now: time.Now}
}

// GetReceipt returns a receipt the caller consumed, with their share.
func (s *ReceiptService) GetReceipt(ctx context.Context, req *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	cr, err := s.store.GetConsumerReceipt(ctx, req.Msg.ReceiptID, userID)
	if err != nil {
		slog.WarnContext(ctx, "GetReceipt failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetReceiptResponse{Receipt: consumerReceiptToAPI(*cr)}), nil
}

// ListReceipts pages through the caller's receipts, newest first.
func (s *ReceiptService) ListReceipts(ctx context.Context, req *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	page := storage.Page{Number: req.Msg.Page, Limit: req.Msg.Limit}.Normalize(storage.DefaultReceiptsLimit)
	receipts, info, err := s.store.ListConsumerReceipts(ctx, userID, page)
	if err != nil {
		slog.ErrorContext(ctx, "ListReceipts failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.ListReceiptsResponse{
		Receipts: make([]api.ReceiptShare, len(receipts)),
		PageInfo: pageInfoToAPI(info),
	}
	for i, cr := range receipts {
		resp.Receipts[i] = consumerReceiptToAPI(cr)
	}
	return connect.NewResponse(resp), nil
}

// GetExpenseSummary totals what the caller consumed since the start of the period.
func (s *ReceiptService) GetExpenseSummary(ctx context.Context, req *connect.Request[api.GetExpenseSummaryRequest]) (*connect.Response[api.GetExpenseSummaryResponse], error) {
	userID := middleware.GetUserID(ctx)
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	period := req.Msg.Period
	if period == "" {
		period = ledger.PeriodThisMonth
	}
	since := ledger.PeriodStart(period, s.now()).Unix()

	total, err := s.store.SumConsumerTotals(ctx, userID, since)
	if err != nil {
		slog.ErrorContext(ctx, "GetExpenseSummary failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetExpenseSummaryResponse{
		Period:  period,
		Since:   since,
		Total:   total,
		Display: money.Display(total, s.currency),
	}), nil
}
