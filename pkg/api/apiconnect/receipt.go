package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/jomsplit/pkg/api"
)

// ReceiptServiceName is the fully-qualified name of the ReceiptService service.
const ReceiptServiceName = "jomsplit.v1.ReceiptService"

// Procedure names, used for routing and in interceptors.
const (
	ReceiptServiceGetReceiptProcedure        = "/jomsplit.v1.ReceiptService/GetReceipt"
	ReceiptServiceListReceiptsProcedure      = "/jomsplit.v1.ReceiptService/ListReceipts"
	ReceiptServiceGetExpenseSummaryProcedure = "/jomsplit.v1.ReceiptService/GetExpenseSummary"
)

// ReceiptServiceClient is a client for the jomsplit.v1.ReceiptService service.
type ReceiptServiceClient interface {
	GetReceipt(context.Context, *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error)
	ListReceipts(context.Context, *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error)
	GetExpenseSummary(context.Context, *connect.Request[api.GetExpenseSummaryRequest]) (*connect.Response[api.GetExpenseSummaryResponse], error)
}

// NewReceiptServiceClient constructs a client for the jomsplit.v1.ReceiptService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewReceiptServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ReceiptServiceClient {
	opts = clientOptions(opts)
	return &receiptServiceClient{
		getReceipt:        connect.NewClient[api.GetReceiptRequest, api.GetReceiptResponse](httpClient, baseURL+ReceiptServiceGetReceiptProcedure, opts...),
		listReceipts:      connect.NewClient[api.ListReceiptsRequest, api.ListReceiptsResponse](httpClient, baseURL+ReceiptServiceListReceiptsProcedure, opts...),
		getExpenseSummary: connect.NewClient[api.GetExpenseSummaryRequest, api.GetExpenseSummaryResponse](httpClient, baseURL+ReceiptServiceGetExpenseSummaryProcedure, opts...),
	}
}

type receiptServiceClient struct {
	getReceipt        *connect.Client[api.GetReceiptRequest, api.GetReceiptResponse]
	listReceipts      *connect.Client[api.ListReceiptsRequest, api.ListReceiptsResponse]
	getExpenseSummary *connect.Client[api.GetExpenseSummaryRequest, api.GetExpenseSummaryResponse]
}

func (c *receiptServiceClient) GetReceipt(ctx context.Context, req *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error) {
	return c.getReceipt.CallUnary(ctx, req)
}

func (c *receiptServiceClient) ListReceipts(ctx context.Context, req *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error) {
	return c.listReceipts.CallUnary(ctx, req)
}

func (c *receiptServiceClient) GetExpenseSummary(ctx context.Context, req *connect.Request[api.GetExpenseSummaryRequest]) (*connect.Response[api.GetExpenseSummaryResponse], error) {
	return c.getExpenseSummary.CallUnary(ctx, req)
}

// ReceiptServiceHandler is implemented by the server side of jomsplit.v1.ReceiptService.
type ReceiptServiceHandler interface {
	GetReceipt(context.Context, *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error)
	ListReceipts(context.Context, *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error)
	GetExpenseSummary(context.Context, *connect.Request[api.GetExpenseSummaryRequest]) (*connect.Response[api.GetExpenseSummaryResponse], error)
}

// NewReceiptServiceHandler builds an HTTP handler from the service implementation
// and returns the path on which to mount it.
func NewReceiptServiceHandler(svc ReceiptServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	getReceiptHandler := connect.NewUnaryHandler(ReceiptServiceGetReceiptProcedure, svc.GetReceipt, opts...)
	listReceiptsHandler := connect.NewUnaryHandler(ReceiptServiceListReceiptsProcedure, svc.ListReceipts, opts...)
	getExpenseSummaryHandler := connect.NewUnaryHandler(ReceiptServiceGetExpenseSummaryProcedure, svc.GetExpenseSummary, opts...)
	return "/jomsplit.v1.ReceiptService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ReceiptServiceGetReceiptProcedure:
			getReceiptHandler.ServeHTTP(w, r)
		case ReceiptServiceListReceiptsProcedure:
			listReceiptsHandler.ServeHTTP(w, r)
		case ReceiptServiceGetExpenseSummaryProcedure:
			getExpenseSummaryHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
