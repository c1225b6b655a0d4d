package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/jomsplit/pkg/api"
)

// SplitServiceName is the fully-qualified name of the SplitService service.
const SplitServiceName = "jomsplit.v1.SplitService"

// Procedure names, used for routing and in interceptors.
const (
	SplitServiceAllocateProcedure      = "/jomsplit.v1.SplitService/Allocate"
	SplitServiceVerifyReceiptProcedure = "/jomsplit.v1.SplitService/VerifyReceipt"
	SplitServiceMoveItemProcedure      = "/jomsplit.v1.SplitService/MoveItem"
	SplitServiceSplitItemProcedure     = "/jomsplit.v1.SplitService/SplitItem"
)

// SplitServiceClient is a client for the jomsplit.v1.SplitService service.
type SplitServiceClient interface {
	Allocate(context.Context, *connect.Request[api.AllocateRequest]) (*connect.Response[api.AllocateResponse], error)
	VerifyReceipt(context.Context, *connect.Request[api.VerifyReceiptRequest]) (*connect.Response[api.VerifyReceiptResponse], error)
	MoveItem(context.Context, *connect.Request[api.MoveItemRequest]) (*connect.Response[api.MoveItemResponse], error)
	SplitItem(context.Context, *connect.Request[api.SplitItemRequest]) (*connect.Response[api.SplitItemResponse], error)
}

// NewSplitServiceClient constructs a client for the jomsplit.v1.SplitService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SplitServiceClient {
	opts = clientOptions(opts)
	return &splitServiceClient{
		allocate:      connect.NewClient[api.AllocateRequest, api.AllocateResponse](httpClient, baseURL+SplitServiceAllocateProcedure, opts...),
		verifyReceipt: connect.NewClient[api.VerifyReceiptRequest, api.VerifyReceiptResponse](httpClient, baseURL+SplitServiceVerifyReceiptProcedure, opts...),
		moveItem:      connect.NewClient[api.MoveItemRequest, api.MoveItemResponse](httpClient, baseURL+SplitServiceMoveItemProcedure, opts...),
		splitItem:     connect.NewClient[api.SplitItemRequest, api.SplitItemResponse](httpClient, baseURL+SplitServiceSplitItemProcedure, opts...),
	}
}

type splitServiceClient struct {
	allocate      *connect.Client[api.AllocateRequest, api.AllocateResponse]
	verifyReceipt *connect.Client[api.VerifyReceiptRequest, api.VerifyReceiptResponse]
	moveItem      *connect.Client[api.MoveItemRequest, api.MoveItemResponse]
	splitItem     *connect.Client[api.SplitItemRequest, api.SplitItemResponse]
}

func (c *splitServiceClient) Allocate(ctx context.Context, req *connect.Request[api.AllocateRequest]) (*connect.Response[api.AllocateResponse], error) {
	return c.allocate.CallUnary(ctx, req)
}

func (c *splitServiceClient) VerifyReceipt(ctx context.Context, req *connect.Request[api.VerifyReceiptRequest]) (*connect.Response[api.VerifyReceiptResponse], error) {
	return c.verifyReceipt.CallUnary(ctx, req)
}

func (c *splitServiceClient) MoveItem(ctx context.Context, req *connect.Request[api.MoveItemRequest]) (*connect.Response[api.MoveItemResponse], error) {
	return c.moveItem.CallUnary(ctx, req)
}

func (c *splitServiceClient) SplitItem(ctx context.Context, req *connect.Request[api.SplitItemRequest]) (*connect.Response[api.SplitItemResponse], error) {
	return c.splitItem.CallUnary(ctx, req)
}

// SplitServiceHandler is implemented by the server side of jomsplit.v1.SplitService.
type SplitServiceHandler interface {
	Allocate(context.Context, *connect.Request[api.AllocateRequest]) (*connect.Response[api.AllocateResponse], error)
	VerifyReceipt(context.Context, *connect.Request[api.VerifyReceiptRequest]) (*connect.Response[api.VerifyReceiptResponse], error)
	MoveItem(context.Context, *connect.Request[api.MoveItemRequest]) (*connect.Response[api.MoveItemResponse], error)
	SplitItem(context.Context, *connect.Request[api.SplitItemRequest]) (*connect.Response[api.SplitItemResponse], error)
}

// NewSplitServiceHandler builds an HTTP handler from the service implementation
// and returns the path on which to mount it.
func NewSplitServiceHandler(svc SplitServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	allocateHandler := connect.NewUnaryHandler(SplitServiceAllocateProcedure, svc.Allocate, opts...)
	verifyReceiptHandler := connect.NewUnaryHandler(SplitServiceVerifyReceiptProcedure, svc.VerifyReceipt, opts...)
	moveItemHandler := connect.NewUnaryHandler(SplitServiceMoveItemProcedure, svc.MoveItem, opts...)
	splitItemHandler := connect.NewUnaryHandler(SplitServiceSplitItemProcedure, svc.SplitItem, opts...)
	return "/jomsplit.v1.SplitService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SplitServiceAllocateProcedure:
			allocateHandler.ServeHTTP(w, r)
		case SplitServiceVerifyReceiptProcedure:
			verifyReceiptHandler.ServeHTTP(w, r)
		case SplitServiceMoveItemProcedure:
			moveItemHandler.ServeHTTP(w, r)
		case SplitServiceSplitItemProcedure:
			splitItemHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
