package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/jomsplit/pkg/api"
)

// DraftServiceName is the fully-qualified name of the DraftService service.
const DraftServiceName = "jomsplit.v1.DraftService"

// Procedure names, used for routing and in interceptors.
const (
	DraftServiceCreateDraftProcedure     = "/jomsplit.v1.DraftService/CreateDraft"
	DraftServiceGetDraftProcedure        = "/jomsplit.v1.DraftService/GetDraft"
	DraftServiceUpdateDraftProcedure     = "/jomsplit.v1.DraftService/UpdateDraft"
	DraftServiceApplySplitProcedure      = "/jomsplit.v1.DraftService/ApplySplit"
	DraftServiceMoveDraftItemProcedure   = "/jomsplit.v1.DraftService/MoveDraftItem"
	DraftServiceAssignDraftItemProcedure = "/jomsplit.v1.DraftService/AssignDraftItem"
	DraftServiceConfirmDraftProcedure    = "/jomsplit.v1.DraftService/ConfirmDraft"
	DraftServiceAbandonDraftProcedure    = "/jomsplit.v1.DraftService/AbandonDraft"
)

// DraftServiceClient is a client for the jomsplit.v1.DraftService service.
type DraftServiceClient interface {
	CreateDraft(context.Context, *connect.Request[api.CreateDraftRequest]) (*connect.Response[api.DraftResponse], error)
	GetDraft(context.Context, *connect.Request[api.GetDraftRequest]) (*connect.Response[api.DraftResponse], error)
	UpdateDraft(context.Context, *connect.Request[api.UpdateDraftRequest]) (*connect.Response[api.DraftResponse], error)
	ApplySplit(context.Context, *connect.Request[api.ApplySplitRequest]) (*connect.Response[api.DraftResponse], error)
	MoveDraftItem(context.Context, *connect.Request[api.MoveDraftItemRequest]) (*connect.Response[api.DraftResponse], error)
	AssignDraftItem(context.Context, *connect.Request[api.AssignDraftItemRequest]) (*connect.Response[api.DraftResponse], error)
	ConfirmDraft(context.Context, *connect.Request[api.ConfirmDraftRequest]) (*connect.Response[api.ConfirmDraftResponse], error)
	AbandonDraft(context.Context, *connect.Request[api.AbandonDraftRequest]) (*connect.Response[api.AbandonDraftResponse], error)
}

// NewDraftServiceClient constructs a client for the jomsplit.v1.DraftService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewDraftServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DraftServiceClient {
	opts = clientOptions(opts)
	return &draftServiceClient{
		createDraft:     connect.NewClient[api.CreateDraftRequest, api.DraftResponse](httpClient, baseURL+DraftServiceCreateDraftProcedure, opts...),
		getDraft:        connect.NewClient[api.GetDraftRequest, api.DraftResponse](httpClient, baseURL+DraftServiceGetDraftProcedure, opts...),
		updateDraft:     connect.NewClient[api.UpdateDraftRequest, api.DraftResponse](httpClient, baseURL+DraftServiceUpdateDraftProcedure, opts...),
		applySplit:      connect.NewClient[api.ApplySplitRequest, api.DraftResponse](httpClient, baseURL+DraftServiceApplySplitProcedure, opts...),
		moveDraftItem:   connect.NewClient[api.MoveDraftItemRequest, api.DraftResponse](httpClient, baseURL+DraftServiceMoveDraftItemProcedure, opts...),
		assignDraftItem: connect.NewClient[api.AssignDraftItemRequest, api.DraftResponse](httpClient, baseURL+DraftServiceAssignDraftItemProcedure, opts...),
		confirmDraft:    connect.NewClient[api.ConfirmDraftRequest, api.ConfirmDraftResponse](httpClient, baseURL+DraftServiceConfirmDraftProcedure, opts...),
		abandonDraft:    connect.NewClient[api.AbandonDraftRequest, api.AbandonDraftResponse](httpClient, baseURL+DraftServiceAbandonDraftProcedure, opts...),
	}
}

type draftServiceClient struct {
	createDraft     *connect.Client[api.CreateDraftRequest, api.DraftResponse]
	getDraft        *connect.Client[api.GetDraftRequest, api.DraftResponse]
	updateDraft     *connect.Client[api.UpdateDraftRequest, api.DraftResponse]
	applySplit      *connect.Client[api.ApplySplitRequest, api.DraftResponse]
	moveDraftItem   *connect.Client[api.MoveDraftItemRequest, api.DraftResponse]
	assignDraftItem *connect.Client[api.AssignDraftItemRequest, api.DraftResponse]
	confirmDraft    *connect.Client[api.ConfirmDraftRequest, api.ConfirmDraftResponse]
	abandonDraft    *connect.Client[api.AbandonDraftRequest, api.AbandonDraftResponse]
}

func (c *draftServiceClient) CreateDraft(ctx context.Context, req *connect.Request[api.CreateDraftRequest]) (*connect.Response[api.DraftResponse], error) {
	return c.createDraft.CallUnary(ctx, req)
}

func (c *draftServiceClient) GetDraft(ctx context.Context, req *connect.Request[api.GetDraftRequest]) (*connect.Response[api.DraftResponse], error) {
	return c.getDraft.CallUnary(ctx, req)
}

func (c *draftServiceClient) UpdateDraft(ctx context.Context, req *connect.Request[api.UpdateDraftRequest]) (*connect.Response[api.DraftResponse], error) {
	return c.updateDraft.CallUnary(ctx, req)
}

func (c *draftServiceClient) ApplySplit(ctx context.Context, req *connect.Request[api.ApplySplitRequest]) (*connect.Response[api.DraftResponse], error) {
	return c.applySplit.CallUnary(ctx, req)
}

func (c *draftServiceClient) MoveDraftItem(ctx context.Context, req *connect.Request[api.MoveDraftItemRequest]) (*connect.Response[api.DraftResponse], error) {
	return c.moveDraftItem.CallUnary(ctx, req)
}

func (c *draftServiceClient) AssignDraftItem(ctx context.Context, req *connect.Request[api.AssignDraftItemRequest]) (*connect.Response[api.DraftResponse], error) {
	return c.assignDraftItem.CallUnary(ctx, req)
}

func (c *draftServiceClient) ConfirmDraft(ctx context.Context, req *connect.Request[api.ConfirmDraftRequest]) (*connect.Response[api.ConfirmDraftResponse], error) {
	return c.confirmDraft.CallUnary(ctx, req)
}

func (c *draftServiceClient) AbandonDraft(ctx context.Context, req *connect.Request[api.AbandonDraftRequest]) (*connect.Response[api.AbandonDraftResponse], error) {
	return c.abandonDraft.CallUnary(ctx, req)
}

// DraftServiceHandler is implemented by the server side of jomsplit.v1.DraftService.
type DraftServiceHandler interface {
	CreateDraft(context.Context, *connect.Request[api.CreateDraftRequest]) (*connect.Response[api.DraftResponse], error)
	GetDraft(context.Context, *connect.Request[api.GetDraftRequest]) (*connect.Response[api.DraftResponse], error)
	UpdateDraft(context.Context, *connect.Request[api.UpdateDraftRequest]) (*connect.Response[api.DraftResponse], error)
	ApplySplit(context.Context, *connect.Request[api.ApplySplitRequest]) (*connect.Response[api.DraftResponse], error)
	MoveDraftItem(context.Context, *connect.Request[api.MoveDraftItemRequest]) (*connect.Response[api.DraftResponse], error)
	AssignDraftItem(context.Context, *connect.Request[api.AssignDraftItemRequest]) (*connect.Response[api.DraftResponse], error)
	ConfirmDraft(context.Context, *connect.Request[api.ConfirmDraftRequest]) (*connect.Response[api.ConfirmDraftResponse], error)
	AbandonDraft(context.Context, *connect.Request[api.AbandonDraftRequest]) (*connect.Response[api.AbandonDraftResponse], error)
}

// NewDraftServiceHandler builds an HTTP handler from the service implementation
// and returns the path on which to mount it.
func NewDraftServiceHandler(svc DraftServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createDraftHandler := connect.NewUnaryHandler(DraftServiceCreateDraftProcedure, svc.CreateDraft, opts...)
	getDraftHandler := connect.NewUnaryHandler(DraftServiceGetDraftProcedure, svc.GetDraft, opts...)
	updateDraftHandler := connect.NewUnaryHandler(DraftServiceUpdateDraftProcedure, svc.UpdateDraft, opts...)
	applySplitHandler := connect.NewUnaryHandler(DraftServiceApplySplitProcedure, svc.ApplySplit, opts...)
	moveDraftItemHandler := connect.NewUnaryHandler(DraftServiceMoveDraftItemProcedure, svc.MoveDraftItem, opts...)
	assignDraftItemHandler := connect.NewUnaryHandler(DraftServiceAssignDraftItemProcedure, svc.AssignDraftItem, opts...)
	confirmDraftHandler := connect.NewUnaryHandler(DraftServiceConfirmDraftProcedure, svc.ConfirmDraft, opts...)
	abandonDraftHandler := connect.NewUnaryHandler(DraftServiceAbandonDraftProcedure, svc.AbandonDraft, opts...)
	return "/jomsplit.v1.DraftService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case DraftServiceCreateDraftProcedure:
			createDraftHandler.ServeHTTP(w, r)
		case DraftServiceGetDraftProcedure:
			getDraftHandler.ServeHTTP(w, r)
		case DraftServiceUpdateDraftProcedure:
			updateDraftHandler.ServeHTTP(w, r)
		case DraftServiceApplySplitProcedure:
			applySplitHandler.ServeHTTP(w, r)
		case DraftServiceMoveDraftItemProcedure:
			moveDraftItemHandler.ServeHTTP(w, r)
		case DraftServiceAssignDraftItemProcedure:
			assignDraftItemHandler.ServeHTTP(w, r)
		case DraftServiceConfirmDraftProcedure:
			confirmDraftHandler.ServeHTTP(w, r)
		case DraftServiceAbandonDraftProcedure:
			abandonDraftHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
