package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/jomsplit/pkg/api"
)

// FriendServiceName is the fully-qualified name of the FriendService service.
const FriendServiceName = "jomsplit.v1.FriendService"

// Procedure names, used for routing and in interceptors.
const (
	FriendServiceAddFriendProcedure    = "/jomsplit.v1.FriendService/AddFriend"
	FriendServiceListFriendsProcedure  = "/jomsplit.v1.FriendService/ListFriends"
	FriendServiceListContactsProcedure = "/jomsplit.v1.FriendService/ListContacts"
)

// FriendServiceClient is a client for the jomsplit.v1.FriendService service.
type FriendServiceClient interface {
	AddFriend(context.Context, *connect.Request[api.AddFriendRequest]) (*connect.Response[api.AddFriendResponse], error)
	ListFriends(context.Context, *connect.Request[api.ListFriendsRequest]) (*connect.Response[api.ListFriendsResponse], error)
	ListContacts(context.Context, *connect.Request[api.ListContactsRequest]) (*connect.Response[api.ListContactsResponse], error)
}

// NewFriendServiceClient constructs a client for the jomsplit.v1.FriendService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewFriendServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) FriendServiceClient {
	opts = clientOptions(opts)
	return &friendServiceClient{
		addFriend:    connect.NewClient[api.AddFriendRequest, api.AddFriendResponse](httpClient, baseURL+FriendServiceAddFriendProcedure, opts...),
		listFriends:  connect.NewClient[api.ListFriendsRequest, api.ListFriendsResponse](httpClient, baseURL+FriendServiceListFriendsProcedure, opts...),
		listContacts: connect.NewClient[api.ListContactsRequest, api.ListContactsResponse](httpClient, baseURL+FriendServiceListContactsProcedure, opts...),
	}
}

type friendServiceClient struct {
	addFriend    *connect.Client[api.AddFriendRequest, api.AddFriendResponse]
	listFriends  *connect.Client[api.ListFriendsRequest, api.ListFriendsResponse]
	listContacts *connect.Client[api.ListContactsRequest, api.ListContactsResponse]
}

func (c *friendServiceClient) AddFriend(ctx context.Context, req *connect.Request[api.AddFriendRequest]) (*connect.Response[api.AddFriendResponse], error) {
	return c.addFriend.CallUnary(ctx, req)
}

func (c *friendServiceClient) ListFriends(ctx context.Context, req *connect.Request[api.ListFriendsRequest]) (*connect.Response[api.ListFriendsResponse], error) {
	return c.listFriends.CallUnary(ctx, req)
}

func (c *friendServiceClient) ListContacts(ctx context.Context, req *connect.Request[api.ListContactsRequest]) (*connect.Response[api.ListContactsResponse], error) {
	return c.listContacts.CallUnary(ctx, req)
}

// FriendServiceHandler is implemented by the server side of jomsplit.v1.FriendService.
type FriendServiceHandler interface {
	AddFriend(context.Context, *connect.Request[api.AddFriendRequest]) (*connect.Response[api.AddFriendResponse], error)
	ListFriends(context.Context, *connect.Request[api.ListFriendsRequest]) (*connect.Response[api.ListFriendsResponse], error)
	ListContacts(context.Context, *connect.Request[api.ListContactsRequest]) (*connect.Response[api.ListContactsResponse], error)
}

// NewFriendServiceHandler builds an HTTP handler from the service implementation
// and returns the path on which to mount it.
func NewFriendServiceHandler(svc FriendServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	addFriendHandler := connect.NewUnaryHandler(FriendServiceAddFriendProcedure, svc.AddFriend, opts...)
	listFriendsHandler := connect.NewUnaryHandler(FriendServiceListFriendsProcedure, svc.ListFriends, opts...)
	listContactsHandler := connect.NewUnaryHandler(FriendServiceListContactsProcedure, svc.ListContacts, opts...)
	return "/jomsplit.v1.FriendService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case FriendServiceAddFriendProcedure:
			addFriendHandler.ServeHTTP(w, r)
		case FriendServiceListFriendsProcedure:
			listFriendsHandler.ServeHTTP(w, r)
		case FriendServiceListContactsProcedure:
			listContactsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
