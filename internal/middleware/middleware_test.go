package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/jomsplit/internal/auth"
	"github.com/mmynk/jomsplit/internal/metrics"
	"github.com/mmynk/jomsplit/pkg/api/apiconnect"
)

const whoAmIProcedure = "/jomsplit.v1.TestService/WhoAmI"

type whoAmIRequest struct{}

type whoAmIResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func whoAmI(ctx context.Context, _ *connect.Request[whoAmIRequest]) (*connect.Response[whoAmIResponse], error) {
	return connect.NewResponse(&whoAmIResponse{
		UserID: GetUserID(ctx),
		Email:  GetEmail(ctx),
		Name:   GetName(ctx),
	}), nil
}

// serve exposes whoAmI behind the interceptors and returns a client for it.
func serve(t *testing.T, interceptors ...connect.Interceptor) *connect.Client[whoAmIRequest, whoAmIResponse] {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(whoAmIProcedure, connect.NewUnaryHandler(whoAmIProcedure, whoAmI,
		apiconnect.WithJSON(), connect.WithInterceptors(interceptors...)))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return connect.NewClient[whoAmIRequest, whoAmIResponse](http.DefaultClient, server.URL+whoAmIProcedure, apiconnect.WithJSON())
}

func request(token string) *connect.Request[whoAmIRequest] {
	req := connect.NewRequest(&whoAmIRequest{})
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRequireAuth(t *testing.T) {
	verifier := auth.NewVerifier("test-secret", "")
	client := serve(t, RequireAuth(verifier))
	ctx := context.Background()

	token, err := verifier.Issue("user-1", "mei@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	resp, err := client.CallUnary(ctx, request(token))
	if err != nil {
		t.Fatalf("authenticated call failed: %v", err)
	}
	if resp.Msg.UserID != "user-1" || resp.Msg.Email != "mei@example.com" || resp.Msg.Name != "mei@example.com" {
		t.Errorf("identity = %+v", resp.Msg)
	}

	for name, token := range map[string]string{"missing": "", "garbage": "not-a-jwt"} {
		_, err := client.CallUnary(ctx, request(token))
		if connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("%s token: code = %s, want unauthenticated", name, connect.CodeOf(err))
		}
	}
}

func TestOptionalAuth(t *testing.T) {
	verifier := auth.NewVerifier("test-secret", "")
	client := serve(t, OptionalAuth(verifier))
	ctx := context.Background()

	resp, err := client.CallUnary(ctx, request(""))
	if err != nil {
		t.Fatalf("anonymous call failed: %v", err)
	}
	if resp.Msg.UserID != "" {
		t.Errorf("anonymous user id = %q", resp.Msg.UserID)
	}

	resp, err = client.CallUnary(ctx, request("not-a-jwt"))
	if err != nil {
		t.Fatalf("call with invalid token failed: %v", err)
	}
	if resp.Msg.UserID != "" {
		t.Errorf("invalid token gave user id %q", resp.Msg.UserID)
	}

	token, _ := verifier.Issue("user-2", "", time.Hour)
	resp, err = client.CallUnary(ctx, request(token))
	if err != nil {
		t.Fatalf("authenticated call failed: %v", err)
	}
	if resp.Msg.UserID != "user-2" {
		t.Errorf("user id = %q, want user-2", resp.Msg.UserID)
	}
}

func TestLoggingAndMetricsInterceptors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := metrics.New(prometheus.NewRegistry())
	verifier := auth.NewVerifier("test-secret", "")
	client := serve(t, LoggingInterceptor(logger), MetricsInterceptor(m), RequireAuth(verifier))
	ctx := context.Background()

	token, _ := verifier.Issue("user-3", "", time.Hour)
	if _, err := client.CallUnary(ctx, request(token)); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	client.CallUnary(ctx, request(""))

	if got := testutil.ToFloat64(m.RPCRequests.WithLabelValues(whoAmIProcedure, "ok")); got != 1 {
		t.Errorf("ok requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RPCRequests.WithLabelValues(whoAmIProcedure, "unauthenticated")); got != 1 {
		t.Errorf("unauthenticated requests = %v, want 1", got)
	}

	out := buf.String()
	if !strings.Contains(out, "RPC ok") || !strings.Contains(out, "code=unauthenticated") {
		t.Errorf("log output:\n%s", out)
	}
}
