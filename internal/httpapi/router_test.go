package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/metrics"
	"github.com/mmynk/jomsplit/internal/service"
	"github.com/mmynk/jomsplit/pkg/api"
	"github.com/mmynk/jomsplit/pkg/api/apiconnect"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupRouter(t *testing.T) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	split := service.NewSplitService(metrics.New(reg), "MYR")
	path, handler := apiconnect.NewSplitServiceHandler(split)

	server := httptest.NewServer(NewRouter(split, reg, nil, Mount{Path: path, Handler: handler}))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func receipt() api.Receipt {
	return api.Receipt{
		Name:       "Nasi Kandar",
		NettAmount: d("55.68"),
		Items: []api.Item{
			{ID: "1", Name: "Nasi Lemak", Quantity: 1, UnitPrice: d("18"), NettPrice: d("20.88")},
			{ID: "2", Name: "Teh Tarik", Quantity: 2, UnitPrice: d("15"), NettPrice: d("17.40")},
		},
	}
}

func TestAllocateEndpoint(t *testing.T) {
	server := setupRouter(t)

	resp := postJSON(t, server.URL+"/allocate", api.AllocateRequest{
		Receipt:      receipt(),
		Participants: []api.Participant{{ID: "user:alice"}, {ID: "user:bob"}, {ID: "user:carol"}},
		Policy:       "equal",
	})
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, b)
	}

	var a api.Allocation
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		t.Fatalf("failed to decode allocation: %v", err)
	}
	if a.Policy != "equal" || len(a.Participants) != 3 {
		t.Fatalf("allocation = %+v", a)
	}
	for _, p := range a.Participants {
		if !p.TotalPaid.Equal(d("18.56")) {
			t.Errorf("%s pays %s, want 18.56", p.ID, p.TotalPaid)
		}
	}
}

func TestAllocateEndpointErrors(t *testing.T) {
	server := setupRouter(t)

	tests := []struct {
		name  string
		body  any
		want  int
		code  string
		field string
	}{
		{
			name: "malformed body",
			body: "not an object",
			want: http.StatusBadRequest,
			code: "invalid_argument",
		},
		{
			name: "no participants",
			body: api.AllocateRequest{Receipt: receipt(), Policy: "equal"},
			want:  http.StatusBadRequest,
			code:  "invalid_argument",
			field: "participants",
		},
		{
			name: "unknown policy",
			body: api.AllocateRequest{Receipt: receipt(), Participants: []api.Participant{{ID: "user:alice"}}, Policy: "by-vibes"},
			want:  http.StatusBadRequest,
			code:  "invalid_argument",
			field: "policy",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, server.URL+"/allocate", tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			var body errorBody
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body.Code != tt.code || body.Error == "" || body.Field != tt.field {
				t.Errorf("error body = %+v", body)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	server := setupRouter(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	postJSON(t, server.URL+"/allocate", api.AllocateRequest{
		Receipt:      receipt(),
		Participants: []api.Participant{{ID: "user:alice"}},
		Policy:       "equal",
	})

	resp, err = http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), `jomsplit_allocations_total{policy="equal"} 1`) {
		t.Errorf("metrics missing allocation counter:\n%s", b)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := setupRouter(t)

	req, _ := http.NewRequest(http.MethodOptions, server.URL+"/allocate", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Errorf("allow headers = %q", got)
	}
}

func TestConnectMount(t *testing.T) {
	server := setupRouter(t)
	client := apiconnect.NewSplitServiceClient(http.DefaultClient, server.URL)

	resp, err := client.Allocate(context.Background(), connect.NewRequest(&api.AllocateRequest{
		Receipt:      receipt(),
		Participants: []api.Participant{{ID: "user:alice"}, {ID: "user:bob"}},
		Policy:       "equal",
	}))
	if err != nil {
		t.Fatalf("Allocate over Connect failed: %v", err)
	}
	if got := resp.Msg.Allocation.Participants[0].TotalPaid; !got.Equal(d("27.84")) {
		t.Errorf("alice pays %s, want 27.84", got)
	}
}
