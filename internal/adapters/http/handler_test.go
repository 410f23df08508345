package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	eventadapter "github.com/bookloop/order-escrow-service/internal/adapters/events"
	"github.com/bookloop/order-escrow-service/internal/adapters/memory"
	"github.com/bookloop/order-escrow-service/internal/application"
	"github.com/bookloop/order-escrow-service/internal/contracts"
)

func newTestServer() *httptest.Server {
	repos := memory.NewRepositories()
	svc := application.NewService(application.Dependencies{
		Accounts: repos.Accounts, Orders: repos.Orders, Ledger: repos.Ledger,
		Idempotency: repos.Idempotency, Outbox: repos.Outbox,
		DomainEvents: eventadapter.NewMemoryDomainPublisher(), Analytics: eventadapter.NewMemoryAnalyticsPublisher(), DLQ: eventadapter.NewLoggingDLQPublisher(),
	})
	return httptest.NewServer(NewRouter(NewHandler(svc)))
}

func doJSON(t *testing.T, server *httptest.Server, method, path, subject, idemKey string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil { t.Fatalf("encode body: %v", err) }
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	if err != nil { t.Fatalf("new request: %v", err) }
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+subject)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}
	resp, err := server.Client().Do(req)
	if err != nil { t.Fatalf("do request: %v", err) }
	defer resp.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil { t.Fatalf("decode response: %v", err) }
	return resp, decoded
}

func TestRouterRejectsMissingBearer(t *testing.T) {
	server := newTestServer()
	defer server.Close()
	resp, body := doJSON(t, server, http.MethodGet, "/v1/ledger/balance?account_id=alice", "", "", nil)
	if resp.StatusCode != http.StatusUnauthorized { t.Fatalf("status = %d, want 401", resp.StatusCode) }
	if body["status"] != "error" { t.Fatalf("unexpected body: %v", body) }
}

func TestHealthEndpointsAreOpen(t *testing.T) {
	server := newTestServer()
	defer server.Close()
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, body := doJSON(t, server, http.MethodGet, path, "", "", nil)
		if resp.StatusCode != http.StatusOK { t.Fatalf("%s status = %d, want 200", path, resp.StatusCode) }
		if body["status"] != "success" { t.Fatalf("%s body: %v", path, body) }
	}
}

func TestMintRequiresAuthoritySubject(t *testing.T) {
	server := newTestServer()
	defer server.Close()
	resp, _ := doJSON(t, server, http.MethodPost, "/v1/ledger/mint", "alice", "mint-1", contracts.MintRequest{AccountID: "alice", Amount: 100})
	if resp.StatusCode != http.StatusUnauthorized { t.Fatalf("status = %d, want 401", resp.StatusCode) }
	resp, body := doJSON(t, server, http.MethodPost, "/v1/ledger/mint", "treasury_ops", "mint-2", contracts.MintRequest{AccountID: "alice", Amount: 100})
	if resp.StatusCode != http.StatusOK { t.Fatalf("status = %d, want 200 (%v)", resp.StatusCode, body) }
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	server := newTestServer()
	defer server.Close()
	start := time.Now().UTC().Add(30 * 24 * time.Hour)

	resp, body := doJSON(t, server, http.MethodPost, "/v1/ledger/mint", "treasury_ops", "mint-1", contracts.MintRequest{AccountID: "consumer_1", Amount: 10000})
	if resp.StatusCode != http.StatusOK { t.Fatalf("mint status = %d (%v)", resp.StatusCode, body) }
	resp, body = doJSON(t, server, http.MethodPut, "/v1/ledger/fee-recipient", "treasury_ops", "", contracts.SetFeeRecipientRequest{AccountID: "fund_pool"})
	if resp.StatusCode != http.StatusOK { t.Fatalf("fee recipient status = %d (%v)", resp.StatusCode, body) }
	resp, body = doJSON(t, server, http.MethodPost, "/v1/ledger/approvals", "consumer_1", "", contracts.ApproveRequest{Spender: "escrow_custody", Amount: 10000})
	if resp.StatusCode != http.StatusOK { t.Fatalf("approve status = %d (%v)", resp.StatusCode, body) }

	resp, body = doJSON(t, server, http.MethodPost, "/v1/orders", "consumer_1", "create-1", contracts.CreateOrderRequest{
		Provider: "provider_1", Consumer: "consumer_1", RecordID: "rec-1", ItemID: "item-1",
		PriceTotal: 10000, StartTime: start.Unix(), EndTime: start.Add(48 * time.Hour).Unix(),
	})
	if resp.StatusCode != http.StatusCreated { t.Fatalf("create status = %d (%v)", resp.StatusCode, body) }
	data := body["data"].(map[string]any)
	if data["status"] != "funded" { t.Fatalf("order status = %v, want funded", data["status"]) }
	orderID := uint64(data["order_id"].(float64))

	resp, body = doJSON(t, server, http.MethodPost, "/v1/orders/releases", "svc_marketplace", "release-1", contracts.OrderActionRequest{OrderID: orderID})
	if resp.StatusCode != http.StatusOK { t.Fatalf("release status = %d (%v)", resp.StatusCode, body) }
	data = body["data"].(map[string]any)
	if data["allocated_to_fund_pool"].(float64) != 100 { t.Fatalf("pool share = %v, want 100", data["allocated_to_fund_pool"]) }

	resp, body = doJSON(t, server, http.MethodPost, "/v1/orders/payouts", "svc_marketplace", "payout-1", contracts.OrderActionRequest{OrderID: orderID})
	if resp.StatusCode != http.StatusOK { t.Fatalf("payout status = %d (%v)", resp.StatusCode, body) }

	resp, body = doJSON(t, server, http.MethodGet, "/v1/ledger/balance?account_id=provider_1", "svc_marketplace", "", nil)
	if resp.StatusCode != http.StatusOK { t.Fatalf("balance status = %d (%v)", resp.StatusCode, body) }
	if body["data"].(map[string]any)["balance"].(float64) != 9900 { t.Fatalf("provider balance = %v, want 9900", body["data"]) }

	resp, body = doJSON(t, server, http.MethodPost, "/v1/orders/releases", "svc_marketplace", "release-2", contracts.OrderActionRequest{OrderID: orderID})
	if resp.StatusCode != http.StatusConflict { t.Fatalf("second release status = %d, want 409 (%v)", resp.StatusCode, body) }
	if body["error"].(map[string]any)["code"] != "invalid_state" { t.Fatalf("error code = %v, want invalid_state", body["error"]) }

	resp, body = doJSON(t, server, http.MethodGet, "/v1/orders/ledger?order_id=1", "svc_marketplace", "", nil)
	if resp.StatusCode != http.StatusOK { t.Fatalf("ledger status = %d (%v)", resp.StatusCode, body) }
	if entries := body["data"].([]any); len(entries) != 3 { t.Fatalf("ledger entries = %d, want 3", len(entries)) }
}

func TestTransferWithoutFeeRecipientIsUnprocessable(t *testing.T) {
	server := newTestServer()
	defer server.Close()
	resp, _ := doJSON(t, server, http.MethodPost, "/v1/ledger/mint", "treasury_ops", "mint-1", contracts.MintRequest{AccountID: "alice", Amount: 1000})
	if resp.StatusCode != http.StatusOK { t.Fatalf("mint status = %d", resp.StatusCode) }
	resp, body := doJSON(t, server, http.MethodPost, "/v1/ledger/transfers", "alice", "xfer-1", contracts.TransferRequest{To: "bob", Amount: 100})
	if resp.StatusCode != http.StatusUnprocessableEntity { t.Fatalf("status = %d, want 422 (%v)", resp.StatusCode, body) }
	if body["error"].(map[string]any)["code"] != "fee_recipient_not_set" { t.Fatalf("error code = %v", body["error"]) }
}

func TestMutatingCallsRequireIdempotencyKey(t *testing.T) {
	server := newTestServer()
	defer server.Close()
	resp, body := doJSON(t, server, http.MethodPost, "/v1/ledger/mint", "treasury_ops", "", contracts.MintRequest{AccountID: "alice", Amount: 100})
	if resp.StatusCode != http.StatusBadRequest { t.Fatalf("status = %d, want 400 (%v)", resp.StatusCode, body) }
	if body["error"].(map[string]any)["code"] != "idempotency_key_required" { t.Fatalf("error code = %v", body["error"]) }
}
