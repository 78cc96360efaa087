package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"debtkeeper/internal/domain"
	"debtkeeper/internal/repository"
	"debtkeeper/internal/service"
	"debtkeeper/internal/transport/auth"
)

// fakeRepo backs the service graph in-memory for transport tests.
type fakeRepo struct {
	mu       sync.Mutex
	debts    map[string]domain.Debt
	payments map[string][]domain.Payment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		debts:    make(map[string]domain.Debt),
		payments: make(map[string][]domain.Payment),
	}
}

func (r *fakeRepo) Create(ctx context.Context, d domain.Debt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debts[d.ID] = d
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (domain.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.debts[id]
	if !ok {
		return domain.Debt{}, repository.ErrNotFound
	}
	return d, nil
}

func (r *fakeRepo) List(ctx context.Context, f repository.DebtsFilter) ([]domain.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Debt
	for _, d := range r.debts {
		if f.OwnerID != nil && d.OwnerID != *f.OwnerID {
			continue
		}
		if f.Status != nil && d.Status != *f.Status {
			continue
		}
		if f.Type != nil && d.Type != *f.Type {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeRepo) ListNonTerminal(ctx context.Context) ([]domain.Debt, error) {
	return nil, nil
}

func (r *fakeRepo) UpdateDueDate(ctx context.Context, id string, dueDate time.Time, status domain.DebtStatus, now time.Time) error {
	return nil
}

func (r *fakeRepo) ApplyPayment(ctx context.Context, debtID string, apply func(domain.Debt) (domain.Debt, domain.Payment, error)) (domain.Debt, domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.debts[debtID]
	if !ok {
		return domain.Debt{}, domain.Payment{}, repository.ErrNotFound
	}
	updated, payment, err := apply(d)
	if err != nil {
		return domain.Debt{}, domain.Payment{}, err
	}
	r.debts[debtID] = updated
	r.payments[debtID] = append(r.payments[debtID], payment)
	return updated, payment, nil
}

func (r *fakeRepo) ListByDebt(ctx context.Context, debtID string) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payments[debtID], nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeRepo) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := newFakeRepo()
	debtSvc := service.NewDebtService(repo, nil, logger)
	statsSvc := service.NewStatsService(repo, nil, logger)
	paymentSvc := service.NewPaymentService(repo, repo, repo, statsSvc, nil, logger)
	exportSvc := service.NewExportService(debtSvc, nil, nil, nil, logger)

	handler := NewHandler(debtSvc, paymentSvc, statsSvc, exportSvc)

	// stand-in for the token middleware: every request acts as owner 1
	asOwner := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), auth.OwnerIDKey, int64(1))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	server := httptest.NewServer(handler.InitRouterWithAuth(asOwner))
	t.Cleanup(server.Close)
	return server, repo
}

func postJSON(t *testing.T, url string, body map[string]interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response) APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var out APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func createDebtBody() map[string]interface{} {
	dueMonth := time.Now().UTC().Format("2006-01")
	return map[string]interface{}{
		"name":                   "Car loan",
		"creditor":               "First Bank",
		"type":                   "car",
		"initial_amount":         "1200.00",
		"interest_rate":          "12",
		"monthly_payment_target": "106.00",
		"start_date":             "2025-01-01",
		"due_date":               dueMonth + "-15",
	}
}

func TestHandler_CreateAndGetDebt(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/debts", createDebtBody())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decodeResponse(t, resp)

	data, _ := created.Data.(map[string]interface{})
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatalf("no debt id in response: %+v", created.Data)
	}
	if data["status"] != "active" {
		t.Errorf("status = %v, want active (due this month)", data["status"])
	}

	getResp, err := http.Get(server.URL + "/debts/" + id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got := decodeResponse(t, getResp)
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", getResp.StatusCode)
	}

	debt, _ := got.Data.(map[string]interface{})
	elig, _ := debt["eligibility"].(map[string]interface{})
	if elig == nil || elig["is_eligible"] != true {
		t.Errorf("eligibility = %v, want eligible within due window", debt["eligibility"])
	}
}

func TestHandler_CreateDebt_Validation(t *testing.T) {
	server, _ := newTestServer(t)

	body := createDebtBody()
	body["type"] = "boat"

	resp := postJSON(t, server.URL+"/debts", body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_ListDebts_BadStatusFilter(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/debts?status=bogus")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_ApplyPayment(t *testing.T) {
	server, _ := newTestServer(t)

	created := decodeResponse(t, postJSON(t, server.URL+"/debts", createDebtBody()))
	data, _ := created.Data.(map[string]interface{})
	id, _ := data["id"].(string)

	resp := postJSON(t, server.URL+"/debts/"+id+"/payments", map[string]interface{}{
		"amount":            "106.00",
		"source_account_id": "acc-1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	result := decodeResponse(t, resp)

	payload, _ := result.Data.(map[string]interface{})
	payment, _ := payload["payment"].(map[string]interface{})
	if payment["interest"] != "12.00" || payment["principal"] != "94.00" {
		t.Errorf("split = %v/%v, want 12.00/94.00", payment["interest"], payment["principal"])
	}
	debt, _ := payload["debt"].(map[string]interface{})
	if debt["current_amount"] != "1106.00" {
		t.Errorf("remaining = %v, want 1106.00", debt["current_amount"])
	}
}

func TestHandler_ApplyPayment_Overpay(t *testing.T) {
	server, _ := newTestServer(t)

	created := decodeResponse(t, postJSON(t, server.URL+"/debts", createDebtBody()))
	data, _ := created.Data.(map[string]interface{})
	id, _ := data["id"].(string)

	resp := postJSON(t, server.URL+"/debts/"+id+"/payments", map[string]interface{}{
		"amount":            "5000.00",
		"source_account_id": "acc-1",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestHandler_ApplyPayment_NotEligible(t *testing.T) {
	server, _ := newTestServer(t)

	body := createDebtBody()
	body["due_date"] = time.Now().UTC().AddDate(0, 2, 0).Format("2006-01-02")
	created := decodeResponse(t, postJSON(t, server.URL+"/debts", body))
	data, _ := created.Data.(map[string]interface{})
	id, _ := data["id"].(string)

	resp := postJSON(t, server.URL+"/debts/"+id+"/payments", map[string]interface{}{
		"amount":            "106.00",
		"source_account_id": "acc-1",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestHandler_Schedule(t *testing.T) {
	server, _ := newTestServer(t)

	created := decodeResponse(t, postJSON(t, server.URL+"/debts", createDebtBody()))
	data, _ := created.Data.(map[string]interface{})
	id, _ := data["id"].(string)

	resp, err := http.Get(server.URL + "/debts/" + id + "/schedule")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	result := decodeResponse(t, resp)

	schedule, _ := result.Data.(map[string]interface{})
	installments, _ := schedule["installments"].([]interface{})
	if len(installments) != 13 {
		t.Errorf("installments = %d, want 13", len(installments))
	}
	if schedule["total_interest"] != "79.93" {
		t.Errorf("total interest = %v, want 79.93", schedule["total_interest"])
	}
}

func TestHandler_Stats(t *testing.T) {
	server, _ := newTestServer(t)

	_ = decodeResponse(t, postJSON(t, server.URL+"/debts", createDebtBody()))

	resp, err := http.Get(server.URL + "/stats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	result := decodeResponse(t, resp)

	stats, _ := result.Data.(map[string]interface{})
	if stats["total_outstanding"] != "1200.00" {
		t.Errorf("outstanding = %v, want 1200.00", stats["total_outstanding"])
	}
	counts, _ := stats["count_by_status"].(map[string]interface{})
	if counts["active"] != float64(1) {
		t.Errorf("active count = %v, want 1", counts["active"])
	}
}

func TestHandler_GetDebt_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/debts/missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHandler_Unauthorized(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := newFakeRepo()
	debtSvc := service.NewDebtService(repo, nil, logger)
	statsSvc := service.NewStatsService(repo, nil, logger)
	paymentSvc := service.NewPaymentService(repo, repo, repo, statsSvc, nil, logger)
	exportSvc := service.NewExportService(debtSvc, nil, nil, nil, logger)

	handler := NewHandler(debtSvc, paymentSvc, statsSvc, exportSvc)
	server := httptest.NewServer(handler.InitRouter())
	defer server.Close()

	resp, err := http.Get(server.URL + "/debts")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without owner context", resp.StatusCode)
	}
}
