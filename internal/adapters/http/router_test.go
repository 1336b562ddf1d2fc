package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/recommender-gateway/internal/config"
	"github.com/kirillkom/recommender-gateway/internal/core/domain"
	"github.com/kirillkom/recommender-gateway/internal/core/usecase"
)

type transportFake struct {
	mu       sync.Mutex
	bodies   map[string]string
	err      error
	requests []domain.Request
}

func (f *transportFake) Get(_ context.Context, req domain.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.bodies[req.Path], nil
}

func (f *transportFake) last(t *testing.T) domain.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatalf("expected a transport call")
	}
	return f.requests[len(f.requests)-1]
}

type interactionsFake struct {
	records map[string]*domain.Interaction
}

func (f *interactionsFake) Submit(_ context.Context, userID, item string, value int) (*domain.Interaction, error) {
	if value < -255 || value > 255 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "value", errors.New("out of range"))
	}
	interaction := &domain.Interaction{ID: "i-1", UserID: userID, Item: item, Value: value, Status: domain.InteractionPending, CreatedAt: time.Now()}
	f.records[interaction.ID] = interaction
	return interaction, nil
}

func (f *interactionsFake) GetByID(_ context.Context, id string) (*domain.Interaction, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrInteractionNotFound, "get interaction", errors.New("id="+id))
	}
	return rec, nil
}

func newTestHandler(cfg config.Config, transport *transportFake) http.Handler {
	recommender := usecase.NewRecommender(transport, nil)
	interactions := &interactionsFake{records: map[string]*domain.Interaction{}}
	return NewRouter(cfg, recommender, interactions, nil).Handler()
}

func serve(handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func decodeBody[T any](t *testing.T, res *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealthzEndpoint(t *testing.T) {
	res := serve(newTestHandler(config.Config{}, &transportFake{}), http.MethodGet, "/healthz", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRecommendForwardsOptions(t *testing.T) {
	transport := &transportFake{bodies: map[string]string{"/recommend/7": "a\nb\n"}}
	handler := newTestHandler(config.Config{}, transport)

	res := serve(handler, http.MethodGet, "/v1/users/7/recommendations?how_many=5&dither", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	got := decodeBody[listResponse[string]](t, res)
	if strings.Join(got.Items, ",") != "a,b" {
		t.Fatalf("unexpected items %v", got.Items)
	}

	req := transport.last(t)
	if req.Query.Get("howMany") != "5" {
		t.Fatalf("expected howMany=5, got %v", req.Query)
	}
	if _, ok := req.Query["dither"]; !ok {
		t.Fatalf("expected dither flag, got %v", req.Query)
	}
	if _, ok := req.Query["fresh"]; ok {
		t.Fatalf("fresh must be absent, got %v", req.Query)
	}
}

func TestRecommendInvalidUserReturns400WithoutUpstreamCall(t *testing.T) {
	transport := &transportFake{}
	res := serve(newTestHandler(config.Config{}, transport), http.MethodGet, "/v1/users/bob/recommendations", nil)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if len(transport.requests) != 0 {
		t.Fatalf("expected no upstream call, got %d", len(transport.requests))
	}
}

func TestPathParamWithSeparatorIsRejected(t *testing.T) {
	transport := &transportFake{}
	res := serve(newTestHandler(config.Config{}, transport), http.MethodGet, "/v1/items/shoe%2F..%2Fadmin/terms", nil)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if len(transport.requests) != 0 {
		t.Fatalf("unsafe segment reached the transport")
	}
}

func TestItemTermsRepairsKeyedBody(t *testing.T) {
	transport := &transportFake{bodies: map[string]string{"/termItemList/shoe": `["shoe":["red","blue"]]`}}
	res := serve(newTestHandler(config.Config{}, transport), http.MethodGet, "/v1/items/shoe/terms", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	got := decodeBody[listResponse[string]](t, res)
	if strings.Join(got.Items, ",") != "red,blue" {
		t.Fatalf("unexpected terms %v", got.Items)
	}
}

func TestSimilarityReturnsScores(t *testing.T) {
	transport := &transportFake{bodies: map[string]string{"/similarity/shoe/boot/sock": "0.5\n0.25\n"}}
	res := serve(newTestHandler(config.Config{}, transport), http.MethodGet, "/v1/items/shoe/similarity?others=boot,sock", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	got := decodeBody[scoresResponse](t, res)
	if got.Scores["boot"] != "0.5" || got.Scores["sock"] != "0.25" {
		t.Fatalf("unexpected scores %v", got.Scores)
	}
}

func TestSimilarityMismatchReturns502(t *testing.T) {
	transport := &transportFake{bodies: map[string]string{"/similarity/shoe/boot/sock": "0.5\n"}}
	res := serve(newTestHandler(config.Config{}, transport), http.MethodGet, "/v1/items/shoe/similarity?others=boot,sock", nil)
	if res.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.Code)
	}
}

func TestTransportFailureYieldsEmptyResults(t *testing.T) {
	transport := &transportFake{err: domain.WrapError(domain.ErrTransport, "recommender", errors.New("connection refused"))}
	handler := newTestHandler(config.Config{}, transport)

	res := serve(handler, http.MethodGet, "/v1/popular?how_many=3", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if body := strings.TrimSpace(res.Body.String()); body != `{"items":[]}` {
		t.Fatalf("unexpected body %s", body)
	}

	res = serve(handler, http.MethodGet, "/v1/users/7/profile", nil)
	if body := strings.TrimSpace(res.Body.String()); res.Code != http.StatusOK || body != `{}` {
		t.Fatalf("unexpected profile response %d %s", res.Code, body)
	}

	res = serve(handler, http.MethodPost, "/v1/forgotten", map[string]any{"items": []string{"shoe"}})
	got := decodeBody[ackResponse](t, res)
	if res.Code != http.StatusOK || got.OK {
		t.Fatalf("expected ok=false, got %d %+v", res.Code, got)
	}
}

func TestTrendRejectsUnknownWindow(t *testing.T) {
	res := serve(newTestHandler(config.Config{}, &transportFake{}), http.MethodGet, "/v1/trends/medium", nil)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestSetUserProfileSendsOverwriteFlag(t *testing.T) {
	transport := &transportFake{}
	res := serve(newTestHandler(config.Config{}, transport), http.MethodPut, "/v1/users/42/profile",
		map[string]any{"terms": []string{"red", "blue"}, "overwrite": true})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	req := transport.last(t)
	if req.Path != "/setProfile/42/red/blue" {
		t.Fatalf("unexpected path %q", req.Path)
	}
	if _, ok := req.Query["overwrite"]; !ok {
		t.Fatalf("expected overwrite flag, got %v", req.Query)
	}
}

func TestIngestAcceptsNumericUserID(t *testing.T) {
	transport := &transportFake{}
	res := serve(newTestHandler(config.Config{}, transport), http.MethodPost, "/v1/ingest",
		map[string]any{"user_id": 42, "item": "shoe", "value": 3})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if got := decodeBody[ackResponse](t, res); !got.OK {
		t.Fatalf("expected ok=true")
	}
	req := transport.last(t)
	if req.Query.Get("id") != "42" || req.Query.Get("url") != "'shoe'" || req.Query.Get("value") != "3" {
		t.Fatalf("unexpected ingest query %v", req.Query)
	}
}

func TestIngestRejectsUnknownFields(t *testing.T) {
	res := serve(newTestHandler(config.Config{}, &transportFake{}), http.MethodPost, "/v1/ingest",
		map[string]any{"user_id": "42", "item": "shoe", "value": 3, "weight": 1})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestSubmitInteractionReturns202(t *testing.T) {
	handler := newTestHandler(config.Config{}, &transportFake{})
	res := serve(handler, http.MethodPost, "/v1/interactions", map[string]any{"user_id": "42", "item": "shoe", "value": 1})
	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	got := decodeBody[domain.Interaction](t, res)
	if got.ID != "i-1" || got.Status != domain.InteractionPending {
		t.Fatalf("unexpected interaction %+v", got)
	}

	res = serve(handler, http.MethodGet, "/v1/interactions/i-1", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	res := serve(newTestHandler(config.Config{}, &transportFake{}), http.MethodDelete, "/v1/popular", nil)
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}
