package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/erazemk/pivoteka/internal/db"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	router, err := NewRouter(database)
	if err != nil {
		t.Fatalf("setting up router: %v", err)
	}
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// beerResponse mirrors the single-record representation.
type beerResponse struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Type  string   `json:"type"`
	IBU   *float64 `json:"ibu"`
	Value *float64 `json:"value"`
	Note  float64  `json:"note"`
	Date  string   `json:"date"`
}

func postBeer(t *testing.T, server *httptest.Server, body map[string]any) *http.Response {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(server.URL+"/beer", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return resp
}

func listBeers(t *testing.T, server *httptest.Server) []beerResponse {
	t.Helper()
	resp, err := http.Get(server.URL + "/beers")
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from list, got %d", resp.StatusCode)
	}

	var body struct {
		Beers []beerResponse `json:"beers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if body.Beers == nil {
		t.Fatal("expected beers array, got null")
	}
	return body.Beers
}

func decodeMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	return body["message"]
}

func TestCreateBeer(t *testing.T) {
	server := setupTestServer(t)

	resp := postBeer(t, server, map[string]any{
		"name": "Lagunitas", "type": "IPA", "ibu": 51.5, "value": 15.50, "note": 8.5,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var beer beerResponse
	if err := json.NewDecoder(resp.Body).Decode(&beer); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if beer.ID <= 0 {
		t.Errorf("expected positive id, got %d", beer.ID)
	}
	if beer.Name != "Lagunitas" || beer.Type != "IPA" || beer.Note != 8.5 {
		t.Errorf("unexpected beer representation: %+v", beer)
	}
	if beer.IBU == nil || *beer.IBU != 51.5 {
		t.Errorf("expected ibu 51.5, got %v", beer.IBU)
	}
	if beer.Value == nil || *beer.Value != 15.50 {
		t.Errorf("expected value 15.50, got %v", beer.Value)
	}
	if beer.Date == "" {
		t.Error("expected date to be set")
	}
}

func TestCreateBeerFormEncoded(t *testing.T) {
	server := setupTestServer(t)

	form := url.Values{}
	form.Set("name", "Coruja")
	form.Set("note", "6.0")
	resp, err := http.Post(server.URL+"/beer", "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var beer beerResponse
	json.NewDecoder(resp.Body).Decode(&beer)
	if beer.Name != "Coruja" || beer.Note != 6.0 {
		t.Errorf("unexpected beer from form create: %+v", beer)
	}
	if beer.IBU != nil || beer.Value != nil {
		t.Errorf("expected omitted optional fields to be null, got %+v", beer)
	}
}

func TestCreateDuplicateName(t *testing.T) {
	server := setupTestServer(t)

	resp := postBeer(t, server, map[string]any{"name": "Lagunitas", "note": 8.5})
	resp.Body.Close()

	resp = postBeer(t, server, map[string]any{"name": "Lagunitas", "note": 7.0})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if msg := decodeMessage(t, resp); msg != "record with this name already exists" {
		t.Errorf("unexpected message %q", msg)
	}

	// Names differing only in case conflict as well.
	resp = postBeer(t, server, map[string]any{"name": "lAGUNITAS", "note": 7.0})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for case-variant duplicate, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if beers := listBeers(t, server); len(beers) != 1 {
		t.Errorf("expected store unchanged with 1 beer, got %d", len(beers))
	}
}

func TestCreateBeerValidation(t *testing.T) {
	server := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"note": 8.5}},
		{"missing note", map[string]any{"name": "Lagunitas"}},
		{"name too long", map[string]any{"name": strings.Repeat("a", 141), "note": 8.5}},
		{"type too long", map[string]any{"name": "Lagunitas", "type": strings.Repeat("b", 141), "note": 8.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postBeer(t, server, tt.body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}

	if beers := listBeers(t, server); len(beers) != 0 {
		t.Errorf("expected no beers after rejected creates, got %d", len(beers))
	}
}

func TestCreateBeerMultibyteName(t *testing.T) {
	server := setupTestServer(t)

	// 140 characters is within the limit even when each takes two bytes.
	resp := postBeer(t, server, map[string]any{"name": strings.Repeat("ž", 140), "note": 8.5})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for 140-character multibyte name, got %d", resp.StatusCode)
	}

	resp = postBeer(t, server, map[string]any{"name": strings.Repeat("ž", 141), "note": 8.5})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for 141-character name, got %d", resp.StatusCode)
	}
}

func TestListBeersEmpty(t *testing.T) {
	server := setupTestServer(t)

	if beers := listBeers(t, server); len(beers) != 0 {
		t.Errorf("expected empty collection, got %d beers", len(beers))
	}
}

func TestGetBeerCaseInsensitive(t *testing.T) {
	server := setupTestServer(t)

	resp := postBeer(t, server, map[string]any{"name": "Lagunitas", "note": 8.5})
	resp.Body.Close()

	resp, err := http.Get(server.URL + "/beer?name=lAGUNITAS")
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var beer beerResponse
	json.NewDecoder(resp.Body).Decode(&beer)
	if beer.Name != "Lagunitas" {
		t.Errorf("expected stored name 'Lagunitas', got %q", beer.Name)
	}
}

func TestGetBeerNotFound(t *testing.T) {
	server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/beer?name=Nonexistent")
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if msg := decodeMessage(t, resp); msg != "record not found" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestGetBeerMissingName(t *testing.T) {
	server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/beer")
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDeleteBeerNotFound(t *testing.T) {
	server := setupTestServer(t)

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/beer?name=Nonexistent", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if msg := decodeMessage(t, resp); msg != "record not found" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestDeleteBeerPercentEncodedName(t *testing.T) {
	server := setupTestServer(t)

	resp := postBeer(t, server, map[string]any{"name": "100% IPA", "note": 9.0})
	resp.Body.Close()

	// The name is decoded exactly once on the way in.
	req, _ := http.NewRequest(http.MethodDelete,
		server.URL+"/beer?name="+url.QueryEscape("100% IPA"), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for percent-encoded name, got %d", resp.StatusCode)
	}
}

func TestBeerLifecycle(t *testing.T) {
	server := setupTestServer(t)

	// Create.
	resp := postBeer(t, server, map[string]any{"name": "Lagunitas", "note": 8.5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from create, got %d", resp.StatusCode)
	}
	var created beerResponse
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if created.ID != 1 {
		t.Errorf("expected first id to be 1, got %d", created.ID)
	}

	// List shows the new beer.
	beers := listBeers(t, server)
	if len(beers) != 1 || beers[0].Name != "Lagunitas" {
		t.Fatalf("unexpected list after create: %+v", beers)
	}

	// Delete echoes the name back.
	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/beer?name=Lagunitas", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from delete, got %d", resp.StatusCode)
	}
	var deleted map[string]string
	json.NewDecoder(resp.Body).Decode(&deleted)
	resp.Body.Close()
	if deleted["message"] != "record removed" || deleted["name"] != "Lagunitas" {
		t.Errorf("unexpected delete response: %v", deleted)
	}

	// List is empty again.
	if beers := listBeers(t, server); len(beers) != 0 {
		t.Errorf("expected empty collection after delete, got %d beers", len(beers))
	}
}

func TestRootRedirectsToDocs(t *testing.T) {
	server := setupTestServer(t)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("root request: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/docs" {
		t.Errorf("expected redirect to /docs, got %q", loc)
	}
}

func TestOpenAPIDocument(t *testing.T) {
	server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/openapi.json")
	if err != nil {
		t.Fatalf("openapi request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decoding openapi document: %v", err)
	}
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		t.Fatal("openapi document has no paths")
	}
	for _, p := range []string{"/beer", "/beers"} {
		if _, ok := paths[p]; !ok {
			t.Errorf("openapi document missing path %s", p)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t)

	// Generate a request so the counter series exists.
	listBeers(t, server)

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading metrics body: %v", err)
	}
	for _, series := range []string{"pivoteka_http_requests_total", "pivoteka_http_request_duration_seconds"} {
		if !strings.Contains(string(body), series) {
			t.Errorf("expected metrics output to contain %s", series)
		}
	}
}

func TestHealthz(t *testing.T) {
	server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
