package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/viyanta/viyanta-web-sub000/internal/collab"
	"github.com/viyanta/viyanta-web-sub000/internal/source"
	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

type stubFetcher struct {
	docs map[collab.Ref]collab.Document
}

func (s stubFetcher) FetchDocument(_ context.Context, ref collab.Ref) (collab.Document, error) {
	doc, ok := s.docs[ref]
	if !ok {
		return collab.Document{}, &collab.FetchError{Op: "fetch document", Status: 404, Err: collab.ErrNotFound}
	}
	return doc, nil
}

func setupTestApp(opts ...Option) *fiber.App {
	return New(tablemodel.NewEngine(), opts...).App()
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, TableResponse) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var decoded TableResponse
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("failed to decode response %q: %v", data, err)
		}
	}
	return resp, decoded
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]string
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", result["status"])
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		summary string
	}{
		{"raw text", "Premiums earned  1,234  (500)\nBenefits paid  400  100", 200, "2 rows × 3 columns"},
		{"tokenized", `{"headers":["Particulars","Amount"],"rows":[["Premium",1]]}`, 200, "1 rows × 2 columns"},
		{"records", `[{"a":1},{"a":2,"b":3}]`, 200, "2 rows × 2 columns"},
		{"malformed", `{"something":"else"}`, 422, "0 rows × 0 columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, decoded := doRequest(t, setupTestApp(), "POST", "/api/normalize", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d (%+v)", tt.status, resp.StatusCode, decoded)
			}
			if decoded.Summary != tt.summary {
				t.Errorf("expected summary %q, got %q", tt.summary, decoded.Summary)
			}
			if tt.status != 200 && decoded.Error == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestToggleEndpoint(t *testing.T) {
	app := setupTestApp()
	long := strings.Repeat("word ", 50)
	body := `{"headers":["Note"],"rows":[["` + long + `"]]}`

	_, before := doRequest(t, app, "POST", "/api/normalize?table=t1", body)
	if before.Table.Rows[0].Cells[0].Expanded {
		t.Fatal("expected the long cell to start collapsed")
	}

	resp, _ := doRequest(t, app, "POST", "/api/tables/t1/toggle", `{"row":0,"col":0}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	_, after := doRequest(t, app, "POST", "/api/normalize?table=t1", body)
	cell := after.Table.Rows[0].Cells[0]
	if !cell.Expanded || cell.Display != long {
		t.Errorf("expected the cell expanded with full text, got %+v", cell)
	}

	_, other := doRequest(t, app, "POST", "/api/normalize?table=t2", body)
	if other.Table.Rows[0].Cells[0].Expanded {
		t.Error("expected expansion state to be per table")
	}

	resp, _ = doRequest(t, app, "DELETE", "/api/tables/t1/expansion", "")
	if resp.StatusCode != fiber.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
	_, reset := doRequest(t, app, "POST", "/api/normalize?table=t1", body)
	if reset.Table.Rows[0].Cells[0].Expanded {
		t.Error("expected the reset to collapse the cell")
	}
}

func TestToggleEndpoint_Invalid(t *testing.T) {
	resp, decoded := doRequest(t, setupTestApp(), "POST", "/api/tables/t1/toggle", `{"row":-1,"col":0}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if decoded.Success || decoded.Error == "" {
		t.Errorf("expected an error response, got %+v", decoded)
	}
}

func TestEditsEndpoint(t *testing.T) {
	body := `{
		"input": {"headers":["Particulars","Life"],"rows":[["Premium","100"],["Claims","50"]]},
		"form": "L-1",
		"record": 0,
		"edits": {"L-1_0_1_Life": "75", "L-2_0_0_Life": "999"}
	}`

	resp, decoded := doRequest(t, setupTestApp(), "POST", "/api/edits", body)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%+v)", resp.StatusCode, decoded)
	}

	rows := decoded.Table.Rows
	if rows[1].Cells[1].Display != "75" || !rows[1].Cells[1].Edited {
		t.Errorf("expected the edited cell, got %+v", rows[1].Cells[1])
	}
	if rows[0].Cells[1].Display != "100" || rows[0].Cells[1].Edited {
		t.Errorf("expected an edit of another form to be ignored, got %+v", rows[0].Cells[1])
	}
}

func TestEditsEndpoint_TextInput(t *testing.T) {
	body := `{"input":"Premiums earned  1,234  (500)","form":"L-1","record":0,"edits":{"L-1_0_0_Column 2":"1,000"}}`

	_, decoded := doRequest(t, setupTestApp(), "POST", "/api/edits", body)
	if decoded.Table == nil || decoded.Table.Rows[0].Cells[1].Display != "1,000" {
		t.Errorf("expected the edit applied to the text table, got %+v", decoded)
	}
}

func TestEditsEndpoint_BadRequest(t *testing.T) {
	tests := []string{`not json`, `{"form":"L-1"}`, `{"input":[],"edits":{"bad":"x"}}`}
	for _, body := range tests {
		resp, _ := doRequest(t, setupTestApp(), "POST", "/api/edits", body)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestDocumentEndpoint(t *testing.T) {
	ref := collab.Ref{Company: "acme", File: "f1", Split: "s1"}
	fetcher := stubFetcher{docs: map[collab.Ref]collab.Document{
		ref: {Ref: ref, ContentType: "text/plain", Body: []byte("Premiums earned  1,234  (500)")},
	}}
	app := setupTestApp(WithFetcher(fetcher), WithPreferences(source.NewPreferences([]string{"L-1"})))

	resp, decoded := doRequest(t, app, "GET", "/api/documents/acme/f1/s1?form=L-1", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%+v)", resp.StatusCode, decoded)
	}
	if decoded.Summary != "1 rows × 3 columns" {
		t.Errorf("unexpected summary %q", decoded.Summary)
	}

	resp, _ = doRequest(t, app, "GET", "/api/documents/acme/f1/missing", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, "GET", "/api/documents/acme/f1/s1?form=L-9", "")
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("expected 403 for a disabled form, got %d", resp.StatusCode)
	}
}

func TestDocumentEndpoint_NoFetcher(t *testing.T) {
	resp, _ := doRequest(t, setupTestApp(), "GET", "/api/documents/a/b/c", "")
	if resp.StatusCode != fiber.StatusNotImplemented {
		t.Errorf("expected 501, got %d", resp.StatusCode)
	}
}

type gatedFetcher struct {
	release map[string]chan struct{}
	started chan string
}

func (g gatedFetcher) FetchDocument(_ context.Context, ref collab.Ref) (collab.Document, error) {
	g.started <- ref.Split
	if ch, ok := g.release[ref.Split]; ok {
		<-ch
	}
	return collab.Document{Ref: ref, ContentType: "text/plain", Body: []byte("Premiums earned  1,234  (500)")}, nil
}

func TestDocumentEndpoint_Superseded(t *testing.T) {
	release := make(chan struct{})
	fetcher := gatedFetcher{
		release: map[string]chan struct{}{"old": release},
		started: make(chan string, 4),
	}
	app := setupTestApp(WithFetcher(fetcher))

	done := make(chan int, 1)
	go func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/documents/acme/f1/old?table=t1", nil), -1)
		if err != nil {
			done <- 0
			return
		}
		done <- resp.StatusCode
	}()
	<-fetcher.started

	resp, _ := doRequest(t, app, "GET", "/api/documents/acme/f1/new?table=t1", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected the newer request to succeed, got %d", resp.StatusCode)
	}

	close(release)
	if status := <-done; status != fiber.StatusConflict {
		t.Errorf("expected the older request to be discarded with 409, got %d", status)
	}
}
