package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"budget/internal/core"

	goption "google.golang.org/api/option"
)

type fakeSheets struct {
	mu      sync.Mutex
	column  [][]any
	appends []string
	clears  []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		body, _ := io.ReadAll(r.Body)
		f.appends = append(f.appends, string(body))
		_, _ = io.WriteString(w, `{"updates":{"updatedRange":"Expenses!A2:H2"}}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.clears = append(f.clears, path)
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"values": f.column})
	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusBadRequest)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-id",
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithHTTPClient(srv.Client()),
			goption.WithoutAuthentication(),
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RequiresSpreadsheetAndCredentials(t *testing.T) {
	if _, err := New(context.Background(), Options{}); err == nil {
		t.Fatal("expected error without spreadsheet id")
	}
	_, err := New(context.Background(), Options{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
	_, err = New(context.Background(), Options{SpreadsheetID: "x", CredentialsFile: "/does/not/exist.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestClient_AppendExpense(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	ev := core.LedgerEvent{
		Type: core.EventExpenseCreated, UserID: "u1", Year: 2025, Month: 6,
		Expense: &core.ExpenseEvent{ID: "e1", Category: "Food", Amount: "12.50", Date: "2025-06-01"},
	}
	if err := c.AppendExpense(context.Background(), ev); err != nil {
		t.Fatalf("AppendExpense: %v", err)
	}

	if len(fake.appends) != 1 {
		t.Fatalf("appends = %d", len(fake.appends))
	}
	for _, want := range []string{`"e1"`, `"u1"`, `"12.50"`, `"2025-06-01"`} {
		if !strings.Contains(fake.appends[0], want) {
			t.Errorf("append body %s missing %s", fake.appends[0], want)
		}
	}

	if err := c.AppendExpense(context.Background(), core.LedgerEvent{Type: core.EventExpenseCreated}); err == nil {
		t.Error("expected error for event without expense")
	}
}

func TestClient_DeleteExpense(t *testing.T) {
	fake := &fakeSheets{column: [][]any{{"id"}, {"e1"}, {"e2"}}}
	c := newTestClient(t, fake)

	if err := c.DeleteExpense(context.Background(), "e2"); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if len(fake.clears) != 1 || !strings.Contains(fake.clears[0], "A3:H3") {
		t.Fatalf("clears = %v", fake.clears)
	}

	if err := c.DeleteExpense(context.Background(), "missing"); err != nil {
		t.Fatalf("missing row should not fail: %v", err)
	}
	if len(fake.clears) != 1 {
		t.Fatalf("missing row should not clear anything, clears = %v", fake.clears)
	}
}

func TestFindRow(t *testing.T) {
	values := [][]interface{}{{"id", "user"}, {}, {" e1 ", "u1"}, {"e2"}}
	tests := map[string]int{"e1": 3, "e2": 4, "id": 1, "nope": 0}
	for id, want := range tests {
		if got := findRow(values, id); got != want {
			t.Errorf("findRow(%q) = %d, want %d", id, got, want)
		}
	}
	if got := rowRange("Expenses", 7); got != "Expenses!A7:H7" {
		t.Errorf("rowRange = %s", got)
	}
}
