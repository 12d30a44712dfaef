package todoist

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/elon-code/jiradc-todoist-sync/internal/config"
    "github.com/elon-code/jiradc-todoist-sync/internal/domain"
    "github.com/rs/zerolog"
)

func testClient(t *testing.T, handler http.Handler) *Client {
    t.Helper()
    srv := httptest.NewServer(handler)
    t.Cleanup(srv.Close)
    cfg := config.Config{TodoistBaseURL: srv.URL, TodoistToken: "tok", HTTPTimeout: 5 * time.Second}
    return NewClient(cfg, zerolog.Nop())
}

func TestEnsureProject_FindsByExactName(t *testing.T) {
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method != http.MethodGet || r.URL.Path != "/projects" { t.Fatalf("%s %s", r.Method, r.URL.Path) }
        w.Write([]byte(`[{"id":"p1","name":"Inbox"},{"id":"p2","name":"Jira Tickets"},{"id":"p3","name":"Jira Tickets Archive"}]`))
    }))
    p, err := c.EnsureProject(context.Background(), "Jira Tickets")
    if err != nil { t.Fatalf("EnsureProject: %v", err) }
    if p.ID != "p2" { t.Fatalf("project = %#v", p) }
}

func TestEnsureProject_CreatesWhenAbsent(t *testing.T) {
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        switch r.Method {
        case http.MethodGet:
            w.Write([]byte(`[{"id":"p1","name":"Inbox"}]`))
        case http.MethodPost:
            var body map[string]any
            _ = json.NewDecoder(r.Body).Decode(&body)
            if body["name"] != "Jira Tickets" { t.Fatalf("body = %#v", body) }
            w.Write([]byte(`{"id":"p9","name":"Jira Tickets"}`))
        }
    }))
    p, err := c.EnsureProject(context.Background(), "Jira Tickets")
    if err != nil { t.Fatalf("EnsureProject: %v", err) }
    if p.ID != "p9" { t.Fatalf("project = %#v", p) }
}

func TestEnsureProject_CreateFailureIsWriteError(t *testing.T) {
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodGet { w.Write([]byte(`[]`)); return }
        w.WriteHeader(http.StatusForbidden)
        w.Write([]byte("quota exceeded"))
    }))
    _, err := c.EnsureProject(context.Background(), "Jira Tickets")
    if err == nil { t.Fatal("expected error") }
    we, ok := err.(*domain.RemoteWriteError)
    if !ok { t.Fatalf("expected RemoteWriteError, got %T", err) }
    if we.StatusCode != http.StatusForbidden { t.Fatalf("status = %d", we.StatusCode) }
}

func TestTasks_ReadFailureCarriesStatusAndBody(t *testing.T) {
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusServiceUnavailable)
        w.Write([]byte("maintenance"))
    }))
    _, err := c.Tasks(context.Background(), "p2")
    if err == nil { t.Fatal("expected error") }
    qe, ok := err.(*domain.RemoteQueryError)
    if !ok { t.Fatalf("expected RemoteQueryError, got %T", err) }
    if qe.StatusCode != http.StatusServiceUnavailable { t.Fatalf("status = %d", qe.StatusCode) }
    if qe.Body != "maintenance" { t.Fatalf("body = %q", qe.Body) }
}

func TestTasks_ParsesDue(t *testing.T) {
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path != "/tasks" { t.Fatalf("path = %s", r.URL.Path) }
        if got := r.URL.Query().Get("project_id"); got != "p2" { t.Fatalf("project_id = %q", got) }
        w.Write([]byte(`[
            {"id":"t1","content":"OPS-1: Fix disk","description":"d","priority":1,"project_id":"p2","due":{"date":"2026-09-01"}},
            {"id":"t2","content":"OPS-2: No due","priority":4,"project_id":"p2","due":null}
        ]`))
    }))
    tasks, err := c.Tasks(context.Background(), "p2")
    if err != nil { t.Fatalf("Tasks: %v", err) }
    if len(tasks) != 2 { t.Fatalf("tasks = %#v", tasks) }
    if tasks[0].DueDate != "2026-09-01" { t.Fatalf("due = %q", tasks[0].DueDate) }
    if tasks[1].DueDate != "" { t.Fatalf("due = %q", tasks[1].DueDate) }
}

func TestAddUpdateCloseDelete(t *testing.T) {
    var calls []string
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        calls = append(calls, r.Method+" "+r.URL.Path)
        switch {
        case r.Method == http.MethodPost && r.URL.Path == "/tasks":
            var body map[string]any
            _ = json.NewDecoder(r.Body).Decode(&body)
            if body["due_date"] != "2026-09-01" { t.Fatalf("body = %#v", body) }
            w.Write([]byte(`{"id":"t9","content":"OPS-9: New"}`))
        default:
            w.WriteHeader(http.StatusNoContent)
        }
    }))
    ctx := context.Background()
    created, err := c.AddTask(ctx, domain.AddOp{Content: "OPS-9: New", DueDate: "2026-09-01", Priority: 2, ProjectID: "p2"})
    if err != nil { t.Fatalf("AddTask: %v", err) }
    if created.ID != "t9" { t.Fatalf("created = %#v", created) }
    if err := c.UpdateTask(ctx, domain.UpdateOp{TaskID: "t9", Content: "OPS-9: Newer", Priority: 2}); err != nil {
        t.Fatalf("UpdateTask: %v", err)
    }
    if err := c.CloseTask(ctx, "t9"); err != nil { t.Fatalf("CloseTask: %v", err) }
    if err := c.DeleteTask(ctx, "t9"); err != nil { t.Fatalf("DeleteTask: %v", err) }

    want := []string{"POST /tasks", "POST /tasks/t9", "POST /tasks/t9/close", "DELETE /tasks/t9"}
    if len(calls) != len(want) { t.Fatalf("calls = %#v", calls) }
    for i := range want {
        if calls[i] != want[i] { t.Fatalf("calls = %#v, want %#v", calls, want) }
    }
}

func TestDeleteFailureIsWriteError(t *testing.T) {
    c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusNotFound)
        w.Write([]byte("gone"))
    }))
    err := c.DeleteTask(context.Background(), "t1")
    if err == nil { t.Fatal("expected error") }
    we, ok := err.(*domain.RemoteWriteError)
    if !ok { t.Fatalf("expected RemoteWriteError, got %T", err) }
    if we.StatusCode != http.StatusNotFound { t.Fatalf("status = %d", we.StatusCode) }
}
