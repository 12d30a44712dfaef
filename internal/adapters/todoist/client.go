/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package todoist

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strings"

    "github.com/elon-code/jiradc-todoist-sync/internal/config"
    "github.com/elon-code/jiradc-todoist-sync/internal/domain"
    "github.com/rs/zerolog"
)

// Client talks to the Todoist REST v2 API. The base URL is configurable so
// tests can point it at a local server.
type Client struct {
    baseURL string
    token   string
    http    *http.Client
    log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL: strings.TrimRight(cfg.TodoistBaseURL, "/"),
        token:   cfg.TodoistToken,
        http:    &http.Client{Timeout: cfg.HTTPTimeout},
        log:     log,
    }
}

// apiError keeps the HTTP status structured until the caller classifies the
// failure as a read or a write.
type apiError struct {
    status int
    body   string
}

func (e *apiError) Error() string { return fmt.Sprintf("todoist api status=%d body=%s", e.status, e.body) }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
    var r io.Reader
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return err }
        r = bytes.NewReader(b)
    }
    req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
    if err != nil { return err }
    req.Header.Set("Authorization", "Bearer "+c.token)
    if body != nil { req.Header.Set("Content-Type", "application/json") }
    resp, err := c.http.Do(req)
    if err != nil { return err }
    defer resp.Body.Close()
    if resp.StatusCode >= 300 {
        b, _ := io.ReadAll(resp.Body)
        return &apiError{status: resp.StatusCode, body: strings.TrimSpace(string(b))}
    }
    if out != nil { return json.NewDecoder(resp.Body).Decode(out) }
    return nil
}

func queryError(endpoint string, err error) error {
    var ae *apiError
    if errors.As(err, &ae) {
        return &domain.RemoteQueryError{Endpoint: endpoint, StatusCode: ae.status, Body: ae.body}
    }
    return &domain.RemoteQueryError{Endpoint: endpoint, Body: err.Error()}
}

func writeError(op string, err error) error {
    we := &domain.RemoteWriteError{Op: op, Err: err}
    var ae *apiError
    if errors.As(err, &ae) { we.StatusCode = ae.status }
    return we
}

type project struct {
    ID   string `json:"id"`
    Name string `json:"name"`
}

type task struct {
    ID          string `json:"id"`
    Content     string `json:"content"`
    Description string `json:"description"`
    Priority    int    `json:"priority"`
    ProjectID   string `json:"project_id"`
    Due         *struct {
        Date string `json:"date"`
    } `json:"due"`
}

func (t task) toDomain() domain.Task {
    out := domain.Task{ID: t.ID, Content: t.Content, Description: t.Description, Priority: t.Priority, ProjectID: t.ProjectID}
    if t.Due != nil { out.DueDate = t.Due.Date }
    return out
}

// EnsureProject finds the project by exact name, creating it on first run.
func (c *Client) EnsureProject(ctx context.Context, name string) (domain.Project, error) {
    var projects []project
    if err := c.do(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
        return domain.Project{}, queryError("todoist projects", err)
    }
    for _, p := range projects {
        if p.Name == name {
            c.log.Info().Str("project", name).Str("id", p.ID).Msg("todoist: using existing project")
            return domain.Project{ID: p.ID, Name: p.Name}, nil
        }
    }
    var created project
    if err := c.do(ctx, http.MethodPost, "/projects", map[string]any{"name": name}, &created); err != nil {
        return domain.Project{}, writeError("add project", err)
    }
    c.log.Info().Str("project", name).Str("id", created.ID).Msg("todoist: created project")
    return domain.Project{ID: created.ID, Name: created.Name}, nil
}

// Tasks lists the active tasks inside one project.
func (c *Client) Tasks(ctx context.Context, projectID string) ([]domain.Task, error) {
    var tasks []task
    if err := c.do(ctx, http.MethodGet, "/tasks?project_id="+projectID, nil, &tasks); err != nil {
        return nil, queryError("todoist tasks", err)
    }
    out := make([]domain.Task, 0, len(tasks))
    for _, t := range tasks { out = append(out, t.toDomain()) }
    return out, nil
}

func (c *Client) AddTask(ctx context.Context, op domain.AddOp) (domain.Task, error) {
    body := map[string]any{
        "content":     op.Content,
        "description": op.Description,
        "priority":    op.Priority,
        "project_id":  op.ProjectID,
    }
    if op.DueDate != "" { body["due_date"] = op.DueDate }
    var created task
    if err := c.do(ctx, http.MethodPost, "/tasks", body, &created); err != nil {
        return domain.Task{}, writeError("add task", err)
    }
    return created.toDomain(), nil
}

func (c *Client) UpdateTask(ctx context.Context, op domain.UpdateOp) error {
    body := map[string]any{
        "content":     op.Content,
        "description": op.Description,
        "priority":    op.Priority,
    }
    if op.DueDate != "" { body["due_date"] = op.DueDate }
    if err := c.do(ctx, http.MethodPost, "/tasks/"+op.TaskID, body, nil); err != nil {
        return writeError("update task", err)
    }
    return nil
}

// CloseTask marks a task done without deleting it.
func (c *Client) CloseTask(ctx context.Context, taskID string) error {
    if err := c.do(ctx, http.MethodPost, "/tasks/"+taskID+"/close", nil, nil); err != nil {
        return writeError("close task", err)
    }
    return nil
}

// DeleteTask removes a task permanently.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
    if err := c.do(ctx, http.MethodDelete, "/tasks/"+taskID, nil, nil); err != nil {
        return writeError("delete task", err)
    }
    return nil
}
