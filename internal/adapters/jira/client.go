/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"

    "github.com/elon-code/jiradc-todoist-sync/internal/config"
    "github.com/elon-code/jiradc-todoist-sync/internal/domain"
    "github.com/rs/zerolog"
)

type Client struct {
    baseURL string
    token   string
    http    *http.Client
    log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL: strings.TrimRight(cfg.JiraBaseURL, "/"),
        token:   cfg.JiraPAT,
        http:    &http.Client{Timeout: cfg.HTTPTimeout},
        log:     log,
    }
}

// BaseURL is the tracker root, used to compose browse links.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) apiURL(path string, q url.Values) string {
    if !strings.HasPrefix(path, "/") { path = "/" + path }
    u := c.baseURL + path
    if len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
    if c.baseURL == "" { return errors.New("jira: empty baseURL") }
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
    if err != nil { return err }
    req.Header.Set("Authorization", "Bearer "+c.token)
    req.Header.Set("Content-Type", "application/json")
    resp, err := c.http.Do(req)
    if err != nil { return err }
    defer resp.Body.Close()
    if resp.StatusCode >= 300 {
        b, _ := io.ReadAll(resp.Body)
        return &domain.RemoteQueryError{Endpoint: "jira api", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
    }
    return json.NewDecoder(resp.Body).Decode(out)
}

// Myself resolves the username owning the API token. Used once at startup
// when jira_username is not configured.
func (c *Client) Myself(ctx context.Context) (string, error) {
    var out struct {
        Name string `json:"name"`
    }
    if err := c.getJSON(ctx, c.apiURL("/rest/api/2/myself", nil), &out); err != nil { return "", err }
    if out.Name == "" { return "", errors.New("jira: myself returned no name") }
    c.log.Debug().Str("user", out.Name).Msg("jira: resolved current user")
    return out.Name, nil
}

// DoneStatuses returns the names of all statuses whose category is "done".
// Queried once per pass; callers cache the result for the rest of the pass.
func (c *Client) DoneStatuses(ctx context.Context) ([]string, error) {
    var statuses []struct {
        Name           string `json:"name"`
        StatusCategory struct {
            Key string `json:"key"`
        } `json:"statusCategory"`
    }
    if err := c.getJSON(ctx, c.apiURL("/rest/api/2/status", nil), &statuses); err != nil { return nil, err }
    var done []string
    for _, s := range statuses {
        if s.StatusCategory.Key == "done" { done = append(done, s.Name) }
    }
    c.log.Debug().Strs("statuses", done).Msg("jira: done-category statuses")
    return done, nil
}

type searchIssue struct {
    Key    string `json:"key"`
    Fields struct {
        Summary string `json:"summary"`
        DueDate string `json:"duedate"`
        Priority *struct {
            Name string `json:"name"`
        } `json:"priority"`
        Status *struct {
            Name string `json:"name"`
        } `json:"status"`
        IssueType *struct {
            Name string `json:"name"`
        } `json:"issuetype"`
        Description string `json:"description"`
    } `json:"fields"`
}

// OpenTickets fetches tickets assigned to assignee whose status is outside
// the excluded set (Blocked, Cancelled and every done-category status).
func (c *Client) OpenTickets(ctx context.Context, assignee string, excluded []string) ([]domain.Ticket, error) {
    if assignee == "" { return nil, errors.New("jira: empty assignee") }
    quoted := make([]string, 0, len(excluded))
    for _, s := range excluded { quoted = append(quoted, fmt.Sprintf("%q", s)) }
    jql := fmt.Sprintf("assignee = %q AND status NOT IN (%s)", assignee, strings.Join(quoted, ", "))
    c.log.Debug().Str("jql", jql).Msg("jira: search")
    q := url.Values{}
    q.Set("jql", jql)
    q.Set("fields", "summary,duedate,priority,status,issuetype,description")
    var out struct {
        Issues []searchIssue `json:"issues"`
    }
    if err := c.getJSON(ctx, c.apiURL("/rest/api/2/search", q), &out); err != nil { return nil, err }
    if len(out.Issues) == 0 { c.log.Info().Msg("jira: no tickets found") }
    tickets := make([]domain.Ticket, 0, len(out.Issues))
    for _, is := range out.Issues {
        t := domain.Ticket{
            Key:         is.Key,
            Summary:     is.Fields.Summary,
            DueDate:     is.Fields.DueDate,
            Description: is.Fields.Description,
        }
        if is.Fields.Priority != nil { t.Priority = is.Fields.Priority.Name }
        if is.Fields.Status != nil { t.Status = is.Fields.Status.Name }
        if is.Fields.IssueType != nil { t.Type = is.Fields.IssueType.Name }
        tickets = append(tickets, t)
    }
    return tickets, nil
}
