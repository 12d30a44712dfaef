/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "sync"
    "time"

    "github.com/elon-code/jiradc-todoist-sync/internal/config"
    "github.com/elon-code/jiradc-todoist-sync/internal/domain"
    "github.com/elon-code/jiradc-todoist-sync/internal/reconcile"
    "github.com/rs/zerolog"
)

type ticketSource interface {
    BaseURL() string
    DoneStatuses(ctx context.Context) ([]string, error)
    OpenTickets(ctx context.Context, assignee string, excluded []string) ([]domain.Ticket, error)
}

type taskSink interface {
    EnsureProject(ctx context.Context, name string) (domain.Project, error)
    Tasks(ctx context.Context, projectID string) ([]domain.Task, error)
    AddTask(ctx context.Context, op domain.AddOp) (domain.Task, error)
    UpdateTask(ctx context.Context, op domain.UpdateOp) error
    CloseTask(ctx context.Context, taskID string) error
    DeleteTask(ctx context.Context, taskID string) error
}

// LastRun summarizes the most recent pass for the admin surface. Held in
// memory only; the remote services are the sole durable state.
type LastRun struct {
    StartedAt  time.Time `json:"started_at"`
    FinishedAt time.Time `json:"finished_at"`
    Tickets    int       `json:"tickets"`
    Added      int       `json:"added"`
    Updated    int       `json:"updated"`
    Completed  int       `json:"completed"`
    Deleted    int       `json:"deleted"`
    Failed     int       `json:"failed"`
    Error      string    `json:"error,omitempty"`
}

type Service struct {
    cfg      config.Config
    log      zerolog.Logger
    jira     ticketSource
    todoist  taskSink
    assignee string

    mu      sync.Mutex
    lastRun *LastRun
}

func NewService(cfg config.Config, log zerolog.Logger, jira ticketSource, todoist taskSink, assignee string) *Service {
    return &Service{cfg: cfg, log: log, jira: jira, todoist: todoist, assignee: assignee}
}

// RunSyncPass performs one fetch-compare-apply cycle. Read failures abort the
// pass; write failures are logged per item and the pass carries on.
func (s *Service) RunSyncPass(ctx context.Context) error {
    lr := LastRun{StartedAt: time.Now()}
    defer func() {
        lr.FinishedAt = time.Now()
        s.mu.Lock()
        s.lastRun = &lr
        s.mu.Unlock()
    }()

    err := s.runPass(ctx, &lr)
    if err != nil {
        lr.Error = err.Error()
        return err
    }
    s.log.Info().
        Int("tickets", lr.Tickets).
        Int("added", lr.Added).
        Int("updated", lr.Updated).
        Int("completed", lr.Completed).
        Int("deleted", lr.Deleted).
        Int("failed", lr.Failed).
        Msg("sync pass complete")
    return nil
}

func (s *Service) runPass(ctx context.Context, lr *LastRun) error {
    // Done-category statuses are fetched once and reused for the whole pass.
    done, err := s.jira.DoneStatuses(ctx)
    if err != nil { return err }
    excluded := append([]string{"Blocked", "Cancelled"}, done...)

    tickets, err := s.jira.OpenTickets(ctx, s.assignee, excluded)
    if err != nil { return err }
    lr.Tickets = len(tickets)

    project, err := s.todoist.EnsureProject(ctx, s.cfg.ProjectName)
    if err != nil { return err }
    tasks, err := s.todoist.Tasks(ctx, project.ID)
    if err != nil { return err }

    plan := reconcile.Reconcile(s.jira.BaseURL(), tickets, tasks, project)
    if plan.Empty() {
        s.log.Debug().Msg("nothing to apply")
        return nil
    }

    // Categories apply sequentially; items within one category fan out up to
    // MaxConcurrency at a time.
    lr.Updated = s.applyBatch(ctx, "update", len(plan.Updates), func(i int) error {
        return s.todoist.UpdateTask(ctx, plan.Updates[i])
    }, lr)
    lr.Added = s.applyBatch(ctx, "add", len(plan.Adds), func(i int) error {
        _, err := s.todoist.AddTask(ctx, plan.Adds[i])
        return err
    }, lr)
    lr.Completed = s.applyBatch(ctx, "complete", len(plan.Completes), func(i int) error {
        return s.todoist.CloseTask(ctx, plan.Completes[i].TaskID)
    }, lr)
    lr.Deleted = s.applyBatch(ctx, "delete", len(plan.Deletes), func(i int) error {
        return s.todoist.DeleteTask(ctx, plan.Deletes[i].TaskID)
    }, lr)
    return nil
}

// applyBatch runs n operations through a bounded worker pool and returns how
// many succeeded. A failed item is logged and dropped; the next pass will
// rediscover it. No retries.
func (s *Service) applyBatch(ctx context.Context, kind string, n int, run func(i int) error, lr *LastRun) int {
    if n == 0 { return 0 }
    workerCount := s.cfg.MaxConcurrency
    if workerCount <= 0 { workerCount = 8 }
    if workerCount > n { workerCount = n }
    jobs := make(chan int)
    var wg sync.WaitGroup
    var mu sync.Mutex
    applied := 0
    for w := 0; w < workerCount; w++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            for i := range jobs {
                if err := run(i); err != nil {
                    s.log.Error().Err(err).Str("op", kind).Msg("operation failed")
                    mu.Lock(); lr.Failed++; mu.Unlock()
                    continue
                }
                mu.Lock(); applied++; mu.Unlock()
            }
        }()
    }
    for i := 0; i < n; i++ { jobs <- i }
    close(jobs)
    wg.Wait()
    s.log.Info().Str("op", kind).Int("applied", applied).Int("requested", n).Msg("batch applied")
    return applied
}

func (s *Service) GetLastRun(ctx context.Context) (LastRun, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.lastRun == nil { return LastRun{}, nil }
    return *s.lastRun, nil
}
