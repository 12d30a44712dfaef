/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/elon-code/jiradc-todoist-sync/internal/adapters/jira"
    "github.com/elon-code/jiradc-todoist-sync/internal/adapters/todoist"
    "github.com/elon-code/jiradc-todoist-sync/internal/config"
    httpx "github.com/elon-code/jiradc-todoist-sync/internal/http"
    "github.com/elon-code/jiradc-todoist-sync/internal/jobs"
    "github.com/elon-code/jiradc-todoist-sync/internal/logger"
    "github.com/elon-code/jiradc-todoist-sync/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)
    if err := cfg.Validate(); err != nil {
        log.Fatal().Err(err).Msg("invalid configuration")
    }
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // Adapters
    jc := jira.NewClient(cfg, log)
    tc := todoist.NewClient(cfg, log)

    // Resolve the assignee from the token when not configured
    assignee := cfg.JiraUsername
    if assignee == "" {
        ctx2, cancel2 := context.WithTimeout(ctx, 20*time.Second); defer cancel2()
        name, err := jc.Myself(ctx2)
        if err != nil { log.Fatal().Err(err).Msg("resolving jira user failed") }
        assignee = name
        log.Info().Str("user", assignee).Msg("resolved jira user from token")
    }

    svc := services.NewService(cfg, log, jc, tc, assignee)

    // First pass right away; the schedule handles the rest
    go func() {
        ctx2, cancel2 := context.WithTimeout(ctx, 4*time.Minute); defer cancel2()
        if err := svc.RunSyncPass(ctx2); err != nil { log.Error().Err(err).Msg("initial sync pass failed") }
    }()

    // Cron
    cr := jobs.NewCron(cfg, log, svc)
    cr.Start()
    defer cr.Stop()

    // HTTP server (Gin)
    router := httpx.NewRouter(cfg, log, svc)

    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
