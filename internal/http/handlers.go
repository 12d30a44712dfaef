/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "net/http"

    "github.com/elon-code/jiradc-todoist-sync/internal/config"
    "github.com/elon-code/jiradc-todoist-sync/internal/services"
    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"
)

type service interface {
    RunSyncPass(ctx context.Context) error
    GetLastRun(ctx context.Context) (services.LastRun, error)
}

type Handlers struct {
    cfg config.Config
    log zerolog.Logger
    svc service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc any) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc.(service)}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) LastRun(c *gin.Context) {
    lr, err := h.svc.GetLastRun(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, lr)
}

func (h *Handlers) RunNow(c *gin.Context) {
    // Run in background detached from the HTTP request to avoid context cancellation
    go func() { _ = h.svc.RunSyncPass(context.Background()) }()
    c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
