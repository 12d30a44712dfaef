package jobs

import (
    "context"
    "sync/atomic"
    "time"

    "github.com/elon-code/jiradc-todoist-sync/internal/config"
    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog"
)

type service interface{ RunSyncPass(ctx context.Context) error }

type Cron struct {
    cfg     config.Config
    log     zerolog.Logger
    svc     service
    c       *cron.Cron
    running atomic.Bool
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service) *Cron {
    loc, _ := time.LoadLocation(cfg.TZ)
    c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
    cr := &Cron{cfg: cfg, log: log, svc: svc, c: c}
    _, _ = c.AddFunc(cfg.SyncCron, cr.pass)
    return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

// pass runs one sync cycle. Errors are logged and swallowed so a bad pass
// never stops the schedule; a still-running previous pass is not overlapped.
func (cr *Cron) pass() {
    if !cr.running.CompareAndSwap(false, true) { cr.log.Info().Msg("cron: previous pass still running, skipping"); return }
    defer cr.running.Store(false)
    ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute); defer cancel()
    cr.log.Info().Msg("cron: starting sync pass")
    if err := cr.svc.RunSyncPass(ctx); err != nil { cr.log.Error().Err(err).Msg("cron: sync pass failed") }
}
