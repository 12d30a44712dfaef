/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "encoding/json"
    "log"
    "os"
    "strconv"
    "time"

    "github.com/elon-code/jiradc-todoist-sync/internal/domain"
)

type Config struct {
    AppEnv   string
    TZ       string
    HTTPAddr string

    JiraBaseURL  string
    JiraPAT      string
    JiraUsername string

    TodoistToken   string
    TodoistBaseURL string

    ProjectName string
    SyncCron    string

    MaxConcurrency int
    HTTPTimeout    time.Duration
    Debug          bool
}

func getenv(key, def string) string {
    v := os.Getenv(key)
    if v == "" { return def }
    return v
}

func atoi(key string, def int) int {
    v := os.Getenv(key)
    if v == "" { return def }
    i, err := strconv.Atoi(v)
    if err != nil { return def }
    return i
}

func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil { return def }
    return d
}

// fileConfig mirrors the keys of the optional config.json. Environment
// variables win over the file.
type fileConfig struct {
    ServerURL       string `json:"server_url"`
    APIToken        string `json:"api_token"`
    TodoistAPIToken string `json:"todoist_api_token"`
    JiraUsername    string `json:"jira_username"`
    Debug           *bool  `json:"debug"`
}

func Load() Config {
    cfg := Config{
        AppEnv:   getenv("APP_ENV", "dev"),
        TZ:       getenv("APP_TZ", "UTC"),
        HTTPAddr: getenv("HTTP_ADDR", ":8080"),

        JiraBaseURL:  getenv("JIRA_BASE_URL", ""),
        JiraPAT:      getenv("JIRA_PAT", ""),
        JiraUsername: getenv("JIRA_USERNAME", ""),

        TodoistToken:   getenv("TODOIST_API_TOKEN", ""),
        TodoistBaseURL: getenv("TODOIST_BASE_URL", "https://api.todoist.com/rest/v2"),

        ProjectName: getenv("SYNC_PROJECT_NAME", "Jira Tickets"),
        SyncCron:    getenv("CRON_SPEC", "*/5 * * * *"),

        MaxConcurrency: atoi("MAX_CONCURRENCY", 8),
        HTTPTimeout:    dur("HTTP_TIMEOUT", 15*time.Second),
        Debug:          getenv("DEBUG", "") == "true",
    }

    // Optional config.json overlay for values not set via environment
    path := getenv("CONFIG_FILE", "config.json")
    if data, err := os.ReadFile(path); err == nil {
        var fc fileConfig
        if err := json.Unmarshal(data, &fc); err != nil {
            log.Printf("warning: cannot parse %s: %v", path, err)
        } else {
            if cfg.JiraBaseURL == "" { cfg.JiraBaseURL = fc.ServerURL }
            if cfg.JiraPAT == "" { cfg.JiraPAT = fc.APIToken }
            if cfg.TodoistToken == "" { cfg.TodoistToken = fc.TodoistAPIToken }
            if cfg.JiraUsername == "" { cfg.JiraUsername = fc.JiraUsername }
            // An explicit DEBUG env value, true or false, wins over the file
            if fc.Debug != nil && os.Getenv("DEBUG") == "" { cfg.Debug = *fc.Debug }
        }
    }

    // set global timezone if available
    if loc, err := time.LoadLocation(cfg.TZ); err == nil {
        time.Local = loc
    } else {
        log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
    }
    return cfg
}

// Validate reports the first missing required key using the config.json names.
func (c Config) Validate() error {
    if c.JiraBaseURL == "" { return &domain.ConfigError{Key: "server_url"} }
    if c.JiraPAT == "" { return &domain.ConfigError{Key: "api_token"} }
    if c.TodoistToken == "" { return &domain.ConfigError{Key: "todoist_api_token"} }
    return nil
}
