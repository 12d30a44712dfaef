/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package reconcile

import (
    "regexp"
    "strings"

    "github.com/elon-code/jiradc-todoist-sync/internal/domain"
)

// Tickets in these statuses never get a task; an already-tracked task for
// them is deleted outright.
const (
    statusBlocked   = "Blocked"
    statusCancelled = "Cancelled"
)

// keyRe is the shape of a tracker issue key ("OPS-123"). It gates only the
// complete path, where the ticket has left the open set and membership can
// no longer vouch for the prefix; association itself validates by membership
// alone so unconventional key patterns still track.
var keyRe = regexp.MustCompile(`^[A-Z][A-Z0-9]*-[0-9]+$`)

// ParseKey extracts the candidate ticket key from task content: the trimmed
// substring before the first ":". Returns "" when the content has no colon.
func ParseKey(content string) string {
    i := strings.Index(content, ":")
    if i < 0 { return "" }
    return strings.TrimSpace(content[:i])
}

// Associate builds the explicit ticket-key → task table for one pass. Only
// tasks whose parsed key appears among the current tickets are retained;
// everything else is untracked for add/update/delete purposes.
func Associate(tasks []domain.Task, tickets []domain.Ticket) map[string]domain.Task {
    keys := make(map[string]struct{}, len(tickets))
    for _, t := range tickets { keys[t.Key] = struct{}{} }
    assoc := make(map[string]domain.Task)
    for _, task := range tasks {
        key := ParseKey(task.Content)
        if key == "" { continue }
        if _, ok := keys[key]; ok { assoc[key] = task }
    }
    return assoc
}

// MapPriority maps a tracker priority name onto the to-do scale (1 highest,
// 4 default). Total: unknown and absent names map to 4.
func MapPriority(name string) int {
    switch name {
    case "Blocker", "Critical":
        return 1
    case "Major":
        return 2
    case "Minor":
        return 3
    case "Trivial":
        return 4
    }
    return 4
}

func ComposeContent(t domain.Ticket) string {
    return strings.TrimSpace(t.Key + ": " + t.Summary)
}

func ComposeDescription(baseURL string, t domain.Ticket) string {
    return strings.TrimRight(baseURL, "/") + "/browse/" + t.Key + "\n\n" + t.Description
}

// Reconcile maps one snapshot of tickets onto one snapshot of tasks and
// returns the operations that make the task list mirror the tickets.
//
// A task whose key is absent from the ticket list entirely is completed, on
// the assumption the ticket was resolved. A ticket that was instead deleted
// or reassigned is indistinguishable from a resolved one in this snapshot,
// so its task is completed too; known limitation.
func Reconcile(baseURL string, tickets []domain.Ticket, tasks []domain.Task, project domain.Project) domain.Plan {
    assoc := Associate(tasks, tickets)
    keys := make(map[string]struct{}, len(tickets))
    blocked := make(map[string]struct{})
    for _, t := range tickets {
        keys[t.Key] = struct{}{}
        if t.Status == statusBlocked || t.Status == statusCancelled { blocked[t.Key] = struct{}{} }
    }

    var plan domain.Plan
    for _, t := range tickets {
        if _, skip := blocked[t.Key]; skip { continue }
        content := ComposeContent(t)
        desc := ComposeDescription(baseURL, t)
        prio := MapPriority(t.Priority)
        if existing, ok := assoc[t.Key]; ok {
            plan.Updates = append(plan.Updates, domain.UpdateOp{
                TaskID:      existing.ID,
                Content:     content,
                DueDate:     t.DueDate,
                Priority:    prio,
                Description: desc,
            })
        } else {
            plan.Adds = append(plan.Adds, domain.AddOp{
                Content:     content,
                DueDate:     t.DueDate,
                Priority:    prio,
                Description: desc,
                ProjectID:   project.ID,
            })
        }
    }

    for key, task := range assoc {
        if _, dead := blocked[key]; dead {
            plan.Deletes = append(plan.Deletes, domain.DeleteOp{TaskID: task.ID, Key: key})
        }
    }

    // Key-shaped tasks whose ticket left the open set: mark done. The shape
    // check keeps unrelated tasks that merely contain a colon untouched.
    for _, task := range tasks {
        key := ParseKey(task.Content)
        if key == "" || !keyRe.MatchString(key) { continue }
        if _, open := keys[key]; open { continue }
        plan.Completes = append(plan.Completes, domain.CompleteOp{TaskID: task.ID, Key: key})
    }
    return plan
}
