package domain

// Ticket is a read-only snapshot of a Jira issue, fetched fresh each pass.
type Ticket struct {
    Key         string
    Summary     string
    DueDate     string // ISO date, empty when unset
    Priority    string
    Status      string
    Type        string
    Description string
}

// Task is a Todoist item. Content carries the owning ticket key as a
// "KEY: summary" prefix; that prefix is the only link back to the ticket.
type Task struct {
    ID          string
    Content     string
    DueDate     string
    Priority    int // 1 highest .. 4 lowest
    Description string
    ProjectID   string
}

type Project struct {
    ID   string
    Name string
}

type AddOp struct {
    Content     string
    DueDate     string
    Priority    int
    Description string
    ProjectID   string
}

type UpdateOp struct {
    TaskID      string
    Content     string
    DueDate     string
    Priority    int
    Description string
}

type CompleteOp struct {
    TaskID string
    Key    string
}

type DeleteOp struct {
    TaskID string
    Key    string
}

// Plan holds one pass's operations. The four lists are disjoint per ticket
// key and carry no ordering requirement between or within them.
type Plan struct {
    Adds      []AddOp
    Updates   []UpdateOp
    Completes []CompleteOp
    Deletes   []DeleteOp
}

func (p Plan) Empty() bool {
    return len(p.Adds) == 0 && len(p.Updates) == 0 && len(p.Completes) == 0 && len(p.Deletes) == 0
}
