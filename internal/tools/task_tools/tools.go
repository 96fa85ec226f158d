package task_tools

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"projectpulse/internal/asana"
	"projectpulse/internal/server"
)

// RegisterTaskTools registers all task query tools with the MCP server.
func RegisterTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := registerDueDateTools(s, sc); err != nil {
		return fmt.Errorf("failed to register due-date tools: %w", err)
	}
	if err := registerActivityTools(s, sc); err != nil {
		return fmt.Errorf("failed to register activity tools: %w", err)
	}
	if err := registerInsightTools(s, sc); err != nil {
		return fmt.Errorf("failed to register insight tools: %w", err)
	}
	return nil
}

// fetchTasks pulls the candidate task set for a tool invocation. With a
// project argument the project scope is used, otherwise the workspace
// scope (tasks assigned to the authenticated user).
func fetchTasks(ctx context.Context, sc *server.ServerContext, args map[string]interface{}, filters asana.TaskFilters) ([]asana.Task, error) {
	if project, ok := args["project"].(string); ok && project != "" {
		filters.Project = project
	}
	return sc.AsanaClient().ListTasks(ctx, filters)
}

// taskSummary maps a Task record to the output shape shared by the list
// tools. Optional fields are omitted when unset so the envelope stays
// compact for the language-model caller.
func taskSummary(t asana.Task) map[string]interface{} {
	s := map[string]interface{}{
		"id":        t.ID,
		"name":      t.Name,
		"completed": t.Completed,
	}
	if t.DueOn != "" {
		s["dueOn"] = t.DueOn
	}
	if t.Assignee != nil {
		s["assignee"] = t.Assignee.Name
	}
	if p := t.ProjectName(); p != "" {
		s["project"] = p
	}
	if sec := t.SectionName(); sec != "" {
		s["section"] = sec
	}
	if t.Permalink != "" {
		s["url"] = t.Permalink
	}
	return s
}

// taskSummaries maps a slice of tasks, returning an empty (non-nil) slice
// for zero tasks so the envelope always carries an array.
func taskSummaries(tasks []asana.Task) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskSummary(t))
	}
	return out
}

// oldDueDate renders the previous due date of a change event, "None" when
// the task had no due date before the change.
func oldDueDate(s asana.Story) string {
	if s.OldDueOn != "" {
		return s.OldDueOn
	}
	if !s.OldDueAt.IsZero() {
		return s.OldDueAt.Format(dateLayout)
	}
	return "None"
}

// newDueDate renders the new due date of a change event, "Removed" when
// the change cleared the due date.
func newDueDate(s asana.Story) string {
	if s.NewDueOn != "" {
		return s.NewDueOn
	}
	if !s.NewDueAt.IsZero() {
		return s.NewDueAt.Format(dateLayout)
	}
	return "Removed"
}

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
