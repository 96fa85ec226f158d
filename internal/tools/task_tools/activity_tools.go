package task_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"projectpulse/internal/asana"
	"projectpulse/internal/instrumentation"
	"projectpulse/internal/server"
	"projectpulse/internal/tools/common"
)

// registerActivityTools registers the tools that query recent task
// activity and individual task records.
func registerActivityTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	completedTodayTool := mcp.NewTool("get_tasks_completed_today",
		mcp.WithDescription("List tasks completed today"),
		mcp.WithString("project",
			mcp.Description("Optional project ID to scope the query"),
		),
	)

	s.AddTool(completedTodayTool, common.InstrumentedToolHandlerWithService("get_tasks_completed_today", instrumentation.ServiceAsana, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			// The completed-since filter is a server-side pre-filter only;
			// the day boundary is re-checked locally.
			dayStart := startOfToday()
			tasks, err := fetchTasks(ctx, sc, args, asana.TaskFilters{CompletedSince: dayStart})
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch tasks: %v", err), "tasks")
			}

			var completed []map[string]interface{}
			for _, t := range tasks {
				if t.Completed && !t.CompletedAt.IsZero() && !t.CompletedAt.Before(dayStart) {
					s := taskSummary(t)
					s["completedAt"] = t.CompletedAt.Format("15:04")
					completed = append(completed, s)
				}
			}

			if len(completed) == 0 {
				return common.Result("No tasks completed today yet.", 0, "tasks", emptyList())
			}
			msg := fmt.Sprintf("%d %s completed today.", len(completed), pluralize(len(completed), "task", "tasks"))
			return common.Result(msg, len(completed), "tasks", completed)
		}))

	updatedTodayTool := mcp.NewTool("get_tasks_updated_today",
		mcp.WithDescription("List tasks modified today, regardless of completion state"),
		mcp.WithString("project",
			mcp.Description("Optional project ID to scope the query"),
		),
	)

	s.AddTool(updatedTodayTool, common.InstrumentedToolHandlerWithService("get_tasks_updated_today", instrumentation.ServiceAsana, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			dayStart := startOfToday()
			tasks, err := fetchTasks(ctx, sc, args, asana.TaskFilters{ModifiedSince: dayStart})
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch tasks: %v", err), "tasks")
			}

			var updated []map[string]interface{}
			for _, t := range tasks {
				if !t.ModifiedAt.IsZero() && !t.ModifiedAt.Before(dayStart) {
					s := taskSummary(t)
					s["modifiedAt"] = t.ModifiedAt.Format("15:04")
					updated = append(updated, s)
				}
			}

			if len(updated) == 0 {
				return common.Result("No tasks updated today.", 0, "tasks", emptyList())
			}
			msg := fmt.Sprintf("%d %s updated today.", len(updated), pluralize(len(updated), "task", "tasks"))
			return common.Result(msg, len(updated), "tasks", updated)
		}))

	taskDetailsTool := mcp.NewTool("get_task_details",
		mcp.WithDescription("Get the full details of a single task"),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to retrieve"),
		),
	)

	s.AddTool(taskDetailsTool, common.InstrumentedToolHandlerWithService("get_task_details", instrumentation.ServiceAsana, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			taskID, ok := args["taskId"].(string)
			if !ok || taskID == "" {
				return mcp.NewToolResultError("taskId is required"), nil
			}

			task, err := sc.AsanaClient().GetTask(ctx, taskID)
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch task: %v", err), "tasks")
			}

			detail := taskSummary(*task)
			if task.Notes != "" {
				detail["notes"] = task.Notes
			}
			if !task.CreatedAt.IsZero() {
				detail["createdAt"] = task.CreatedAt.Format(dateLayout)
			}
			if !task.ModifiedAt.IsZero() {
				detail["modifiedAt"] = task.ModifiedAt.Format(dateLayout)
			}
			if task.Completed && !task.CompletedAt.IsZero() {
				detail["completedAt"] = task.CompletedAt.Format(dateLayout)
			}

			msg := fmt.Sprintf("Details for task %q.", task.Name)
			return common.Result(msg, 1, "tasks", []map[string]interface{}{detail})
		}))

	searchTool := mcp.NewTool("search_tasks_by_name",
		mcp.WithDescription("Search tasks by a case-insensitive substring of their name"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Substring to match against task names"),
		),
		mcp.WithString("project",
			mcp.Description("Optional project ID to scope the search"),
		),
	)

	s.AddTool(searchTool, common.InstrumentedToolHandlerWithService("search_tasks_by_name", instrumentation.ServiceAsana, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			query, ok := args["query"].(string)
			if !ok || query == "" {
				return mcp.NewToolResultError("query is required"), nil
			}

			tasks, err := fetchTasks(ctx, sc, args, asana.TaskFilters{})
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch tasks: %v", err), "tasks")
			}

			needle := strings.ToLower(query)
			var matches []map[string]interface{}
			for _, t := range tasks {
				if strings.Contains(strings.ToLower(t.Name), needle) {
					matches = append(matches, taskSummary(t))
				}
			}

			if len(matches) == 0 {
				msg := fmt.Sprintf("No tasks found matching %q.", query)
				return common.Result(msg, 0, "tasks", emptyList())
			}
			msg := fmt.Sprintf("Found %d %s matching %q.", len(matches), pluralize(len(matches), "task", "tasks"), query)
			return common.Result(msg, len(matches), "tasks", matches)
		}))

	assignedToTool := mcp.NewTool("get_tasks_assigned_to",
		mcp.WithDescription("List tasks assigned to a workspace user, looked up by ID, email, or name"),
		mcp.WithString("assignee",
			mcp.Required(),
			mcp.Description("User ID, email, or name fragment; 'me' selects the authenticated user"),
		),
		mcp.WithBoolean("includeCompleted",
			mcp.Description("Include completed tasks in the result (default: false)"),
		),
	)

	s.AddTool(assignedToTool, common.InstrumentedToolHandlerWithService("get_tasks_assigned_to", instrumentation.ServiceAsana, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			assignee, ok := args["assignee"].(string)
			if !ok || assignee == "" {
				return mcp.NewToolResultError("assignee is required"), nil
			}
			includeCompleted, _ := args["includeCompleted"].(bool)

			user, err := resolveAssignee(ctx, sc, assignee)
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to resolve assignee: %v", err), "tasks")
			}
			if user == nil {
				msg := fmt.Sprintf("No workspace user found matching %q.", assignee)
				return common.Result(msg, 0, "tasks", emptyList())
			}

			tasks, err := sc.AsanaClient().ListTasks(ctx, asana.TaskFilters{Assignee: user.ID})
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch tasks: %v", err), "tasks")
			}

			var assigned []map[string]interface{}
			for _, t := range tasks {
				if !includeCompleted && t.Completed {
					continue
				}
				assigned = append(assigned, taskSummary(t))
			}

			if len(assigned) == 0 {
				msg := fmt.Sprintf("No tasks assigned to %s.", user.Name)
				return common.Result(msg, 0, "tasks", emptyList())
			}
			msg := fmt.Sprintf("Found %d %s assigned to %s.", len(assigned), pluralize(len(assigned), "task", "tasks"), user.Name)
			return common.Result(msg, len(assigned), "tasks", assigned)
		}))

	return nil
}

// resolveAssignee maps an assignee argument to a workspace user. Accepts
// "me", a user ID, an email, or a case-insensitive name fragment. Returns
// nil without error when nothing matches.
func resolveAssignee(ctx context.Context, sc *server.ServerContext, assignee string) (*asana.User, error) {
	if assignee == "me" {
		return sc.AsanaClient().GetMe(ctx)
	}

	users, err := sc.AsanaClient().ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(assignee)
	for _, u := range users {
		if u.ID == assignee || strings.EqualFold(u.Email, assignee) {
			return &u, nil
		}
	}
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), needle) {
			return &u, nil
		}
	}
	return nil, nil
}
