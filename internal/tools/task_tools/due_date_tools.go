package task_tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"projectpulse/internal/asana"
	"projectpulse/internal/instrumentation"
	"projectpulse/internal/server"
	"projectpulse/internal/tools/common"
)

// registerDueDateTools registers the due-date centric query tools.
func registerDueDateTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	dueTodayTool := mcp.NewTool("get_tasks_due_today",
		mcp.WithDescription("List incomplete tasks whose due date is today"),
		mcp.WithString("project",
			mcp.Description("Optional project ID to scope the query; defaults to tasks assigned to the authenticated user"),
		),
	)

	s.AddTool(dueTodayTool, common.InstrumentedToolHandlerWithService("get_tasks_due_today", instrumentation.ServiceAsana, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			tasks, err := fetchTasks(ctx, sc, args, asana.TaskFilters{})
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch tasks: %v", err), "tasks")
			}

			today := todayString()
			var due []map[string]interface{}
			for _, t := range tasks {
				if !t.Completed && t.DueOn == today {
					due = append(due, taskSummary(t))
				}
			}
			sortByDueOn(due)

			if len(due) == 0 {
				return common.Result("No tasks due today.", 0, "tasks", emptyList())
			}
			msg := fmt.Sprintf("Found %d %s due today.", len(due), pluralize(len(due), "task", "tasks"))
			return common.Result(msg, len(due), "tasks", due)
		}))

	dueThisWeekTool := mcp.NewTool("get_tasks_due_this_week",
		mcp.WithDescription("List incomplete tasks due in the current week (Monday through Sunday)"),
		mcp.WithString("project",
			mcp.Description("Optional project ID to scope the query"),
		),
	)

	s.AddTool(dueThisWeekTool, common.InstrumentedToolHandlerWithService("get_tasks_due_this_week", instrumentation.ServiceAsana, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			tasks, err := fetchTasks(ctx, sc, args, asana.TaskFilters{})
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch tasks: %v", err), "tasks")
			}

			monday, sunday := weekBounds()
			var due []map[string]interface{}
			for _, t := range tasks {
				if !t.Completed && t.DueOn != "" && t.DueOn >= monday && t.DueOn <= sunday {
					due = append(due, taskSummary(t))
				}
			}
			sortByDueOn(due)

			if len(due) == 0 {
				return common.Result("No tasks due this week.", 0, "tasks", emptyList())
			}
			msg := fmt.Sprintf("Found %d %s due this week (%s to %s).", len(due), pluralize(len(due), "task", "tasks"), monday, sunday)
			return common.Result(msg, len(due), "tasks", due)
		}))

	overdueTool := mcp.NewTool("get_overdue_tasks",
		mcp.WithDescription("List incomplete tasks whose due date has passed, sorted by due date ascending"),
		mcp.WithString("project",
			mcp.Description("Optional project ID to scope the query"),
		),
	)

	s.AddTool(overdueTool, common.InstrumentedToolHandlerWithService("get_overdue_tasks", instrumentation.ServiceAsana, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			tasks, err := fetchTasks(ctx, sc, args, asana.TaskFilters{})
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch tasks: %v", err), "tasks")
			}

			today := todayString()
			now := timeNow()
			var overdue []map[string]interface{}
			for _, t := range tasks {
				if isOverdue(t, today) {
					s := taskSummary(t)
					s["daysOverdue"] = daysOverdue(t.DueOn, now)
					overdue = append(overdue, s)
				}
			}
			sortByDueOn(overdue)

			if len(overdue) == 0 {
				return common.Result("No overdue tasks. Everything is on track.", 0, "tasks", emptyList())
			}
			msg := fmt.Sprintf("Found %d overdue %s.", len(overdue), pluralize(len(overdue), "task", "tasks"))
			return common.Result(msg, len(overdue), "tasks", overdue)
		}))

	daysOverdueTool := mcp.NewTool("get_days_overdue",
		mcp.WithDescription("Report how many whole days a task is past its due date"),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to check"),
		),
	)

	s.AddTool(daysOverdueTool, common.InstrumentedToolHandlerWithService("get_days_overdue", instrumentation.ServiceAsana, instrumentation.OperationGet, sc,
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

			summary := taskSummary(*task)
			today := todayString()
			if !isOverdue(*task, today) {
				summary["daysOverdue"] = 0
				msg := fmt.Sprintf("Task %q is not overdue.", task.Name)
				return common.Result(msg, 1, "tasks", []map[string]interface{}{summary})
			}

			days := daysOverdue(task.DueOn, timeNow())
			summary["daysOverdue"] = days
			msg := fmt.Sprintf("Task %q is %d %s overdue (due %s).", task.Name, days, pluralize(days, "day", "days"), task.DueOn)
			return common.Result(msg, 1, "tasks", []map[string]interface{}{summary})
		}))

	return nil
}

// sortByDueOn orders task summaries ascending by due date string.
func sortByDueOn(tasks []map[string]interface{}) {
	sort.SliceStable(tasks, func(i, j int) bool {
		di, _ := tasks[i]["dueOn"].(string)
		dj, _ := tasks[j]["dueOn"].(string)
		return di < dj
	})
}

// emptyList is the zero-result payload; a non-nil slice keeps the JSON
// shape an array rather than null.
func emptyList() []map[string]interface{} {
	return []map[string]interface{}{}
}
