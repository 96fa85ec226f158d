package task_tools

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"projectpulse/internal/asana"
	"projectpulse/internal/instrumentation"
	"projectpulse/internal/logging"
	"projectpulse/internal/server"
	"projectpulse/internal/tools/common"
)

// defaultPostponedLimit caps the most-postponed result when the caller
// gives no limit.
const defaultPostponedLimit = 10

// defaultChangeWindowDays is the lookback for recent due-date changes.
const defaultChangeWindowDays = 7

// registerInsightTools registers the aggregate and change-history tools.
func registerInsightTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	workloadTool := mcp.NewTool("get_team_workload",
		mcp.WithDescription("Summarize task counts and completion rate per assignee"),
		mcp.WithString("project",
			mcp.Description("Optional project ID to scope the query"),
		),
		mcp.WithBoolean("includeCompleted",
			mcp.Description("Include completed tasks in the tallies (default: false)"),
		),
	)

	s.AddTool(workloadTool, common.InstrumentedToolHandlerWithService("get_team_workload", instrumentation.ServiceAsana, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			includeCompleted, _ := args["includeCompleted"].(bool)

			tasks, err := fetchTasks(ctx, sc, args, asana.TaskFilters{})
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch tasks: %v", err), "workload")
			}

			buckets := buildWorkload(tasks, includeCompleted, todayString())

			if len(buckets) == 0 {
				return common.Result("No tasks found to summarize.", 0, "workload", emptyList())
			}
			msg := fmt.Sprintf("Workload across %d %s.", len(buckets), pluralize(len(buckets), "assignee", "assignees"))
			return common.Result(msg, len(buckets), "workload", buckets)
		}))

	postponedTool := mcp.NewTool("get_most_postponed_tasks",
		mcp.WithDescription("Rank incomplete tasks by how often their due date has been changed"),
		mcp.WithString("project",
			mcp.Description("Optional project ID to scope the query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of tasks to return (default: 10)"),
		),
	)

	s.AddTool(postponedTool, common.InstrumentedToolHandlerWithService("get_most_postponed_tasks", instrumentation.ServiceAsana, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			limit := defaultPostponedLimit
			if v, ok := args["limit"].(float64); ok && v > 0 {
				limit = int(v)
			}

			tasks, err := fetchTasks(ctx, sc, args, asana.TaskFilters{})
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch tasks: %v", err), "tasks")
			}

			// Sequential per-task history fetches; one failing task is
			// logged and skipped, never fatal to the scan.
			var postponed []map[string]interface{}
			for _, t := range tasks {
				if t.Completed || t.DueOn == "" {
					continue
				}
				stories, err := sc.AsanaClient().ListStories(ctx, t.ID)
				if err != nil {
					slog.Warn("skipping task in postponement scan",
						logging.Operation("get_most_postponed_tasks"),
						slog.String("task_id", t.ID),
						logging.Err(err))
					continue
				}
				changes := 0
				for _, st := range stories {
					if st.IsDueDateChange() {
						changes++
					}
				}
				if changes == 0 {
					continue
				}
				s := taskSummary(t)
				s["postponedCount"] = changes
				postponed = append(postponed, s)
			}

			sort.SliceStable(postponed, func(i, j int) bool {
				return postponed[i]["postponedCount"].(int) > postponed[j]["postponedCount"].(int)
			})
			if len(postponed) > limit {
				postponed = postponed[:limit]
			}

			if len(postponed) == 0 {
				return common.Result("No tasks have had their due date changed.", 0, "tasks", emptyList())
			}
			msg := fmt.Sprintf("Top %d most postponed %s.", len(postponed), pluralize(len(postponed), "task", "tasks"))
			return common.Result(msg, len(postponed), "tasks", postponed)
		}))

	recentChangesTool := mcp.NewTool("get_recent_due_date_changes",
		mcp.WithDescription("List due-date changes made within a recent window, newest first"),
		mcp.WithString("project",
			mcp.Description("Optional project ID to scope the query"),
		),
		mcp.WithNumber("days",
			mcp.Description("Lookback window in days (default: 7)"),
		),
	)

	s.AddTool(recentChangesTool, common.InstrumentedToolHandlerWithService("get_recent_due_date_changes", instrumentation.ServiceAsana, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			days := defaultChangeWindowDays
			if v, ok := args["days"].(float64); ok && v > 0 {
				days = int(v)
			}
			cutoff := timeNow().Add(-time.Duration(days) * 24 * time.Hour)

			tasks, err := fetchTasks(ctx, sc, args, asana.TaskFilters{ModifiedSince: cutoff})
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch tasks: %v", err), "changes")
			}

			var changes []map[string]interface{}
			for _, t := range tasks {
				stories, err := sc.AsanaClient().ListStories(ctx, t.ID)
				if err != nil {
					slog.Warn("skipping task in due-date change scan",
						logging.Operation("get_recent_due_date_changes"),
						slog.String("task_id", t.ID),
						logging.Err(err))
					continue
				}
				for _, st := range stories {
					if !st.IsDueDateChange() || st.CreatedAt.Before(cutoff) {
						continue
					}
					change := map[string]interface{}{
						"taskId":     t.ID,
						"taskName":   t.Name,
						"oldDueDate": oldDueDate(st),
						"newDueDate": newDueDate(st),
						"changedAt":  st.CreatedAt.Format(time.RFC3339),
					}
					if st.Actor != nil {
						change["changedBy"] = st.Actor.Name
					}
					changes = append(changes, change)
				}
			}

			sort.SliceStable(changes, func(i, j int) bool {
				return changes[i]["changedAt"].(string) > changes[j]["changedAt"].(string)
			})

			if len(changes) == 0 {
				msg := fmt.Sprintf("No due-date changes in the last %d days.", days)
				return common.Result(msg, 0, "changes", emptyList())
			}
			msg := fmt.Sprintf("%d due-date %s in the last %d days.", len(changes), pluralize(len(changes), "change", "changes"), days)
			return common.Result(msg, len(changes), "changes", changes)
		}))

	taskChangesTool := mcp.NewTool("get_task_due_date_changes",
		mcp.WithDescription("List the full due-date change history of a single task"),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to inspect"),
		),
	)

	s.AddTool(taskChangesTool, common.InstrumentedToolHandlerWithService("get_task_due_date_changes", instrumentation.ServiceAsana, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			taskID, ok := args["taskId"].(string)
			if !ok || taskID == "" {
				return mcp.NewToolResultError("taskId is required"), nil
			}

			task, err := sc.AsanaClient().GetTask(ctx, taskID)
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch task: %v", err), "changes")
			}
			stories, err := sc.AsanaClient().ListStories(ctx, taskID)
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch change history: %v", err), "changes")
			}

			var changes []map[string]interface{}
			for _, st := range stories {
				if !st.IsDueDateChange() {
					continue
				}
				change := map[string]interface{}{
					"oldDueDate": oldDueDate(st),
					"newDueDate": newDueDate(st),
					"changedAt":  st.CreatedAt.Format(time.RFC3339),
				}
				if st.Actor != nil {
					change["changedBy"] = st.Actor.Name
				}
				changes = append(changes, change)
			}

			if len(changes) == 0 {
				msg := fmt.Sprintf("Task %q has never had its due date changed.", task.Name)
				return common.ResultWith(msg, 0, map[string]interface{}{
					"taskName":    task.Name,
					"changeCount": 0,
					"changes":     emptyList(),
				})
			}
			msg := fmt.Sprintf("Task %q has had its due date changed %d %s.", task.Name, len(changes), pluralize(len(changes), "time", "times"))
			return common.ResultWith(msg, len(changes), map[string]interface{}{
				"taskName":    task.Name,
				"changeCount": len(changes),
				"changes":     changes,
			})
		}))

	return nil
}

// buildWorkload groups tasks by assignee and tallies per-bucket counts.
// Tasks with no assignee land in a synthetic "unassigned" bucket. Buckets
// are sorted descending by total task count.
func buildWorkload(tasks []asana.Task, includeCompleted bool, today string) []map[string]interface{} {
	type bucket struct {
		id        string
		name      string
		total     int
		completed int
		overdue   int
		upcoming  int
	}

	buckets := make(map[string]*bucket)
	var order []string

	for _, t := range tasks {
		if !includeCompleted && t.Completed {
			continue
		}

		id, name := "unassigned", "Unassigned"
		if t.Assignee != nil {
			id, name = t.Assignee.ID, t.Assignee.Name
		}

		b, ok := buckets[id]
		if !ok {
			b = &bucket{id: id, name: name}
			buckets[id] = b
			order = append(order, id)
		}

		b.total++
		switch {
		case t.Completed:
			b.completed++
		case t.DueOn != "" && t.DueOn < today:
			b.overdue++
		case t.DueOn != "":
			b.upcoming++
		}
	}

	out := make([]map[string]interface{}, 0, len(order))
	for _, id := range order {
		b := buckets[id]
		rate := 0
		if b.total > 0 {
			rate = int(math.Round(float64(b.completed) / float64(b.total) * 100))
		}
		out = append(out, map[string]interface{}{
			"userId":         b.id,
			"userName":       b.name,
			"totalTasks":     b.total,
			"completedTasks": b.completed,
			"overdueTasks":   b.overdue,
			"upcomingTasks":  b.upcoming,
			"completionRate": rate,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i]["totalTasks"].(int) > out[j]["totalTasks"].(int)
	})
	return out
}
