package project_tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"projectpulse/internal/asana"
	"projectpulse/internal/instrumentation"
	"projectpulse/internal/logging"
	"projectpulse/internal/server"
	"projectpulse/internal/tools/common"
)

// RegisterProjectTools registers the project and section query tools.
func RegisterProjectTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listProjectsTool := mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects in the workspace"),
	)

	s.AddTool(listProjectsTool, common.InstrumentedToolHandlerWithService("list_projects", instrumentation.ServiceAsana, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projects, err := sc.AsanaClient().ListProjects(ctx)
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch projects: %v", err), "projects")
			}

			out := make([]map[string]interface{}, 0, len(projects))
			for _, p := range projects {
				out = append(out, map[string]interface{}{"id": p.ID, "name": p.Name})
			}

			if len(out) == 0 {
				return common.Result("No projects in the workspace.", 0, "projects", out)
			}
			msg := fmt.Sprintf("Found %d %s.", len(out), pluralize(len(out), "project", "projects"))
			return common.Result(msg, len(out), "projects", out)
		}))

	findProjectTool := mcp.NewTool("find_project_by_name",
		mcp.WithDescription("Find a project by its exact name, case-insensitive"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The project name to look up"),
		),
	)

	s.AddTool(findProjectTool, common.InstrumentedToolHandlerWithService("find_project_by_name", instrumentation.ServiceAsana, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			name, ok := args["name"].(string)
			if !ok || name == "" {
				return mcp.NewToolResultError("name is required"), nil
			}

			project, err := sc.AsanaClient().FindProjectByName(ctx, name)
			if errors.Is(err, asana.ErrProjectNotFound) {
				// a lookup miss is a result, not an error
				msg := fmt.Sprintf("No project found matching %q.", name)
				return common.Result(msg, 0, "projects", []map[string]interface{}{})
			}
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch projects: %v", err), "projects")
			}

			msg := fmt.Sprintf("Found project %q.", project.Name)
			return common.Result(msg, 1, "projects", []map[string]interface{}{
				{"id": project.ID, "name": project.Name},
			})
		}))

	projectStatusTool := mcp.NewTool("get_project_status",
		mcp.WithDescription("Summarize a project's completion state, broken down by section"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The project name, matched case-insensitively"),
		),
	)

	s.AddTool(projectStatusTool, common.InstrumentedToolHandlerWithService("get_project_status", instrumentation.ServiceAsana, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			name, ok := args["name"].(string)
			if !ok || name == "" {
				return mcp.NewToolResultError("name is required"), nil
			}

			project, err := sc.AsanaClient().FindProjectByName(ctx, name)
			if errors.Is(err, asana.ErrProjectNotFound) {
				msg := fmt.Sprintf("No project found matching %q.", name)
				return common.Result(msg, 0, "sections", []map[string]interface{}{})
			}
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch projects: %v", err), "sections")
			}

			sections, err := sc.AsanaClient().ListSections(ctx, project.ID)
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch sections: %v", err), "sections")
			}

			var (
				out            []map[string]interface{}
				totalTasks     int
				completedTasks int
			)
			for _, sec := range sections {
				tasks, err := sc.AsanaClient().ListSectionTasks(ctx, sec.ID)
				if err != nil {
					slog.Warn("skipping section in project status",
						logging.Operation("get_project_status"),
						slog.String("section_id", sec.ID),
						logging.Err(err))
					continue
				}

				completed := 0
				for _, t := range tasks {
					if t.Completed {
						completed++
					}
				}
				totalTasks += len(tasks)
				completedTasks += completed

				out = append(out, map[string]interface{}{
					"id":              sec.ID,
					"name":            sec.Name,
					"totalTasks":      len(tasks),
					"completedTasks":  completed,
					"incompleteTasks": len(tasks) - completed,
					"completionRate":  completionRate(completed, len(tasks)),
				})
			}

			// most work remaining first
			sort.SliceStable(out, func(i, j int) bool {
				return out[i]["incompleteTasks"].(int) > out[j]["incompleteTasks"].(int)
			})
			if out == nil {
				out = []map[string]interface{}{}
			}

			msg := fmt.Sprintf("Project %q: %d of %d tasks complete (%d%%).",
				project.Name, completedTasks, totalTasks, completionRate(completedTasks, totalTasks))
			return common.ResultWith(msg, len(out), map[string]interface{}{
				"projectId":      project.ID,
				"projectName":    project.Name,
				"totalTasks":     totalTasks,
				"completedTasks": completedTasks,
				"completionRate": completionRate(completedTasks, totalTasks),
				"sections":       out,
			})
		}))

	sectionTasksTool := mcp.NewTool("get_section_tasks",
		mcp.WithDescription("List the tasks within a project section"),
		mcp.WithString("sectionId",
			mcp.Required(),
			mcp.Description("The ID of the section to list"),
		),
	)

	s.AddTool(sectionTasksTool, common.InstrumentedToolHandlerWithService("get_section_tasks", instrumentation.ServiceAsana, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			sectionID, ok := args["sectionId"].(string)
			if !ok || sectionID == "" {
				return mcp.NewToolResultError("sectionId is required"), nil
			}

			tasks, err := sc.AsanaClient().ListSectionTasks(ctx, sectionID)
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch section tasks: %v", err), "tasks")
			}

			out := make([]map[string]interface{}, 0, len(tasks))
			for _, t := range tasks {
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
				out = append(out, s)
			}

			if len(out) == 0 {
				return common.Result("The section has no tasks.", 0, "tasks", out)
			}
			msg := fmt.Sprintf("Found %d %s in the section.", len(out), pluralize(len(out), "task", "tasks"))
			return common.Result(msg, len(out), "tasks", out)
		}))

	return nil
}

// completionRate returns round(completed/total*100), zero when total is
// zero so empty sections never divide by zero.
func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
