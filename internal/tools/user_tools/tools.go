package user_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"projectpulse/internal/asana"
	"projectpulse/internal/instrumentation"
	"projectpulse/internal/server"
	"projectpulse/internal/tools/common"
)

// RegisterUserTools registers the workspace user query tools.
func RegisterUserTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getMeTool := mcp.NewTool("get_me",
		mcp.WithDescription("Get the authenticated user's identity"),
	)

	s.AddTool(getMeTool, common.InstrumentedToolHandlerWithService("get_me", instrumentation.ServiceAsana, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			me, err := sc.AsanaClient().GetMe(ctx)
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch current user: %v", err), "users")
			}
			sc.SetCurrentUser(me.Email)

			msg := fmt.Sprintf("Authenticated as %s.", me.Name)
			return common.Result(msg, 1, "users", []map[string]interface{}{userSummary(*me)})
		}))

	listUsersTool := mcp.NewTool("list_users",
		mcp.WithDescription("List all users in the workspace"),
	)

	s.AddTool(listUsersTool, common.InstrumentedToolHandlerWithService("list_users", instrumentation.ServiceAsana, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			users, err := sc.AsanaClient().ListUsers(ctx)
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch users: %v", err), "users")
			}

			out := make([]map[string]interface{}, 0, len(users))
			for _, u := range users {
				out = append(out, userSummary(u))
			}

			if len(out) == 0 {
				return common.Result("No users in the workspace.", 0, "users", out)
			}
			msg := fmt.Sprintf("Found %d %s.", len(out), plural(len(out)))
			return common.Result(msg, len(out), "users", out)
		}))

	searchUsersTool := mcp.NewTool("search_users",
		mcp.WithDescription("Search workspace users by a case-insensitive substring of name or email"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Substring to match against user names and emails"),
		),
	)

	s.AddTool(searchUsersTool, common.InstrumentedToolHandlerWithService("search_users", instrumentation.ServiceAsana, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			query, ok := args["query"].(string)
			if !ok || query == "" {
				return mcp.NewToolResultError("query is required"), nil
			}

			users, err := sc.AsanaClient().SearchUsers(ctx, query)
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to search users: %v", err), "users")
			}

			out := make([]map[string]interface{}, 0, len(users))
			for _, u := range users {
				out = append(out, userSummary(u))
			}

			if len(out) == 0 {
				msg := fmt.Sprintf("No users found matching %q.", query)
				return common.Result(msg, 0, "users", out)
			}
			msg := fmt.Sprintf("Found %d %s matching %q.", len(out), plural(len(out)), query)
			return common.Result(msg, len(out), "users", out)
		}))

	return nil
}

func userSummary(u asana.User) map[string]interface{} {
	s := map[string]interface{}{
		"id":   u.ID,
		"name": u.Name,
	}
	if u.Email != "" {
		s["email"] = u.Email
	}
	return s
}

func plural(count int) string {
	if count == 1 {
		return "user"
	}
	return "users"
}
