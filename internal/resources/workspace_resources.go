package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"projectpulse/internal/instrumentation"
	"projectpulse/internal/server"
)

// RegisterWorkspaceResources registers resources describing the workspace:
// the authenticated user's profile, the project list, and the member list.
func RegisterWorkspaceResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	profileResource := mcp.NewResource(
		"workspace://profile",
		"Current User Profile",
		mcp.WithResourceDescription("Information about the currently authenticated workspace user"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(profileResource, tracedResourceHandler("profile", func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProfile(ctx, request, sc)
	}))

	projectsResource := mcp.NewResource(
		"workspace://projects",
		"Workspace Projects",
		mcp.WithResourceDescription("All projects in the configured workspace"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(projectsResource, tracedResourceHandler("projects", func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProjects(ctx, request, sc)
	}))

	usersResource := mcp.NewResource(
		"workspace://users",
		"Workspace Members",
		mcp.WithResourceDescription("All members of the configured workspace"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(usersResource, tracedResourceHandler("users", func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUsers(ctx, request, sc)
	}))

	return nil
}

// tracedResourceHandler wraps a resource read with a span covering the
// upstream fetch and marshalling.
func tracedResourceHandler(name string, handler func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)) func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		attrs := instrumentation.NewSpanAttributeBuilder().
			WithResource(name, request.Params.URI).
			Build()
		ctx, span := instrumentation.StartSpan(ctx, "resource."+name, attrs...)
		defer span.End()

		contents, err := handler(ctx, request)
		if err != nil {
			instrumentation.SetSpanError(span, err)
			return nil, err
		}
		instrumentation.SetSpanSuccess(span)
		return contents, nil
	}
}

// handleProfile returns the authenticated user's profile.
func handleProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client := sc.AsanaClient()
	if client == nil {
		return nil, fmt.Errorf("no task API client available")
	}

	user, err := client.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	sc.SetCurrentUser(user.Email)

	profileData := map[string]interface{}{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"workspace": sc.Workspace(),
	}

	return marshalResource(request, profileData)
}

// handleProjects returns all projects in the workspace.
func handleProjects(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client := sc.AsanaClient()
	if client == nil {
		return nil, fmt.Errorf("no task API client available")
	}

	projects, err := client.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	items := make([]map[string]interface{}, 0, len(projects))
	for _, p := range projects {
		items = append(items, map[string]interface{}{
			"id":   p.ID,
			"name": p.Name,
		})
	}

	return marshalResource(request, map[string]interface{}{
		"workspace": sc.Workspace(),
		"count":     len(items),
		"projects":  items,
	})
}

// handleUsers returns all members of the workspace.
func handleUsers(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client := sc.AsanaClient()
	if client == nil {
		return nil, fmt.Errorf("no task API client available")
	}

	users, err := client.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	items := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		item := map[string]interface{}{
			"id":   u.ID,
			"name": u.Name,
		}
		if u.Email != "" {
			item["email"] = u.Email
		}
		items = append(items, item)
	}

	return marshalResource(request, map[string]interface{}{
		"workspace": sc.Workspace(),
		"count":     len(items),
		"users":     items,
	})
}

func marshalResource(request mcp.ReadResourceRequest, data map[string]interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
