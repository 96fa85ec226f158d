package meeting_tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"projectpulse/internal/instrumentation"
	"projectpulse/internal/logging"
	"projectpulse/internal/meetings"
	"projectpulse/internal/server"
	"projectpulse/internal/tools/common"
)

// timeNow is swapped out in tests.
var timeNow = time.Now

// RegisterMeetingTools registers the calendar store query tools. Callers
// must not register these when no meetings store is configured.
func RegisterMeetingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	nextMeetingTool := mcp.NewTool("get_next_meeting",
		mcp.WithDescription("Get the next upcoming meeting"),
	)

	s.AddTool(nextMeetingTool, common.InstrumentedToolHandlerWithService("get_next_meeting", instrumentation.ServiceMeetings, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			meeting, err := sc.MeetingsStore().Next(ctx, timeNow())
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch next meeting: %v", err), "meetings")
			}
			if meeting == nil {
				return common.Result("No upcoming meetings.", 0, "meetings", emptyList())
			}

			msg := fmt.Sprintf("Next meeting: %q at %s.", meeting.Title, meeting.StartTime.Format("15:04 on Jan 2"))
			return common.Result(msg, 1, "meetings", []map[string]interface{}{meetingSummary(*meeting)})
		}))

	todaysMeetingsTool := mcp.NewTool("get_todays_meetings",
		mcp.WithDescription("List all meetings scheduled for today"),
	)

	s.AddTool(todaysMeetingsTool, common.InstrumentedToolHandlerWithService("get_todays_meetings", instrumentation.ServiceMeetings, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			now := timeNow()
			dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			dayEnd := dayStart.AddDate(0, 0, 1)

			found, err := sc.MeetingsStore().Between(ctx, dayStart, dayEnd)
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch today's meetings: %v", err), "meetings")
			}

			if len(found) == 0 {
				return common.Result("No meetings scheduled for today.", 0, "meetings", emptyList())
			}
			msg := fmt.Sprintf("%d %s scheduled for today.", len(found), pluralize(len(found)))
			return common.Result(msg, len(found), "meetings", meetingSummaries(found))
		}))

	searchMeetingsTool := mcp.NewTool("search_meetings",
		mcp.WithDescription("Search meetings by a substring of their title or description"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Substring to match against meeting titles and descriptions"),
		),
	)

	s.AddTool(searchMeetingsTool, common.InstrumentedToolHandlerWithService("search_meetings", instrumentation.ServiceMeetings, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			query, ok := args["query"].(string)
			if !ok || query == "" {
				return mcp.NewToolResultError("query is required"), nil
			}

			found, err := sc.MeetingsStore().Search(ctx, query)
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to search meetings: %v", err), "meetings")
			}

			if len(found) == 0 {
				msg := fmt.Sprintf("No meetings found matching %q.", query)
				return common.Result(msg, 0, "meetings", emptyList())
			}
			msg := fmt.Sprintf("Found %d %s matching %q.", len(found), pluralize(len(found)), query)
			return common.Result(msg, len(found), "meetings", meetingSummaries(found))
		}))

	byAttendeeTool := mcp.NewTool("get_meetings_by_attendee",
		mcp.WithDescription("List meetings that a given attendee is invited to"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("The attendee's email address"),
		),
	)

	s.AddTool(byAttendeeTool, common.InstrumentedToolHandlerWithService("get_meetings_by_attendee", instrumentation.ServiceMeetings, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			email, ok := args["email"].(string)
			if !ok || email == "" {
				return mcp.NewToolResultError("email is required"), nil
			}
			// attendee emails are PII, log only the hash
			slog.Debug("attendee lookup",
				logging.Tool("get_meetings_by_attendee"),
				logging.UserHash(email))

			found, err := sc.MeetingsStore().ByAttendee(ctx, email)
			if err != nil {
				return common.ErrorResult(fmt.Sprintf("Failed to fetch meetings: %v", err), "meetings")
			}

			if len(found) == 0 {
				msg := fmt.Sprintf("No meetings found with attendee %s.", email)
				return common.Result(msg, 0, "meetings", emptyList())
			}
			msg := fmt.Sprintf("Found %d %s with attendee %s.", len(found), pluralize(len(found)), email)
			return common.Result(msg, len(found), "meetings", meetingSummaries(found))
		}))

	return nil
}

// meetingSummary maps a Meeting record to the envelope output shape.
func meetingSummary(m meetings.Meeting) map[string]interface{} {
	s := map[string]interface{}{
		"id":        m.ID,
		"title":     m.Title,
		"startTime": m.StartTime.Format(time.RFC3339),
		"endTime":   m.EndTime.Format(time.RFC3339),
		"duration":  m.Duration().String(),
	}
	if m.Description != "" {
		s["description"] = m.Description
	}
	if m.Link != "" {
		s["link"] = m.Link
	}
	if len(m.Attendees) > 0 {
		s["attendees"] = m.Attendees
	}
	return s
}

func meetingSummaries(ms []meetings.Meeting) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(ms))
	for _, m := range ms {
		out = append(out, meetingSummary(m))
	}
	return out
}

func emptyList() []map[string]interface{} {
	return []map[string]interface{}{}
}

func pluralize(count int) string {
	if count == 1 {
		return "meeting"
	}
	return "meetings"
}
