package asana

import (
	"time"

	"github.com/tidwall/gjson"
)

// Task represents a task record from the upstream API.
type Task struct {
	ID          string
	Name        string
	Notes       string
	Completed   bool
	CompletedAt time.Time
	CreatedAt   time.Time
	ModifiedAt  time.Time
	DueOn       string // date-only, "2006-01-02", empty if unset
	DueAt       time.Time
	Assignee    *User
	Memberships []Membership
	Permalink   string
}

// Membership is a (project, section) pair a task belongs to.
// Only the first membership is used when reporting a task's location.
type Membership struct {
	Project Project
	Section Section
}

// ProjectName returns the name of the task's first project membership,
// or "" when the task belongs to no project.
func (t Task) ProjectName() string {
	if len(t.Memberships) == 0 {
		return ""
	}
	return t.Memberships[0].Project.Name
}

// SectionName returns the name of the task's first section membership,
// or "" when the task belongs to no section.
func (t Task) SectionName() string {
	if len(t.Memberships) == 0 {
		return ""
	}
	return t.Memberships[0].Section.Name
}

// User represents a workspace user.
type User struct {
	ID    string
	Name  string
	Email string
}

// Project represents a workspace project.
type Project struct {
	ID   string
	Name string
}

// Section represents a named subdivision of a project.
type Section struct {
	ID      string
	Name    string
	Project Project
}

// Story is an immutable change-history record on a task.
type Story struct {
	ID              string
	CreatedAt       time.Time
	Actor           *User
	ResourceSubtype string
	OldDueOn        string
	OldDueAt        time.Time
	NewDueOn        string
	NewDueAt        time.Time
}

// IsDueDateChange reports whether the story records a due-date change.
// A story qualifies if its subtype marks a due-date change, or if both
// old and new due-date fields are present and differ.
func (s Story) IsDueDateChange() bool {
	if s.ResourceSubtype == "due_date_changed" {
		return true
	}
	oldDue := s.OldDueOn
	if oldDue == "" && !s.OldDueAt.IsZero() {
		oldDue = s.OldDueAt.Format(time.RFC3339)
	}
	newDue := s.NewDueOn
	if newDue == "" && !s.NewDueAt.IsZero() {
		newDue = s.NewDueAt.Format(time.RFC3339)
	}
	return oldDue != "" && newDue != "" && oldDue != newDue
}

// parseTime parses an RFC3339 timestamp, returning the zero time on
// empty or malformed input. The vendor omits or nulls timestamps freely,
// so lenient parsing keeps the boundary total.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// toUser narrows a vendor user payload. Returns nil for a null payload so
// unassigned tasks carry a nil Assignee.
func toUser(r gjson.Result) *User {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	return &User{
		ID:    r.Get("gid").String(),
		Name:  r.Get("name").String(),
		Email: r.Get("email").String(),
	}
}

// toProject narrows a vendor project payload.
func toProject(r gjson.Result) Project {
	return Project{
		ID:   r.Get("gid").String(),
		Name: r.Get("name").String(),
	}
}

// toSection narrows a vendor section payload.
func toSection(r gjson.Result) Section {
	s := Section{
		ID:   r.Get("gid").String(),
		Name: r.Get("name").String(),
	}
	if p := r.Get("project"); p.Exists() && p.Type != gjson.Null {
		s.Project = toProject(p)
	}
	return s
}

// toTask narrows a vendor task payload into a Task record.
func toTask(r gjson.Result) Task {
	t := Task{
		ID:          r.Get("gid").String(),
		Name:        r.Get("name").String(),
		Notes:       r.Get("notes").String(),
		Completed:   r.Get("completed").Bool(),
		CompletedAt: parseTime(r.Get("completed_at").String()),
		CreatedAt:   parseTime(r.Get("created_at").String()),
		ModifiedAt:  parseTime(r.Get("modified_at").String()),
		DueOn:       r.Get("due_on").String(),
		DueAt:       parseTime(r.Get("due_at").String()),
		Permalink:   r.Get("permalink_url").String(),
	}

	t.Assignee = toUser(r.Get("assignee"))

	r.Get("memberships").ForEach(func(_, m gjson.Result) bool {
		t.Memberships = append(t.Memberships, Membership{
			Project: toProject(m.Get("project")),
			Section: toSection(m.Get("section")),
		})
		return true
	})

	return t
}

// toStory narrows a vendor story payload into a Story record.
func toStory(r gjson.Result) Story {
	s := Story{
		ID:              r.Get("gid").String(),
		CreatedAt:       parseTime(r.Get("created_at").String()),
		ResourceSubtype: r.Get("resource_subtype").String(),
		OldDueOn:        r.Get("old_dates.due_on").String(),
		OldDueAt:        parseTime(r.Get("old_dates.due_at").String()),
		NewDueOn:        r.Get("new_dates.due_on").String(),
		NewDueAt:        parseTime(r.Get("new_dates.due_at").String()),
	}
	s.Actor = toUser(r.Get("created_by"))
	return s
}
