package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool input schemas. Every identifier is an opaque Zoho ID passed through
// to the API; handlers reject empty values before any upstream call.

type getProjectsInput struct{}

type getProjectInput struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
}

type getSprintsInput struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
}

type getSprintInput struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
	SprintID  string `json:"sprint_id" jsonschema:"Sprint ID"`
}

type getItemsInput struct {
	ProjectID         string `json:"project_id" jsonschema:"Project ID"`
	SprintOrBacklogID string `json:"sprint_id_or_backlog_id" jsonschema:"Sprint ID or Backlog ID"`
}

type getItemInput struct {
	ProjectID         string `json:"project_id" jsonschema:"Project ID"`
	SprintOrBacklogID string `json:"sprint_id_or_backlog_id" jsonschema:"Sprint ID or Backlog ID"`
	ItemID            string `json:"item_id" jsonschema:"Item ID"`
}

type getEpicsInput struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
}

type getEpicInput struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
	EpicID    string `json:"epic_id" jsonschema:"Epic ID"`
}

type getUsersInput struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
}

type getUserInput struct {
	UserID string `json:"user_id" jsonschema:"User ID"`
}

type getReleasesInput struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
}

type getReleaseInput struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
	ReleaseID string `json:"release_id" jsonschema:"Release ID"`
}

// requireID validates a required identifier parameter.
// Returns the trimmed value and a validation result when it is missing.
func requireID(value, field string) (string, *mcp.CallToolResult) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", validationError(field)
	}
	return v, nil
}

func (s *Server) registerGetProjects() error {
	return addTool(s, "get_projects", "Get all projects from Zoho Sprints",
		func(ctx context.Context, _ *mcp.CallToolRequest, _ getProjectsInput) (*mcp.CallToolResult, any, error) {
			raw, err := s.client.Projects(ctx)
			if err != nil {
				return errorResult(s.logger, "get_projects", err), nil, nil
			}
			return keyedResult("projects", raw), nil, nil
		})
}

func (s *Server) registerGetProject() error {
	return addTool(s, "get_project", "Get a specific project by ID",
		func(ctx context.Context, _ *mcp.CallToolRequest, in getProjectInput) (*mcp.CallToolResult, any, error) {
			projectID, res := requireID(in.ProjectID, "project_id")
			if res != nil {
				return res, nil, nil
			}
			raw, err := s.client.Project(ctx, projectID)
			if err != nil {
				return errorResult(s.logger, "get_project", err), nil, nil
			}
			return keyedResult("project", raw), nil, nil
		})
}

func (s *Server) registerGetSprints() error {
	return addTool(s, "get_sprints", "Get all sprints for a project",
		func(ctx context.Context, _ *mcp.CallToolRequest, in getSprintsInput) (*mcp.CallToolResult, any, error) {
			projectID, res := requireID(in.ProjectID, "project_id")
			if res != nil {
				return res, nil, nil
			}
			raw, err := s.client.Sprints(ctx, projectID)
			if err != nil {
				return errorResult(s.logger, "get_sprints", err), nil, nil
			}
			return keyedResult("sprints", raw), nil, nil
		})
}

func (s *Server) registerGetSprint() error {
	return addTool(s, "get_sprint", "Get a specific sprint by ID",
		func(ctx context.Context, _ *mcp.CallToolRequest, in getSprintInput) (*mcp.CallToolResult, any, error) {
			projectID, res := requireID(in.ProjectID, "project_id")
			if res != nil {
				return res, nil, nil
			}
			sprintID, res := requireID(in.SprintID, "sprint_id")
			if res != nil {
				return res, nil, nil
			}
			raw, err := s.client.Sprint(ctx, projectID, sprintID)
			if err != nil {
				return errorResult(s.logger, "get_sprint", err), nil, nil
			}
			return keyedResult("sprint", raw), nil, nil
		})
}

func (s *Server) registerGetItems() error {
	return addTool(s, "get_items", "Get items (stories, tasks, bugs) for a project sprint or backlog",
		func(ctx context.Context, _ *mcp.CallToolRequest, in getItemsInput) (*mcp.CallToolResult, any, error) {
			projectID, res := requireID(in.ProjectID, "project_id")
			if res != nil {
				return res, nil, nil
			}
			sprintID, res := requireID(in.SprintOrBacklogID, "sprint_id_or_backlog_id")
			if res != nil {
				return res, nil, nil
			}
			list, err := s.client.Items(ctx, projectID, sprintID)
			if err != nil {
				return errorResult(s.logger, "get_items", err), nil, nil
			}
			return listResult("items", list), nil, nil
		})
}

func (s *Server) registerGetItem() error {
	return addTool(s, "get_item", "Get a specific item by ID from a project sprint or backlog",
		func(ctx context.Context, _ *mcp.CallToolRequest, in getItemInput) (*mcp.CallToolResult, any, error) {
			projectID, res := requireID(in.ProjectID, "project_id")
			if res != nil {
				return res, nil, nil
			}
			sprintID, res := requireID(in.SprintOrBacklogID, "sprint_id_or_backlog_id")
			if res != nil {
				return res, nil, nil
			}
			itemID, res := requireID(in.ItemID, "item_id")
			if res != nil {
				return res, nil, nil
			}
			raw, err := s.client.Item(ctx, projectID, sprintID, itemID)
			if err != nil {
				return errorResult(s.logger, "get_item", err), nil, nil
			}
			return keyedResult("item", raw), nil, nil
		})
}

func (s *Server) registerGetEpics() error {
	return addTool(s, "get_epics", "Get all epics for a project",
		func(ctx context.Context, _ *mcp.CallToolRequest, in getEpicsInput) (*mcp.CallToolResult, any, error) {
			projectID, res := requireID(in.ProjectID, "project_id")
			if res != nil {
				return res, nil, nil
			}
			list, err := s.client.Epics(ctx, projectID)
			if err != nil {
				return errorResult(s.logger, "get_epics", err), nil, nil
			}
			return listResult("epics", list), nil, nil
		})
}

func (s *Server) registerGetEpic() error {
	return addTool(s, "get_epic", "Get a specific epic by ID",
		func(ctx context.Context, _ *mcp.CallToolRequest, in getEpicInput) (*mcp.CallToolResult, any, error) {
			projectID, res := requireID(in.ProjectID, "project_id")
			if res != nil {
				return res, nil, nil
			}
			epicID, res := requireID(in.EpicID, "epic_id")
			if res != nil {
				return res, nil, nil
			}
			raw, err := s.client.Epic(ctx, projectID, epicID)
			if err != nil {
				return errorResult(s.logger, "get_epic", err), nil, nil
			}
			return keyedResult("epic", raw), nil, nil
		})
}

func (s *Server) registerGetUsers() error {
	return addTool(s, "get_users", "Get all users for a project",
		func(ctx context.Context, _ *mcp.CallToolRequest, in getUsersInput) (*mcp.CallToolResult, any, error) {
			projectID, res := requireID(in.ProjectID, "project_id")
			if res != nil {
				return res, nil, nil
			}
			list, err := s.client.Users(ctx, projectID)
			if err != nil {
				return errorResult(s.logger, "get_users", err), nil, nil
			}
			return listResult("users", list), nil, nil
		})
}

func (s *Server) registerGetUser() error {
	return addTool(s, "get_user", "Get a specific user by ID",
		func(ctx context.Context, _ *mcp.CallToolRequest, in getUserInput) (*mcp.CallToolResult, any, error) {
			userID, res := requireID(in.UserID, "user_id")
			if res != nil {
				return res, nil, nil
			}
			raw, err := s.client.User(ctx, userID)
			if err != nil {
				return errorResult(s.logger, "get_user", err), nil, nil
			}
			return keyedResult("user", raw), nil, nil
		})
}

func (s *Server) registerGetReleases() error {
	return addTool(s, "get_releases", "Get all releases for a project",
		func(ctx context.Context, _ *mcp.CallToolRequest, in getReleasesInput) (*mcp.CallToolResult, any, error) {
			projectID, res := requireID(in.ProjectID, "project_id")
			if res != nil {
				return res, nil, nil
			}
			list, err := s.client.Releases(ctx, projectID)
			if err != nil {
				return errorResult(s.logger, "get_releases", err), nil, nil
			}
			return listResult("releases", list), nil, nil
		})
}

func (s *Server) registerGetRelease() error {
	return addTool(s, "get_release", "Get a specific release by ID",
		func(ctx context.Context, _ *mcp.CallToolRequest, in getReleaseInput) (*mcp.CallToolResult, any, error) {
			projectID, res := requireID(in.ProjectID, "project_id")
			if res != nil {
				return res, nil, nil
			}
			releaseID, res := requireID(in.ReleaseID, "release_id")
			if res != nil {
				return res, nil, nil
			}
			raw, err := s.client.Release(ctx, projectID, releaseID)
			if err != nil {
				return errorResult(s.logger, "get_release", err), nil, nil
			}
			return keyedResult("release", raw), nil, nil
		})
}
