package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meikuraledutech/wbs"
	"github.com/meikuraledutech/wbs/schedule"
)

// NewServer creates an MCP server exposing project reads and the scheduler.
func NewServer(store wbs.Store, calc *schedule.Calculator) *server.MCPServer {
	s := server.NewMCPServer("WBS", "0.1.0")

	s.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects."),
	), listProjectsHandler(store))

	s.AddTool(mcp.NewTool("get_project",
		mcp.WithDescription("Get a single project by id."),
		mcp.WithString("project_id", mcp.Description("Project id"), mcp.Required()),
	), getProjectHandler(store))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List the tasks of a project with their scheduled dates."),
		mcp.WithString("project_id", mcp.Description("Project id"), mcp.Required()),
	), listTasksHandler(store))

	s.AddTool(mcp.NewTool("list_dependencies",
		mcp.WithDescription("List the task dependencies of a project. task_id depends on depends_on_id."),
		mcp.WithString("project_id", mcp.Description("Project id"), mcp.Required()),
	), listDependenciesHandler(store))

	s.AddTool(mcp.NewTool("calculate_schedule",
		mcp.WithDescription("Recalculate start and end dates of every task, persist them and return the critical path and total duration in days."),
		mcp.WithString("project_id", mcp.Description("Project id"), mcp.Required()),
	), calculateScheduleHandler(calc))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func projectID(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	id := mcp.ParseString(request, "project_id", "")
	if id == "" {
		return "", mcp.NewToolResultError("project_id is required")
	}
	return id, nil
}

func listProjectsHandler(store wbs.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projects, err := store.ListProjects(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(projects)
	}
}

func getProjectHandler(store wbs.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, bad := projectID(request)
		if bad != nil {
			return bad, nil
		}

		p, err := store.GetProject(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if p == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Project '%s' not found", id)), nil
		}
		return jsonResult(p)
	}
}

func listTasksHandler(store wbs.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, bad := projectID(request)
		if bad != nil {
			return bad, nil
		}

		tasks, err := store.ListTasks(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(tasks)
	}
}

func listDependenciesHandler(store wbs.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, bad := projectID(request)
		if bad != nil {
			return bad, nil
		}

		deps, err := store.ListDependencies(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(deps)
	}
}

func calculateScheduleHandler(calc *schedule.Calculator) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, bad := projectID(request)
		if bad != nil {
			return bad, nil
		}

		result, err := calc.Calculate(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	}
}
