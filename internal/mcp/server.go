// Package mcp exposes the task list as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/beemnet-bee/BeeSmartToDo/parse"
	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// NewServer creates a new MCP server backed by store. parser handles
// smart_add.
func NewServer(store *todo.Store, parser parse.Parser) *server.MCPServer {
	s := server.NewMCPServer("BeeSmart", Version)

	s.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task to the front of the list."),
		mcp.WithString("text", mcp.Description("Task text"), mcp.Required()),
		mcp.WithString("category", mcp.Description("Work, Personal, Shopping, Health or Other (defaults to Personal)")),
		mcp.WithString("priority", mcp.Description("High, Medium or Low (defaults to Medium)")),
		mcp.WithString("due_date", mcp.Description("Due date as YYYY-MM-DD")),
		mcp.WithString("reminder", mcp.Description("Reminder as YYYY-MM-DDTHH:MM local time")),
	), withReload(store, addTaskHandler(store)))

	s.AddTool(mcp.NewTool("smart_add",
		mcp.WithDescription("Parse free-form text into tasks, one per line, and add them."),
		mcp.WithString("text", mcp.Description("Free-form text such as 'Buy milk tomorrow high priority'"), mcp.Required()),
	), withReload(store, smartAddHandler(store, parser)))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks. Incomplete tasks come before completed ones."),
		mcp.WithString("category", mcp.Description("Category filter (defaults to All)")),
		mcp.WithString("priority", mcp.Description("Priority filter (defaults to All)")),
		mcp.WithString("sort", mcp.Description("newest, oldest, due_date_asc, due_date_desc, priority_desc or priority_asc")),
	), withReload(store, listTasksHandler(store)))

	s.AddTool(mcp.NewTool("get_task",
		mcp.WithDescription("Get a single task by id or unique id prefix."),
		mcp.WithString("id", mcp.Description("Task id or prefix"), mcp.Required()),
	), withReload(store, getTaskHandler(store)))

	s.AddTool(mcp.NewTool("toggle_task",
		mcp.WithDescription("Flip a task between open and completed."),
		mcp.WithString("id", mcp.Description("Task id or prefix"), mcp.Required()),
	), withReload(store, toggleTaskHandler(store)))

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Update fields of an existing task. Omitted fields are unchanged; an empty due_date or reminder clears it."),
		mcp.WithString("id", mcp.Description("Task id or prefix"), mcp.Required()),
		mcp.WithString("text", mcp.Description("New text")),
		mcp.WithString("category", mcp.Description("New category")),
		mcp.WithString("priority", mcp.Description("New priority")),
		mcp.WithString("due_date", mcp.Description("New due date as YYYY-MM-DD")),
		mcp.WithString("reminder", mcp.Description("New reminder as YYYY-MM-DDTHH:MM")),
	), withReload(store, updateTaskHandler(store)))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task."),
		mcp.WithString("id", mcp.Description("Task id or prefix"), mcp.Required()),
	), withReload(store, deleteTaskHandler(store)))

	return s
}

// withReload re-reads the task list before every call, so tasks changed by
// other bee processes are visible and resolvable.
func withReload(store *todo.Store, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		store.Reload(ctx)
		return handler(ctx, request)
	}
}

// Serve answers MCP requests read from in until in is closed or ctx is
// cancelled. Cancellation is not an error.
func Serve(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	err := server.NewStdioServer(s).Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func jsonResult(value any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func stringArgs(request mcp.CallToolRequest) map[string]string {
	args, _ := request.Params.Arguments.(map[string]any)
	out := make(map[string]string, len(args))
	for key, value := range args {
		if s, ok := value.(string); ok {
			out[key] = s
		}
	}
	return out
}

func parseCategoryArg(value string) (todo.Category, error) {
	category, ok := todo.ParseCategory(value)
	if !ok {
		return "", fmt.Errorf("%w: %q", todo.ErrInvalidCategory, value)
	}
	return category, nil
}

func parsePriorityArg(value string) (todo.Priority, error) {
	priority, ok := todo.ParsePriority(value)
	if !ok {
		return "", fmt.Errorf("%w: %q", todo.ErrInvalidPriority, value)
	}
	return priority, nil
}

func addTaskHandler(store *todo.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := stringArgs(request)
		draft := todo.Draft{
			Text:         args["text"],
			DueDate:      args["due_date"],
			ReminderDate: args["reminder"],
		}
		if value, ok := args["category"]; ok && value != "" {
			category, err := parseCategoryArg(value)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			draft.Category = category
		}
		if value, ok := args["priority"]; ok && value != "" {
			priority, err := parsePriorityArg(value)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			draft.Priority = priority
		}

		task, err := store.Add(draft)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(task)
	}
}

func smartAddHandler(store *todo.Store, parser parse.Parser) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text := mcp.ParseString(request, "text", "")

		drafts, err := parser.Parse(ctx, text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tasks, err := store.AddMany(drafts)
		if err != nil && len(tasks) == 0 {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"tasks": tasks})
	}
}

func listTasksHandler(store *todo.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := stringArgs(request)

		category, ok := todo.ParseCategoryFilter(args["category"])
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("%v: %q", todo.ErrInvalidCategory, args["category"])), nil
		}
		priority, ok := todo.ParsePriorityFilter(args["priority"])
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("%v: %q", todo.ErrInvalidPriority, args["priority"])), nil
		}
		sort, ok := todo.ParseSortOrder(args["sort"])
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid sort order %q", args["sort"])), nil
		}

		tasks := todo.Project(store.Tasks(), todo.View{Category: category, Priority: priority, Sort: sort})
		if tasks == nil {
			tasks = []todo.Task{}
		}
		return jsonResult(map[string]any{"tasks": tasks})
	}
}

func getTaskHandler(store *todo.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := store.Resolve(mcp.ParseString(request, "id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		task, err := store.Get(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(task)
	}
}

func toggleTaskHandler(store *todo.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := store.Resolve(mcp.ParseString(request, "id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		task, err := store.Toggle(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(task)
	}
}

func updateTaskHandler(store *todo.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := stringArgs(request)
		id, err := store.Resolve(args["id"])
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var opts todo.UpdateOptions
		if value, ok := args["text"]; ok {
			opts.Text = &value
		}
		if value, ok := args["category"]; ok {
			category, err := parseCategoryArg(value)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			opts.Category = &category
		}
		if value, ok := args["priority"]; ok {
			priority, err := parsePriorityArg(value)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			opts.Priority = &priority
		}
		if value, ok := args["due_date"]; ok {
			opts.DueDate = &value
		}
		if value, ok := args["reminder"]; ok {
			opts.ReminderDate = &value
		}

		task, err := store.Update(id, opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(task)
	}
}

func deleteTaskHandler(store *todo.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := store.Resolve(mcp.ParseString(request, "id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := store.Delete(id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task %s deleted", id)), nil
	}
}
