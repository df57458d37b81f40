package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools wires every tool to its handler method. Input schemas are
// derived from the params structs.
func registerTools(server *sdkmcp.Server, h *Handler) {
	// Projects
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create a new song project and make it current",
	}, tool(h.CreateProject))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List all projects, newest first, with the current project id",
	}, tool(h.ListProjects))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "load_project",
		Description: "Switch the current project",
	}, tool(h.LoadProject))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "rename_project",
		Description: "Rename a project; unknown ids are a no-op",
	}, tool(h.RenameProject))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_project",
		Description: "Delete a project together with its sections and recordings",
	}, tool(h.DeleteProject))

	// Sections
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_section",
		Description: "Add a song section (verse, chorus, bridge, ...) to the current project, creating an Untitled project if none exists",
	}, tool(h.AddSection))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_section",
		Description: "Replace a section's lyric content",
	}, tool(h.UpdateSection))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_section_type",
		Description: "Change a section's type tag",
	}, tool(h.SetSectionType))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_section_title",
		Description: "Change a section's title",
	}, tool(h.SetSectionTitle))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_star_section",
		Description: "Star or unstar a section",
	}, tool(h.ToggleStarSection))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_section",
		Description: "Delete a section from the current project",
	}, tool(h.RemoveSection))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_sections",
		Description: "List the current project's sections",
	}, tool(h.ListSections))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_starred_sections",
		Description: "List only the starred sections of the current project",
	}, tool(h.ListStarredSections))

	// Recordings
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_recording",
		Description: "Validate and store an existing audio artifact under the current project",
	}, tool(h.AddRecording))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "rename_recording",
		Description: "Rename a stored recording",
	}, tool(h.RenameRecording))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_recording",
		Description: "Delete a recording entry (the audio file itself is untouched)",
	}, tool(h.RemoveRecording))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_recordings",
		Description: "List the current project's recordings, newest first",
	}, tool(h.ListRecordings))

	// Recorder lifecycle
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "start_recording",
		Description: "Start capturing from the microphone",
	}, tool(h.StartRecording))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "stop_recording",
		Description: "Stop the active capture, validate the take, and store it (or discard it)",
	}, tool(h.StopRecording))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "reset_recorder",
		Description: "Discard any partially prepared recorder state",
	}, tool(h.ResetRecorder))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "recorder_status",
		Description: "Report the recorder state and elapsed seconds",
	}, tool(h.RecorderStatus))
}

// tool adapts a handler method to the SDK's typed tool handler shape.
func tool[In, Out any](fn func(ctx context.Context, params In) (Out, error)) sdkmcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, params In) (*sdkmcp.CallToolResult, Out, error) {
		out, err := fn(ctx, params)
		return nil, out, err
	}
}
