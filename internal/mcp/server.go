// Package mcp exposes the songbook store and recording controller as MCP
// tools so assistant clients can read and edit song material.
package mcp

import (
	"context"
	"log/slog"

	"github.com/verseworks/songbook/internal/audio"
	"github.com/verseworks/songbook/internal/recording"
	"github.com/verseworks/songbook/internal/store"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// StoreService defines store operations needed by MCP.
type StoreService interface {
	CreateProject(ctx context.Context, name string) (store.Project, error)
	LoadProject(ctx context.Context, id string) error
	DeleteProject(ctx context.Context, id string) error
	RenameProject(ctx context.Context, id, name string) error
	AddSection(ctx context.Context, sectionType string) (string, error)
	UpdateSection(ctx context.Context, id, content string) error
	UpdateSectionType(ctx context.Context, id, sectionType string) error
	UpdateSectionTitle(ctx context.Context, id, title string) error
	ToggleStarSection(ctx context.Context, id string) error
	RemoveSection(ctx context.Context, id string) error
	AddRecording(ctx context.Context, name, uri string, durationSeconds int) (string, error)
	RenameRecording(ctx context.Context, id, name string) error
	RemoveRecording(ctx context.Context, id string) error
	Projects() []store.Project
	CurrentProjectID() *string
	Sections() []store.Section
	StarredSections() []store.Section
	Recordings() []store.Recording
}

// RecorderService defines controller operations needed by MCP.
type RecorderService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (recording.Artifact, error)
	Reset() error
	State() recording.State
	Elapsed() int
}

// Services contains the collaborators the tool surface dispatches to.
type Services struct {
	Store    StoreService
	Recorder RecorderService
	// Validate checks a finalized artifact before it may be stored.
	Validate func(uri string) audio.Result
}

// Config contains server configuration.
type Config struct {
	Services Services
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools, resources,
// and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "songbook",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services))

	return server
}
