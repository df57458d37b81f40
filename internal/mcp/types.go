package mcp

import "github.com/verseworks/songbook/internal/store"

type CreateProjectParams struct {
	Name string `json:"name"`
}

type ProjectIDParams struct {
	ID string `json:"id"`
}

type RenameProjectParams struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ListProjectsParams struct{}

type AddSectionParams struct {
	Type string `json:"type,omitempty"`
}

type UpdateSectionParams struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type SetSectionTypeParams struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type SetSectionTitleParams struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type SectionIDParams struct {
	ID string `json:"id"`
}

type ListSectionsParams struct{}

type AddRecordingParams struct {
	Name            string `json:"name,omitempty"`
	URI             string `json:"uri"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

type RenameRecordingParams struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RecordingIDParams struct {
	ID string `json:"id"`
}

type ListRecordingsParams struct{}

type StartRecordingParams struct{}

type StopRecordingParams struct {
	// Name is the display name for the stored take; defaulted when empty.
	Name string `json:"name,omitempty"`
	// Discard drops the finalized artifact instead of storing it.
	Discard bool `json:"discard,omitempty"`
}

type ResetRecorderParams struct{}

type RecorderStatusParams struct{}

type ProjectResponse struct {
	Project store.Project `json:"project"`
}

type ProjectListResponse struct {
	Projects         []store.Project `json:"projects"`
	CurrentProjectID *string         `json:"current_project_id"`
}

type SectionResponse struct {
	Section store.Section `json:"section"`
}

type SectionListResponse struct {
	Sections []store.Section `json:"sections"`
}

type RecordingResponse struct {
	Recording store.Recording `json:"recording"`
}

type RecordingListResponse struct {
	Recordings []store.Recording `json:"recordings"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type RecorderStatusResponse struct {
	State          string `json:"state"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
}

type StopRecordingResponse struct {
	Recording *store.Recording `json:"recording,omitempty"`
	Discarded bool             `json:"discarded,omitempty"`
	URI       string           `json:"uri"`
	Duration  int              `json:"duration_seconds"`
}
