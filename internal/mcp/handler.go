package mcp

import (
	"context"

	"github.com/verseworks/songbook/internal/audio"
)

// Handler dispatches tool calls to the domain services.
type Handler struct {
	store    StoreService
	recorder RecorderService
	validate func(uri string) audio.Result
}

// NewHandler creates a new tool handler.
func NewHandler(services Services) *Handler {
	return &Handler{
		store:    services.Store,
		recorder: services.Recorder,
		validate: services.Validate,
	}
}

func (h *Handler) CreateProject(ctx context.Context, params CreateProjectParams) (*ProjectResponse, error) {
	proj, err := h.store.CreateProject(ctx, params.Name)
	if err != nil {
		return nil, MapError(err)
	}
	return &ProjectResponse{Project: proj}, nil
}

func (h *Handler) ListProjects(context.Context, ListProjectsParams) (*ProjectListResponse, error) {
	return &ProjectListResponse{
		Projects:         h.store.Projects(),
		CurrentProjectID: h.store.CurrentProjectID(),
	}, nil
}

func (h *Handler) LoadProject(ctx context.Context, params ProjectIDParams) (*OKResponse, error) {
	if err := h.store.LoadProject(ctx, params.ID); err != nil {
		return nil, MapError(err)
	}
	return &OKResponse{OK: true}, nil
}

func (h *Handler) RenameProject(ctx context.Context, params RenameProjectParams) (*OKResponse, error) {
	if err := h.store.RenameProject(ctx, params.ID, params.Name); err != nil {
		return nil, MapError(err)
	}
	return &OKResponse{OK: true}, nil
}

func (h *Handler) DeleteProject(ctx context.Context, params ProjectIDParams) (*OKResponse, error) {
	if err := h.store.DeleteProject(ctx, params.ID); err != nil {
		return nil, MapError(err)
	}
	return &OKResponse{OK: true}, nil
}

func (h *Handler) AddSection(ctx context.Context, params AddSectionParams) (*SectionResponse, error) {
	id, err := h.store.AddSection(ctx, params.Type)
	if err != nil {
		return nil, MapError(err)
	}
	for _, sec := range h.store.Sections() {
		if sec.ID == id {
			return &SectionResponse{Section: sec}, nil
		}
	}
	return nil, &APIError{Code: "SECTION_NOT_FOUND", Message: "created section vanished"}
}

func (h *Handler) UpdateSection(ctx context.Context, params UpdateSectionParams) (*OKResponse, error) {
	if err := h.store.UpdateSection(ctx, params.ID, params.Content); err != nil {
		return nil, MapError(err)
	}
	return &OKResponse{OK: true}, nil
}

func (h *Handler) SetSectionType(ctx context.Context, params SetSectionTypeParams) (*OKResponse, error) {
	if err := h.store.UpdateSectionType(ctx, params.ID, params.Type); err != nil {
		return nil, MapError(err)
	}
	return &OKResponse{OK: true}, nil
}

func (h *Handler) SetSectionTitle(ctx context.Context, params SetSectionTitleParams) (*OKResponse, error) {
	if err := h.store.UpdateSectionTitle(ctx, params.ID, params.Title); err != nil {
		return nil, MapError(err)
	}
	return &OKResponse{OK: true}, nil
}

func (h *Handler) ToggleStarSection(ctx context.Context, params SectionIDParams) (*OKResponse, error) {
	if err := h.store.ToggleStarSection(ctx, params.ID); err != nil {
		return nil, MapError(err)
	}
	return &OKResponse{OK: true}, nil
}

func (h *Handler) RemoveSection(ctx context.Context, params SectionIDParams) (*OKResponse, error) {
	if err := h.store.RemoveSection(ctx, params.ID); err != nil {
		return nil, MapError(err)
	}
	return &OKResponse{OK: true}, nil
}

func (h *Handler) ListSections(context.Context, ListSectionsParams) (*SectionListResponse, error) {
	return &SectionListResponse{Sections: h.store.Sections()}, nil
}

func (h *Handler) ListStarredSections(context.Context, ListSectionsParams) (*SectionListResponse, error) {
	return &SectionListResponse{Sections: h.store.StarredSections()}, nil
}

// AddRecording stores an externally produced artifact after validation.
func (h *Handler) AddRecording(ctx context.Context, params AddRecordingParams) (*RecordingResponse, error) {
	if result := h.validate(params.URI); !result.Valid {
		return nil, validationRejected(result.Reason)
	}

	id, err := h.store.AddRecording(ctx, params.Name, params.URI, params.DurationSeconds)
	if err != nil {
		return nil, MapError(err)
	}
	return h.recordingByID(id)
}

func (h *Handler) RenameRecording(ctx context.Context, params RenameRecordingParams) (*OKResponse, error) {
	if err := h.store.RenameRecording(ctx, params.ID, params.Name); err != nil {
		return nil, MapError(err)
	}
	return &OKResponse{OK: true}, nil
}

func (h *Handler) RemoveRecording(ctx context.Context, params RecordingIDParams) (*OKResponse, error) {
	if err := h.store.RemoveRecording(ctx, params.ID); err != nil {
		return nil, MapError(err)
	}
	return &OKResponse{OK: true}, nil
}

func (h *Handler) ListRecordings(context.Context, ListRecordingsParams) (*RecordingListResponse, error) {
	return &RecordingListResponse{Recordings: h.store.Recordings()}, nil
}

func (h *Handler) StartRecording(ctx context.Context, _ StartRecordingParams) (*RecorderStatusResponse, error) {
	if err := h.recorder.Start(ctx); err != nil {
		return nil, MapError(err)
	}
	return h.recorderStatus(), nil
}

// StopRecording finalizes the active session and, unless discarded, runs
// the artifact through validation and into the store.
func (h *Handler) StopRecording(ctx context.Context, params StopRecordingParams) (*StopRecordingResponse, error) {
	artifact, err := h.recorder.Stop(ctx)
	if err != nil {
		return nil, MapError(err)
	}

	if params.Discard {
		return &StopRecordingResponse{
			Discarded: true,
			URI:       artifact.URI,
			Duration:  artifact.DurationSeconds,
		}, nil
	}

	if result := h.validate(artifact.URI); !result.Valid {
		return nil, validationRejected(result.Reason)
	}

	id, err := h.store.AddRecording(ctx, params.Name, artifact.URI, artifact.DurationSeconds)
	if err != nil {
		return nil, MapError(err)
	}

	stored, err := h.recordingByID(id)
	if err != nil {
		return nil, err
	}
	return &StopRecordingResponse{
		Recording: &stored.Recording,
		URI:       artifact.URI,
		Duration:  artifact.DurationSeconds,
	}, nil
}

func (h *Handler) ResetRecorder(_ context.Context, _ ResetRecorderParams) (*RecorderStatusResponse, error) {
	if err := h.recorder.Reset(); err != nil {
		return nil, MapError(err)
	}
	return h.recorderStatus(), nil
}

func (h *Handler) RecorderStatus(context.Context, RecorderStatusParams) (*RecorderStatusResponse, error) {
	return h.recorderStatus(), nil
}

func (h *Handler) recorderStatus() *RecorderStatusResponse {
	return &RecorderStatusResponse{
		State:          string(h.recorder.State()),
		ElapsedSeconds: h.recorder.Elapsed(),
	}
}

func (h *Handler) recordingByID(id string) (*RecordingResponse, error) {
	for _, rec := range h.store.Recordings() {
		if rec.ID == id {
			return &RecordingResponse{Recording: rec}, nil
		}
	}
	return nil, &APIError{Code: "RECORDING_NOT_FOUND", Message: "stored recording vanished"}
}
