// Package store implements the project-scoped durable store for sections
// and audio takes. State is process-local and single-writer; the whole
// snapshot persists as one document in a key-value layer and rehydrates on
// launch.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/verseworks/songbook/internal/kv"
)

const snapshotKey = "songbook/state"

// Store holds projects and their section/recording partitions.
//
// All state transitions happen synchronously under one lock before any
// persistence I/O, so no two operations ever interleave their effects.
// Persistence is eager: every mutation saves the snapshot; a failed save is
// reported but in-memory state stays authoritative.
type Store struct {
	kv     kv.Store
	logger *slog.Logger

	mu   sync.Mutex
	snap Snapshot

	now   func() time.Time
	newID func() string
}

// New creates a store backed by the given key-value layer.
func New(kvStore kv.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:     kvStore,
		logger: logger,
		snap:   newSnapshot(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Load rehydrates the snapshot from the key-value layer. A missing snapshot
// yields fresh empty state. The one-time legacy migration runs here, gated
// on the legacy shape, so repeated launches are no-ops.
func (s *Store) Load(ctx context.Context) error {
	data, found, err := s.kv.Get(ctx, snapshotKey)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !found {
		s.snap = newSnapshot()
		return nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	if snap.migrateLegacy() {
		s.logger.Info("migrated legacy flat snapshot into unassigned partition")
	}
	snap.normalize()
	s.snap = snap
	return nil
}

// Save writes the full snapshot under the fixed storage key, stamping the
// current project's last-saved time.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.snap.CurrentProjectID != nil {
		for i := range s.snap.Projects {
			if s.snap.Projects[i].ID == *s.snap.CurrentProjectID {
				saved := s.now()
				s.snap.Projects[i].LastSavedAt = &saved
				break
			}
		}
	}
	data, err := json.Marshal(s.snap)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := s.kv.Set(ctx, snapshotKey, data); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWriteFailed, err)
	}
	return nil
}

// persist saves after a mutation. Failures are logged and returned; they
// never roll back the in-memory change.
func (s *Store) persist(ctx context.Context) error {
	if err := s.Save(ctx); err != nil {
		s.logger.Error("snapshot save failed, in-memory state retained", "error", err)
		return err
	}
	return nil
}

// CreateProject allocates a new project, inserts it at the front of the
// project list, and makes it current. The in-memory creation always
// succeeds; the returned error reports persistence only.
func (s *Store) CreateProject(ctx context.Context, name string) (Project, error) {
	s.mu.Lock()
	proj := s.createProjectLocked(name)
	s.mu.Unlock()

	s.logger.Info("project created", "id", proj.ID, "name", proj.Name)
	return proj, s.persist(ctx)
}

func (s *Store) createProjectLocked(name string) Project {
	if name == "" {
		name = DefaultProjectName
	}
	proj := Project{
		ID:        s.newID(),
		Name:      name,
		CreatedAt: s.now(),
	}
	s.snap.Projects = append([]Project{proj}, s.snap.Projects...)
	s.snap.SectionsByProject[proj.ID] = []Section{}
	s.snap.RecordingsByProject[proj.ID] = []Recording{}
	s.snap.CurrentProjectID = &proj.ID
	return proj
}

// LoadProject sets the current project without validating existence; reads
// against an unknown id resolve to empty partitions.
func (s *Store) LoadProject(ctx context.Context, id string) error {
	s.mu.Lock()
	s.snap.CurrentProjectID = &id
	s.mu.Unlock()
	return s.persist(ctx)
}

// DeleteProject removes the project and both of its partitions as one state
// transition. If it was current, current becomes null.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	kept := s.snap.Projects[:0]
	for _, p := range s.snap.Projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.snap.Projects = kept
	delete(s.snap.SectionsByProject, id)
	delete(s.snap.RecordingsByProject, id)
	if s.snap.CurrentProjectID != nil && *s.snap.CurrentProjectID == id {
		s.snap.CurrentProjectID = nil
	}
	s.mu.Unlock()

	s.logger.Info("project deleted", "id", id)
	return s.persist(ctx)
}

// RenameProject renames a project; unknown ids are a no-op.
func (s *Store) RenameProject(ctx context.Context, id, name string) error {
	s.mu.Lock()
	renamed := false
	for i := range s.snap.Projects {
		if s.snap.Projects[i].ID == id {
			s.snap.Projects[i].Name = name
			renamed = true
			break
		}
	}
	s.mu.Unlock()

	if !renamed {
		return nil
	}
	return s.persist(ctx)
}

// ensureCurrentProjectLocked resolves the partition key every mutating
// operation writes into. When no project exists at all, it creates exactly
// one Untitled project and makes it current; this is the only
// auto-provisioning point. With projects present but none selected, writes
// land in the unassigned partition.
func (s *Store) ensureCurrentProjectLocked() string {
	if s.snap.CurrentProjectID != nil {
		return *s.snap.CurrentProjectID
	}
	if len(s.snap.Projects) == 0 {
		proj := s.createProjectLocked(DefaultProjectName)
		s.logger.Info("auto-provisioned project", "id", proj.ID)
		return proj.ID
	}
	return UnassignedPartition
}

// partitionKeyLocked resolves the partition reads come from. Reads never
// auto-provision.
func (s *Store) partitionKeyLocked() string {
	if s.snap.CurrentProjectID != nil {
		return *s.snap.CurrentProjectID
	}
	return UnassignedPartition
}

// AddSection appends a new section of the given type to the current
// partition and returns its id so the caller can focus it.
func (s *Store) AddSection(ctx context.Context, sectionType string) (string, error) {
	if sectionType == "" {
		sectionType = SectionTypes()[0]
	}

	s.mu.Lock()
	key := s.ensureCurrentProjectLocked()
	sec := Section{
		ID:        s.newID(),
		Type:      sectionType,
		CreatedAt: s.now(),
	}
	s.snap.SectionsByProject[key] = append(s.snap.SectionsByProject[key], sec)
	s.mu.Unlock()

	return sec.ID, s.persist(ctx)
}

// UpdateSection replaces a section's content.
func (s *Store) UpdateSection(ctx context.Context, id, content string) error {
	return s.mutateSection(ctx, id, func(sec *Section) {
		sec.Content = content
	})
}

// UpdateSectionType changes a section's type tag.
func (s *Store) UpdateSectionType(ctx context.Context, id, sectionType string) error {
	return s.mutateSection(ctx, id, func(sec *Section) {
		sec.Type = sectionType
	})
}

// UpdateSectionTitle changes a section's title.
func (s *Store) UpdateSectionTitle(ctx context.Context, id, title string) error {
	return s.mutateSection(ctx, id, func(sec *Section) {
		sec.Title = title
	})
}

// ToggleStarSection flips a section's starred flag.
func (s *Store) ToggleStarSection(ctx context.Context, id string) error {
	return s.mutateSection(ctx, id, func(sec *Section) {
		sec.Starred = !sec.Starred
	})
}

func (s *Store) mutateSection(ctx context.Context, id string, apply func(*Section)) error {
	s.mu.Lock()
	key := s.ensureCurrentProjectLocked()
	sections := s.snap.SectionsByProject[key]
	found := false
	for i := range sections {
		if sections[i].ID == id {
			apply(&sections[i])
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return ErrSectionNotFound
	}
	return s.persist(ctx)
}

// RemoveSection deletes a section from the current partition.
func (s *Store) RemoveSection(ctx context.Context, id string) error {
	s.mu.Lock()
	key := s.ensureCurrentProjectLocked()
	sections := s.snap.SectionsByProject[key]
	found := false
	kept := sections[:0]
	for _, sec := range sections {
		if sec.ID == id {
			found = true
			continue
		}
		kept = append(kept, sec)
	}
	s.snap.SectionsByProject[key] = kept
	s.mu.Unlock()

	if !found {
		return ErrSectionNotFound
	}
	return s.persist(ctx)
}

// AddRecording stores a validated artifact under the current partition.
// Newest-first ordering is a stored invariant: the entry goes in at the
// front, not sorted at read time.
func (s *Store) AddRecording(ctx context.Context, name, uri string, durationSeconds int) (string, error) {
	s.mu.Lock()
	key := s.ensureCurrentProjectLocked()
	if name == "" {
		name = fmt.Sprintf("Take %d", len(s.snap.RecordingsByProject[key])+1)
	}
	rec := Recording{
		ID:              s.newID(),
		Name:            name,
		URI:             uri,
		DurationSeconds: durationSeconds,
		CreatedAt:       s.now(),
	}
	s.snap.RecordingsByProject[key] = append([]Recording{rec}, s.snap.RecordingsByProject[key]...)
	s.mu.Unlock()

	s.logger.Info("recording stored", "id", rec.ID, "uri", uri, "duration_s", durationSeconds)
	return rec.ID, s.persist(ctx)
}

// RenameRecording changes a recording's display name, the one mutation a
// stored recording permits.
func (s *Store) RenameRecording(ctx context.Context, id, name string) error {
	s.mu.Lock()
	key := s.ensureCurrentProjectLocked()
	recordings := s.snap.RecordingsByProject[key]
	found := false
	for i := range recordings {
		if recordings[i].ID == id {
			recordings[i].Name = name
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return ErrRecordingNotFound
	}
	return s.persist(ctx)
}

// RemoveRecording deletes a recording entry. The underlying artifact file
// is the filesystem collaborator's concern, not the store's.
func (s *Store) RemoveRecording(ctx context.Context, id string) error {
	s.mu.Lock()
	key := s.ensureCurrentProjectLocked()
	recordings := s.snap.RecordingsByProject[key]
	found := false
	kept := recordings[:0]
	for _, rec := range recordings {
		if rec.ID == id {
			found = true
			continue
		}
		kept = append(kept, rec)
	}
	s.snap.RecordingsByProject[key] = kept
	s.mu.Unlock()

	if !found {
		return ErrRecordingNotFound
	}
	return s.persist(ctx)
}

// Projects returns all projects, newest first.
func (s *Store) Projects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Project, len(s.snap.Projects))
	copy(out, s.snap.Projects)
	return out
}

// CurrentProjectID returns the current project reference, or nil.
func (s *Store) CurrentProjectID() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.CurrentProjectID == nil {
		return nil
	}
	id := *s.snap.CurrentProjectID
	return &id
}

// Sections returns the sections of the effective partition.
func (s *Store) Sections() []Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	sections := s.snap.SectionsByProject[s.partitionKeyLocked()]
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// StarredSections returns only the starred sections of the effective
// partition.
func (s *Store) StarredSections() []Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Section
	for _, sec := range s.snap.SectionsByProject[s.partitionKeyLocked()] {
		if sec.Starred {
			out = append(out, sec)
		}
	}
	return out
}

// Recordings returns the recordings of the effective partition, newest
// first.
func (s *Store) Recordings() []Recording {
	s.mu.Lock()
	defer s.mu.Unlock()
	recordings := s.snap.RecordingsByProject[s.partitionKeyLocked()]
	out := make([]Recording, len(recordings))
	copy(out, recordings)
	return out
}

// SectionsFor returns the sections of a specific partition. An unknown id
// yields empty, not an error.
func (s *Store) SectionsFor(projectID string) []Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	sections := s.snap.SectionsByProject[projectID]
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// RecordingsFor returns the recordings of a specific partition. An unknown
// id yields empty, not an error.
func (s *Store) RecordingsFor(projectID string) []Recording {
	s.mu.Lock()
	defer s.mu.Unlock()
	recordings := s.snap.RecordingsByProject[projectID]
	out := make([]Recording, len(recordings))
	copy(out, recordings)
	return out
}
