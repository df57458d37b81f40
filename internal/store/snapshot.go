package store

// Snapshot is the full persisted state, serialized as one JSON document
// under a single storage key.
type Snapshot struct {
	Projects            []Project              `json:"projects"`
	CurrentProjectID    *string                `json:"currentProjectId"`
	SectionsByProject   map[string][]Section   `json:"sectionsByProject,omitempty"`
	RecordingsByProject map[string][]Recording `json:"recordingsByProject,omitempty"`

	// Legacy flat layout from before partitioning. Populated only when
	// decoding an old snapshot; cleared by migration and never written back.
	LegacySections   []Section   `json:"sections,omitempty"`
	LegacyRecordings []Recording `json:"recordings,omitempty"`
}

func newSnapshot() Snapshot {
	return Snapshot{
		Projects:            []Project{},
		SectionsByProject:   map[string][]Section{},
		RecordingsByProject: map[string][]Recording{},
	}
}

// migrateLegacy upgrades a flat (unpartitioned) snapshot into the
// partitioned layout by moving the flat lists into the unassigned partition.
// It is keyed on the presence of the legacy shape, purely additive, and
// idempotent: a second run on a migrated snapshot changes nothing.
func (s *Snapshot) migrateLegacy() bool {
	if len(s.LegacySections) == 0 && len(s.LegacyRecordings) == 0 {
		return false
	}

	if s.SectionsByProject == nil {
		s.SectionsByProject = map[string][]Section{}
	}
	if s.RecordingsByProject == nil {
		s.RecordingsByProject = map[string][]Recording{}
	}

	// Never overwrite partitioned data that already exists.
	if len(s.SectionsByProject[UnassignedPartition]) == 0 && len(s.LegacySections) > 0 {
		s.SectionsByProject[UnassignedPartition] = s.LegacySections
	}
	if len(s.RecordingsByProject[UnassignedPartition]) == 0 && len(s.LegacyRecordings) > 0 {
		s.RecordingsByProject[UnassignedPartition] = s.LegacyRecordings
	}
	s.LegacySections = nil
	s.LegacyRecordings = nil

	if s.CurrentProjectID == nil && len(s.Projects) == 0 {
		key := UnassignedPartition
		s.CurrentProjectID = &key
	}

	return true
}

// normalize repairs invariants after a load: non-nil collections and a
// current project reference that points at an existing project (or the
// unassigned sentinel), otherwise treated as null.
func (s *Snapshot) normalize() {
	if s.Projects == nil {
		s.Projects = []Project{}
	}
	if s.SectionsByProject == nil {
		s.SectionsByProject = map[string][]Section{}
	}
	if s.RecordingsByProject == nil {
		s.RecordingsByProject = map[string][]Recording{}
	}

	if s.CurrentProjectID != nil && !s.validCurrent(*s.CurrentProjectID) {
		s.CurrentProjectID = nil
	}
}

func (s *Snapshot) validCurrent(id string) bool {
	if id == UnassignedPartition {
		return true
	}
	for _, p := range s.Projects {
		if p.ID == id {
			return true
		}
	}
	return false
}
