package filestore

import "context"

// DocumentState is the serialized form of one open document. Dirty is
// recorded for session display; content is not carried, so a restored
// document always starts from disk.
type DocumentState struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Dirty bool   `json:"dirty"`
}

// Serialize captures the open document list in path order.
func (s *FileStore) Serialize() []DocumentState {
	docs := s.OpenDocuments()
	states := make([]DocumentState, len(docs))
	for i, doc := range docs {
		states[i] = DocumentState{
			ID:    doc.ID,
			Path:  doc.Path,
			Dirty: doc.IsDirty(),
		}
	}
	return states
}

// Restore reopens the recorded documents, preserving their recorded
// IDs so external references stay valid across sessions. Paths that
// can no longer be read are skipped. It returns the number of
// documents restored.
func (s *FileStore) Restore(ctx context.Context, states []DocumentState) int {
	restored := 0
	for _, state := range states {
		if _, err := s.open(ctx, state.Path, state.ID); err != nil {
			continue
		}
		restored++
	}
	return restored
}
