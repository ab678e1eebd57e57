package project

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/inkwelldev/inkwell/internal/project/filestore"
)

// state is the persisted shape of a project session.
type state struct {
	Paths   []string                  `json:"paths"`
	Buffers []filestore.DocumentState `json:"buffers"`
}

// Serialize captures the open roots and buffer states as JSON. The
// result round-trips through Restore preserving root order.
func (p *Project) Serialize() ([]byte, error) {
	store, err := p.openStore()
	if err != nil {
		return nil, err
	}
	return json.Marshal(state{
		Paths:   p.ws.Paths(),
		Buffers: store.Serialize(),
	})
}

// Restore replaces the open roots and reopens buffers from data
// produced by Serialize. Records written before multi-root support
// carry a single "path" string, which is migrated to a one-element
// path list before decoding. Buffers whose files are gone are skipped.
func (p *Project) Restore(ctx context.Context, data []byte) error {
	store, err := p.openStore()
	if err != nil {
		return err
	}
	if !gjson.ValidBytes(data) {
		return ErrInvalidState
	}

	data, err = migrateState(data)
	if err != nil {
		return err
	}

	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	p.SetPaths(s.Paths)
	store.Restore(ctx, s.Buffers)
	return nil
}

// migrateState rewrites a legacy single-path record to the list form.
// Records already carrying a path list pass through untouched.
func migrateState(data []byte) ([]byte, error) {
	if gjson.GetBytes(data, "paths").Exists() {
		return data, nil
	}
	legacy := gjson.GetBytes(data, "path")
	if legacy.Type != gjson.String {
		return data, nil
	}

	out, err := sjson.SetBytes(data, "paths.0", legacy.String())
	if err != nil {
		return nil, fmt.Errorf("migrating legacy state: %w", err)
	}
	out, err = sjson.DeleteBytes(out, "path")
	if err != nil {
		return nil, fmt.Errorf("migrating legacy state: %w", err)
	}
	return out, nil
}
