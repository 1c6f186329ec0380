// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package state loads and persists the generation checkpoint.
//
// Exactly one generator owns a checkpoint at a time, so there is no locking.
// Save writes to a temporary file in the same directory and renames it into
// place, so an interrupted save leaves the previous checkpoint intact.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/corpusgen/pkg/types"
)

// ErrCorrupt marks a checkpoint that exists but cannot be parsed. Callers
// treat it as a configuration error and do not retry.
var ErrCorrupt = errors.New("corrupt checkpoint")

// Now is the clock used to stamp fresh states. Tests override it.
var Now = time.Now

// Load reads the checkpoint at path. A missing file yields a fresh State
// with zero counters and StartTime set to Now.
func Load(path string) (*types.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.State{StartTime: Now()}, nil
		}
		return nil, fmt.Errorf("reading checkpoint %s: %w", path, err)
	}

	var st types.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrCorrupt, path, err)
	}
	if st.TotalWordsGenerated < 0 || st.TotalRequests < 0 || st.EstimatedCost < 0 {
		return nil, fmt.Errorf("%w: %s has negative counters", ErrCorrupt, path)
	}
	if st.StartTime.IsZero() {
		st.StartTime = Now()
	}
	return &st, nil
}

// Save writes st to path atomically.
func Save(path string, st *types.State) error {
	data, err := json.MarshalIndent(st, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling checkpoint: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp checkpoint: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting checkpoint mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing checkpoint %s: %w", path, err)
	}
	committed = true
	return nil
}
