// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package acfs

import "fmt"

// Stats summarizes an engine's geometry and liveness counters, mirroring
// the superblock fields a caller could otherwise only get at one at a time
// through Exists/GetSize/GetFreeSpace.
type Stats struct {
	ClusterSize   uint16
	TotalClusters uint16
	SysClusters   uint16
	DataEntries   uint16
	FreeClusters  uint16
	Capacity      uint16
}

// Exists reports whether id names a live entry.
func (e *Engine) Exists(id string) (bool, error) {
	if err := e.mounted(); err != nil {
		return false, err
	}
	return e.find(id) >= 0, nil
}

// GetSize returns id's stored data_size.
func (e *Engine) GetSize(id string) (uint32, error) {
	if err := e.mounted(); err != nil {
		return 0, err
	}
	idx := e.find(id)
	if idx < 0 {
		return 0, fmt.Errorf("%w: GetSize(%q)", ErrDataNotFound, id)
	}
	return e.entries[idx].rec.DataSize, nil
}

// Ids returns the ids of every live entry, in directory order (the order
// Write appended them in, possibly shifted by earlier Deletes).
func (e *Engine) Ids() ([]string, error) {
	if err := e.mounted(); err != nil {
		return nil, err
	}
	ids := make([]string, len(e.entries))
	for i := range e.entries {
		ids[i] = e.entries[i].rec.ID()
	}
	return ids, nil
}

// GetFreeSpace returns the number of free data clusters, F.
func (e *Engine) GetFreeSpace() (uint16, error) {
	if err := e.mounted(); err != nil {
		return 0, err
	}
	return e.sb.FreeClusters, nil
}

// GetStats returns a snapshot of the engine's current geometry and
// liveness counters.
func (e *Engine) GetStats() (Stats, error) {
	if err := e.mounted(); err != nil {
		return Stats{}, err
	}
	return Stats{
		ClusterSize:   e.sb.ClusterSize,
		TotalClusters: e.sb.TotalClusters,
		SysClusters:   e.sb.SysClusters,
		DataEntries:   e.sb.DataEntries,
		FreeClusters:  e.sb.FreeClusters,
		Capacity:      e.geom.Capacity,
	}, nil
}
