// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package acfs

import (
	"fmt"

	"github.com/whnan/acfs/internal/layout"
)

// Delete removes id's entry. It frees the entry's clusters, shifts every
// higher-indexed entry down by one slot to keep the directory densely
// packed, and persists the superblock and directory.
func (e *Engine) Delete(id string) error {
	if err := e.mounted(); err != nil {
		return err
	}

	idx := e.find(id)
	if idx < 0 {
		return fmt.Errorf("%w: Delete(%q)", ErrDataNotFound, id)
	}

	e.free.Free(e.entries[idx].clusters)
	e.entries = append(e.entries[:idx], e.entries[idx+1:]...)
	e.sb.DataEntries = uint16(len(e.entries))
	e.sb.FreeClusters = e.free.FreeCount()

	if err := e.poisonOn(e.persistSuperblock()); err != nil {
		return err
	}
	// Re-persist every slot from idx to the old tail: each shifted down by
	// one, plus the vacated tail slot must be zeroed so a later mount does
	// not read stale entry bytes past the new data_entries count.
	for i := idx; i < len(e.entries); i++ {
		if err := e.poisonOn(e.persistEntry(i)); err != nil {
			return err
		}
	}
	if err := e.poisonOn(e.zeroSlot(uint16(len(e.entries)))); err != nil {
		return err
	}
	return nil
}

// zeroSlot overwrites directory slot i's entry record and cluster-list
// slot with zero bytes, matching the vacated-tail-slot requirement of
// spec §4.E's Delete.
func (e *Engine) zeroSlot(i uint16) error {
	if i >= e.geom.Capacity {
		return nil
	}
	recBuf := make([]byte, layout.EntryRecordSize)
	if err := e.writeAt(e.geom.EntryOffset(i), recBuf); err != nil {
		return fmt.Errorf("%w: zeroing entry %d: %v", ErrIO, i, err)
	}
	listBuf := make([]byte, layout.ClusterListSlotSize)
	if err := e.writeAt(e.geom.ClusterListOffset(i), listBuf); err != nil {
		return fmt.Errorf("%w: zeroing cluster list %d: %v", ErrIO, i, err)
	}
	return nil
}
