// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package acfs

import (
	"fmt"

	"github.com/whnan/acfs/internal/layout"
)

// Write stores buf under id, creating a new entry or overwriting an
// existing one. Only buf[:n] is stored; n must be greater than zero and at
// most len(buf).
func (e *Engine) Write(id string, buf []byte, n int) error {
	if err := e.mounted(); err != nil {
		return err
	}
	if id == "" || len(id) >= layout.MaxDataIDLen || buf == nil || n <= 0 || n > len(buf) {
		return fmt.Errorf("%w: Write(%q)", ErrInvalidParam, id)
	}

	k := clustersNeeded(uint32(n), e.geom.ClusterSize)
	if k > layout.MaxClusterList {
		return fmt.Errorf("%w: Write(%q): %d clusters exceeds K_MAX %d", ErrInvalidParam, id, k, layout.MaxClusterList)
	}
	checksum := layout.Checksum(buf[:n])

	idx := e.find(id)
	if idx < 0 {
		if uint16(len(e.entries)) >= e.geom.Capacity {
			return fmt.Errorf("%w: Write(%q)", ErrClusterFull, id)
		}
		clusters, err := e.free.Allocate(e.geom.SysClusters, k)
		if err != nil {
			return fmt.Errorf("%w: Write(%q): %v", ErrNoSpace, id, err)
		}
		// Write the data before the entry goes live in the directory: a
		// failed write here must leave no trace, not a phantom entry that
		// Exists/Read would see but a remount never would.
		if err := e.writeClusters(clusters, buf[:n]); err != nil {
			e.free.Free(clusters)
			return err
		}

		var rec layout.EntryRecord
		if err := rec.SetID(id); err != nil {
			e.free.Free(clusters)
			return fmt.Errorf("%w: %v", ErrInvalidParam, err)
		}
		rec.DataSize = uint32(n)
		rec.ClusterCount = k
		rec.Crc32 = checksum
		rec.IsValid = true

		idx = len(e.entries)
		e.entries = append(e.entries, slot{rec: rec, clusters: clusters})
		e.sb.DataEntries = uint16(len(e.entries))
	} else {
		s := &e.entries[idx]
		if s.rec.ClusterCount != k {
			// Allocate the replacement and write the data into it before
			// freeing the old list: a failed reallocation or a failed
			// write must never leave a live entry with K == 0 (invariant
			// 5), and the old clusters must stay reserved until the new
			// data is safely down, or a later Write could reallocate them
			// while this entry's not-yet-persisted metadata still claims
			// them - a path to an on-medium invariant-3 violation.
			newClusters, err := e.free.Allocate(e.geom.SysClusters, k)
			if err != nil {
				return fmt.Errorf("%w: Write(%q): %v", ErrNoSpace, id, err)
			}
			if err := e.writeClusters(newClusters, buf[:n]); err != nil {
				e.free.Free(newClusters)
				return err
			}
			e.free.Free(s.clusters)
			s.clusters = newClusters
			s.rec.ClusterCount = k
		} else if err := e.writeClusters(s.clusters, buf[:n]); err != nil {
			return err
		}
		s.rec.DataSize = uint32(n)
		s.rec.Crc32 = checksum
	}

	e.sb.FreeClusters = e.free.FreeCount()
	if err := e.poisonOn(e.persistSuperblock()); err != nil {
		return err
	}
	if err := e.poisonOn(e.persistEntry(idx)); err != nil {
		return err
	}
	return nil
}

// clustersNeeded returns ⌈n / clusterSize⌉.
func clustersNeeded(n uint32, clusterSize uint16) uint16 {
	return uint16((n + uint32(clusterSize) - 1) / uint32(clusterSize))
}

// writeClusters writes data across list in order, one whole cluster per
// medium write. A trailing partial cluster is assembled in the engine's
// scratch buffer and padded to a full cluster with zero bytes; readers
// never look at that padding.
func (e *Engine) writeClusters(list []ClusterID, data []byte) error {
	s := int(e.geom.ClusterSize)
	for i, c := range list {
		lo := i * s
		hi := lo + s
		if hi > len(data) {
			copy(e.scratch, data[lo:])
			for j := len(data) - lo; j < s; j++ {
				e.scratch[j] = 0
			}
			if err := e.writeAt(e.clusterAddr(c), e.scratch); err != nil {
				return fmt.Errorf("%w: writing cluster %d: %v", ErrIO, c, err)
			}
			continue
		}
		if err := e.writeAt(e.clusterAddr(c), data[lo:hi]); err != nil {
			return fmt.Errorf("%w: writing cluster %d: %v", ErrIO, c, err)
		}
	}
	return nil
}
