// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package acfs

import (
	"fmt"

	"github.com/whnan/acfs/internal/bitmap"
	"github.com/whnan/acfs/internal/layout"
)

// ClusterID is a logical cluster index in [0, N).
type ClusterID = layout.ClusterID

// slot is the in-memory shape of one live directory entry: its fixed
// record plus the cluster list the record's on-medium slot points at.
// The record's pointer field is never the carrier of the list - see
// layout.EntryRecord - so unlike the original C reference this struct
// has no raw pointer into anything.
type slot struct {
	rec      layout.EntryRecord
	clusters []ClusterID
}

// poison records the error that took the engine out of service. It mirrors
// the teacher's heap.phase sentinel-error marker, simplified to a plain
// pointer since ACFS's concurrency model (§5) rules out concurrent access
// and therefore needs no atomic swap.
type poison struct{ error }

// Engine is a single mounted ACFS filesystem. It holds no mutex: per the
// spec's concurrency model, an Engine must not be used from more than one
// goroutine, and the caller is responsible for serializing access.
type Engine struct {
	medium Medium
	config Config
	geom   layout.Geometry
	sb     layout.Superblock

	entries []slot // dense, len == int(sb.DataEntries)
	free    *bitmap.Bitmap
	scratch []byte // geom.ClusterSize bytes

	bad *poison
}

// mounted reports whether the engine is usable, returning the poisoning
// error (if any) wrapped with ErrNotInitialized's sibling taxonomy.
func (e *Engine) mounted() error {
	if e == nil {
		return ErrNotInitialized
	}
	if e.bad != nil {
		return fmt.Errorf("acfs: engine poisoned by prior failure: %w", e.bad.error)
	}
	return nil
}

// poisonOn records err as the reason the engine can no longer be trusted,
// and returns err unchanged. Call it around every metadata-persisting
// medium write (spec §7: "Io during a metadata persist leaves the
// in-memory directory ahead of the medium").
func (e *Engine) poisonOn(err error) error {
	if err != nil {
		e.bad = &poison{err}
	}
	return err
}

// Open mounts medium with the given configuration. If the on-medium
// superblock is missing, corrupt, or was formatted with a different
// cluster size, Open fails with ErrInvalidFilesystem unless
// config.FormatIfInvalid is set, in which case it formats first.
func Open(m Medium, config Config) (*Engine, error) {
	if m == nil || !layout.ValidClusterSize(config.ClusterSize) {
		return nil, fmt.Errorf("%w: medium or cluster_size", ErrInvalidParam)
	}

	buf := make([]byte, layout.SuperblockSize)
	sb, readErr := func() (layout.Superblock, error) {
		if err := m.ReadAt(m.Descriptor().StartAddr, buf); err != nil {
			return layout.Superblock{}, fmt.Errorf("%w: %v", ErrIO, err)
		}
		return layout.Decode(buf)
	}()

	invalid := readErr != nil || sb.ClusterSize != config.ClusterSize
	if invalid {
		if !config.FormatIfInvalid {
			if readErr != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidFilesystem, readErr)
			}
			return nil, fmt.Errorf("%w: configured cluster_size %d != on-medium %d", ErrInvalidFilesystem, config.ClusterSize, sb.ClusterSize)
		}
		return Format(m, config)
	}

	geom := layout.GeometryFromSuperblock(sb)
	eng := &Engine{medium: m, config: config, geom: geom, sb: sb, scratch: make([]byte, geom.ClusterSize)}

	eng.entries = make([]slot, 0, geom.Capacity)
	lists := make([][]ClusterID, 0, sb.DataEntries)
	for i := uint16(0); i < sb.DataEntries; i++ {
		recBuf := make([]byte, layout.EntryRecordSize)
		if err := m.ReadAt(geom.EntryOffset(i), recBuf); err != nil {
			return nil, fmt.Errorf("%w: reading entry %d: %v", ErrIO, i, err)
		}
		rec, err := layout.DecodeEntry(recBuf)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrDataCorrupted, i, err)
		}

		listBuf := make([]byte, layout.ClusterListSlotSize)
		if err := m.ReadAt(geom.ClusterListOffset(i), listBuf); err != nil {
			return nil, fmt.Errorf("%w: reading cluster list %d: %v", ErrIO, i, err)
		}
		clusters, err := layout.DecodeClusterList(listBuf, rec.ClusterCount)
		if err != nil {
			return nil, fmt.Errorf("%w: cluster list %d: %v", ErrDataCorrupted, i, err)
		}

		eng.entries = append(eng.entries, slot{rec: rec, clusters: clusters})
		lists = append(lists, clusters)
	}

	eng.free = bitmap.New(geom.TotalClusters)
	eng.free.Rebuild(geom.SysClusters, lists)

	return eng, nil
}

// Format erases (if required) and rewrites the reserved region of medium
// with a fresh, empty superblock and directory, then returns a newly
// mounted Engine over it. Format never reads the medium's prior contents.
func Format(m Medium, config Config) (*Engine, error) {
	if m == nil || !layout.ValidClusterSize(config.ClusterSize) {
		return nil, fmt.Errorf("%w: medium or cluster_size", ErrInvalidParam)
	}

	desc := m.Descriptor()
	geom, err := layout.NewGeometry(desc.Size, config.ClusterSize, config.ReservedClusters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}

	sb := layout.Superblock{
		Magic:         layout.MagicLE,
		Version:       layout.Version,
		ClusterSize:   geom.ClusterSize,
		TotalClusters: geom.TotalClusters,
		SysClusters:   geom.SysClusters,
		DataEntries:   0,
		FreeClusters:  geom.TotalClusters - geom.SysClusters,
	}

	if err := formatReservedRegion(m, desc, geom, &sb); err != nil {
		return nil, err
	}

	eng := &Engine{
		medium:  m,
		config:  config,
		geom:    geom,
		sb:      sb,
		entries: make([]slot, 0, geom.Capacity),
		free:    bitmap.New(geom.TotalClusters),
		scratch: make([]byte, geom.ClusterSize),
	}
	eng.free.Rebuild(geom.SysClusters, nil)
	return eng, nil
}

// formatReservedRegion erases the reserved region (if the medium needs it),
// writes cluster 0 as a fresh superblock followed by zero bytes, then
// zero-fills clusters [1, R). Since a freshly zeroed directory decodes as
// every entry inactive, no separate directory-array write is required.
func formatReservedRegion(m Medium, desc Descriptor, geom layout.Geometry, sb *layout.Superblock) error {
	regionSize := geom.ReservedRegionSize()

	if desc.NeedErase {
		if desc.EraseBlockSize == 0 {
			return fmt.Errorf("%w: medium needs erase but erase_block_size is 0", ErrInvalidParam)
		}
		n := regionSize
		if rem := n % desc.EraseBlockSize; rem != 0 {
			n += desc.EraseBlockSize - rem
		}
		if err := m.Erase(desc.StartAddr, n); err != nil {
			return fmt.Errorf("%w: erasing reserved region: %v", ErrIO, err)
		}
	}

	cluster0 := make([]byte, geom.ClusterSize)
	sb.Encode(cluster0[:layout.SuperblockSize])
	if err := m.WriteAt(desc.StartAddr, cluster0); err != nil {
		return fmt.Errorf("%w: writing superblock: %v", ErrIO, err)
	}

	zero := make([]byte, geom.ClusterSize)
	for c := uint16(1); c < geom.SysClusters; c++ {
		addr := desc.StartAddr + uint32(c)*uint32(geom.ClusterSize)
		if err := m.WriteAt(addr, zero); err != nil {
			return fmt.Errorf("%w: zeroing cluster %d: %v", ErrIO, c, err)
		}
	}
	return nil
}

// Close releases the engine's in-memory state. The medium itself is left
// untouched; it may be remounted with Open.
func (e *Engine) Close() error {
	if e == nil {
		return ErrNotInitialized
	}
	e.entries = nil
	e.free = nil
	e.scratch = nil
	e.bad = &poison{ErrNotInitialized}
	return nil
}

// find returns the directory slot index for id, or -1 if no live entry
// carries it. Linear scan, case-sensitive, first match wins (spec §4.E
// "Lookup algorithm").
func (e *Engine) find(id string) int {
	for i := range e.entries {
		if e.entries[i].rec.ID() == id {
			return i
		}
	}
	return -1
}

// clusterAddr returns the medium byte offset of cluster c.
func (e *Engine) clusterAddr(c ClusterID) uint32 {
	return e.medium.Descriptor().StartAddr + uint32(c)*uint32(e.geom.ClusterSize)
}

// persistSuperblock re-encodes and writes the superblock. Callers must
// route the result through poisonOn.
func (e *Engine) persistSuperblock() error {
	buf := make([]byte, layout.SuperblockSize)
	e.sb.Encode(buf)
	if err := e.writeAt(e.medium.Descriptor().StartAddr, buf); err != nil {
		return fmt.Errorf("%w: writing superblock: %v", ErrIO, err)
	}
	return nil
}

// persistEntry re-encodes and writes directory slot i's entry record and
// cluster-list slot. Callers must route the result through poisonOn.
func (e *Engine) persistEntry(i int) error {
	s := &e.entries[i]

	recBuf := make([]byte, layout.EntryRecordSize)
	s.rec.Encode(recBuf)
	if err := e.writeAt(e.geom.EntryOffset(uint16(i)), recBuf); err != nil {
		return fmt.Errorf("%w: writing entry %d: %v", ErrIO, i, err)
	}

	listBuf := make([]byte, layout.ClusterListSlotSize)
	if err := layout.EncodeClusterList(listBuf, s.clusters); err != nil {
		return fmt.Errorf("acfs: encoding cluster list %d: %w", i, err)
	}
	if err := e.writeAt(e.geom.ClusterListOffset(uint16(i)), listBuf); err != nil {
		return fmt.Errorf("%w: writing cluster list %d: %v", ErrIO, i, err)
	}
	return nil
}

// writeAt writes buf to addr, erasing the owning erase-block-aligned range
// first whenever the medium requires it. A metadata or cluster slot being
// rewritten after Format usually still holds its previous contents, which
// fails WriteAt's erased-destination precondition on a NeedErase medium
// (see medium.go's WriteAt doc comment); this reads the erase block's
// current bytes, overlays buf at its offset, erases the block, and writes
// the merged block back, so other live data sharing the block survives.
func (e *Engine) writeAt(addr uint32, buf []byte) error {
	desc := e.medium.Descriptor()
	if !desc.NeedErase {
		return e.medium.WriteAt(addr, buf)
	}
	bs := desc.EraseBlockSize
	if bs == 0 {
		return fmt.Errorf("%w: medium needs erase but erase_block_size is 0", ErrInvalidParam)
	}

	start := addr - (addr-desc.StartAddr)%bs
	end := addr + uint32(len(buf))
	if rem := (end - desc.StartAddr) % bs; rem != 0 {
		end += bs - rem
	}

	block := make([]byte, end-start)
	if err := e.medium.ReadAt(start, block); err != nil {
		return err
	}
	copy(block[addr-start:], buf)

	if err := e.medium.Erase(start, end-start); err != nil {
		return err
	}
	return e.medium.WriteAt(start, block)
}
