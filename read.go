// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package acfs

import (
	"fmt"

	"github.com/whnan/acfs/internal/layout"
)

// Read copies id's stored blob into buf and reports its length in outLen.
// buf must be at least as large as the blob's stored data_size; Read never
// requires a buffer sized to a whole number of clusters (see the read
// buffer design note). Read always recomputes and compares the entry's
// stored CRC32 before returning, failing with ErrCrcMismatch on a mismatch.
func (e *Engine) Read(id string, buf []byte, outLen *int) error {
	if err := e.mounted(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: Read(%q)", ErrInvalidParam, id)
	}

	idx := e.find(id)
	if idx < 0 {
		return fmt.Errorf("%w: Read(%q)", ErrDataNotFound, id)
	}
	s := &e.entries[idx]

	dataSize := int(s.rec.DataSize)
	if len(buf) < dataSize {
		if outLen != nil {
			*outLen = dataSize
		}
		return fmt.Errorf("%w: Read(%q): buf_len %d < data_size %d", ErrInvalidParam, id, len(buf), dataSize)
	}

	if err := e.readClusters(s.clusters, buf[:dataSize]); err != nil {
		return err
	}

	if got := layout.Checksum(buf[:dataSize]); got != s.rec.Crc32 {
		return fmt.Errorf("%w: Read(%q): have %#x want %#x", ErrCrcMismatch, id, got, s.rec.Crc32)
	}

	if outLen != nil {
		*outLen = dataSize
	}
	return nil
}

// readClusters reads list in order into dst. Every cluster that fits whole
// in dst is read straight into it; a trailing partial cluster is read into
// the engine's scratch buffer and only its meaningful prefix is copied into
// dst, so dst need not be cluster-size aligned.
func (e *Engine) readClusters(list []ClusterID, dst []byte) error {
	s := int(e.geom.ClusterSize)
	for i, c := range list {
		lo := i * s
		hi := lo + s
		if hi > len(dst) {
			if err := e.medium.ReadAt(e.clusterAddr(c), e.scratch); err != nil {
				return fmt.Errorf("%w: reading cluster %d: %v", ErrIO, c, err)
			}
			copy(dst[lo:], e.scratch[:len(dst)-lo])
			continue
		}
		if err := e.medium.ReadAt(e.clusterAddr(c), dst[lo:hi]); err != nil {
			return fmt.Errorf("%w: reading cluster %d: %v", ErrIO, c, err)
		}
	}
	return nil
}
