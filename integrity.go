// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package acfs

import (
	"fmt"

	"github.com/whnan/acfs/internal/layout"
)

// CheckIntegrity reads every live entry's data, recomputes its CRC32, and
// compares it against the stored value. It returns on the first mismatch;
// the superblock's own CRC was already verified at mount. This duplicates
// the check Read already performs on every call, but walks the whole
// directory in one pass instead of requiring a Read per id.
func (e *Engine) CheckIntegrity() error {
	if err := e.mounted(); err != nil {
		return err
	}

	for i := range e.entries {
		s := &e.entries[i]
		buf := make([]byte, s.rec.DataSize)

		if err := e.readClusters(s.clusters, buf); err != nil {
			return err
		}
		if got := layout.Checksum(buf); got != s.rec.Crc32 {
			return fmt.Errorf("%w: CheckIntegrity(%q): have %#x want %#x", ErrDataCorrupted, s.rec.ID(), got, s.rec.Crc32)
		}
	}
	return nil
}
