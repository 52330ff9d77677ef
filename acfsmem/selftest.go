// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package acfsmem

import (
	"bytes"
	"fmt"

	"github.com/whnan/acfs"
)

// SelfTest runs a small conformance probe against any acfs.Medium
// implementation, mirroring the original acfs_test_storage_device: it
// writes and reads back a pattern near the start of the medium, and, if
// the medium needs erase, confirms Erase resets that range to 0xFF. On such
// a medium the probed range is rounded up to a whole number of erase
// blocks.
//
// SelfTest mutates the probed range; run it only against a scratch medium.
func SelfTest(m acfs.Medium) error {
	desc := m.Descriptor()
	if desc.Size == 0 {
		return fmt.Errorf("%w: SelfTest: empty medium", acfs.ErrInvalidParam)
	}

	n := uint32(16)
	if n > desc.Size {
		n = desc.Size
	}
	if desc.NeedErase && desc.EraseBlockSize > 0 {
		if rem := n % desc.EraseBlockSize; rem != 0 {
			n += desc.EraseBlockSize - rem
		}
	}

	if desc.NeedErase {
		if err := m.Erase(desc.StartAddr, n); err != nil {
			return fmt.Errorf("selftest: Erase: %w", err)
		}
		probe := make([]byte, n)
		if err := m.ReadAt(desc.StartAddr, probe); err != nil {
			return fmt.Errorf("selftest: ReadAt after erase: %w", err)
		}
		for i, b := range probe {
			if b != 0xFF {
				return fmt.Errorf("selftest: byte %d not erased to 0xFF after Erase, got %#x", i, b)
			}
		}
	}

	pattern := make([]byte, n)
	for i := range pattern {
		pattern[i] = byte(i)
	}
	if err := m.WriteAt(desc.StartAddr, pattern); err != nil {
		return fmt.Errorf("selftest: WriteAt: %w", err)
	}

	got := make([]byte, n)
	if err := m.ReadAt(desc.StartAddr, got); err != nil {
		return fmt.Errorf("selftest: ReadAt: %w", err)
	}
	if !bytes.Equal(got, pattern) {
		return fmt.Errorf("selftest: read back %v, want %v", got, pattern)
	}
	return nil
}
