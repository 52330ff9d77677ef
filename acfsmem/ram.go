// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package acfsmem provides in-memory acfs.Medium implementations for tests
// and examples, and a small conformance probe for third-party drivers.
package acfsmem

import (
	"fmt"

	"github.com/whnan/acfs"
)

// RAM is a NeedErase=false medium, standing in for EEPROM or battery-backed
// SDRAM: writes succeed unconditionally, Erase is unsupported. Unlike the
// teacher's mem.File it is single-goroutine only and holds no mutex, since
// acfs.Engine never calls into a Medium concurrently.
type RAM struct {
	buf  []byte
	desc acfs.Descriptor
}

// NewRAM allocates a RAM medium of size bytes starting at startAddr.
func NewRAM(startAddr, size uint32) *RAM {
	return &RAM{
		buf: make([]byte, size),
		desc: acfs.Descriptor{
			StartAddr: startAddr,
			Size:      size,
			Type:      acfs.MediumEEPROM,
			NeedErase: false,
		},
	}
}

func (m *RAM) Descriptor() acfs.Descriptor { return m.desc }

func (m *RAM) bounds(addr, n uint32) (int, error) {
	if n == 0 {
		return 0, nil
	}
	if addr < m.desc.StartAddr || addr+n < addr || addr+n > m.desc.StartAddr+m.desc.Size {
		return 0, fmt.Errorf("%w: range [%d,%d) outside medium [%d,%d)", acfs.ErrIO, addr, addr+n, m.desc.StartAddr, m.desc.StartAddr+m.desc.Size)
	}
	return int(addr - m.desc.StartAddr), nil
}

func (m *RAM) ReadAt(addr uint32, buf []byte) error {
	off, err := m.bounds(addr, uint32(len(buf)))
	if err != nil {
		return err
	}
	copy(buf, m.buf[off:off+len(buf)])
	return nil
}

func (m *RAM) WriteAt(addr uint32, buf []byte) error {
	off, err := m.bounds(addr, uint32(len(buf)))
	if err != nil {
		return err
	}
	copy(m.buf[off:off+len(buf)], buf)
	return nil
}

func (m *RAM) Erase(addr uint32, n uint32) error {
	return fmt.Errorf("%w: RAM.Erase", acfs.ErrUnsupported)
}
