// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package acfsmem

import (
	"fmt"

	"github.com/whnan/acfs"
)

const erasedByte = 0xFF

// Flash is a NeedErase=true medium: WriteAt fails unless every destination
// byte currently holds the erased sentinel 0xFF, and Erase resets a range
// to 0xFF. It mirrors acfs_storage.c's flash_write/flash_erase semantics
// without their module-level buffers - all state is instance-local.
type Flash struct {
	buf            []byte
	desc           acfs.Descriptor
	eraseBlockSize uint32
}

// NewFlash allocates a Flash medium of size bytes, pre-erased to 0xFF.
func NewFlash(startAddr, size, eraseBlockSize uint32) *Flash {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = erasedByte
	}
	return &Flash{
		buf:            buf,
		eraseBlockSize: eraseBlockSize,
		desc: acfs.Descriptor{
			StartAddr:      startAddr,
			Size:           size,
			Type:           acfs.MediumFlash,
			NeedErase:      true,
			EraseBlockSize: eraseBlockSize,
		},
	}
}

func (m *Flash) Descriptor() acfs.Descriptor { return m.desc }

func (m *Flash) bounds(addr, n uint32) (int, error) {
	if n == 0 {
		return 0, nil
	}
	if addr < m.desc.StartAddr || addr+n < addr || addr+n > m.desc.StartAddr+m.desc.Size {
		return 0, fmt.Errorf("%w: range [%d,%d) outside medium [%d,%d)", acfs.ErrIO, addr, addr+n, m.desc.StartAddr, m.desc.StartAddr+m.desc.Size)
	}
	return int(addr - m.desc.StartAddr), nil
}

func (m *Flash) ReadAt(addr uint32, buf []byte) error {
	off, err := m.bounds(addr, uint32(len(buf)))
	if err != nil {
		return err
	}
	copy(buf, m.buf[off:off+len(buf)])
	return nil
}

func (m *Flash) WriteAt(addr uint32, buf []byte) error {
	off, err := m.bounds(addr, uint32(len(buf)))
	if err != nil {
		return err
	}
	for i := 0; i < len(buf); i++ {
		if m.buf[off+i] != erasedByte {
			return fmt.Errorf("%w: Flash.WriteAt: byte at %d not erased", acfs.ErrIO, addr+uint32(i))
		}
	}
	copy(m.buf[off:off+len(buf)], buf)
	return nil
}

func (m *Flash) Erase(addr uint32, n uint32) error {
	off, err := m.bounds(addr, n)
	if err != nil {
		return err
	}
	if addr%m.eraseBlockSize != 0 || n%m.eraseBlockSize != 0 {
		return fmt.Errorf("%w: Flash.Erase: range not aligned to erase_block_size %d", acfs.ErrInvalidParam, m.eraseBlockSize)
	}
	for i := off; i < off+int(n); i++ {
		m.buf[i] = erasedByte
	}
	return nil
}
