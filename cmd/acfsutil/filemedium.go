// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/whnan/acfs"
)

// fileMedium adapts an *os.File to acfs.Medium, growing the backing file to
// size bytes on creation. It has no erase requirement, like acfsmem.RAM.
type fileMedium struct {
	f    *os.File
	desc acfs.Descriptor
}

func openOrCreateImage(path string, size uint32) (*fileMedium, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, err
		}
	} else {
		size = uint32(info.Size())
	}

	return &fileMedium{
		f:    f,
		desc: acfs.Descriptor{StartAddr: 0, Size: size, Type: acfs.MediumCustom, NeedErase: false},
	}, nil
}

func (m *fileMedium) Descriptor() acfs.Descriptor { return m.desc }

func (m *fileMedium) ReadAt(addr uint32, buf []byte) error {
	_, err := m.f.ReadAt(buf, int64(addr))
	return err
}

func (m *fileMedium) WriteAt(addr uint32, buf []byte) error {
	_, err := m.f.WriteAt(buf, int64(addr))
	return err
}

func (m *fileMedium) Erase(addr uint32, n uint32) error {
	return fmt.Errorf("%w: fileMedium.Erase", acfs.ErrUnsupported)
}

func (m *fileMedium) Close() error {
	return m.f.Close()
}
