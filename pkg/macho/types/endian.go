package types

import (
	"encoding/binary"

	"golang.org/x/sys/cpu"
)

// Endian is an explicit byte order for a single field read or write.
type Endian uint8

const (
	LittleEndian Endian = iota
	BigEndian
)

// HostEndian returns the byte order of the machine running the codec.
func HostEndian() Endian {
	if cpu.IsBigEndian {
		return BigEndian
	}
	return LittleEndian
}

// Swapped returns the opposite byte order.
func (e Endian) Swapped() Endian {
	if e == BigEndian {
		return LittleEndian
	}
	return BigEndian
}

// ByteOrder returns the encoding/binary view of e.
func (e Endian) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e Endian) String() string {
	if e == BigEndian {
		return "BigEndian"
	}
	return "LittleEndian"
}
