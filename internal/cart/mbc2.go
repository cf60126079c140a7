package cart

import (
	"bytes"
	"encoding/gob"
)

// MBC2 supports up to 256KB ROM and has a built-in 512x4-bit RAM array
// (no external RAM chip). Reads/writes to that RAM always return/store a
// nibble with the upper 4 bits forced to 1.
//
// Unlike MBC1/MBC3, a single 0000-3FFF write region serves both RAM-enable
// and ROM-bank-select: bit 8 of the written address picks which one.
type MBC2 struct {
	rom []byte
	ram [512]byte

	romBank    byte // 4 bits (0->1 remapped)
	ramEnabled bool

	romBanks int // total banks installed, for masking
}

func NewMBC2(rom []byte) *MBC2 {
	m := &MBC2{rom: rom}
	m.romBank = 1
	m.romBanks = len(rom) / 0x4000
	if m.romBanks == 0 {
		m.romBanks = 1
	}
	return m
}

// maskBank wraps an out-of-range bank select onto the installed bank count.
func (m *MBC2) maskBank(bank int) int {
	if m.romBanks <= 0 {
		return 0
	}
	return bank % m.romBanks
}

func (m *MBC2) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank & 0x0F)
		if bank == 0 {
			bank = 1
		}
		bank = m.maskBank(bank)
		off := bank*0x4000 + int(addr-0x4000)
		if off >= 0 && off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram[int(addr-0xA000)%len(m.ram)] | 0xF0
	default:
		return 0xFF
	}
}

func (m *MBC2) Write(addr uint16, value byte) {
	switch {
	case addr < 0x4000:
		// Bit 8 of the address distinguishes RAM-enable from bank-select.
		if addr&0x0100 == 0 {
			m.ramEnabled = (value & 0x0F) == 0x0A
		} else {
			bank := value & 0x0F
			if bank == 0 {
				bank = 1
			}
			m.romBank = bank
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		m.ram[int(addr-0xA000)%len(m.ram)] = value | 0xF0
	}
}

func (m *MBC2) SaveRAM() []byte {
	out := make([]byte, len(m.ram))
	copy(out, m.ram[:])
	return out
}

func (m *MBC2) LoadRAM(data []byte) {
	if len(data) == 0 {
		return
	}
	copy(m.ram[:], data)
}

type mbc2State struct {
	RAM        [512]byte
	RomBank    byte
	RamEnabled bool
}

func (m *MBC2) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(mbc2State{RAM: m.ram, RomBank: m.romBank, RamEnabled: m.ramEnabled})
	return buf.Bytes()
}

func (m *MBC2) LoadState(data []byte) {
	var s mbc2State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	m.ram, m.romBank, m.ramEnabled = s.RAM, s.RomBank, s.RamEnabled
}
