package cart

import (
	"bytes"
	"encoding/gob"
)

// MBC1 implements ROM/RAM banking up to 2MB ROM and 32KB RAM.
type MBC1 struct {
	rom []byte
	ram []byte

	romBankLow5       byte // lower 5 bits of ROM bank number (0->1 remapped)
	ramBankOrRomHigh2 byte // ROM bank high bits for 4000-7FFF; in mode 1 also the RAM bank and the 0000-3FFF bank
	ramEnabled        bool
	modeSelect        byte // 0: ROM banking (default), 1: RAM banking

	romBanks int // total banks installed, for masking
}

func NewMBC1(rom []byte, ramSize int) *MBC1 {
	m := &MBC1{rom: rom}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	m.romBankLow5 = 1
	m.romBanks = len(rom) / 0x4000
	if m.romBanks == 0 {
		m.romBanks = 1
	}
	return m
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if m.modeSelect == 0 {
			if int(addr) < len(m.rom) {
				return m.rom[addr]
			}
			return 0xFF
		}
		// mode 1: apply high bits to bank 0 region
		bank := m.maskBank(int((m.ramBankOrRomHigh2 & 0x03) << 5))
		off := bank*0x4000 + int(addr)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.effectiveROMBank())
		off := m.maskBank(bank)*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		ramBank := 0
		if m.modeSelect == 1 {
			ramBank = int(m.ramBankOrRomHigh2 & 0x03)
		}
		off := ramBank*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		m.romBankLow5 = value & 0x1F
		if m.romBankLow5 == 0 {
			m.romBankLow5 = 1
		}
	case addr < 0x6000:
		m.ramBankOrRomHigh2 = value & 0x03
	case addr < 0x8000:
		m.modeSelect = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		ramBank := 0
		if m.modeSelect == 1 {
			ramBank = int(m.ramBankOrRomHigh2 & 0x03)
		}
		off := ramBank*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

// effectiveROMBank combines BANK2 (bits 5-6) with BANK1 (bits 0-4); the
// remap of BANK1==0 to 1 happens on write, never here.
func (m *MBC1) effectiveROMBank() byte {
	high := m.ramBankOrRomHigh2 & 0x03
	return m.romBankLow5 | (high << 5)
}

// maskBank wraps a bank number modulo the number of ROM banks actually
// present, so cartridges smaller than the 0x25-style combined bank space
// (e.g. a 32-bank ROM addressed as bank 0x25) wrap to an installed bank.
func (m *MBC1) maskBank(bank int) int {
	if m.romBanks <= 0 {
		return bank
	}
	return bank % m.romBanks
}

func (m *MBC1) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *MBC1) LoadRAM(data []byte) {
	if len(m.ram) == 0 || len(data) == 0 {
		return
	}
	copy(m.ram, data)
}

type mbc1State struct {
	RAM               []byte
	RomBankLow5       byte
	RamBankOrRomHigh2 byte
	RamEnabled        bool
	ModeSelect        byte
}

func (m *MBC1) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(mbc1State{
		RAM:               m.ram,
		RomBankLow5:       m.romBankLow5,
		RamBankOrRomHigh2: m.ramBankOrRomHigh2,
		RamEnabled:        m.ramEnabled,
		ModeSelect:        m.modeSelect,
	})
	return buf.Bytes()
}

func (m *MBC1) LoadState(data []byte) {
	var s mbc1State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	if len(s.RAM) == len(m.ram) {
		copy(m.ram, s.RAM)
	}
	m.romBankLow5, m.ramBankOrRomHigh2 = s.RomBankLow5, s.RamBankOrRomHigh2
	m.ramEnabled, m.modeSelect = s.RamEnabled, s.ModeSelect
}
