package cart

import (
	"bytes"
	"encoding/gob"
	"time"
)

// nowUnix is the wall-clock source for the real-time clock. Tests replace
// it with a fake to drive deterministic advances.
var nowUnix = func() int64 { return time.Now().Unix() }

// MBC3 implements ROM/RAM banking plus the MBC3 real-time clock.
// Banking behavior:
// - 0000-1FFF: RAM/RTC enable (0x0A in low nibble)
// - 2000-3FFF: ROM bank low 7 bits (0 maps to 1)
// - 4000-5FFF: RAM bank (0-3) or RTC register select (08-0C)
// - 6000-7FFF: latch clock data on a 0->1 write transition
// - A000-BFFF: external RAM, or the selected RTC register when 08-0C is active
type MBC3 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBank    byte // 7 bits (1..127)
	secondary  byte // RAM bank (0-3) or RTC register select (8-C)

	prevLatchWrite byte

	// Live RTC registers (advance with wall-clock time).
	rtcSec, rtcMin, rtcHour byte
	rtcDay                  int // 9-bit day counter (0-511)
	rtcHalt                 bool
	rtcCarry                bool
	lastRTCWallSec          int64

	// Latched snapshot, copied from the live registers on a latch write.
	latchedSec, latchedMin, latchedHour byte
	latchedDayLow                       byte
	latchedDayHigh                      byte
}

func NewMBC3(rom []byte, ramSize int) *MBC3 {
	m := &MBC3{rom: rom}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	m.romBank = 1
	m.lastRTCWallSec = nowUnix()
	return m
}

func (m *MBC3) Read(addr uint16) byte {
	m.advanceRTC()
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank & 0x7F)
		if bank == 0 {
			bank = 1
		}
		off := bank*0x4000 + int(addr-0x4000)
		if off >= 0 && off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.secondary >= 0x08 && m.secondary <= 0x0C {
			return m.readLatchedRTC(m.secondary)
		}
		if len(m.ram) == 0 {
			return 0xFF
		}
		rb := int(m.secondary & 0x03)
		off := rb*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(addr uint16, value byte) {
	m.advanceRTC()
	switch {
	case addr < 0x2000:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		v := value & 0x7F
		if v == 0 {
			v = 1
		}
		m.romBank = v
	case addr < 0x6000:
		if value <= 0x03 || (value >= 0x08 && value <= 0x0C) {
			m.secondary = value
		} else {
			m.secondary = 0
		}
	case addr < 0x8000:
		if (value&0x01) == 1 && (m.prevLatchWrite&0x01) == 0 {
			m.latchNow()
		}
		m.prevLatchWrite = value
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if m.secondary >= 0x08 && m.secondary <= 0x0C {
			m.writeLiveRTC(m.secondary, value)
			return
		}
		if len(m.ram) == 0 {
			return
		}
		rb := int(m.secondary & 0x03)
		off := rb*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

func (m *MBC3) readLatchedRTC(reg byte) byte {
	switch reg {
	case 0x08:
		return m.latchedSec
	case 0x09:
		return m.latchedMin
	case 0x0A:
		return m.latchedHour
	case 0x0B:
		return m.latchedDayLow
	case 0x0C:
		return m.latchedDayHigh
	default:
		return 0xFF
	}
}

func (m *MBC3) writeLiveRTC(reg byte, value byte) {
	switch reg {
	case 0x08:
		m.rtcSec = value % 60
	case 0x09:
		m.rtcMin = value % 60
	case 0x0A:
		m.rtcHour = value % 24
	case 0x0B:
		m.rtcDay = (m.rtcDay &^ 0xFF) | int(value)
	case 0x0C:
		m.rtcDay = (m.rtcDay &^ 0x100) | (int(value&0x01) << 8)
		m.rtcHalt = value&0x40 != 0
		m.rtcCarry = value&0x80 != 0
	}
}

func (m *MBC3) latchNow() {
	m.latchedSec = m.rtcSec
	m.latchedMin = m.rtcMin
	m.latchedHour = m.rtcHour
	m.latchedDayLow = byte(m.rtcDay & 0xFF)
	dayHigh := byte((m.rtcDay >> 8) & 0x01)
	if m.rtcHalt {
		dayHigh |= 0x40
	}
	if m.rtcCarry {
		dayHigh |= 0x80
	}
	m.latchedDayHigh = dayHigh
}

// advanceRTC rolls the live registers forward by the wall-clock delta since
// the last access. A halted clock still tracks lastRTCWallSec so that
// resuming it doesn't replay the time it spent stopped.
func (m *MBC3) advanceRTC() {
	now := nowUnix()
	delta := now - m.lastRTCWallSec
	m.lastRTCWallSec = now
	if delta <= 0 || m.rtcHalt {
		return
	}
	totalSec := int(m.rtcSec) + int(delta)
	m.rtcSec = byte(totalSec % 60)
	totalMin := int(m.rtcMin) + totalSec/60
	m.rtcMin = byte(totalMin % 60)
	totalHour := int(m.rtcHour) + totalMin/60
	m.rtcHour = byte(totalHour % 24)
	totalDay := m.rtcDay + totalHour/24
	if totalDay >= 512 {
		m.rtcCarry = true
	}
	m.rtcDay = totalDay % 512
}

type mbc3RAMState struct {
	RAM                                 []byte
	RTCSec, RTCMin, RTCHour             byte
	RTCDay                              int
	RTCHalt, RTCCarry                   bool
	LastWallSec                         int64
	LatchedSec, LatchedMin, LatchedHour byte
	LatchedDayLow, LatchedDayHigh       byte
}

func (m *MBC3) SaveRAM() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(mbc3RAMState{
		RAM:        m.ram,
		RTCSec:     m.rtcSec, RTCMin: m.rtcMin, RTCHour: m.rtcHour, RTCDay: m.rtcDay,
		RTCHalt:    m.rtcHalt, RTCCarry: m.rtcCarry, LastWallSec: m.lastRTCWallSec,
		LatchedSec: m.latchedSec, LatchedMin: m.latchedMin, LatchedHour: m.latchedHour,
		LatchedDayLow: m.latchedDayLow, LatchedDayHigh: m.latchedDayHigh,
	})
	return buf.Bytes()
}

func (m *MBC3) LoadRAM(data []byte) {
	if len(data) == 0 {
		return
	}
	var s mbc3RAMState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	if len(s.RAM) == len(m.ram) {
		copy(m.ram, s.RAM)
	}
	m.rtcSec, m.rtcMin, m.rtcHour, m.rtcDay = s.RTCSec, s.RTCMin, s.RTCHour, s.RTCDay
	m.rtcHalt, m.rtcCarry, m.lastRTCWallSec = s.RTCHalt, s.RTCCarry, s.LastWallSec
	m.latchedSec, m.latchedMin, m.latchedHour = s.LatchedSec, s.LatchedMin, s.LatchedHour
	m.latchedDayLow, m.latchedDayHigh = s.LatchedDayLow, s.LatchedDayHigh
}

type mbc3State struct {
	RamEnabled bool
	RomBank    byte
	Secondary  byte
}

func (m *MBC3) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(mbc3State{RamEnabled: m.ramEnabled, RomBank: m.romBank, Secondary: m.secondary})
	return buf.Bytes()
}

func (m *MBC3) LoadState(data []byte) {
	var s mbc3State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	m.ramEnabled, m.romBank, m.secondary = s.RamEnabled, s.RomBank, s.Secondary
}
