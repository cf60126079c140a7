package emu

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retro-silicon/dmgcore/internal/bus"
	"github.com/retro-silicon/dmgcore/internal/cart"
	"github.com/retro-silicon/dmgcore/internal/cpu"
)

// Buttons is the joypad state for one frame, as sampled by the host.
type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

func (b Buttons) mask() byte {
	var m byte
	if b.Right {
		m |= bus.JoypRight
	}
	if b.Left {
		m |= bus.JoypLeft
	}
	if b.Up {
		m |= bus.JoypUp
	}
	if b.Down {
		m |= bus.JoypDown
	}
	if b.A {
		m |= bus.JoypA
	}
	if b.B {
		m |= bus.JoypB
	}
	if b.Select {
		m |= bus.JoypSelectBtn
	}
	if b.Start {
		m |= bus.JoypStart
	}
	return m
}

// Machine wires together the CPU, Bus (PPU/APU/timers/cartridge) and
// presents the host-facing API used by the CLI and the ebiten UI.
type Machine struct {
	cfg Config

	cpu *cpu.CPU
	bus *bus.Bus

	bootROM []byte

	romPath  string
	romTitle string

	fb []byte // RGBA 160x144*4, last rendered frame
}

// New creates an unloaded Machine. Call LoadCartridge or LoadROMFromFile
// before stepping.
func New(cfg Config) *Machine {
	return &Machine{cfg: cfg, fb: make([]byte, 160*144*4)}
}

// SetBootROM stashes a DMG boot ROM image to be used by the next
// LoadCartridge/LoadROMFromFile call and by ResetWithBoot.
func (m *Machine) SetBootROM(data []byte) {
	m.bootROM = append([]byte(nil), data...)
	if m.bus != nil {
		m.bus.SetBootROM(m.bootROM)
	}
}

// SetUseFetcherBG toggles the fetcher/FIFO background render path. Kept for
// config/UI compatibility; the current PPU always renders via the fetcher.
func (m *Machine) SetUseFetcherBG(v bool) { m.cfg.UseFetcherBG = v }

// LoadCartridge builds a fresh Bus/CPU around rom, with an optional boot ROM.
func (m *Machine) LoadCartridge(rom []byte, boot []byte) error {
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return err
	}
	c := cart.NewCartridge(rom)
	b := bus.NewWithCartridge(c)
	if m.cfg.SampleRate > 0 {
		b.SetSampleRate(m.cfg.SampleRate)
	}
	if len(boot) > 0 {
		m.bootROM = boot
	}
	if len(m.bootROM) > 0 {
		b.SetBootROM(m.bootROM)
	}
	cp := cpu.New(b)
	if len(m.bootROM) == 0 {
		cp.ResetNoBoot()
	}
	m.bus = b
	m.cpu = cp
	m.romTitle = strings.TrimSpace(h.Title)
	return nil
}

// LoadROMFromFile reads a .gb/.gbc image from disk and loads it, tracking
// the path for battery-save and window-title purposes.
func (m *Machine) LoadROMFromFile(path string) error {
	rom, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := m.LoadCartridge(rom, nil); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

// ROMPath returns the path passed to LoadROMFromFile, or "" if the
// cartridge was loaded via LoadCartridge directly.
func (m *Machine) ROMPath() string { return m.romPath }

// ROMTitle returns the cartridge header title of the currently loaded ROM.
func (m *Machine) ROMTitle() string { return m.romTitle }

// SetSerialWriter routes bytes written to the serial port (used by
// test ROMs to report pass/fail over the link cable) to w.
func (m *Machine) SetSerialWriter(w io.Writer) {
	if m.bus != nil {
		m.bus.SetSerialWriter(w)
	}
}

// SetButtons updates the joypad state sampled on the next PPU/CPU step.
func (m *Machine) SetButtons(b Buttons) {
	if m.bus != nil {
		m.bus.SetJoypadState(b.mask())
	}
}

// ResetPostBoot sets PC=0x0100 and resets the CPU registers to the typical
// DMG post-boot-ROM values without re-parsing the cartridge; bus, PPU and
// APU state are left as they are.
func (m *Machine) ResetPostBoot() {
	if m.cpu == nil {
		return
	}
	m.cpu.SetPC(0x0100)
	m.cpu.ResetNoBoot()
}

// ResetWithBoot resets the machine to PC=0x0000 and re-enables the boot
// ROM mapping, so the boot sequence runs again from the top.
func (m *Machine) ResetWithBoot() {
	if m.bus == nil || m.cpu == nil {
		return
	}
	if len(m.bootROM) > 0 {
		m.bus.SetBootROM(m.bootROM)
	}
	m.cpu.SetPC(0x0000)
}

const cyclesPerFrame = 70224 // DMG: 154 lines * 456 dots

func (m *Machine) stepFrameCycles() {
	if m.cpu == nil {
		return
	}
	total := 0
	for total < cyclesPerFrame {
		total += m.cpu.Step()
	}
}

// StepFrame advances emulation by one video frame (70224 T-cycles) and
// renders the result into the framebuffer returned by Framebuffer.
func (m *Machine) StepFrame() {
	m.stepFrameCycles()
	if m.bus != nil {
		copy(m.fb, m.bus.PPU().Frame())
	}
}

// StepFrameNoRender advances one frame's worth of cycles without paying
// for the Frame() composition pass; used by automated test-ROM runners
// that only care about serial output.
func (m *Machine) StepFrameNoRender() {
	m.stepFrameCycles()
}

// Framebuffer returns the last rendered frame as packed RGBA8888
// (160*144*4 bytes, row-major).
func (m *Machine) Framebuffer() []byte { return m.fb }

// SaveBattery returns the cartridge's battery-backed RAM (and RTC, for
// MBC3) for persistence to a .sav file. ok is false if the cartridge has
// no battery-backed storage.
func (m *Machine) SaveBattery() ([]byte, bool) {
	if m.bus == nil {
		return nil, false
	}
	bb, ok := m.bus.Cart().(cart.BatteryBacked)
	if !ok {
		return nil, false
	}
	data := bb.SaveRAM()
	return data, data != nil
}

// LoadBattery restores previously saved cartridge RAM/RTC state.
func (m *Machine) LoadBattery(data []byte) bool {
	if m.bus == nil || len(data) == 0 {
		return false
	}
	bb, ok := m.bus.Cart().(cart.BatteryBacked)
	if !ok {
		return false
	}
	bb.LoadRAM(data)
	return true
}

// APUBufferedStereo returns the number of buffered interleaved stereo
// sample frames currently queued in the APU.
func (m *Machine) APUBufferedStereo() int {
	if m.bus == nil {
		return 0
	}
	return m.bus.APU().StereoAvailable()
}

// APUPullStereo drains up to max interleaved (L,R) stereo sample frames
// generated by the APU.
func (m *Machine) APUPullStereo(max int) []int16 {
	if m.bus == nil {
		return nil
	}
	return m.bus.APU().PullStereo(max)
}

// APUCapBufferedStereo drops the oldest buffered samples so that at most
// max stereo frames remain queued, bounding host audio latency.
func (m *Machine) APUCapBufferedStereo(max int) {
	if m.bus == nil {
		return
	}
	a := m.bus.APU()
	if extra := a.StereoAvailable() - max; extra > 0 {
		a.PullStereo(extra)
	}
}

// APUClearAudioLatency discards all buffered audio, used when resuming
// after a pause to avoid playing a backlog of stale samples.
func (m *Machine) APUClearAudioLatency() {
	if m.bus == nil {
		return
	}
	a := m.bus.APU()
	a.PullStereo(a.StereoAvailable())
}

type machineState struct {
	CPU struct {
		A, F, B, C, D, E, H, L byte
		SP, PC                 uint16
		IME                    bool
	}
	Bus []byte
}

// SaveState serializes CPU registers plus the full bus (PPU/APU/cartridge/
// timers) state for later restoration via LoadState.
func (m *Machine) SaveState() []byte {
	if m.cpu == nil || m.bus == nil {
		return nil
	}
	var s machineState
	s.CPU.A, s.CPU.F = m.cpu.A, m.cpu.F
	s.CPU.B, s.CPU.C = m.cpu.B, m.cpu.C
	s.CPU.D, s.CPU.E = m.cpu.D, m.cpu.E
	s.CPU.H, s.CPU.L = m.cpu.H, m.cpu.L
	s.CPU.SP, s.CPU.PC = m.cpu.SP, m.cpu.PC
	s.CPU.IME = m.cpu.IME
	s.Bus = m.bus.SaveState()

	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState.
func (m *Machine) LoadState(data []byte) bool {
	if m.cpu == nil || m.bus == nil || len(data) == 0 {
		return false
	}
	var s machineState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return false
	}
	m.cpu.A, m.cpu.F = s.CPU.A, s.CPU.F
	m.cpu.B, m.cpu.C = s.CPU.B, s.CPU.C
	m.cpu.D, m.cpu.E = s.CPU.D, s.CPU.E
	m.cpu.H, m.cpu.L = s.CPU.H, s.CPU.L
	m.cpu.SP = s.CPU.SP
	m.cpu.SetPC(s.CPU.PC)
	m.cpu.IME = s.CPU.IME
	m.bus.LoadState(s.Bus)
	return true
}

func (m *Machine) stateFilePath() string {
	if m.romPath == "" {
		return ""
	}
	ext := filepath.Ext(m.romPath)
	return strings.TrimSuffix(m.romPath, ext) + ".state"
}

// SaveStateToFile writes SaveState's output next to the loaded ROM
// (<romname>.state), or to path if non-empty.
func (m *Machine) SaveStateToFile(path string) error {
	if path == "" {
		path = m.stateFilePath()
	}
	if path == "" {
		return os.ErrInvalid
	}
	return os.WriteFile(path, m.SaveState(), 0o644)
}

// LoadStateFromFile restores a snapshot written by SaveStateToFile.
func (m *Machine) LoadStateFromFile(path string) error {
	if path == "" {
		path = m.stateFilePath()
	}
	if path == "" {
		return os.ErrInvalid
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !m.LoadState(data) {
		return os.ErrInvalid
	}
	return nil
}
