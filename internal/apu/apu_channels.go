package apu

func (a *APU) triggerCh1() {
	a.ch1.enabled = a.ch1.dacOn
	if a.ch1.length == 0 {
		a.ch1.length = 64
	}
	a.ch1.phase = 0
	a.reloadCh1Timer()
	a.ch1.curVol = a.ch1.vol
	per := a.ch1.envPer
	if per == 0 {
		per = 8
	}
	a.ch1.envTmr = per
	// Sweep
	a.ch1.sweepShadow = a.ch1.freq & 0x7FF
	a.ch1.sweepEn = (a.ch1.sweepPer != 0) || (a.ch1.sweepShift != 0)
	st := a.ch1.sweepPer
	if st == 0 {
		st = 8
	}
	a.ch1.sweepTmr = st
	if a.ch1.sweepShift != 0 && a.calcCh1Sweep() > 2047 {
		a.ch1.enabled = false
	}
}

func (a *APU) triggerCh2() {
	a.ch2.enabled = a.ch2.dacOn
	if a.ch2.length == 0 {
		a.ch2.length = 64
	}
	a.ch2.phase = 0
	a.reloadCh2Timer()
	a.ch2.curVol = a.ch2.vol
	per := a.ch2.envPer
	if per == 0 {
		per = 8
	}
	a.ch2.envTmr = per
}

func (a *APU) triggerCh3() {
	a.ch3.enabled = a.ch3.dacEn
	if a.ch3.length == 0 {
		a.ch3.length = 256
	}
	a.ch3.pos = 0
	a.reloadCh3Timer()
}

func (a *APU) triggerCh4() {
	a.ch4.enabled = a.ch4.dacOn
	if a.ch4.length == 0 {
		a.ch4.length = 64
	}
	a.ch4.curVol = a.ch4.vol
	per := a.ch4.envPer
	if per == 0 {
		per = 8
	}
	a.ch4.envTmr = per
	a.ch4.lfsr = 0x7FFF
	a.reloadCh4Timer()
}

func (a *APU) reloadCh1Timer() {
	period := int(4 * (2048 - (a.ch1.freq & 0x7FF)))
	if period < 8 {
		period = 8
	}
	a.ch1.timer = period
}

func (a *APU) reloadCh2Timer() {
	period := int(4 * (2048 - (a.ch2.freq & 0x7FF)))
	if period < 8 {
		period = 8
	}
	a.ch2.timer = period
}

func (a *APU) reloadCh3Timer() {
	period := int(2 * (2048 - (a.ch3.freq & 0x7FF)))
	if period < 2 {
		period = 2
	}
	a.ch3.timer = period
}

var noiseDivisorTable = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

func (a *APU) reloadCh4Timer() {
	div := noiseDivisorTable[a.ch4.divSel&7]
	period := div << (int(a.ch4.shift) + 4)
	if period < 2 {
		period = 2
	}
	a.ch4.timer = period
}

func (a *APU) clockLength() {
	if a.ch1.lenEn && a.ch1.length > 0 {
		a.ch1.length--
		if a.ch1.length <= 0 {
			a.ch1.enabled = false
		}
	}
	if a.ch2.lenEn && a.ch2.length > 0 {
		a.ch2.length--
		if a.ch2.length <= 0 {
			a.ch2.enabled = false
		}
	}
	if a.ch3.lenEn && a.ch3.length > 0 {
		a.ch3.length--
		if a.ch3.length <= 0 {
			a.ch3.enabled = false
		}
	}
	if a.ch4.lenEn && a.ch4.length > 0 {
		a.ch4.length--
		if a.ch4.length <= 0 {
			a.ch4.enabled = false
		}
	}
}

func clockEnvelopeOf(enabled bool, envPer byte, envTmr *byte, envDir int8, curVol *byte) {
	if !enabled || envPer == 0 {
		return
	}
	if *envTmr > 0 {
		*envTmr--
	}
	if *envTmr == 0 {
		*envTmr = envPer
		if envDir > 0 && *curVol < 15 {
			*curVol++
		} else if envDir < 0 && *curVol > 0 {
			*curVol--
		}
	}
}

func (a *APU) clockEnvelope() {
	clockEnvelopeOf(a.ch1.enabled, a.ch1.envPer, &a.ch1.envTmr, a.ch1.envDir, &a.ch1.curVol)
	clockEnvelopeOf(a.ch2.enabled, a.ch2.envPer, &a.ch2.envTmr, a.ch2.envDir, &a.ch2.curVol)
	clockEnvelopeOf(a.ch4.enabled, a.ch4.envPer, &a.ch4.envTmr, a.ch4.envDir, &a.ch4.curVol)
}

func (a *APU) clockSweep() {
	if !a.ch1.enabled || !a.ch1.sweepEn || a.ch1.sweepPer == 0 {
		return
	}
	if a.ch1.sweepTmr > 0 {
		a.ch1.sweepTmr--
	}
	if a.ch1.sweepTmr != 0 {
		return
	}
	a.ch1.sweepTmr = a.ch1.sweepPer
	nf := a.calcCh1Sweep()
	if nf > 2047 {
		a.ch1.enabled = false
		return
	}
	a.ch1.sweepShadow = uint16(nf)
	a.ch1.freq = (a.ch1.freq &^ 0x07FF) | (uint16(nf) & 0x07FF)
	a.reloadCh1Timer()
	if a.calcCh1Sweep() > 2047 {
		a.ch1.enabled = false
	}
}

// calcCh1Sweep computes the next candidate sweep frequency without
// mutating state, so it can be used for both the speculative
// trigger-time overflow check and the periodic sweep clock.
func (a *APU) calcCh1Sweep() int {
	base := int(a.ch1.sweepShadow)
	if a.ch1.sweepShift == 0 {
		return base
	}
	delta := base >> a.ch1.sweepShift
	if a.ch1.sweepNeg {
		return base - delta
	}
	return base + delta
}
