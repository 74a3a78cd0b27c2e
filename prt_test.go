package z180emu

import "testing"

func TestPRT_ResetDefaults(t *testing.T) {
	p := NewPRT()
	if got := p.ReadTMDR(0); got != prtCounterReset {
		t.Errorf("ReadTMDR(0) = %#04x, want %#04x", got, prtCounterReset)
	}
	if got := p.ReadTRLD(1); got != prtCounterReset {
		t.Errorf("ReadTRLD(1) = %#04x, want %#04x", got, prtCounterReset)
	}
	if got := p.ReadTCR(); got != 0 {
		t.Errorf("ReadTCR() = %#02x, want 0", got)
	}
}

func TestPRT_TMDRHighLowIndependentBytes(t *testing.T) {
	p := NewPRT()
	p.WriteTMDRLow(0, 0x34)
	p.WriteTMDRHigh(0, 0x12)
	if got := p.ReadTMDR(0); got != 0x1234 {
		t.Errorf("ReadTMDR(0) = %#04x, want 0x1234", got)
	}
}

func TestPRT_CountsDownAndDoesNotFireWhenDisabled(t *testing.T) {
	p := NewPRT()
	p.WriteTMDRLow(0, 0x00)
	p.WriteTMDRHigh(0, 0x00)
	p.WriteTMDRLow(0, 100)
	p.WriteTMDRHigh(0, 0)

	p.Step(prtPrescaler * 10) // 10 ticks, channel disabled
	if got := p.ReadTMDR(0); got != 100 {
		t.Errorf("ReadTMDR(0) = %d, want unchanged at 100 while TDE0 is clear", got)
	}
}

func TestPRT_ReloadsAndSetsTIFOnUnderflow(t *testing.T) {
	p := NewPRT()
	p.WriteTCR(tcrTDE0)
	p.WriteTMDRLow(0, 5)
	p.WriteTMDRHigh(0, 0)
	p.WriteTRLDLow(0, 0x00)
	p.WriteTRLDHigh(0, 0x10)

	p.Step(prtPrescaler * 10) // 10 ticks >= counter value of 5: reload fires

	if got := p.ReadTMDR(0); got != 0x1000 {
		t.Errorf("ReadTMDR(0) after underflow = %#04x, want reload value 0x1000", got)
	}
	if tcr := p.ReadTCR(); tcr&tcrTIF0 == 0 {
		t.Errorf("ReadTCR() = %#02x, want TIF0 set after underflow", tcr)
	}
}

func TestPRT_CountsDownWithoutFiringWhenTicksAreFewer(t *testing.T) {
	p := NewPRT()
	p.WriteTCR(tcrTDE0)
	p.WriteTMDRLow(0, 50)
	p.WriteTMDRHigh(0, 0)

	p.Step(prtPrescaler * 10)
	if got := p.ReadTMDR(0); got != 40 {
		t.Errorf("ReadTMDR(0) = %d, want 40", got)
	}
	if tcr := p.ReadTCR(); tcr&tcrTIF0 != 0 {
		t.Errorf("ReadTCR() = %#02x, want TIF0 clear", tcr)
	}
}

func TestPRT_WriteTCRWriteOneToLeaveOnTIFBits(t *testing.T) {
	p := NewPRT()
	p.WriteTCR(tcrTDE0)
	p.WriteTMDRLow(0, 1)
	p.WriteTMDRHigh(0, 0)
	p.Step(prtPrescaler) // fires, sets TIF0

	if tcr := p.ReadTCR(); tcr&tcrTIF0 == 0 {
		t.Fatalf("precondition failed: TIF0 not set")
	}

	// Writing a 1 in the TIF0 position leaves it set.
	p.WriteTCR(p.ReadTCR() | tcrTIF0)
	if tcr := p.ReadTCR(); tcr&tcrTIF0 == 0 {
		t.Errorf("ReadTCR() = %#02x, want TIF0 to remain set when written as 1", tcr)
	}

	// Writing a 0 in the TIF0 position clears it.
	p.WriteTCR(p.ReadTCR() &^ tcrTIF0)
	if tcr := p.ReadTCR(); tcr&tcrTIF0 != 0 {
		t.Errorf("ReadTCR() = %#02x, want TIF0 cleared when written as 0", tcr)
	}
}

func TestPRT_InterruptPendingRequiresEnableAndFlag(t *testing.T) {
	p := NewPRT()
	p.WriteTCR(tcrTIE1 | tcrTDE1)
	p.WriteTMDRLow(1, 1)
	p.WriteTMDRHigh(1, 0)

	if p.InterruptPending(1) {
		t.Error("InterruptPending(1) = true before underflow, want false")
	}
	p.Step(prtPrescaler)
	if !p.InterruptPending(1) {
		t.Error("InterruptPending(1) = false after underflow with TIE1 set, want true")
	}
}
