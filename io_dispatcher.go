// io_dispatcher.go - Z180 internal I/O port dispatcher
//
// Decodes an 8-bit port address into either the relocatable 64-byte internal
// register window (ASCI/PRT/MMU/ICR/CSIO-stub/generic register file) or an
// externally registered device. Grounded on the teacher's machine_bus.go
// IORegion pattern: a map from address to a small read/write capability,
// generalised here from IntuitionEngine's 8/16/32/64-bit fault-aware bus to
// the Z180's single 64-byte relocatable window plus a flat external map.

package z180emu

import "sync"

// Device is the capability external peripherals register against a port.
type Device interface {
	ReadPort(port byte) byte
	WritePort(port byte, v byte)
}

const (
	internalBaseReset = 0x00
	internalWindow    = 0x40 // window size, 64 bytes
	internalBaseMask  = 0xC0

	offASCI0CNTLA = 0x00
	offASCI1CNTLA = 0x01
	offASCI0CNTLB = 0x02
	offASCI1CNTLB = 0x03
	offASCI0STAT  = 0x04
	offASCI1STAT  = 0x05
	offASCI0TDR   = 0x06
	offASCI1TDR   = 0x07
	offASCI0RDR   = 0x08
	offASCI1RDR   = 0x09
	offCSIO0      = 0x0A
	offCSIO1      = 0x0B
	offASCI0IER   = 0x0E
	offASCI1IER   = 0x0F

	offPRTTCR    = 0x10
	offPRTTMDR0L = 0x11
	offPRTTMDR0H = 0x14
	offPRTTRLD0L = 0x15
	offPRTTRLD0H = 0x16
	offPRTTMDR1L = 0x17
	offPRTTMDR1H = 0x18
	offPRTTRLD1L = 0x19

	offASCI0ASEXT = 0x12
	offASCI1ASEXT = 0x13

	offMMUCBR  = 0x38
	offMMUBBR  = 0x39
	offMMUCBAR = 0x3A
	offICR     = 0x3F

	// offIL holds the interrupt-vector base used by the arbitration table;
	// it has no internal-register special case of its own, so it lives in
	// the generic register file at its documented offset.
	offIL = 0x33
)

// Dispatcher implements the I/O port decode and interrupt arbitration over
// the wired MMU/ASCI0/ASCI1/PRT components plus any externally registered
// devices.
type Dispatcher struct {
	mu sync.Mutex

	mmu   *MMU
	asci0 *ASCI
	asci1 *ASCI
	prt   *PRT

	internalBase byte
	regs         [internalWindow]byte

	external map[byte]Device
}

// NewDispatcher wires the given components and resets the internal base to
// its power-on value (0x00) and the external device map to empty.
func NewDispatcher(mmu *MMU, asci0, asci1 *ASCI, prt *PRT) *Dispatcher {
	d := &Dispatcher{mmu: mmu, asci0: asci0, asci1: asci1, prt: prt}
	d.external = make(map[byte]Device)
	d.Reset()
	return d
}

// Reset restores the internal base to 0x00 and clears the generic register
// file. Device registrations and wired components survive — a collective
// reset re-establishes register state, not wiring.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.internalBase = internalBaseReset
	d.regs = [internalWindow]byte{}
}

// SetInternalBase moves the internal register window, bypassing the ICR
// write-side masking — used by Motherboard to establish the firmware's
// expected default of 0xC0 outside of guest code execution.
func (d *Dispatcher) SetInternalBase(base byte) {
	d.mu.Lock()
	d.internalBase = base & internalBaseMask
	d.mu.Unlock()
}

// RegisterDevice wires an external device against the given 8-bit port.
func (d *Dispatcher) RegisterDevice(port byte, dev Device) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.external[port] = dev
}

func (d *Dispatcher) isInternal(port byte) bool {
	return port&internalBaseMask == d.internalBase&internalBaseMask
}

// In implements the CPU-facing port read.
func (d *Dispatcher) In(port byte) byte {
	d.mu.Lock()
	internal := d.isInternal(port)
	base := d.internalBase
	d.mu.Unlock()

	if !internal {
		return d.externalRead(port)
	}
	return d.internalRead(port&0x3F, base)
}

// Out implements the CPU-facing port write.
func (d *Dispatcher) Out(port byte, v byte) {
	d.mu.Lock()
	internal := d.isInternal(port)
	d.mu.Unlock()

	if !internal {
		d.externalWrite(port, v)
		return
	}
	d.internalWrite(port&0x3F, v)
}

func (d *Dispatcher) externalRead(port byte) byte {
	d.mu.Lock()
	dev := d.external[port]
	d.mu.Unlock()
	if dev == nil {
		return 0xFF
	}
	return dev.ReadPort(port)
}

func (d *Dispatcher) externalWrite(port byte, v byte) {
	d.mu.Lock()
	dev := d.external[port]
	d.mu.Unlock()
	if dev == nil {
		return
	}
	dev.WritePort(port, v)
}

func (d *Dispatcher) internalRead(off byte, base byte) byte {
	switch off {
	case offASCI0CNTLA:
		return d.asci0.ReadCNTLA()
	case offASCI1CNTLA:
		return d.asci1.ReadCNTLA()
	case offASCI0CNTLB:
		return d.asci0.ReadCNTLB()
	case offASCI1CNTLB:
		return d.asci1.ReadCNTLB()
	case offASCI0STAT:
		return d.asci0.ReadSTAT()
	case offASCI1STAT:
		return d.asci1.ReadSTAT()
	case offASCI0TDR, offASCI0RDR:
		return d.asci0.ReadRDR()
	case offASCI1TDR, offASCI1RDR:
		return d.asci1.ReadRDR()
	case offASCI0IER:
		return d.asci0.ReadIER()
	case offASCI1IER:
		return d.asci1.ReadIER()
	case offASCI0ASEXT:
		return d.asci0.ReadASEXT()
	case offASCI1ASEXT:
		return d.asci1.ReadASEXT()
	case offCSIO0:
		return 0x00
	case offCSIO1:
		return 0xFF
	case offPRTTCR:
		return d.prt.ReadTCR()
	case offPRTTMDR0L:
		return byte(d.prt.ReadTMDR(0))
	case offPRTTMDR0H:
		return byte(d.prt.ReadTMDR(0) >> 8)
	case offPRTTRLD0L:
		return byte(d.prt.ReadTRLD(0))
	case offPRTTRLD0H:
		return byte(d.prt.ReadTRLD(0) >> 8)
	case offPRTTMDR1L:
		return byte(d.prt.ReadTMDR(1))
	case offPRTTMDR1H:
		return byte(d.prt.ReadTMDR(1) >> 8)
	case offPRTTRLD1L:
		return byte(d.prt.ReadTRLD(1))
	case offMMUCBR:
		return d.mmu.CBR()
	case offMMUBBR:
		return d.mmu.BBR()
	case offMMUCBAR:
		return d.mmu.CBAR()
	case offICR:
		return base & internalBaseMask
	default:
		d.mu.Lock()
		v := d.regs[off]
		d.mu.Unlock()
		return v
	}
}

func (d *Dispatcher) internalWrite(off byte, v byte) {
	switch off {
	case offASCI0CNTLA:
		d.asci0.WriteCNTLA(v)
	case offASCI1CNTLA:
		d.asci1.WriteCNTLA(v)
	case offASCI0CNTLB:
		d.asci0.WriteCNTLB(v)
	case offASCI1CNTLB:
		d.asci1.WriteCNTLB(v)
	case offASCI0STAT:
		d.asci0.WriteSTAT(v)
	case offASCI1STAT:
		d.asci1.WriteSTAT(v)
	case offASCI0TDR, offASCI0RDR:
		d.asci0.WriteTDR(v)
	case offASCI1TDR, offASCI1RDR:
		d.asci1.WriteTDR(v)
	case offASCI0IER:
		d.asci0.WriteIER(v)
	case offASCI1IER:
		d.asci1.WriteIER(v)
	case offASCI0ASEXT:
		d.asci0.WriteASEXT(v)
	case offASCI1ASEXT:
		d.asci1.WriteASEXT(v)
	case offCSIO0, offCSIO1:
		// discarded
	case offPRTTCR:
		d.prt.WriteTCR(v)
	case offPRTTMDR0L:
		d.prt.WriteTMDRLow(0, v)
	case offPRTTMDR0H:
		d.prt.WriteTMDRHigh(0, v)
	case offPRTTRLD0L:
		d.prt.WriteTRLDLow(0, v)
	case offPRTTRLD0H:
		d.prt.WriteTRLDHigh(0, v)
	case offPRTTMDR1L:
		d.prt.WriteTMDRLow(1, v)
	case offPRTTMDR1H:
		d.prt.WriteTMDRHigh(1, v)
	case offPRTTRLD1L:
		d.prt.WriteTRLDLow(1, v)
	case offMMUCBR:
		d.mmu.SetCBR(v)
	case offMMUBBR:
		d.mmu.SetBBR(v)
	case offMMUCBAR:
		d.mmu.SetCBAR(v)
	case offICR:
		d.mu.Lock()
		d.internalBase = v & internalBaseMask
		d.mu.Unlock()
	default:
		d.mu.Lock()
		d.regs[off] = v
		d.mu.Unlock()
	}
}

// PendingVector reports the highest-priority pending interrupt vector, in
// order PRT0, PRT1, ASCI0, or ok=false if none is pending.
func (d *Dispatcher) PendingVector() (vector byte, ok bool) {
	d.mu.Lock()
	il := d.regs[offIL]
	d.mu.Unlock()

	switch {
	case d.prt.InterruptPending(0):
		return (il & 0xE0) | 0x04, true
	case d.prt.InterruptPending(1):
		return (il & 0xE0) | 0x06, true
	case d.asci0.InterruptPending():
		return (il & 0xE0) | 0x0E, true
	default:
		return 0, false
	}
}
