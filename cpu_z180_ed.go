// cpu_z180_ed.go - ED-prefixed opcode space: 16-bit ADC/SBC, indirect
// 16-bit load/store, NEG, RETN/RETI, IM, I/R transfer, RRD/RLD, the block
// move/compare/IO families, and the Z180 extensions (MLT, TST, IN0/OUT0,
// OTIM/OTDM/OTIMR/OTDMR).
//
// Grounded on the same per-opcode map-driven table construction as
// cpu_z180.go's base table. An ED byte cancels a pending index prefix on
// real Z80 hardware: opEDPrefix clears the index-mode flag before
// dispatching, so the ops here that go through readReg8/writeReg8 (TST,
// IN0, OUT0) see plain H/L/(HL), and the 16-bit ones use plain HL.

package z180emu

func (c *CPU) opEDUnimplemented() {
	c.diag("ed", c.bus.ReadMem(c.PC-1))
	c.tick(4)
}

func (c *CPU) opADCHL16(code byte) {
	res, f := adcHL16(c.HL(), c.read16PlainPair(code), c.Flag(flagC))
	c.SetHL(res)
	c.F = f
	c.tick(7)
}

func (c *CPU) opSBCHL16(code byte) {
	res, f := sbcHL16(c.HL(), c.read16PlainPair(code), c.Flag(flagC))
	c.SetHL(res)
	c.F = f
	c.tick(7)
}

// read16PlainPair is like read16Pair but never redirects HL through an
// index register: ED-space 16-bit arithmetic always targets plain HL.
func (c *CPU) read16PlainPair(code byte) uint16 {
	switch code {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.SP
	}
}

func (c *CPU) opLDIndStore16(code byte) {
	addr := c.fetchWord()
	v := c.read16PlainPair(code)
	c.writeMem(addr, byte(v))
	c.writeMem(addr+1, byte(v>>8))
}

func (c *CPU) opLDIndLoad16(code byte) {
	addr := c.fetchWord()
	lo := c.readMem(addr)
	hi := c.readMem(addr + 1)
	v := uint16(hi)<<8 | uint16(lo)
	switch code {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SP = v
	}
}

func (c *CPU) opNEG() {
	operand := c.A
	c.A, c.F = sub8(0, operand, false)
}

func (c *CPU) opRETN() { c.PC = c.pop(); c.IFF1 = c.IFF2 }
func (c *CPU) opRETI() { c.PC = c.pop(); c.IFF1 = c.IFF2 }

func (c *CPU) opIM(mode byte) { c.IM = mode }

func (c *CPU) opLDIA() { c.I = c.A; c.tick(1) }
func (c *CPU) opLDRA() { c.R = c.A; c.tick(1) }

func (c *CPU) opLDAI() {
	c.A = c.I
	c.setIRTransferFlags(c.A)
	c.tick(1)
}

func (c *CPU) opLDAR() {
	c.A = c.R
	c.setIRTransferFlags(c.A)
	c.tick(1)
}

func (c *CPU) setIRTransferFlags(v byte) {
	f := szFlags(v) &^ (flagX | flagY)
	if c.IFF2 {
		f |= flagPV
	}
	c.F = f | c.F&flagC
}

func (c *CPU) opRRD() {
	mem := c.readMem(c.HL())
	lowA := c.A & 0x0F
	c.A = c.A&0xF0 | mem&0x0F
	mem = mem>>4 | lowA<<4
	c.writeMem(c.HL(), mem)
	f := szFlags(c.A)
	if parity8(c.A) {
		f |= flagPV
	}
	c.F = f | c.F&flagC
	c.tick(4)
}

func (c *CPU) opRLD() {
	mem := c.readMem(c.HL())
	lowA := c.A & 0x0F
	c.A = c.A&0xF0 | mem>>4
	mem = mem<<4&0xF0 | lowA
	c.writeMem(c.HL(), mem)
	f := szFlags(c.A)
	if parity8(c.A) {
		f |= flagPV
	}
	c.F = f | c.F&flagC
	c.tick(4)
}

// --- block move/compare/IO families ---

func (c *CPU) opLDI() { c.blockLD(1) }
func (c *CPU) opLDD() { c.blockLD(^uint16(0)) }

func (c *CPU) blockLD(step uint16) {
	v := c.readMem(c.HL())
	c.writeMem(c.DE(), v)
	c.SetHL(c.HL() + step)
	c.SetDE(c.DE() + step)
	bc := c.BC() - 1
	c.SetBC(bc)
	f := c.F &^ (flagN | flagH | flagPV)
	if bc != 0 {
		f |= flagPV
	}
	c.F = f
	c.tick(2)
}

func (c *CPU) opLDIR() { c.opLDI(); c.repeatIf(c.BC() != 0) }
func (c *CPU) opLDDR() { c.opLDD(); c.repeatIf(c.BC() != 0) }

func (c *CPU) repeatIf(cond bool) {
	if cond {
		c.PC -= 2
		c.tick(5)
	}
}

func (c *CPU) opCPI() { c.blockCP(1) }
func (c *CPU) opCPD() { c.blockCP(^uint16(0)) }

func (c *CPU) blockCP(step uint16) {
	v := c.readMem(c.HL())
	_, f := sub8(c.A, v, false)
	c.SetHL(c.HL() + step)
	bc := c.BC() - 1
	c.SetBC(bc)
	f = f&^flagPV | c.F&flagC
	if bc != 0 {
		f |= flagPV
	}
	c.F = f
	c.tick(2)
}

func (c *CPU) opCPIR() { c.opCPI(); c.repeatIf(c.BC() != 0 && !c.Flag(flagZ)) }
func (c *CPU) opCPDR() { c.opCPD(); c.repeatIf(c.BC() != 0 && !c.Flag(flagZ)) }

func (c *CPU) opINI() { c.blockIn(1) }
func (c *CPU) opIND() { c.blockIn(^uint16(0)) }

func (c *CPU) blockIn(step uint16) {
	v := c.bus.In(c.C)
	c.writeMem(c.HL(), v)
	c.SetHL(c.HL() + step)
	c.B--
	c.F = c.F&^(flagZ|flagN) | boolFlag(c.B == 0, flagZ) | flagN
	c.tick(1)
}

func (c *CPU) opINIR() { c.opINI(); c.repeatIf(c.B != 0) }
func (c *CPU) opINDR() { c.opIND(); c.repeatIf(c.B != 0) }

func (c *CPU) opOUTI() { c.blockOut(1) }
func (c *CPU) opOUTD() { c.blockOut(^uint16(0)) }

func (c *CPU) blockOut(step uint16) {
	v := c.readMem(c.HL())
	c.bus.Out(c.C, v)
	c.SetHL(c.HL() + step)
	c.B--
	c.F = c.F&^(flagZ|flagN) | boolFlag(c.B == 0, flagZ) | flagN
	c.tick(1)
}

func (c *CPU) opOTIR() { c.opOUTI(); c.repeatIf(c.B != 0) }
func (c *CPU) opOTDR() { c.opOUTD(); c.repeatIf(c.B != 0) }

func boolFlag(cond bool, mask byte) byte {
	if cond {
		return mask
	}
	return 0
}

// --- Z180 extensions ---

func (c *CPU) opMLT(code byte) {
	hi, lo := c.mltPairHalves(code)
	res := uint16(hi) * uint16(lo)
	c.setMltPair(code, res)
	c.tick(4)
}

func (c *CPU) mltPairHalves(code byte) (byte, byte) {
	switch code {
	case 0:
		return c.B, c.C
	case 1:
		return c.D, c.E
	case 2:
		return c.H, c.L
	default:
		return byte(c.SP >> 8), byte(c.SP)
	}
}

func (c *CPU) setMltPair(code byte, v uint16) {
	switch code {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SP = v
	}
}

// performTST computes A AND operand for flags only: H=1, N=0, C=0.
func (c *CPU) performTST(operand byte) {
	res := c.A & operand
	f := szFlags(res) | flagH
	if parity8(res) {
		f |= flagPV
	}
	c.F = f
}

func (c *CPU) opTSTReg(reg byte) { c.performTST(c.readReg8(reg)) }
func (c *CPU) opTSTImm()         { c.performTST(c.fetchByte()) }

func (c *CPU) opIN0(dest byte) {
	port := c.fetchByte()
	v := c.bus.In(port)
	c.writeReg8(dest, v)
	f := szFlags(v)
	if parity8(v) {
		f |= flagPV
	}
	c.F = f&^flagH&^flagN | c.F&flagC
	c.tick(3)
}

func (c *CPU) opOUT0(src byte) {
	port := c.fetchByte()
	c.bus.Out(port, c.readReg8(src))
	c.tick(3)
}

func (c *CPU) opOTIM() { c.blockOTxM(1) }
func (c *CPU) opOTDM() { c.blockOTxM(^uint16(0)) }

func (c *CPU) blockOTxM(step uint16) {
	v := c.readMem(c.HL())
	c.bus.Out(c.C, v)
	c.SetHL(c.HL() + step)
	c.B--
	c.F = c.F&^(flagZ|flagN) | boolFlag(c.B == 0, flagZ) | flagN
	c.tick(2)
}

func (c *CPU) opOTIMR() { c.opOTIM(); c.repeatIf(c.B != 0) }
func (c *CPU) opOTDMR() { c.opOTDM(); c.repeatIf(c.B != 0) }

func (c *CPU) initEDOps() {
	for i := range c.edOps {
		c.edOps[i] = (*CPU).opEDUnimplemented
	}

	adcPairs := map[byte]byte{0x4A: 0, 0x5A: 1, 0x6A: 2, 0x7A: 3}
	for op, code := range adcPairs {
		cc := code
		c.edOps[op] = func(cpu *CPU) { cpu.opADCHL16(cc) }
	}
	sbcPairs := map[byte]byte{0x42: 0, 0x52: 1, 0x62: 2, 0x72: 3}
	for op, code := range sbcPairs {
		cc := code
		c.edOps[op] = func(cpu *CPU) { cpu.opSBCHL16(cc) }
	}
	store16 := map[byte]byte{0x43: 0, 0x53: 1, 0x73: 3}
	for op, code := range store16 {
		cc := code
		c.edOps[op] = func(cpu *CPU) { cpu.opLDIndStore16(cc) }
	}
	load16 := map[byte]byte{0x4B: 0, 0x5B: 1, 0x7B: 3}
	for op, code := range load16 {
		cc := code
		c.edOps[op] = func(cpu *CPU) { cpu.opLDIndLoad16(cc) }
	}

	c.edOps[0x44] = (*CPU).opNEG
	c.edOps[0x45] = (*CPU).opRETN
	c.edOps[0x4D] = (*CPU).opRETI
	c.edOps[0x46] = func(cpu *CPU) { cpu.opIM(0) }
	c.edOps[0x56] = func(cpu *CPU) { cpu.opIM(1) }
	c.edOps[0x5E] = func(cpu *CPU) { cpu.opIM(2) }
	c.edOps[0x47] = (*CPU).opLDIA
	c.edOps[0x4F] = (*CPU).opLDRA
	c.edOps[0x57] = (*CPU).opLDAI
	c.edOps[0x5F] = (*CPU).opLDAR
	c.edOps[0x67] = (*CPU).opRRD
	c.edOps[0x6F] = (*CPU).opRLD

	c.edOps[0xA0] = (*CPU).opLDI
	c.edOps[0xA8] = (*CPU).opLDD
	c.edOps[0xB0] = (*CPU).opLDIR
	c.edOps[0xB8] = (*CPU).opLDDR
	c.edOps[0xA1] = (*CPU).opCPI
	c.edOps[0xA9] = (*CPU).opCPD
	c.edOps[0xB1] = (*CPU).opCPIR
	c.edOps[0xB9] = (*CPU).opCPDR
	c.edOps[0xA2] = (*CPU).opINI
	c.edOps[0xAA] = (*CPU).opIND
	c.edOps[0xB2] = (*CPU).opINIR
	c.edOps[0xBA] = (*CPU).opINDR
	c.edOps[0xA3] = (*CPU).opOUTI
	c.edOps[0xAB] = (*CPU).opOUTD
	c.edOps[0xB3] = (*CPU).opOTIR
	c.edOps[0xBB] = (*CPU).opOTDR

	mlt := map[byte]byte{0x4C: 0, 0x5C: 1, 0x6C: 2, 0x7C: 3}
	for op, code := range mlt {
		cc := code
		c.edOps[op] = func(cpu *CPU) { cpu.opMLT(cc) }
	}

	tst := map[byte]byte{0x04: 0, 0x0C: 1, 0x14: 2, 0x1C: 3, 0x24: 4, 0x2C: 5, 0x34: 6, 0x3C: 7}
	for op, reg := range tst {
		r := reg
		c.edOps[op] = func(cpu *CPU) { cpu.opTSTReg(r) }
	}
	c.edOps[0x64] = (*CPU).opTSTImm

	in0 := map[byte]byte{0x00: 0, 0x08: 1, 0x10: 2, 0x18: 3, 0x20: 4, 0x28: 5, 0x38: 7}
	for op, reg := range in0 {
		r := reg
		c.edOps[op] = func(cpu *CPU) { cpu.opIN0(r) }
	}
	out0 := map[byte]byte{0x01: 0, 0x09: 1, 0x11: 2, 0x19: 3, 0x21: 4, 0x29: 5, 0x39: 7}
	for op, reg := range out0 {
		r := reg
		c.edOps[op] = func(cpu *CPU) { cpu.opOUT0(r) }
	}

	c.edOps[0x83] = (*CPU).opOTIM
	c.edOps[0x8B] = (*CPU).opOTDM
	c.edOps[0x93] = (*CPU).opOTIMR
	c.edOps[0x9B] = (*CPU).opOTDMR
}
