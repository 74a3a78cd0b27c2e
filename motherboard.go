// motherboard.go - wires the MMU, ASCI0/ASCI1, PRT, dispatcher, and CPU
// into a running Z180 SC126/SC131 core, and drives the host-tick burst
// execution model.
//
// Grounded on the teacher's cpu_z80_runner.go: CPUZ80Runner wires a CPU to
// a bus adapter and exposes Reset/Execute/Stop around it; this generalises
// that lifecycle from a single free-running CPU goroutine to a
// burst-stepped core plus a periodic background snapshot task, using
// golang.org/x/sync/errgroup the way the teacher's runner uses a
// hand-rolled done-channel for Stop() to wait on in-flight work.

package z180emu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	snapshotPeriod = 30 * time.Second
	inputInterval  = 10_000 // cycles between console-input deliveries
)

// ConsoleSink is the collaborator that renders bytes drained from ASCI0's
// TX queue; SnapshotStore is the collaborator that persists RAM.
type ConsoleSink interface {
	WriteConsole(b []byte)
}

type SnapshotStore interface {
	Save(data []byte) error
}

// busAdapter exposes the MMU and dispatcher as the Z180Bus the CPU drives,
// the same adapter role the teacher's Z80BusAdapter plays over MachineBus.
type busAdapter struct {
	mmu *MMU
	io  *Dispatcher
}

func (b *busAdapter) ReadMem(addr uint16) byte     { return b.mmu.Read(addr) }
func (b *busAdapter) WriteMem(addr uint16, v byte) { b.mmu.Write(addr, v) }
func (b *busAdapter) In(port byte) byte            { return b.io.In(port) }
func (b *busAdapter) Out(port byte, v byte)        { b.io.Out(port, v) }

// Motherboard owns every core component and is the only type collaborators
// (console host, input capture, snapshot writer) talk to.
type Motherboard struct {
	ID string

	mmu   *MMU
	asci0 *ASCI
	asci1 *ASCI
	prt   *PRT
	io    *Dispatcher
	cpu   *CPU

	mu         sync.Mutex
	inputQueue []byte
	lastFed    uint64

	romImage []byte

	console  ConsoleSink
	snapshot SnapshotStore
	logger   *slog.Logger

	fallthroughMu   sync.Mutex
	fallthroughSeen map[string]uint64

	cancel    context.CancelFunc
	snapshotG *errgroup.Group
}

// NewMotherboard builds A-E, wires them together, sets the internal
// register base to 0xC0, loads rom, restores snapshot if it is exactly
// ramSize bytes, and starts the periodic snapshot task.
func NewMotherboard(id string, rom []byte, ramSnapshot []byte, store SnapshotStore) *Motherboard {
	m := &Motherboard{
		ID:              id,
		mmu:             NewMMU(),
		asci0:           NewASCI(),
		asci1:           NewASCI(),
		prt:             NewPRT(),
		logger:          slog.Default(),
		snapshot:        store,
		fallthroughSeen: make(map[string]uint64),
	}
	m.io = NewDispatcher(m.mmu, m.asci0, m.asci1, m.prt)
	m.io.SetInternalBase(0xC0)
	m.cpu = NewCPU(&busAdapter{mmu: m.mmu, io: m.io})
	m.cpu.SetDiagnostic(m.onDecodeFallthrough)

	m.romImage = append([]byte(nil), rom...)
	m.mmu.LoadROM(rom)
	if len(ramSnapshot) == ramSize {
		m.mmu.LoadRAMSnapshot(ramSnapshot)
	}

	m.startBackgroundTasks()
	return m
}

// SetLogger overrides the default slog.Logger used for boundary events.
func (m *Motherboard) SetLogger(l *slog.Logger) { m.logger = l }

// SetConsoleSink wires the collaborator that receives drained ASCI0 TX
// bytes.
func (m *Motherboard) SetConsoleSink(sink ConsoleSink) { m.console = sink }

func (m *Motherboard) onDecodeFallthrough(space string, opcode byte) {
	key := fmt.Sprintf("%s:%02X", space, opcode)
	m.fallthroughMu.Lock()
	_, seen := m.fallthroughSeen[key]
	m.fallthroughSeen[key]++
	m.fallthroughMu.Unlock()
	if !seen {
		m.logger.Warn("decode fallthrough", "space", space, "opcode", opcode, "board", m.ID)
	}
}

func (m *Motherboard) startBackgroundTasks() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	m.snapshotG = g
	g.Go(func() error {
		ticker := time.NewTicker(snapshotPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				m.writeSnapshot()
			}
		}
	})
}

// writeSnapshot copies RAM under the MMU's lock, then writes the copy
// without holding any lock — the fire-and-forget contract this core's
// concurrency model requires.
func (m *Motherboard) writeSnapshot() {
	if m.snapshot == nil {
		return
	}
	data := m.mmu.RAMSnapshot()
	if err := m.snapshot.Save(data); err != nil {
		m.logger.Error("snapshot write failed", "board", m.ID, "error", err)
	}
}

// EnqueueInput appends a host-delivered byte to the pending input queue,
// throttled into ASCI0 by RunBurst rather than delivered immediately.
func (m *Motherboard) EnqueueInput(b byte) {
	m.mu.Lock()
	m.inputQueue = append(m.inputQueue, b)
	m.mu.Unlock()
}

// RunBurst executes stepCount CPU steps, advances the PRT by the cycles
// accrued, feeds one throttled input byte if due, and drains ASCI0's TX
// queue to the console collaborator.
func (m *Motherboard) RunBurst(stepCount int) {
	before := m.cpu.Cycles
	for i := 0; i < stepCount; i++ {
		m.cpu.Step(m.io.PendingVector)
	}
	m.prt.Step(int64(m.cpu.Cycles - before))

	m.feedInputIfDue()

	if out := m.asci0.DrainTx(); len(out) > 0 && m.console != nil {
		m.console.WriteConsole(out)
	}
}

func (m *Motherboard) feedInputIfDue() {
	now := m.cpu.Cycles
	m.mu.Lock()
	if len(m.inputQueue) == 0 || now-m.lastFed < inputInterval {
		m.mu.Unlock()
		return
	}
	b := m.inputQueue[0]
	m.inputQueue = m.inputQueue[1:]
	m.lastFed = now
	m.mu.Unlock()
	m.asci0.ReceiveFromConsole(b)
}

// StepPRT lets an external scheduler advance the timer independently of a
// CPU burst (used by tests and by hosts that drive PRT ticks on their own
// clock).
func (m *Motherboard) StepPRT(cycles int64) { m.prt.Step(cycles) }

// Reset zeroes CPU state, resets MMU/PRT/ASCI registers, re-establishes
// the internal-base default, clears the input queue, and reloads ROM. RAM
// contents survive.
func (m *Motherboard) Reset() {
	m.cpu.Reset()
	m.mmu.Reset()
	m.prt.Reset()
	m.asci0.Reset()
	m.asci1.Reset()
	m.io.Reset()
	m.io.SetInternalBase(0xC0)
	m.mu.Lock()
	m.inputQueue = nil
	m.mu.Unlock()
	m.mmu.LoadROM(m.romImage)
}

// Shutdown stops the background snapshot task and forces one final,
// synchronous RAM snapshot.
func (m *Motherboard) Shutdown() {
	if m.cancel != nil {
		m.cancel()
		m.snapshotG.Wait()
	}
	m.writeSnapshot()
}

// CPU, MMU, ASCI0, ASCI1, PRT, Dispatcher expose the wired components for
// tests and for the CLI driver's collaborator hooks (paste-text, send-byte).
func (m *Motherboard) CPU() *CPU               { return m.cpu }
func (m *Motherboard) MMU() *MMU               { return m.mmu }
func (m *Motherboard) ASCI0() *ASCI            { return m.asci0 }
func (m *Motherboard) ASCI1() *ASCI            { return m.asci1 }
func (m *Motherboard) PRT() *PRT               { return m.prt }
func (m *Motherboard) Dispatcher() *Dispatcher { return m.io }

// Status reports a lightweight snapshot of core state for log correlation
// and diagnostics, narrowed from the teacher's runtime_status.go aggregator
// (which spans dozens of heterogeneous chip types) to the board ID plus CPU
// and MMU register state.
type Status struct {
	BoardID string
	PC      uint16
	Halted  bool
	Cycles  uint64
	IM      byte
	IFF1    bool
	CBAR    byte
	BBR     byte
	CBR     byte
}

func (m *Motherboard) StatusSnapshot() Status {
	return Status{
		BoardID: m.ID,
		PC:      m.cpu.PC,
		Halted:  m.cpu.Halted,
		Cycles:  m.cpu.Cycles,
		IM:      m.cpu.IM,
		IFF1:    m.cpu.IFF1,
		CBAR:    m.mmu.CBAR(),
		BBR:     m.mmu.BBR(),
		CBR:     m.mmu.CBR(),
	}
}
