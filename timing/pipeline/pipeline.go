// Package pipeline provides a cycle-accurate model of a superscalar
// out-of-order pipeline driven by a pre-recorded instruction trace.
//
// Nine stages move instructions from fetch to retire:
// Fetch -> Decode -> Rename -> RegisterRead -> Dispatch -> Issue ->
// Execute -> Writeback -> Retire. Register renaming maps architectural
// operands onto reorder-buffer slots, so independent instructions execute
// out of order while retirement stays in program order.
package pipeline

import (
	"github.com/archsim/oosim/timing/latency"
	"github.com/archsim/oosim/trace"
)

// InstructionSource supplies raw trace records to the fetch stage.
type InstructionSource interface {
	// Next returns the next record; ok is false once the trace is exhausted.
	Next() (rec trace.Record, ok bool)
}

// Config holds the structural parameters of the processor.
type Config struct {
	// ROBSize is the number of reorder-buffer slots.
	ROBSize int
	// IQSize is the number of issue-queue slots.
	IQSize int
	// Width is the maximum number of instructions any stage admits or emits
	// per cycle.
	Width int
}

// Statistics holds pipeline performance counters.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of dynamic instructions fetched from the
	// trace; once the pipeline drains it equals the number retired.
	Instructions uint64
	// RenameStalls is the number of cycles rename held instructions back
	// because the ROB had fewer free slots than the pipeline width.
	RenameStalls uint64
	// DispatchStalls is the number of cycles dispatch held instructions back
	// because the IQ had fewer free slots than the pipeline width.
	DispatchStalls uint64
	// IssueStalls is the number of cycles a non-empty IQ issued nothing
	// because no entry had both operands ready.
	IssueStalls uint64
}

// IPC returns the instructions per cycle.
func (s Statistics) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Instructions) / float64(s.Cycles)
}

// Option is a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithLatencyTable sets a custom execution-latency table.
func WithLatencyTable(table *latency.Table) Option {
	return func(p *Pipeline) {
		p.table = table
	}
}

// WithRetireHandler registers fn to receive every instruction the moment it
// retires; calls arrive in retirement (= program) order.
func WithRetireHandler(fn func(*Instruction)) Option {
	return func(p *Pipeline) {
		p.retireFn = fn
	}
}

// execEntry pairs an executing instruction with its countdown.
type execEntry struct {
	inst      *Instruction
	remaining int
}

// Pipeline is the nine-stage out-of-order engine.
type Pipeline struct {
	cfg Config
	src InstructionSource

	// Stage buffers between adjacent front-end stages, and the writeback
	// buffer feeding the ROB ready bits.
	de *stageBuffer
	rn *stageBuffer
	rr *stageBuffer
	di *stageBuffer
	wb *stageBuffer

	rob  *ReorderBuffer
	rmt  *RenameTable
	iq   *IssueQueue
	exec []execEntry

	table    *latency.Table
	retireFn func(*Instruction)

	cycle     int
	seq       uint64
	traceDone bool

	stats Statistics
}

// New creates a Pipeline reading records from src.
func New(cfg Config, src InstructionSource, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg: cfg,
		src: src,

		// Fetch skips only when DE already holds a full width of
		// instructions and otherwise reads up to width records, so DE can
		// transiently hold up to 2*width-1 entries.
		de: newStageBuffer(2 * cfg.Width),
		rn: newStageBuffer(cfg.Width),
		rr: newStageBuffer(cfg.Width),
		di: newStageBuffer(cfg.Width),
		wb: newStageBuffer(cfg.Width * 5),

		rob: NewReorderBuffer(cfg.ROBSize),
		rmt: NewRenameTable(),
		iq:  NewIssueQueue(cfg.IQSize),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.table == nil {
		p.table = latency.NewTable()
	}

	return p
}

// Tick advances the simulation by one cycle.
//
// Stages run in reverse pipeline order so that every stage observes the
// previous cycle's state of its successor: an instruction advances by at
// most one stage per tick even though the stages are evaluated sequentially.
func (p *Pipeline) Tick() {
	p.retire()
	p.writeback()
	p.execute()
	p.issue()
	p.dispatch()
	p.registerRead()
	p.rename()
	p.decode()
	p.fetch()
	p.cycle++
}

// Done reports whether the trace is exhausted and every pipeline structure
// has drained.
func (p *Pipeline) Done() bool {
	return p.traceDone && p.empty()
}

// Run ticks the pipeline until Done and returns the final statistics.
func (p *Pipeline) Run() Statistics {
	for !p.Done() {
		p.Tick()
	}
	return p.Stats()
}

// Stats returns a snapshot of the performance counters.
func (p *Pipeline) Stats() Statistics {
	s := p.stats
	s.Cycles = uint64(p.cycle)
	s.Instructions = p.seq
	return s
}

// Reset returns the pipeline to its initial state, reading from src.
func (p *Pipeline) Reset(src InstructionSource) {
	p.src = src
	p.de.clear()
	p.rn.clear()
	p.rr.clear()
	p.di.clear()
	p.wb.clear()
	p.rob = NewReorderBuffer(p.cfg.ROBSize)
	p.rmt = NewRenameTable()
	p.iq = NewIssueQueue(p.cfg.IQSize)
	p.exec = nil
	p.cycle = 0
	p.seq = 0
	p.traceDone = false
	p.stats = Statistics{}
}

func (p *Pipeline) empty() bool {
	return p.de.empty() && p.rn.empty() && p.rr.empty() && p.di.empty() &&
		p.wb.empty() && len(p.exec) == 0 && p.iq.Empty() && p.rob.Empty()
}

// fetch reads up to width records from the trace into DE. It runs only while
// DE holds fewer than width instructions, and latches end-of-stream on the
// first short or failed read.
func (p *Pipeline) fetch() {
	if p.traceDone || p.de.size() >= p.cfg.Width {
		return
	}

	for i := 0; i < p.cfg.Width; i++ {
		rec, ok := p.src.Next()
		if !ok {
			p.traceDone = true
			return
		}

		inst := newInstruction(rec, p.seq)
		p.seq++
		inst.FetchCycle = p.cycle
		inst.FetchDur = 1
		p.de.push(inst)
	}
}

// decode moves instructions from DE to RN while RN has room.
func (p *Pipeline) decode() {
	for i := 0; i < p.de.size(); i++ {
		if in := p.de.at(i); in.DecodeCycle == CycleUnset {
			in.DecodeCycle = p.cycle
		}
	}

	for !p.de.empty() && p.rn.canPush() {
		in := p.de.pop()
		in.DecodeDur = p.cycle - in.DecodeCycle + 1
		p.rn.push(in)
	}
}

// rename allocates a ROB slot per instruction, maps its sources through the
// rename table and records it as the newest producer of its destination.
// The whole width must fit: rename admits nothing while the ROB has fewer
// than width free slots.
func (p *Pipeline) rename() {
	for i := 0; i < p.rn.size(); i++ {
		if in := p.rn.at(i); in.RenameCycle == CycleUnset {
			in.RenameCycle = p.cycle
		}
	}

	if p.rob.FreeSlots() < p.cfg.Width {
		if !p.rn.empty() {
			p.stats.RenameStalls++
		}
		return
	}

	for !p.rn.empty() && p.rr.canPush() {
		in := p.rn.pop()

		tag := p.rob.Allocate(in)

		// Sources rename against the table before the destination updates
		// it, so an instruction reading its own destination register sees
		// the previous producer.
		if in.Src1 != RegNone {
			in.Src1Tag = p.rmt.Lookup(in.Src1)
		}
		if in.Src2 != RegNone {
			in.Src2Tag = p.rmt.Lookup(in.Src2)
		}
		if in.Dest != RegNone {
			p.rmt.SetProducer(in.Dest, tag)
		}
		in.DestTag = tag

		in.RenameDur = p.cycle - in.RenameCycle + 1
		p.rr.push(in)
	}
}

// registerRead moves instructions from RR to DI, clearing any source tag
// whose producer has already completed. A producer may have written back
// while the consumer waited upstream, after the wakeup broadcast it would
// have heard in the IQ.
func (p *Pipeline) registerRead() {
	for i := 0; i < p.rr.size(); i++ {
		if in := p.rr.at(i); in.RegReadCycle == CycleUnset {
			in.RegReadCycle = p.cycle
		}
	}

	for !p.rr.empty() && p.di.canPush() {
		in := p.rr.pop()
		p.snapReadySources(in)
		in.RegReadDur = p.cycle - in.RegReadCycle + 1
		p.di.push(in)
	}
}

// dispatch moves the DI buffer into free IQ slots. The whole width must fit:
// dispatch admits nothing while the IQ has fewer than width free slots.
func (p *Pipeline) dispatch() {
	for i := 0; i < p.di.size(); i++ {
		if in := p.di.at(i); in.DispatchCycle == CycleUnset {
			in.DispatchCycle = p.cycle
		}
	}

	if p.iq.FreeSlots() < p.cfg.Width {
		if !p.di.empty() {
			p.stats.DispatchStalls++
		}
		return
	}

	for !p.di.empty() {
		in := p.di.pop()
		p.snapReadySources(in)
		in.DispatchDur = p.cycle - in.DispatchCycle + 1
		p.iq.Insert(in)
	}
}

// snapReadySources clears any source tag whose producing ROB slot has
// already completed; the value is available without a wakeup.
func (p *Pipeline) snapReadySources(in *Instruction) {
	if in.Src1Tag != TagNone && p.rob.IsReady(in.Src1Tag) {
		in.Src1Tag = TagNone
	}
	if in.Src2Tag != TagNone && p.rob.IsReady(in.Src2Tag) {
		in.Src2Tag = TagNone
	}
}

// issue selects up to width ready IQ entries, oldest first by fetch cycle,
// and moves them onto the execution list with their op-type latency. The
// stage is a no-op while the execution list is at capacity.
func (p *Pipeline) issue() {
	if len(p.exec) >= p.cfg.Width*5 {
		return
	}

	for i := range p.iq.slots {
		if s := &p.iq.slots[i]; s.Valid && s.Inst.IssueCycle == CycleUnset {
			s.Inst.IssueCycle = p.cycle
		}
	}

	issued := 0
	for issued < p.cfg.Width {
		idx := p.iq.OldestReady()
		if idx < 0 {
			break
		}

		in := p.iq.Release(idx)
		in.IssueDur = p.cycle - in.IssueCycle + 1
		p.exec = append(p.exec, execEntry{
			inst:      in,
			remaining: p.table.ForOpType(in.OpType),
		})
		issued++
	}

	if issued == 0 && !p.iq.Empty() {
		p.stats.IssueStalls++
	}
}

// execute counts down every in-flight instruction, then completes the ones
// whose counters reached zero: each completion broadcasts a wakeup and moves
// to the writeback buffer. Completions are handled in a single pass; a
// counter reaches zero only through the decrement above, so no entry can
// complete twice in a cycle.
func (p *Pipeline) execute() {
	for i := range p.exec {
		e := &p.exec[i]
		if e.inst.ExecuteCycle == CycleUnset {
			e.inst.ExecuteCycle = p.cycle
		}
		if e.remaining > 0 {
			e.remaining--
		}
	}

	kept := p.exec[:0]
	for _, e := range p.exec {
		if e.remaining > 0 {
			kept = append(kept, e)
			continue
		}

		p.broadcastWakeup(e.inst.DestTag)

		if !p.wb.canPush() {
			// Writeback back-pressure: completed work is never dropped.
			// The entry stays on the list, counter at zero, and moves when
			// the buffer drains; the repeated wakeup is idempotent.
			kept = append(kept, e)
			continue
		}

		e.inst.ExecuteDur = p.cycle - e.inst.ExecuteCycle + 1
		e.inst.Executed = true
		p.wb.push(e.inst)
	}
	p.exec = kept
}

// broadcastWakeup clears the source tags of every in-flight consumer of tag.
// Consumers can sit in the issue queue or still be walking the register-read
// and dispatch buffers; all three are scanned so no completion is missed.
func (p *Pipeline) broadcastWakeup(tag int) {
	for i := range p.iq.slots {
		if s := &p.iq.slots[i]; s.Valid {
			wakeSources(s.Inst, tag)
		}
	}
	for i := 0; i < p.di.size(); i++ {
		wakeSources(p.di.at(i), tag)
	}
	for i := 0; i < p.rr.size(); i++ {
		wakeSources(p.rr.at(i), tag)
	}
}

func wakeSources(in *Instruction, tag int) {
	if in.Src1Tag == tag {
		in.Src1Tag = TagNone
	}
	if in.Src2Tag == tag {
		in.Src2Tag = TagNone
	}
}

// writeback drains the WB buffer, marking each instruction's ROB slot ready
// for retirement. The slot is the instruction's own rename tag: a slot
// serves exactly one instruction until it retires.
func (p *Pipeline) writeback() {
	for i := 0; i < p.wb.size(); i++ {
		if in := p.wb.at(i); in.WritebackCycle == CycleUnset {
			in.WritebackCycle = p.cycle
		}
	}

	for !p.wb.empty() {
		in := p.wb.pop()
		in.WritebackDur = p.cycle - in.WritebackCycle + 1
		p.rob.MarkReady(in.DestTag)
	}
}

// retire commits up to width ready instructions from the ROB head, in
// program order, stopping at the first slot that is not ready. The rename
// table entry for the destination is cleared only when this instruction is
// still its recorded producer.
func (p *Pipeline) retire() {
	if p.rob.Empty() {
		return
	}

	for i := range p.rob.entries {
		e := &p.rob.entries[i]
		if e.Ready && e.Inst != nil && e.Inst.RetireCycle == CycleUnset {
			e.Inst.RetireCycle = p.cycle
		}
	}

	for n := 0; n < p.cfg.Width; n++ {
		e := &p.rob.entries[p.rob.head]
		if !e.Valid || !e.Ready {
			break
		}

		in := e.Inst
		in.RetireDur = p.cycle - in.RetireCycle + 1

		if p.retireFn != nil {
			p.retireFn(in)
		}

		if e.DestReg != RegNone {
			p.rmt.ClearIfProducer(e.DestReg, in.DestTag)
		}

		e.Valid = false
		p.rob.head = (p.rob.head + 1) % p.rob.Size()
	}
}
