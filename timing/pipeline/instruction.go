package pipeline

import (
	"fmt"

	"github.com/archsim/oosim/trace"
)

// ARFSize is the number of architectural registers a trace may name.
const ARFSize = 67

const (
	// RegNone marks an absent architectural register operand.
	RegNone = -1
	// TagNone marks an operand whose value is architectural: no in-flight
	// producer, the instruction does not wait for it.
	TagNone = -1
	// CycleUnset marks a stage timestamp that has not been recorded yet.
	CycleUnset = -1
)

// Instruction is one dynamic instruction flowing through the pipeline.
//
// A single record is shared by every structure that tracks the instruction:
// the ROB slot allocated at rename holds the same pointer that moves through
// the stage buffers, the issue queue and the execution list, so a wakeup or
// timing update is visible everywhere at once.
type Instruction struct {
	PC     uint64
	OpType int
	Dest   int
	Src1   int
	Src2   int

	// Seq is the dynamic instruction number, assigned in fetch order.
	Seq uint64

	// Rename tags. A tag is the ROB index of the producing instruction,
	// or TagNone when the value is already available.
	DestTag int
	Src1Tag int
	Src2Tag int

	// Executed is set when the instruction leaves the execution list.
	Executed bool

	// Per-stage timing: the first cycle the instruction was observed in the
	// stage, and the number of cycles it spent there.
	FetchCycle, FetchDur         int
	DecodeCycle, DecodeDur       int
	RenameCycle, RenameDur       int
	RegReadCycle, RegReadDur     int
	DispatchCycle, DispatchDur   int
	IssueCycle, IssueDur         int
	ExecuteCycle, ExecuteDur     int
	WritebackCycle, WritebackDur int
	RetireCycle, RetireDur       int
}

// newInstruction builds the pipeline record for one trace record.
func newInstruction(rec trace.Record, seq uint64) *Instruction {
	return &Instruction{
		PC:     rec.PC,
		OpType: rec.OpType,
		Dest:   rec.Dest,
		Src1:   rec.Src1,
		Src2:   rec.Src2,
		Seq:    seq,

		DestTag: TagNone,
		Src1Tag: TagNone,
		Src2Tag: TagNone,

		FetchCycle:     CycleUnset,
		DecodeCycle:    CycleUnset,
		RenameCycle:    CycleUnset,
		RegReadCycle:   CycleUnset,
		DispatchCycle:  CycleUnset,
		IssueCycle:     CycleUnset,
		ExecuteCycle:   CycleUnset,
		WritebackCycle: CycleUnset,
		RetireCycle:    CycleUnset,
	}
}

// TimingLine renders the per-instruction record emitted at retire:
// sequence number, function unit, operands, and a {cycle,duration} pair for
// each of the nine stages.
func (in *Instruction) TimingLine() string {
	return fmt.Sprintf("%d fu{%d} src{%d,%d} dst{%d} "+
		"FE{%d,%d} DE{%d,%d} RN{%d,%d} RR{%d,%d} DI{%d,%d} "+
		"IS{%d,%d} EX{%d,%d} WB{%d,%d} RT{%d,%d} ",
		in.Seq, in.OpType, in.Src1, in.Src2, in.Dest,
		in.FetchCycle, in.FetchDur,
		in.DecodeCycle, in.DecodeDur,
		in.RenameCycle, in.RenameDur,
		in.RegReadCycle, in.RegReadDur,
		in.DispatchCycle, in.DispatchDur,
		in.IssueCycle, in.IssueDur,
		in.ExecuteCycle, in.ExecuteDur,
		in.WritebackCycle, in.WritebackDur,
		in.RetireCycle, in.RetireDur)
}
