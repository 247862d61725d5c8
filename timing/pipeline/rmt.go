package pipeline

// RMTEntry maps one architectural register to its newest in-flight producer.
type RMTEntry struct {
	Valid  bool
	ROBTag int
}

// RenameTable tracks, per architectural register, whether an in-flight
// instruction will produce its value and which ROB slot that producer holds.
type RenameTable struct {
	entries [ARFSize]RMTEntry
}

// NewRenameTable creates an empty RenameTable: every register reads from the
// architectural register file.
func NewRenameTable() *RenameTable {
	t := &RenameTable{}
	for i := range t.entries {
		t.entries[i].ROBTag = TagNone
	}
	return t
}

// Lookup returns the ROB tag of reg's in-flight producer, or TagNone when
// the value is architectural.
func (t *RenameTable) Lookup(reg int) int {
	if e := t.entries[reg]; e.Valid {
		return e.ROBTag
	}
	return TagNone
}

// SetProducer records slot tag as the newest producer of reg.
func (t *RenameTable) SetProducer(reg, tag int) {
	t.entries[reg] = RMTEntry{Valid: true, ROBTag: tag}
}

// ClearIfProducer drops the mapping for reg when tag is still its recorded
// producer. A younger writer may have overwritten the mapping, in which case
// the entry is left alone.
func (t *RenameTable) ClearIfProducer(reg, tag int) {
	if t.entries[reg].ROBTag == tag {
		t.entries[reg] = RMTEntry{ROBTag: TagNone}
	}
}
