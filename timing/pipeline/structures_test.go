package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/oosim/timing/pipeline"
)

// waiting builds an IQ-shaped instruction whose operands are already
// available unless tags are overridden.
func waiting(fetchCycle int) *pipeline.Instruction {
	return &pipeline.Instruction{
		FetchCycle: fetchCycle,
		DestTag:    pipeline.TagNone,
		Src1Tag:    pipeline.TagNone,
		Src2Tag:    pipeline.TagNone,
	}
}

var _ = Describe("ReorderBuffer", func() {
	var rob *pipeline.ReorderBuffer

	BeforeEach(func() {
		rob = pipeline.NewReorderBuffer(4)
	})

	It("should start empty with the head at slot zero", func() {
		Expect(rob.Empty()).To(BeTrue())
		Expect(rob.FreeSlots()).To(Equal(4))
		Expect(rob.Head()).To(Equal(0))
	})

	It("should hand out slots in tail order", func() {
		for i := 0; i < 4; i++ {
			tag := rob.Allocate(waiting(i))
			Expect(tag).To(Equal(i))
		}
		Expect(rob.FreeSlots()).To(Equal(0))
		Expect(rob.Empty()).To(BeFalse())
	})

	It("should track readiness per slot", func() {
		tag := rob.Allocate(waiting(0))
		Expect(rob.IsReady(tag)).To(BeFalse())

		rob.MarkReady(tag)
		Expect(rob.IsReady(tag)).To(BeTrue())
	})

	It("should keep ready bits independent across slots", func() {
		tag := rob.Allocate(waiting(0))
		rob.MarkReady(tag)

		rob.Allocate(waiting(1))
		rob.Allocate(waiting(2))
		Expect(rob.IsReady(tag)).To(BeTrue(), "other allocations leave the slot alone")
	})
})

var _ = Describe("RenameTable", func() {
	var rmt *pipeline.RenameTable

	BeforeEach(func() {
		rmt = pipeline.NewRenameTable()
	})

	It("should report every register architectural at start", func() {
		for r := 0; r < pipeline.ARFSize; r++ {
			Expect(rmt.Lookup(r)).To(Equal(pipeline.TagNone))
		}
	})

	It("should map a register to its newest producer", func() {
		rmt.SetProducer(5, 2)
		Expect(rmt.Lookup(5)).To(Equal(2))

		rmt.SetProducer(5, 7)
		Expect(rmt.Lookup(5)).To(Equal(7))
	})

	It("should clear a mapping only for its recorded producer", func() {
		rmt.SetProducer(5, 2)
		rmt.SetProducer(5, 7)

		// The older producer retires; a younger one owns the mapping now.
		rmt.ClearIfProducer(5, 2)
		Expect(rmt.Lookup(5)).To(Equal(7))

		rmt.ClearIfProducer(5, 7)
		Expect(rmt.Lookup(5)).To(Equal(pipeline.TagNone))
	})
})

var _ = Describe("IssueQueue", func() {
	var iq *pipeline.IssueQueue

	BeforeEach(func() {
		iq = pipeline.NewIssueQueue(4)
	})

	It("should fill the lowest free slot first", func() {
		Expect(iq.Insert(waiting(0))).To(BeTrue())
		Expect(iq.Insert(waiting(1))).To(BeTrue())
		Expect(iq.FreeSlots()).To(Equal(2))

		first := iq.Release(0)
		Expect(first.FetchCycle).To(Equal(0))
		Expect(iq.Insert(waiting(2))).To(BeTrue())

		// The reclaimed slot 0 now holds the youngest entry; the oldest
		// ready entry is the survivor in slot 1.
		Expect(iq.OldestReady()).To(Equal(1))
	})

	It("should refuse inserts when full", func() {
		for i := 0; i < 4; i++ {
			Expect(iq.Insert(waiting(i))).To(BeTrue())
		}
		Expect(iq.Insert(waiting(9))).To(BeFalse())
	})

	It("should select the oldest ready entry", func() {
		iq.Insert(waiting(5))
		iq.Insert(waiting(2))
		iq.Insert(waiting(8))

		Expect(iq.OldestReady()).To(Equal(1))
	})

	It("should break fetch-cycle ties by the smallest slot index", func() {
		iq.Insert(waiting(3))
		iq.Insert(waiting(3))

		Expect(iq.OldestReady()).To(Equal(0))
	})

	It("should skip entries with outstanding sources", func() {
		blocked := waiting(0)
		blocked.Src1Tag = 3
		iq.Insert(blocked)
		iq.Insert(waiting(9))

		Expect(iq.OldestReady()).To(Equal(1))

		blocked.Src1Tag = pipeline.TagNone
		Expect(iq.OldestReady()).To(Equal(0))
	})

	It("should report no candidate when nothing is ready", func() {
		blocked := waiting(0)
		blocked.Src2Tag = 1
		iq.Insert(blocked)

		Expect(iq.OldestReady()).To(Equal(-1))
		Expect(iq.Empty()).To(BeFalse())
	})
})
