package latency_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/oosim/timing/latency"
)

func TestLatency(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Latency Suite")
}

var _ = Describe("Latency", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTable()
	})

	Describe("Default Timing Values", func() {
		It("should take 1 cycle for type-0 operations", func() {
			Expect(table.ForOpType(0)).To(Equal(1))
		})

		It("should take 2 cycles for type-1 operations", func() {
			Expect(table.ForOpType(1)).To(Equal(2))
		})

		It("should take 5 cycles for type-2 operations", func() {
			Expect(table.ForOpType(2)).To(Equal(5))
		})

		It("should treat unknown types as type 2", func() {
			Expect(table.ForOpType(3)).To(Equal(5))
			Expect(table.ForOpType(-1)).To(Equal(5))
		})
	})

	Describe("Custom configuration", func() {
		It("should resolve latencies from the configuration", func() {
			table = latency.NewTableWithConfig(&latency.Config{
				Type0Latency: 2,
				Type1Latency: 4,
				Type2Latency: 9,
			})

			Expect(table.ForOpType(0)).To(Equal(2))
			Expect(table.ForOpType(1)).To(Equal(4))
			Expect(table.ForOpType(2)).To(Equal(9))
		})
	})

	Describe("Config", func() {
		It("should round-trip through a JSON file", func() {
			config := &latency.Config{Type0Latency: 3, Type1Latency: 6, Type2Latency: 12}
			path := filepath.Join(GinkgoT().TempDir(), "latency.json")

			Expect(config.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(config))
		})

		It("should keep defaults for fields missing from the file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "latency.json")
			Expect(os.WriteFile(path, []byte(`{"type1_latency": 7}`), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Type0Latency).To(Equal(1))
			Expect(loaded.Type1Latency).To(Equal(7))
			Expect(loaded.Type2Latency).To(Equal(5))
		})

		It("should fail to load a missing file", func() {
			_, err := latency.LoadConfig("/no/such/latency.json")
			Expect(err).To(HaveOccurred())
		})

		It("should fail to load invalid JSON", func() {
			path := filepath.Join(GinkgoT().TempDir(), "latency.json")
			Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())

			_, err := latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})

		It("should validate the default configuration", func() {
			Expect(latency.DefaultConfig().Validate()).To(Succeed())
		})

		It("should reject non-positive latencies", func() {
			config := latency.DefaultConfig()
			config.Type1Latency = 0
			Expect(config.Validate()).To(MatchError(ContainSubstring("type1_latency")))

			config = latency.DefaultConfig()
			config.Type2Latency = -1
			Expect(config.Validate()).To(MatchError(ContainSubstring("type2_latency")))
		})

		It("should clone into an independent copy", func() {
			config := latency.DefaultConfig()
			clone := config.Clone()
			clone.Type0Latency = 42

			Expect(config.Type0Latency).To(Equal(1))
		})
	})
})
