package state_test

import (
	"errors"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/core/state"
)

func TestState(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "State Suite")
}

type thing struct {
	ID   string
	Name string
}

func (t thing) Key() string { return t.ID }

var _ = Describe("Collection", func() {
	var c *state.Collection[thing]

	BeforeEach(func() {
		c = state.NewCollection[thing]("create")
	})

	It("should start idle and empty", func() {
		snap := c.Snapshot()
		Expect(snap.Items).NotTo(BeNil())
		Expect(snap.Items).To(BeEmpty())
		Expect(snap.Status).To(Equal(state.Status{}))
		Expect(snap.Op("create")).To(Equal(state.Status{}))
	})

	It("should move Idle to Fetching to Idle on success", func() {
		c.Begin()
		Expect(c.Status().Loading).To(BeTrue())

		c.Replace([]thing{{ID: "1"}})
		Expect(c.Status()).To(Equal(state.Status{}))
		Expect(c.Items()).To(Equal([]thing{{ID: "1"}}))
	})

	It("should drop cached items when a fetch fails", func() {
		c.Replace([]thing{{ID: "1"}, {ID: "2"}})

		c.Begin()
		c.Fail(state.Failure{Type: internal.ErrorTypeNetwork, Message: "Failed to fetch things"})

		snap := c.Snapshot()
		Expect(snap.Items).NotTo(BeNil())
		Expect(snap.Items).To(BeEmpty())
		Expect(snap.Status.Loading).To(BeFalse())
		Expect(snap.Status.Error.Message).To(Equal("Failed to fetch things"))
	})

	It("should clear the previous error when a new fetch starts", func() {
		c.Fail(state.Failure{Message: "boom"})
		c.Begin()
		Expect(c.Status().Error).To(BeNil())
	})

	It("should keep items when a primary mutation is rejected", func() {
		c.Replace([]thing{{ID: "1"}})
		c.Begin()
		c.Reject(state.Failure{Message: "nope"})
		Expect(c.Items()).To(HaveLen(1))
		Expect(c.Status().Error.Message).To(Equal("nope"))
	})

	Describe("secondary operations", func() {
		It("should never touch the primary status", func() {
			c.Begin()
			c.BeginOp("create")

			snap := c.Snapshot()
			Expect(snap.Status.Loading).To(BeTrue())
			Expect(snap.Op("create").Loading).To(BeTrue())

			c.FailOp("create", state.Failure{Message: "create failed"})
			snap = c.Snapshot()
			Expect(snap.Status.Loading).To(BeTrue())
			Expect(snap.Status.Error).To(BeNil())
			Expect(snap.Op("create").Error.Message).To(Equal("create failed"))

			c.Replace([]thing{{ID: "1"}})
			snap = c.Snapshot()
			Expect(snap.Status).To(Equal(state.Status{}))
			Expect(snap.Op("create").Error.Message).To(Equal("create failed"))
		})

		It("should not be touched by a failing fetch", func() {
			c.BeginOp("create")
			c.Begin()
			c.Fail(state.Failure{Message: "fetch failed"})

			Expect(c.Snapshot().Op("create").Loading).To(BeTrue())
			Expect(c.Snapshot().Op("create").Error).To(BeNil())
		})

		It("should keep items untouched on failure", func() {
			c.Replace([]thing{{ID: "1"}})
			c.BeginOp("create")
			c.FailOp("create", state.Failure{Message: "x"})
			Expect(c.Items()).To(Equal([]thing{{ID: "1"}}))
		})

		It("should append or replace by key on success", func() {
			c.Replace([]thing{{ID: "1", Name: "old"}})

			c.BeginOp("create")
			c.CompleteOp("create", state.Append(thing{ID: "2"}))
			Expect(c.Items()).To(HaveLen(2))

			c.CompleteOp("create", state.ReplaceByKey(thing{ID: "1", Name: "new"}))
			Expect(c.Items()[0].Name).To(Equal("new"))

			c.CompleteOp("create", state.ReplaceByKey(thing{ID: "9", Name: "ghost"}))
			Expect(c.Items()).To(HaveLen(2))

			c.CompleteOp("create", state.RemoveByKey[thing]("1"))
			Expect(c.Items()).To(Equal([]thing{{ID: "2"}}))
		})
	})

	It("should clear every error", func() {
		c.Fail(state.Failure{Message: "a"})
		c.FailOp("create", state.Failure{Message: "b"})
		c.ClearErrors()
		snap := c.Snapshot()
		Expect(snap.Status.Error).To(BeNil())
		Expect(snap.Op("create").Error).To(BeNil())
	})

	It("should hand out copies", func() {
		c.Replace([]thing{{ID: "1", Name: "a"}})
		items := c.Items()
		items[0].Name = "mutated"
		Expect(c.Items()[0].Name).To(Equal("a"))
	})

	It("should be safe for concurrent use", func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				c.Begin()
				c.Replace([]thing{{ID: "x"}})
			}()
			go func() {
				defer wg.Done()
				c.BeginOp("create")
				c.CompleteOp("create", nil)
				_ = c.Snapshot()
			}()
		}
		wg.Wait()
		Expect(c.Status().Loading).To(BeFalse())
		Expect(c.Snapshot().Op("create").Loading).To(BeFalse())
	})
})

var _ = Describe("Record", func() {
	It("should keep its value when a fetch fails", func() {
		r := state.NewRecord(3, "side")
		r.Begin()
		r.Set(5)
		r.Begin()
		r.Fail(state.Failure{Message: "down"})

		snap := r.Snapshot()
		Expect(snap.Value).To(Equal(5))
		Expect(snap.Status.Error.Message).To(Equal("down"))
	})

	It("should track secondary operations independently", func() {
		r := state.NewRecord("v", "side")
		r.BeginOp("side")
		r.Begin()
		r.Set("w")
		Expect(r.Snapshot().Op("side").Loading).To(BeTrue())
		r.FailOp("side", state.Failure{Message: "x"})
		Expect(r.Snapshot().Status.Error).To(BeNil())
		r.ClearErrors()
		Expect(r.Snapshot().Op("side").Error).To(BeNil())
	})
})

var _ = Describe("FailureFrom", func() {
	It("should prefer the backend message", func() {
		err := internal.NewHTTPError(400, "/invoice/generate", "Hourly rate missing")
		f := state.FailureFrom(err, "Failed to generate invoice")
		Expect(f.Message).To(Equal("Hourly rate missing"))
		Expect(f.Type).To(Equal(internal.ErrorTypeValidation))
	})

	It("should fall back to the generic message", func() {
		f := state.FailureFrom(internal.NewHTTPError(500, "/invoice", ""), "Failed to fetch invoices")
		Expect(f.Message).To(Equal("Failed to fetch invoices"))
		Expect(f.Type).To(Equal(internal.ErrorTypeExternal))
	})

	It("should use the pending-feature message on audit routes", func() {
		f := state.FailureFrom(internal.NewHTTPError(404, "/audit-logs", ""), "Error fetching audit logs")
		Expect(f.Message).To(Equal(internal.FeaturePendingMessage))
		Expect(f.Type).To(Equal(internal.ErrorTypeNotImplemented))
	})

	It("should treat foreign errors as internal", func() {
		f := state.FailureFrom(errors.New("weird"), "Fallback")
		Expect(f).To(Equal(state.Failure{Type: internal.ErrorTypeInternal, Message: "Fallback"}))
	})
})
