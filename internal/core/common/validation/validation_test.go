package validation_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/core/common/validation"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

type sample struct {
	Day     string          `json:"day" validate:"required,isodate"`
	Hours   float64         `json:"hoursWorked" validate:"gt=0,lte=24"`
	Rate    decimal.Decimal `json:"rate" validate:"dpositive"`
	Channel string          `json:"paymentMethod" validate:"omitempty,oneof='Bank Transfer' Cash"`
	Hidden  string          `json:"-" validate:"required"`
}

func fields(appErr *internal.AppError) map[string]internal.ValidationError {
	out := map[string]internal.ValidationError{}
	for _, e := range appErr.Details.(internal.ValidationErrors).Errors {
		out[e.Field] = e
	}
	return out
}

var _ = Describe("Struct", func() {
	It("should pass a valid value", func() {
		v := sample{Day: "2024-02-29", Hours: 8, Rate: decimal.NewFromInt(10), Channel: "Bank Transfer", Hidden: "x"}
		Expect(validation.Struct(v)).To(BeNil())
	})

	It("should report every failing field by its wire name", func() {
		appErr := validation.Struct(sample{Day: "2023-02-29", Hours: 25, Rate: decimal.Zero, Channel: "Card"})
		Expect(appErr).NotTo(BeNil())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))

		got := fields(appErr)
		Expect(got).To(HaveLen(5))
		Expect(got["day"].Code).To(Equal(string(internal.ErrCodeInvalidDate)))
		Expect(got["day"].Message).To(Equal("day must be a date in YYYY-MM-DD format"))
		Expect(got["hoursWorked"].Code).To(Equal(string(internal.ErrCodeInvalidHours)))
		Expect(got["hoursWorked"].Message).To(Equal("hoursWorked must not exceed 24"))
		Expect(got["rate"].Message).To(Equal("rate must be greater than 0"))
		Expect(got["paymentMethod"].Code).To(Equal(string(internal.ErrCodeInvalidMethod)))
		Expect(got["paymentMethod"].Message).To(Equal("paymentMethod must be one of: Bank Transfer Cash"))
		Expect(got).To(HaveKey("Hidden"))
	})

	It("should reject negative decimals", func() {
		v := sample{Day: "2024-01-01", Hours: 1, Rate: decimal.NewFromInt(-5), Hidden: "x"}
		appErr := validation.Struct(v)
		Expect(fields(appErr)).To(HaveKey("rate"))
	})
})

var _ = Describe("DateRange", func() {
	It("should accept an ordered or single-day range", func() {
		Expect(validation.DateRange("startDate", "2024-01-01", "endDate", "2024-01-31")).To(BeNil())
		Expect(validation.DateRange("startDate", "2024-01-01", "endDate", "2024-01-01")).To(BeNil())
	})

	It("should reject an end before the start", func() {
		appErr := validation.DateRange("startDate", "2024-02-01", "endDate", "2024-01-31")
		Expect(appErr).NotTo(BeNil())
		Expect(appErr.Error()).To(Equal("endDate must not be before startDate"))
	})

	It("should leave unparseable dates to field validation", func() {
		Expect(validation.DateRange("startDate", "soon", "endDate", "2024-01-31")).To(BeNil())
	})
})
