package timesheet_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/api"
	"github.com/ashraf950/timesheet-client/internal/apitest"
	timesheetDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/timesheet"
	"github.com/ashraf950/timesheet-client/internal/timesheet"
	"github.com/ashraf950/timesheet-client/pkg/logger"
)

func TestTimesheet(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Timesheet Suite")
}

var _ = Describe("Store", func() {
	var (
		server *apitest.Server
		store  *timesheet.Store
		ctx    context.Context
	)

	BeforeEach(func() {
		server = apitest.NewServer()
		DeferCleanup(server.Close)
		client := api.NewClient(api.Config{BaseURL: server.BaseURL()}, apitest.StaticToken("t"), logger.Discard())
		store = timesheet.NewStore(client, logger.Discard())
		ctx = context.Background()
	})

	validRequest := timesheet.AddRequest{
		Date:        "2024-01-10",
		Project:     "Alpha",
		HoursWorked: 8,
		Description: "dev work",
	}

	Describe("Add", func() {
		It("should go through Fetching and append a Pending entry", func() {
			var loadingDuringRequest atomic.Bool
			server.Handle(http.MethodPost, "/timesheet/add", func(w http.ResponseWriter, r *http.Request) {
				loadingDuringRequest.Store(store.Snapshot().Status.Loading)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"message":"Timesheet added"}`))
			})

			Expect(store.Snapshot().Status.Loading).To(BeFalse())
			entry, err := store.Add(ctx, validRequest)
			Expect(err).NotTo(HaveOccurred())
			Expect(loadingDuringRequest.Load()).To(BeTrue())

			snap := store.Snapshot()
			Expect(snap.Status.Loading).To(BeFalse())
			Expect(snap.Status.Error).To(BeNil())
			Expect(snap.Items).To(HaveLen(1))
			Expect(snap.Items[0].Project).To(Equal("Alpha"))
			Expect(snap.Items[0].CurrentStatus()).To(Equal(timesheetDatamodel.StatusPending))
			Expect(entry.HoursWorked.Float64()).To(Equal(8.0))

			req, _ := server.Last()
			var sent map[string]any
			Expect(req.Decode(&sent)).To(Succeed())
			Expect(sent).To(HaveKeyWithValue("date", "2024-01-10"))
			Expect(sent).To(HaveKeyWithValue("hoursWorked", 8.0))
		})

		It("should prefer the record the backend returns", func() {
			server.JSON(http.MethodPost, "/timesheet/add", http.StatusCreated, map[string]any{
				"data": map[string]any{"timesheet": map[string]any{
					"_id": "ts-1", "date": "2024-01-10", "project": "Alpha", "hoursWorked": 8, "status": "Pending",
				}},
			})

			entry, err := store.Add(ctx, validRequest)
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Key()).To(Equal("ts-1"))
			Expect(store.Entries()[0].Key()).To(Equal("ts-1"))
		})

		DescribeTable("should refuse invalid entries without touching state",
			func(mutate func(*timesheet.AddRequest), code internal.ErrorCode) {
				req := validRequest
				mutate(&req)

				_, err := store.Add(ctx, req)
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
				details := appErr.Details.(internal.ValidationErrors)
				Expect(details.Errors[0].Code).To(Equal(string(code)))

				Expect(server.Requests()).To(BeEmpty())
				snap := store.Snapshot()
				Expect(snap.Status.Error).To(BeNil())
				Expect(snap.Items).To(BeEmpty())
			},
			Entry("zero hours", func(r *timesheet.AddRequest) { r.HoursWorked = 0 }, internal.ErrCodeInvalidHours),
			Entry("more than a day", func(r *timesheet.AddRequest) { r.HoursWorked = 24.5 }, internal.ErrCodeInvalidHours),
			Entry("bad date", func(r *timesheet.AddRequest) { r.Date = "10/01/2024" }, internal.ErrCodeInvalidDate),
			Entry("missing project", func(r *timesheet.AddRequest) { r.Project = "" }, internal.ErrCodeValidationFailed),
		)

		It("should keep the cached entries when the backend refuses", func() {
			server.JSON(http.MethodGet, "/timesheet", http.StatusOK, map[string]any{"timesheets": []any{map[string]any{"_id": "a"}}})
			server.JSON(http.MethodPost, "/timesheet/add", http.StatusBadRequest, map[string]any{"message": "Duplicate entry for date"})
			Expect(store.Fetch(ctx)).To(Succeed())

			_, err := store.Add(ctx, validRequest)
			Expect(err).To(HaveOccurred())

			snap := store.Snapshot()
			Expect(snap.Items).To(HaveLen(1))
			Expect(snap.Status.Error.Message).To(Equal("Duplicate entry for date"))
		})
	})

	Describe("Fetch", func() {
		It("should normalize the list", func() {
			server.JSON(http.MethodGet, "/timesheet", http.StatusOK, map[string]any{
				"success": true,
				"data":    []any{map[string]any{"_id": "a", "hoursWorked": 7.5}, map[string]any{"_id": "b"}},
			})

			Expect(store.Fetch(ctx)).To(Succeed())
			Expect(store.Entries()).To(HaveLen(2))
			Expect(store.Entries()[0].HoursWorked.Float64()).To(Equal(7.5))
		})

		It("should clear the list and use the generic message on failure", func() {
			server.JSON(http.MethodGet, "/timesheet", http.StatusOK, []any{map[string]any{"_id": "a"}})
			Expect(store.Fetch(ctx)).To(Succeed())

			server.JSON(http.MethodGet, "/timesheet", http.StatusInternalServerError, "")
			Expect(store.Fetch(ctx)).NotTo(Succeed())

			snap := store.Snapshot()
			Expect(snap.Items).To(BeEmpty())
			Expect(snap.Status.Error.Message).To(Equal(timesheet.MsgFetchFailed))
		})
	})

	Describe("AutoFill", func() {
		It("should store the suggestion without touching the primary status", func() {
			server.JSON(http.MethodPost, "/timesheet/auto-fill", http.StatusOK, map[string]any{
				"suggestion": map[string]any{"project": "Alpha", "hoursWorked": 8, "description": "standup"},
			})

			sg, err := store.AutoFill(ctx, timesheet.AutoFillRequest{Date: "2024-01-11"})
			Expect(err).NotTo(HaveOccurred())
			Expect(sg.Date).To(Equal("2024-01-11"))

			snap := store.Snapshot()
			Expect(snap.Suggestion).NotTo(BeNil())
			Expect(snap.Suggestion.Project).To(Equal("Alpha"))
			Expect(snap.Status).To(BeZero())
			Expect(snap.Op(timesheet.OpAutoFill).Loading).To(BeFalse())

			store.ClearAutoFill()
			Expect(store.Snapshot().Suggestion).To(BeNil())
		})

		It("should record its own error", func() {
			server.JSON(http.MethodPost, "/timesheet/auto-fill", http.StatusServiceUnavailable, "")

			_, err := store.AutoFill(ctx, timesheet.AutoFillRequest{Date: "2024-01-11"})
			Expect(err).To(HaveOccurred())

			snap := store.Snapshot()
			Expect(snap.Status.Error).To(BeNil())
			Expect(snap.Op(timesheet.OpAutoFill).Error.Message).To(Equal(timesheet.MsgAutoFillFailed))

			store.ClearErrors()
			Expect(store.Snapshot().Op(timesheet.OpAutoFill).Error).To(BeNil())
		})
	})
})
