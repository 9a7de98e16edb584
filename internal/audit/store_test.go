package audit_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/api"
	"github.com/ashraf950/timesheet-client/internal/apitest"
	"github.com/ashraf950/timesheet-client/internal/audit"
	auditDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/audit"
	"github.com/ashraf950/timesheet-client/pkg/logger"
)

func TestAudit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Suite")
}

var _ = Describe("Store", func() {
	var (
		server *apitest.Server
		store  *audit.Store
		ctx    context.Context
		fixed  time.Time
	)

	BeforeEach(func() {
		server = apitest.NewServer()
		DeferCleanup(server.Close)
		client := api.NewClient(api.Config{BaseURL: server.BaseURL()}, apitest.StaticToken("t"), logger.Discard())
		fixed = time.UnixMilli(1700000000123)
		store = audit.NewStore(client, logger.Discard()).WithClock(func() time.Time { return fixed })
		ctx = context.Background()
	})

	Describe("Fetch", func() {
		It("should send filters and read records with paging", func() {
			server.JSON(http.MethodGet, "/audit-logs", http.StatusOK, `{
				"success": true,
				"data": {
					"logs": [{"_id":"l1","action":"LOGIN","resourceType":"User","status":"SUCCESS","userId":{"_id":"u1","name":"Ann"}}],
					"pagination": {"page": 2, "limit": 10, "total": 11, "pages": 2}
				}
			}`)

			err := store.Fetch(ctx, auditDatamodel.Filters{Action: "LOGIN", Page: 2, Limit: 10})
			Expect(err).NotTo(HaveOccurred())

			req, _ := server.Last()
			Expect(req.Query.Get("action")).To(Equal("LOGIN"))
			Expect(req.Query.Get("page")).To(Equal("2"))
			Expect(req.Query.Get("limit")).To(Equal("10"))
			Expect(req.Query.Has("userId")).To(BeFalse())

			snap := store.Snapshot()
			Expect(snap.Items).To(HaveLen(1))
			Expect(snap.Items[0].Actor()).To(Equal("Ann"))
			Expect(snap.Pagination.Total).To(Equal(11))
		})

		It("should default page and limit", func() {
			server.JSON(http.MethodGet, "/audit-logs", http.StatusOK, `[]`)

			Expect(store.Fetch(ctx, auditDatamodel.Filters{})).To(Succeed())
			req, _ := server.Last()
			Expect(req.Query.Get("page")).To(Equal("1"))
			Expect(req.Query.Get("limit")).To(Equal("50"))
			Expect(store.Snapshot().Pagination.Limit).To(Equal(50))
		})

		It("should explain that the backend has no audit endpoint yet", func() {
			Expect(store.Fetch(ctx, auditDatamodel.DefaultFilters())).NotTo(Succeed())

			snap := store.Snapshot()
			Expect(snap.Items).To(BeEmpty())
			Expect(snap.Status.Error.Type).To(Equal(internal.ErrorTypeNotImplemented))
			Expect(snap.Status.Error.Message).To(Equal(internal.FeaturePendingMessage))
		})

		It("should use the generic message for other failures", func() {
			server.JSON(http.MethodGet, "/audit-logs", http.StatusInternalServerError, "")

			Expect(store.Fetch(ctx, auditDatamodel.DefaultFilters())).NotTo(Succeed())
			Expect(store.Snapshot().Status.Error.Message).To(Equal(audit.MsgFetchFailed))
		})
	})

	Describe("FetchUserActivity", func() {
		It("should keep the report as sent", func() {
			server.JSON(http.MethodGet, "/audit-logs/user/u1", http.StatusOK, `{"success":true,"data":{"totalActions":4}}`)

			activity, err := store.FetchUserActivity(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(activity)).To(MatchJSON(`{"totalActions":4}`))
			Expect(string(store.Snapshot().UserActivity)).To(MatchJSON(`{"totalActions":4}`))
		})

		It("should not disturb the log list on failure", func() {
			_, err := store.FetchUserActivity(ctx, "u1")
			Expect(err).To(HaveOccurred())

			snap := store.Snapshot()
			Expect(snap.Status.Error).To(BeNil())
			Expect(snap.Op(audit.OpActivity).Error.Message).To(Equal(internal.FeaturePendingMessage))
		})
	})

	Describe("Export", func() {
		It("should name the file after the format and the clock", func() {
			server.Handle(http.MethodGet, "/audit-logs/export", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/csv")
				_, _ = w.Write([]byte("action\nLOGIN\n"))
			})

			exp, err := store.Export(ctx, audit.ExportRequest{Format: audit.FormatCSV, UserID: "u1", StartDate: "2024-01-01"})
			Expect(err).NotTo(HaveOccurred())
			Expect(exp.Filename).To(Equal("audit-logs-1700000000123.csv"))
			Expect(exp.ContentType).To(Equal("text/csv"))
			Expect(string(exp.Body)).To(ContainSubstring("LOGIN"))

			req, _ := server.Last()
			Expect(req.Query.Get("format")).To(Equal("csv"))
			Expect(req.Query.Get("userId")).To(Equal("u1"))
			Expect(req.Query.Get("startDate")).To(Equal("2024-01-01"))
			Expect(req.Query.Has("endDate")).To(BeFalse())
		})

		It("should refuse an unknown format locally", func() {
			_, err := store.Export(ctx, audit.ExportRequest{Format: "xml"})
			appErr, _ := internal.IsAppError(err)
			details := appErr.Details.(internal.ValidationErrors)
			Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidFormat)))
			Expect(server.Requests()).To(BeEmpty())
		})

		It("should use the export wording when the endpoint is missing", func() {
			_, err := store.Export(ctx, audit.ExportRequest{Format: audit.FormatJSON})
			Expect(err).To(HaveOccurred())
			Expect(store.Snapshot().Op(audit.OpExport).Error.Message).To(Equal(internal.ExportFeaturePendingMessage))
		})
	})

	Describe("filters", func() {
		It("should merge and reset", func() {
			f := store.SetFilters(auditDatamodel.Filters{Action: "LOGIN"})
			Expect(f.Action).To(Equal("LOGIN"))
			Expect(f.Limit).To(Equal(50))

			f = store.SetFilters(auditDatamodel.Filters{Status: "FAILED", Page: 3})
			Expect(f.Action).To(Equal("LOGIN"))
			Expect(f.Page).To(Equal(3))

			store.ResetFilters()
			Expect(store.Filters()).To(Equal(auditDatamodel.DefaultFilters()))
		})
	})
})

var _ = Describe("ExportFilename", func() {
	It("should use unix milliseconds", func() {
		Expect(audit.ExportFilename(audit.FormatJSON, time.UnixMilli(42))).To(Equal("audit-logs-42.json"))
	})
})
