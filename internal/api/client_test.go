package api_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/internal/api"
	"github.com/ashraf950/timesheet-client/internal/apitest"
	"github.com/ashraf950/timesheet-client/pkg/logger"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Client Suite")
}

var _ = Describe("Client", func() {
	var (
		server *apitest.Server
		client *api.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		server = apitest.NewServer()
		DeferCleanup(server.Close)
		client = api.NewClient(api.Config{BaseURL: server.BaseURL() + "/"}, apitest.StaticToken("tok-123"), logger.Discard())
		ctx = context.Background()
	})

	It("should trim the trailing slash from the base URL", func() {
		Expect(client.BaseURL()).To(Equal(server.BaseURL()))
	})

	It("should fall back to the default base URL", func() {
		c := api.NewClient(api.Config{}, nil, nil)
		Expect(c.BaseURL()).To(Equal(internal.DefaultBaseURL))
	})

	Context("when sending requests", func() {
		It("should attach the bearer token and a request id", func() {
			server.JSON(http.MethodGet, "/timesheet", http.StatusOK, map[string]any{"timesheets": []any{}})

			body, err := client.Get(ctx, "/timesheet", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("timesheets"))

			req, ok := server.Last()
			Expect(ok).To(BeTrue())
			Expect(req.Header.Get("Authorization")).To(Equal("Bearer tok-123"))
			Expect(req.Header.Get(api.RequestIDHeader)).NotTo(BeEmpty())
		})

		It("should reuse the request id from the context", func() {
			server.JSON(http.MethodGet, "/invoice", http.StatusOK, "[]")

			_, err := client.Get(internal.ContextWithRequestID(ctx, "req-42"), "invoice", nil)
			Expect(err).NotTo(HaveOccurred())

			req, _ := server.Last()
			Expect(req.Header.Get(api.RequestIDHeader)).To(Equal("req-42"))
		})

		It("should log through the logger carried by the context", func() {
			server.JSON(http.MethodGet, "/invoice", http.StatusOK, `[]`)
			var buf bytes.Buffer
			scoped := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).With("command", "invoices list")

			_, err := client.Get(logger.NewContext(internal.ContextWithRequestID(ctx, "req-7"), scoped), "/invoice", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring(`command="invoices list"`))
			Expect(buf.String()).To(ContainSubstring("request_id=req-7"))
		})

		It("should omit the Authorization header without a token", func() {
			anon := api.NewClient(api.Config{BaseURL: server.BaseURL()}, apitest.StaticToken(""), logger.Discard())
			server.JSON(http.MethodPost, "/auth/login", http.StatusOK, map[string]any{"token": "t"})

			_, err := anon.Post(ctx, "/auth/login", map[string]string{"email": "a@b.c"})
			Expect(err).NotTo(HaveOccurred())

			req, _ := server.Last()
			Expect(req.Header.Get("Authorization")).To(BeEmpty())
			Expect(req.Header.Get("Content-Type")).To(Equal("application/json"))

			var sent map[string]string
			Expect(req.Decode(&sent)).To(Succeed())
			Expect(sent).To(HaveKeyWithValue("email", "a@b.c"))
		})

		It("should encode query parameters", func() {
			server.JSON(http.MethodGet, "/audit-logs", http.StatusOK, "{}")

			_, err := client.Get(ctx, "/audit-logs", url.Values{"page": {"2"}, "action": {"LOGIN"}})
			Expect(err).NotTo(HaveOccurred())

			req, _ := server.Last()
			Expect(req.Query.Get("page")).To(Equal("2"))
			Expect(req.Query.Get("action")).To(Equal("LOGIN"))
		})

		It("should send PUT bodies", func() {
			server.JSON(http.MethodPut, "/approval/update/t1", http.StatusOK, map[string]any{"success": true})

			_, err := client.Put(ctx, "/approval/update/t1", map[string]string{"status": "Approved"})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Count(http.MethodPut, "/approval/update/t1")).To(Equal(1))
		})
	})

	Context("when the backend fails", func() {
		It("should surface the top-level message", func() {
			server.JSON(http.MethodPost, "/invoice/generate", http.StatusBadRequest, map[string]any{"message": "Hourly rate missing"})

			_, err := client.Post(ctx, "/invoice/generate", map[string]any{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(appErr.Message).To(Equal("Hourly rate missing"))
		})

		It("should surface a nested error message", func() {
			server.JSON(http.MethodGet, "/payment", http.StatusForbidden, map[string]any{"error": map[string]any{"message": "Finance only"}})

			_, err := client.Get(ctx, "/payment", nil)
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
			Expect(appErr.Message).To(Equal("Finance only"))
			Expect(internal.IsAccessDenied(err)).To(BeTrue())
		})

		It("should leave the message empty for a non-JSON body", func() {
			server.JSON(http.MethodGet, "/invoice", http.StatusInternalServerError, "<html>oops</html>")

			_, err := client.Get(ctx, "/invoice", nil)
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeExternal))
			Expect(appErr.Message).To(BeEmpty())
			Expect(internal.Describe(err, "Failed to fetch invoices")).To(Equal("Failed to fetch invoices"))
		})

		It("should mark a missing audit route as a pending feature", func() {
			_, err := client.Get(ctx, "/audit-logs", nil)
			Expect(internal.IsFeaturePending(err)).To(BeTrue())
			Expect(internal.Describe(err, "x")).To(Equal(internal.FeaturePendingMessage))
		})

		It("should treat other missing routes as not found", func() {
			_, err := client.Get(ctx, "/analytics/advanced-metrics", nil)
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
			Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("should report an unreachable server as a network error", func() {
			server.Close()

			_, err := client.Get(ctx, "/timesheet", nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNetwork))
			Expect(appErr.StatusCode).To(BeZero())
		})
	})

	Describe("Download", func() {
		It("should return the raw body with its metadata", func() {
			server.Handle(http.MethodGet, "/audit-logs/export", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/csv")
				w.Header().Set("Content-Disposition", `attachment; filename="logs.csv"`)
				_, _ = w.Write([]byte("id,action\n1,LOGIN\n"))
			})

			d, err := client.Download(ctx, "/audit-logs/export", url.Values{"format": {"csv"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.ContentType).To(Equal("text/csv"))
			Expect(d.Filename).To(Equal("logs.csv"))
			Expect(string(d.Body)).To(HavePrefix("id,action"))
		})

		It("should describe a missing export route with its own message", func() {
			_, err := client.Download(ctx, "/audit-logs/export", nil)
			Expect(internal.Describe(err, "x")).To(Equal(internal.ExportFeaturePendingMessage))
		})
	})
})
