package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/errorlog"
	"github.com/frahmantamala/practice-management/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

type lookupNotFound struct{}

func (lookupNotFound) Error() string { return "row missing" }

var _ = Describe("BaseHandler", func() {
	var h *transport.BaseHandler

	BeforeEach(func() {
		lg := discardLogger()
		h = transport.NewBaseHandler(lg, errorlog.NewService(lg, lg))
	})

	serve := func(err error) (int, transport.ErrorBody) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/1", nil)
		h.HandleServiceError(rec, req, err)

		var resp transport.ErrorResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return rec.Code, resp.Error
	}

	It("should answer client AppErrors with their own status and no error id", func() {
		status, body := serve(internal.ErrPatientNotFound)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body.Code).To(Equal(internal.ErrCodePatientNotFound))
		Expect(body.ErrorID).To(BeEmpty())
	})

	It("should hide server AppErrors behind the generic message", func() {
		status, body := serve(internal.NewInternalError("insert failed", errors.New("disk full")))
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body.Type).To(Equal(internal.ErrorTypeInternal))
		Expect(body.Message).To(Equal(errorlog.MsgGeneric))
		Expect(body.ErrorID).To(MatchRegexp(`^ERR_\d{14}_[0-9a-f]{8}$`))
	})

	It("should keep the status in step with the classified message", func() {
		status, body := serve(fmt.Errorf("load: %w", lookupNotFound{}))
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body.Type).To(Equal(internal.ErrorTypeNotFound))
		Expect(body.Message).To(Equal(errorlog.MsgNotFound))
		Expect(body.ErrorID).NotTo(BeEmpty())

		status, body = serve(fmt.Errorf("find: %w", gorm.ErrRecordNotFound))
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body.Message).To(Equal(errorlog.MsgNotFound))

		status, body = serve(context.DeadlineExceeded)
		Expect(status).To(Equal(http.StatusGatewayTimeout))
		Expect(body.Message).To(Equal(errorlog.MsgTimeout))
	})

	It("should answer unclassified errors with 500 and the generic message", func() {
		status, body := serve(errors.New("boom"))
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body.Code).To(Equal(internal.ErrCodeInternal))
		Expect(body.Message).To(Equal(errorlog.MsgGeneric))
	})
})
