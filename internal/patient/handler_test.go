package patient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/patient"
	"github.com/frahmantamala/practice-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubService struct {
	lastReq    patient.PatientRequest
	lastFilter patient.Filter
	deleted    int64
	calls      int
}

func (s *stubService) stored(id int64, req patient.PatientRequest) *patient.Patient {
	return &patient.Patient{
		ID: id, FirstName: req.FirstName, LastName: req.LastName, DateOfBirth: req.DateOfBirth,
		Email: req.Email, Notes: req.Notes, IsActive: true,
	}
}

func (s *stubService) Create(_ context.Context, req patient.PatientRequest) (*patient.Patient, error) {
	s.calls++
	s.lastReq = req
	return s.stored(11, req), nil
}

func (s *stubService) Get(_ context.Context, id int64) (*patient.Patient, error) {
	if id != 11 {
		return nil, internal.ErrPatientNotFound
	}
	return s.stored(11, patient.PatientRequest{FirstName: "Ada", LastName: "Lovelace", DateOfBirth: time.Date(1985, 12, 10, 0, 0, 0, 0, time.UTC)}), nil
}

func (s *stubService) List(_ context.Context, f patient.Filter) ([]patient.Patient, int64, error) {
	s.lastFilter = f
	p, _ := s.Get(context.Background(), 11)
	return []patient.Patient{*p}, 1, nil
}

func (s *stubService) Update(_ context.Context, id int64, req patient.PatientRequest) (*patient.Patient, error) {
	s.calls++
	s.lastReq = req
	return s.stored(id, req), nil
}

func (s *stubService) Delete(_ context.Context, id int64) error {
	if id != 11 {
		return internal.ErrPatientNotFound
	}
	s.deleted = id
	return nil
}

var _ = Describe("Patient Handler", func() {
	var (
		svc    *stubService
		router chi.Router
	)

	BeforeEach(func() {
		svc = &stubService{}
		h := patient.NewHandler(transport.NewBaseHandler(discardLogger(), nil), svc)
		router = chi.NewRouter()
		router.Post("/patients", h.Create)
		router.Get("/patients", h.List)
		router.Get("/patients/{id}", h.Get)
		router.Put("/patients/{id}", h.Update)
		router.Delete("/patients/{id}", h.Delete)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	Describe("Create", func() {
		It("should sanitize, validate and create", func() {
			rec := do(http.MethodPost, "/patients",
				`{"first_name":" <b>Ada</b> ","last_name":"Lovelace","date_of_birth":"1985-12-10","email":"ADA@Example.Test","notes":"allergic<script>alert(1)</script>"}`)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			Expect(svc.lastReq.FirstName).To(Equal("Ada"))
			Expect(svc.lastReq.Email).To(Equal("ada@example.test"))
			Expect(svc.lastReq.Notes).To(Equal("allergic"))
			Expect(svc.lastReq.DateOfBirth).To(Equal(time.Date(1985, 12, 10, 0, 0, 0, 0, time.UTC)))

			var got map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
			Expect(got).To(HaveKeyWithValue("id", BeNumerically("==", 11)))
			Expect(got).To(HaveKeyWithValue("date_of_birth", "1985-12-10"))
		})

		It("should reject missing and malformed fields", func() {
			rec := do(http.MethodPost, "/patients", `{"first_name":"Ada","date_of_birth":"10/12/1985","email":"nope"}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(svc.calls).To(BeZero())

			var body transport.ErrorResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Error.Code).To(Equal(internal.ErrCodeValidationFailed))
			Expect(rec.Body.String()).To(ContainSubstring("last_name is required"))
			Expect(rec.Body.String()).To(ContainSubstring("date_of_birth must be a valid date"))
			Expect(rec.Body.String()).To(ContainSubstring("email must be a valid email address"))
		})

		It("should reject a birth date in the future", func() {
			future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
			rec := do(http.MethodPost, "/patients", `{"first_name":"Ada","last_name":"L","date_of_birth":"`+future+`"}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("date cannot be in the future"))
		})

		It("should reject a body that is not an object", func() {
			rec := do(http.MethodPost, "/patients", `[1,2]`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("List", func() {
		It("should pass the filter through", func() {
			rec := do(http.MethodGet, "/patients?search=love&limit=10&offset=20&include_inactive=true", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(svc.lastFilter).To(Equal(patient.Filter{Search: "love", IncludeInactive: true, Limit: 10, Offset: 20}))

			var got patient.ListResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
			Expect(got.Total).To(Equal(int64(1)))
			Expect(got.Items).To(HaveLen(1))
		})

		It("should reject a negative limit", func() {
			rec := do(http.MethodGet, "/patients?limit=-1", "")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Get", func() {
		It("should answer 404 for an unknown patient", func() {
			rec := do(http.MethodGet, "/patients/99", "")
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("should answer 400 for a bad id", func() {
			rec := do(http.MethodGet, "/patients/abc", "")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Update", func() {
		It("should validate the full body", func() {
			rec := do(http.MethodPut, "/patients/11", `{"first_name":"Ada"}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			rec = do(http.MethodPut, "/patients/11", `{"first_name":"Ada","last_name":"King","date_of_birth":"1985-12-10"}`)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(svc.lastReq.LastName).To(Equal("King"))
		})
	})

	Describe("Delete", func() {
		It("should answer 204", func() {
			rec := do(http.MethodDelete, "/patients/11", "")
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(svc.deleted).To(Equal(int64(11)))
		})
	})
})
