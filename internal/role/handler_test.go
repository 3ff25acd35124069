package role_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/errorlog"
	"github.com/frahmantamala/practice-management/internal/role"
	"github.com/frahmantamala/practice-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubService struct {
	grantIn   role.GrantInput
	grantErr  error
	revoked   string
	revokeErr error
}

func (s *stubService) ListRoles(context.Context) ([]role.Role, error) {
	return role.DefaultRoles(), nil
}

func (s *stubService) AssignRole(_ context.Context, userID int64, name string) (*role.Role, error) {
	if name != role.RoleNurse {
		return nil, internal.ErrRoleNotFound
	}
	return &role.Role{ID: 4, Name: name, IsActive: true}, nil
}

func (s *stubService) GrantPermission(_ context.Context, in role.GrantInput) (*role.Grant, error) {
	s.grantIn = in
	if s.grantErr != nil {
		return nil, s.grantErr
	}
	return &role.Grant{ID: 1, UserID: in.UserID, Module: role.Module(in.Module), Level: role.Level(in.Level), IsActive: true}, nil
}

func (s *stubService) RevokePermission(_ context.Context, _ int64, module string) error {
	s.revoked = module
	return s.revokeErr
}

func (s *stubService) ListPermissions(context.Context, int64) ([]role.Grant, error) {
	return []role.Grant{{ID: 1, Module: role.ModuleFinance, Level: role.LevelView, IsActive: true}}, nil
}

func (s *stubService) EffectivePermissions(context.Context, int64) (map[role.Module]role.Level, error) {
	return map[role.Module]role.Level{role.ModuleFinance: role.LevelView}, nil
}

var _ = Describe("Role Handler", func() {
	var (
		svc    *stubService
		router chi.Router
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	errorBody := func(rec *httptest.ResponseRecorder) transport.ErrorBody {
		var resp transport.ErrorResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return resp.Error
	}

	BeforeEach(func() {
		svc = &stubService{}
		lg := discardLogger()
		h := role.NewHandler(transport.NewBaseHandler(lg, errorlog.NewService(lg, lg)), svc)

		router = chi.NewRouter()
		router.Get("/roles", h.ListRoles)
		router.Put("/users/{id}/role", h.AssignRole)
		router.Get("/users/{id}/permissions", h.ListPermissions)
		router.Post("/users/{id}/permissions", h.GrantPermission)
		router.Delete("/users/{id}/permissions/{module}", h.RevokePermission)
	})

	It("should list the roles", func() {
		rec := do(http.MethodGet, "/roles", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp role.RolesResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Roles).To(HaveLen(6))
	})

	It("should assign a role", func() {
		rec := do(http.MethodPut, "/users/7/role", `{"role":"nurse"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"name":"nurse"`))
	})

	It("should answer 404 for an unknown role", func() {
		rec := do(http.MethodPut, "/users/7/role", `{"role":"janitor"}`)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should reject a missing role name and a bad id", func() {
		rec := do(http.MethodPut, "/users/7/role", `{}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))

		rec = do(http.MethodPut, "/users/abc/role", `{"role":"nurse"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return grants with the effective levels", func() {
		rec := do(http.MethodGet, "/users/7/permissions", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp role.PermissionsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.UserID).To(Equal(int64(7)))
		Expect(resp.Grants).To(HaveLen(1))
		Expect(resp.Effective).To(HaveKeyWithValue(role.ModuleFinance, role.LevelView))
	})

	It("should create a grant", func() {
		rec := do(http.MethodPost, "/users/7/permissions", `{"module":"finance","permission_level":"edit"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(svc.grantIn.UserID).To(Equal(int64(7)))
		Expect(svc.grantIn.Level).To(Equal("edit"))
	})

	It("should surface validation failures as 400", func() {
		svc.grantErr = internal.NewValidationFieldError("module", "unknown module: billing", internal.ErrCodeInvalidModule)
		rec := do(http.MethodPost, "/users/7/permissions", `{"module":"billing","permission_level":"edit"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(errorBody(rec).Type).To(Equal(internal.ErrorTypeValidation))
	})

	It("should reject unknown body fields", func() {
		rec := do(http.MethodPost, "/users/7/permissions", `{"module":"finance","level":"edit"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should revoke a grant", func() {
		rec := do(http.MethodDelete, "/users/7/permissions/reports", "")
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(svc.revoked).To(Equal("reports"))
	})

	It("should hide internal errors behind an error id", func() {
		svc.revokeErr = context.DeadlineExceeded
		rec := do(http.MethodDelete, "/users/7/permissions/reports", "")
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))

		body := errorBody(rec)
		Expect(body.ErrorID).To(HavePrefix("ERR_"))
		Expect(body.Message).To(Equal(errorlog.MsgTimeout))
		Expect(rec.Body.String()).NotTo(ContainSubstring("deadline"))
	})
})
