package user_test

import (
	"context"
	"errors"
	"sync"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/activity"
	"github.com/frahmantamala/practice-management/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockRepository struct {
	users    map[int64]*user.User
	roles    map[string]int64
	nextID   int64
	roleUsed string
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: map[int64]*user.User{},
		roles: map[string]int64{"staff": 6, "doctor": 3},
	}
}

func (m *mockRepository) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepository) Create(_ context.Context, u *user.User, roleName string) error {
	m.roleUsed = roleName
	roleID, ok := m.roles[roleName]
	if !ok {
		return internal.ErrRoleNotFound
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return internal.ErrEmailTaken
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.RoleID = &roleID
	u.Role = roleName
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

type prefixHasher struct{}

func (prefixHasher) HashPassword(pw string) (string, error) { return "hashed:" + pw, nil }

type recordingRecorder struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (r *recordingRecorder) Record(_ context.Context, e activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

var _ = Describe("User Service", func() {
	var (
		repo     *mockRepository
		recorder *recordingRecorder
		svc      *user.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		repo = newMockRepository()
		recorder = &recordingRecorder{}
		svc = user.NewService(repo, prefixHasher{}, recorder, discardLogger())
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("should assign the default role when none is given", func() {
			u, err := svc.Create(ctx, user.CreateUserRequest{
				Email: "new@clinic.test", Name: "New Hire", Password: "Welcome#2026",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.roleUsed).To(Equal("staff"))
			Expect(u.Role).To(Equal("staff"))
			Expect(u.IsActive).To(BeTrue())
			Expect(u.PasswordHash).To(Equal("hashed:Welcome#2026"))

			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Action).To(Equal(activity.ActionCreate))
			Expect(recorder.entries[0].ObjectID).To(Equal("1"))
		})

		It("should honour an explicit role", func() {
			u, err := svc.Create(ctx, user.CreateUserRequest{
				Email: "dr@clinic.test", Name: "Dr Grey", Password: "Welcome#2026", Role: "doctor",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal("doctor"))
		})

		It("should reject weak passwords with feedback", func() {
			_, err := svc.Create(ctx, user.CreateUserRequest{
				Email: "weak@clinic.test", Name: "Weak", Password: "password1",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeWeakPassword))

			details := appErr.Details.(internal.ValidationErrors)
			messages := []string{}
			for _, d := range details.Errors {
				Expect(d.Field).To(Equal("password"))
				messages = append(messages, d.Message)
			}
			Expect(messages).To(ContainElements("Add an uppercase letter", "Add a special character"))
			Expect(repo.users).To(BeEmpty())
		})

		It("should surface repository conflicts unchanged", func() {
			req := user.CreateUserRequest{Email: "dup@clinic.test", Name: "Dup", Password: "Welcome#2026"}
			_, err := svc.Create(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Create(ctx, req)
			Expect(errors.Is(err, internal.ErrEmailTaken)).To(BeTrue())

			req.Email, req.Role = "other@clinic.test", "janitor"
			_, err = svc.Create(ctx, req)
			Expect(errors.Is(err, internal.ErrRoleNotFound)).To(BeTrue())
			Expect(recorder.entries).To(HaveLen(1))
		})
	})

	Describe("GetByID", func() {
		It("should wrap lookups that fail", func() {
			_, err := svc.GetByID(ctx, 42)
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("failed to get user by id"))
		})
	})
})
