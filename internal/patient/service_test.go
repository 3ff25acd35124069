package patient_test

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/activity"
	"github.com/frahmantamala/practice-management/internal/patient"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockRepository struct {
	patients   map[int64]*patient.Patient
	nextID     int64
	lastFilter patient.Filter
	createErr  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{patients: map[int64]*patient.Patient{}}
}

func (m *mockRepository) GetByID(_ context.Context, id int64) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, internal.ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepository) List(_ context.Context, f patient.Filter) ([]patient.Patient, int64, error) {
	m.lastFilter = f
	out := []patient.Patient{}
	for _, p := range m.patients {
		if p.IsActive || f.IncludeInactive {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockRepository) Create(_ context.Context, p *patient.Patient) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepository) Update(_ context.Context, p *patient.Patient) error {
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepository) Deactivate(_ context.Context, id int64) error {
	p, ok := m.patients[id]
	if !ok {
		return internal.ErrPatientNotFound
	}
	p.IsActive = false
	return nil
}

type recordingRecorder struct {
	entries []activity.Entry
	err     error
}

func (r *recordingRecorder) Record(_ context.Context, e activity.Entry) error {
	r.entries = append(r.entries, e)
	return r.err
}

func (r *recordingRecorder) actions() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

var _ = Describe("Patient Service", func() {
	var (
		repo     *mockRepository
		recorder *recordingRecorder
		svc      *patient.Service
		ctx      context.Context
		req      patient.PatientRequest
	)

	BeforeEach(func() {
		repo = newMockRepository()
		recorder = &recordingRecorder{}
		svc = patient.NewService(repo, recorder, discardLogger())
		ctx = internal.ContextWithUserID(context.Background(), "4")
		req = patient.PatientRequest{
			FirstName:   "Ada",
			LastName:    "Lovelace",
			DateOfBirth: time.Date(1985, 12, 10, 0, 0, 0, 0, time.UTC),
			Email:       "ada@example.test",
		}
	})

	Describe("Create", func() {
		It("should store an active patient owned by the caller", func() {
			p, err := svc.Create(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).To(Equal(int64(1)))
			Expect(p.IsActive).To(BeTrue())
			Expect(p.CreatedByID).NotTo(BeNil())
			Expect(*p.CreatedByID).To(Equal(int64(4)))

			Expect(recorder.entries).To(HaveLen(1))
			e := recorder.entries[0]
			Expect(e.Action).To(Equal(activity.ActionCreate))
			Expect(e.Module).To(Equal("patients"))
			Expect(e.ObjectType).To(Equal("patient"))
			Expect(e.ObjectID).To(Equal("1"))
		})

		It("should leave the owner empty without a caller", func() {
			p, err := svc.Create(context.Background(), req)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.CreatedByID).To(BeNil())
		})

		It("should not record activity when the insert fails", func() {
			repo.createErr = errors.New("disk full")
			_, err := svc.Create(ctx, req)
			Expect(err).To(MatchError(ContainSubstring("failed to create patient")))
			Expect(recorder.entries).To(BeEmpty())
		})

		It("should succeed when the activity log is unavailable", func() {
			recorder.err = errors.New("log down")
			_, err := svc.Create(ctx, req)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Get", func() {
		It("should return the patient and record the view", func() {
			created, _ := svc.Create(ctx, req)
			p, err := svc.Get(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.FullName()).To(Equal("Ada Lovelace"))
			Expect(recorder.actions()).To(Equal([]string{activity.ActionCreate, activity.ActionView}))
		})

		It("should report a missing patient", func() {
			_, err := svc.Get(ctx, 42)
			Expect(errors.Is(err, internal.ErrPatientNotFound)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("should clamp paging", func() {
			_, _, err := svc.List(ctx, patient.Filter{Limit: 5000, Offset: -3})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.Limit).To(Equal(patient.MaxListLimit))
			Expect(repo.lastFilter.Offset).To(Equal(0))

			_, _, err = svc.List(ctx, patient.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.Limit).To(Equal(patient.DefaultListLimit))
		})
	})

	Describe("Update", func() {
		It("should replace the details", func() {
			created, _ := svc.Create(ctx, req)
			req.LastName = "King"
			req.Phone = "+441234567890"

			p, err := svc.Update(ctx, created.ID, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.LastName).To(Equal("King"))
			Expect(repo.patients[created.ID].Phone).To(Equal("+441234567890"))
			Expect(recorder.actions()).To(ContainElement(activity.ActionUpdate))
		})

		It("should not touch archived patients", func() {
			created, _ := svc.Create(ctx, req)
			Expect(svc.Delete(ctx, created.ID)).To(Succeed())

			_, err := svc.Update(ctx, created.ID, req)
			Expect(errors.Is(err, internal.ErrPatientNotFound)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("should deactivate instead of removing", func() {
			created, _ := svc.Create(ctx, req)
			Expect(svc.Delete(ctx, created.ID)).To(Succeed())
			Expect(repo.patients).To(HaveKey(created.ID))
			Expect(repo.patients[created.ID].IsActive).To(BeFalse())
			Expect(recorder.actions()).To(ContainElement(activity.ActionDelete))
		})

		It("should report a second delete as not found", func() {
			created, _ := svc.Create(ctx, req)
			Expect(svc.Delete(ctx, created.ID)).To(Succeed())
			err := svc.Delete(ctx, created.ID)
			Expect(errors.Is(err, internal.ErrPatientNotFound)).To(BeTrue())
		})
	})
})
