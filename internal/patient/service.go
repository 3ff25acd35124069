package patient

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/activity"
	"github.com/frahmantamala/practice-management/internal/role"
)

type RepositoryAPI interface {
	// GetByID returns internal.ErrPatientNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*Patient, error)
	List(ctx context.Context, f Filter) ([]Patient, int64, error)
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	Deactivate(ctx context.Context, id int64) error
}

type Service struct {
	repo     RepositoryAPI
	recorder activity.Recorder
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		logger:   logger,
	}
}

func (s *Service) Create(ctx context.Context, req PatientRequest) (*Patient, error) {
	p := &Patient{IsActive: true}
	apply(p, req)
	if actor, ok := internal.ActorID(ctx); ok {
		p.CreatedByID = &actor
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.logger.InfoContext(ctx, "patient created", "patient_id", p.ID)
	s.record(ctx, activity.ActionCreate, p, "registered "+p.FullName())
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.record(ctx, activity.ActionView, p, "viewed "+p.FullName())
	return p, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Patient, int64, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	patients, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}

func (s *Service) Update(ctx context.Context, id int64, req PatientRequest) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, internal.ErrPatientNotFound
	}

	apply(p, req)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	s.record(ctx, activity.ActionUpdate, p, "updated "+p.FullName())
	return p, nil
}

// Delete deactivates the patient. Records are never removed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return internal.ErrPatientNotFound
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate patient: %w", err)
	}

	s.record(ctx, activity.ActionDelete, p, "archived "+p.FullName())
	return nil
}

func apply(p *Patient, req PatientRequest) {
	p.FirstName = req.FirstName
	p.LastName = req.LastName
	p.DateOfBirth = req.DateOfBirth
	p.Email = req.Email
	p.Phone = req.Phone
	p.Address = req.Address
	p.Notes = req.Notes
}

func (s *Service) record(ctx context.Context, action string, p *Patient, description string) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.Record(ctx, activity.Entry{
		Action:      action,
		Module:      string(role.ModulePatients),
		ObjectType:  "patient",
		ObjectID:    strconv.FormatInt(p.ID, 10),
		Description: description,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record activity", "action", action, "error", err)
	}
}
