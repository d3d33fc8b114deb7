package services

import (
	"context"
	"strings"

	"app-registry-cms/models"
	"app-registry-cms/repositories"
)

type AgencyService interface {
	CreateAgency(ctx context.Context, req models.CreateAgencyRequest) (*models.Agency, error)
	GetAgencies(ctx context.Context) ([]models.Agency, error)
	GetAgency(ctx context.Context, id uint) (*models.Agency, error)
}

type agencyService struct {
	agencyRepo repositories.AgencyRepository
}

func NewAgencyService(agencyRepo repositories.AgencyRepository) AgencyService {
	return &agencyService{agencyRepo: agencyRepo}
}

func (s *agencyService) CreateAgency(ctx context.Context, req models.CreateAgencyRequest) (*models.Agency, error) {
	if req.ParentID != nil {
		if _, err := s.agencyRepo.GetByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	agency := &models.Agency{
		Name:      strings.TrimSpace(req.Name),
		Shortname: strings.TrimSpace(req.Shortname),
		InfoURL:   req.InfoURL,
		ParentID:  req.ParentID,
	}
	if err := s.agencyRepo.Create(ctx, agency); err != nil {
		return nil, err
	}
	return agency, nil
}

func (s *agencyService) GetAgencies(ctx context.Context) ([]models.Agency, error) {
	return s.agencyRepo.GetAll(ctx)
}

func (s *agencyService) GetAgency(ctx context.Context, id uint) (*models.Agency, error) {
	return s.agencyRepo.GetByID(ctx, id)
}

// CounterService recounts every agency and tag counter.
type CounterService interface {
	RefreshAll(ctx context.Context) error
}

type counterService struct {
	counters repositories.CounterCache
}

func NewCounterService(counters repositories.CounterCache) CounterService {
	return &counterService{counters: counters}
}

func (s *counterService) RefreshAll(ctx context.Context) error {
	return s.counters.RefreshAll(ctx)
}
