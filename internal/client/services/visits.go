package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/dmitrijs2005/fieldvisits/internal/client/session"
	"github.com/dmitrijs2005/fieldvisits/internal/client/visits"
	"github.com/dmitrijs2005/fieldvisits/internal/clock"
)

// VisitBackend is the part of the backend client the visit service uses.
type VisitBackend interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	UpdateVisit(ctx context.Context, v models.Visit) error
}

// IdentitySource yields the acting user.
type IdentitySource interface {
	Identity() (models.Identity, bool)
}

type AttachmentLinker interface {
	Link(ctx context.Context, v models.Visit) (string, error)
}

// VisitService serves the client and visit views. Every call fetches the
// dataset afresh; nothing is kept between calls.
type VisitService interface {
	Clients(ctx context.Context, criteria models.FilterCriteria) ([]models.ClientRollup, error)
	Client(ctx context.Context, clientID string) (*models.Client, error)
	Today(ctx context.Context, onlyMine bool) ([]models.BucketEntry, error)
	Week(ctx context.Context, onlyMine bool) ([]models.BucketEntry, error)
	Visit(ctx context.Context, visitID string) (models.BucketEntry, bool, error)
	// Edit loads the visit, checks the edit window, lets apply change it,
	// sends the update and returns the visit as re-fetched afterwards.
	Edit(ctx context.Context, visitID string, apply func(*models.Visit) error) (models.Visit, error)
	AttachmentLink(ctx context.Context, visitID string) (string, error)
	Count(ctx context.Context) (clients int, visits int, err error)
}

type visitService struct {
	backend  VisitBackend
	identity IdentitySource
	clock    clock.Clock
	linker   AttachmentLinker
}

func NewVisitService(backend VisitBackend, identity IdentitySource, c clock.Clock, linker AttachmentLinker) VisitService {
	return &visitService{backend: backend, identity: identity, clock: c, linker: linker}
}

func (s *visitService) actor() (models.Identity, error) {
	id, ok := s.identity.Identity()
	if !ok {
		return models.Identity{}, session.ErrNotAuthenticated
	}
	return id, nil
}

func (s *visitService) load(ctx context.Context) ([]models.Client, models.Identity, error) {
	actor, err := s.actor()
	if err != nil {
		return nil, models.Identity{}, err
	}
	clients, err := s.backend.ListClients(ctx)
	if err != nil {
		return nil, models.Identity{}, fmt.Errorf("list clients: %w", err)
	}
	return clients, actor, nil
}

func (s *visitService) Clients(ctx context.Context, criteria models.FilterCriteria) ([]models.ClientRollup, error) {
	if err := validateFilter(criteria); err != nil {
		return nil, err
	}
	clients, actor, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if criteria.Locale == "" {
		criteria.Locale = actor.Language
	}
	return visits.Aggregate(clients, criteria, actor.ID), nil
}

func (s *visitService) Client(ctx context.Context, clientID string) (*models.Client, error) {
	clients, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := visits.FindClient(clients, clientID)
	if !ok {
		return nil, ErrClientNotFound
	}
	return c, nil
}

func (s *visitService) Today(ctx context.Context, onlyMine bool) ([]models.BucketEntry, error) {
	clients, actor, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return visits.TodayBucket(clients, s.clock.Now(), onlyMine, actor.ID), nil
}

func (s *visitService) Week(ctx context.Context, onlyMine bool) ([]models.BucketEntry, error) {
	clients, actor, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return visits.WeekBucket(clients, s.clock.Now(), onlyMine, actor.ID), nil
}

// Visit returns the visit, its client and whether the actor may edit it now.
func (s *visitService) Visit(ctx context.Context, visitID string) (models.BucketEntry, bool, error) {
	clients, actor, err := s.load(ctx)
	if err != nil {
		return models.BucketEntry{}, false, err
	}
	e, ok := visits.FindVisit(clients, visitID)
	if !ok {
		return models.BucketEntry{}, false, ErrVisitNotFound
	}
	return e, visits.CanEditAt(e.Visit, actor, s.clock.Now()), nil
}

func (s *visitService) Edit(ctx context.Context, visitID string, apply func(*models.Visit) error) (models.Visit, error) {
	clients, actor, err := s.load(ctx)
	if err != nil {
		return models.Visit{}, err
	}
	e, ok := visits.FindVisit(clients, visitID)
	if !ok {
		return models.Visit{}, ErrVisitNotFound
	}

	if err := visits.NewEditPolicy(s.clock).Check(e.Visit, actor); err != nil {
		return models.Visit{}, err
	}

	updated := e.Visit
	if err := apply(&updated); err != nil {
		return models.Visit{}, err
	}
	// Identity fields are not editable.
	updated.VisitID, updated.ClientID, updated.UserID, updated.CreatedAt =
		e.Visit.VisitID, e.Visit.ClientID, e.Visit.UserID, e.Visit.CreatedAt

	if err := s.backend.UpdateVisit(ctx, updated); err != nil {
		return models.Visit{}, fmt.Errorf("update visit: %w", err)
	}

	clients, err = s.backend.ListClients(ctx)
	if err != nil {
		return models.Visit{}, fmt.Errorf("reload clients: %w", err)
	}
	e, ok = visits.FindVisit(clients, visitID)
	if !ok {
		return models.Visit{}, ErrVisitNotFound
	}
	return e.Visit, nil
}

func (s *visitService) AttachmentLink(ctx context.Context, visitID string) (string, error) {
	clients, _, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	e, ok := visits.FindVisit(clients, visitID)
	if !ok {
		return "", ErrVisitNotFound
	}
	return s.linker.Link(ctx, e.Visit)
}

func (s *visitService) Count(ctx context.Context) (int, int, error) {
	clients, _, err := s.load(ctx)
	if err != nil {
		return 0, 0, err
	}
	n := 0
	for _, c := range clients {
		n += len(c.Visits)
	}
	return len(clients), n, nil
}
