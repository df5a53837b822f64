package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
)

// Client is the backend contract used by the session and visit services.
type Client interface {
	Close() error
	Probe(ctx context.Context) (models.ProbeResult, error)
	Login(ctx context.Context, username, password string) (bool, error)
	Logout(ctx context.Context) error
	ListClients(ctx context.Context) ([]models.Client, error)
	UpdateVisit(ctx context.Context, v models.Visit) error
	TokenExpiry() (time.Time, bool)
}
