package arr

import (
	"context"
	"errors"
	"fmt"

	"collection-manager/core/reconcile"

	"go.uber.org/zap"
)

// Adder adds one title by provider id.
type Adder interface {
	Add(ctx context.Context, id string, tags []string) (bool, error)
}

// Forwarder routes acquisition requests to Radarr (movies) or Sonarr (series).
type Forwarder struct {
	radarr Adder
	sonarr Adder
	logger *zap.Logger
}

// NewForwarder creates a Forwarder. Either adder may be nil.
func NewForwarder(radarr, sonarr Adder, logger *zap.Logger) *Forwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forwarder{radarr: radarr, sonarr: sonarr, logger: logger}
}

// Request implements reconcile.AcquisitionForwarder. Every request is attempted;
// failures are joined. Requests without the id the target service needs are skipped.
func (f *Forwarder) Request(ctx context.Context, requests []reconcile.AcquisitionRequest) error {
	var errs []error
	added := 0
	for _, req := range requests {
		adder, ns := f.radarr, reconcile.NamespaceTMDb
		if req.MediaType == reconcile.MediaTypeSeries {
			adder, ns = f.sonarr, reconcile.NamespaceTVDb
		}

		l := f.logger.With(
			zap.String("collection", req.Collection),
			zap.String("title", req.Item.Title),
			zap.String("media_type", string(req.MediaType)))

		if adder == nil {
			l.Debug("No acquisition service for media type")
			continue
		}
		id, ok := req.Item.ExternalID(ns)
		if !ok {
			l.Debug("Skipping acquisition without provider id", zap.String("namespace", ns))
			continue
		}

		ok, err := adder.Add(ctx, id, req.Tags)
		if err != nil {
			l.Warn("Acquisition request failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("%s %s:%s: %w", req.Item.Title, ns, id, err))
			continue
		}
		if ok {
			added++
		}
	}
	f.logger.Info("Forwarded acquisition requests", zap.Int("requests", len(requests)), zap.Int("added", added))
	return errors.Join(errs...)
}
