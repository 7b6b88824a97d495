package services

import (
	"context"
	"fmt"

	"catalog-sync-service/internal/clients"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/normalize"
	"catalog-sync-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// EanOemStrategy maps local products to external ids through the remote
// identifier match index. EAN pages are processed first, then OEM, then PCD;
// a local ref matched by an earlier phase is never reassigned by a later one.
type EanOemStrategy struct {
	cfg         *config.Config
	mappingRepo repository.MappingRepositoryInterface
	productRepo repository.ProductRepositoryInterface
	cacheRepo   repository.MappingCacheRepositoryInterface
	client      clients.CatalogClient
}

var _ StrategyRunner = (*EanOemStrategy)(nil)

// NewEanOemStrategy creates a new EAN/OEM strategy
func NewEanOemStrategy(
	cfg *config.Config,
	mappingRepo repository.MappingRepositoryInterface,
	productRepo repository.ProductRepositoryInterface,
	cacheRepo repository.MappingCacheRepositoryInterface,
	client clients.CatalogClient,
) *EanOemStrategy {
	return &EanOemStrategy{
		cfg:         cfg,
		mappingRepo: mappingRepo,
		productRepo: productRepo,
		cacheRepo:   cacheRepo,
		client:      client,
	}
}

// matchPhase binds one match kind to its local lookup map and normalizer.
type matchPhase struct {
	kind      clients.MatchKind
	lookup    map[string][]models.LocalRef
	normalize func(string) string
}

// refKey identifies a local ref inside the setted guard set.
func refKey(ref models.LocalRef) string {
	return ref.ProductID.String() + "|" + ref.ProductVersionID.String()
}

// Run rebuilds the mapping table from the remote match index.
func (s *EanOemStrategy) Run(ctx context.Context) (models.RunCounters, error) {
	var counters models.RunCounters

	eanMap, err := s.buildLookup(ctx, s.cfg.EANSource, normalize.EAN)
	if err != nil {
		return counters, fmt.Errorf("failed to build EAN lookup: %w", err)
	}
	oemMap, err := s.buildLookup(ctx, s.cfg.OEMSource, normalize.OEM)
	if err != nil {
		return counters, fmt.Errorf("failed to build OEM lookup: %w", err)
	}
	pcdMap, err := s.buildLookup(ctx, s.cfg.PCDSource, normalize.OEM)
	if err != nil {
		return counters, fmt.Errorf("failed to build PCD lookup: %w", err)
	}

	if err := s.mappingRepo.Truncate(ctx); err != nil {
		return counters, err
	}

	buffer := newMappingBuffer(s.mappingRepo, s.cfg.MappingInsertBatchSize)
	setted := make(map[string]bool)

	phases := []matchPhase{
		{kind: clients.MatchEAN, lookup: eanMap, normalize: normalize.EAN},
		{kind: clients.MatchOEM, lookup: oemMap, normalize: normalize.OEM},
		{kind: clients.MatchPCD, lookup: pcdMap, normalize: normalize.OEM},
	}

	for _, phase := range phases {
		if len(phase.lookup) == 0 {
			logrus.WithField("kind", phase.kind).Info("No local identifiers for match phase, skipping")
			continue
		}
		if err := s.runPhase(ctx, phase, buffer, setted, &counters); err != nil {
			// pagination contract failures abort the whole strategy;
			// batches flushed so far remain committed
			return counters, err
		}
	}

	if err := buffer.flush(ctx); err != nil {
		return counters, err
	}
	counters.MappingsInserted = buffer.inserted

	logrus.WithFields(logrus.Fields{
		"matched":  counters.ProductsMatched,
		"inserted": counters.MappingsInserted,
	}).Info("EAN/OEM mapping completed")

	return counters, nil
}

// buildLookup reads identifiers from the local catalog into a normalized
// lookup map.
func (s *EanOemStrategy) buildLookup(ctx context.Context, source repository.IdentifierSource, normalizeFn func(string) string) (map[string][]models.LocalRef, error) {
	rows, err := s.productRepo.IdentifierRows(ctx, source)
	if err != nil {
		return nil, err
	}

	lookup := make(map[string][]models.LocalRef, len(rows))
	for _, row := range rows {
		key := normalizeFn(row.Value)
		if key == "" {
			continue
		}
		lookup[key] = append(lookup[key], models.LocalRef{
			ProductID:        row.ProductID,
			ProductVersionID: row.ProductVersionID,
			ParentID:         row.ParentID,
		})
	}
	return lookup, nil
}

// runPhase processes all remote match pages of one kind. A previous run that
// walked every page of this kind leaves a completeness-marked cache; only then
// does replay short-circuit the remote fetch, so an aborted walk can never
// starve the next run of pages it has not seen. The cache is purgeable through
// the admin API when a full refetch is wanted.
func (s *EanOemStrategy) runPhase(ctx context.Context, phase matchPhase, buffer *mappingBuffer, setted map[string]bool, counters *models.RunCounters) error {
	if s.cacheRepo != nil {
		replayed, err := s.replayCache(ctx, phase, buffer, setted, counters)
		if err != nil {
			return err
		}
		if replayed {
			return nil
		}
	}

	resolved := make(map[int64][]models.LocalRef)

	page := 1
	availablePages := 1

	for page <= availablePages {
		result, err := s.client.FetchMatchPage(ctx, phase.kind, page)
		if err != nil {
			return err
		}
		availablePages = result.Page.AvailablePages

		for _, match := range result.Matches {
			for _, value := range match.Values {
				key := phase.normalize(value)
				if key == "" {
					continue
				}
				for _, ref := range phase.lookup[key] {
					if setted[refKey(ref)] {
						continue
					}
					if err := buffer.add(ctx, match.ExternalID, ref); err != nil {
						return err
					}
					setted[refKey(ref)] = true
					resolved[match.ExternalID] = append(resolved[match.ExternalID], ref)
					counters.ProductsMatched++
				}
			}
		}

		page++
	}

	if s.cacheRepo != nil {
		s.storePhaseCache(ctx, phase.kind, resolved)
	}

	return nil
}

// replayCache feeds a completeness-marked cache into the buffer. Returns
// false when the cache must not be trusted and the remote walk has to run.
func (s *EanOemStrategy) replayCache(ctx context.Context, phase matchPhase, buffer *mappingBuffer, setted map[string]bool, counters *models.RunCounters) (bool, error) {
	complete, err := s.cacheRepo.IsComplete(ctx, phase.kind)
	if err != nil {
		logrus.WithError(err).WithField("kind", phase.kind).Warn("Mapping cache read failed, falling back to remote fetch")
		return false, nil
	}
	if !complete {
		return false, nil
	}

	cached, err := s.cacheRepo.Entries(ctx, phase.kind)
	if err != nil {
		logrus.WithError(err).WithField("kind", phase.kind).Warn("Mapping cache read failed, falling back to remote fetch")
		return false, nil
	}
	if len(cached) == 0 {
		return false, nil
	}

	for externalID, refs := range cached {
		for _, ref := range refs {
			if setted[refKey(ref)] {
				continue
			}
			if err := buffer.add(ctx, externalID, ref); err != nil {
				return false, err
			}
			setted[refKey(ref)] = true
			counters.ProductsMatched++
		}
	}
	logrus.WithFields(logrus.Fields{
		"kind":    phase.kind,
		"entries": len(cached),
	}).Info("Match phase served from mapping cache")
	return true, nil
}

// storePhaseCache persists the resolutions of a completed page walk and
// marks the kind complete. Writes are best effort; the marker is withheld if
// any entry failed to write.
func (s *EanOemStrategy) storePhaseCache(ctx context.Context, kind clients.MatchKind, resolved map[int64][]models.LocalRef) {
	for externalID, refs := range resolved {
		if err := s.cacheRepo.Put(ctx, kind, externalID, refs); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"kind":       kind,
				"externalId": externalID,
			}).Warn("Mapping cache write failed")
			return
		}
	}
	if err := s.cacheRepo.MarkComplete(ctx, kind); err != nil {
		logrus.WithError(err).WithField("kind", kind).Warn("Mapping cache completeness marker write failed")
	}
}
