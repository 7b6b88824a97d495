package services

import (
	"context"
	"fmt"

	"catalog-sync-service/internal/clients"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DeviceSyncService reconciles device applicability: which devices each mapped
// product fits, and which devices, brands, series and types are enabled as a
// consequence. After a successful run an entity is enabled iff it is reachable
// from a link row produced by that run.
type DeviceSyncService struct {
	cfg         *config.Config
	mappingRepo repository.MappingRepositoryInterface
	deviceRepo  repository.DeviceRepositoryInterface
	client      clients.CatalogClient
}

// NewDeviceSyncService creates a new device sync service
func NewDeviceSyncService(
	cfg *config.Config,
	mappingRepo repository.MappingRepositoryInterface,
	deviceRepo repository.DeviceRepositoryInterface,
	client clients.CatalogClient,
) *DeviceSyncService {
	return &DeviceSyncService{
		cfg:         cfg,
		mappingRepo: mappingRepo,
		deviceRepo:  deviceRepo,
		client:      client,
	}
}

// Run executes the algorithm selected in config.
func (s *DeviceSyncService) Run(ctx context.Context) (models.RunCounters, error) {
	return s.RunAlgorithm(ctx, s.cfg.Algorithm)
}

// RunAlgorithm executes the given algorithm variant.
func (s *DeviceSyncService) RunAlgorithm(ctx context.Context, algorithm models.SyncAlgorithm) (models.RunCounters, error) {
	switch algorithm {
	case models.AlgorithmFullRebuild:
		return s.runFullRebuild(ctx)
	case models.AlgorithmDifferential:
		return s.runDifferential(ctx)
	default:
		return models.RunCounters{}, fmt.Errorf("unsupported sync algorithm %q", algorithm)
	}
}

// idAccumulator collects the brand/series/type ids seen while walking device
// applicability, for the bulk enable at the end of a run.
type idAccumulator struct {
	brands map[uuid.UUID]bool
	series map[uuid.UUID]bool
	types  map[uuid.UUID]bool
}

func newIDAccumulator() *idAccumulator {
	return &idAccumulator{
		brands: make(map[uuid.UUID]bool),
		series: make(map[uuid.UUID]bool),
		types:  make(map[uuid.UUID]bool),
	}
}

func (a *idAccumulator) observe(device models.Device) {
	a.brands[device.BrandID] = true
	a.series[device.SeriesID] = true
	a.types[device.TypeID] = true
}

func keys(set map[uuid.UUID]bool) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// runFullRebuild disables everything, deletes all links and rebuilds the link
// table from scratch. An error mid-run leaves entities disabled until the next
// successful run.
func (s *DeviceSyncService) runFullRebuild(ctx context.Context) (models.RunCounters, error) {
	var counters models.RunCounters

	for _, step := range []struct {
		disable  func(context.Context) (int64, error)
		disabled *int
	}{
		{s.deviceRepo.DisableAllDevices, &counters.DevicesDisabled},
		{s.deviceRepo.DisableAllBrands, &counters.BrandsDisabled},
		{s.deviceRepo.DisableAllSeries, &counters.SeriesDisabled},
		{s.deviceRepo.DisableAllTypes, &counters.TypesDisabled},
	} {
		n, err := step.disable(ctx)
		if err != nil {
			return counters, err
		}
		*step.disabled += int(n)
	}

	deleted, err := s.deviceRepo.DeleteAllLinks(ctx)
	if err != nil {
		return counters, err
	}
	counters.LinksDeleted = int(deleted)

	mapping, err := s.mappingRepo.All(ctx, true)
	if err != nil {
		return counters, err
	}

	externalIDs := make([]int64, 0, len(mapping))
	for id := range mapping {
		externalIDs = append(externalIDs, id)
	}

	acc := newIDAccumulator()

	for start := 0; start < len(externalIDs); start += s.cfg.LookupChunkSize {
		end := start + s.cfg.LookupChunkSize
		if end > len(externalIDs) {
			end = len(externalIDs)
		}
		chunk := externalIDs[start:end]

		result, err := s.client.FetchProductList(ctx, chunk, clients.FilterApplicationIn)
		if err != nil {
			return counters, err
		}

		links, wsIDs := s.collectLinks(result.Products, mapping)
		if len(wsIDs) == 0 {
			continue
		}

		devices, err := s.deviceRepo.ByWSIDs(ctx, wsIDs)
		if err != nil {
			return counters, err
		}
		deviceByWSID := make(map[int64]models.Device, len(devices))
		for _, device := range devices {
			deviceByWSID[device.WSID] = device
			acc.observe(device)
		}

		enabled, err := s.deviceRepo.EnableDevicesByWSIDs(ctx, wsIDs)
		if err != nil {
			return counters, err
		}
		counters.DevicesEnabled += int(enabled)

		rows := resolveLinks(links, deviceByWSID)
		if err := s.insertLinkChunks(ctx, rows, false, &counters); err != nil {
			return counters, err
		}
	}

	if err := s.enableAccumulated(ctx, acc, &counters); err != nil {
		return counters, err
	}

	logrus.WithFields(logrus.Fields{
		"algorithm":      models.AlgorithmFullRebuild,
		"linksInserted":  counters.LinksInserted,
		"devicesEnabled": counters.DevicesEnabled,
	}).Info("Device sync completed")

	return counters, nil
}

// runDifferential rebuilds links per mapped-product chunk with scoped deletes,
// then reconciles enabled flags against exactly the accumulated sets. Safe to
// re-run.
func (s *DeviceSyncService) runDifferential(ctx context.Context) (models.RunCounters, error) {
	var counters models.RunCounters

	mapping, err := s.mappingRepo.All(ctx, true)
	if err != nil {
		return counters, err
	}
	if len(mapping) == 0 {
		logrus.Warn("Device sync skipped: mapping table is empty")
		return counters, nil
	}

	// group external ids by local product so deletes stay scoped to the
	// products actually touched in a chunk
	externalsByProduct := make(map[uuid.UUID][]int64)
	for externalID, refs := range mapping {
		for _, ref := range refs {
			externalsByProduct[ref.ProductID] = append(externalsByProduct[ref.ProductID], externalID)
		}
	}
	productIDs := make([]uuid.UUID, 0, len(externalsByProduct))
	for id := range externalsByProduct {
		productIDs = append(productIDs, id)
	}

	acc := newIDAccumulator()
	deviceIDs := make(map[uuid.UUID]bool)

	for start := 0; start < len(productIDs); start += s.cfg.EnableBatchSize {
		end := start + s.cfg.EnableBatchSize
		if end > len(productIDs) {
			end = len(productIDs)
		}
		chunkProducts := productIDs[start:end]

		externalSet := make(map[int64]bool)
		for _, productID := range chunkProducts {
			for _, externalID := range externalsByProduct[productID] {
				externalSet[externalID] = true
			}
		}
		externalIDs := make([]int64, 0, len(externalSet))
		for id := range externalSet {
			externalIDs = append(externalIDs, id)
		}

		result, err := s.client.FetchProductList(ctx, externalIDs, clients.FilterApplicationIn)
		if err != nil {
			return counters, err
		}

		deleted, err := s.deviceRepo.DeleteLinksByProductIDs(ctx, chunkProducts)
		if err != nil {
			return counters, err
		}
		counters.LinksDeleted += int(deleted)

		links, wsIDs := s.collectLinks(result.Products, mapping)
		if len(wsIDs) == 0 {
			continue
		}

		devices, err := s.deviceRepo.ByWSIDs(ctx, wsIDs)
		if err != nil {
			return counters, err
		}
		deviceByWSID := make(map[int64]models.Device, len(devices))
		for _, device := range devices {
			deviceByWSID[device.WSID] = device
			deviceIDs[device.ID] = true
			acc.observe(device)
		}

		rows := resolveLinks(links, deviceByWSID)
		if err := s.insertLinkChunks(ctx, rows, true, &counters); err != nil {
			return counters, err
		}
	}

	// reconcile enabled flags: exactly the accumulated sets end up enabled
	type reconcile struct {
		ids      []uuid.UUID
		enable   func(context.Context, []uuid.UUID) (int64, error)
		disable  func(context.Context, []uuid.UUID) (int64, error)
		enabled  *int
		disabled *int
	}
	steps := []reconcile{
		{keys(deviceIDs), s.deviceRepo.EnableDevicesByIDs, s.deviceRepo.DisableDevicesNotIn, &counters.DevicesEnabled, &counters.DevicesDisabled},
		{keys(acc.brands), s.deviceRepo.EnableBrandsByIDs, s.deviceRepo.DisableBrandsNotIn, &counters.BrandsEnabled, &counters.BrandsDisabled},
		{keys(acc.series), s.deviceRepo.EnableSeriesByIDs, s.deviceRepo.DisableSeriesNotIn, &counters.SeriesEnabled, &counters.SeriesDisabled},
		{keys(acc.types), s.deviceRepo.EnableTypesByIDs, s.deviceRepo.DisableTypesNotIn, &counters.TypesEnabled, &counters.TypesDisabled},
	}
	for _, step := range steps {
		for start := 0; start < len(step.ids); start += s.cfg.EnableBatchSize {
			end := start + s.cfg.EnableBatchSize
			if end > len(step.ids) {
				end = len(step.ids)
			}
			n, err := step.enable(ctx, step.ids[start:end])
			if err != nil {
				return counters, err
			}
			*step.enabled += int(n)
		}
		n, err := step.disable(ctx, step.ids)
		if err != nil {
			return counters, err
		}
		*step.disabled += int(n)
	}

	logrus.WithFields(logrus.Fields{
		"algorithm":      models.AlgorithmDifferential,
		"products":       len(productIDs),
		"linksInserted":  counters.LinksInserted,
		"devicesEnabled": counters.DevicesEnabled,
	}).Info("Device sync completed")

	return counters, nil
}

// pendingLink pairs a remote device id with the local refs it applies to.
type pendingLink struct {
	wsID int64
	ref  models.LocalRef
}

// collectLinks flattens the application-in lists of a product page into
// (device wsID, local ref) pairs plus the distinct wsID set.
func (s *DeviceSyncService) collectLinks(products []clients.ProductEntry, mapping map[int64][]models.LocalRef) ([]pendingLink, []int64) {
	var links []pendingLink
	wsIDSet := make(map[int64]bool)

	for _, product := range products {
		refs := mapping[product.ExternalID]
		for _, wsID := range product.ApplicationIn {
			wsIDSet[wsID] = true
			for _, ref := range refs {
				links = append(links, pendingLink{wsID: wsID, ref: ref})
			}
		}
	}

	wsIDs := make([]int64, 0, len(wsIDSet))
	for id := range wsIDSet {
		wsIDs = append(wsIDs, id)
	}
	return links, wsIDs
}

// resolveLinks turns pending links into rows, dropping pairs whose device is
// unknown locally. Duplicates are collapsed on the composite key.
func resolveLinks(links []pendingLink, deviceByWSID map[int64]models.Device) []models.DeviceProductLink {
	seen := make(map[models.DeviceProductLink]bool, len(links))
	rows := make([]models.DeviceProductLink, 0, len(links))
	for _, link := range links {
		device, ok := deviceByWSID[link.wsID]
		if !ok {
			continue
		}
		row := models.DeviceProductLink{
			DeviceID:         device.ID,
			ProductID:        link.ref.ProductID,
			ProductVersionID: link.ref.ProductVersionID,
		}
		if seen[row] {
			continue
		}
		seen[row] = true
		rows = append(rows, row)
	}
	return rows
}

func (s *DeviceSyncService) insertLinkChunks(ctx context.Context, rows []models.DeviceProductLink, upsert bool, counters *models.RunCounters) error {
	for start := 0; start < len(rows); start += s.cfg.LinkInsertBatchSize {
		end := start + s.cfg.LinkInsertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := s.deviceRepo.InsertLinks(ctx, rows[start:end], upsert); err != nil {
			return err
		}
		counters.LinksInserted += end - start
	}
	return nil
}

func (s *DeviceSyncService) enableAccumulated(ctx context.Context, acc *idAccumulator, counters *models.RunCounters) error {
	n, err := s.deviceRepo.EnableBrandsByIDs(ctx, keys(acc.brands))
	if err != nil {
		return err
	}
	counters.BrandsEnabled += int(n)

	n, err = s.deviceRepo.EnableSeriesByIDs(ctx, keys(acc.series))
	if err != nil {
		return err
	}
	counters.SeriesEnabled += int(n)

	n, err = s.deviceRepo.EnableTypesByIDs(ctx, keys(acc.types))
	if err != nil {
		return err
	}
	counters.TypesEnabled += int(n)
	return nil
}
