package repository

import (
	"context"

	"catalog-sync-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceRepositoryInterface abstracts device/brand/series/type state and the
// device-product link table for the synchronizers
type DeviceRepositoryInterface interface {
	ByWSIDs(ctx context.Context, wsIDs []int64) ([]models.Device, error)

	EnableDevicesByWSIDs(ctx context.Context, wsIDs []int64) (int64, error)
	EnableDevicesByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	DisableAllDevices(ctx context.Context) (int64, error)
	DisableDevicesNotIn(ctx context.Context, ids []uuid.UUID) (int64, error)

	EnableBrandsByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	DisableAllBrands(ctx context.Context) (int64, error)
	DisableBrandsNotIn(ctx context.Context, ids []uuid.UUID) (int64, error)

	EnableSeriesByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	DisableAllSeries(ctx context.Context) (int64, error)
	DisableSeriesNotIn(ctx context.Context, ids []uuid.UUID) (int64, error)

	EnableTypesByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	DisableAllTypes(ctx context.Context) (int64, error)
	DisableTypesNotIn(ctx context.Context, ids []uuid.UUID) (int64, error)

	DeleteAllLinks(ctx context.Context) (int64, error)
	DeleteLinksByProductIDs(ctx context.Context, productIDs []uuid.UUID) (int64, error)
	InsertLinks(ctx context.Context, links []models.DeviceProductLink, upsert bool) error
}

// DeviceRepository handles database operations for devices, their grouping
// entities and device-product links
type DeviceRepository struct {
	db *gorm.DB
}

var _ DeviceRepositoryInterface = (*DeviceRepository)(nil)

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// ByWSIDs retrieves devices by their external ids in one batch lookup.
func (r *DeviceRepository) ByWSIDs(ctx context.Context, wsIDs []int64) ([]models.Device, error) {
	if len(wsIDs) == 0 {
		return nil, nil
	}
	var devices []models.Device
	err := r.db.WithContext(ctx).Where("ws_id IN ?", wsIDs).Find(&devices).Error
	return devices, err
}

// EnableDevicesByWSIDs flips enabled on for all devices with the given
// external ids.
func (r *DeviceRepository) EnableDevicesByWSIDs(ctx context.Context, wsIDs []int64) (int64, error) {
	if len(wsIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Device{}).
		Where("ws_id IN ?", wsIDs).
		Update("enabled", true)
	return res.RowsAffected, res.Error
}

// EnableDevicesByIDs flips enabled on for the given device ids.
func (r *DeviceRepository) EnableDevicesByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return r.setEnabledByIDs(ctx, &models.Device{}, ids, true)
}

// DisableAllDevices flips enabled off for every device.
func (r *DeviceRepository) DisableAllDevices(ctx context.Context) (int64, error) {
	return r.disableAll(ctx, &models.Device{})
}

// DisableDevicesNotIn flips enabled off for every device outside the given
// id set. An empty set disables all devices.
func (r *DeviceRepository) DisableDevicesNotIn(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return r.disableNotIn(ctx, &models.Device{}, ids)
}

// EnableBrandsByIDs flips enabled on for the given brand ids.
func (r *DeviceRepository) EnableBrandsByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return r.setEnabledByIDs(ctx, &models.DeviceBrand{}, ids, true)
}

// DisableAllBrands flips enabled off for every brand.
func (r *DeviceRepository) DisableAllBrands(ctx context.Context) (int64, error) {
	return r.disableAll(ctx, &models.DeviceBrand{})
}

// DisableBrandsNotIn flips enabled off for every brand outside the given set.
func (r *DeviceRepository) DisableBrandsNotIn(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return r.disableNotIn(ctx, &models.DeviceBrand{}, ids)
}

// EnableSeriesByIDs flips enabled on for the given series ids.
func (r *DeviceRepository) EnableSeriesByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return r.setEnabledByIDs(ctx, &models.DeviceSeries{}, ids, true)
}

// DisableAllSeries flips enabled off for every series.
func (r *DeviceRepository) DisableAllSeries(ctx context.Context) (int64, error) {
	return r.disableAll(ctx, &models.DeviceSeries{})
}

// DisableSeriesNotIn flips enabled off for every series outside the given set.
func (r *DeviceRepository) DisableSeriesNotIn(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return r.disableNotIn(ctx, &models.DeviceSeries{}, ids)
}

// EnableTypesByIDs flips enabled on for the given device type ids.
func (r *DeviceRepository) EnableTypesByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return r.setEnabledByIDs(ctx, &models.DeviceType{}, ids, true)
}

// DisableAllTypes flips enabled off for every device type.
func (r *DeviceRepository) DisableAllTypes(ctx context.Context) (int64, error) {
	return r.disableAll(ctx, &models.DeviceType{})
}

// DisableTypesNotIn flips enabled off for every device type outside the set.
func (r *DeviceRepository) DisableTypesNotIn(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return r.disableNotIn(ctx, &models.DeviceType{}, ids)
}

func (r *DeviceRepository) setEnabledByIDs(ctx context.Context, model interface{}, ids []uuid.UUID, enabled bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(model).
		Where("id IN ?", ids).
		Update("enabled", enabled)
	return res.RowsAffected, res.Error
}

func (r *DeviceRepository) disableAll(ctx context.Context, model interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(model).
		Where("enabled = ?", true).
		Update("enabled", false)
	return res.RowsAffected, res.Error
}

func (r *DeviceRepository) disableNotIn(ctx context.Context, model interface{}, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return r.disableAll(ctx, model)
	}
	res := r.db.WithContext(ctx).Model(model).
		Where("enabled = ? AND id NOT IN ?", true, ids).
		Update("enabled", false)
	return res.RowsAffected, res.Error
}

// DeleteAllLinks removes every device-product link row.
func (r *DeviceRepository) DeleteAllLinks(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.DeviceProductLink{})
	return res.RowsAffected, res.Error
}

// DeleteLinksByProductIDs removes link rows scoped to the given product ids.
func (r *DeviceRepository) DeleteLinksByProductIDs(ctx context.Context, productIDs []uuid.UUID) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Delete(&models.DeviceProductLink{})
	return res.RowsAffected, res.Error
}

// InsertLinks inserts device-product link rows. With upsert set, conflicts on
// the composite key are ignored so overlapping chunks are safe to retry.
func (r *DeviceRepository) InsertLinks(ctx context.Context, links []models.DeviceProductLink, upsert bool) error {
	if len(links) == 0 {
		return nil
	}
	tx := r.db.WithContext(ctx)
	if upsert {
		tx = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "device_id"}, {Name: "product_id"}, {Name: "product_version_id"},
			},
			DoNothing: true,
		})
	}
	return tx.Create(&links).Error
}
