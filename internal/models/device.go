package models

import (
	"time"

	"github.com/google/uuid"
)

// Device is a device record from the remote catalog, materialized locally.
// Enabled is derived state: true iff the device appears in at least one
// DeviceProductLink row produced by the latest successful sync run.
type Device struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	WSID     int64     `gorm:"column:ws_id;not null;uniqueIndex:idx_catalog_devices_ws" json:"wsId"`
	BrandID  uuid.UUID `gorm:"type:uuid;not null;index:idx_catalog_devices_brand" json:"brandId"`
	SeriesID uuid.UUID `gorm:"type:uuid;not null;index:idx_catalog_devices_series" json:"seriesId"`
	TypeID   uuid.UUID `gorm:"type:uuid;not null;index:idx_catalog_devices_type" json:"typeId"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Enabled  bool      `gorm:"not null;default:false;index:idx_catalog_devices_enabled" json:"enabled"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for Device
func (Device) TableName() string {
	return "catalog_devices"
}

// DeviceBrand groups devices by manufacturer. Enabled is derived: true iff at
// least one enabled device references the brand.
type DeviceBrand struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	WSID    int64     `gorm:"column:ws_id;not null;uniqueIndex:idx_catalog_device_brands_ws" json:"wsId"`
	Name    string    `gorm:"type:varchar(255);not null" json:"name"`
	Enabled bool      `gorm:"not null;default:false" json:"enabled"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for DeviceBrand
func (DeviceBrand) TableName() string {
	return "catalog_device_brands"
}

// DeviceSeries groups devices below a brand. Same derived-enabled contract as
// DeviceBrand.
type DeviceSeries struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	WSID    int64     `gorm:"column:ws_id;not null;uniqueIndex:idx_catalog_device_series_ws" json:"wsId"`
	Name    string    `gorm:"type:varchar(255);not null" json:"name"`
	Enabled bool      `gorm:"not null;default:false" json:"enabled"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for DeviceSeries
func (DeviceSeries) TableName() string {
	return "catalog_device_series"
}

// DeviceType classifies devices (phone, tablet, ...). Same derived-enabled
// contract as DeviceBrand.
type DeviceType struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	WSID    int64     `gorm:"column:ws_id;not null;uniqueIndex:idx_catalog_device_types_ws" json:"wsId"`
	Name    string    `gorm:"type:varchar(255);not null" json:"name"`
	Enabled bool      `gorm:"not null;default:false" json:"enabled"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for DeviceType
func (DeviceType) TableName() string {
	return "catalog_device_types"
}

// DeviceProductLink records that a local product revision is applicable to a
// device. Composite primary key makes re-inserts idempotent under upsert.
type DeviceProductLink struct {
	DeviceID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"deviceId"`
	ProductID        uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_catalog_device_product_links_product" json:"productId"`
	ProductVersionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"productVersionId"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for DeviceProductLink
func (DeviceProductLink) TableName() string {
	return "catalog_device_product_links"
}
