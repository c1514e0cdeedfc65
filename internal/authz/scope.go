package authz

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PoiScope restricts a listing query to rows whose poi_id is in the
// authorized set. An empty set matches nothing, so unauthorized users get
// an empty list instead of an error.
func PoiScope(poiIDs []uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if len(poiIDs) == 0 {
			return tx.Where("1 = 0")
		}
		return tx.Where("poi_id IN ?", poiIDs)
	}
}

// ShipmentPoiScope restricts shipment listings by joining through the
// parent need; shipments carry no direct poi reference.
func ShipmentPoiScope(poiIDs []uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if len(poiIDs) == 0 {
			return tx.Where("1 = 0")
		}
		return tx.
			Joins("JOIN needs ON needs.id = shipments.need_id").
			Where("needs.poi_id IN ?", poiIDs)
	}
}
