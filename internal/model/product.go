package model

import "github.com/shopspring/decimal"

// ProductCategory groups the catalogue for reporting.
type ProductCategory string

const (
	CategoryWine    ProductCategory = "WINE"
	CategoryBeer    ProductCategory = "BEER"
	CategorySpirits ProductCategory = "SPIRITS"
	CategoryLiqueur ProductCategory = "LIQUEUR"
	CategoryCider   ProductCategory = "CIDER"
	CategoryOther   ProductCategory = "OTHER"
)

type Product struct {
	BaseModel
	SKU            string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required,max=50"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Category       ProductCategory `gorm:"type:varchar(20);not null;default:'OTHER'" json:"category" validate:"omitempty,oneof=WINE BEER SPIRITS LIQUEUR CIDER OTHER"`
	VolumeML       int             `gorm:"default:0" json:"volume_ml" validate:"gte=0"`
	AlcoholPercent decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"alcohol_percent" validate:"dec_gte0"`
	RetailPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"retail_price" validate:"dec_gte0"`
	Unit           string          `gorm:"type:varchar(20)" json:"unit"`

	// Mirrors Inventory.Quantity; only written by inventory mutations.
	StockQuantity int  `gorm:"default:0" json:"stock_quantity"`
	IsActive      bool `gorm:"default:true" json:"is_active"`
}

func (p *Product) Active() bool {
	return p.IsActive
}
