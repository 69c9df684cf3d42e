package repository

import (
	"errors"
	"fmt"

	"phone-shop/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrStockChanged is returned when a conditional stock update matched no row.
var ErrStockChanged = errors.New("stock changed or insufficient")

// CatalogRef points at one catalog row: a product or an accessory.
type CatalogRef struct {
	Kind string `json:"kind"` // product / accessory
	ID   uint   `json:"id"`
}

func ProductRef(id uint) CatalogRef   { return CatalogRef{Kind: models.KindProduct, ID: id} }
func AccessoryRef(id uint) CatalogRef { return CatalogRef{Kind: models.KindAccessory, ID: id} }

// RefFromIDs rebuilds a reference from the nullable id columns stored on
// sale and purchase lines.
func RefFromIDs(productID, accessoryID *uint) (CatalogRef, bool) {
	switch {
	case productID != nil:
		return ProductRef(*productID), true
	case accessoryID != nil:
		return AccessoryRef(*accessoryID), true
	}
	return CatalogRef{}, false
}

// IDs returns the reference as the pair of nullable id columns.
func (r CatalogRef) IDs() (productID, accessoryID *uint) {
	id := r.ID
	if r.Kind == models.KindAccessory {
		return nil, &id
	}
	return &id, nil
}

func (r CatalogRef) Valid() bool {
	return r.ID > 0 && (r.Kind == models.KindProduct || r.Kind == models.KindAccessory)
}

func (r CatalogRef) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.ID)
}

// CatalogItem is the part of a catalog row the engine reads.
type CatalogItem struct {
	Ref          CatalogRef      `json:"ref"`
	Name         string          `json:"name"`
	Stock        int             `json:"stock"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Currency     string          `json:"currency"`
	Archived     bool            `json:"archived"`
}

// Catalog reads and adjusts stock for products and accessories.
type Catalog struct {
	db *gorm.DB
}

func (c *Catalog) model(kind string) (interface{}, error) {
	switch kind {
	case models.KindProduct:
		return &models.Product{}, nil
	case models.KindAccessory:
		return &models.Accessory{}, nil
	}
	return nil, fmt.Errorf("unknown catalog kind %q", kind)
}

// GetItem returns the row behind ref. A missing row wraps gorm.ErrRecordNotFound.
func (c *Catalog) GetItem(ref CatalogRef) (CatalogItem, error) {
	switch ref.Kind {
	case models.KindProduct:
		var p models.Product
		if err := c.db.First(&p, ref.ID).Error; err != nil {
			return CatalogItem{}, fmt.Errorf("get %s: %w", ref, err)
		}
		return CatalogItem{Ref: ref, Name: p.Name, Stock: p.Stock, UnitCost: p.BuyingPrice,
			SellingPrice: p.SellingPrice, Currency: p.Currency, Archived: p.Archived}, nil
	case models.KindAccessory:
		var a models.Accessory
		if err := c.db.First(&a, ref.ID).Error; err != nil {
			return CatalogItem{}, fmt.Errorf("get %s: %w", ref, err)
		}
		return CatalogItem{Ref: ref, Name: a.Name, Stock: a.Stock, UnitCost: a.BuyingPrice,
			SellingPrice: a.SellingPrice, Currency: a.Currency, Archived: a.Archived}, nil
	}
	return CatalogItem{}, fmt.Errorf("get %s: %w", ref, gorm.ErrRecordNotFound)
}

// DecrementStock takes qty units out of stock. It refuses to go below zero.
func (c *Catalog) DecrementStock(ref CatalogRef, qty int) error {
	m, err := c.model(ref.Kind)
	if err != nil {
		return err
	}
	res := c.db.Model(m).
		Where("id = ? AND stock >= ?", ref.ID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("decrement %s: %w", ref, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("decrement %s by %d: %w", ref, qty, ErrStockChanged)
	}
	return nil
}

// RestoreStock puts qty units back.
func (c *Catalog) RestoreStock(ref CatalogRef, qty int) error {
	m, err := c.model(ref.Kind)
	if err != nil {
		return err
	}
	res := c.db.Model(m).Where("id = ?", ref.ID).Update("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("restore %s: %w", ref, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("restore %s: %w", ref, gorm.ErrRecordNotFound)
	}
	return nil
}

// ReactivateIfArchived clears the archived flag so returned stock shows up again.
func (c *Catalog) ReactivateIfArchived(ref CatalogRef) error {
	m, err := c.model(ref.Kind)
	if err != nil {
		return err
	}
	if err := c.db.Model(m).Where("id = ? AND archived = ?", ref.ID, true).
		Update("archived", false).Error; err != nil {
		return fmt.Errorf("reactivate %s: %w", ref, err)
	}
	return nil
}

// Archive hides an item from the active catalog without deleting it.
func (c *Catalog) Archive(ref CatalogRef) error {
	m, err := c.model(ref.Kind)
	if err != nil {
		return err
	}
	res := c.db.Model(m).Where("id = ?", ref.ID).Update("archived", true)
	if res.Error != nil {
		return fmt.Errorf("archive %s: %w", ref, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("archive %s: %w", ref, gorm.ErrRecordNotFound)
	}
	return nil
}

// CreateProduct inserts a product row.
func (c *Catalog) CreateProduct(p *models.Product) error {
	return c.db.Create(p).Error
}

// CreateAccessory inserts an accessory row.
func (c *Catalog) CreateAccessory(a *models.Accessory) error {
	return c.db.Create(a).Error
}

// List returns items of one kind, archived ones only when asked.
func (c *Catalog) List(kind string, includeArchived bool) ([]CatalogItem, error) {
	q := c.db
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}
	var out []CatalogItem
	switch kind {
	case models.KindProduct:
		var rows []models.Product
		if err := q.Order("id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, p := range rows {
			out = append(out, CatalogItem{Ref: ProductRef(p.ID), Name: p.Name, Stock: p.Stock,
				UnitCost: p.BuyingPrice, SellingPrice: p.SellingPrice, Currency: p.Currency, Archived: p.Archived})
		}
	case models.KindAccessory:
		var rows []models.Accessory
		if err := q.Order("id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, a := range rows {
			out = append(out, CatalogItem{Ref: AccessoryRef(a.ID), Name: a.Name, Stock: a.Stock,
				UnitCost: a.BuyingPrice, SellingPrice: a.SellingPrice, Currency: a.Currency, Archived: a.Archived})
		}
	default:
		return nil, fmt.Errorf("unknown catalog kind %q", kind)
	}
	return out, nil
}
