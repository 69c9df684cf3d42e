package service

import (
	"context"
	"strings"

	"phone-shop/internal/models"
	"phone-shop/internal/money"
	"phone-shop/internal/repository"

	"github.com/shopspring/decimal"
)

// CatalogItemInput 新建商品或配件，Variant 为手机型号或配件类型
type CatalogItemInput struct {
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	Variant      string          `json:"variant"`
	Stock        int             `json:"stock"`
	BuyingPrice  decimal.Decimal `json:"buying_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Currency     money.Currency  `json:"currency"`
}

func (in *CatalogItemInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", in.Name, "required")
	}
	if in.Stock < 0 {
		return invalid("stock", in.Stock, "must not be negative")
	}
	if in.BuyingPrice.IsNegative() || in.SellingPrice.IsNegative() {
		return invalid("price", "", "prices must not be negative")
	}
	if in.Currency == "" {
		in.Currency = money.USD
	}
	if !in.Currency.IsTrading() {
		return invalid("currency", in.Currency, "must be USD or LC")
	}
	return nil
}

// AddCatalogItem 新增商品或配件
func (e *Engine) AddCatalogItem(ctx context.Context, kind string, in CatalogItemInput) (*repository.CatalogItem, error) {
	if kind != models.KindProduct && kind != models.KindAccessory {
		return nil, invalid("kind", kind, "must be product or accessory")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var item repository.CatalogItem
	err := e.inTx(ctx, func(s *repository.Store) error {
		var ref repository.CatalogRef
		if kind == models.KindProduct {
			p := models.Product{Name: in.Name, Brand: in.Brand, Model: in.Variant, Stock: in.Stock,
				BuyingPrice: in.BuyingPrice, SellingPrice: in.SellingPrice, Currency: string(in.Currency)}
			if err := s.Catalog.CreateProduct(&p); err != nil {
				return err
			}
			ref = repository.ProductRef(p.ID)
		} else {
			a := models.Accessory{Name: in.Name, Brand: in.Brand, Type: in.Variant, Stock: in.Stock,
				BuyingPrice: in.BuyingPrice, SellingPrice: in.SellingPrice, Currency: string(in.Currency)}
			if err := s.Catalog.CreateAccessory(&a); err != nil {
				return err
			}
			ref = repository.AccessoryRef(a.ID)
		}
		var err error
		item, err = s.Catalog.GetItem(ref)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("ref", item.Ref.String()).Str("name", item.Name).Int("stock", item.Stock).Msg("catalog item added")
	return &item, nil
}

// ListCatalog 按类别列出条目
func (e *Engine) ListCatalog(ctx context.Context, kind string, includeArchived bool) ([]repository.CatalogItem, error) {
	if kind != models.KindProduct && kind != models.KindAccessory {
		return nil, invalid("kind", kind, "must be product or accessory")
	}
	var items []repository.CatalogItem
	err := e.inTx(ctx, func(s *repository.Store) error {
		var err error
		items, err = s.Catalog.List(kind, includeArchived)
		return err
	})
	return items, err
}

// ArchiveCatalogItem 下架条目
func (e *Engine) ArchiveCatalogItem(ctx context.Context, ref repository.CatalogRef) error {
	if !ref.Valid() {
		return invalid("ref", ref, "must reference a product or accessory")
	}
	err := e.inTx(ctx, func(s *repository.Store) error {
		if err := s.Catalog.Archive(ref); err != nil {
			return notFound(err, ref.Kind, ref.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.log.Info().Str("ref", ref.String()).Msg("catalog item archived")
	return nil
}
