package alchemy

import "github.com/shopspring/decimal"

// FloorPriceResponse is the body of getFloorPrice. Marketplaces that could
// not be priced carry only Error.
type FloorPriceResponse struct {
	OpenSea   *Marketplace `json:"openSea"`
	LooksRare *Marketplace `json:"looksRare"`
}

type Marketplace struct {
	FloorPrice    decimal.NullDecimal `json:"floorPrice"`
	PriceCurrency string              `json:"priceCurrency"`
	CollectionURL string              `json:"collectionUrl"`
	RetrievedAt   string              `json:"retrievedAt"`
	Error         string              `json:"error"`
}

// OpenSeaFloor returns the OpenSea listing when it carries a non-zero floor.
func (r *FloorPriceResponse) OpenSeaFloor() (*Marketplace, bool) {
	if r == nil || r.OpenSea == nil || !r.OpenSea.FloorPrice.Valid || r.OpenSea.FloorPrice.Decimal.IsZero() {
		return nil, false
	}
	return r.OpenSea, true
}
