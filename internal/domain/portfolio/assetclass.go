package portfolio

import "strings"

// AssetClass is the closed set of product categories the allocation model
// recognises. Free-form product-type tags normalise into it; anything
// unrecognised lands in AssetClassOther rather than leaking open-ended keys
// into allocation maps.
type AssetClass string

const (
	AssetClassEquity       AssetClass = "equity"
	AssetClassMutualFund   AssetClass = "mutual_fund"
	AssetClassBond         AssetClass = "bond"
	AssetClassFixedDeposit AssetClass = "fixed_deposit"
	AssetClassInsurance    AssetClass = "insurance"
	AssetClassGold         AssetClass = "gold"
	AssetClassRealEstate   AssetClass = "real_estate"
	AssetClassOther        AssetClass = "other"
)

// assetClassAliases maps the product-type tags seen in the ledger onto the
// closed enum. Keys are lower-case with spaces collapsed to underscores.
var assetClassAliases = map[string]AssetClass{
	"equity":        AssetClassEquity,
	"stock":         AssetClassEquity,
	"shares":        AssetClassEquity,
	"mutual_fund":   AssetClassMutualFund,
	"mf":            AssetClassMutualFund,
	"bond":          AssetClassBond,
	"debenture":     AssetClassBond,
	"fixed_deposit": AssetClassFixedDeposit,
	"fd":            AssetClassFixedDeposit,
	"insurance":     AssetClassInsurance,
	"ulip":          AssetClassInsurance,
	"gold":          AssetClassGold,
	"real_estate":   AssetClassRealEstate,
	"property":      AssetClassRealEstate,
}

// NormalizeAssetClass maps a free-form product-type tag to an AssetClass.
func NormalizeAssetClass(productType string) AssetClass {
	key := strings.ToLower(strings.TrimSpace(productType))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	if class, ok := assetClassAliases[key]; ok {
		return class
	}
	return AssetClassOther
}

// Sector names used by the static asset-class-to-sector lookup.
const (
	SectorFinancialServices = "Financial Services"
	SectorFixedIncome       = "Fixed Income"
	SectorInsurance         = "Insurance"
	SectorCommodities       = "Commodities"
	SectorRealEstate        = "Real Estate"
	SectorOthers            = "Others"
)

// sectorByClass is the static sector lookup. Classes without an entry map
// to SectorOthers.
var sectorByClass = map[AssetClass]string{
	AssetClassMutualFund:   SectorFinancialServices,
	AssetClassBond:         SectorFixedIncome,
	AssetClassFixedDeposit: SectorFixedIncome,
	AssetClassInsurance:    SectorInsurance,
	AssetClassGold:         SectorCommodities,
	AssetClassRealEstate:   SectorRealEstate,
}

// SectorFor returns the reporting sector for an asset class.
func SectorFor(class AssetClass) string {
	if sector, ok := sectorByClass[class]; ok {
		return sector
	}
	return SectorOthers
}

// GeographicRegion is the single region every buy is attributed to. The
// model does not support multi-region attribution; this is a known
// simplification of the valuation model, not a placeholder to fill in per
// product.
const GeographicRegion = "India"
