package models

// SymbolStatusTrading is the normalized status of an actively tradable pair.
const SymbolStatusTrading = "TRADING"

// Symbol is venue-qualified reference data for one trading pair.
// Precision fields are zero when the venue does not report them.
type Symbol struct {
	Venue             string
	Name              string
	BaseAsset         string
	QuoteAsset        string
	Status            string
	PricePrecision    int
	QuantityPrecision int
}

func (s Symbol) IsTrading() bool {
	return s.Status == SymbolStatusTrading
}
