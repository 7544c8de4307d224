package models

// PriceParams holds the normalized inputs for a CoinGecko /simple/price call.
type PriceParams struct {
	// IDs lists coin ids in request order, e.g. "bitcoin".
	IDs []string `json:"ids"`

	// Currencies lists quote currencies, e.g. "usd", "eur".
	Currencies []string `json:"vs_currencies"`

	IncludeMarketCap     bool `json:"include_market_cap"`
	Include24hrVol       bool `json:"include_24hr_vol"`
	Include24hrChange    bool `json:"include_24hr_change"`
	IncludeLastUpdatedAt bool `json:"include_last_updated_at"`
}

// SimplePrice is the /simple/price payload: coin id → metric → value.
// Values are json.Number (or nil) when decoded with UseNumber, so they
// re-encode exactly as the API sent them.
type SimplePrice map[string]map[string]any
