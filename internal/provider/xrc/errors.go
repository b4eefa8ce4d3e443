package xrc

import (
	"encoding/json"
	"fmt"
)

// RateError is an error variant returned by the exchange rate canister.
type RateError struct {
	Kind        string
	Code        uint32
	Description string
}

const kindOther = "Other"

var rateErrorText = map[string]string{
	"AnonymousPrincipalNotAllowed": "Anonymous Principal Not Allowed",
	"CryptoQuoteAssetNotFound":     "Crypto Quote Asset Not Found",
	"FailedToAcceptCycles":         "Failed To Accept Cycles",
	"ForexBaseAssetNotFound":       "Forex Base Asset Not Found",
	"CryptoBaseAssetNotFound":      "Crypto Base Asset Not Found",
	"StablecoinRateTooFewRates":    "Stablecoin Rate Too Few Rates",
	"ForexAssetsNotFound":          "Forex Assets Not Found",
	"InconsistentRatesReceived":    "Inconsistent Rates Received",
	"RateLimited":                  "Rate Limited",
	"StablecoinRateZeroRate":       "Stablecoin Rate Zero Rate",
	"ForexInvalidTimestamp":        "Forex Invalid Timestamp",
	"NotEnoughCycles":              "Not Enough Cycles",
	"ForexQuoteAssetNotFound":      "Forex Quote Asset Not Found",
	"StablecoinRateNotFound":       "Stablecoin Rate Not Found",
	"Pending":                      "Pending",
}

func (e *RateError) Error() string {
	if e.Kind == kindOther {
		return fmt.Sprintf("Other: Code %d, Description %s", e.Code, e.Description)
	}
	if text, ok := rateErrorText[e.Kind]; ok {
		return text
	}
	return e.Kind
}

// UnmarshalJSON accepts a unit variant as a bare string ("RateLimited")
// or the Other variant as {"Other": {"code": 1, "description": "..."}}.
func (e *RateError) UnmarshalJSON(data []byte) error {
	var unit string
	if err := json.Unmarshal(data, &unit); err == nil {
		*e = RateError{Kind: unit}
		return nil
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("parsing rate error: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("parsing rate error: expected one variant, got %d", len(tagged))
	}
	for kind, payload := range tagged {
		*e = RateError{Kind: kind}
		if kind != kindOther {
			return nil
		}
		var other struct {
			Code        uint32 `json:"code"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal(payload, &other); err != nil {
			return fmt.Errorf("parsing Other rate error: %w", err)
		}
		e.Code, e.Description = other.Code, other.Description
	}
	return nil
}
