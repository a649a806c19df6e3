package marketdata

import (
	"sort"

	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
	"github.com/rxtech-lab/argo-ohlcv/pkg/marketdata/provider"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
	// AdjustedClose reports whether daily rows carry an adjusted close.
	AdjustedClose bool `json:"adjustedClose"`
}

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[provider.ProviderType]ProviderInfo{
	provider.ProviderPolygon: {
		Name:          string(provider.ProviderPolygon),
		DisplayName:   "Polygon.io",
		Description:   "US stock market aggregates with split and dividend adjusted daily closes",
		RequiresAuth:  true,
		AdjustedClose: true,
	},
	provider.ProviderBinance: {
		Name:          string(provider.ProviderBinance),
		DisplayName:   "Binance",
		Description:   "Cryptocurrency exchange klines for spot trading pairs",
		RequiresAuth:  false,
		AdjustedClose: false,
	},
}

// GetSupportedProviders returns the names of all supported providers, sorted.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	sort.Strings(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[provider.ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	return info, nil
}
