package api

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/client"

	ordersapp "github.com/partsflow/procurement-api/internal/domains/orders/application"
)

// DefaultPriceThresholdRatio parks a selection behind approval once the
// submitted total exceeds the historical baseline by more than 15 percent.
const DefaultPriceThresholdRatio = "0.15"

// DefaultCartDebounceWindow is the quiet period before draft quantity edits
// are flushed as one batch.
const DefaultCartDebounceWindow = 400 * time.Millisecond

// Config carries environment-driven settings for the API process.
type Config struct {
	Port                 string
	PostgresDSN          string
	TemporalAddress      string
	TemporalNamespace    string
	TemporalDisabled     bool
	PriceThresholdRatio  decimal.Decimal
	UnselectedLinePolicy ordersapp.UnselectedLinePolicy
	CartDebounceWindow   time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:               envDefault("PORT", "8080"),
		PostgresDSN:        strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:    envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:  envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:   isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		CartDebounceWindow: DefaultCartDebounceWindow,
	}

	ratio, err := decimal.NewFromString(envDefault("PRICE_THRESHOLD_RATIO", DefaultPriceThresholdRatio))
	if err != nil || ratio.IsNegative() {
		return Config{}, fmt.Errorf("PRICE_THRESHOLD_RATIO must be a non-negative decimal")
	}
	cfg.PriceThresholdRatio = ratio

	switch policy := ordersapp.UnselectedLinePolicy(envDefault("UNSELECTED_LINE_POLICY", string(ordersapp.PolicyCarry))); policy {
	case ordersapp.PolicyCarry, ordersapp.PolicyRequireFull:
		cfg.UnselectedLinePolicy = policy
	default:
		return Config{}, fmt.Errorf("UNSELECTED_LINE_POLICY must be %q or %q", ordersapp.PolicyCarry, ordersapp.PolicyRequireFull)
	}

	if raw := strings.TrimSpace(os.Getenv("CART_DEBOUNCE_WINDOW")); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil || window <= 0 {
			return Config{}, fmt.Errorf("CART_DEBOUNCE_WINDOW must be a positive duration")
		}
		cfg.CartDebounceWindow = window
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
