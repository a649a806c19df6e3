package provider

import (
	"fmt"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// aggregate returns the multiplier and timespan of an interval in the
// aggregate vocabulary shared by both providers.
func aggregate(interval types.Interval) (int, models.Timespan, error) {
	switch interval {
	case types.IntervalOneMinute:
		return 1, models.Minute, nil
	case types.IntervalFiveMinutes:
		return 5, models.Minute, nil
	case types.IntervalFifteenMinutes:
		return 15, models.Minute, nil
	case types.IntervalThirtyMinutes:
		return 30, models.Minute, nil
	case types.IntervalOneHour:
		return 1, models.Hour, nil
	case types.IntervalFourHours:
		return 4, models.Hour, nil
	case types.IntervalOneDay:
		return 1, models.Day, nil
	default:
		return 0, "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", interval)
	}
}

// binanceInterval converts an interval to a Binance kline interval string.
func binanceInterval(interval types.Interval) (string, error) {
	multiplier, timespan, err := aggregate(interval)
	if err != nil {
		return "", err
	}

	return convertTimespanToBinanceInterval(timespan, multiplier)
}

// convertTimespanToBinanceInterval converts the polygon timespan and multiplier to a Binance interval string.
// Binance intervals: 1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func convertTimespanToBinanceInterval(timespan models.Timespan, multiplier int) (string, error) {
	switch timespan {
	case models.Minute:
		return fmt.Sprintf("%dm", multiplier), nil
	case models.Hour:
		return fmt.Sprintf("%dh", multiplier), nil
	case models.Day:
		return fmt.Sprintf("%dd", multiplier), nil
	case models.Week:
		if multiplier == 1 {
			return "1w", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported weekly multiplier for Binance: %d", multiplier)
	case models.Month:
		if multiplier == 1 {
			return "1M", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported monthly multiplier for Binance: %d", multiplier)
	default:
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported timespan for Binance: %s", timespan)
	}
}
