package indicators

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"orion-screener/internal/models"
)

// candleGen generates valid candle data with realistic OHLCV values.
func candleGen() gopter.Gen {
	return gen.Struct(reflect.TypeOf(models.Candle{}), map[string]gopter.Gen{
		"Open":   gen.Float64Range(1.0, 1000.0),
		"High":   gen.Float64Range(1.0, 1000.0),
		"Low":    gen.Float64Range(1.0, 1000.0),
		"Close":  gen.Float64Range(1.0, 1000.0),
		"Volume": gen.Int64Range(1, 10000000),
	}).Map(func(c models.Candle) models.Candle {
		// Ensure OHLC constraints: High >= max(Open, Close), Low <= min(Open, Close).
		c.High = math.Max(c.High, math.Max(c.Open, c.Close))
		c.Low = math.Min(c.Low, math.Min(c.Open, c.Close))
		return c
	})
}

// candleSliceGen generates an ordered daily series of valid candles.
func candleSliceGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, candleGen()).Map(func(candles []models.Candle) []models.Candle {
		for len(candles) < minLen {
			candles = append(candles, candles[len(candles)-1])
		}
		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := range candles {
			candles[i].Timestamp = start.AddDate(0, 0, i)
		}
		return candles
	})
}

// Property: RSI is bounded to [0, 100] for any valid series, and never NaN.
func TestRSIBoundsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("RSI within [0, 100]", prop.ForAll(
		func(candles []models.Candle) bool {
			values, err := NewRSI(RSIPeriod).Calculate(candles)
			if err != nil {
				return false
			}
			for i := RSIPeriod; i < len(values); i++ {
				v := values[i]
				if math.IsNaN(v) || v < 0 || v > 100 {
					return false
				}
			}
			return true
		},
		candleSliceGen(MinBars, 120),
	))

	properties.TestingRun(t)
}

// Property: the SMA over a window equals the arithmetic mean of the
// closes in that window, for every index where it is defined.
func TestSMAMeanProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("SMA equals windowed mean", prop.ForAll(
		func(candles []models.Candle) bool {
			const period = ShortSMAPeriod
			values, err := NewSMA(period).Calculate(candles)
			if err != nil {
				return false
			}
			for i := period - 1; i < len(candles); i++ {
				var total float64
				for j := i - period + 1; j <= i; j++ {
					total += candles[j].Close
				}
				if math.Abs(values[i]-total/period) > 1e-6 {
					return false
				}
			}
			return true
		},
		candleSliceGen(ShortSMAPeriod, 120),
	))

	properties.TestingRun(t)
}

// Property: a strictly rising series always reads overbought and a
// strictly falling one oversold.
func TestRSIMonotonicProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("monotonic series pin RSI to the extremes", prop.ForAll(
		func(start, step float64) bool {
			up := candlesFromCloses(risingCloses(20, start, step))
			rsiUp, err := NewRSI(RSIPeriod).Latest(up)
			if err != nil || rsiUp != 100 {
				return false
			}
			down := candlesFromCloses(fallingCloses(20, start+100, step))
			rsiDown, err := NewRSI(RSIPeriod).Latest(down)
			return err == nil && rsiDown == 0
		},
		gen.Float64Range(10.0, 500.0),
		gen.Float64Range(0.1, 5.0),
	))

	properties.TestingRun(t)
}
