package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/options-backtester/internal/model"
)

func leg(dir model.Direction, optType model.OptionType, qty int, strike, entryPrice float64) model.TradeLeg {
	return model.TradeLeg{
		Config: model.LegConfig{
			Direction:  dir,
			OptionType: optType,
			Quantity:   qty,
		},
		ResolvedStrike: strike,
		EntryPrice:     entryPrice,
	}
}

func TestBuyingPowerVerticalSpread(t *testing.T) {
	// buy 95 put + sell 100 put: defined risk, width times min quantity
	legs := []model.TradeLeg{
		leg(model.DirectionBuy, model.OptionPut, 1, 95, 1.20),
		leg(model.DirectionSell, model.OptionPut, 1, 100, 2.50),
	}
	assert.Equal(t, 500.0, BuyingPower(legs, 100))
}

func TestBuyingPowerVerticalSpreadMinQuantity(t *testing.T) {
	legs := []model.TradeLeg{
		leg(model.DirectionBuy, model.OptionPut, 2, 95, 1.20),
		leg(model.DirectionSell, model.OptionPut, 3, 100, 2.50),
	}
	assert.Equal(t, 1000.0, BuyingPower(legs, 100))
}

func TestBuyingPowerVerticalSupersedesOtherLegs(t *testing.T) {
	// an extra naked call must not add margin once a vertical is detected
	legs := []model.TradeLeg{
		leg(model.DirectionBuy, model.OptionPut, 1, 95, 1.20),
		leg(model.DirectionSell, model.OptionPut, 1, 100, 2.50),
		leg(model.DirectionSell, model.OptionCall, 1, 110, 0.80),
	}
	assert.Equal(t, 500.0, BuyingPower(legs, 100))
}

func TestBuyingPowerNakedPut(t *testing.T) {
	// short 95 put at spot 100, 2.50 premium, qty 1:
	// A = 20%*100*100 - 5*100 + 250 = 1750
	// B = 10%*95*100 + 250 = 1200
	legs := []model.TradeLeg{
		leg(model.DirectionSell, model.OptionPut, 1, 95, 2.50),
	}
	assert.Equal(t, 1750.0, BuyingPower(legs, 100))
}

func TestBuyingPowerNakedDeepOTMUsesMethodB(t *testing.T) {
	// short 70 put at spot 100: the OTM offset guts method A
	// A = 2000 - 30*100 + 50 = -950
	// B = 10%*70*100 + 50 = 750
	legs := []model.TradeLeg{
		leg(model.DirectionSell, model.OptionPut, 1, 70, 0.50),
	}
	assert.Equal(t, 750.0, BuyingPower(legs, 100))
}

func TestBuyingPowerNakedCallUsesSpotForMethodB(t *testing.T) {
	// short 130 call at spot 100:
	// A = 2000 - 30*100 + 30 = -970
	// B = 10%*100*100 + 30 = 1030
	legs := []model.TradeLeg{
		leg(model.DirectionSell, model.OptionCall, 1, 130, 0.30),
	}
	assert.Equal(t, 1030.0, BuyingPower(legs, 100))
}

func TestBuyingPowerLongLegsFree(t *testing.T) {
	legs := []model.TradeLeg{
		leg(model.DirectionBuy, model.OptionCall, 2, 105, 3.00),
	}
	assert.Equal(t, 0.0, BuyingPower(legs, 100))
}

func TestBuyingPowerSumsNakedLegs(t *testing.T) {
	// short strangle: both naked legs contribute
	legs := []model.TradeLeg{
		leg(model.DirectionSell, model.OptionPut, 1, 95, 2.50),
		leg(model.DirectionSell, model.OptionCall, 1, 105, 2.00),
	}
	// put: A = 2000 - 500 + 250 = 1750, B = 950 + 250 = 1200 -> 1750
	// call: A = 2000 - 500 + 200 = 1700, B = 1000 + 200 = 1200 -> 1700
	assert.Equal(t, 3450.0, BuyingPower(legs, 100))
}
