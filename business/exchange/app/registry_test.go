package app

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/defisim/arbengine/business/exchange/domain"
)

type nopOracle struct{}

func (nopOracle) GetPrices(ctx context.Context, assets []string) (map[string]decimal.Decimal, error) {
	return map[string]decimal.Decimal{}, nil
}

func (nopOracle) ExecuteTrade(ctx context.Context, asset string, amount decimal.Decimal, side domain.Side) (domain.TradeResult, error) {
	return domain.Failed("not tradable"), nil
}

func TestRegisterAndLookup(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(domain.NewExchange("binance", domain.VenueCEX), nopOracle{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := registry.Register(domain.NewExchange("binance", domain.VenueCEX), nopOracle{}); err == nil {
		t.Error("duplicate Register succeeded")
	}
	if err := registry.Register(domain.Exchange{Name: "broken"}, nil); err == nil {
		t.Error("Register with nil oracle succeeded")
	}

	if _, ok := registry.Oracle("binance"); !ok {
		t.Error("Oracle lookup failed for registered exchange")
	}
	if _, ok := registry.Oracle("unknown"); ok {
		t.Error("Oracle lookup succeeded for unknown exchange")
	}

	ex, ok := registry.Exchange("binance")
	if !ok || ex.Kind != domain.VenueCEX {
		t.Errorf("Exchange = (%+v, %v)", ex, ok)
	}
	if registry.Len() != 1 {
		t.Errorf("Len = %d, want 1", registry.Len())
	}
}

func TestListSortedByName(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"uniswap", "binance", "kraken"} {
		if err := registry.Register(domain.NewExchange(name, domain.VenueCEX), nopOracle{}); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}

	exchanges := registry.List()
	want := []string{"binance", "kraken", "uniswap"}
	for i, ex := range exchanges {
		if ex.Name != want[i] {
			t.Errorf("List[%d] = %s, want %s", i, ex.Name, want[i])
		}
	}
}

func TestSetStatus(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(domain.NewExchange("binance", domain.VenueCEX), nopOracle{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	registry.SetStatus("binance", domain.StatusError)
	ex, _ := registry.Exchange("binance")
	if ex.Status != domain.StatusError {
		t.Errorf("Status = %s, want error", ex.Status)
	}

	// Unknown names are ignored.
	registry.SetStatus("unknown", domain.StatusConnected)
}
