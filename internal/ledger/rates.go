package ledger

import (
	"math/big"

	"github.com/dinari-africa/dinari-ledger/internal/models"
)

// oneToken is the 18-decimal fixed-point scale (10^18 base units per token).
var oneToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// UpdateRate inserts or overwrites the exchange rate for a currency code,
// unconditionally. Rates are token base units per 1 unit of fiat, 18-decimal
// fixed point. A zero rate is the unset sentinel, so storing zero re-flags
// the currency as unsupported. Currency codes are case-sensitive and not
// normalized. Owner only.
func (l *Ledger) UpdateRate(caller, currency string, rate *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if currency == "" {
		return models.ErrUnsupportedCurrency
	}
	if rate == nil || rate.Sign() < 0 {
		return models.ErrInvalidAmount
	}

	l.rates[currency] = new(big.Int).Set(rate)
	l.emit(&models.Event{
		Kind:      models.EventRateUpdated,
		From:      caller,
		Currency:  currency,
		Amount:    rate.String(),
		Timestamp: now,
	})
	l.logger.Info("Exchange rate updated ", "currency ", currency, " rate ", rate.String())
	return nil
}

// ConversionRate returns the stored rate for a currency, zero when unset.
func (l *Ledger) ConversionRate(currency string) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rate, ok := l.rates[currency]; ok {
		return new(big.Int).Set(rate)
	}
	return new(big.Int)
}

// ConvertToFiat converts a token amount to fiat at the stored rate:
// amount * rate / 10^18, truncating toward zero.
func (l *Ledger) ConvertToFiat(amount *big.Int, currency string) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.convertToFiat(amount, currency)
}

// convertToFiat is the lock-free variant for internal use.
func (l *Ledger) convertToFiat(amount *big.Int, currency string) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, models.ErrInvalidAmount
	}
	rate, ok := l.rates[currency]
	if !ok || rate.Sign() == 0 {
		return nil, models.ErrUnsupportedCurrency
	}
	fiat := new(big.Int).Mul(amount, rate)
	return fiat.Quo(fiat, oneToken), nil
}

// SetCollateralValue records the fiat value of external backing assets, as
// supplied by the owner acting as oracle boundary. Owner only.
func (l *Ledger) SetCollateralValue(caller string, value *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if value == nil || value.Sign() < 0 {
		return models.ErrInvalidAmount
	}

	l.collateralValue.Set(value)
	l.emit(&models.Event{
		Kind:      models.EventCollateralUpdated,
		From:      caller,
		Amount:    value.String(),
		Timestamp: now,
	})
	return nil
}

// CollateralValue returns the last recorded external collateral value.
func (l *Ledger) CollateralValue() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.collateralValue)
}

// CollateralizationRatio computes collateralValue * 100 divided by the total
// supply valued in the reserve currency. Returns zero when the supply is
// zero or the reserve rate is unset, never faults.
func (l *Ledger) CollateralizationRatio() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.totalSupply.Sign() == 0 {
		return new(big.Int)
	}
	fiatSupply, err := l.convertToFiat(l.totalSupply, reserveCurrency)
	if err != nil || fiatSupply.Sign() == 0 {
		return new(big.Int)
	}
	ratio := new(big.Int).Mul(l.collateralValue, big.NewInt(100))
	return ratio.Quo(ratio, fiatSupply)
}
