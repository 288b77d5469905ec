package model

import "github.com/shopspring/decimal"

// PaymentAuthorization is the processor-issued handle a client uses to complete a charge.
// It is not proof of payment.
type PaymentAuthorization struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Provider     string
}

// MinorToDecimal converts an amount in minor units (cents) into a two-place decimal.
func MinorToDecimal(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

// FormatMinorUnits renders an amount in minor units as "5.00".
func FormatMinorUnits(amount int64) string {
	return MinorToDecimal(amount).StringFixed(2)
}
