package reservation

import (
	"fmt"

	"github.com/estora/estora-api/internal/domain/property"
	"github.com/estora/estora-api/internal/pkg/money"
)

// monthlyNights is the number of nights a monthly rate covers;
// monthly configs are pro-rated per night against it.
const monthlyNights = 30

// Quote computes the itemized cost of a stay from an immutable pricing
// config and a date range. All arithmetic is integer minor units; the
// platform fee applies to the accommodation subtotal only.
func Quote(cfg property.PricingConfig, stay DateRange, feeBps int64) (*PriceBreakdown, error) {
	stay = stay.Normalize()
	nights := stay.Nights()
	if nights < 1 {
		return nil, ErrZeroNights
	}

	var accommodation money.Amount
	if cfg.Period == property.PeriodMonth {
		accommodation = divRoundHalfUp(cfg.Amount.MulCount(nights), monthlyNights)
	} else {
		accommodation = cfg.Amount.MulCount(nights)
	}

	items := []LineItem{
		{Description: fmt.Sprintf("Accommodation (%d nights)", nights), Amount: accommodation.Value},
	}

	total := accommodation
	var err error

	if cfg.Deposit != nil && !cfg.Deposit.IsZero() {
		total, err = total.Add(*cfg.Deposit)
		if err != nil {
			return nil, err
		}
		items = append(items, LineItem{Description: "Refundable deposit", Amount: cfg.Deposit.Value})
	}

	if cfg.ServiceCharge != nil && !cfg.ServiceCharge.IsZero() {
		total, err = total.Add(*cfg.ServiceCharge)
		if err != nil {
			return nil, err
		}
		items = append(items, LineItem{Description: "Service charge", Amount: cfg.ServiceCharge.Value})
	}

	fee := accommodation.PercentBps(feeBps)
	if !fee.IsZero() {
		total, err = total.Add(fee)
		if err != nil {
			return nil, err
		}
		items = append(items, LineItem{Description: "Platform fee", Amount: fee.Value})
	}

	return &PriceBreakdown{
		Items:       items,
		TotalAmount: total.Value,
		Currency:    total.Currency,
	}, nil
}

func divRoundHalfUp(a money.Amount, divisor int64) money.Amount {
	half := divisor / 2
	if a.Value < 0 {
		half = -half
	}
	return money.Amount{Value: (a.Value + half) / divisor, Currency: a.Currency}
}
