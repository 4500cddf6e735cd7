package market

import "sort"

// DepthRow is one order rendered into the book. Total accumulates down
// the side; DepthPercent sizes the row against the largest single order
// on either side (display metric, not a liquidity measure).
type DepthRow struct {
	Price        int64   `json:"price"`
	Quantity     int64   `json:"quantity"`
	Total        int64   `json:"total"`
	DepthPercent float64 `json:"depth_percent"`
}

// DepthTable is the two-sided book for one property token
type DepthTable struct {
	Buys     []DepthRow `json:"buys"`
	Sells    []DepthRow `json:"sells"`
	Currency string     `json:"currency"`
}

// Estimate is the projected outcome of a market order walked through
// the opposing side of the book.
type Estimate struct {
	Quantity      int64   `json:"quantity"`
	AveragePrice  float64 `json:"average_price"`
	TotalCost     int64   `json:"total_cost"`
	ImpactPercent float64 `json:"impact_percent"`
	Currency      string  `json:"currency"`
}

// BuildDepth renders open orders into a depth table. Buys sort
// price-descending, sells price-ascending, so the best price on each
// side leads.
func BuildDepth(orders []*Order, currency string) *DepthTable {
	var buys, sells []*Order
	var largest int64
	for _, o := range orders {
		if !o.IsOpen() || o.Remaining <= 0 {
			continue
		}
		if o.Remaining > largest {
			largest = o.Remaining
		}
		if o.Side == SideBuy {
			buys = append(buys, o)
		} else {
			sells = append(sells, o)
		}
	}

	sort.Slice(buys, func(i, j int) bool { return buys[i].Price > buys[j].Price })
	sort.Slice(sells, func(i, j int) bool { return sells[i].Price < sells[j].Price })

	return &DepthTable{
		Buys:     buildSide(buys, largest),
		Sells:    buildSide(sells, largest),
		Currency: currency,
	}
}

func buildSide(orders []*Order, largest int64) []DepthRow {
	rows := make([]DepthRow, len(orders))
	var cumulative int64
	for i, o := range orders {
		cumulative += o.Price * o.Remaining
		var pct float64
		if largest > 0 {
			pct = float64(o.Remaining) / float64(largest) * 100
		}
		rows[i] = DepthRow{
			Price:        o.Price,
			Quantity:     o.Remaining,
			Total:        cumulative,
			DepthPercent: pct,
		}
	}
	return rows
}

// EstimateMarketOrder walks the opposing side of the book and projects
// the volume-weighted outcome of taking quantity shares. Impact is the
// percentage deviation of the average price from the top of book.
func EstimateMarketOrder(side Side, quantity int64, orders []*Order, currency string) (*Estimate, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	opposing := SideSell
	if side == SideSell {
		opposing = SideBuy
	}

	var book []*Order
	for _, o := range orders {
		if o.IsOpen() && o.Remaining > 0 && o.Side == opposing {
			book = append(book, o)
		}
	}
	if opposing == SideSell {
		sort.Slice(book, func(i, j int) bool { return book[i].Price < book[j].Price })
	} else {
		sort.Slice(book, func(i, j int) bool { return book[i].Price > book[j].Price })
	}

	if len(book) == 0 {
		return nil, ErrInsufficientLiquidity
	}
	topPrice := book[0].Price

	remaining := quantity
	var cost int64
	for _, o := range book {
		take := o.Remaining
		if take > remaining {
			take = remaining
		}
		cost += o.Price * take
		remaining -= take
		if remaining == 0 {
			break
		}
	}
	if remaining > 0 {
		return nil, ErrInsufficientLiquidity
	}

	avg := float64(cost) / float64(quantity)
	impact := (avg - float64(topPrice)) / float64(topPrice) * 100
	if impact < 0 {
		impact = -impact
	}

	return &Estimate{
		Quantity:      quantity,
		AveragePrice:  avg,
		TotalCost:     cost,
		ImpactPercent: impact,
		Currency:      currency,
	}, nil
}
