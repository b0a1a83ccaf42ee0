package model

import "time"

// PricePoint is a single observed price.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// PriceSeries holds the raw price data for one item on one platform.
type PriceSeries struct {
	ItemID    string
	Platform  string
	Points    []PricePoint
	FetchedAt time.Time
}

// Filter returns a copy of the series keeping only strictly positive prices, in order.
func (s PriceSeries) Filter() PriceSeries {
	out := s
	out.Points = make([]PricePoint, 0, len(s.Points))
	for _, p := range s.Points {
		if p.Price > 0 {
			out.Points = append(out.Points, p)
		}
	}
	return out
}

// Prices extracts the price column.
func (s PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s.Points))
	for i, p := range s.Points {
		prices[i] = p.Price
	}
	return prices
}

// Len returns the number of points.
func (s PriceSeries) Len() int { return len(s.Points) }
