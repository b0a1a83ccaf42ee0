// Package history keeps an append-only log of observed prices per item.
package history

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"PriceSentinel/internal/kvstore"
)

// Log appends prices under one key per (item, platform).
type Log struct {
	kv kvstore.Store
}

// NewLog creates a Log backed by kv.
func NewLog(kv kvstore.Store) *Log {
	return &Log{kv: kv}
}

// Key returns the storage key for an item on a platform.
func Key(itemID, platform string) string {
	return "history:" + itemID + ":" + platform
}

// Append adds prices to the end of the item's log.
func (l *Log) Append(ctx context.Context, itemID, platform string, prices ...float64) error {
	if len(prices) == 0 {
		return nil
	}
	existing, err := l.Load(ctx, itemID, platform)
	if err != nil {
		return err
	}
	if err := kvstore.SetJSON(ctx, l.kv, Key(itemID, platform), append(existing, prices...)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Load returns the item's logged prices, oldest first.
func (l *Log) Load(ctx context.Context, itemID, platform string) ([]float64, error) {
	var prices []float64
	if _, err := kvstore.GetJSON(ctx, l.kv, Key(itemID, platform), &prices); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return prices, nil
}

// WriteCSV writes prices as "Index,Price" rows with a 1-based index.
func WriteCSV(w io.Writer, prices []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Index", "Price"}); err != nil {
		return err
	}
	for i, p := range prices {
		row := []string{strconv.Itoa(i + 1), strconv.FormatFloat(p, 'f', -1, 64)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
