package main

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// money rounds v to cents for display.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// nav rounds a per-share value to four places.
func nav(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}

func renderHoldings(w io.Writer, holdings []models.Holding) error {
	if len(holdings) == 0 {
		_, err := fmt.Fprintln(w, "No holdings")
		return err
	}
	if _, err := fmt.Fprintf(w, "%-8s %-20s %12s %10s\n", "CODE", "NAME", "SHARES", "COST"); err != nil {
		return err
	}
	for _, h := range holdings {
		if _, err := fmt.Fprintf(w, "%-8s %-20s %12s %10s\n", h.Code, h.DisplayName(), money(h.Shares), nav(h.Cost)); err != nil {
			return err
		}
	}
	return nil
}

func renderValuation(w io.Writer, v *models.Valuation) error {
	const row = "%-8s %-20s %12s %10s %10s %8s %14s %12s %12s %-17s %s\n"
	if _, err := fmt.Fprintf(w, row, "CODE", "NAME", "SHARES", "ESTIMATE", "LAST", "CHG%", "MARKET", "DAY", "TOTAL", "UPDATED", "SOURCE"); err != nil {
		return err
	}
	for _, d := range v.Data {
		_, err := fmt.Fprintf(w, row,
			d.Code, d.Name, money(d.Shares), nav(d.Estimate), nav(d.LastNetValue), money(d.PercentChange),
			money(d.MarketValue), money(d.DayProfit), money(d.TotalProfit), d.UpdateTime, d.Source)
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nSession %s at %s\nMarket value %s  Day profit %s  Hold profit %s\n",
		v.Session, v.Summary.UpdatedAt,
		money(v.Summary.TotalMarketValue), money(v.Summary.TotalDayProfit), money(v.Summary.TotalHoldProfit))
	return err
}
