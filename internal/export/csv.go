package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dkoval/milesworth/internal/domain"
)

var csvHeader = []string{
	"date", "type", "origin", "destination", "airline",
	"price", "miles", "taxes", "value_per_mile_cents", "estimated_savings_usd",
	"route", "layover_min",
	"leg1_flight", "leg1_departs", "leg1_arrives",
	"leg2_flight", "leg2_departs", "leg2_arrives",
	"recommendation", "within_balance",
}

const timeLayout = "2006-01-02 15:04"

// WriteCSV streams the result set as CSV, one row per route. The row
// count always matches len(routes) so exports mirror the displayed table.
func WriteCSV(w io.Writer, routes []domain.Route) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range routes {
		if err := cw.Write(csvRow(r)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRow(r domain.Route) []string {
	row := []string{
		r.Date,
		string(r.Kind),
		r.Origin,
		r.Destination,
		r.Airlines(),
		strconv.FormatFloat(r.Price, 'f', 2, 64),
		strconv.FormatInt(r.Miles, 10),
		strconv.FormatFloat(r.Taxes, 'f', 2, 64),
		strconv.FormatFloat(r.VPMCents, 'f', 2, 64),
		strconv.FormatFloat(r.SavingsUSD, 'f', 2, 64),
		r.Path,
	}

	if r.Kind == domain.RouteKindSynthetic {
		row = append(row, strconv.Itoa(r.LayoverMinutes))
	} else {
		row = append(row, "")
	}

	for i := 0; i < 2; i++ {
		if i < len(r.Legs) {
			leg := r.Legs[i]
			row = append(row,
				leg.Airline+" "+leg.FlightNumber,
				leg.DepartureTime.Format(timeLayout),
				leg.ArrivalTime.Format(timeLayout),
			)
		} else {
			row = append(row, "", "", "")
		}
	}

	row = append(row, string(r.Recommendation), strconv.FormatBool(r.WithinBalance))
	return row
}
