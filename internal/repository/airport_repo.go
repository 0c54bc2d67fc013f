package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dkoval/milesworth/internal/domain"
)

// AirportRepository resolves IATA codes to coordinates for the map.
type AirportRepository interface {
	Lookup(codes []string) []domain.Airport
}

type CSVAirportRepository struct {
	byIATA map[string]domain.Airport
}

// NewAirportRepository loads the whole airports CSV (header iata,lat,lon)
// into memory. The file is small and read-only, so no reloading.
func NewAirportRepository(path string) (*CSVAirportRepository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open airports csv: %w", err)
	}
	defer f.Close()

	repo := &CSVAirportRepository{byIATA: make(map[string]domain.Airport)}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3
	header := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read airports csv: %w", err)
		}
		if header {
			header = false
			continue
		}

		iata := strings.ToUpper(strings.TrimSpace(record[0]))
		lat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("airport %s: bad latitude %q", iata, record[1])
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("airport %s: bad longitude %q", iata, record[2])
		}
		repo.byIATA[iata] = domain.Airport{IATA: iata, Lat: lat, Lon: lon}
	}

	return repo, nil
}

// Lookup returns pins for the codes present in the CSV; unknown codes are
// skipped rather than failing the map.
func (r *CSVAirportRepository) Lookup(codes []string) []domain.Airport {
	pins := make([]domain.Airport, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		if a, ok := r.byIATA[code]; ok {
			pins = append(pins, a)
		}
	}
	return pins
}

var _ AirportRepository = (*CSVAirportRepository)(nil)
