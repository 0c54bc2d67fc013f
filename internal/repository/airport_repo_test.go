package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAirportsCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "airports.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAirportRepository_Lookup(t *testing.T) {
	path := writeAirportsCSV(t, "iata,lat,lon\nLAX,33.9416,-118.4085\njfk,40.6413,-73.7781\n")

	repo, err := NewAirportRepository(path)
	require.NoError(t, err)

	pins := repo.Lookup([]string{"lax", "JFK", "JFK", "XXX"})
	require.Len(t, pins, 2, "unknown codes and duplicates are dropped")
	assert.Equal(t, "LAX", pins[0].IATA)
	assert.Equal(t, "JFK", pins[1].IATA)
	assert.InDelta(t, 40.6413, pins[1].Lat, 0.0001)
}

func TestAirportRepository_BadCoordinates(t *testing.T) {
	path := writeAirportsCSV(t, "iata,lat,lon\nLAX,north,-118.4085\n")

	_, err := NewAirportRepository(path)
	assert.Error(t, err)
}

func TestAirportRepository_MissingFile(t *testing.T) {
	_, err := NewAirportRepository(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
