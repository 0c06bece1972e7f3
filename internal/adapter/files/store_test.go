package files

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bielim/country-risk-etl/internal/domain"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadEntity(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	t.Run("valid entity", func(t *testing.T) {
		writeFixture(t, dir, "entity.json", `{
			"reference_year": 2020,
			"values": [100, 200],
			"curve": {"peril": "TC", "shape": "emanuel", "intensity": [0, 60, 120], "mdd": [0, 0.5, 1]}
		}`)

		entity, err := store.LoadEntity(context.Background(), "entity.json")
		require.NoError(t, err)
		assert.Equal(t, 2020, entity.ReferenceYear)
		assert.Equal(t, []float64{100, 200}, entity.Values)
		assert.Equal(t, "TC", entity.Curve.Peril)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := store.LoadEntity(context.Background(), "nope.json")
		assert.Error(t, err)
	})

	t.Run("no exposure values", func(t *testing.T) {
		writeFixture(t, dir, "empty.json", `{"reference_year": 2020, "values": []}`)
		_, err := store.LoadEntity(context.Background(), "empty.json")
		assert.ErrorContains(t, err, "no exposure values")
	})

	t.Run("path traversal rejected", func(t *testing.T) {
		_, err := store.LoadEntity(context.Background(), "../entity.json")
		assert.ErrorContains(t, err, "escapes")
	})
}

func TestComputeDamages(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	entity := domain.Entity{
		Values: []float64{100, 200},
		Curve: domain.VulnerabilityCurve{
			Intensity: []float64{0, 100},
			MDD:       []float64{0, 1},
		},
	}

	t.Run("weighted sum per event", func(t *testing.T) {
		writeFixture(t, dir, "hazard.json", `{
			"peril": "TC",
			"intensities": [[50, 100], [0, 0]]
		}`)

		damages, err := store.ComputeDamages(context.Background(), entity, "hazard.json")
		require.NoError(t, err)
		require.Len(t, damages, 2)
		// Event 0: 100*0.5 + 200*1.0 = 250. Event 1: no intensity, no damage.
		assert.InDelta(t, 250, damages[0], 1e-9)
		assert.InDelta(t, 0, damages[1], 1e-9)
	})

	t.Run("centroid count mismatch", func(t *testing.T) {
		writeFixture(t, dir, "bad.json", `{"intensities": [[50]]}`)
		_, err := store.ComputeDamages(context.Background(), entity, "bad.json")
		assert.ErrorContains(t, err, "centroids")
	})
}

func TestResultsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	results := []domain.CountryRiskResult{
		{Country: "Chile", Hazards: []domain.HazardResult{
			{Peril: "TC", Damages: domain.EventDamageSet{1, 2, 3}},
		}},
	}

	require.NoError(t, store.SaveResults("results.json", results))

	loaded, err := store.LoadResults("results.json")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Chile", loaded[0].Country)
	assert.Equal(t, domain.EventDamageSet{1, 2, 3}, loaded[0].Hazards[0].Damages)
}

func TestDataDumpPlotter(t *testing.T) {
	dir := t.TempDir()
	plotter := NewDataDumpPlotter(filepath.Join(dir, "plots"))

	results := []domain.CountryRiskResult{
		{Country: "New Zealand", Hazards: []domain.HazardResult{
			{Peril: "TC", Damages: domain.EventDamageSet{10, 20}},
		}},
		{Country: "Fiji", Hazards: []domain.HazardResult{
			{Peril: "TC", Damages: domain.EventDamageSet{5}},
		}},
	}

	t.Run("country file", func(t *testing.T) {
		require.NoError(t, plotter.PlotCountry(context.Background(), results[0]))

		rows := readCSV(t, filepath.Join(dir, "plots", "damages_new_zealand.csv"))
		require.Len(t, rows, 3) // header + 2 events
		assert.Equal(t, []string{"country", "peril", "event", "damage"}, rows[0])
		assert.Equal(t, []string{"New Zealand", "TC", "0", "10"}, rows[1])
	})

	t.Run("aggregate file", func(t *testing.T) {
		require.NoError(t, plotter.PlotAggregate(context.Background(), results))

		rows := readCSV(t, filepath.Join(dir, "plots", "damages_all.csv"))
		require.Len(t, rows, 4) // header + 3 events across both countries
	})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
