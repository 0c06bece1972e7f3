// Package files implements the file-backed collaborators used by the offline
// calibration workflow: an entity loader and damage calculator reading JSON
// fixtures, and a plotter that dumps plot-ready data files.
package files

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bielim/country-risk-etl/internal/domain"
)

// Store resolves entity and hazard references against a base directory.
// References are file names relative to the base, without traversal.
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// LoadEntity reads an exposure entity from its JSON file.
func (s *Store) LoadEntity(_ context.Context, ref string) (domain.Entity, error) {
	data, err := s.read(ref)
	if err != nil {
		return domain.Entity{}, err
	}
	var entity domain.Entity
	if err := json.Unmarshal(data, &entity); err != nil {
		return domain.Entity{}, fmt.Errorf("decode entity %q: %w", ref, err)
	}
	if len(entity.Values) == 0 {
		return domain.Entity{}, fmt.Errorf("entity %q has no exposure values", ref)
	}
	return entity, nil
}

// hazardEventSet is the on-disk hazard fixture: one intensity row per
// simulated event, one column per exposure centroid.
type hazardEventSet struct {
	Peril       string      `json:"peril"`
	Intensities [][]float64 `json:"intensities"`
}

// ComputeDamages applies the entity's vulnerability curve to every event in
// the hazard set. Each event's damage is the exposure-weighted sum of the
// mean damage degree at that event's intensity per centroid.
func (s *Store) ComputeDamages(_ context.Context, entity domain.Entity, hazardRef string) (domain.EventDamageSet, error) {
	data, err := s.read(hazardRef)
	if err != nil {
		return nil, err
	}
	var hazard hazardEventSet
	if err := json.Unmarshal(data, &hazard); err != nil {
		return nil, fmt.Errorf("decode hazard set %q: %w", hazardRef, err)
	}

	damages := make(domain.EventDamageSet, len(hazard.Intensities))
	for i, event := range hazard.Intensities {
		if len(event) != len(entity.Values) {
			return nil, fmt.Errorf("hazard set %q event %d: %d centroids, entity has %d",
				hazardRef, i, len(event), len(entity.Values))
		}
		var total float64
		for j, intensity := range event {
			total += entity.Values[j] * entity.Curve.Damage(intensity)
		}
		damages[i] = total
	}
	return damages, nil
}

// LoadResults reads a country risk result list from a JSON fixture.
func (s *Store) LoadResults(ref string) ([]domain.CountryRiskResult, error) {
	data, err := s.read(ref)
	if err != nil {
		return nil, err
	}
	var results []domain.CountryRiskResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("decode results %q: %w", ref, err)
	}
	return results, nil
}

// SaveResults writes a country risk result list back to the base directory.
func (s *Store) SaveResults(ref string, results []domain.CountryRiskResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results %q: %w", ref, err)
	}
	return nil
}

func (s *Store) read(ref string) ([]byte, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", ref, err)
	}
	return data, nil
}

func (s *Store) resolve(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("empty file reference")
	}
	if filepath.IsAbs(ref) || ref != filepath.Clean(ref) || ref == ".." ||
		len(ref) >= 3 && ref[:3] == ".."+string(filepath.Separator) {
		return "", fmt.Errorf("reference %q escapes the data directory", ref)
	}
	return filepath.Join(s.baseDir, ref), nil
}
