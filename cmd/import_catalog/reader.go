package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/models"
)

// readPairs returns the two-column rows of a .json array of objects (keyed
// by first and second) or a headerless .csv file
func readPairs(path, first, second string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var items []map[string]string
		if err := json.NewDecoder(f).Decode(&items); err != nil {
			return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
		}
		pairs := make([][2]string, 0, len(items))
		for _, item := range items {
			pairs = append(pairs, [2]string{item[first], item[second]})
		}
		return pairs, nil
	case ".csv":
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		var pairs [][2]string
		for {
			rec, err := r.Read()
			if errors.Is(err, io.EOF) {
				return pairs, nil
			}
			if err != nil {
				return nil, fmt.Errorf("invalid CSV in %s: %w", path, err)
			}
			if len(rec) < 2 {
				pairs = append(pairs, [2]string{})
				continue
			}
			pairs = append(pairs, [2]string{rec[0], rec[1]})
		}
	default:
		return nil, fmt.Errorf("unsupported catalog file %s: want .json or .csv", path)
	}
}

// readIngredients returns the valid ingredients of path and the number of
// rows skipped for a blank name or unit
func readIngredients(path string) ([]models.Ingredient, int, error) {
	pairs, err := readPairs(path, "name", "measurement_unit")
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.Ingredient, 0, len(pairs))
	skipped := 0
	for i, p := range pairs {
		name, unit := strings.TrimSpace(p[0]), strings.TrimSpace(p[1])
		if name == "" || unit == "" {
			logging.Warn().Int("row", i+1).Msg("skipping ingredient without name or unit")
			skipped++
			continue
		}
		out = append(out, models.Ingredient{Name: name, MeasurementUnit: unit})
	}
	return out, skipped, nil
}

func readTags(path string) ([]models.Tag, int, error) {
	pairs, err := readPairs(path, "name", "slug")
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.Tag, 0, len(pairs))
	skipped := 0
	for i, p := range pairs {
		name, slug := strings.TrimSpace(p[0]), strings.TrimSpace(p[1])
		if name == "" || slug == "" {
			logging.Warn().Int("row", i+1).Msg("skipping tag without name or slug")
			skipped++
			continue
		}
		out = append(out, models.Tag{Name: name, Slug: strings.ToLower(slug)})
	}
	return out, skipped, nil
}
