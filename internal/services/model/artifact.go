package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"StockCast/internal/domain/models"
)

// ArtifactVersion identifies the current on-disk artifact layout.
const ArtifactVersion = 1

// legacyFeatures is the feature list assumed for artifacts predating the
// versioned layout, which stored only the bare regressor.
var legacyFeatures = []string{models.ColSMA, models.ColRSI, models.ColEMA}

// Artifact pairs a trained regressor with the ordered feature-column
// names it expects and its feature-importance mapping. Once loaded it is
// read-only for the remainder of a pipeline run.
type Artifact struct {
	Version    int                `json:"version"`
	Features   []string           `json:"features"`
	Importance map[string]float64 `json:"feature_importance,omitempty"`
	Model      *GradientBoost     `json:"model"`
}

// Save writes the artifact as JSON, creating parent directories.
func (a *Artifact) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads a model artifact from disk. Older artifacts that
// stored only the bare regressor still load: they get the historical
// default feature list and an empty importance map.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	return decodeArtifact(data)
}

func decodeArtifact(data []byte) (*Artifact, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if _, ok := probe["features"]; ok {
		var a Artifact
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode model artifact: %w", err)
		}
		if a.Model == nil {
			return nil, fmt.Errorf("decode model artifact: missing model")
		}
		return &a, nil
	}
	// Legacy layout: the document is the regressor itself.
	var g GradientBoost
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode legacy model artifact: %w", err)
	}
	return &Artifact{
		Version:    ArtifactVersion,
		Features:   append([]string(nil), legacyFeatures...),
		Importance: map[string]float64{},
		Model:      &g,
	}, nil
}
