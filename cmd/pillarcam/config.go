package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/wroteam/pillarcam/internal/annotator"
)

// loadDetectionConfig reads a JSON attribute object from path. An empty path
// yields the default config.
func loadDetectionConfig(path string) (annotator.DetectionConfig, error) {
	if path == "" {
		return annotator.DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return annotator.DetectionConfig{}, errors.Wrap(err, "read detection config")
	}

	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return annotator.DetectionConfig{}, errors.Wrapf(err, "parse detection config %s", path)
	}

	cfg, err := annotator.DecodeConfig(attrs)
	if err != nil {
		return annotator.DetectionConfig{}, errors.Wrapf(err, "decode detection config %s", path)
	}
	return cfg, nil
}
