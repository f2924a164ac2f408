package market

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Dataset is the fixed set of records loaded by the seed routine.
type Dataset struct {
	Users  []User  `yaml:"users"`
	Orders []Order `yaml:"orders"`
	Offers []Offer `yaml:"offers"`
}

// Seed returns the embedded default dataset used for manual testing.
func Seed() (Dataset, error) {
	return ParseDataset(seedYAML)
}

// ParseDataset decodes a YAML dataset with the same keys as the JSON API.
func ParseDataset(data []byte) (Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return Dataset{}, fmt.Errorf("parse seed dataset: %w", err)
	}
	return ds, nil
}
