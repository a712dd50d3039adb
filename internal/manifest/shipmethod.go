package manifest

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// Carrier is what a partner-supplied ship method resolves to.
type Carrier struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// ShipMethods maps free-text ship method strings to carriers.
type ShipMethods map[string]Carrier

func DefaultShipMethods() ShipMethods {
	return ShipMethods{
		"UPS Ground":      {Name: "UPS", Code: "UPS"},
		"FEDEX Ground HD": {Name: "FedEx", Code: "FEDHD"},
	}
}

// Lookup returns the carrier for method, or the zero Carrier when unmapped.
func (m ShipMethods) Lookup(method string) Carrier {
	return m[method]
}

type catalogFile struct {
	ShipMethods map[string]Carrier `yaml:"ship_methods"`
}

// LoadShipMethods returns the default table extended with the entries of
// the YAML catalog at path. An empty path yields the defaults.
func LoadShipMethods(path string) (ShipMethods, error) {
	methods := DefaultShipMethods()
	if path == "" {
		return methods, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	maps.Copy(methods, cf.ShipMethods)
	return methods, nil
}
