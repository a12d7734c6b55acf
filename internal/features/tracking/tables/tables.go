package tables

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// The reference tables are externally supplied, read-only collections
// keyed by provider-internal codes. They are loaded and validated once
// and stay immutable for the process lifetime.

// Carrier is one carrier record of the carrier table.
type Carrier struct {
	Key     int    `json:"key"`
	Name    string `json:"_name"`
	Country int    `json:"_country"`
	Email   string `json:"_email"`
	Tel     string `json:"_tel"`
	URL     string `json:"_url"`
}

// Country is one country record of the country table.
type Country struct {
	NumberKey int    `json:"_numberKey"`
	Mnemonic  string `json:"_mnemonic"`
	Name      string `json:"_name"`
}

// Status is one status record of the status table. Key 0 is a valid code.
type Status struct {
	Key         int    `json:"key"`
	Name        string `json:"_name"`
	IconBgColor string `json:"_iconBgColor"`
	Tips        string `json:"_tips"`
}

// Tables provides point lookups over the three reference tables.
type Tables struct {
	carriersByCode  map[int]Carrier
	carriersBySlug  map[string]Carrier
	countriesByCode map[int]Country
	statusesByCode  map[int]Status
}

// New validates the supplied records and builds the lookup maps.
// Records must have non-empty names and unique keys; carrier and country
// keys must be non-zero since 0 is the "unresolved" sentinel.
func New(carriers []Carrier, countries []Country, statuses []Status) (*Tables, error) {
	t := &Tables{
		carriersByCode:  make(map[int]Carrier, len(carriers)),
		carriersBySlug:  make(map[string]Carrier, len(carriers)),
		countriesByCode: make(map[int]Country, len(countries)),
		statusesByCode:  make(map[int]Status, len(statuses)),
	}

	for _, c := range carriers {
		if c.Key == 0 {
			return nil, fmt.Errorf("carrier %q: key must be non-zero", c.Name)
		}
		if c.Name == "" {
			return nil, fmt.Errorf("carrier %d: name is required", c.Key)
		}
		if _, dup := t.carriersByCode[c.Key]; dup {
			return nil, fmt.Errorf("carrier %d: duplicate key", c.Key)
		}
		t.carriersByCode[c.Key] = c
		t.carriersBySlug[strings.ToLower(c.Name)] = c
	}

	for _, c := range countries {
		if c.NumberKey == 0 {
			return nil, fmt.Errorf("country %q: numberKey must be non-zero", c.Name)
		}
		if c.Name == "" {
			return nil, fmt.Errorf("country %d: name is required", c.NumberKey)
		}
		if _, dup := t.countriesByCode[c.NumberKey]; dup {
			return nil, fmt.Errorf("country %d: duplicate numberKey", c.NumberKey)
		}
		t.countriesByCode[c.NumberKey] = c
	}

	for _, s := range statuses {
		if s.Name == "" {
			return nil, fmt.Errorf("status %d: name is required", s.Key)
		}
		if _, dup := t.statusesByCode[s.Key]; dup {
			return nil, fmt.Errorf("status %d: duplicate key", s.Key)
		}
		t.statusesByCode[s.Key] = s
	}

	return t, nil
}

// Load reads carriers.json, countries.json and statuses.json from dir and
// builds the validated tables.
func Load(dir string) (*Tables, error) {
	var carriers []Carrier
	if err := loadJSON(filepath.Join(dir, "carriers.json"), &carriers); err != nil {
		return nil, err
	}

	var countries []Country
	if err := loadJSON(filepath.Join(dir, "countries.json"), &countries); err != nil {
		return nil, err
	}

	var statuses []Status
	if err := loadJSON(filepath.Join(dir, "statuses.json"), &statuses); err != nil {
		return nil, err
	}

	return New(carriers, countries, statuses)
}

func loadJSON(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read reference table: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse reference table %s: %w", filepath.Base(path), err)
	}
	return nil
}

// CarrierByCode looks up a carrier by its numeric code.
func (t *Tables) CarrierByCode(code int) (Carrier, bool) {
	c, ok := t.carriersByCode[code]
	return c, ok
}

// CarrierCodeBySlug resolves a carrier slug to its code via an exact,
// case-insensitive name match. Unknown or empty slugs resolve to 0.
func (t *Tables) CarrierCodeBySlug(slug string) int {
	if slug == "" {
		return 0
	}
	if c, ok := t.carriersBySlug[strings.ToLower(slug)]; ok {
		return c.Key
	}
	return 0
}

// CountryByCode looks up a country by its numeric code.
func (t *Tables) CountryByCode(code int) (Country, bool) {
	c, ok := t.countriesByCode[code]
	return c, ok
}

// StatusByCode looks up a status by its numeric code.
func (t *Tables) StatusByCode(code int) (Status, bool) {
	s, ok := t.statusesByCode[code]
	return s, ok
}
