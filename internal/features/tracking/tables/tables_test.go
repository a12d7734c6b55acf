package tables

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTables(t *testing.T) *Tables {
	t.Helper()
	tbl, err := New(
		[]Carrier{
			{Key: 42, Name: "UPS", Country: 840, Email: "help@ups.com", Tel: "+1", URL: "https://ups.com"},
			{Key: 190271, Name: "DHL eCommerce", Country: 276},
		},
		[]Country{
			{NumberKey: 840, Mnemonic: "US", Name: "United States"},
			{NumberKey: 276, Mnemonic: "DE", Name: "Germany"},
		},
		[]Status{
			{Key: 0, Name: "Not Found", IconBgColor: "#999", Tips: "no info yet"},
			{Key: 2, Name: "In Transit", IconBgColor: "#00f", Tips: "moving"},
		},
	)
	require.NoError(t, err)
	return tbl
}

// TestCarrierCodeBySlug verifies exact case-insensitive slug resolution.
func TestCarrierCodeBySlug(t *testing.T) {
	tbl := newTestTables(t)

	assert.Equal(t, 42, tbl.CarrierCodeBySlug("UPS"))
	assert.Equal(t, 42, tbl.CarrierCodeBySlug("ups"))
	assert.Equal(t, 42, tbl.CarrierCodeBySlug("uPs"))
	assert.Equal(t, 190271, tbl.CarrierCodeBySlug("dhl ecommerce"))

	// Unknown or empty slugs resolve to the sentinel 0.
	assert.Equal(t, 0, tbl.CarrierCodeBySlug("fedecks"))
	assert.Equal(t, 0, tbl.CarrierCodeBySlug(""))
	// Partial matches do not count.
	assert.Equal(t, 0, tbl.CarrierCodeBySlug("up"))
}

// TestLookups verifies deterministic point lookups by code.
func TestLookups(t *testing.T) {
	tbl := newTestTables(t)

	carrier, ok := tbl.CarrierByCode(42)
	require.True(t, ok)
	assert.Equal(t, "UPS", carrier.Name)

	country, ok := tbl.CountryByCode(840)
	require.True(t, ok)
	assert.Equal(t, "US", country.Mnemonic)

	status, ok := tbl.StatusByCode(0)
	require.True(t, ok)
	assert.Equal(t, "Not Found", status.Name)

	_, ok = tbl.CarrierByCode(7)
	assert.False(t, ok)
	_, ok = tbl.CountryByCode(7)
	assert.False(t, ok)
	_, ok = tbl.StatusByCode(7)
	assert.False(t, ok)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		carriers  []Carrier
		countries []Country
		statuses  []Status
		wantErr   string
	}{
		{
			name:     "CarrierZeroKey",
			carriers: []Carrier{{Key: 0, Name: "Ghost"}},
			wantErr:  "key must be non-zero",
		},
		{
			name:     "CarrierMissingName",
			carriers: []Carrier{{Key: 9}},
			wantErr:  "name is required",
		},
		{
			name:     "CarrierDuplicateKey",
			carriers: []Carrier{{Key: 9, Name: "A"}, {Key: 9, Name: "B"}},
			wantErr:  "duplicate key",
		},
		{
			name:      "CountryZeroKey",
			countries: []Country{{NumberKey: 0, Name: "Nowhere"}},
			wantErr:   "numberKey must be non-zero",
		},
		{
			name:     "StatusMissingName",
			statuses: []Status{{Key: 3}},
			wantErr:  "name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.carriers, tt.countries, tt.statuses)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestLoad verifies loading the three table files from a directory.
func TestLoad(t *testing.T) {
	dir := t.TempDir()

	writeFile := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	writeFile("carriers.json", `[{"key":42,"_name":"UPS","_country":840,"_url":"https://ups.com"}]`)
	writeFile("countries.json", `[{"_numberKey":840,"_mnemonic":"US","_name":"United States"}]`)
	writeFile("statuses.json", `[{"key":2,"_name":"In Transit","_iconBgColor":"#00f","_tips":"moving"}]`)

	tbl, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 42, tbl.CarrierCodeBySlug("ups"))

	country, ok := tbl.CountryByCode(840)
	require.True(t, ok)
	assert.Equal(t, "United States", country.Name)
}

// TestLoad_MissingFile verifies that an absent table file fails the load.
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
