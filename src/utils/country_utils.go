package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/username/ustax/src/logger"
)

type CountryInfo struct {
	Country string `json:"country"`
	Alpha2  string `json:"alpha2"`
	Alpha3  string `json:"alpha3"`
	Numeric string `json:"numeric"`
}

var (
	countryMu  sync.RWMutex
	countryMap map[string]CountryInfo
	loadOnce   sync.Once
	loadError  error
)

// InitCountryData loads the country list used to check foreign-income source codes.
func InitCountryData(filePath string) error {
	logger.L.Info("Initializing country data", "path", filePath)
	loadOnce.Do(func() {
		fileData, err := os.ReadFile(filePath)
		if err != nil {
			loadError = fmt.Errorf("failed to read country data file '%s': %w", filePath, err)
			logger.L.Error("Failed to read country data file", "path", filePath, "error", err)
			return
		}
		if loadError = LoadCountryData(fileData); loadError != nil {
			logger.L.Error("Failed to unmarshal country data", "path", filePath, "error", loadError)
			return
		}
		logger.L.Info("Country data loaded successfully.", "path", filePath, "countryCount", len(countryMap))
	})
	return loadError
}

// LoadCountryData replaces the country table with the JSON list in data.
func LoadCountryData(data []byte) error {
	var countries []CountryInfo
	if err := json.Unmarshal(data, &countries); err != nil {
		return fmt.Errorf("failed to unmarshal country data: %w", err)
	}
	m := make(map[string]CountryInfo, len(countries))
	for _, country := range countries {
		m[strings.ToUpper(country.Alpha2)] = country
		if country.Alpha3 != "" {
			m[strings.ToUpper(country.Alpha3)] = country
		}
	}
	countryMu.Lock()
	countryMap = m
	countryMu.Unlock()
	return nil
}

// CountryDataLoaded reports whether a country table is available.
func CountryDataLoaded() bool {
	countryMu.RLock()
	defer countryMu.RUnlock()
	return countryMap != nil
}

// LookupCountry finds a country by its two- or three-letter code.
func LookupCountry(code string) (CountryInfo, bool) {
	countryMu.RLock()
	defer countryMu.RUnlock()
	info, ok := countryMap[strings.ToUpper(strings.TrimSpace(code))]
	return info, ok
}
