/*
Package factory provides JSON/YAML to Go payroll configuration conversion.

PURPOSE:
  Converts configuration documents into a validated payroll.Config. This
  enables payroll configuration without code changes - HR or an operator
  edits a document, and the factory creates the proper Go structs.

WHY DOCUMENTS?
  - Non-developers can modify tax bands and overtime rates
  - Easy integration with admin UI (GET/PUT /api/config)
  - Version control for statutory changes
  - Seeding a fresh database from a file

SCHEMA (JSON shown, YAML uses the same keys):
  {
    "settings": {
      "base_currency": "KHR",
      "standard_shift_start": "08:30",
      "standard_shift_end": "17:30",
      "nssf_ceiling": 1200000,
      "nssf_employee_rate": "0.02",
      "nssf_employer_rate": "0.02",
      "exchange_rate.USD": 4100
    },
    "holidays": [{"date": "2025-01-01", "name": "New Year"}],
    "tax_brackets": [
      {"sort_order": 1, "min": 0, "max": 1300000, "rate": 0},
      {"sort_order": 2, "min": 1300001, "rate": 0.05}
    ],
    "rate_buckets": {
      "normal": [{"start": "06:00", "end": "22:00", "multiplier": 1.5}]
    }
  }

  Numbers may be written as numbers or strings; they are parsed as
  decimals, never as floats. A bracket without "max" is unbounded.

KEY FEATURES:
  - Every validation failure is a generic.ConfigurationError
  - Missing sections are empty, not defaulted: defaults live in
    payroll.DefaultConfig and are applied by the caller
  - ToDocument reverses Build for GET /api/config

USAGE:
  f := factory.NewConfigFactory()
  cfg, err := f.ParseFile("payroll.yaml")

SEE ALSO:
  - payroll/presets.go: Seeded configuration
  - payroll/store.go: SeedConfig
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DOCUMENT SCHEMA TYPES
// =============================================================================

// Scalar is a settings value or number written either bare or quoted.
type Scalar string

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a number or string, got %s", data)
	}
	*s = Scalar(n.String())
	return nil
}

func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", node.Line)
	}
	*s = Scalar(node.Value)
	return nil
}

func (s Scalar) decimal(component string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(string(s)))
	if err != nil {
		return decimal.Zero, generic.NewConfigurationError(component, "not a number: %q", string(s))
	}
	return d, nil
}

// ConfigDocument is the serialized form of a payroll.Config.
type ConfigDocument struct {
	Settings    map[string]Scalar          `json:"settings" yaml:"settings"`
	Holidays    []HolidayDoc               `json:"holidays" yaml:"holidays"`
	TaxBrackets []TaxBracketDoc            `json:"tax_brackets" yaml:"tax_brackets"`
	RateBuckets map[string][]RateBucketDoc `json:"rate_buckets" yaml:"rate_buckets"`
}

// HolidayDoc is one public holiday.
type HolidayDoc struct {
	Date string `json:"date" yaml:"date"` // YYYY-MM-DD
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// TaxBracketDoc is one progressive tax band. Max omitted means unbounded.
type TaxBracketDoc struct {
	SortOrder int     `json:"sort_order" yaml:"sort_order"`
	Min       Scalar  `json:"min" yaml:"min"`
	Max       *Scalar `json:"max,omitempty" yaml:"max,omitempty"`
	Rate      Scalar  `json:"rate" yaml:"rate"`
}

// RateBucketDoc is one overtime window; the day type is the map key.
type RateBucketDoc struct {
	Start      string `json:"start" yaml:"start"` // HH:MM
	End        string `json:"end" yaml:"end"`     // HH:MM, 24:00 allowed
	Multiplier Scalar `json:"multiplier" yaml:"multiplier"`
}

// =============================================================================
// CONFIG FACTORY
// =============================================================================

// ConfigFactory converts configuration documents to payroll.Config.
type ConfigFactory struct{}

// NewConfigFactory creates a new configuration factory.
func NewConfigFactory() *ConfigFactory {
	return &ConfigFactory{}
}

// ParseJSON decodes and builds a JSON document.
func (f *ConfigFactory) ParseJSON(data []byte) (payroll.Config, error) {
	doc, err := DecodeJSON(data)
	if err != nil {
		return payroll.Config{}, err
	}
	return doc.Build()
}

// ParseYAML decodes and builds a YAML document.
func (f *ConfigFactory) ParseYAML(data []byte) (payroll.Config, error) {
	doc, err := DecodeYAML(data)
	if err != nil {
		return payroll.Config{}, err
	}
	return doc.Build()
}

// ParseFile picks the decoder from the file extension (.json, .yaml, .yml).
func (f *ConfigFactory) ParseFile(path string) (payroll.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return payroll.Config{}, fmt.Errorf("read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return f.ParseYAML(data)
	case ".json":
		return f.ParseJSON(data)
	default:
		return payroll.Config{}, fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
}

// DecodeJSON decodes without validating. Unknown fields are rejected.
func DecodeJSON(data []byte) (ConfigDocument, error) {
	var doc ConfigDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return ConfigDocument{}, generic.NewConfigurationError("document", "invalid JSON: %v", err)
	}
	return doc, nil
}

// DecodeYAML decodes without validating. Unknown fields are rejected.
func DecodeYAML(data []byte) (ConfigDocument, error) {
	var doc ConfigDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return ConfigDocument{}, generic.NewConfigurationError("document", "invalid YAML: %v", err)
	}
	return doc, nil
}

// Build validates the document into a payroll.Config.
func (doc ConfigDocument) Build() (payroll.Config, error) {
	values := make(map[string]string, len(doc.Settings))
	for k, v := range doc.Settings {
		values[k] = string(v)
	}
	settings := payroll.NewSettingsSnapshot(values)
	if _, err := settings.Resolve(); err != nil {
		return payroll.Config{}, err
	}

	holidays := make([]generic.Holiday, 0, len(doc.Holidays))
	for i, h := range doc.Holidays {
		d, err := generic.ParseDate(h.Date)
		if err != nil {
			return payroll.Config{}, generic.NewConfigurationError(fmt.Sprintf("holidays[%d]", i), "invalid date %q", h.Date)
		}
		holidays = append(holidays, generic.Holiday{Date: d, Name: h.Name})
	}

	brackets, err := doc.taxBrackets()
	if err != nil {
		return payroll.Config{}, err
	}
	taxes, err := payroll.NewTaxTable(brackets)
	if err != nil {
		return payroll.Config{}, err
	}

	buckets, err := doc.rateBuckets()
	if err != nil {
		return payroll.Config{}, err
	}
	rates, err := payroll.NewRateTable(buckets)
	if err != nil {
		return payroll.Config{}, err
	}

	return payroll.Config{
		Settings: settings,
		Taxes:    taxes,
		Rates:    rates,
		Holidays: generic.NewHolidaySet(holidays...),
	}, nil
}

func (doc ConfigDocument) taxBrackets() ([]payroll.TaxBracket, error) {
	out := make([]payroll.TaxBracket, 0, len(doc.TaxBrackets))
	for _, b := range doc.TaxBrackets {
		component := fmt.Sprintf("tax_brackets[%d]", b.SortOrder)
		lo, err := b.Min.decimal(component + ".min")
		if err != nil {
			return nil, err
		}
		rate, err := b.Rate.decimal(component + ".rate")
		if err != nil {
			return nil, err
		}
		bracket := payroll.TaxBracket{SortOrder: b.SortOrder, Min: lo, Rate: rate}
		if b.Max != nil && *b.Max != "" {
			hi, err := b.Max.decimal(component + ".max")
			if err != nil {
				return nil, err
			}
			bracket.Max = &hi
		}
		out = append(out, bracket)
	}
	return out, nil
}

func (doc ConfigDocument) rateBuckets() ([]payroll.RateBucket, error) {
	dayTypes := make([]string, 0, len(doc.RateBuckets))
	for dt := range doc.RateBuckets {
		dayTypes = append(dayTypes, dt)
	}
	sort.Strings(dayTypes)

	var out []payroll.RateBucket
	for _, dt := range dayTypes {
		dayType := payroll.DayType(strings.ToLower(dt))
		if !dayType.Valid() {
			return nil, generic.NewConfigurationError("rate_buckets", "unknown day type %q", dt)
		}
		component := "rate_buckets." + string(dayType)
		for _, b := range doc.RateBuckets[dt] {
			start, err := generic.ParseTimeOfDay(b.Start)
			if err != nil {
				return nil, generic.NewConfigurationError(component, "invalid start %q", b.Start)
			}
			end, err := generic.ParseTimeOfDay(b.End)
			if err != nil {
				return nil, generic.NewConfigurationError(component, "invalid end %q", b.End)
			}
			mult, err := b.Multiplier.decimal(component + ".multiplier")
			if err != nil {
				return nil, err
			}
			out = append(out, payroll.RateBucket{DayType: dayType, Start: start, End: end, Multiplier: mult})
		}
	}
	return out, nil
}

// =============================================================================
// REVERSE CONVERSION
// =============================================================================

// ToDocument converts a Config back into its document form.
func ToDocument(cfg payroll.Config) ConfigDocument {
	doc := ConfigDocument{
		Settings:    make(map[string]Scalar),
		Holidays:    []HolidayDoc{},
		TaxBrackets: []TaxBracketDoc{},
		RateBuckets: make(map[string][]RateBucketDoc),
	}
	for k, v := range cfg.Settings.Map() {
		doc.Settings[k] = Scalar(v)
	}
	for _, h := range cfg.Holidays.List() {
		doc.Holidays = append(doc.Holidays, HolidayDoc{Date: h.Date.String(), Name: h.Name})
	}
	for _, b := range cfg.Taxes.Brackets() {
		tb := TaxBracketDoc{SortOrder: b.SortOrder, Min: Scalar(b.Min.String()), Rate: Scalar(b.Rate.String())}
		if b.Max != nil {
			hi := Scalar(b.Max.String())
			tb.Max = &hi
		}
		doc.TaxBrackets = append(doc.TaxBrackets, tb)
	}
	for _, b := range cfg.Rates.Buckets() {
		dt := string(b.DayType)
		doc.RateBuckets[dt] = append(doc.RateBuckets[dt], RateBucketDoc{
			Start:      b.Start.String(),
			End:        b.End.String(),
			Multiplier: Scalar(b.Multiplier.String()),
		})
	}
	return doc
}

// MarshalYAML encodes a document as YAML.
func MarshalYAML(doc ConfigDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
