package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Field is a canonical program detail attribute a header column maps to.
type Field string

const (
	FieldTargetTorque Field = "TargetTorque"
	FieldMinAngle     Field = "MinAngle"
	FieldMaxAngle     Field = "MaxAngle"
	FieldScrewCount   Field = "ScrewCount"
	FieldSpeedRPM     Field = "SpeedRPM"
)

// Fields lists every canonical field.
var Fields = []Field{FieldTargetTorque, FieldMinAngle, FieldMaxAngle, FieldScrewCount, FieldSpeedRPM}

// Valid reports whether f is a canonical field.
func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Synonym maps header text containing Pattern to Field.
type Synonym struct {
	Pattern string `yaml:"pattern" toml:"pattern"`
	Field   Field  `yaml:"field" toml:"field"`
}

// SynonymTable is evaluated in declaration order. Earlier entries take
// precedence when patterns overlap, e.g. "Speed" and "Speed (RPM)".
type SynonymTable []Synonym

// DefaultSynonyms returns the header synonyms used by the program sheets.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		{Pattern: "Torque", Field: FieldTargetTorque},
		{Pattern: "TC Target Torque/ AC Max Torque (Kgf_cm)", Field: FieldTargetTorque},
		{Pattern: "TC Target Torque/ AC Max Torque (Lbf_in)", Field: FieldTargetTorque},
		{Pattern: "Min Angle", Field: FieldMinAngle},
		{Pattern: "Min Angle (°)", Field: FieldMinAngle},
		{Pattern: "Max Angle", Field: FieldMaxAngle},
		{Pattern: "Max Angle (°)", Field: FieldMaxAngle},
		{Pattern: "Screw Count", Field: FieldScrewCount},
		{Pattern: "Speed", Field: FieldSpeedRPM},
		{Pattern: "Speed (RPM)", Field: FieldSpeedRPM},
	}
}

// Validate checks that every entry has a pattern and a canonical field.
func (t SynonymTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("synonym table is empty")
	}
	for i, s := range t {
		if strings.TrimSpace(s.Pattern) == "" {
			return fmt.Errorf("synonym %d: pattern is required", i+1)
		}
		if !s.Field.Valid() {
			return fmt.Errorf("synonym %d (%q): unknown field %q", i+1, s.Pattern, s.Field)
		}
	}
	return nil
}

type synonymFile struct {
	Synonyms SynonymTable `yaml:"synonyms" toml:"synonyms"`
}

// LoadSynonyms reads a synonym table from a YAML file of the form
//
//	synonyms:
//	  - pattern: Torque
//	    field: TargetTorque
//	  - pattern: Speed (RPM)
//	    field: SpeedRPM
//
// Files ending in .toml are read as [[synonyms]] tables instead.
func LoadSynonyms(path string) (SynonymTable, error) {
	// #nosec G304 - controlled path from config
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonym file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseSynonymsTOML(data)
	}
	return ParseSynonyms(data)
}

// ParseSynonymsTOML decodes a TOML synonym table.
func ParseSynonymsTOML(data []byte) (SynonymTable, error) {
	var f synonymFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("failed to parse synonym file: %w", err)
	}
	if err := f.Synonyms.Validate(); err != nil {
		return nil, err
	}
	return f.Synonyms, nil
}

// ParseSynonyms decodes a YAML synonym table.
func ParseSynonyms(data []byte) (SynonymTable, error) {
	var f synonymFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse synonym file: %w", err)
	}
	if err := f.Synonyms.Validate(); err != nil {
		return nil, err
	}
	return f.Synonyms, nil
}
