package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathsConfig locates every input table and the output file. All relative
// paths are resolved against DataDir.
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR"`

	// DVFPatterns are glob patterns for the raw transaction extracts.
	DVFPatterns []string `yaml:"dvf_patterns" envconfig:"DVF_PATTERNS"`

	IndexTable   string `yaml:"index_table" envconfig:"INDEX_TABLE"`
	Zonage       string `yaml:"zonage" envconfig:"ZONAGE"`
	Metropoles   string `yaml:"metropoles" envconfig:"METROPOLES"`
	SchoolGeo    string `yaml:"school_geo" envconfig:"SCHOOL_GEO"`
	BrevetTable  string `yaml:"brevet_table" envconfig:"BREVET_TABLE"`
	LyceeTable   string `yaml:"lycee_table" envconfig:"LYCEE_TABLE"`
	IRISValues   string `yaml:"iris_values" envconfig:"IRIS_VALUES"`
	IRISContours string `yaml:"iris_contours" envconfig:"IRIS_CONTOURS"`
	Amenities    string `yaml:"amenities" envconfig:"AMENITIES"`

	OutputFile string `yaml:"output_file" envconfig:"OUTPUT_FILE"`
}

func (p *PathsConfig) applyDefaults() {
	if p.DataDir == "" {
		p.DataDir = "data"
	}
	if len(p.DVFPatterns) == 0 {
		p.DVFPatterns = []string{"dvf/full_*.csv"}
	}
	if p.IndexTable == "" {
		p.IndexTable = "open_data/valeurs_trimestrielles.csv"
	}
	if p.Zonage == "" {
		p.Zonage = "open_data/Zonage_abc_communes_2022.xlsx"
	}
	if p.Metropoles == "" {
		p.Metropoles = "open_data/metropoles_communes.csv"
	}
	if p.SchoolGeo == "" {
		p.SchoolGeo = "open_data/geo_brevet.csv"
	}
	if p.BrevetTable == "" {
		p.BrevetTable = "open_data/resultats_brevet.csv"
	}
	if p.LyceeTable == "" {
		p.LyceeTable = "open_data/resultats_lycees.csv"
	}
	if p.IRISValues == "" {
		p.IRISValues = "open_data/IRIS_donnees.csv"
	}
	if p.IRISContours == "" {
		p.IRISContours = "open_data/IRIS_contours.geojson"
	}
	if p.Amenities == "" {
		p.Amenities = "open_data/bpe21_ensemble_xy.csv"
	}
	if p.OutputFile == "" {
		p.OutputFile = "processed/processed_data.csv"
	}
}

// Resolve joins a configured path with the data directory unless it is
// already absolute.
func (p *PathsConfig) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.DataDir, path)
}

// ResolvePatterns resolves the DVF glob patterns against the data directory.
func (p *PathsConfig) ResolvePatterns() []string {
	resolved := make([]string, 0, len(p.DVFPatterns))
	for _, pattern := range p.DVFPatterns {
		resolved = append(resolved, p.Resolve(pattern))
	}
	return resolved
}

// OutputPath resolves the output file location and creates its parent
// directory if absent.
func (p *PathsConfig) OutputPath() (string, error) {
	out := p.Resolve(p.OutputFile)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return out, nil
}
