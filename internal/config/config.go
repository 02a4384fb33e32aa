package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"dvfpipe/internal/domain"
)

// Config is the complete, immutable run configuration. It is constructed
// once at pipeline start and passed by reference into each stage; stages
// never mutate it.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
}

// PipelineConfig carries the preprocessing parameters. Defaults replicate
// the reference DVF run.
type PipelineConfig struct {
	// ReferenceQuarter is the quarter every sale price is re-based to.
	ReferenceQuarter string `yaml:"reference_quarter" envconfig:"REFERENCE_QUARTER" validate:"required"`
	// TestQuarters are held out of the training partition and excluded
	// from every nearest-neighbor reference set.
	TestQuarters []string `yaml:"test_quarters" envconfig:"TEST_QUARTERS"`

	// TopMetropoles restricts the run to the N EPCI groupings with the
	// most transactions. A negative value disables the restriction.
	TopMetropoles int `yaml:"top_metropoles" envconfig:"TOP_METROPOLES" validate:"gte=-1"`
	// RowCap truncates the input after reading, as a development aid.
	// Zero disables the cap.
	RowCap int `yaml:"row_cap" envconfig:"ROW_CAP" validate:"min=0"`

	// Hard-bound outlier limits per property type.
	MaxHouseSurface     float64 `yaml:"max_house_surface" envconfig:"MAX_HOUSE_SURFACE" validate:"gt=0"`
	MaxHouseRooms       float64 `yaml:"max_house_rooms" envconfig:"MAX_HOUSE_ROOMS" validate:"gt=0"`
	MaxApartmentSurface float64 `yaml:"max_apartment_surface" envconfig:"MAX_APARTMENT_SURFACE" validate:"gt=0"`
	MaxApartmentRooms   float64 `yaml:"max_apartment_rooms" envconfig:"MAX_APARTMENT_ROOMS" validate:"gt=0"`

	// Price-per-m² bounds and the per-(commune,type) quantile cut.
	MinPriceM2    float64 `yaml:"min_price_m2" envconfig:"MIN_PRICE_M2" validate:"gt=0"`
	MaxPriceM2    float64 `yaml:"max_price_m2" envconfig:"MAX_PRICE_M2" validate:"gt=0"`
	PriceQuantile float64 `yaml:"price_quantile" envconfig:"PRICE_QUANTILE" validate:"gt=0,lte=1"`

	// Nearest-neighbor counts.
	KZonePrice int `yaml:"k_zone_price" envconfig:"K_ZONE_PRICE" validate:"min=1"`
	KSchools   int `yaml:"k_schools" envconfig:"K_SCHOOLS" validate:"min=1"`

	// ZonePriceAggregate picks how the neighborhood price level is reduced
	// over the neighbors: plain mean or the intercept of a least-squares
	// fit on surface and room count.
	ZonePriceAggregate string `yaml:"zone_price_aggregate" envconfig:"ZONE_PRICE_AGGREGATE" validate:"oneof=mean regression"`

	// Reference year for lycée results and session year for brevet results.
	LyceeYear     int `yaml:"lycee_year" envconfig:"LYCEE_YEAR"`
	BrevetSession int `yaml:"brevet_session" envconfig:"BREVET_SESSION"`

	// Workers bounds the fan-out of the parallel nearest-neighbor
	// queries. Zero means GOMAXPROCS.
	Workers int `yaml:"workers" envconfig:"WORKERS" validate:"min=0"`
}

// Load reads the yaml configuration file if present, applies environment
// overrides (DVF_ prefix) and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("DVF", cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero values left by a partial yaml file; envconfig
// defaults only apply to fields absent from both yaml and environment.
func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	p := &c.Pipeline
	if p.ReferenceQuarter == "" {
		p.ReferenceQuarter = "2022-T2"
	}
	if p.TopMetropoles == 0 {
		p.TopMetropoles = 10
	}
	if len(p.TestQuarters) == 0 {
		p.TestQuarters = []string{"2021-T3", "2021-T4", "2022-T1", "2022-T2"}
	}
	if p.MaxHouseSurface == 0 {
		p.MaxHouseSurface = 360
	}
	if p.MaxHouseRooms == 0 {
		p.MaxHouseRooms = 10
	}
	if p.MaxApartmentSurface == 0 {
		p.MaxApartmentSurface = 200
	}
	if p.MaxApartmentRooms == 0 {
		p.MaxApartmentRooms = 6
	}
	if p.MinPriceM2 == 0 {
		p.MinPriceM2 = 1000
	}
	if p.MaxPriceM2 == 0 {
		p.MaxPriceM2 = 20000
	}
	if p.PriceQuantile == 0 {
		p.PriceQuantile = 0.99
	}
	if p.KZonePrice == 0 {
		p.KZonePrice = 10
	}
	if p.KSchools == 0 {
		p.KSchools = 3
	}
	if p.ZonePriceAggregate == "" {
		p.ZonePriceAggregate = "mean"
	}
	if p.LyceeYear == 0 {
		p.LyceeYear = 2020
	}
	if p.BrevetSession == 0 {
		p.BrevetSession = 2021
	}
	c.Paths.applyDefaults()
}

// Validate checks structural constraints and quarter labels.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if _, err := domain.ParseQuarter(c.Pipeline.ReferenceQuarter); err != nil {
		return fmt.Errorf("validate config: reference quarter: %w", err)
	}
	for _, q := range c.Pipeline.TestQuarters {
		if _, err := domain.ParseQuarter(q); err != nil {
			return fmt.Errorf("validate config: test quarter: %w", err)
		}
	}
	if len(c.Paths.DVFPatterns) == 0 {
		return fmt.Errorf("validate config: no dvf input patterns configured")
	}
	if c.Pipeline.MinPriceM2 >= c.Pipeline.MaxPriceM2 {
		return fmt.Errorf("validate config: min price %.0f must be below max price %.0f",
			c.Pipeline.MinPriceM2, c.Pipeline.MaxPriceM2)
	}
	return nil
}

// ReferenceQuarter returns the parsed reference quarter. Validate guarantees
// the label parses.
func (c *Config) ReferenceQuarter() domain.Quarter {
	q, _ := domain.ParseQuarter(c.Pipeline.ReferenceQuarter)
	return q
}

// TestQuarterSet returns the held-out quarters as a lookup set.
func (c *Config) TestQuarterSet() map[domain.Quarter]bool {
	set := make(map[domain.Quarter]bool, len(c.Pipeline.TestQuarters))
	for _, s := range c.Pipeline.TestQuarters {
		q, _ := domain.ParseQuarter(s)
		set[q] = true
	}
	return set
}
