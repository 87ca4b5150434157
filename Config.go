/*
File Name:  Config.go
Copyright:  2024 Hearthmesh Contributors

Configuration surface (§6). Adapted from the teacher's LoadConfig/saveConfig
(Config.go): YAML file with an embedded default fallback when the file is
missing or empty, same status-code return shape, same atomic-write-on-save
discipline the spec calls out for the proxy's own config file (§6 "Persisted
state layout"), generalized here to this module's own config.
*/

package meshcore

import (
	_ "embed"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hearthmesh/meshcore/sanitize"
)

//go:embed config.default.yaml
var defaultConfigYAML []byte

// Config is the full configuration surface (§6 table).
type Config struct {
	DataDirectory string `yaml:"DataDirectory"`

	Mesh struct {
		FragmentSize          int `yaml:"FragmentSize"`
		TTLDefault            int `yaml:"TTLDefault"`
		MaxInFlightAssemblies int `yaml:"MaxInFlightAssemblies"`
	} `yaml:"Mesh"`

	Outbox struct {
		CapPerPeer int `yaml:"CapPerPeer"`
	} `yaml:"Outbox"`

	Bloom struct {
		MaxBytes  int     `yaml:"MaxBytes"`
		TargetFpr float64 `yaml:"TargetFpr"`
	} `yaml:"Bloom"`

	Gossip struct {
		PeriodSeconds int `yaml:"PeriodSeconds"`
	} `yaml:"Gossip"`

	Overlay struct {
		SocksHostPort        string `yaml:"SocksHostPort"`
		ControlPort          int    `yaml:"ControlPort"`
		RelayCountPerGeohash int    `yaml:"RelayCountPerGeohash"`
	} `yaml:"Overlay"`

	Pow struct {
		BitsByPrecision []int `yaml:"BitsByPrecision"`
	} `yaml:"Pow"`

	Policy struct {
		FailClosed bool `yaml:"FailClosed"`
	} `yaml:"Policy"`
}

// LoadConfigStatus mirrors the teacher's numeric status convention.
type LoadConfigStatus int

const (
	ConfigStatusUnknownError LoadConfigStatus = iota
	ConfigStatusReadError
	ConfigStatusParseError
	ConfigStatusSuccess
)

// LoadConfig reads the YAML configuration file at filename, falling back to
// the embedded default when the file does not exist or is empty.
func LoadConfig(filename string) (cfg Config, status LoadConfigStatus, err error) {
	var configData []byte

	stats, statErr := os.Stat(filename)
	switch {
	case statErr != nil && os.IsNotExist(statErr):
		configData = defaultConfigYAML
	case statErr != nil:
		return cfg, ConfigStatusUnknownError, statErr
	case stats.Size() == 0:
		configData = defaultConfigYAML
	default:
		if configData, err = os.ReadFile(filename); err != nil {
			return cfg, ConfigStatusReadError, err
		}
	}

	if err = yaml.Unmarshal(configData, &cfg); err != nil {
		return cfg, ConfigStatusParseError, err
	}

	cfg.DataDirectory = sanitize.Directory(cfg.DataDirectory)

	return cfg, ConfigStatusSuccess, nil
}

// SaveConfig writes cfg to filename, logging (not propagating) failures the
// same way the teacher's saveConfig does for a best-effort background save.
func SaveConfig(filename string, cfg Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		log.Printf("SaveConfig error marshalling config: %v", err)
		return
	}

	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		log.Printf("SaveConfig error writing config '%s': %v", tmp, err)
		return
	}
	if err := os.Rename(tmp, filename); err != nil {
		log.Printf("SaveConfig error renaming config '%s': %v", filename, err)
	}
}

// DefaultConfig parses and returns the embedded default configuration.
func DefaultConfig() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		panic("meshcore: embedded default config is invalid: " + err.Error())
	}
	return cfg
}
