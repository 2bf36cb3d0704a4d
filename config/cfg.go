package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// StylesConfig allows overriding embedded export stylesheets.
	StylesConfig struct {
		StaticPath   string `yaml:"static_path,omitempty" sanitize:"assure_file_access" validate:"omitempty,filepath"`
		SnapshotPath string `yaml:"snapshot_path,omitempty" sanitize:"assure_file_access" validate:"omitempty,filepath"`
		ViewPath     string `yaml:"view_path,omitempty" sanitize:"assure_file_access" validate:"omitempty,filepath"`
	}

	// LeadConfig controls emphasis of the opening words of the lead section.
	LeadConfig struct {
		Emphasis bool `yaml:"emphasis"`
	}

	HeadingsConfig struct {
		SentenceCase bool `yaml:"sentence_case"`
	}

	DocumentConfig struct {
		OutputNameTemplate    string         `yaml:"output_name_template"`
		FileNameTransliterate bool           `yaml:"file_name_transliterate"`
		AccessedDate          string         `yaml:"accessed_date,omitempty"`
		Lead                  LeadConfig     `yaml:"lead"`
		Headings              HeadingsConfig `yaml:"headings"`
		Styles                StylesConfig   `yaml:"styles"`
	}

	PipelineConfig struct {
		BaseURL  string       `yaml:"base_url" validate:"omitempty,url"`
		APIToken SecretString `yaml:"api_token,omitempty"`
	}

	ServerConfig struct {
		Address        string   `yaml:"address" validate:"required,hostname_port"`
		AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,required"`
		ExportDir      string   `yaml:"export_dir" sanitize:"path_clean" validate:"required"`
		HistoryPath    string   `yaml:"history_path,omitempty" sanitize:"path_clean" validate:"omitempty,filepath"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Pipeline  PipelineConfig `yaml:"pipeline"`
		Server    ServerConfig   `yaml:"server"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
