package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/datagrid/internal/paths"
	"github.com/mesh-intelligence/datagrid/internal/remote"
	"github.com/mesh-intelligence/datagrid/internal/sqlite"
	"github.com/mesh-intelligence/datagrid/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "GRIDCTL"
)

// Config keys.
const (
	cfgKeyPageSize       = "page_size"
	cfgKeyIDField        = "id_field"
	cfgKeyDataDir        = "data_dir"
	cfgKeySync           = "sync"
	cfgKeyRemoteBaseURL  = "remote.base_url"
	cfgKeyRemoteToken    = "remote.token"
	cfgKeyRemoteHeader   = "remote.auth_header"
	cfgKeyRemoteEndpoint = "remote.endpoints"
	cfgKeyExportFilename = "export.filename"
)

// configFile is the structure written to config.yaml on first run.
type configFile struct {
	PageSize int          `yaml:"page_size"`
	IDField  string       `yaml:"id_field"`
	Sync     string       `yaml:"sync"`
	DataDir  string       `yaml:"data_dir,omitempty"`
	Remote   remoteFile   `yaml:"remote"`
	Export   exportConfig `yaml:"export"`
}

type remoteFile struct {
	BaseURL    string `yaml:"base_url"`
	AuthHeader string `yaml:"auth_header,omitempty"`
}

type exportConfig struct {
	Filename string `yaml:"filename"`
}

func defaultConfigFile() configFile {
	return configFile{
		PageSize: types.DefaultPageSize,
		IDField:  types.DefaultIDField,
		Sync:     sqlite.SyncImmediate,
		Export:   exportConfig{Filename: types.DefaultExportFilename},
	}
}

// loadConfig reads config.yaml from dir, writing a default file first when
// none exists. GRIDCTL_REMOTE_TOKEN overrides remote.token so secrets can
// stay out of the file.
func loadConfig(dir string) (*viper.Viper, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := writeConfigIfMissing(paths.ConfigFile(dir)); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}

	v := viper.New()
	def := defaultConfigFile()
	v.SetDefault(cfgKeyPageSize, def.PageSize)
	v.SetDefault(cfgKeyIDField, def.IDField)
	v.SetDefault(cfgKeySync, def.Sync)
	v.SetDefault(cfgKeyExportFilename, def.Export.Filename)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv(cfgKeyRemoteToken)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values. An
// existing file is left alone.
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	data, err := yaml.Marshal(defaultConfigFile())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# gridctl configuration. remote.token may be set through GRIDCTL_REMOTE_TOKEN.\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

// remoteConfig builds the HTTP client settings. baseURL overrides the
// configured remote.base_url when set.
func (a *app) remoteConfig(baseURL string) (remote.Config, error) {
	rc := remote.Config{
		BaseURL:    a.cfg.GetString(cfgKeyRemoteBaseURL),
		Token:      a.cfg.GetString(cfgKeyRemoteToken),
		AuthHeader: a.cfg.GetString(cfgKeyRemoteHeader),
		Logger:     a.log,
	}
	if baseURL != "" {
		rc.BaseURL = baseURL
	}
	if rc.BaseURL == "" {
		return rc, usagef("no remote URL: pass --url or set %s in config.yaml", cfgKeyRemoteBaseURL)
	}
	if a.cfg.IsSet(cfgKeyRemoteEndpoint) {
		if err := a.cfg.UnmarshalKey(cfgKeyRemoteEndpoint, &rc.Endpoints); err != nil {
			return rc, fmt.Errorf("read %s: %w", cfgKeyRemoteEndpoint, err)
		}
	}
	return rc, nil
}
