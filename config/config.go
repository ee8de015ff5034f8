package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"` // development or production
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type UploadsConfig struct {
	// Dir is the image store root. Relative paths are resolved against
	// System.Workdir.
	Dir string `yaml:"dir"`
	// PublicPath is the URL prefix callers use to resolve image filenames.
	PublicPath string `yaml:"public_path"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system"`
	Web      WebConfig     `yaml:"web"`
	Database DBConfig      `yaml:"database"`
	Logger   LogConfig     `yaml:"logger"`
	Uploads  UploadsConfig `yaml:"uploads"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Fruitables",
		Location: "Asia/Baku",
		Workdir:  "/var/fruitables",
		Debug:    true,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 1816,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "fruitables",
		User:     "postgres",
		Passwd:   "postgres",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/fruitables/fruitables.log",
	},
	Uploads: UploadsConfig{
		Dir:        "uploads",
		PublicPath: "/uploads",
	},
}

// UploadsDir returns the absolute image store directory.
func (c *AppConfig) UploadsDir() string {
	if filepath.IsAbs(c.Uploads.Dir) {
		return c.Uploads.Dir
	}
	return filepath.Join(c.System.Workdir, c.Uploads.Dir)
}

func setEnvValue(name string, val *string) {
	evalue := os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	evalue := os.Getenv(name)
	if evalue != "" {
		*val = cast.ToBool(evalue)
	}
}

func setEnvIntValue(name string, val *int) {
	evalue := os.Getenv(name)
	if evalue != "" {
		*val = cast.ToInt(evalue)
	}
}

// LoadConfig reads the YAML config file and applies FRUITABLES_* environment
// overrides. A missing or empty path yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("FRUITABLES_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("FRUITABLES_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("FRUITABLES_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("FRUITABLES_WEB_PORT", &cfg.Web.Port)

	setEnvValue("FRUITABLES_DB_TYPE", &cfg.Database.Type)
	setEnvValue("FRUITABLES_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("FRUITABLES_DB_PORT", &cfg.Database.Port)
	setEnvValue("FRUITABLES_DB_NAME", &cfg.Database.Name)
	setEnvValue("FRUITABLES_DB_USER", &cfg.Database.User)
	setEnvValue("FRUITABLES_DB_PWD", &cfg.Database.Passwd)
	setEnvBoolValue("FRUITABLES_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("FRUITABLES_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("FRUITABLES_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("FRUITABLES_LOGGER_FILENAME", &cfg.Logger.Filename)

	setEnvValue("FRUITABLES_UPLOADS_DIR", &cfg.Uploads.Dir)
	setEnvValue("FRUITABLES_UPLOADS_PUBLIC_PATH", &cfg.Uploads.PublicPath)

	return cfg
}
