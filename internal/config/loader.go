package config

import (
	"bufio"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".serpharvest.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file structure. All fields are optional;
// anything left unset keeps its default or CLI-provided value.
type File struct {
	// Proxies lists proxy endpoint URLs.
	Proxies []string `yaml:"proxies,omitempty"`

	// UserAgents overrides the rotated User-Agent list.
	UserAgents []string `yaml:"userAgents,omitempty"`

	// GoogleDomain overrides the search engine domain.
	GoogleDomain string `yaml:"googleDomain,omitempty"`

	// Language and Country override geo-targeting.
	Language string `yaml:"language,omitempty"`
	Country  string `yaml:"country,omitempty"`

	// MinDelaySeconds and MaxDelaySeconds bound the inter-request delay.
	MinDelaySeconds float64 `yaml:"minDelaySeconds,omitempty"`
	MaxDelaySeconds float64 `yaml:"maxDelaySeconds,omitempty"`

	// OutputDir overrides the export directory.
	OutputDir string `yaml:"outputDir,omitempty"`
}

// LoadConfigFile loads harvester defaults from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .serpharvest.yaml in the current directory
//  3. Look for .serpharvest.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}

// Apply merges file values into the config. File values only replace
// fields the file actually sets; everything else is left untouched.
func (cf *File) Apply(c *Config) {
	if len(cf.Proxies) > 0 {
		c.ProxyURLs = cf.Proxies
	}
	if len(cf.UserAgents) > 0 {
		c.UserAgents = cf.UserAgents
	}
	if cf.GoogleDomain != "" {
		c.GoogleDomain = cf.GoogleDomain
	}
	if cf.Language != "" {
		c.Language = cf.Language
	}
	if cf.Country != "" {
		c.Country = cf.Country
	}
	if cf.MinDelaySeconds > 0 {
		c.MinDelay = time.Duration(cf.MinDelaySeconds * float64(time.Second))
	}
	if cf.MaxDelaySeconds > 0 {
		c.MaxDelay = time.Duration(cf.MaxDelaySeconds * float64(time.Second))
	}
	if cf.OutputDir != "" {
		c.OutputDir = cf.OutputDir
	}
}

// ValidProxyURL reports whether a proxy endpoint is a URL the fetcher can
// route through: http, https or socks5 with a host component.
func ValidProxyURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "socks5":
		return u.Host != ""
	default:
		return false
	}
}

// LoadLines reads a list file (keywords or proxies): one entry per line,
// blank lines and '#' comments skipped.
func LoadLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided list path is intentional
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
