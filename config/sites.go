package config

import (
	_ "embed"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"news-analysis/apperrors"
)

//go:embed sites.yaml
var defaultSites []byte

// Site is one allow-listed source together with the URL prefixes to skip.
type Site struct {
	Domain  string   `yaml:"domain"`
	Exclude []string `yaml:"exclude"`
}

type siteList struct {
	Sites []Site `yaml:"sites"`
}

// LoadSites reads the site allow-list from path, or the embedded default when path is empty.
func LoadSites(path string) ([]Site, error) {
	data := defaultSites
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.Wrapf(err, "read sites file %s", path)
		}
		data = raw
	}
	return ParseSites(data)
}

// ParseSites decodes a YAML site allow-list.
func ParseSites(data []byte) ([]Site, error) {
	var list siteList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, apperrors.Wrap(err, "decode sites yaml")
	}
	if len(list.Sites) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "site allow-list is empty")
	}

	for i, s := range list.Sites {
		domain := strings.TrimSpace(s.Domain)
		if domain == "" {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "site %d has no domain", i)
		}
		list.Sites[i].Domain = domain
	}
	return list.Sites, nil
}
