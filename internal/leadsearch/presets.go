package leadsearch

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Preset is a canned query suggestion, the CLI equivalent of the UI's
// suggestion chips.
type Preset struct {
	Name     string `yaml:"name"`
	Query    string `yaml:"query"`
	Location string `yaml:"location"`
	Count    int    `yaml:"count,omitempty"`
}

// LoadPresets reads query presets from a YAML file keyed under "presets".
func LoadPresets(path string) (map[string]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "leadsearch: read presets %s", path)
	}

	var wrapper struct {
		Presets []Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "leadsearch: parse presets")
	}

	out := make(map[string]Preset, len(wrapper.Presets))
	for _, p := range wrapper.Presets {
		if p.Name == "" {
			return nil, eris.New("leadsearch: preset missing name")
		}
		out[p.Name] = p
	}
	return out, nil
}
