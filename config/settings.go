package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type CameraSettings struct {
	Fov    float32 `yaml:"fov"`
	Aspect float32 `yaml:"aspect"`
}

type Settings struct {
	ListenAddr string         `yaml:"listen"`
	WebDir     string         `yaml:"webdir"`
	Encoding   string         `yaml:"encoding"`
	Camera     CameraSettings `yaml:"camera"`
}

var currentSettings = DefaultSettings()

func DefaultSettings() Settings {
	return Settings{
		ListenAddr: ":8000",
		WebDir:     "web/data",
		Camera: CameraSettings{
			Fov:    45.0,
			Aspect: 16.0 / 9.0,
		},
	}
}

func GetSettings() Settings {
	return currentSettings
}

func SetSettings(s Settings) {
	currentSettings = s
}

// LoadSettings reads a yaml settings file on top of the defaults.
// Fields missing from the file keep their default values.
func LoadSettings(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "Cannot read settings file %q", path)
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return errors.Wrapf(err, "Cannot parse settings file %q", path)
	}

	if s.Encoding != "" {
		if err := SetEncoding(s.Encoding); err != nil {
			return err
		}
	}

	currentSettings = s
	return nil
}
