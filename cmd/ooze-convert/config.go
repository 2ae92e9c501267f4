package main

import (
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// Directory of the source world; region files are expected under its
	// "region" subdirectory.
	WorldDir string `yaml:"world_dir"`
	// Directory the .ooze chunks and the manifest are written to.
	OutputDir string `yaml:"output_dir"`
	// Skip chunks that contain nothing but air.
	SkipEmpty bool `yaml:"skip_empty"`
}

func LoadConfig() *Config {
	config := &Config{}

	file, err := os.Open("ooze.yml")
	if err != nil {
		file.Close()
		config = &Config{
			WorldDir:  "world",
			OutputDir: "ooze_out",
			SkipEmpty: true,
		}
		file, _ := os.Create("ooze.yml")
		e := yaml.NewEncoder(file)
		e.Encode(&config)
		file.Close()
		return config
	}
	defer file.Close()

	d := yaml.NewDecoder(file)

	if err := d.Decode(&config); err != nil {
		return nil
	}

	return config
}
