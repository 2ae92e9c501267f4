package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tnze/go-mc/save"
	"github.com/Tnze/go-mc/save/region"
	"github.com/google/uuid"
	"gopkg.in/yaml.v2"

	ooze "github.com/ooze-world/loader-legacy"
)

var logger = Logger{}

// Manifest describes one converted world.
type Manifest struct {
	WorldID     string `yaml:"world_id"`
	WorldDir    string `yaml:"world_dir"`
	Chunks      int    `yaml:"chunks"`
	EmptyChunks int    `yaml:"empty_chunks"`
}

func main() {
	config := LoadConfig()
	if config == nil {
		logger.Error("Failed to parse ooze.yml")
		os.Exit(1)
	}
	logger.Info("Starting ooze converter")

	regionDir := filepath.Join(config.WorldDir, "region")
	entries, err := os.ReadDir(regionDir)
	if err != nil {
		logger.Error("Failed to read region directory:", err.Error())
		os.Exit(1)
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		logger.Error("Failed to create output directory:", err.Error())
		os.Exit(1)
	}

	manifest := Manifest{
		WorldID:  uuid.New().String(),
		WorldDir: config.WorldDir,
	}
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".mca") {
			continue
		}
		logger.Debug("Converting region", entry.Name())
		convertRegion(filepath.Join(regionDir, entry.Name()), config, &manifest)
	}

	data, err := yaml.Marshal(&manifest)
	if err != nil {
		logger.Error("Failed to build manifest:", err.Error())
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(config.OutputDir, "manifest.yml"), data, 0644); err != nil {
		logger.Error("Failed to write manifest:", err.Error())
		os.Exit(1)
	}
	logger.Info("Converted", manifest.Chunks, "chunks,", manifest.EmptyChunks, "empty")
}

func convertRegion(path string, config *Config, manifest *Manifest) {
	r, err := region.Open(path)
	if err != nil {
		logger.Error("Failed to open region", path+":", err.Error())
		return
	}
	defer r.Close()

	for x := 0; x < 32; x++ {
		for z := 0; z < 32; z++ {
			if !r.ExistSector(x, z) {
				continue
			}
			data, err := r.ReadSector(x, z)
			if err != nil {
				logger.Warn("Failed to read sector", fmt.Sprintf("(%d, %d):", x, z), err.Error())
				continue
			}

			var c save.Chunk
			if err := c.Load(data); err != nil {
				logger.Warn("Failed to parse chunk", fmt.Sprintf("(%d, %d):", x, z), err.Error())
				continue
			}
			chunk, err := ooze.ChunkFromSave(&c)
			if err != nil {
				logger.Warn("Failed to convert chunk", fmt.Sprintf("(%d, %d):", c.XPos, c.ZPos), err.Error())
				continue
			}
			if chunk.IsEmpty() {
				manifest.EmptyChunks++
				if config.SkipEmpty {
					continue
				}
			}

			if err := writeChunk(chunk, config.OutputDir); err != nil {
				logger.Warn("Failed to write chunk", fmt.Sprintf("(%d, %d):", c.XPos, c.ZPos), err.Error())
				continue
			}
			manifest.Chunks++
		}
	}
}

func writeChunk(chunk *ooze.Chunk, outputDir string) error {
	loc := chunk.Location()
	f, err := os.Create(filepath.Join(outputDir, fmt.Sprintf("c.%d.%d.ooze", loc.X, loc.Z)))
	if err != nil {
		return err
	}
	if err := chunk.Serialize(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
