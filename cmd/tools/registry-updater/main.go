// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mic-ai-service/internal/common/validation"
	"mic-ai-service/pkg/registry"
)

var registryPath string

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{exportCmd, updateCmd, validateCmd} {
		fs.StringVar(&registryPath, "path", "configs/stage-registry.json", "Path to registry file")
	}

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Stage ID to update (viability, fit, saturation, recommendations)")
	field := updateCmd.String("field", "", "Field to update (systemPrompt, temperature, maxTokens, corpusChars, ...)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := saveRegistry(registry.Default(), registryPath); err != nil {
			fmt.Printf("Error exporting registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported built-in stages to %s\n", registryPath)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateStage(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating stage: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated stage %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help(os.Stdout)
	}
}

// updateStage edits one field of a stage in the override file. Missing
// files start from the built-in stages.
func updateStage(id, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = registry.Default()
	}

	var stage *registry.Stage
	for i := range reg.Stages {
		if reg.Stages[i].ID == id {
			stage = &reg.Stages[i]
			break
		}
	}
	if stage == nil {
		if _, known := registry.Default().Get(id); !known {
			return fmt.Errorf("stage with ID %s not found", id)
		}
		reg.Stages = append(reg.Stages, registry.Stage{ID: id})
		stage = &reg.Stages[len(reg.Stages)-1]
	}

	switch field {
	case "displayName":
		stage.DisplayName = value
	case "description":
		stage.Description = value
	case "systemPrompt":
		stage.SystemPrompt = value
	case "temperature":
		t, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid temperature value: %w", err)
		}
		stage.Temperature = t
	case "maxTokens", "corpusChars":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", field, err)
		}
		if field == "maxTokens" {
			stage.MaxTokens = n
		} else {
			stage.CorpusChars = n
		}
	case "tags":
		stage.Tags = strings.Split(value, ",")
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().Format("2006-01-02")
	return saveRegistry(reg, registryPath)
}

func validateRegistry() error {
	reg, err := registry.Load(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	ids := make(map[string]bool)
	for _, stage := range reg.Stages {
		if ids[stage.ID] {
			return fmt.Errorf("duplicate stage ID: %s", stage.ID)
		}
		ids[stage.ID] = true

		if stage.SystemPrompt == "" {
			return fmt.Errorf("stage %s missing required field: SystemPrompt", stage.ID)
		}
		if stage.MaxTokens <= 0 {
			return fmt.Errorf("stage %s: maxTokens must be positive", stage.ID)
		}
		if stage.Temperature < 0 || stage.Temperature > 2 {
			return fmt.Errorf("stage %s: temperature %.2f out of range [0, 2]", stage.ID, stage.Temperature)
		}
		if _, err := validation.Validate(map[string]interface{}{}, stage.OutputSchema); err != nil {
			return fmt.Errorf("stage %s: unusable output schema: %w", stage.ID, err)
		}
	}

	fmt.Printf("Registry validation passed. Found %d stages.\n", len(reg.Stages))
	return nil
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.StageRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

const usage = `
Usage: registry-updater <command> [flags]

Commands:
  export   Write the built-in analysis stages to a registry file
  update   Override one field of a stage
  validate Validate the registry file merged over the built-in stages
  help     Show this help message

Examples:
  registry-updater export -path configs/stage-registry.json
  registry-updater update -id recommendations -field temperature -value 0.5
  registry-updater validate -path configs/stage-registry.json

Use 'registry-updater <command> -h' for more information about a command.
`

func help(w io.Writer) {
	fmt.Fprint(w, usage)
}
