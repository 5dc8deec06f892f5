package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openhive-oss/openhive/internal/config"
)

var initDriver string

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize an openhive workspace",
	Long: `Initialize an openhive workspace with a starter config and an
example agent card.

Available drivers:
  memory - In-memory registry, nothing persists
  sqlite - Local SQLite database
  remote - Hosted registry over HTTP`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initDriver, "driver", "d", "sqlite", "registry driver (memory, sqlite, remote)")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Join(dir, "agents"), 0755); err != nil {
		return fmt.Errorf("failed to create agents directory: %w", err)
	}

	if err := createConfig(dir); err != nil {
		return err
	}
	if err := createExampleCard(dir); err != nil {
		return err
	}

	fmt.Printf("Initialized openhive workspace in %s\n", dir)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Review openhive.yaml and pick a registry driver")
	fmt.Println("  2. Edit agents/example.yaml or add your own cards")
	fmt.Println("  3. Run 'openhive agent add agents/example.yaml'")
	return nil
}

func createConfig(dir string) error {
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("%s already exists, skipping\n", config.FileName)
		return nil
	}

	var registrySection string
	switch initDriver {
	case "memory":
		registrySection = `registry:
  driver: memory
`
	case "remote":
		registrySection = `registry:
  driver: remote
  url: https://registry.example.com
  auth:
    # Exactly one credential may be set.
    bearer_token: ${env.OPENHIVE_TOKEN}
    # api_key: ${env.OPENHIVE_API_KEY}
    # access_token: ${env.OPENHIVE_ACCESS_TOKEN}
`
	default:
		registrySection = `registry:
  driver: sqlite
  path: openhive.db
`
	}

	content := `# openhive.yaml - Registry configuration
` + registrySection + `
logging:
  level: info
  format: text  # text | json
`
	return os.WriteFile(path, []byte(content), 0644)
}

func createExampleCard(dir string) error {
	path := filepath.Join(dir, "agents", "example.yaml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	content := `# Example agent card
name: example-agent
description: Answers questions about the weather
url: http://localhost:9000
version: "1.0.0"
protocolVersion: "0.3.0"
capabilities:
  streaming: true
skills:
  - id: forecast
    name: Weather forecast
    description: Seven day forecast for a city
    tags: [weather, forecast]
`
	return os.WriteFile(path, []byte(content), 0644)
}
