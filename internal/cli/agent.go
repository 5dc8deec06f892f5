package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openhive-oss/openhive/internal/card"
	"github.com/openhive-oss/openhive/internal/config"
	"github.com/openhive-oss/openhive/internal/errors"
	"github.com/openhive-oss/openhive/internal/registry"
	"github.com/openhive-oss/openhive/internal/telemetry"
)

var (
	agentPage  int
	agentLimit int
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage registered agents",
	Long:  `Commands for registering, inspecting, and searching agent cards.`,
}

var agentAddCmd = &cobra.Command{
	Use:   "add <card-file>",
	Short: "Register an agent from a YAML or JSON card file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentAdd,
}

var agentGetCmd = &cobra.Command{
	Use:   "get <id-or-name>",
	Short: "Show one agent card",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentGet,
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered agents",
	RunE:  runAgentList,
}

var agentSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search agents with the query grammar",
	Long: `Search agents. Queries are whitespace-separated terms; field filters
use field:value with fields name, description, and skill. Values may be
quoted. All matching is case-insensitive substring containment, and all
terms must match.

Examples:
  openhive agent search 'skill:translate'
  openhive agent search 'name:"My Awesome Agent" skill:chat'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAgentSearch,
}

var agentUpdateCmd = &cobra.Command{
	Use:   "update <id-or-name> <card-file>",
	Short: "Replace an agent card",
	Args:  cobra.ExactArgs(2),
	RunE:  runAgentUpdate,
}

var agentRemoveCmd = &cobra.Command{
	Use:   "remove <id-or-name>",
	Short: "Remove an agent",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentRemove,
}

var agentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every agent from the registry",
	RunE:  runAgentClear,
}

func init() {
	agentListCmd.Flags().IntVar(&agentPage, "page", 0, "page number (1-based)")
	agentListCmd.Flags().IntVar(&agentLimit, "limit", 0, "page size")
	agentSearchCmd.Flags().IntVar(&agentPage, "page", 0, "page number (1-based)")
	agentSearchCmd.Flags().IntVar(&agentLimit, "limit", 0, "page size")

	agentCmd.AddCommand(agentAddCmd)
	agentCmd.AddCommand(agentGetCmd)
	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentSearchCmd)
	agentCmd.AddCommand(agentUpdateCmd)
	agentCmd.AddCommand(agentRemoveCmd)
	agentCmd.AddCommand(agentClearCmd)
}

// openRegistry builds the façade from openhive.yaml.
func openRegistry() (*registry.Registry, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}

	cred := registry.Credential{
		BearerToken: cfg.Registry.Auth.BearerToken,
		APIKey:      cfg.Registry.Auth.APIKey,
		AccessToken: cfg.Registry.Auth.AccessToken,
	}
	adapter, err := registry.Open(cfg.Registry.Driver, cfg.Registry.Path, cfg.Registry.URL, cred)
	if err != nil {
		return nil, err
	}

	logger := telemetry.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if verbose {
		logger = telemetry.NewVerboseLogger(true)
	}
	return registry.New(adapter, logger), nil
}

func runAgentAdd(cmd *cobra.Command, args []string) error {
	c, err := card.LoadFile(args[0])
	if err != nil {
		return err
	}

	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	stored, err := reg.Add(context.Background(), c)
	if err != nil {
		return suggest(err)
	}

	fmt.Printf("Registered %s (%s)\n", stored.Name, stored.ID)
	return nil
}

func runAgentGet(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	c, err := reg.Get(context.Background(), args[0])
	if err != nil {
		return suggest(err)
	}

	printCard(c)
	return nil
}

func runAgentList(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	cards, err := reg.List(context.Background(), registry.Page{Number: agentPage, Limit: agentLimit})
	if err != nil {
		return suggest(err)
	}

	if len(cards) == 0 {
		fmt.Println("No agents registered.")
		return nil
	}
	for _, c := range cards {
		printCardLine(c)
	}
	return nil
}

func runAgentSearch(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	query := strings.Join(args, " ")
	cards, err := reg.Search(context.Background(), query, registry.Page{Number: agentPage, Limit: agentLimit})
	if err != nil {
		return suggest(err)
	}

	if len(cards) == 0 {
		fmt.Printf("No agents match %q.\n", query)
		return nil
	}
	for _, c := range cards {
		printCardLine(c)
	}
	return nil
}

func runAgentUpdate(cmd *cobra.Command, args []string) error {
	c, err := card.LoadFile(args[1])
	if err != nil {
		return err
	}

	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	updated, err := reg.Update(context.Background(), args[0], c)
	if err != nil {
		return suggest(err)
	}

	fmt.Printf("Updated %s (%s)\n", updated.Name, updated.ID)
	return nil
}

func runAgentRemove(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	if err := reg.Delete(context.Background(), args[0]); err != nil {
		return suggest(err)
	}

	fmt.Printf("Removed %s\n", args[0])
	return nil
}

func runAgentClear(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	if err := reg.Clear(context.Background()); err != nil {
		return suggest(err)
	}

	fmt.Println("Registry cleared.")
	return nil
}

func printCard(c *card.AgentCard) {
	fmt.Printf("%s (%s)\n", c.Name, c.ID)
	if c.Description != "" {
		fmt.Printf("  Description: %s\n", c.Description)
	}
	fmt.Printf("  Version: %s (protocol %s)\n", c.Version, c.ProtocolVersion)
	fmt.Printf("  URL: %s\n", c.URL)
	if len(c.Skills) > 0 {
		fmt.Println("  Skills:")
		for _, s := range c.Skills {
			fmt.Printf("    %s (%s)\n", s.Name, s.ID)
		}
	}
}

func printCardLine(c *card.AgentCard) {
	skills := make([]string, len(c.Skills))
	for i, s := range c.Skills {
		skills[i] = s.ID
	}
	fmt.Printf("%-30s %-12s %s\n", c.Name, c.Version, strings.Join(skills, ","))
}

// suggest appends the error's suggestion, when one is set, so CLI users see
// the actionable fix.
func suggest(err error) error {
	if s := errors.Suggestion(err); s != "" {
		return fmt.Errorf("%w\n  hint: %s", err, s)
	}
	return err
}
