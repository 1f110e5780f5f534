package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/Dallionking/quantdesk/internal/schema"
	"github.com/Dallionking/quantdesk/internal/tui/styles"
	"github.com/Dallionking/quantdesk/internal/tui/views"
)

var strategiesJSON bool

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the strategies the backtest engine accepts",
	Long: `List the registered strategies with their parameters and defaults.

Subcommands:
  show <id>   print the parameter sheet of one strategy
  browse      open the interactive browser

Use --json for machine-readable output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		list := schema.Builtin.List()
		if strategiesJSON {
			return printStrategiesJSON(list)
		}

		fmt.Println(styles.Title.Render("Strategies"))
		fmt.Println()
		fmt.Printf("  %s  %s  %s\n",
			styles.TableHeader.Width(14).Render("ID"),
			styles.TableHeader.Width(26).Render("NAME"),
			styles.TableHeader.Render("PARAMETERS"),
		)
		fmt.Println(styles.Divider(78))
		for i, s := range list {
			parts := make([]string, len(s.Fields))
			for j, f := range s.Fields {
				parts[j] = f.Name + "=" + schema.Text(f.Default)
			}
			marker := " "
			if i == 0 {
				marker = styles.Cyan("*")
			}
			fmt.Printf("%s %s  %s  %s\n",
				marker,
				styles.Bold(fmt.Sprintf("%-14s", s.ID)),
				fmt.Sprintf("%-26s", s.DisplayName),
				styles.Dim(strings.Join(parts, " ")),
			)
		}
		fmt.Println()
		fmt.Println(styles.Dim("  * = default"))
		return nil
	},
}

var strategiesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the parameter sheet of a strategy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := schema.Builtin.Get(args[0])
		if err != nil {
			return err
		}
		out, err := glamour.Render(schema.Markdown(s), "dark")
		if err != nil {
			return fmt.Errorf("rendering %s: %w", s.ID, err)
		}
		fmt.Print(out)
		return nil
	},
}

var strategiesBrowseCmd = &cobra.Command{
	Use:   "browse [id]",
	Short: "Browse strategies interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selected := ""
		if len(args) == 1 {
			if _, err := schema.Builtin.Get(args[0]); err != nil {
				return err
			}
			selected = args[0]
		}
		return views.RunStrategyBrowser(schema.Builtin, selected)
	},
}

type strategyJSON struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Fields []fieldJSON `json:"fields"`
}

type fieldJSON struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Kind    string `json:"kind"`
	Default any    `json:"default"`
}

func printStrategiesJSON(list []schema.Strategy) error {
	out := make([]strategyJSON, len(list))
	for i, s := range list {
		out[i] = strategyJSON{ID: s.ID, Name: s.DisplayName, Fields: make([]fieldJSON, len(s.Fields))}
		for j, f := range s.Fields {
			out[i].Fields[j] = fieldJSON{Name: f.Name, Label: f.Label, Kind: string(f.Kind), Default: f.Default}
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding strategies: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	strategiesCmd.Flags().BoolVar(&strategiesJSON, "json", false, "output as JSON")
	strategiesCmd.AddCommand(strategiesShowCmd, strategiesBrowseCmd)
	rootCmd.AddCommand(strategiesCmd)
}
