package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pmsdoc-backend/internal/analysis"
	"pmsdoc-backend/internal/bootstrap"
	"pmsdoc-backend/internal/extract"
	"pmsdoc-backend/internal/llm"
	"pmsdoc-backend/internal/shared/config"
	"pmsdoc-backend/internal/tickets"
)

var rootCmd = &cobra.Command{
	Use:           "pmsdoc",
	Short:         "Run the PMS documentation pipeline on local files",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("PMSDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("pipeline", "", "pipeline YAML file (overrides PIPELINE_CONFIG)")
	rootCmd.PersistentFlags().String("model", "", "model name (overrides LLM_MODEL)")
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("pipeline", rootCmd.PersistentFlags().Lookup("pipeline"))
	_ = viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
}

func registerCommands() {
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(exampleCmd())
	rootCmd.AddCommand(ticketCmd())
	rootCmd.AddCommand(validateCmd())
}

// loadConfig reads the service configuration and applies CLI overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if path := strings.TrimSpace(viper.GetString("pipeline")); path != "" {
		p, err := config.LoadPipeline(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Pipeline = p
	}
	if model := strings.TrimSpace(viper.GetString("model")); model != "" {
		cfg.LLMModel = model
	}
	return cfg, nil
}

func extractText(ctx context.Context, cfg config.Config, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	n := extract.NewNormalizer(bootstrap.ExtractOptions(cfg.Pipeline))
	return n.Extract(ctx, data, filepath.Base(path))
}

func newAnalyzer(cfg config.Config) (*analysis.Analyzer, error) {
	model, err := bootstrap.BuildModel(cfg)
	if err != nil {
		return nil, err
	}
	return analysis.NewAnalyzer(model, bootstrap.Prompts(cfg.Pipeline)), nil
}

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the normalized text of a PDF, HTML or text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			text, err := extractText(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func analyzeCmd() *cobra.Command {
	var booking bool
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Extract a document and print its capability report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			text, err := extractText(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			analyzer, err := newAnalyzer(cfg)
			if err != nil {
				return err
			}
			report, err := analyzer.Analyze(cmd.Context(), text, booking)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(cmd, report)
			}
			renderReport(cmd.OutOrStdout(), report, booking)
			return nil
		},
	}
	cmd.Flags().BoolVar(&booking, "booking-engine", false, "include availability fields")
	return cmd
}

func exampleCmd() *cobra.Command {
	var booking bool
	cmd := &cobra.Command{
		Use:   "example <file>",
		Short: "Print a GET reservations response example for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			text, err := extractText(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			analyzer, err := newAnalyzer(cfg)
			if err != nil {
				return err
			}
			ex, err := analyzer.AnalyzeExample(cmd.Context(), text, booking)
			if err != nil {
				return err
			}
			return printJSON(cmd, ex)
		},
	}
	cmd.Flags().BoolVar(&booking, "booking-engine", false, "booking-engine document (no example is produced)")
	return cmd
}

func ticketCmd() *cobra.Command {
	var (
		typ   string
		doc   tickets.DocumentIdentity
		force string
	)
	cmd := &cobra.Command{
		Use:   "ticket <report.json>",
		Short: "Render the ticket description for a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tickets.ParseType(typ)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			report, err := analysis.ParseReport(raw)
			if err != nil {
				return err
			}
			if doc.FileName == "" {
				doc.FileName = filepath.Base(args[0])
			}
			draft := tickets.NewComposer(nil, llm.Prompts{}).Compose(report, doc, t, force)
			if viper.GetBool("json") {
				return printJSON(cmd, draft)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", draft.Summary, draft.Description)
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", "spike", "ticket type: task or spike")
	cmd.Flags().StringVar(&doc.Title, "title", "", "document title")
	cmd.Flags().StringVar(&doc.SourceURL, "source-url", "", "document source URL")
	cmd.Flags().StringVar(&doc.DownloadURL, "download-url", "", "document download link")
	cmd.Flags().StringVar(&force, "description", "", "use this description instead of the template")
	return cmd
}

func validateCmd() *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "validate <model-output.json>",
		Short: "Validate raw model output against one report variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := analysis.ParseVariant(variant)
			if !ok {
				return fmt.Errorf("unknown variant %q (want pms, booking_engine or combined)", variant)
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			tree, err := llm.DecodeObject(raw)
			if err != nil {
				return err
			}
			if err := analysis.Validate(tree, v); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "combined", "pms, booking_engine or combined")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
