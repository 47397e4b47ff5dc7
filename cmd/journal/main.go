package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pbaille/journal/internal/api"
	"github.com/pbaille/journal/internal/companion"
	"github.com/pbaille/journal/internal/config"
	"github.com/pbaille/journal/internal/prompt"
	"github.com/pbaille/journal/internal/sentiment"
	"github.com/pbaille/journal/internal/store"
	"github.com/pbaille/journal/internal/summary"
	"github.com/pbaille/journal/internal/themes"
)

var (
	dbPath     string
	configPath string
	verbose    bool
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Personal journaling companion",
		Long: `journal is a single-user journaling companion. Entries get a derived
sentiment score and topical themes, and the companion suggests reflective
prompts and windowed summaries, enriched by an AI call when configured.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zcfg := zap.NewProductionConfig()
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default ~/.journal/journal.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(writeCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(promptCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(trendsCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired components behind every subcommand
type app struct {
	cfg       config.Config
	store     *store.Store
	gateway   *companion.Gateway
	prompts   *prompt.Generator
	summaries *summary.Generator
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	taxonomy := themes.DefaultTaxonomy()
	if cfg.TaxonomyPath != "" {
		taxonomy, err = themes.LoadTaxonomy(cfg.TaxonomyPath)
		if err != nil {
			return nil, err
		}
	}

	scorer := sentiment.NewScorer(sentiment.NewClient(cfg.Sentiment), logger)
	st, err := store.New(cfg.DBPath, scorer, themes.NewExtractor(taxonomy), logger)
	if err != nil {
		return nil, err
	}

	gw := companion.New(cfg.Companion, logger)

	return &app{
		cfg:       cfg,
		store:     st,
		gateway:   gw,
		prompts:   prompt.New(gw, cfg.Companion.MaxPromptTokens, logger),
		summaries: summary.New(gw, cfg.Companion.MaxSummaryTokens, logger),
	}, nil
}

func (a *app) close() {
	a.store.Close()
}

func writeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write [text...]",
		Short: "Save a journal entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()

			recent, err := a.store.Load(ctx, 7)
			if err != nil {
				return err
			}
			suggested := a.prompts.Generate(ctx, recent)
			fmt.Printf("Your companion asks: %s\n\n", suggested)

			text := strings.Join(args, " ")
			if text == "" {
				text, err = readEntry()
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("entry text is empty")
			}

			var aiReply string
			if res := a.gateway.Reply(ctx, text); res.Ok() {
				aiReply = res.Text
			}

			entry, err := a.store.Save(ctx, text, suggested, aiReply)
			if err != nil {
				return err
			}

			fmt.Printf("Saved entry %d (%s, themes: %s)\n",
				entry.ID, entry.SentimentLabel, strings.Join(entry.Themes, ", "))

			if entry.AIReply != "" {
				fmt.Printf("\nYour companion says:\n%s\n", entry.AIReply)
			} else {
				fmt.Println("\nYour companion is listening quietly with you.")
			}
			return nil
		},
	}
}

// readEntry reads multi-line entry text from stdin, ended by EOF
func readEntry() (string, error) {
	fmt.Println("Write your entry, then press Ctrl-D:")
	var sb strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read entry: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}

func listCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			entries, err := a.store.Load(cmd.Context(), days)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No entries yet. Use 'journal write' to create one.")
				return nil
			}

			for _, e := range entries {
				fmt.Printf("%s  %-8s  %s\n  %s\n",
					e.CreatedAt.Format("2006-01-02"),
					e.SentimentLabel,
					strings.Join(e.Themes, ", "),
					truncate(e.Text, 70),
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "only show entries from the trailing N days")
	return cmd
}

func promptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Show today's reflective question",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			recent, err := a.store.Load(cmd.Context(), 7)
			if err != nil {
				return err
			}

			fmt.Println(a.prompts.Generate(cmd.Context(), recent))
			return nil
		},
	}
}

func summaryCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show a reflective summary of recent entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			entries, err := a.store.Load(cmd.Context(), days)
			if err != nil {
				return err
			}

			fmt.Println(a.summaries.Generate(cmd.Context(), entries))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "summary window in days")
	return cmd
}

func trendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Show sentiment and theme trends",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			entries, err := a.store.Load(cmd.Context(), 0)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No entries yet, start journaling to see your shift in emotions over time.")
				return nil
			}

			daily, themeCounts := summary.Trends(entries)

			fmt.Println("Average daily sentiment:")
			for _, d := range daily {
				fmt.Printf("  %s  %+.2f\n", d.Date, d.MeanScore)
			}

			fmt.Println("\nMost frequent themes:")
			for _, tc := range themeCounts {
				fmt.Printf("  %-10s %d\n", tc.Theme, tc.Count)
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			// Note: don't defer close as server runs indefinitely

			if addr == "" {
				addr = a.cfg.Addr
			}

			server := api.New(a.store, a.prompts, a.summaries, a.gateway, addr, logger)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default from config)")
	return cmd
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
