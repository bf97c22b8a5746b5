package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhetorlabs/rhetor/internal/config"
	"github.com/rhetorlabs/rhetor/internal/core"
	"github.com/rhetorlabs/rhetor/internal/engine"
	"github.com/rhetorlabs/rhetor/internal/export"
	"github.com/rhetorlabs/rhetor/internal/persona"
	"github.com/rhetorlabs/rhetor/internal/storage"
	"github.com/rhetorlabs/rhetor/web/handlers"
)

var (
	dbPath     string
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rhetor",
	Short: "AI debate simulator",
	Long: `rhetor runs structured debates between two AI personas.

A Scientist and a Philosopher argue a topic over a fixed number of
alternating rounds while a running memory summary is maintained, then an
impartial judging pass declares a winner with a justification.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: ~/.rhetor/rhetor.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.rhetor/config.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	path := dbPath
	if path == "" {
		path = cfg.DefaultDBPath()
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		return nil, err
	}

	return store, nil
}

// setupRunLogger points slog at the free-form running log file.
func setupRunLogger(cfg *config.Config) func() {
	var out io.Writer = os.Stderr
	var closer func()

	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			out = f
			closer = func() { f.Close() }
		}
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if closer == nil {
		return func() {}
	}
	return closer
}

// run command - create and run a debate session
var (
	scientistFlag   string
	philosopherFlag string
	roundsFlag      int
	firstFlag       string
	outputFlag      string
)

var runCmd = &cobra.Command{
	Use:   "run [topic]",
	Short: "Run a debate session",
	Long: `Create and run a debate session on the given topic.

Examples:
  rhetor run "Should AI be regulated like medicine?"
  rhetor run "Is nuclear energy the answer?" --scientist gemini/gemini-1.5-pro
  rhetor run "Universal basic income" --philosopher openai/gpt-4o --rounds 6`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVarP(&scientistFlag, "scientist", "s", "gemini", "Scientist agent (provider[/model])")
	runCmd.Flags().StringVarP(&philosopherFlag, "philosopher", "p", "gemini", "Philosopher agent (provider[/model])")
	runCmd.Flags().IntVarP(&roundsFlag, "rounds", "r", 0, "Number of rounds (default from config: 8)")
	runCmd.Flags().StringVar(&firstFlag, "first", "", "First speaker (scientist or philosopher)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", "complete_debate_log.json", "Path for the JSON debate log")
}

func runSession(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	closeLog := setupRunLogger(cfg)
	defer closeLog()

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	registry, err := cfg.CreateRegistry()
	if err != nil {
		return fmt.Errorf("failed to initialize providers: %w", err)
	}
	eng := engine.New(store, registry)

	scientist, err := core.ParseAgentSpec(core.RoleScientist, scientistFlag)
	if err != nil {
		return err
	}
	philosopher, err := core.ParseAgentSpec(core.RolePhilosopher, philosopherFlag)
	if err != nil {
		return err
	}

	rounds := roundsFlag
	if rounds <= 0 {
		rounds = cfg.Defaults.Rounds
	}

	firstSpeaker := core.Role("")
	if firstFlag != "" {
		firstSpeaker, err = core.ParseRole(firstFlag)
		if err != nil {
			return err
		}
	} else if cfg.Defaults.FirstSpeaker != "" {
		firstSpeaker, err = core.ParseRole(cfg.Defaults.FirstSpeaker)
		if err != nil {
			return err
		}
	}

	sessionConfig := core.NewSessionConfig{
		Topic:               topic,
		ScientistProvider:   scientist.Provider,
		ScientistModel:      scientist.Model,
		PhilosopherProvider: philosopher.Provider,
		PhilosopherModel:    philosopher.Model,
		Rounds:              rounds,
		FirstSpeaker:        firstSpeaker,
	}

	fmt.Printf("\nDEBATE: Scientist vs Philosopher\n")
	fmt.Printf("Topic: %s\n", topic)
	fmt.Printf("Rounds: %d | First speaker: %s\n", rounds, firstSpeaker)
	fmt.Println(strings.Repeat("=", 60))

	// Setup signal handling
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n\nInterrupted.")
		cancel()
	}()

	session, err := eng.RunSession(ctx, sessionConfig, func(arg *core.Argument, s *core.Session) {
		fmt.Printf("\n[Round %d] %s:\n", arg.RoundNum, arg.Agent)
		fmt.Printf("    %s\n", arg.Content)
	})
	if err != nil {
		return fmt.Errorf("debate failed: %w", err)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("[Judge] Summary of debate:")
	fmt.Println(session.FullSummary)
	fmt.Printf("\n[Judge] Winner: %s\n", session.Winner)
	fmt.Printf("Reason: %s\n", session.JudgmentReason)
	fmt.Println(strings.Repeat("=", 60))

	if outputFlag != "" {
		if err := writeDebateLog(session, outputFlag); err != nil {
			return err
		}
		fmt.Printf("\nComplete debate log saved to %s\n", outputFlag)
	}

	return nil
}

func writeDebateLog(session *core.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create debate log: %w", err)
	}
	defer f.Close()

	exporter := &export.JSONExporter{}
	if err := exporter.Export(session, f); err != nil {
		return fmt.Errorf("failed to write debate log: %w", err)
	}
	return nil
}

// list command - list all sessions
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all debate sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := getStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		registry, err := cfg.CreateRegistry()
		if err != nil {
			return err
		}

		eng := engine.New(store, registry)
		sessions, err := eng.ListSessions(50, 0)
		if err != nil {
			return err
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found. Start one with: rhetor run \"Your topic\"")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOPIC\tSTATUS\tWINNER\tARGS\tCREATED")

		for _, s := range sessions {
			shortID := s.ID
			if len(shortID) > 8 {
				shortID = shortID[:8]
			}
			shortTopic := s.Topic
			if len(shortTopic) > 40 {
				shortTopic = shortTopic[:37] + "..."
			}
			winner := string(s.Winner)
			if winner == "" {
				winner = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				shortID,
				shortTopic,
				s.Status,
				winner,
				s.ArgumentCount,
				s.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		w.Flush()

		return nil
	},
}

// findSessionByPrefix resolves a session ID prefix to a full ID.
func findSessionByPrefix(eng *engine.Engine, prefix string) (string, error) {
	sessions, err := eng.ListSessions(100, 0)
	if err != nil {
		return "", err
	}

	for _, s := range sessions {
		if strings.HasPrefix(s.ID, prefix) {
			return s.ID, nil
		}
	}

	return "", fmt.Errorf("session not found: %s", prefix)
}

// show command - show a session
var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show session details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := getStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		registry, err := cfg.CreateRegistry()
		if err != nil {
			return err
		}
		eng := engine.New(store, registry)

		id, err := findSessionByPrefix(eng, args[0])
		if err != nil {
			return err
		}

		session, err := eng.GetSession(id)
		if err != nil {
			return err
		}

		fmt.Printf("\nDebate: %s\n", session.Topic)
		fmt.Printf("   ID: %s\n", session.ID)
		fmt.Printf("   Status: %s\n", session.Status)
		fmt.Printf("   Rounds: %d\n", session.Rounds)
		fmt.Printf("   Scientist: %s\n", session.Scientist.Provider)
		fmt.Printf("   Philosopher: %s\n", session.Philosopher.Provider)
		fmt.Printf("   Created: %s\n", session.CreatedAt.Format(time.RFC3339))
		fmt.Println()

		if len(session.Arguments) > 0 {
			fmt.Println(strings.Repeat("-", 60))
			for _, arg := range session.Arguments {
				fmt.Printf("\n[Round %d] %s:\n", arg.RoundNum, arg.Agent)
				fmt.Printf("    %s\n", arg.Content)
			}
		}

		if session.Judged() {
			fmt.Println()
			fmt.Println(strings.Repeat("=", 60))
			fmt.Printf("[Judge] Winner: %s\n", session.Winner)
			fmt.Printf("Reason: %s\n", session.JudgmentReason)
			if session.FullSummary != "" {
				fmt.Printf("\n%s\n", session.FullSummary)
			}
		}

		return nil
	},
}

// export command
var exportFormatFlag string

var exportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export a session to json, markdown, or pdf",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := getStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		registry, err := cfg.CreateRegistry()
		if err != nil {
			return err
		}
		eng := engine.New(store, registry)

		id, err := findSessionByPrefix(eng, args[0])
		if err != nil {
			return err
		}

		session, err := eng.GetSession(id)
		if err != nil {
			return err
		}

		exporter, err := export.GetExporter(export.Format(exportFormatFlag))
		if err != nil {
			return err
		}

		filename := export.GenerateFilename(session, exporter.FileExtension())
		f, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()

		if err := exporter.Export(session, f); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Exported session to %s\n", filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormatFlag, "format", "f", "json", "Export format (json, markdown, pdf)")
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := getStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		registry, err := cfg.CreateRegistry()
		if err != nil {
			return err
		}
		eng := engine.New(store, registry)

		id, err := findSessionByPrefix(eng, args[0])
		if err != nil {
			return err
		}

		if err := eng.DeleteSession(id); err != nil {
			return err
		}

		fmt.Printf("Deleted session: %s\n", id)
		return nil
	},
}

// personas command
var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the debater personas",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("\nDebater Personas:")
		fmt.Println(strings.Repeat("-", 60))

		for _, p := range persona.Builtin() {
			fmt.Printf("\n%s\n", p.Name)
			fmt.Printf("  %s\n", p.Description)
		}
	},
}

// providers command
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List available AI providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		registry, err := cfg.CreateRegistry()
		if err != nil {
			return err
		}

		fmt.Println("\nAvailable Providers:")
		fmt.Println(strings.Repeat("-", 40))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDISPLAY\tSTATUS")

		for _, p := range registry.List() {
			status := "missing API key"
			if p.Available() {
				status = "available"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name(), p.DisplayName(), status)
		}
		w.Flush()

		return nil
	},
}

// serve command - start the HTTP API
var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
		slog.SetDefault(logger)

		store, err := getStorage(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		registry, err := cfg.CreateRegistry()
		if err != nil {
			return fmt.Errorf("failed to initialize providers: %w", err)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		h := handlers.New(store, registry)
		addr := fmt.Sprintf(":%d", port)
		server := &http.Server{
			Addr:    addr,
			Handler: h.Router(),
		}

		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			<-sigCh
			slog.Info("Shutting down...")
			server.Close()
		}()

		slog.Info("Starting rhetor API server", "url", fmt.Sprintf("http://localhost%s", addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "P", 0, "Server port (default from config)")
}
