package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fabfab/study-agent/api"
	"github.com/fabfab/study-agent/chat"
	"github.com/fabfab/study-agent/config"
	"github.com/fabfab/study-agent/ingestion"
	"github.com/fabfab/study-agent/logger"
)

const shutdownTimeout = 15 * time.Second

var (
	cfg config.Config
	log *logger.Logger

	ingestFile   string
	chatDocs     []string
	chatQuestion string
	clearConfirm bool
)

var rootCmd = &cobra.Command{
	Use:           "study-agent",
	Short:         "Study assistant over uploaded PDFs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		l, err := logger.New(cfg.Env)
		if err != nil {
			return fmt.Errorf("logger setup: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a PDF file",
	RunE:  runIngest,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample documents once",
	RunE:  runSeed,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask a one-off question against stored documents",
	RunE:  runChat,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove knowledge graph data and cached recommendations",
	RunE:  runClear,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "path to a PDF file")
	_ = ingestCmd.MarkFlagRequired("file")

	chatCmd.Flags().StringSliceVar(&chatDocs, "docs", nil, "comma separated document ids used as context")
	chatCmd.Flags().StringVar(&chatQuestion, "question", "", "question to ask")

	clearCmd.Flags().BoolVar(&clearConfirm, "confirm", false, "skip confirmation prompt")

	rootCmd.AddCommand(serveCmd, ingestCmd, seedCmd, chatCmd, clearCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if cfg.SeedSamples {
		n, err := a.ingestion.SeedSamples(ctx, a.store)
		if err != nil {
			log.Warn("seed sample documents", "error", err)
		} else if n > 0 {
			log.Info("seeded sample documents", "count", n)
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.New(cfg, a.services(), log.With("component", "api")),
		ReadHeaderTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "llm", cfg.LLM.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	data, err := os.ReadFile(ingestFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", ingestFile, err)
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	doc, err := a.ingestion.Ingest(ctx, ingestion.Upload{Name: ingestFile, Data: data})
	if err != nil {
		return fmt.Errorf("ingest %s: %w", ingestFile, err)
	}
	cmd.Printf("Ingested %s as %s (%d pages)\n", doc.OriginalName, doc.ID, len(doc.Chunks))
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	n, err := a.ingestion.SeedSamples(ctx, a.store)
	if err != nil {
		return err
	}
	if n == 0 {
		cmd.Println("Sample documents already seeded.")
		return nil
	}
	cmd.Printf("Seeded %d sample documents.\n", n)
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(chatQuestion)
	if question == "" {
		cmd.Print("Enter your question: ")
		scanner := bufio.NewScanner(cmd.InOrStdin())
		if scanner.Scan() {
			question = strings.TrimSpace(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read question: %w", err)
		}
	}
	if question == "" {
		return chat.ErrEmptyMessage
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	docs, err := a.store.GetDocuments(ctx, chatDocs)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	contextText, citations := chat.Match(question, docs)
	cmd.Println(a.assembler.Reply(ctx, question, contextText))

	if len(citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, c := range citations {
			cmd.Printf("%d. %s, page %d: %s\n", i+1, c.DocumentID, c.PageNumber, c.Snippet)
		}
	}
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearConfirm {
		cmd.Print("This will permanently delete knowledge graph data and cached recommendations. Continue? [y/N]: ")
		scanner := bufio.NewScanner(cmd.InOrStdin())
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read confirmation: %w", err)
			}
			cmd.Println("clear aborted")
			return nil
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if answer != "y" && answer != "yes" {
			cmd.Println("clear aborted")
			return nil
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if a.graph != nil {
		if err := a.graph.Purge(ctx); err != nil {
			return fmt.Errorf("clear neo4j: %w", err)
		}
		log.Info("knowledge graph cleared")
	}
	if a.cache != nil {
		n, err := a.cache.Clear(ctx)
		if err != nil {
			return fmt.Errorf("clear video cache: %w", err)
		}
		log.Info("video cache cleared", "keys", n)
	}
	if a.graph == nil && a.cache == nil {
		cmd.Println("Nothing to clear: neither NEO4J_URI nor REDIS_ADDR is set.")
	}
	return nil
}
