// Command exporter writes the offline analysis artifacts from the record
// store: the dense CSV table, per-topic statistics and the legend.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"topicquiz/api/analysis"
	"topicquiz/api/database"
	"topicquiz/api/store"
	"topicquiz/api/topics"
)

var (
	outDir       string
	csvName      string
	statsName    string
	legendName   string
	documentFmt  string
	top          int
	fetchTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "exporter",
	Short: "Export the topic quiz analysis to files",
	Long: `Exporter reads every recorded session from the record store configured
by DATABASE_TYPE and DATABASE_URL, builds the dense per-session table and
writes it as CSV together with per-topic statistics and a legend.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory the files are written to")
	rootCmd.Flags().StringVar(&csvName, "csv", "analise_respostas_completa.csv", "CSV file name")
	rootCmd.Flags().StringVar(&statsName, "stats", "estatisticas_topicos.json", "Topic statistics file name")
	rootCmd.Flags().StringVar(&legendName, "legend", "legenda_analise.txt", "Legend file name")
	rootCmd.Flags().StringVar(&documentFmt, "document", "", "Also write the full analysis document (json or yaml)")
	rootCmd.Flags().IntVar(&top, "top", 10, "Print the N most clicked topics (0 disables)")
	rootCmd.Flags().DurationVar(&fetchTimeout, "timeout", 2*time.Minute, "Timeout for reading the record store")
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var docFormat analysis.Format
	if documentFmt != "" {
		f, err := analysis.ParseFormat(documentFmt)
		if err != nil {
			return err
		}
		if f == analysis.FormatCSV {
			return fmt.Errorf("--document must be json or yaml")
		}
		docFormat = f
	}

	dbClient, err := database.NewRecordDB()
	if err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}
	defer dbClient.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	sessions, err := store.NewSessionStore(dbClient).FetchSessionsWithResponses(fetchCtx)
	if err != nil {
		return fmt.Errorf("fetching sessions: %w", err)
	}
	if len(sessions) == 0 {
		log.Println("No sessions recorded; writing empty artifacts.")
	}

	report := analysis.Build("", sessions, topics.Default())

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := writeCSV(filepath.Join(outDir, csvName), report.Rows); err != nil {
		return err
	}

	statsJSON, err := json.MarshalIndent(report.Statistics, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding topic statistics: %w", err)
	}
	if err := writeFile(filepath.Join(outDir, statsName), statsJSON); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(outDir, legendName), []byte(analysis.LegendText())); err != nil {
		return err
	}

	if docFormat != "" {
		doc, err := analysis.Export(docFormat, report.Rows, report.Statistics)
		if err != nil {
			return fmt.Errorf("encoding analysis document: %w", err)
		}
		if err := writeFile(filepath.Join(outDir, "analise_completa."+string(docFormat)), doc); err != nil {
			return err
		}
	}

	fmt.Printf("Sessions analysed: %d\n", len(report.Rows))
	fmt.Printf("Topics with appearances: %d\n", len(report.Statistics))
	if top > 0 {
		fmt.Printf("\nTop %d most clicked topics:\n", top)
		for i, s := range analysis.MostClicked(report.Statistics, top) {
			fmt.Printf("%2d. %s: %d clicks (%.2f%%)\n", i+1, s.Topic, s.TotalClicks, s.ClickRate)
		}
	}
	return nil
}

func writeCSV(path string, rows []analysis.DenseRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := analysis.WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	log.Printf("Wrote %s", path)
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Printf("Wrote %s", path)
	return nil
}
