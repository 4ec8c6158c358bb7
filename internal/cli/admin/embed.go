package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/casarom/salesapi/internal/config"
	"github.com/casarom/salesapi/internal/openai"
	"github.com/casarom/salesapi/internal/repository"
	"github.com/casarom/salesapi/internal/service"
)

func EmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Generate catalog embeddings",
		Long:  "Generate vector embeddings for catalog products offline",
	}

	cmd.AddCommand(EmbedAllCmd())
	cmd.AddCommand(EmbedStaleCmd())

	return cmd
}

func EmbedAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Re-embed the whole catalog",
		Long:  "Regenerate embeddings for every product with text content",
		RunE:  runEmbedAll,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runEmbedAll(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	pool, svc, err := getEmbeddingService(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	embedded, skipped, err := svc.EmbedAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to embed catalog: %w", err)
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(map[string]int{
			"embedded": embedded,
			"skipped":  skipped,
		}, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Embedded %d products (%d skipped, no text content)\n", embedded, skipped)
	}

	return nil
}

func EmbedStaleCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stale",
		Short: "Re-embed stale products",
		Long:  "Regenerate embeddings only for products whose text changed since the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runEmbedStale(outputFormat, limit)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum number of products to embed")

	return cmd
}

func runEmbedStale(outputFormat string, limit int) error {
	ctx := context.Background()

	pool, svc, err := getEmbeddingService(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	embedded, err := svc.EmbedStale(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to embed stale products: %w", err)
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(map[string]int{"embedded": embedded}, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Embedded %d stale products\n", embedded)
	}

	return nil
}

func getEmbeddingService(ctx context.Context) (*pgxpool.Pool, *service.EmbeddingService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return nil, nil, fmt.Errorf("SALES_OPENAI_API_KEY is required for embedding")
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return nil, nil, err
	}

	encoder := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})

	productRepo := repository.NewProductRepository(pool)
	embeddingRepo := repository.NewEmbeddingRepository(pool)
	svc := service.NewEmbeddingService(encoder, productRepo, embeddingRepo, encoder.Model())

	return pool, svc, nil
}
