package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/casarom/salesapi/internal/config"
	"github.com/casarom/salesapi/internal/domain"
	"github.com/casarom/salesapi/internal/repository"
)

func PolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Manage the pricing policy",
		Long:  "Show and set the singleton pricing policy used by quote creation",
	}

	cmd.AddCommand(PolicyShowCmd())
	cmd.AddCommand(PolicySetCmd())

	return cmd
}

func PolicyShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current pricing policy",
		RunE:  runPolicyShow,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runPolicyShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	policyRepo := repository.NewPolicyRepository(pool)

	policy, err := policyRepo.GetPolicy(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pricing policy: %w", err)
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(map[string]float64{
			"transfer_discount":   policy.TransferDiscount,
			"installments_markup": policy.InstallmentsMarkup,
		}, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Pricing policy:\n")
		fmt.Printf("  transfer discount:   %.4f\n", policy.TransferDiscount)
		fmt.Printf("  installments markup: %.4f\n", policy.InstallmentsMarkup)
	}

	return nil
}

func PolicySetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <transfer_discount> <installments_markup>",
		Short: "Set the pricing policy",
		Long:  "Set the transfer discount (0 <= d < 1) and installments markup (m >= 0)",
		Args:  cobra.ExactArgs(2),
		RunE:  runPolicySet,
	}

	return cmd
}

func runPolicySet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	discount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid transfer_discount %q: %w", args[0], err)
	}
	markup, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid installments_markup %q: %w", args[1], err)
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	policyRepo := repository.NewPolicyRepository(pool)

	if err := policyRepo.SetPolicy(ctx, &domain.PricingPolicy{
		TransferDiscount:   discount,
		InstallmentsMarkup: markup,
	}); err != nil {
		return fmt.Errorf("failed to set pricing policy: %w", err)
	}

	fmt.Printf("Pricing policy updated: discount=%.4f markup=%.4f\n", discount, markup)
	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
