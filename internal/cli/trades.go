package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "trade-report/internal/errors"
	"trade-report/internal/models"
	"trade-report/internal/store"
)

const dateLayout = "2006-01-02"

func newTradesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Stored trades",
	}

	var (
		owner, strategy, symbol, side, from, to string
		limit                                   int
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List imported trades, newest first",
		Example: `  trade-report trades list --symbol EURUSD --from 2024-01-01
  trade-report trades list --strategy "London breakout" --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if owner == "" {
				owner = app.Config.Store.OwnerID
			}
			filter, err := buildTradeFilter(owner, strategy, symbol, side, from, to, limit)
			if err != nil {
				return err
			}

			st, err := app.TradeStore()
			if err != nil {
				return err
			}
			trades, err := st.ListTrades(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if output.IsStructured() {
				if trades == nil {
					trades = []models.TradeRecord{}
				}
				return output.Emit(trades)
			}
			RenderTrades(output, trades)
			return nil
		},
	}

	listCmd.Flags().StringVar(&owner, "owner", "", "owner of the trades (default from config)")
	listCmd.Flags().StringVarP(&strategy, "strategy", "s", "", "filter by strategy name")
	listCmd.Flags().StringVar(&symbol, "symbol", "", "filter by symbol")
	listCmd.Flags().StringVar(&side, "side", "", "filter by side (long or short)")
	listCmd.Flags().StringVar(&from, "from", "", "earliest trade date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&to, "to", "", "latest trade date, inclusive (YYYY-MM-DD)")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum trades to list (0 for all)")

	cmd.AddCommand(listCmd)
	return cmd
}

func buildTradeFilter(owner, strategy, symbol, side, from, to string, limit int) (store.TradeFilter, error) {
	filter := store.TradeFilter{
		OwnerID:      owner,
		StrategyName: strings.TrimSpace(strategy),
		Symbol:       strings.ToUpper(strings.TrimSpace(symbol)),
		Limit:        limit,
	}

	switch s := models.TradeSide(strings.ToLower(side)); s {
	case "":
	case models.SideLong, models.SideShort:
		filter.Side = s
	default:
		return filter, apperrors.NewValidationError("side", side, "must be long or short")
	}

	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return filter, apperrors.NewValidationError("from", from, "expected YYYY-MM-DD")
		}
		filter.StartDate = t
	}
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return filter, apperrors.NewValidationError("to", to, "expected YYYY-MM-DD")
		}
		filter.EndDate = t.Add(24*time.Hour - time.Nanosecond)
	}
	if !filter.StartDate.IsZero() && !filter.EndDate.IsZero() && filter.EndDate.Before(filter.StartDate) {
		return filter, apperrors.NewValidationError("to", to, "before --from")
	}
	if limit < 0 {
		return filter, apperrors.NewValidationError("limit", limit, "must not be negative")
	}
	return filter, nil
}

func newImportsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "Import history",
	}

	var (
		owner string
		limit int
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent imports",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if owner == "" {
				owner = app.Config.Store.OwnerID
			}
			st, err := app.TradeStore()
			if err != nil {
				return err
			}
			batches, err := st.ListImports(cmd.Context(), owner, limit)
			if err != nil {
				return err
			}

			if output.IsStructured() {
				if batches == nil {
					batches = []store.ImportBatch{}
				}
				return output.Emit(batches)
			}
			RenderImports(output, batches)
			return nil
		},
	}

	listCmd.Flags().StringVar(&owner, "owner", "", "owner of the imports (default from config)")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum imports to list")

	cmd.AddCommand(listCmd)
	return cmd
}
