package main

import (
	"fmt"
	"io"
	"log"
	"text/tabwriter"

	config "demand-forecast-dashboard/configs"
	"demand-forecast-dashboard/pkg/models"
	"demand-forecast-dashboard/pkg/services"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	if err := newRootCmd(config.LoadConfig()).Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

// newRootCmd 需要データの集計と予測をターミナルから実行するCLI
func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "forecast",
		Short:         "Monthly product demand preparation and SARIMA forecasting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfg.DataPath, "data", cfg.DataPath, "Demand record file (.csv or .xlsx)")
	rootCmd.PersistentFlags().StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "Fitted SARIMA model artifact (.json or .yaml)")

	rootCmd.AddCommand(newPrepareCmd(cfg), newPredictCmd(cfg))
	return rootCmd
}

func newPrepareCmd(cfg *config.Config) *cobra.Command {
	tail := 0
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Aggregate the demand file into the monthly series",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataService, err := services.NewDemandDataService(cfg.HistoryStart, cfg.HistoryEnd)
			if err != nil {
				return err
			}
			prepared, err := dataService.LoadMonthlySeries(cfg.DataPath)
			if err != nil {
				return err
			}

			series := prepared.Series
			if tail > 0 {
				series = services.TailSeries(series, tail)
			}
			out := cmd.OutOrStdout()
			if len(series) == 0 {
				fmt.Fprintln(out, "no data")
				return nil
			}
			writeSeries(out, series)
			fmt.Fprintf(out, "rows read: %d, used: %d, months: %d\n",
				prepared.Stats.RowsRead, prepared.Stats.RowsUsed, prepared.Stats.Months)
			return nil
		},
	}
	cmd.Flags().IntVar(&tail, "tail", 0, "Show only the last N months (0 = all)")
	return cmd
}

func newPredictCmd(cfg *config.Config) *cobra.Command {
	steps := cfg.DefaultHorizon
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast the next N months from the fitted model",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps > cfg.MaxHorizon {
				return fmt.Errorf("%w: steps must be at most %d", services.ErrInvalidHorizon, cfg.MaxHorizon)
			}
			forecastService := services.NewForecastService(cfg.ModelPath, cfg.ConfidenceLevel)
			model, err := forecastService.LoadModel()
			if err != nil {
				return err
			}
			result, err := forecastService.Forecast(model, steps)
			if err != nil {
				return err
			}
			writeTable(cmd.OutOrStdout(), services.BuildTable(result.Points))
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", steps, "Number of months to forecast")
	return cmd
}

func writeSeries(out io.Writer, series models.MonthlySeries) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tORDER_DEMAND")
	for _, p := range series {
		fmt.Fprintf(w, "%s\t%d\n", p.Date.Format("2006-01-02"), int64(p.Value))
	}
	w.Flush()
}

func writeTable(out io.Writer, rows []models.ForecastRow) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tFORECAST\tLOWER\tUPPER")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", r.Date, r.Forecast, r.Lower, r.Upper)
	}
	w.Flush()
}
