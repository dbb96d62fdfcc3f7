package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/alanlujan91/DemARK/internal/charts"
	"github.com/alanlujan91/DemARK/internal/config"
	"github.com/alanlujan91/DemARK/internal/fred"
	"github.com/alanlujan91/DemARK/internal/models"
	"github.com/alanlujan91/DemARK/internal/perfforesight"
	"github.com/alanlujan91/DemARK/internal/theory"
	"go.uber.org/zap"
)

func main() {
	discFac := flag.Float64("disc-fac", 0.96, "time discount factor (beta)")
	rfree := flag.Float64("rfree", 1.03, "gross risk-free interest rate (R)")
	crra := flag.Float64("crra", 2.0, "coefficient of relative risk aversion (rho)")
	permGroFac := flag.Float64("perm-gro-fac", 1.01, "gross permanent income growth factor (Gamma)")
	consumptionSeries := flag.String("consumption", theory.DefaultConsumptionSeries, "FRED consumption series")
	incomeSeries := flag.String("income", theory.DefaultIncomeSeries, "FRED income series")
	start := flag.String("start", "1954-01-01", "window start (YYYY-MM-DD)")
	end := flag.String("end", "2019-12-31", "window end (YYYY-MM-DD)")
	lags := flag.Int("lags", theory.DefaultLags, "income lags for the distributed-lag regression")
	outDir := flag.String("out", ".", "directory for rendered charts")
	solveOnly := flag.Bool("solve-only", false, "solve the consumer model without fetching data")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	params := perfforesight.Params{
		DiscFac:    *discFac,
		Rfree:      *rfree,
		CRRA:       *crra,
		PermGroFac: *permGroFac,
	}

	sol, err := perfforesight.Solve(params)
	if err != nil {
		log.Fatalf("failed to solve consumer model: %v", err)
	}

	intercept, slope, err := sol.Linearize(0, 1)
	if err != nil {
		log.Fatalf("failed to linearize consumption rule: %v", err)
	}

	fmt.Println("Perfect foresight consumer solution")
	fmt.Printf("  MPC:            %.6f\n", sol.MPC)
	fmt.Printf("  Human wealth:   %.6f\n", sol.HumanWealth)
	fmt.Printf("  Min m:          %.6f\n", sol.MinM)
	fmt.Printf("  c(m) = %.6f + %.6f m\n", intercept, slope)

	consumptionChart, err := charts.ConsumptionFunction(sol, sol.MinM, sol.MinM+10, 100)
	if err != nil {
		log.Fatalf("failed to build consumption chart: %v", err)
	}
	path := filepath.Join(*outDir, "consumption_function.png")
	if err := charts.SavePNG(consumptionChart, path); err != nil {
		log.Fatalf("failed to save chart: %v", err)
	}
	fmt.Println("Saved", path)

	// Friedman's permanent-income calibration: with R*beta = 1 the agent
	// consumes exactly the annuity value of total wealth, MPC = (R-1)/R.
	pihParams := params
	pihParams.DiscFac = 1 / params.Rfree
	pih, err := perfforesight.Solve(pihParams)
	if err != nil {
		log.Fatalf("failed to solve permanent-income calibration: %v", err)
	}
	fmt.Println("\nPermanent income calibration (R*beta = 1)")
	fmt.Printf("  MPC:            %.6f\n", pih.MPC)
	fmt.Printf("  Human wealth:   %.6f\n", pih.HumanWealth)
	fmt.Printf("  c(1) = %.6f (consumption out of permanent income)\n", pih.Consumption(1))

	if *solveOnly {
		return
	}

	cfg := config.Load()
	if cfg.FREDAPIKey == "" {
		fmt.Fprintln(os.Stderr, "FRED_API_KEY not set; skipping data comparisons (use -solve-only to silence)")
		return
	}

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		log.Fatalf("invalid -start: %v", err)
	}
	endDate, err := time.Parse("2006-01-02", *end)
	if err != nil {
		log.Fatalf("invalid -end: %v", err)
	}

	fredClient := fred.NewClient(cfg.FREDBaseURL, cfg.FREDAPIKey, logger)
	svc := theory.NewService(nil, nil, fredClient, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	consumption, err := svc.FetchSeries(ctx, *consumptionSeries, startDate, endDate)
	if err != nil {
		log.Fatalf("failed to fetch %s: %v", *consumptionSeries, err)
	}
	income, err := svc.FetchSeries(ctx, *incomeSeries, startDate, endDate)
	if err != nil {
		log.Fatalf("failed to fetch %s: %v", *incomeSeries, err)
	}
	_, c, y := theory.Align(consumption, income)
	fmt.Printf("\nFetched %d aligned quarterly observations of %s and %s\n",
		len(c), *consumptionSeries, *incomeSeries)

	for _, kind := range []models.AnalysisKind{models.KindKeynes, models.KindDuesenberry, models.KindFriedman} {
		analysis, err := svc.RunAnalysis(ctx, theory.AnalysisRequest{
			Kind:              kind,
			ConsumptionSeries: *consumptionSeries,
			IncomeSeries:      *incomeSeries,
			Start:             startDate,
			End:               endDate,
			Lags:              *lags,
		})
		if err != nil {
			log.Fatalf("%s analysis failed: %v", kind, err)
		}
		printAnalysis(analysis)

		scatter, err := charts.ScatterFit(y, c, fittedIntercept(analysis), fittedSlope(analysis),
			fmt.Sprintf("%s: %s on %s", kind, *consumptionSeries, *incomeSeries),
			"income", "consumption")
		if err != nil {
			log.Fatalf("failed to build %s chart: %v", kind, err)
		}
		path := filepath.Join(*outDir, fmt.Sprintf("%s_fit.png", kind))
		if err := charts.SavePNG(scatter, path); err != nil {
			log.Fatalf("failed to save chart: %v", err)
		}
		fmt.Println("Saved", path)
	}
}

func printAnalysis(a *models.Analysis) {
	fmt.Printf("\n%s regression (N=%d, R2=%.4f)\n", a.Kind, a.N, a.R2)
	for _, coef := range a.Coefficients {
		fmt.Printf("  %-12s %12.6f  (se %.6f)\n", coef.Name, coef.Value, coef.StdError)
	}
	for _, f := range a.Findings {
		fmt.Printf("  * %s: %s\n", f.Name, f.Description)
	}
}

func fittedIntercept(a *models.Analysis) float64 {
	for _, coef := range a.Coefficients {
		if coef.Name == "intercept" {
			return coef.Value
		}
	}
	return 0
}

// fittedSlope reduces the coefficients to one income slope. For the
// distributed-lag form the lag weights sum to the long-run response.
func fittedSlope(a *models.Analysis) float64 {
	var slope float64
	for _, coef := range a.Coefficients {
		if coef.Name == "mpc" {
			return coef.Value
		}
		if len(coef.Name) > 5 && coef.Name[:5] == "y_lag" {
			slope += coef.Value
		}
	}
	return slope
}
