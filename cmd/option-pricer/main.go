package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/payoff"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/server"
)

func main() {
	model := flag.String("model", "montecarlo", "pricing model: lattice or montecarlo")
	spot := flag.Float64("spot", 100.0, "current spot price")
	strike := flag.Float64("strike", 100.0, "strike price (lattice only)")
	maturity := flag.Float64("maturity", 1.0, "time to maturity in years (e.g. 0.5 for six months)")
	rate := flag.Float64("rate", 0.05, "risk-free annual interest rate")
	volatility := flag.Float64("volatility", 0.2, "annualized volatility")
	dividend := flag.Float64("dividend", 0.0, "continuous dividend yield (lattice only)")
	steps := flag.Int("steps", 100, "binomial tree steps (lattice only)")
	optType := flag.String("type", "call", "option type: call or put (lattice only)")
	american := flag.Bool("american", false, "allow early exercise (lattice only)")
	simulations := flag.Int("simulations", 100000, "number of Monte Carlo paths")
	seed := flag.Int64("seed", 0, "random seed for reproducible results (0 = entropy-seeded)")
	payoffExpr := flag.String("payoff", "max(S - 100, 0)", "payoff expression using 'S' as the terminal price")
	ticker := flag.String("ticker", "", "fetch the spot price for this underlying from the data provider")
	histVol := flag.Bool("histvol", false, "with -ticker: use realized volatility from recent daily bars")
	rest := flag.Bool("rest", false, "run as REST server instead of pricing once")
	port := flag.String("port", ":8080", "REST server listen address")
	verbosity := flag.Int("v", 1, "verbosity: 0=errors, 1=info, 2=debug, 3=trace")
	flag.Parse()

	logger.SetVerbosity(*verbosity)

	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	// choose provider
	var prov data.Provider
	if apiKey := os.Getenv("POLYGON_API_KEY"); apiKey != "" {
		prov = data.NewPolygonProvider(apiKey)
		logger.Infof("polygon provider enabled")
	} else {
		prov = data.NewSyntheticProvider()
		logger.Infof("synthetic provider enabled")
	}

	if *rest {
		srv := server.New(prov)
		logger.Infof("starting REST server on %s", *port)
		if err := http.ListenAndServe(*port, srv.Router()); err != nil {
			logger.Errorf("server stopped: %v", err)
			os.Exit(1)
		}
		return
	}

	if *ticker != "" {
		s, err := prov.LatestSpot(*ticker)
		if err != nil {
			fatalf("fetching spot for %s: %v", *ticker, err)
		}
		*spot = s
		logger.Infof("using %s spot %.4f", *ticker, s)

		if *histVol {
			to := time.Now().UTC()
			bars, err := prov.DailyBars(*ticker, to.AddDate(0, -3, 0), to)
			if err != nil {
				fatalf("fetching bars for %s: %v", *ticker, err)
			}
			v, err := data.RealizedVolatility(bars)
			if err != nil {
				fatalf("estimating volatility for %s: %v", *ticker, err)
			}
			*volatility = v
			logger.Infof("using %s realized volatility %.4f", *ticker, v)
		}
	}

	switch *model {
	case "lattice":
		price, err := pricing.PriceLattice(pricing.LatticeParameters{
			Spot:          *spot,
			Strike:        *strike,
			Maturity:      *maturity,
			Rate:          *rate,
			Volatility:    *volatility,
			Steps:         *steps,
			DividendYield: *dividend,
			OptionType:    pricing.OptionType(*optType),
			American:      *american,
		})
		if err != nil {
			fatalf("lattice pricing failed: %v", err)
		}
		style := "European"
		if *american {
			style = "American"
		}
		fmt.Printf("%s %s price: %.4f\n", style, *optType, price)

	case "montecarlo":
		compiled, err := payoff.Compile(*payoffExpr)
		if err != nil {
			fatalf("invalid payoff: %v", err)
		}
		params := pricing.MonteCarloParameters{
			Spot:        *spot,
			Maturity:    *maturity,
			Rate:        *rate,
			Volatility:  *volatility,
			Simulations: *simulations,
		}
		if *seed != 0 {
			params.Seed = seed
		}
		est, err := pricing.EstimateMonteCarlo(params, compiled)
		if err != nil {
			fatalf("monte carlo pricing failed: %v", err)
		}
		fmt.Printf("Input payoff: %s\n", *payoffExpr)
		fmt.Printf("Estimated option price: %.4f (std error %.4f, %d paths)\n",
			est.Price, est.StdError, est.Simulations)

	default:
		fatalf("unknown model %q: use lattice or montecarlo", *model)
	}
}

func fatalf(format string, args ...any) {
	logger.Errorf(format, args...)
	os.Exit(1)
}
