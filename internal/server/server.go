// Package server is the HTTP layer over the pricing core: an HTML form
// for interactive Monte Carlo pricing, JSON endpoints for both engines,
// and a market-data helper for prefilling inputs.
//
// This layer accepts untrusted input. It decodes and validates request
// shapes itself, but the core re-checks every domain constraint and the
// payoff sandbox enforces its own grammar — nothing here is trusted by
// the engines.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/payoff"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

const defaultPayoff = "max(S - 100, 0)"

// Server holds the request decoding machinery and the data provider.
// It is stateless across requests.
type Server struct {
	prov     data.Provider
	decoder  *form.Decoder
	validate *validator.Validate
}

// New constructs a Server backed by the given market data provider.
func New(prov data.Provider) *Server {
	return &Server{
		prov:     prov,
		decoder:  form.NewDecoder(),
		validate: validator.New(),
	}
}

// Router registers all routes and returns the handler to serve.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/price", s.handlePriceMonteCarlo).Methods(http.MethodPost)
	r.HandleFunc("/api/price/lattice", s.handlePriceLattice).Methods(http.MethodPost)
	r.HandleFunc("/api/market/{ticker}", s.handleMarket).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	return r
}

//
// ==========================
// Request types
// ==========================
//

// monteCarloRequest is the form/JSON shape for Monte Carlo pricing. The
// validate tags catch shape-level problems early; the core repeats the
// domain checks.
type monteCarloRequest struct {
	Spot        float64 `json:"spot" form:"spot" validate:"required,gt=0"`
	Maturity    float64 `json:"maturity" form:"maturity" validate:"required,gt=0"`
	Rate        float64 `json:"rate" form:"rate"`
	Volatility  float64 `json:"volatility" form:"volatility" validate:"required,gt=0"`
	Simulations int     `json:"simulations" form:"simulations" validate:"required,gt=0"`
	Seed        *int64  `json:"seed" form:"seed"`
	Payoff      string  `json:"payoff" form:"payoff" validate:"required"`
}

func (req *monteCarloRequest) parameters() pricing.MonteCarloParameters {
	return pricing.MonteCarloParameters{
		Spot:        req.Spot,
		Maturity:    req.Maturity,
		Rate:        req.Rate,
		Volatility:  req.Volatility,
		Simulations: req.Simulations,
		Seed:        req.Seed,
	}
}

type latticeRequest struct {
	Spot          float64 `json:"spot" validate:"required,gt=0"`
	Strike        float64 `json:"strike" validate:"required,gt=0"`
	Maturity      float64 `json:"maturity" validate:"required,gt=0"`
	Rate          float64 `json:"rate"`
	Volatility    float64 `json:"volatility" validate:"required,gt=0"`
	Steps         int     `json:"steps" validate:"required,gt=0"`
	DividendYield float64 `json:"dividend_yield"`
	OptionType    string  `json:"option_type" validate:"omitempty,oneof=call put"`
	American      bool    `json:"american"`
}

//
// ==========================
// Handlers
// ==========================
//

// handlePriceMonteCarlo prices a custom-payoff option and returns
// {"price": v, "std_error": e, "simulations": n}.
func (s *Server) handlePriceMonteCarlo(w http.ResponseWriter, r *http.Request) {
	var req monteCarloRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	compiled, err := payoff.Compile(req.Payoff)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	est, err := pricing.EstimateMonteCarlo(req.parameters(), compiled)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	logger.Infof("priced monte-carlo payoff=%q sims=%d price=%.6f", req.Payoff, est.Simulations, est.Price)
	writeJSON(w, http.StatusOK, est)
}

// handlePriceLattice prices a vanilla option on the binomial tree and
// returns {"price": v}.
func (s *Server) handlePriceLattice(w http.ResponseWriter, r *http.Request) {
	var req latticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	price, err := pricing.PriceLattice(pricing.LatticeParameters{
		Spot:          req.Spot,
		Strike:        req.Strike,
		Maturity:      req.Maturity,
		Rate:          req.Rate,
		Volatility:    req.Volatility,
		Steps:         req.Steps,
		DividendYield: req.DividendYield,
		OptionType:    pricing.OptionType(req.OptionType),
		American:      req.American,
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	logger.Infof("priced lattice type=%s american=%v steps=%d price=%.6f",
		req.OptionType, req.American, req.Steps, price)
	writeJSON(w, http.StatusOK, map[string]float64{"price": price})
}

// handleMarket returns the latest spot and a realized-volatility estimate
// for a ticker, used to prefill the form.
func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	spot, err := s.prov.LatestSpot(ticker)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	to := time.Now().UTC()
	bars, err := s.prov.DailyBars(ticker, to.AddDate(0, -3, 0), to)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	vol, err := data.RealizedVolatility(bars)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ticker":       ticker,
		"spot":         spot,
		"realized_vol": vol,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

//
// ==========================
// Response helpers
// ==========================
//

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps core error kinds to HTTP statuses: rejected inputs and
// expressions are 400, a payoff that compiled but failed on a simulated
// price is 422, anything else is a server error.
func statusFor(err error) int {
	var paramErr *pricing.ParameterError
	var compileErr *payoff.CompileError
	var evalErr *payoff.EvalError
	switch {
	case errors.As(err, &paramErr), errors.As(err, &compileErr):
		return http.StatusBadRequest
	case errors.As(err, &evalErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	msg := ""
	for i, fe := range verrs {
		if i > 0 {
			msg += "; "
		}
		msg += fe.Field() + " failed " + fe.Tag() + " validation"
	}
	return msg
}
