package server

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/payoff"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// indexData is the template payload for the pricing form.
type indexData struct {
	Form   monteCarloRequest
	Price  string // formatted; empty means no result yet
	StdErr string
	Error  string
}

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// handleIndex renders the Monte Carlo pricing form and, on POST, prices
// the submitted option inline.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	d := indexData{Form: defaultForm()}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			d.Error = "could not parse form submission"
			s.renderIndex(w, d)
			return
		}
		// An untouched optional field arrives as "" — drop it so the
		// decoder leaves the target at its zero value (nil seed).
		for k, vs := range r.PostForm {
			if len(vs) == 1 && vs[0] == "" {
				delete(r.PostForm, k)
			}
		}
		if err := s.decoder.Decode(&d.Form, r.PostForm); err != nil {
			d.Error = "inputs must be numeric"
			s.renderIndex(w, d)
			return
		}
		if err := s.validate.Struct(&d.Form); err != nil {
			d.Error = validationMessage(err)
			s.renderIndex(w, d)
			return
		}

		compiled, err := payoff.Compile(d.Form.Payoff)
		if err != nil {
			d.Error = err.Error()
			s.renderIndex(w, d)
			return
		}

		est, err := pricing.EstimateMonteCarlo(d.Form.parameters(), compiled)
		if err != nil {
			d.Error = err.Error()
			s.renderIndex(w, d)
			return
		}

		logger.Infof("form priced payoff=%q sims=%d price=%.6f", d.Form.Payoff, est.Simulations, est.Price)
		d.Price = fmt.Sprintf("%.4f", est.Price)
		d.StdErr = fmt.Sprintf("%.4f", est.StdError)
	}

	s.renderIndex(w, d)
}

func (s *Server) renderIndex(w http.ResponseWriter, d indexData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, d); err != nil {
		logger.Errorf("rendering index: %v", err)
	}
}

func defaultForm() monteCarloRequest {
	return monteCarloRequest{
		Spot:        100,
		Maturity:    1,
		Rate:        0.05,
		Volatility:  0.2,
		Simulations: 100000,
		Payoff:      defaultPayoff,
	}
}

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Monte Carlo Option Pricer</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 2rem auto; max-width: 720px; line-height: 1.5; }
    label { display: block; margin-top: 0.5rem; }
    input { width: 100%; padding: 0.4rem; margin-top: 0.2rem; box-sizing: border-box; }
    .row { display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr)); gap: 1rem; }
    .error { color: #b30000; background: #ffe0e0; padding: 0.5rem; border-radius: 4px; }
    .result { color: #0b650b; background: #e4ffe4; padding: 0.5rem; border-radius: 4px; font-weight: bold; }
    button { padding: 0.6rem 1rem; margin-top: 1rem; }
    code { background: #f2f2f2; padding: 0.1rem 0.2rem; border-radius: 4px; }
  </style>
</head>
<body>
  <h1>Monte Carlo Option Pricer</h1>
  <p>Provide the inputs below to estimate an option price. Payoffs use <code>S</code> for the terminal price (example: <code>max(S - 100, 0)</code> for a call).</p>
  {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
  {{if .Price}}<div class="result">Estimated price: {{.Price}} (std error {{.StdErr}})</div>{{end}}
  <form method="post">
    <div class="row">
      <label>Spot price
        <input name="spot" type="number" step="any" value="{{.Form.Spot}}" required>
      </label>
      <label>Maturity (years)
        <input name="maturity" type="number" step="any" value="{{.Form.Maturity}}" required>
      </label>
      <label>Risk-free rate
        <input name="rate" type="number" step="any" value="{{.Form.Rate}}" required>
      </label>
      <label>Volatility
        <input name="volatility" type="number" step="any" value="{{.Form.Volatility}}" required>
      </label>
      <label>Simulations
        <input name="simulations" type="number" step="1" min="1" value="{{.Form.Simulations}}" required>
      </label>
      <label>Random seed (optional)
        <input name="seed" type="number" step="1" value="{{if .Form.Seed}}{{.Form.Seed}}{{end}}">
      </label>
    </div>
    <label>Payoff expression
      <input name="payoff" type="text" value="{{.Form.Payoff}}" required>
    </label>
    <button type="submit">Price option</button>
  </form>
  <h2>API usage</h2>
  <p>POST JSON to <code>/api/price</code> with the fields shown above to receive <code>{"price": value}</code> or an error message. Vanilla binomial-tree pricing is at <code>/api/price/lattice</code>.</p>
</body>
</html>
`
