package theory

import (
	"fmt"
	"math"

	"github.com/alanlujan91/DemARK/internal/models"
)

// Interpret derives heuristic findings from an estimated analysis.
// The heuristics mirror the textbook readings of each theory; they are
// descriptive aids, not hypothesis tests.
func Interpret(a *models.Analysis) []models.Finding {
	findings := []models.Finding{}
	coeff := coefficientIndex(a.Coefficients)

	switch a.Kind {
	case models.KindKeynes:
		if mpc, ok := coeff["mpc"]; ok {
			if mpc > 0 && mpc < 1 {
				findings = append(findings, models.Finding{
					Name:        "Keynesian MPC",
					Description: fmt.Sprintf("Estimated marginal propensity to consume %.3f lies in (0,1), as the fundamental psychological law predicts", mpc),
					Confidence:  0.9,
				})
			} else {
				findings = append(findings, models.Finding{
					Name:        "MPC outside unit interval",
					Description: fmt.Sprintf("Estimated MPC %.3f is outside (0,1); the simple Keynesian form fits poorly on this sample", mpc),
					Confidence:  0.7,
				})
			}
		}
		if intercept, ok := coeff["intercept"]; ok && intercept > 0 {
			findings = append(findings, models.Finding{
				Name:        "Autonomous consumption",
				Description: fmt.Sprintf("Positive intercept %.1f: consumption at zero income, the autonomous component of the Keynesian function", intercept),
				Confidence:  0.8,
			})
		}

	case models.KindDuesenberry:
		if ratchet, ok := coeff["ratchet"]; ok {
			if ratchet > 0 {
				findings = append(findings, models.Finding{
					Name:        "Ratchet effect",
					Description: fmt.Sprintf("Prior peak income enters with coefficient %.3f > 0: households defend consumption standards attained at earlier income peaks", ratchet),
					Confidence:  0.75,
				})
			} else {
				findings = append(findings, models.Finding{
					Name:        "No ratchet effect",
					Description: fmt.Sprintf("Prior peak income coefficient %.3f is non-positive; the relative income hypothesis finds no support here", ratchet),
					Confidence:  0.6,
				})
			}
		}

	case models.KindFriedman:
		sum, current := 0.0, 0.0
		for _, c := range a.Coefficients {
			if c.Name == "intercept" {
				continue
			}
			sum += c.Value
			if c.Name == "y_lag0" {
				current = c.Value
			}
		}
		if sum != 0 && math.Abs(current/sum) < 0.9 {
			findings = append(findings, models.Finding{
				Name:        "Permanent income smoothing",
				Description: fmt.Sprintf("Lagged incomes carry %.0f%% of the total weight %.3f: consumption responds to a longer-horizon income measure, as the permanent income hypothesis implies", (1-current/sum)*100, sum),
				Confidence:  0.8,
			})
		} else {
			findings = append(findings, models.Finding{
				Name:        "Current income dominates",
				Description: "Current income carries nearly all the lag weight; this sample does not distinguish permanent from current income",
				Confidence:  0.6,
			})
		}
	}

	// Always report fit quality
	findings = append(findings, models.Finding{
		Name:        "Goodness of fit",
		Description: fmt.Sprintf("R-squared %.4f over %d aligned observations", a.R2, a.N),
		Confidence:  1.0,
	})

	return findings
}

func coefficientIndex(coeffs []models.Coefficient) map[string]float64 {
	idx := make(map[string]float64, len(coeffs))
	for _, c := range coeffs {
		idx[c.Name] = c.Value
	}
	return idx
}
