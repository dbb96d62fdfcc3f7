package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisKind names a theory comparison
type AnalysisKind string

const (
	KindKeynes      AnalysisKind = "keynes"
	KindDuesenberry AnalysisKind = "duesenberry"
	KindFriedman    AnalysisKind = "friedman"
)

// Valid reports whether the kind is one of the supported comparisons
func (k AnalysisKind) Valid() bool {
	switch k {
	case KindKeynes, KindDuesenberry, KindFriedman:
		return true
	}
	return false
}

// Observation is a single dated value of a macroeconomic series
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Coefficient is one estimated regression coefficient
type Coefficient struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	StdError float64 `json:"std_error"`
}

// Finding is a heuristic interpretation of a regression result
type Finding struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"` // 0.0 to 1.0
}

// Analysis is a stored theory comparison: one regression of consumption
// on income run against fetched series over a date range.
type Analysis struct {
	ID   uuid.UUID    `json:"id"`
	Kind AnalysisKind `json:"kind"`

	ConsumptionSeries string    `json:"consumption_series"`
	IncomeSeries      string    `json:"income_series"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	Lags              int       `json:"lags,omitempty"`

	Coefficients []Coefficient `json:"coefficients"`
	R2           float64       `json:"r2"`
	N            int           `json:"n"`
	Findings     []Finding     `json:"findings,omitempty"`

	CreatedBy uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ConsumerSolution is the API shape of a solved perfect-foresight model
type ConsumerSolution struct {
	DiscFac    float64 `json:"disc_fac"`
	Rfree      float64 `json:"rfree"`
	CRRA       float64 `json:"crra"`
	PermGroFac float64 `json:"perm_gro_fac"`

	MPC         float64 `json:"mpc"`
	HumanWealth float64 `json:"human_wealth"`
	MinM        float64 `json:"min_m"`

	// Linear consumption rule recovered by two-point evaluation
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`

	Points []ConsumptionPoint `json:"points,omitempty"`
}

// ConsumptionPoint is one sampled point of the consumption function
type ConsumptionPoint struct {
	M float64 `json:"m"`
	C float64 `json:"c"`
}

// User represents an account in the system
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Never serialize
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
