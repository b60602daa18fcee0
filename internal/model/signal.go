package model

// FactorScore holds one factor's contribution to a composite signal.
type FactorScore struct {
	Name       string
	RawScore   float64
	Weight     float64
	Weighted   float64
	Commentary string
}

// Signal is the weighted verdict over several indicators of one symbol.
type Signal struct {
	Factors    []FactorScore
	TotalScore float64
	Label      string
	WarningMsg string
}
