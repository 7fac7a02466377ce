package ruledsl

// TeaLotSnapshot is the fixed attribute view of a tea lot that rules are
// evaluated against.
type TeaLotSnapshot struct {
	Moisture       float64 `json:"moisture"`
	PesticideLevel float64 `json:"pesticide_level"`
	AromaScore     int     `json:"aroma_score"`
}
