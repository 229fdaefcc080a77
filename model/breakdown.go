package model

// Breakdown is the derived pricing result for a Configuration. It is never
// stored: every value is recomputed from the current document on read, so
// two reads over an unchanged Configuration are bit-identical.
type Breakdown struct {
	BaseFee       float64 `json:"baseFee"`
	ProductionFee float64 `json:"productionFee"`
	HandlingFee   float64 `json:"handlingFee"`
	RetouchingFee float64 `json:"retouchingFee"`
	Subtotal      float64 `json:"subtotal"`
	Tax           float64 `json:"tax"`
	Total         float64 `json:"total"`
}
