// Package pricing derives a cost breakdown from an event configuration.
//
// The calculator is a pure function of its input: the same configuration
// always produces the same breakdown, unknown enum values fall back to
// documented defaults, and no input can make it fail.
package pricing

import (
	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// Base fee per event category, charged once regardless of shot volume.
var baseFeeByCategory = map[model.Category]float64{
	model.CategoryFashion:    0,
	model.CategoryProduct:    50,
	model.CategoryEditorial:  150,
	model.CategoryRunway:     500,
	model.CategoryPopup:      100,
	model.CategoryConference: 250,
	model.CategoryParty:      200,
}

const defaultBaseFee = 75

// Per-shot rate by photography style.
var perUnitRateByStyle = map[string]float64{
	"catalog":   45,
	"editorial": 65,
	"lifestyle": 55,
	"flat-lay":  40,
	"creative":  75,
}

const defaultPerUnitRate = 50

// Per-shot handling surcharge by product size.
var handlingByProductSize = map[model.ProductSize]float64{
	model.ProductSizeStandard: 0,
	model.ProductSizeLarge:    5,
	model.ProductSizeOversize: 12,
}

// Multiplier applied to the pre-retouching subtotal.
var retouchMultiplier = map[model.Retouching]float64{
	model.RetouchingBasic:   1.0,
	model.RetouchingHighEnd: 1.5,
}

// Calculator computes deterministic price breakdowns. The zero value is
// usable and applies no tax.
type Calculator struct {
	taxRate float64
}

// NewCalculator returns a Calculator applying the given tax rate, expressed
// as a fraction in [0, 1).
func NewCalculator(taxRate float64) *Calculator {
	return &Calculator{taxRate: taxRate}
}

// Totals computes the full breakdown for a configuration. It never fails:
// unknown categories, styles, sizes and retouching levels use fallback
// values, and a negative shot count is treated as zero.
func (c *Calculator) Totals(cfg model.Configuration) model.Breakdown {
	shots := float64(cfg.ShotCount)
	if shots < 0 {
		shots = 0
	}

	baseFee, ok := baseFeeByCategory[cfg.Category]
	if !ok {
		baseFee = defaultBaseFee
	}

	rate, ok := perUnitRateByStyle[cfg.Style]
	if !ok {
		rate = defaultPerUnitRate
	}
	productionFee := rate * shots

	handlingFee := handlingByProductSize[cfg.ProductSize] * shots

	preRetouch := baseFee + productionFee + handlingFee

	mult, ok := retouchMultiplier[cfg.Retouching]
	if !ok {
		mult = 1.0
	}
	subtotal := preRetouch * mult
	retouchingFee := subtotal - preRetouch

	tax := subtotal * c.taxRate

	return model.Breakdown{
		BaseFee:       baseFee,
		ProductionFee: productionFee,
		HandlingFee:   handlingFee,
		RetouchingFee: retouchingFee,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal + tax,
	}
}
