// Package sampler implements the event-time/type sampler and the
// attribute sampler, grounded on
// original_source/src/sampler/competing_intensity_sampler.cpp and
// original_source/src/qrsdp/unit_size_attribute_sampler.cpp.
package sampler

import (
	"math"

	"github.com/qrsdp/qrsdp/pkg/book"
	"github.com/qrsdp/qrsdp/pkg/intensity"
)

const (
	minU        = 1e-10
	safeDeltaT  = 1e9
)

// Uniformer is the single RNG capability the samplers need.
type Uniformer interface {
	Uniform() float64
}

// EventSampler draws inter-arrival times and event types/indices from
// competing intensities (spec.md §4.4).
type EventSampler struct {
	rng Uniformer
}

// NewEventSampler builds an EventSampler drawing from rng.
func NewEventSampler(rng Uniformer) *EventSampler {
	return &EventSampler{rng: rng}
}

// SampleDeltaT draws an inverse-CDF exponential inter-arrival time. If
// lambdaTotal is non-finite or non-positive it returns a large but finite
// sentinel so the caller can advance past session end safely.
func (s *EventSampler) SampleDeltaT(lambdaTotal float64) float64 {
	if lambdaTotal <= 0 || math.IsInf(lambdaTotal, 0) || math.IsNaN(lambdaTotal) {
		return safeDeltaT
	}
	u := s.rng.Uniform()
	if u <= 0 || u >= 1 || u < minU {
		u = minU
	}
	return -math.Log(u) / lambdaTotal
}

var typeOrder = [6]book.EventType{
	book.AddBid, book.AddAsk, book.CancelBid, book.CancelAsk, book.ExecuteBuy, book.ExecuteSell,
}

// SampleType draws an EventType from the six competing rates, by share of
// total. Ties broken by the fixed traversal order ADD_BID, ADD_ASK,
// CANCEL_BID, CANCEL_ASK, EXECUTE_BUY, EXECUTE_SELL with a strict
// u < cum/total boundary test.
func (s *EventSampler) SampleType(intens intensity.Intensities) book.EventType {
	total := intens.Total()
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		return book.AddBid
	}
	u := s.rng.Uniform()
	var cum float64
	for _, t := range typeOrder {
		cum += intens.At(t)
		if u < cum/total {
			return t
		}
	}
	return book.ExecuteSell
}

// SampleIndexFromWeights draws an index from arbitrary nonnegative
// weights by the same cumulative-share mechanics as SampleType. Used for
// HLR per-(level,type) sampling.
func (s *EventSampler) SampleIndexFromWeights(weights []float64) int {
	if len(weights) == 0 {
		return 0
	}
	var total float64
	for _, w := range weights {
		if !math.IsNaN(w) && !math.IsInf(w, 0) && w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	u := s.rng.Uniform()
	if u <= 0 || u >= 1 {
		return 0
	}
	var cum float64
	for i, w := range weights {
		if !math.IsNaN(w) && !math.IsInf(w, 0) && w > 0 {
			cum += w
			if u < cum/total {
				return i
			}
		}
	}
	return len(weights) - 1
}
