package extractor

// CallSignals captures how literally an endpoint was read from source.
type CallSignals struct {
	TemplateURL     bool
	PlaceholderURL  bool
	MethodDefaulted bool
	BodyViaBinding  bool
	BodyMissing     bool
}

func CalibrateEndpointConfidence(s CallSignals) float64 {
	base := 0.95

	if s.TemplateURL {
		base -= 0.08
	}
	if s.PlaceholderURL {
		base -= 0.1
	}
	if s.MethodDefaulted {
		base -= 0.02
	}
	if s.BodyViaBinding {
		base -= 0.05
	}
	if s.BodyMissing {
		base -= 0.15
	}

	return clamp(base, 0.1, 0.99)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
