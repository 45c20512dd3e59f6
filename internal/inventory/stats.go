package inventory

// MethodCounts tallies endpoints per HTTP method.
func (inv *Inventory) MethodCounts() map[string]int {
	counts := make(map[string]int)
	if inv == nil {
		return counts
	}
	for _, e := range inv.endpoints {
		counts[e.Method]++
	}
	return counts
}

// ControllerCounts tallies endpoints per controller.
func (inv *Inventory) ControllerCounts() map[string]int {
	counts := make(map[string]int)
	if inv == nil {
		return counts
	}
	for _, e := range inv.endpoints {
		counts[e.ControllerName]++
	}
	return counts
}

// BodyCount reports how many endpoints carry a request-body schema.
func (inv *Inventory) BodyCount() int {
	if inv == nil {
		return 0
	}
	n := 0
	for _, e := range inv.endpoints {
		if e.HasBody() {
			n++
		}
	}
	return n
}

// MeanConfidence averages the confidence score over all endpoints, or 0 for
// an empty inventory.
func (inv *Inventory) MeanConfidence() float64 {
	if inv == nil || len(inv.endpoints) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range inv.endpoints {
		sum += e.Confidence
	}
	return sum / float64(len(inv.endpoints))
}
