package inventory

import (
	"sort"
	"strings"

	"apiscout/internal/ir"
)

// Inventory is the deduplicated collection of endpoints discovered in one
// scan. Identity is the method+route pair; the first observation of a key
// wins and later duplicates are discarded.
type Inventory struct {
	endpoints []ir.EndpointDescriptor
	byKey     map[string]int

	// Index for faster lookup: controller name -> endpoint positions.
	controllerIndex map[string][]int
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{
		byKey:           make(map[string]int),
		controllerIndex: make(map[string][]int),
	}
}

// Add inserts an endpoint unless its method+route key is already present.
// Returns true when the endpoint was inserted.
func (inv *Inventory) Add(e ir.EndpointDescriptor) bool {
	key := e.Key()
	if _, exists := inv.byKey[key]; exists {
		return false
	}
	inv.byKey[key] = len(inv.endpoints)
	inv.controllerIndex[e.ControllerName] = append(inv.controllerIndex[e.ControllerName], len(inv.endpoints))
	inv.endpoints = append(inv.endpoints, e)
	return true
}

// AddAll inserts endpoints in order and reports how many were new.
func (inv *Inventory) AddAll(endpoints []ir.EndpointDescriptor) int {
	added := 0
	for _, e := range endpoints {
		if inv.Add(e) {
			added++
		}
	}
	return added
}

// Len returns the number of distinct endpoints.
func (inv *Inventory) Len() int {
	return len(inv.endpoints)
}

// Endpoints returns the endpoints in insertion order.
func (inv *Inventory) Endpoints() []ir.EndpointDescriptor {
	out := make([]ir.EndpointDescriptor, len(inv.endpoints))
	copy(out, inv.endpoints)
	return out
}

// Get looks up the endpoint stored under a method+route pair.
func (inv *Inventory) Get(method, route string) (ir.EndpointDescriptor, bool) {
	idx, ok := inv.byKey[method+" "+route]
	if !ok {
		return ir.EndpointDescriptor{}, false
	}
	return inv.endpoints[idx], true
}

// Controllers returns the distinct controller names, sorted.
func (inv *Inventory) Controllers() []string {
	names := make([]string, 0, len(inv.controllerIndex))
	for name := range inv.controllerIndex {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Controller returns the endpoints grouped under one controller, in
// insertion order.
func (inv *Inventory) Controller(name string) []ir.EndpointDescriptor {
	positions := inv.controllerIndex[name]
	if len(positions) == 0 {
		return nil
	}
	out := make([]ir.EndpointDescriptor, 0, len(positions))
	for _, idx := range positions {
		out = append(out, inv.endpoints[idx])
	}
	return out
}

// Query selects a subset of the inventory. Zero-valued fields match
// everything.
type Query struct {
	Method        string
	Controller    string
	RoutePrefix   string
	RouteContains string
}

// Filter returns the endpoints matching a query, in insertion order.
func (inv *Inventory) Filter(q Query) []ir.EndpointDescriptor {
	var out []ir.EndpointDescriptor
	for _, e := range inv.endpoints {
		if q.Method != "" && !strings.EqualFold(q.Method, e.Method) {
			continue
		}
		if q.Controller != "" && !strings.EqualFold(q.Controller, e.ControllerName) {
			continue
		}
		if q.RoutePrefix != "" && !strings.HasPrefix(e.Route, q.RoutePrefix) {
			continue
		}
		if q.RouteContains != "" && !strings.Contains(e.Route, q.RouteContains) {
			continue
		}
		out = append(out, e)
	}
	return out
}
