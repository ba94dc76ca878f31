package entities

import (
	"fmt"
	"sort"
)

// GroupAll is the implicit group containing every fixture in the rig.
// Rig documents must declare it; validation enforces its presence.
const GroupAll = "ALL"

// PoseTarget is a normalized pan/tilt target for one role within a pose
// token. Formation (fan, chevron, line) is expressed entirely through
// per-role targets here, never through movement.
type PoseTarget struct {
	PanNorm  float64 `json:"pan_norm" yaml:"pan_norm"`
	TiltNorm float64 `json:"tilt_norm" yaml:"tilt_norm"`
}

// FixtureCalibration maps normalized positions onto one fixture's usable
// DMX range. DMX values are carried as float64 until export.
type FixtureCalibration struct {
	PanMin     float64 `json:"pan_min" yaml:"pan_min"`
	PanMax     float64 `json:"pan_max" yaml:"pan_max"`
	PanCenter  float64 `json:"pan_center" yaml:"pan_center"`
	TiltMin    float64 `json:"tilt_min" yaml:"tilt_min"`
	TiltMax    float64 `json:"tilt_max" yaml:"tilt_max"`
	TiltCenter float64 `json:"tilt_center" yaml:"tilt_center"`
	DimmerMin  float64 `json:"dimmer_min" yaml:"dimmer_min"`
	DimmerMax  float64 `json:"dimmer_max" yaml:"dimmer_max"`
}

func (c FixtureCalibration) validate(fixture string) error {
	checks := []struct {
		name          string
		min, mid, max float64
	}{
		{"pan", c.PanMin, c.PanCenter, c.PanMax},
		{"tilt", c.TiltMin, c.TiltCenter, c.TiltMax},
	}
	for _, ch := range checks {
		if ch.min > ch.mid || ch.mid > ch.max {
			return &SchemaViolationError{
				Field:  fmt.Sprintf("calibration.%s.%s", fixture, ch.name),
				Reason: fmt.Sprintf("expected min <= center <= max, got %.1f/%.1f/%.1f", ch.min, ch.mid, ch.max),
			}
		}
	}
	if c.DimmerMin > c.DimmerMax {
		return &SchemaViolationError{
			Field:  fmt.Sprintf("calibration.%s.dimmer", fixture),
			Reason: "dimmer floor above ceiling",
		}
	}
	return nil
}

// RigProfileParams is the constructor input for RigProfile. The loader
// builds one from a validated rig document; tests build them literally.
type RigProfileParams struct {
	Name         string
	Fixtures     []string
	RoleBindings map[string]string
	Groups       map[string][]string
	Orders       map[string][]string
	Calibration  map[string]FixtureCalibration
	Poses        map[string]map[string]PoseTarget
	AimZones     map[string]float64
}

// RigProfile is the physical fixture inventory plus the semantic
// groups/orders/roles/calibration that make a template executable.
// Constructor-validated, then read-only for the life of a compile.
type RigProfile struct {
	name         string
	fixtures     []string
	roleBindings map[string]string
	groups       map[string][]string
	orders       map[string][]string
	calibration  map[string]FixtureCalibration
	poses        map[string]map[string]PoseTarget
	aimZones     map[string]float64
}

// NewRigProfile validates rig structure once at the ingestion boundary.
func NewRigProfile(p RigProfileParams) (*RigProfile, error) {
	if len(p.Fixtures) == 0 {
		return nil, &SchemaViolationError{Doc: p.Name, Field: "fixtures", Reason: "rig has no fixtures"}
	}

	known := make(map[string]bool, len(p.Fixtures))
	for _, id := range p.Fixtures {
		if id == "" {
			return nil, &SchemaViolationError{Doc: p.Name, Field: "fixtures", Reason: "empty fixture id"}
		}
		if known[id] {
			return nil, &SchemaViolationError{Doc: p.Name, Field: "fixtures", Reason: "duplicate fixture id: " + id}
		}
		known[id] = true
	}

	groups := make(map[string][]string, len(p.Groups)+1)
	for name, members := range p.Groups {
		seen := make(map[string]bool, len(members))
		for _, id := range members {
			if !known[id] {
				return nil, &SchemaViolationError{
					Doc:    p.Name,
					Field:  "groups." + name,
					Reason: "unknown fixture: " + id,
				}
			}
			if seen[id] {
				return nil, &SchemaViolationError{
					Doc:    p.Name,
					Field:  "groups." + name,
					Reason: "duplicate fixture: " + id,
				}
			}
			seen[id] = true
		}
		groups[name] = copyStrings(members)
	}
	if _, ok := groups[GroupAll]; !ok {
		// ALL is always present; synthesize it from the patch order.
		groups[GroupAll] = copyStrings(p.Fixtures)
	}

	orders := make(map[string][]string, len(p.Orders))
	for name, seq := range p.Orders {
		seen := make(map[string]bool, len(seq))
		for _, id := range seq {
			if !known[id] {
				return nil, &SchemaViolationError{
					Doc:    p.Name,
					Field:  "orders." + name,
					Reason: "unknown fixture: " + id,
				}
			}
			if seen[id] {
				return nil, &SchemaViolationError{
					Doc:    p.Name,
					Field:  "orders." + name,
					Reason: "duplicate fixture: " + id,
				}
			}
			seen[id] = true
		}
		orders[name] = copyStrings(seq)
	}

	bindings := make(map[string]string, len(p.RoleBindings))
	for fixture, role := range p.RoleBindings {
		if !known[fixture] {
			return nil, &SchemaViolationError{
				Doc:    p.Name,
				Field:  "role_bindings",
				Reason: "unknown fixture: " + fixture,
			}
		}
		if role == "" {
			return nil, &SchemaViolationError{
				Doc:    p.Name,
				Field:  "role_bindings." + fixture,
				Reason: "empty role",
			}
		}
		bindings[fixture] = role
	}

	calibration := make(map[string]FixtureCalibration, len(p.Calibration))
	for fixture, cal := range p.Calibration {
		if !known[fixture] {
			return nil, &SchemaViolationError{
				Doc:    p.Name,
				Field:  "calibration",
				Reason: "unknown fixture: " + fixture,
			}
		}
		if err := cal.validate(fixture); err != nil {
			return nil, err
		}
		calibration[fixture] = cal
	}
	for _, id := range p.Fixtures {
		if _, ok := calibration[id]; !ok {
			return nil, &SchemaViolationError{
				Doc:    p.Name,
				Field:  "calibration",
				Reason: "missing calibration for fixture: " + id,
			}
		}
	}

	poses := make(map[string]map[string]PoseTarget, len(p.Poses))
	for token, byRole := range p.Poses {
		targets := make(map[string]PoseTarget, len(byRole))
		for role, target := range byRole {
			if !inUnit(target.PanNorm) || !inUnit(target.TiltNorm) {
				return nil, &SchemaViolationError{
					Doc:    p.Name,
					Field:  fmt.Sprintf("poses.%s.%s", token, role),
					Reason: "pose targets must be normalized to [0,1]",
				}
			}
			targets[role] = target
		}
		poses[token] = targets
	}

	aimZones := make(map[string]float64, len(p.AimZones))
	for zone, tilt := range p.AimZones {
		if !inUnit(tilt) {
			return nil, &SchemaViolationError{
				Doc:    p.Name,
				Field:  "aim_zones." + zone,
				Reason: "aim zone tilt must be normalized to [0,1]",
			}
		}
		aimZones[zone] = tilt
	}

	return &RigProfile{
		name:         p.Name,
		fixtures:     copyStrings(p.Fixtures),
		roleBindings: bindings,
		groups:       groups,
		orders:       orders,
		calibration:  calibration,
		poses:        poses,
		aimZones:     aimZones,
	}, nil
}

// Name returns the rig's identifier.
func (r *RigProfile) Name() string { return r.name }

// Fixtures returns the fixture ids in patch order.
func (r *RigProfile) Fixtures() []string { return copyStrings(r.fixtures) }

// Group returns the members of a named group in declaration order.
func (r *RigProfile) Group(name string) ([]string, bool) {
	members, ok := r.groups[name]
	if !ok {
		return nil, false
	}
	return copyStrings(members), true
}

// GroupNames returns all group names, sorted.
func (r *RigProfile) GroupNames() []string {
	return sortedKeys(r.groups)
}

// Order returns a named fixture sequence. The sequence encodes spatial
// intent (e.g. OUTSIDE_IN) and must never be re-sorted by callers.
func (r *RigProfile) Order(name string) ([]string, bool) {
	seq, ok := r.orders[name]
	if !ok {
		return nil, false
	}
	return copyStrings(seq), true
}

// OrderNames returns all order names, sorted.
func (r *RigProfile) OrderNames() []string {
	return sortedKeys(r.orders)
}

// RoleOf returns the role bound to a fixture.
func (r *RigProfile) RoleOf(fixture string) (string, bool) {
	role, ok := r.roleBindings[fixture]
	return role, ok
}

// Calibration returns a fixture's calibration.
func (r *RigProfile) Calibration(fixture string) (FixtureCalibration, bool) {
	cal, ok := r.calibration[fixture]
	return cal, ok
}

// Pose resolves a pose token for a role.
func (r *RigProfile) Pose(token, role string) (PoseTarget, bool) {
	byRole, ok := r.poses[token]
	if !ok {
		return PoseTarget{}, false
	}
	target, ok := byRole[role]
	return target, ok
}

// AimZone resolves an aim-zone token to a normalized tilt.
func (r *RigProfile) AimZone(zone string) (float64, bool) {
	tilt, ok := r.aimZones[zone]
	return tilt, ok
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }
