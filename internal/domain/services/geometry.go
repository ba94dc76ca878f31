// Package services contains domain services for the Twinklr domain
// model: the pure resolvers, the template patcher, the repeat scheduler,
// and the phase offset calculator. Nothing here performs I/O or calls
// back into orchestration.
package services

import (
	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

// RoleAny is the wildcard role key in pose tables: a pose target bound
// to it applies to every role without a more specific entry.
const RoleAny = "*"

// BasePose is the static spatial baseline for one fixture, in DMX.
type BasePose struct {
	PanDMX  float64
	TiltDMX float64
}

// GeometryResolver maps a step's pose/aim tokens plus rig calibration to
// static per-fixture baseline pan/tilt. Purely static: no time, no
// curve. Geometry is the only place formation lives.
type GeometryResolver struct{}

// NewGeometryResolver creates a new geometry resolver service.
func NewGeometryResolver() *GeometryResolver {
	return &GeometryResolver{}
}

// Resolve computes the baseline pose for each target fixture. An unknown
// role, pose token, or aim zone in scope fails the compile: geometry is
// the spatial baseline every fixture needs.
func (g *GeometryResolver) Resolve(
	stepID string,
	spec entities.GeometrySpec,
	fixtures []string,
	rig *entities.RigProfile,
) (map[string]BasePose, error) {
	out := make(map[string]BasePose, len(fixtures))

	for _, fixture := range fixtures {
		role, ok := rig.RoleOf(fixture)
		if !ok {
			return nil, &entities.CompositionError{
				StepID:  stepID,
				Fixture: fixture,
				Reason:  "fixture has no role binding",
			}
		}

		target, ok := rig.Pose(spec.Pose, role)
		if !ok {
			target, ok = rig.Pose(spec.Pose, RoleAny)
		}
		if !ok {
			return nil, &entities.CompositionError{
				StepID:  stepID,
				Fixture: fixture,
				Reason:  "pose token " + spec.Pose + " not defined for role " + role,
			}
		}

		tiltNorm := target.TiltNorm
		if spec.AimZone != "" {
			zone, ok := rig.AimZone(spec.AimZone)
			if !ok {
				return nil, &entities.CompositionError{
					StepID:  stepID,
					Fixture: fixture,
					Reason:  "unknown aim zone: " + spec.AimZone,
				}
			}
			tiltNorm = zone
		}

		cal, ok := rig.Calibration(fixture)
		if !ok {
			return nil, &entities.CompositionError{
				StepID:  stepID,
				Fixture: fixture,
				Reason:  "fixture has no calibration",
			}
		}

		out[fixture] = BasePose{
			PanDMX:  cal.PanMin + target.PanNorm*(cal.PanMax-cal.PanMin),
			TiltDMX: cal.TiltMin + tiltNorm*(cal.TiltMax-cal.TiltMin),
		}
	}

	return out, nil
}
