package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

// testRig builds a four-fixture rig shared by the service tests.
func testRig(t *testing.T) *entities.RigProfile {
	t.Helper()

	cal := entities.FixtureCalibration{
		PanMin: 0, PanCenter: 128, PanMax: 256,
		TiltMin: 0, TiltCenter: 100, TiltMax: 200,
		DimmerMin: 0, DimmerMax: 255,
	}

	rig, err := entities.NewRigProfile(entities.RigProfileParams{
		Name:     "testrig",
		Fixtures: []string{"mh1", "mh2", "mh3", "mh4"},
		RoleBindings: map[string]string{
			"mh1": "WING",
			"mh2": "CENTER",
			"mh3": "CENTER",
			"mh4": "WING",
		},
		Groups: map[string][]string{
			"WINGS":   {"mh1", "mh4"},
			"CENTERS": {"mh2", "mh3"},
		},
		Orders: map[string][]string{
			"LEFT_TO_RIGHT": {"mh1", "mh2", "mh3", "mh4"},
			"OUTSIDE_IN":    {"mh1", "mh4", "mh2", "mh3"},
		},
		Calibration: map[string]entities.FixtureCalibration{
			"mh1": cal, "mh2": cal, "mh3": cal, "mh4": cal,
		},
		Poses: map[string]map[string]entities.PoseTarget{
			"HOME": {
				"*": {PanNorm: 0.5, TiltNorm: 0.5},
			},
			"FAN": {
				"WING":   {PanNorm: 0.25, TiltNorm: 0.6},
				"CENTER": {PanNorm: 0.5, TiltNorm: 0.4},
			},
		},
		AimZones: map[string]float64{
			"CROWD": 0.25,
		},
	})
	require.NoError(t, err)
	return rig
}

func Test_GeometryResolver_Resolve_WildcardPose(t *testing.T) {
	t.Parallel()

	g := NewGeometryResolver()
	rig := testRig(t)

	poses, err := g.Resolve("s1", entities.GeometrySpec{Pose: "HOME"}, []string{"mh1", "mh2"}, rig)
	require.NoError(t, err)

	// PanNorm 0.5 over [0,256], TiltNorm 0.5 over [0,200].
	assert.Equal(t, 128.0, poses["mh1"].PanDMX)
	assert.Equal(t, 100.0, poses["mh1"].TiltDMX)
	assert.Equal(t, poses["mh1"], poses["mh2"])
}

func Test_GeometryResolver_Resolve_RoleSpecificPose(t *testing.T) {
	t.Parallel()

	g := NewGeometryResolver()
	rig := testRig(t)

	poses, err := g.Resolve("s1", entities.GeometrySpec{Pose: "FAN"}, []string{"mh1", "mh2"}, rig)
	require.NoError(t, err)

	// Formation comes from per-role targets, not from movement.
	assert.Equal(t, 64.0, poses["mh1"].PanDMX)
	assert.Equal(t, 128.0, poses["mh2"].PanDMX)
	assert.InDelta(t, 120.0, poses["mh1"].TiltDMX, 1e-9)
	assert.InDelta(t, 80.0, poses["mh2"].TiltDMX, 1e-9)
}

func Test_GeometryResolver_Resolve_AimZoneOverridesTilt(t *testing.T) {
	t.Parallel()

	g := NewGeometryResolver()
	rig := testRig(t)

	poses, err := g.Resolve("s1", entities.GeometrySpec{Pose: "FAN", AimZone: "CROWD"}, []string{"mh1"}, rig)
	require.NoError(t, err)

	// Pan keeps the pose target; tilt takes the zone.
	assert.Equal(t, 64.0, poses["mh1"].PanDMX)
	assert.Equal(t, 50.0, poses["mh1"].TiltDMX)
}

func Test_GeometryResolver_Resolve_Failures(t *testing.T) {
	g := NewGeometryResolver()
	rig := testRig(t)

	tests := []struct {
		name string
		spec entities.GeometrySpec
	}{
		{"unknown pose", entities.GeometrySpec{Pose: "MISSING"}},
		{"unknown aim zone", entities.GeometrySpec{Pose: "HOME", AimZone: "SKY"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Resolve("s1", tt.spec, []string{"mh1"}, rig)
			require.Error(t, err)

			var compErr *entities.CompositionError
			assert.ErrorAs(t, err, &compErr)
		})
	}
}
