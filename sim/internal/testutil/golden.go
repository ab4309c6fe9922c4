// Package testutil provides shared test infrastructure for the parcel-sim
// packages. It holds the golden scenario types and assertion helpers used
// across sim/, cmd/ and server/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/golden_scenarios.json.
type GoldenDataset struct {
	Tests []GoldenScenario `json:"tests"`
}

// GoldenScenario is one headless run with its expected end state.
// Every run uses the default facility unless a field overrides it.
type GoldenScenario struct {
	Name     string  `json:"name"`
	StartDay string  `json:"start_day"`
	Start    string  `json:"start"` // HH:MM
	Speed    float64 `json:"speed"`
	Minutes  float64 `json:"minutes"` // simulated minutes to run
	FrameMs  float64 `json:"frame_ms"`
	Seed     int64   `json:"seed"`

	Expect GoldenMetrics `json:"expect"`
}

// GoldenMetrics is the expected end state of a golden scenario.
type GoldenMetrics struct {
	Clock            string `json:"clock"`
	VehicleSpawns    int    `json:"vehicle_spawns"`
	CouriersSpawned  int    `json:"couriers_spawned"`
	CouriersAdmitted int    `json:"couriers_admitted"`
	TrucksSpawned    int    `json:"trucks_spawned"`
	TrucksDespawned  int    `json:"trucks_despawned"`
	BoxesDelivered   int    `json:"boxes_delivered"`
	Vans             int    `json:"vans"`
	Cars             int    `json:"cars"`
}

// LoadGoldenDataset loads the golden scenarios from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "golden_scenarios.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
