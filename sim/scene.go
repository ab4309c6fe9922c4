package sim

import "github.com/samber/lo"

// Scene names. Couriers, trucks and the pile live in the sorting area;
// vehicles live in the carpark.
const (
	SceneSortingArea   = "SortingArea"
	SceneCarpark       = "Carpark"
	SceneCityDistrict1 = "CityDistrict1"
	SceneCityDistrict2 = "CityDistrict2"
	SceneCityDistrict3 = "CityDistrict3"
	SceneStatistics    = "Statistics"
)

// SceneNames lists the scenes in display order.
var SceneNames = []string{
	SceneSortingArea, SceneCarpark,
	SceneCityDistrict1, SceneCityDistrict2, SceneCityDistrict3,
	SceneStatistics,
}

// ValidScenes is the set of recognized scene names.
var ValidScenes = lo.SliceToMap(SceneNames, func(name string) (string, bool) { return name, true })

// IsValidScene reports whether name is a recognized scene.
func IsValidScene(name string) bool {
	return ValidScenes[name]
}

// SceneManager tracks which scene a renderer should show. It only records
// intent: every scene keeps simulating regardless of which one is current.
type SceneManager struct {
	current string
}

// NewSceneManager starts at initial, or Carpark when initial is empty.
// Panics on an unknown scene name.
func NewSceneManager(initial string) *SceneManager {
	if initial == "" {
		initial = SceneCarpark
	}
	if !IsValidScene(initial) {
		panic("NewSceneManager: unknown scene " + initial)
	}
	return &SceneManager{current: initial}
}

// Switch changes the current scene. Unknown names are ignored and reported
// as false.
func (m *SceneManager) Switch(name string) bool {
	if !IsValidScene(name) {
		log.Debugf("ignoring switch to unknown scene %q", name)
		return false
	}
	m.current = name
	return true
}

// Current returns the current scene name.
func (m *SceneManager) Current() string { return m.current }
