package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario_EmptyReturnsDefaults(t *testing.T) {
	cfg, err := ParseScenario([]byte("  \n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseScenario_OverlaysDefaults(t *testing.T) {
	// GIVEN a scenario that overrides a few keys
	data := []byte(`
clock:
  start_day: wednesday
  start: "07:30"
  speed: 10
roster:
  staff: 2
schedule:
  cycles:
    - name: Express
      at: "09:15"
      payload: 12
queue:
  rows:
    - direction: {x: 1, y: 0}
      role: staff
    - direction: {x: 0, y: 1}
      role: subcon
`)

	// WHEN it is parsed
	cfg, err := ParseScenario(data)

	// THEN the named keys change and everything else keeps its default
	require.NoError(t, err)
	assert.Equal(t, Wednesday, cfg.Clock.StartDay)
	assert.Equal(t, At(7, 30), cfg.Clock.Start)
	assert.Equal(t, 10.0, cfg.Clock.Speed)
	assert.Equal(t, 2, cfg.Roster.Staff)
	assert.Equal(t, 3, cfg.Roster.Subcon, "untouched default")
	assert.Equal(t, []CycleConfig{{Name: "Express", At: At(9, 15), Payload: 12}}, cfg.Schedule.Cycles, "lists replace")
	require.Len(t, cfg.Queue.Rows, 2)
	assert.Equal(t, RoleSubcon, cfg.Queue.Rows[1].Role)
	assert.Equal(t, 6, cfg.Queue.Slots)
	assert.NoError(t, cfg.Validate())
}

func TestParseScenario_RejectsUnknownKeys(t *testing.T) {
	_, err := ParseScenario([]byte("clock:\n  sped: 2\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing scenario")
	assert.Contains(t, err.Error(), "sped")
}

func TestParseScenario_RejectsBadTimeAndDay(t *testing.T) {
	_, err := ParseScenario([]byte("clock:\n  start: noon\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want HH:MM")

	_, err = ParseScenario([]byte("clock:\n  start_day: saturday\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown weekday")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading scenario")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshalScenario_LoadsBackUnchanged(t *testing.T) {
	// GIVEN the default config written to a scenario file
	data, err := MarshalScenario(DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, string(data), "start_day: Monday")
	assert.Contains(t, string(data), "courier_spawn: \"07:00\"")

	path := filepath.Join(t.TempDir(), "default.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	// WHEN it is loaded back
	cfg, err := LoadScenario(path)

	// THEN nothing changed
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
