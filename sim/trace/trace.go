package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures slot claims, pickups, admissions and calendar events.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision records during a simulation run.
type SimulationTrace struct {
	Config     TraceConfig
	Claims     []ClaimRecord
	Pickups    []PickupRecord
	Admissions []AdmissionRecord
	Events     []EventRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:     config,
		Claims:     make([]ClaimRecord, 0),
		Pickups:    make([]PickupRecord, 0),
		Admissions: make([]AdmissionRecord, 0),
		Events:     make([]EventRecord, 0),
	}
}

// Enabled reports whether records should be collected at all.
// Safe on a nil trace.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelDecisions
}

// RecordClaim appends a slot claim decision record.
func (st *SimulationTrace) RecordClaim(record ClaimRecord) {
	st.Claims = append(st.Claims, record)
}

// RecordPickup appends a pickup record.
func (st *SimulationTrace) RecordPickup(record PickupRecord) {
	st.Pickups = append(st.Pickups, record)
}

// RecordAdmission appends a streaming admission record.
func (st *SimulationTrace) RecordAdmission(record AdmissionRecord) {
	st.Admissions = append(st.Admissions, record)
}

// RecordEvent appends a calendar event record.
func (st *SimulationTrace) RecordEvent(record EventRecord) {
	st.Events = append(st.Events, record)
}
