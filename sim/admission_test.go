package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlwaysAdmit(t *testing.T) {
	a := &AlwaysAdmit{}

	ok, _ := a.Admit(3, 0)
	assert.True(t, ok)

	ok, reason := a.Admit(0, 1000)
	assert.False(t, ok)
	assert.Equal(t, "no pending couriers", reason)
}

func TestIntervalAdmission(t *testing.T) {
	tests := []struct {
		name       string
		pending    int
		sinceLast  float64
		wantAdmit  bool
		wantReason string
	}{
		{"nobody waiting", 0, 1000, false, "no pending couriers"},
		{"too soon", 2, 299, false, "interval not elapsed"},
		{"exactly on interval", 2, 300, true, ""},
		{"long after", 1, 5000, true, ""},
	}
	a := NewIntervalAdmission(300)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := a.Admit(tt.pending, tt.sinceLast)
			assert.Equal(t, tt.wantAdmit, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestNewAdmissionPolicy(t *testing.T) {
	assert.IsType(t, &IntervalAdmission{}, NewAdmissionPolicy("", 300))
	assert.IsType(t, &IntervalAdmission{}, NewAdmissionPolicy("interval", 300))
	assert.IsType(t, &AlwaysAdmit{}, NewAdmissionPolicy("always-admit", 0))
	assert.Panics(t, func() { NewAdmissionPolicy("lottery", 0) })
}

func TestIsValidAdmissionPolicy(t *testing.T) {
	for name := range ValidAdmissionPolicies {
		assert.True(t, IsValidAdmissionPolicy(name), name)
	}
	assert.False(t, IsValidAdmissionPolicy("token-bucket"))
}
