package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curie-dashboard/pkg"
)

var testPersona = Persona{
	AssistantName:  "Curie",
	PatientName:    "Abraham",
	TargetWeightKg: 80,
}

func TestNewSessionSeedsGreeting(t *testing.T) {
	snap := pkg.TelemetrySnapshot{Weight: 71.2, BPM: 58}
	sess := NewSession("abraham-001", snap, testPersona)

	transcript := sess.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, pkg.RoleAssistant, transcript[0].Role)
	assert.Contains(t, transcript[0].Content, "71.2")
	assert.Contains(t, transcript[0].Content, "Abraham")
}

func TestAppendPreservesOrder(t *testing.T) {
	sess := NewSession("abraham-001", pkg.TelemetrySnapshot{Weight: 70}, testPersona)
	sess.Append(pkg.RoleUser, "primera")
	sess.Append(pkg.RoleAssistant, "respuesta")
	sess.Append(pkg.RoleUser, "segunda")

	transcript := sess.Transcript()
	require.Len(t, transcript, 4)
	assert.Equal(t, "primera", transcript[1].Content)
	assert.Equal(t, "respuesta", transcript[2].Content)
	assert.Equal(t, "segunda", transcript[3].Content)
}

func TestTranscriptReturnsCopy(t *testing.T) {
	sess := NewSession("abraham-001", pkg.TelemetrySnapshot{Weight: 70}, testPersona)
	sess.Append(pkg.RoleUser, "hola")

	transcript := sess.Transcript()
	transcript[0].Content = "mutated"

	assert.NotEqual(t, "mutated", sess.Transcript()[0].Content)
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(time.Minute)
	sess := NewSession("abraham-001", pkg.TelemetrySnapshot{Weight: 70}, testPersona)

	store.Save(sess)
	got, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, sess.ID, got.ID)

	store.Delete(sess.ID)
	_, ok = store.Get(sess.ID)
	assert.False(t, ok)
}

func TestSessionStoreMissing(t *testing.T) {
	store := NewSessionStore(time.Minute)
	_, ok := store.Get("nope")
	assert.False(t, ok)
}
