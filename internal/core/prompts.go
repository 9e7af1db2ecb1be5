package core

// prompts.go defines the Spanish prompt literals used by the chat
// pipeline. Keeping them in one file makes them easy to tweak without
// touching the rest of the code. The persona constraints are a contract
// with the remote model, not something enforced programmatically.

import (
	"fmt"

	"curie-dashboard/pkg"
)

const (
	// systemPromptTemplate is populated with: assistant name, patient
	// name, current weight, target weight and heart-rate status. It sets
	// a clinical, motivating, concise tone and must never instruct the
	// model to withhold safety warnings; the decompression alert is
	// driven by the telemetry snapshot, outside this pipeline.
	systemPromptTemplate = "Eres %s, el asistente clínico personal de %s. " +
		"Datos biométricos actuales: peso %.1f kg, peso objetivo %.0f kg, frecuencia cardíaca %s. " +
		"Responde siempre en español, con tono clínico, motivador y conciso. " +
		"Basa cada respuesta exclusivamente en la telemetría proporcionada; no inventes mediciones. " +
		"No des diagnósticos definitivos y recomienda consultar a un médico ante cualquier síntoma preocupante."

	// seedMessageTemplate is the assistant greeting appended when a
	// session starts, populated with the patient name and weight.
	seedMessageTemplate = "Hola %s, veo que pesas %.1fkg. ¿En qué puedo ayudarte hoy?"

	// FallbackMessage is returned in place of the model reply whenever
	// the completion call fails. It is the only failure text the
	// interactive layer ever sees.
	FallbackMessage = "Error de conexión. Intenta de nuevo."

	// tachycardiaThreshold is the bpm above which the prompt labels the
	// heart rate as mild tachycardia.
	tachycardiaThreshold = 100
)

// HeartRateStatus maps a bpm reading to the categorical label embedded
// in the system prompt.
func HeartRateStatus(bpm int) string {
	if bpm > tachycardiaThreshold {
		return fmt.Sprintf("%d bpm (taquicardia leve)", bpm)
	}
	return fmt.Sprintf("%d bpm (normal)", bpm)
}

// systemPrompt renders the persona/constraint instruction for the
// current snapshot.
func systemPrompt(persona Persona, snap pkg.TelemetrySnapshot) string {
	return fmt.Sprintf(systemPromptTemplate,
		persona.AssistantName,
		persona.PatientName,
		snap.Weight,
		persona.TargetWeightKg,
		HeartRateStatus(snap.BPM),
	)
}

func seedMessage(patientName string, weight float64) string {
	return fmt.Sprintf(seedMessageTemplate, patientName, weight)
}
