package openai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/zatekoja/priorcare/internal/domain/entities"
)

const triageSystemPrompt = `You are a clinical triage assistant for a walk-in clinic. Analyze the patient data for medical triage.
Return ONLY valid JSON with this schema:
{
  "severityScore": number (1-10, where 10 is critical),
  "riskCategory": string (one of: HIGH, MEDIUM, LOW),
  "reasoning": string (1-2 short sentences explaining the risk assessment)
}
Do not include a diagnosis or treatment advice.`

// triageResponseSchema constrains the structured output to the payload above.
var triageResponseSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"severityScore": map[string]interface{}{
			"type":        "number",
			"description": "A score from 1 to 10.",
		},
		"riskCategory": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"HIGH", "MEDIUM", "LOW"},
			"description": "Triage category.",
		},
		"reasoning": map[string]interface{}{
			"type":        "string",
			"description": "Brief explanation of the risk assessment.",
		},
	},
	"required":             []string{"severityScore", "riskCategory", "reasoning"},
	"additionalProperties": false,
}

type triagePayload struct {
	SeverityScore float64 `json:"severityScore"`
	RiskCategory  string  `json:"riskCategory"`
	Reasoning     string  `json:"reasoning"`
}

func buildTriageUserPrompt(request *entities.TriageRequest) string {
	conditions := strings.Join(request.ChronicConditions, ", ")
	if conditions == "" {
		conditions = "None reported"
	}
	return fmt.Sprintf(
		"Patient Age: %d\nChronic Conditions: %s\nReported Symptoms: %s\n",
		request.Age, conditions, request.Symptoms,
	)
}

// stripCodeFence removes a Markdown code block wrapped around the JSON.
func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

// parseTriagePayload decodes the model output. Missing fields stay zero;
// out-of-range values are left for the classifier to bound.
func parseTriagePayload(data []byte) (*entities.ClassificationResult, error) {
	var payload triagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse triage payload: %w", err)
	}
	if math.IsNaN(payload.SeverityScore) || math.IsInf(payload.SeverityScore, 0) {
		payload.SeverityScore = 0
	}
	return &entities.ClassificationResult{
		SeverityScore: int(math.Round(payload.SeverityScore)),
		RiskCategory:  entities.RiskCategory(strings.ToUpper(strings.TrimSpace(payload.RiskCategory))),
		Rationale:     strings.TrimSpace(payload.Reasoning),
		Source:        entities.ClassificationSourceAI,
	}, nil
}
