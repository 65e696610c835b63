package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/zatekoja/priorcare/internal/adapters/database"
	"github.com/zatekoja/priorcare/internal/application/services"
	"github.com/zatekoja/priorcare/internal/domain/providers"
	"github.com/zatekoja/priorcare/internal/infrastructure/clients/openai"
	"github.com/zatekoja/priorcare/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/priorcare/internal/infrastructure/observability"
	"github.com/zatekoja/priorcare/pkg/config"
)

// demoRequests cover each risk bucket and the form's optional fields.
var demoRequests = []services.SubmissionInput{
	{PatientID: "demo-001", PatientName: "Adaeze Okafor", PatientAge: 67, SelectedSymptoms: []string{"Chest Pain", "Shortness of Breath"}, Symptoms: "Tightness radiating to the left arm since this morning", ChronicConditions: []string{"Hypertension", "Heart Disease"}, PreferredWindow: "MORNING"},
	{PatientID: "demo-002", PatientName: "Tunde Bakare", PatientAge: 34, SelectedSymptoms: []string{"Fever", "Cough"}, Symptoms: "Three days of fever, worse at night", ChronicConditions: []string{"Asthma"}, PreferredWindow: "EVENING"},
	{PatientID: "demo-003", PatientName: "Maria Lopez", PatientAge: 22, SelectedSymptoms: []string{"Sore Throat"}, ChronicConditions: []string{"None"}, PreferredWindow: "EVENING"},
	{PatientID: "demo-004", PatientName: "Kwame Mensah", PatientAge: 58, SelectedSymptoms: []string{"Dizziness", "Fatigue"}, Symptoms: "Light-headed after standing, missed insulin yesterday", ChronicConditions: []string{"Diabetes"}, PreferredWindow: "MORNING"},
	{PatientID: "demo-005", PatientName: "Grace Chen", PatientAge: 45, SelectedSymptoms: []string{"Headache", "Nausea"}, PreferredWindow: "EVENING"},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger("priorcare-seed", cfg.App.Env, cfg.App.LogLevel)
	logger := observability.GetLogger()
	ctx := context.Background()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer pgClient.Close()

	if err := database.EnsureSchema(ctx, pgClient); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		logger.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE appointments, clinic_settings RESTART IDENTITY`); err != nil {
			logger.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	var assessmentProvider providers.TriageAssessmentProvider
	if cfg.OpenAI.APIKey != "" {
		if client, err := openai.NewClient(&cfg.OpenAI); err == nil {
			assessmentProvider = client
		}
	}

	appointmentService := services.NewAppointmentService(
		database.NewAppointmentAdapter(pgClient, nil),
		services.NewTriageClassifier(assessmentProvider, cfg.Triage.ClassifyTimeout),
	)

	seeded := 0
	for _, request := range demoRequests {
		appointment, err := appointmentService.Submit(ctx, request)
		if err != nil {
			logger.Error().Err(err).Str("patient_id", request.PatientID).Msg("failed to seed appointment")
			continue
		}
		seeded++
		logger.Info().
			Str("appointment_id", appointment.ID).
			Str("patient", appointment.PatientName).
			Str("risk_category", string(appointment.RiskCategory)).
			Int("estimated_wait_minutes", appointment.EstimatedWaitMinutes).
			Msg("seeded appointment")
	}

	logger.Info().Int("appointments", seeded).Msg("seeding completed")
}
