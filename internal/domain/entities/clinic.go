package entities

import "time"

// ClinicConfig is clinic metadata shown to patients and doctors.
// Scheduling and wait estimates do not read it.
type ClinicConfig struct {
	Location                    string    `json:"location" validate:"required,max=200"`
	Specialization              string    `json:"specialization" validate:"required,max=120"`
	OpeningTime                 string    `json:"openingTime" validate:"required,datetime=15:04"`
	ClosingTime                 string    `json:"closingTime" validate:"required,datetime=15:04"`
	MaxPatientsPerDay           int       `json:"maxPatientsPerDay" validate:"gt=0"`
	ConsultationDurationMinutes int       `json:"consultationDuration" validate:"gt=0"`
	UpdatedAt                   time.Time `json:"updatedAt"`
}

// DefaultClinicConfig is used until a doctor saves their own settings.
func DefaultClinicConfig() ClinicConfig {
	return ClinicConfig{
		Location:                    "Main Street Medical Center",
		Specialization:              "General Medicine & Cardiology",
		OpeningTime:                 "08:00",
		ClosingTime:                 "18:00",
		MaxPatientsPerDay:           40,
		ConsultationDurationMinutes: 15,
	}
}
