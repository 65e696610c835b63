package entities

// QueueStats summarises the appointment set for the doctor dashboard.
type QueueStats struct {
	PendingCount         int                       `json:"pendingCount"`
	HighRiskPendingCount int                       `json:"highRiskPendingCount"`
	ConsultedCount       int                       `json:"consultedCount"`
	AverageWaitMinutes   float64                   `json:"averageWaitMinutes"`
	RiskDistribution     map[RiskCategory]int      `json:"riskDistribution"`
	StatusDistribution   map[AppointmentStatus]int `json:"statusDistribution"`
	TotalAppointments    int                       `json:"totalAppointments"`
}
