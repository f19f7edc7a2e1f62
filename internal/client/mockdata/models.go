package mockdata

import "time"

// Laboratory is a partner laboratory.
type Laboratory struct {
	ID        int64      `json:"idLaboratorio" yaml:"id"`
	Name      string     `json:"nombre" yaml:"name"`
	Address   string     `json:"direccion" yaml:"address"`
	Phone     string     `json:"telefono" yaml:"phone"`
	Email     string     `json:"email" yaml:"email"`
	Specialty string     `json:"especialidad" yaml:"specialty"`
	Active    bool       `json:"activo" yaml:"-"`
	CreatedAt *time.Time `json:"fechaCreacion,omitempty" yaml:"-"`
}

// AnalysisType is an orderable lab analysis. Price is in CLP.
type AnalysisType struct {
	ID           int64  `json:"idTipoAnalisis" yaml:"id"`
	Name         string `json:"nombre" yaml:"name"`
	Description  string `json:"descripcion" yaml:"description"`
	Price        int64  `json:"precio" yaml:"price"`
	DeliveryDays int    `json:"tiempoEntregaDias" yaml:"delivery_days"`
	Active       bool   `json:"activo" yaml:"-"`
}

// AppointmentStatus values.
const (
	AppointmentScheduled = "PROGRAMADA"
	AppointmentConfirmed = "CONFIRMADA"
	AppointmentCompleted = "COMPLETADA"
	AppointmentCanceled  = "CANCELADA"
)

// Appointment is a patient's booking at a laboratory.
type Appointment struct {
	ID             int64      `json:"idCita" yaml:"id"`
	PatientID      int64      `json:"idPaciente" yaml:"patient_id"`
	PatientName    string     `json:"nombrePaciente,omitempty" yaml:"patient_name"`
	LaboratoryID   int64      `json:"idLaboratorio" yaml:"laboratory_id"`
	LaboratoryName string     `json:"nombreLaboratorio,omitempty" yaml:"laboratory_name"`
	AnalysisTypeID int64      `json:"idTipoAnalisis" yaml:"analysis_type_id"`
	AnalysisName   string     `json:"nombreAnalisis,omitempty" yaml:"analysis_name"`
	ScheduledAt    time.Time  `json:"fechaCita" yaml:"scheduled_at"`
	Status         string     `json:"estado" yaml:"status"`
	Notes          string     `json:"observaciones,omitempty" yaml:"notes"`
	CreatedAt      *time.Time `json:"fechaCreacion,omitempty" yaml:"-"`
}

// Result status values.
const (
	ResultPending    = "PENDIENTE"
	ResultInProgress = "EN_PROCESO"
	ResultCompleted  = "COMPLETADO"
	ResultReviewed   = "REVISADO"
)

// Result is a lab result for one appointment.
type Result struct {
	ID             int64      `json:"idResultado" yaml:"id"`
	AppointmentID  int64      `json:"idCita" yaml:"appointment_id"`
	PatientID      int64      `json:"idPaciente,omitempty" yaml:"-"`
	TechnicianID   int64      `json:"idLaboratorista" yaml:"technician_id"`
	TechnicianName string     `json:"nombreLaboratorista,omitempty" yaml:"technician_name"`
	PatientName    string     `json:"nombrePaciente,omitempty" yaml:"patient_name"`
	AnalysisName   string     `json:"nombreAnalisis,omitempty" yaml:"analysis_name"`
	Document       string     `json:"archivoPdf,omitempty" yaml:"document"`
	Notes          string     `json:"observaciones,omitempty" yaml:"notes"`
	ReportedAt     time.Time  `json:"fechaResultado" yaml:"reported_at"`
	Status         string     `json:"estado" yaml:"status"`
	Measurements   string     `json:"valoresMedidos,omitempty" yaml:"measurements"`
	CreatedAt      *time.Time `json:"fechaCreacion,omitempty" yaml:"-"`
}
