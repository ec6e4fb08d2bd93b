package models

// Weekday names used by class schedules.
type Weekday string

const (
	Monday    Weekday = "Segunda"
	Tuesday   Weekday = "Terça"
	Wednesday Weekday = "Quarta"
	Thursday  Weekday = "Quinta"
	Friday    Weekday = "Sexta"
	Saturday  Weekday = "Sábado"
	Sunday    Weekday = "Domingo"
)

// ScheduleSlot is one weekly meeting of a class.
type ScheduleSlot struct {
	Day   Weekday `json:"dia" binding:"required,oneof=Segunda Terça Quarta Quinta Sexta Sábado Domingo"`
	Start string  `json:"inicio" binding:"required"`
	End   string  `json:"fim" binding:"required"`
}

// Class is a training group held at a unit.
type Class struct {
	ID         string         `json:"id"`
	UnitID     string         `json:"unit_id" binding:"required"`
	Name       string         `json:"name" binding:"required"`
	Category   string         `json:"category,omitempty"`
	Capacity   *int           `json:"vacancies,omitempty" binding:"omitempty,gte=0"`
	Schedule   []ScheduleSlot `json:"schedule" binding:"dive"`
	TeacherIDs []string       `json:"teacher_ids"`
	Status     string         `json:"status"`
}
