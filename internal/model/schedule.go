package model

// ScheduleStatus is the lifecycle state of a collection visit.
type ScheduleStatus string

const (
	StatusScheduled ScheduleStatus = "scheduled"
	StatusCompleted ScheduleStatus = "completed"
)

// ScheduleEntry is a planned collection visit for one bin.
type ScheduleEntry struct {
	ID     string         `json:"id" gorm:"primaryKey;size:64"`
	BinID  string         `json:"binId" gorm:"index;size:64;not null"`
	Date   string         `json:"date" gorm:"size:10;not null"`
	Window string         `json:"window" gorm:"column:time_window;size:64;not null"`
	Status ScheduleStatus `json:"status" gorm:"size:16;not null"`
	Seq    int            `json:"-" gorm:"not null"`
}

// Completed reports whether the visit reached its terminal state.
func (s ScheduleEntry) Completed() bool {
	return s.Status == StatusCompleted
}
