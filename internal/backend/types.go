package backend

type Barber struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Photo       *string `json:"photo"`
	IsActive    bool    `json:"is_active"`
	WorkingDays []int   `json:"working_days"`
}

type AvailabilityDay struct {
	Date  string `json:"date"`
	Free  int    `json:"free"`
	Total int    `json:"total"`
}

type Availability struct {
	Barber          int               `json:"barber"`
	Start           string            `json:"start"`
	End             string            `json:"end"`
	ServiceType     string            `json:"service_type"`
	DurationMinutes int               `json:"duration_minutes"`
	Days            []AvailabilityDay `json:"days"`
}

type Slots struct {
	Date            string   `json:"date"`
	Barber          int      `json:"barber"`
	ServiceType     string   `json:"service_type"`
	DurationMinutes int      `json:"duration_minutes"`
	Slots           []string `json:"slots"`
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type AppointmentRequest struct {
	Barber          int      `json:"barber"`
	StartAt         string   `json:"start_at"`
	ServiceType     string   `json:"service_type"`
	DurationMinutes int      `json:"duration_minutes"`
	Customer        Customer `json:"customer"`
}

type Appointment struct {
	ID              int    `json:"id"`
	Barber          int    `json:"barber"`
	StartAt         string `json:"start_at"`
	EndAt           string `json:"end_at"`
	Status          string `json:"status"`
	ServiceType     string `json:"service_type"`
	DurationMinutes int    `json:"duration_minutes"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type Review struct {
	AuthorName string  `json:"authorName"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
	Time       string  `json:"time"`
	SourceURL  *string `json:"sourceUrl"`
}

type Reviews struct {
	Rating          float64  `json:"rating"`
	UserRatingCount int      `json:"userRatingCount"`
	Reviews         []Review `json:"reviews"`
}

type TimeOff struct {
	ID        int     `json:"id"`
	Barber    int     `json:"barber"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Reason    string  `json:"reason"`
	CreatedBy *string `json:"created_by"`
	CreatedAt string  `json:"created_at"`
}

type TimeOffRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
	Force     bool   `json:"force"`
}

type ConflictCustomer struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type ConflictAppointment struct {
	ID       int              `json:"id"`
	StartAt  string           `json:"start_at"`
	EndAt    string           `json:"end_at"`
	Customer ConflictCustomer `json:"customer"`
	Status   string           `json:"status"`
}

type TimeOffConflicts struct {
	TimeOff      []TimeOff             `json:"time_off"`
	Appointments []ConflictAppointment `json:"appointments"`
}

// Empty reports whether nothing overlaps.
func (c TimeOffConflicts) Empty() bool {
	return len(c.TimeOff) == 0 && len(c.Appointments) == 0
}
