package availability

import (
	"fmt"

	"github.com/BruksfildServices01/meister-web/internal/domain/calendar"
)

// CustomService stands in for an empty service type in cache keys.
const CustomService = "custom"

// Key identifies one month fetch. It captures every input that changes the
// free counts, so results for different selections never share a bucket.
type Key struct {
	Month       calendar.Date
	ServiceType string
	Duration    int
}

func KeyFor(month calendar.Date, serviceType string, duration int) Key {
	if serviceType == "" {
		serviceType = CustomService
	}
	return Key{
		Month:       month.StartOfMonth(),
		ServiceType: serviceType,
		Duration:    duration,
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%d", k.Month, k.ServiceType, k.Duration)
}
