package booking

// Service is a bookable offering. Its duration decides the slot length.
type Service struct {
	Type     string
	Duration int
}

const DefaultService = "haircut"

// Services in display order.
var Services = []Service{
	{Type: "haircut", Duration: 30},
	{Type: "hair_beard", Duration: 45},
}

func ServiceByType(serviceType string) (Service, bool) {
	for _, s := range Services {
		if s.Type == serviceType {
			return s, true
		}
	}
	return Service{}, false
}

// TitleKey and DurationKey are the locale keys of the service labels.
func (s Service) TitleKey() string {
	return "booking.services." + s.Type + ".title"
}

func (s Service) DurationKey() string {
	return "booking.services." + s.Type + ".duration"
}
