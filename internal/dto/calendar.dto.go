package dto

import "github.com/BruksfildServices01/meister-web/internal/domain/calendar"

type CalendarCellDTO struct {
	Date     string `json:"date"`
	Day      int    `json:"day"`
	Outside  bool   `json:"outside"`
	Disabled bool   `json:"disabled"`
	Selected bool   `json:"selected"`
	TabStop  bool   `json:"tab_stop"`
	Code     string `json:"code"`
	Note     string `json:"note,omitempty"`
	Label    string `json:"label"`
}

type CalendarDTO struct {
	Month        string              `json:"month"`
	Title        string              `json:"title"`
	Status       string              `json:"status"`
	Pending      bool                `json:"pending"`
	PrevMonth    string              `json:"prev_month"`
	NextMonth    string              `json:"next_month"`
	PrevDisabled bool                `json:"prev_disabled"`
	Focus        string              `json:"focus,omitempty"`
	Selected     string              `json:"selected,omitempty"`
	Weekdays     []string            `json:"weekdays"`
	Weeks        [][]CalendarCellDTO `json:"weeks"`
}

type CalendarKeyRequest struct {
	From string `json:"from" binding:"required"`
	Key  string `json:"key" binding:"required"`
}

type CalendarKeyResponse struct {
	Action   calendar.Action `json:"action"`
	Reload   bool            `json:"reload"`
	Calendar CalendarDTO     `json:"calendar"`
}
