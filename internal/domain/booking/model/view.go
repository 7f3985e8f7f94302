package model

import "time"

// BookingView 预订列表读模型，附带活动与支付摘要
type BookingView struct {
	Booking
	EventName     string    `json:"eventName"`
	EventDate     time.Time `json:"eventDate"`
	EventStatus   string    `json:"eventStatus"`
	HostID        string    `json:"hostId"`
	PaymentStatus *string   `json:"paymentStatus"`
}
