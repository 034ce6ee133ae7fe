package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"
)

const (
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Internal server error"

	EventNotFound = "EVENT_NOT_FOUND"
	EventFull     = "EVENT_FULL"
	RsvpNotFound  = "RSVP_NOT_FOUND"
)

const (
	MsgInvalidRsvp       = "Invalid RSVP data. Ensure eventId, userId, and a valid status (Yes, No, Maybe) are provided."
	MsgEventNotFound     = "Event not found"
	MsgEventFull         = "Event is fully booked"
	MsgRsvpNotFound      = "RSVP not found"
	MsgRsvpNotFoundUser  = "RSVP not found for the given user and event"
	MsgEventNameRequired = "Event name is required"
	MsgEventIDRequired   = "Event ID is required"
	MsgRsvpIDRequired    = "RSVP ID is required"
)

type RsvpRequest struct {
	EventID int64  `json:"eventId" validate:"required,gt=0"`
	UserID  int64  `json:"userId" validate:"required,gt=0"`
	Status  string `json:"status" validate:"required,oneof=Yes No Maybe"`
}

type CreateEventRequest struct {
	Name     string `json:"name" validate:"required"`
	Capacity *int64 `json:"capacity" validate:"omitempty,gte=0"`
}

type EventResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Capacity  *int64    `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

type RsvpResponse struct {
	ID      int64  `json:"id"`
	EventID int64  `json:"eventId"`
	UserID  int64  `json:"userId"`
	Status  string `json:"status"`
}

// RsvpActivityMessage is published to the activity exchange on every
// admit, status update and cancellation.
type RsvpActivityMessage struct {
	RsvpID     int64     `json:"rsvp_id"`
	EventID    int64     `json:"event_id"`
	UserID     int64     `json:"user_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Response struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func BadResponseError(c *ginext.Context, code, msg string) {
	c.JSON(400, Response{
		Status:  "error",
		Code:    code,
		Message: msg,
	})
}

func NotFoundResponseError(c *ginext.Context, code, msg string) {
	c.JSON(404, Response{
		Status:  "error",
		Code:    code,
		Message: msg,
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status:  "error",
		Code:    ServiceUnavailable,
		Message: InternalError,
	})
}

func EventNotFoundError(c *ginext.Context) {
	NotFoundResponseError(c, EventNotFound, MsgEventNotFound)
}

func EventFullError(c *ginext.Context) {
	BadResponseError(c, EventFull, MsgEventFull)
}

func SuccessResponse(c *ginext.Context, msg string, data any) {
	c.JSON(200, Response{
		Status:  "ok",
		Message: msg,
		Data:    data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, msg string, data any) {
	c.JSON(201, Response{
		Status:  "ok",
		Message: msg,
		Data:    data,
	})
}
