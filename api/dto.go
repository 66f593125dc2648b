package main

import (
	"eventhub/data/models"
	"eventhub/service"
	"fmt"
	"time"
)

// timeLayout is the timestamp format of request and response bodies.
const timeLayout = "2006-01-02 15:04:05"

type locationDto struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type newEventDto struct {
	Title             string       `json:"title" validate:"required,min=3,max=120"`
	Annotation        string       `json:"annotation" validate:"required,min=20,max=2000"`
	Description       string       `json:"description" validate:"required,min=20,max=7000"`
	Category          int64        `json:"category" validate:"required"`
	EventDate         string       `json:"eventDate" validate:"required"`
	Location          *locationDto `json:"location"`
	Paid              bool         `json:"paid"`
	ParticipantLimit  int          `json:"participantLimit" validate:"gte=0"`
	RequestModeration *bool        `json:"requestModeration"`
}

func (dto newEventDto) toEvent() (models.Event, error) {
	eventDate, err := time.Parse(timeLayout, dto.EventDate)
	if err != nil {
		return models.Event{}, fmt.Errorf("eventDate must look like %q: %v", timeLayout, err)
	}

	ev := models.Event{
		Title:             dto.Title,
		Annotation:        dto.Annotation,
		Description:       dto.Description,
		CategoryID:        dto.Category,
		EventDate:         eventDate,
		Paid:              dto.Paid,
		ParticipantLimit:  dto.ParticipantLimit,
		RequestModeration: true,
	}
	if dto.RequestModeration != nil {
		ev.RequestModeration = *dto.RequestModeration
	}
	if dto.Location != nil {
		ev.Lat, ev.Lon = dto.Location.Lat, dto.Location.Lon
	}
	return ev, nil
}

type updateEventDto struct {
	Title             *string      `json:"title" validate:"omitempty,min=3,max=120"`
	Annotation        *string      `json:"annotation" validate:"omitempty,min=20,max=2000"`
	Description       *string      `json:"description" validate:"omitempty,min=20,max=7000"`
	Category          *int64       `json:"category"`
	EventDate         *string      `json:"eventDate"`
	Location          *locationDto `json:"location"`
	Paid              *bool        `json:"paid"`
	ParticipantLimit  *int         `json:"participantLimit" validate:"omitempty,gte=0"`
	RequestModeration *bool        `json:"requestModeration"`
	StateAction       *string      `json:"stateAction"`
}

func (dto updateEventDto) toEventUpdate() (service.EventUpdate, error) {
	upd := service.EventUpdate{
		Title:             dto.Title,
		Annotation:        dto.Annotation,
		CategoryID:        dto.Category,
		Description:       dto.Description,
		Paid:              dto.Paid,
		ParticipantLimit:  dto.ParticipantLimit,
		RequestModeration: dto.RequestModeration,
	}
	if dto.EventDate != nil {
		eventDate, err := time.Parse(timeLayout, *dto.EventDate)
		if err != nil {
			return service.EventUpdate{}, fmt.Errorf("eventDate must look like %q: %v", timeLayout, err)
		}
		upd.EventDate = &eventDate
	}
	if dto.Location != nil {
		upd.Lat, upd.Lon = &dto.Location.Lat, &dto.Location.Lon
	}
	return upd, nil
}

type moderateRequestsDto struct {
	RequestIds []int64 `json:"requestIds" validate:"required,min=1"`
	Status     string  `json:"status" validate:"required,oneof=CONFIRMED REJECTED"`
}

type moderationResultDto struct {
	ConfirmedRequests []models.Request `json:"confirmedRequests"`
	RejectedRequests  []models.Request `json:"rejectedRequests"`
}

type newUserDto struct {
	Name  string `json:"name" validate:"required,min=2,max=250"`
	Email string `json:"email" validate:"required,email"`
}

type newCategoryDto struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}
