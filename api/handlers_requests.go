package main

import (
	"eventhub/data/models"
	"eventhub/data/repository"
	"fmt"
	"net/http"
	"strconv"
)

func (app *application) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	eventID, err := strconv.ParseInt(r.URL.Query().Get("eventId"), 10, 64)
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, fmt.Errorf("invalid eventId"))
		return
	}

	req, err := app.Core.CreateRequest(r.Context(), userID, eventID)
	if err != nil {
		app.SendServiceError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, req, "request")
}

func (app *application) ListUserRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	requests, err := app.Core.ListUserRequests(r.Context(), userID)
	if err != nil {
		app.SendServiceError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, requests, "requests")
}

func (app *application) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	requestID, err := int64Param(r, "requestId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	req, err := app.Core.CancelRequest(r.Context(), userID, requestID)
	if err != nil {
		app.SendServiceError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, req, "request")
}

func (app *application) ListEventRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	eventID, err := int64Param(r, "eventId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	requests, err := app.Core.ListEventRequests(r.Context(), userID, eventID)
	if err != nil {
		app.SendServiceError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, requests, "requests")
}

func (app *application) ModerateRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	eventID, err := int64Param(r, "eventId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	var dto moderateRequestsDto
	if err := app.ReadJSON(w, r, &dto, true); err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	result, err := app.Core.ModerateRequests(r.Context(), userID, eventID, dto.RequestIds, models.RequestStatus(dto.Status))
	if err != nil {
		app.SendServiceError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, toModerationResultDto(result))
}

func toModerationResultDto(result repository.ModerationResult) moderationResultDto {
	dto := moderationResultDto{
		ConfirmedRequests: result.Confirmed,
		RejectedRequests:  result.Rejected,
	}
	if dto.ConfirmedRequests == nil {
		dto.ConfirmedRequests = []models.Request{}
	}
	if dto.RejectedRequests == nil {
		dto.RejectedRequests = []models.Request{}
	}
	return dto
}
