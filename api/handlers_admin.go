package main

import (
	"errors"
	"eventhub/data/models"
	"eventhub/data/repository"
	"eventhub/service"
	"fmt"
	"net/http"
	"strconv"
)

func (app *application) AdminSearchEvents(w http.ResponseWriter, r *http.Request) {
	events, err := app.Core.SearchEvents(r.Context(), queryParams(r))
	if err != nil {
		app.SendServiceError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, events, "events")
}

func (app *application) UpdateEventByAdmin(w http.ResponseWriter, r *http.Request) {
	eventID, err := int64Param(r, "eventId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	var dto updateEventDto
	if err := app.ReadJSON(w, r, &dto, true); err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	upd, err := dto.toEventUpdate()
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	var action *service.AdminStateAction
	if dto.StateAction != nil {
		a := service.AdminStateAction(*dto.StateAction)
		action = &a
	}

	details, err := app.Core.UpdateEventByAdmin(r.Context(), eventID, upd, action)
	if err != nil {
		app.SendServiceError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, details, "event")
}

func (app *application) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto newUserDto
	if err := app.ReadJSON(w, r, &dto, true); err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	id, err := app.Repo.Create(models.User{Name: dto.Name, Email: dto.Email})
	if err != nil {
		app.SendErrorJSON(w, http.StatusInternalServerError, err)
		return
	}
	user, err := app.Repo.GetUserByID(id)
	if err != nil {
		app.SendErrorJSON(w, http.StatusInternalServerError, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, user, "user")
}

func (app *application) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	user, err := app.Repo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			app.SendErrorJSON(w, http.StatusNotFound, fmt.Errorf("user %d not found", userID))
		} else {
			app.SendErrorJSON(w, http.StatusInternalServerError, err)
		}
		return
	}

	if err := app.Repo.Delete(user); err != nil {
		app.SendErrorJSON(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto newCategoryDto
	if err := app.ReadJSON(w, r, &dto, true); err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	id, err := app.Repo.Create(models.Category{Name: dto.Name})
	if err != nil {
		app.SendErrorJSON(w, http.StatusInternalServerError, err)
		return
	}
	category, err := app.Repo.GetCategoryByID(id)
	if err != nil {
		app.SendErrorJSON(w, http.StatusInternalServerError, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, category, "category")
}

func (app *application) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	catID, err := int64Param(r, "catId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	category, err := app.Repo.GetCategoryByID(catID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			app.SendErrorJSON(w, http.StatusNotFound, fmt.Errorf("category %d not found", catID))
		} else {
			app.SendErrorJSON(w, http.StatusInternalServerError, err)
		}
		return
	}

	// a category still referenced by events cannot go away
	events, err := app.Repo.QueryEvents(map[string]string{"categoryId": strconv.FormatInt(catID, 10)})
	if err != nil {
		app.SendErrorJSON(w, http.StatusInternalServerError, err)
		return
	}
	if len(events) > 0 {
		app.SendErrorJSON(w, http.StatusConflict, fmt.Errorf("category %d is not empty", catID))
		return
	}

	if err := app.Repo.Delete(category); err != nil {
		app.SendErrorJSON(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
