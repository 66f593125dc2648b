package main

import (
	"eventhub/service"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func int64Param(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// queryParams flattens the request's query string into the single-valued map
// the repository's query builder expects.
func queryParams(r *http.Request) map[string]string {
	params := make(map[string]string)
	for k, vals := range r.URL.Query() {
		if len(vals) > 0 {
			params[k] = vals[0]
		}
	}
	return params
}

func (app *application) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	var dto newEventDto
	if err := app.ReadJSON(w, r, &dto, true); err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	ev, err := dto.toEvent()
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	details, err := app.Core.CreateEvent(r.Context(), userID, ev)
	if err != nil {
		app.SendServiceError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, details, "event")
}

func (app *application) ListUserEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	from, err := queryInt(r, "from", 0)
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	size, err := queryInt(r, "size", 10)
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	events, err := app.Core.ListUserEvents(r.Context(), userID, size, from)
	if err != nil {
		app.SendServiceError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, events, "events")
}

func (app *application) GetUserEvent(w http.ResponseWriter, r *http.Request) {
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

	details, err := app.Core.GetUserEvent(r.Context(), userID, eventID)
	if err != nil {
		app.SendServiceError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, details, "event")
}

func (app *application) UpdateEventByUser(w http.ResponseWriter, r *http.Request) {
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

	var action *service.UserStateAction
	if dto.StateAction != nil {
		a := service.UserStateAction(*dto.StateAction)
		action = &a
	}

	details, err := app.Core.UpdateEventByUser(r.Context(), userID, eventID, upd, action)
	if err != nil {
		app.SendServiceError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, details, "event")
}

func (app *application) GetPublicEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := int64Param(r, "eventId")
	if err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	details, err := app.Core.GetPublicEvent(r.Context(), eventID, r.URL.Path, clientIP(r))
	if err != nil {
		app.SendServiceError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, details, "event")
}

func (app *application) SearchPublicEvents(w http.ResponseWriter, r *http.Request) {
	events, err := app.Core.SearchPublicEvents(r.Context(), queryParams(r), r.URL.Path, clientIP(r))
	if err != nil {
		app.SendServiceError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, events, "events")
}
