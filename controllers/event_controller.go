// File: /controllers/event_controller.go
package controllers

import (
	"net/http"
	"strings"
	"time"

	"eventhub-api/models"
	"eventhub-api/repositories"
	"eventhub-api/services"
	"eventhub-api/utils"

	"github.com/gin-gonic/gin"
)

type EventController struct {
	events  *services.EventService
	tickets *services.TicketService
}

func NewEventController(events *services.EventService, tickets *services.TicketService) *EventController {
	return &EventController{events: events, tickets: tickets}
}

func (ec *EventController) GetEvents(c *gin.Context) {
	filter := repositories.EventFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Type:     c.Query("type"),
		Location: c.Query("location"),
		HostID:   c.Query("hostId"),
	}

	if s := c.Query("status"); s != "" {
		status := models.EventStatus(strings.ToUpper(s))
		if !status.Valid() {
			utils.SendValidationError(c, "invalid status filter")
			return
		}
		filter.Status = status
	}

	var ok bool
	if filter.MinFee, ok = utils.ParseFee(c.Query("minFee")); !ok {
		utils.SendValidationError(c, "minFee must be a non-negative number")
		return
	}
	if filter.MaxFee, ok = utils.ParseFee(c.Query("maxFee")); !ok {
		utils.SendValidationError(c, "maxFee must be a non-negative number")
		return
	}

	if d := c.Query("date"); d != "" {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			utils.SendValidationError(c, "date must be formatted as YYYY-MM-DD")
			return
		}
		filter.On = &day
	}
	if c.Query("upcoming") == "true" {
		now := time.Now().UTC()
		filter.UpcomingFrom = &now
	}

	events, total, page, err := ec.events.ListEvents(c.Request.Context(), filter, pageFrom(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendPaginated(c, events, page.Page, page.Limit, total)
}

func (ec *EventController) GetEvent(c *gin.Context) {
	event, err := ec.events.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (ec *EventController) CreateEvent(c *gin.Context) {
	var req services.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}
	if req.Currency != "" && !utils.IsValidCurrency(req.Currency) {
		utils.SendValidationError(c, "currency must be a three letter code")
		return
	}

	event, err := ec.events.CreateEvent(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendCreated(c, "Event created successfully", event)
}

func (ec *EventController) UpdateEvent(c *gin.Context) {
	var req services.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	event, err := ec.events.UpdateEvent(c.Request.Context(), callerFrom(c), c.Param("id"), req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Event updated successfully", event)
}

func (ec *EventController) UpdateEventStatus(c *gin.Context) {
	var req services.UpdateEventStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	status := models.EventStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	event, err := ec.events.UpdateEventStatus(c.Request.Context(), callerFrom(c), c.Param("id"), status)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Event status updated successfully", event)
}

func (ec *EventController) DeleteEvent(c *gin.Context) {
	if err := ec.events.DeleteEvent(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Event deleted successfully", nil)
}

// CheckIn validates a scanned ticket at the door.
func (ec *EventController) CheckIn(c *gin.Context) {
	var req services.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	view, err := ec.tickets.CheckIn(c.Request.Context(), callerFrom(c), c.Param("id"), req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Participant checked in", view)
}
