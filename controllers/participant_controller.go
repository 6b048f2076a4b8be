// File: /controllers/participant_controller.go
package controllers

import (
	"net/http"

	"eventhub-api/services"
	"eventhub-api/utils"

	"github.com/gin-gonic/gin"
)

type ParticipantController struct {
	enrollment *services.EnrollmentService
	payments   *services.PaymentService
	tickets    *services.TicketService
}

func NewParticipantController(enrollment *services.EnrollmentService, payments *services.PaymentService, tickets *services.TicketService) *ParticipantController {
	return &ParticipantController{enrollment: enrollment, payments: payments, tickets: tickets}
}

func (pc *ParticipantController) JoinEvent(c *gin.Context) {
	var req services.JoinEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	result, err := pc.enrollment.JoinEvent(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	message := "Successfully joined event"
	if result.RequiresPayment {
		message = "Seat reserved, complete the payment to confirm"
	}
	utils.SendCreated(c, message, result)
}

func (pc *ParticipantController) ConfirmPayment(c *gin.Context) {
	var req services.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	result, err := pc.payments.ConfirmPayment(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Payment confirmed", result)
}

func (pc *ParticipantController) LeaveEvent(c *gin.Context) {
	result, err := pc.enrollment.LeaveEvent(c.Request.Context(), callerFrom(c), c.Param("eventId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Successfully left event", result)
}

func (pc *ParticipantController) MyEvents(c *gin.Context) {
	joined, err := pc.enrollment.MyJoinedEvents(c.Request.Context(), callerFrom(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participations": joined})
}

func (pc *ParticipantController) EventParticipants(c *gin.Context) {
	list, err := pc.enrollment.EventParticipants(c.Request.Context(), callerFrom(c), c.Param("eventId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": list, "count": len(list)})
}

// Ticket returns the caller's check-in QR code as a PNG image.
func (pc *ParticipantController) Ticket(c *gin.Context) {
	png, err := pc.tickets.IssueTicket(c.Request.Context(), callerFrom(c), c.Param("eventId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
