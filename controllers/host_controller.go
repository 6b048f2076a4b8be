// File: /controllers/host_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"eventhub-api/services"
	"eventhub-api/utils"

	"github.com/gin-gonic/gin"
)

type HostController struct {
	hosts *services.HostService
}

func NewHostController(hosts *services.HostService) *HostController {
	return &HostController{hosts: hosts}
}

func (hc *HostController) GetHost(c *gin.Context) {
	profile, err := hc.hosts.GetHost(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (hc *HostController) MyProfile(c *gin.Context) {
	profile, err := hc.hosts.MyHostProfile(c.Request.Context(), callerFrom(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (hc *HostController) TopRated(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	hosts, err := hc.hosts.TopRatedHosts(c.Request.Context(), limit)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hosts": hosts})
}

func (hc *HostController) HostEvents(c *gin.Context) {
	events, total, page, err := hc.hosts.HostEvents(c.Request.Context(), c.Param("id"), pageFrom(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendPaginated(c, events, page.Page, page.Limit, total)
}
