package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"giftbot/internal/models"
	"giftbot/internal/services"
)

// GroupHandler - REST API организатора. Каждое действие над группой или
// участником доступно только её организатору и администратору бота.
type GroupHandler struct {
	groups        services.GroupService
	participants  services.ParticipantService
	notifications services.NotificationService
	adminID       int64
}

func NewGroupHandler(
	groups services.GroupService,
	participants services.ParticipantService,
	notifications services.NotificationService,
	adminID int64,
) *GroupHandler {
	return &GroupHandler{groups: groups, participants: participants, notifications: notifications, adminID: adminID}
}

// ownedGroup загружает группу из пути и проверяет права вызывающего
func (h *GroupHandler) ownedGroup(c *gin.Context) (*models.Group, bool) {
	g, err := h.groups.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	if !canManage(g, c.GetInt64("telegram_id"), h.adminID) {
		abortWithError(c, services.ErrForbidden)
		return nil, false
	}
	return g, true
}

// Register подключает маршруты к защищенной группе
func (h *GroupHandler) Register(r gin.IRoutes) {
	r.GET("/groups", h.ListGroups)
	r.GET("/groups/:id", h.GetGroup)
	r.DELETE("/groups/:id", h.DeleteGroup)
	r.POST("/groups/:id/draw", h.Draw)
	r.GET("/groups/:id/pairs", h.Pairs)
	r.GET("/groups/:id/report", h.Report)
	r.GET("/groups/:id/shipments", h.Shipments)
	r.GET("/groups/:id/failures", h.Failures)
	r.GET("/stats", h.Stats)
	r.POST("/participants/:id/confirm", h.Confirm)
	r.POST("/participants/:id/reject", h.Reject)
}

func (h *GroupHandler) ListGroups(c *gin.Context) {
	adminID := c.GetInt64("telegram_id")
	gs, err := h.groups.ListGroups(c.Request.Context(), adminID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": gs})
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	g, ok := h.ownedGroup(c)
	if !ok {
		return
	}
	d, err := h.groups.GroupDetail(c.Request.Context(), g.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	ps, err := h.participants.ListParticipants(c.Request.Context(), d.Group.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": d, "participants": ps})
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	g, ok := h.ownedGroup(c)
	if !ok {
		return
	}
	if err := h.groups.DeleteGroup(c.Request.Context(), g.ID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type pairView struct {
	Giver        string `json:"giver"`
	Receiver     string `json:"receiver"`
	GiftSent     bool   `json:"gift_sent"`
	GiftReceived bool   `json:"gift_received"`
	TrackNumber  string `json:"track_number,omitempty"`
}

func pairViews(as []*models.Assignment) []pairView {
	out := make([]pairView, 0, len(as))
	for _, a := range as {
		out = append(out, pairView{
			Giver:        a.Giver.DisplayHandle(),
			Receiver:     a.Receiver.DisplayHandle(),
			GiftSent:     a.GiftSent,
			GiftReceived: a.GiftReceived,
			TrackNumber:  a.TrackNumber,
		})
	}
	return out
}

func (h *GroupHandler) Draw(c *gin.Context) {
	g, ok := h.ownedGroup(c)
	if !ok {
		return
	}
	out, err := h.groups.CompleteDraw(c.Request.Context(), g.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	views := make([]pairView, 0, len(out.Pairs))
	for _, p := range out.Pairs {
		views = append(views, pairView{Giver: p.Giver.DisplayHandle(), Receiver: p.Receiver.DisplayHandle()})
	}
	c.JSON(http.StatusOK, gin.H{"draw": out, "pairs": views})
}

func (h *GroupHandler) Pairs(c *gin.Context) {
	g, ok := h.ownedGroup(c)
	if !ok {
		return
	}
	as, err := h.groups.Pairs(c.Request.Context(), g.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pairs": pairViews(as)})
}

func (h *GroupHandler) Report(c *gin.Context) {
	g, ok := h.ownedGroup(c)
	if !ok {
		return
	}
	r, err := h.groups.FullReport(c.Request.Context(), g.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.String(http.StatusOK, r.String())
}

func (h *GroupHandler) Shipments(c *gin.Context) {
	g, ok := h.ownedGroup(c)
	if !ok {
		return
	}
	r, err := h.groups.ShipmentStatus(c.Request.Context(), g.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.String(http.StatusOK, r.String())
}

func (h *GroupHandler) Failures(c *gin.Context) {
	g, ok := h.ownedGroup(c)
	if !ok {
		return
	}
	ns, err := h.notifications.Failures(c.Request.Context(), g.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"failures": ns})
}

func (h *GroupHandler) Stats(c *gin.Context) {
	st, err := h.groups.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *GroupHandler) Confirm(c *gin.Context) {
	h.decide(c, true)
}

func (h *GroupHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *GroupHandler) decide(c *gin.Context, approve bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	target, err := h.participants.GetParticipant(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	g, err := h.groups.GetGroup(c.Request.Context(), target.GroupID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !canManage(g, c.GetInt64("telegram_id"), h.adminID) {
		abortWithError(c, services.ErrForbidden)
		return
	}

	var (
		p       *models.Participant
		changed bool
	)
	if approve {
		p, changed, err = h.participants.Confirm(c.Request.Context(), id)
	} else {
		p, changed, err = h.participants.Reject(c.Request.Context(), id)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "participant not found", "changed": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant": p, "changed": changed})
}
