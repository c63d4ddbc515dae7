package handler

import (
	"net/http"
	"strconv"

	"github.com/KarlovS28/botgotoviy/internal/model"

	"github.com/gin-gonic/gin"
)

type createEquipmentRequest struct {
	InventoryNumber string `json:"inventoryNumber" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Type            string `json:"type"`
	Location        string `json:"location"`
	Status          string `json:"status"`
	AssignedTo      int    `json:"assignedTo"`
}

type patchEquipmentRequest struct {
	InventoryNumber *string `json:"inventoryNumber"`
	Name            *string `json:"name"`
	Type            *string `json:"type"`
	Location        *string `json:"location"`
	Status          *string `json:"status"`
	AssignedTo      *int    `json:"assignedTo"` // 0 означает возврат на склад
}

// ListEquipment обработчик для GET /api/equipment - поиск с фильтрами.
func (h *Handler) ListEquipment(c *gin.Context) {
	assignedTo, _ := strconv.Atoi(c.Query("assignedTo"))
	items, err := h.EquipmentService.Search(c.Query("status"), assignedTo, c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить оборудование"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// CreateEquipment обработчик для POST /api/equipment.
func (h *Handler) CreateEquipment(c *gin.Context) {
	var req createEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Укажите инвентарный номер и название"})
		return
	}
	eq := &model.Equipment{
		InventoryNumber: req.InventoryNumber,
		Name:            req.Name,
		EqType:          req.Type,
		Location:        req.Location,
		Status:          req.Status,
	}
	if req.AssignedTo > 0 {
		assignee := req.AssignedTo
		eq.AssignedTo = &assignee
	}
	id, err := h.EquipmentService.Create(eq, currentUser(c).ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	eq.ID = id
	c.JSON(http.StatusCreated, eq)
}

// PatchEquipment обработчик для PATCH /api/equipment/:id.
// Неуказанные поля остаются прежними.
func (h *Handler) PatchEquipment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	eq, err := h.EquipmentService.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Оборудование не найдено"})
		return
	}
	var req patchEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректное тело запроса"})
		return
	}
	if req.InventoryNumber != nil {
		eq.InventoryNumber = *req.InventoryNumber
	}
	if req.Name != nil {
		eq.Name = *req.Name
	}
	if req.Type != nil {
		eq.EqType = *req.Type
	}
	if req.Location != nil {
		eq.Location = *req.Location
	}
	if req.Status != nil {
		eq.Status = *req.Status
	}
	if req.AssignedTo != nil {
		if *req.AssignedTo > 0 {
			assignee := *req.AssignedTo
			eq.AssignedTo = &assignee
		} else {
			eq.AssignedTo = nil
		}
	}
	if err := h.EquipmentService.Update(eq, currentUser(c).ID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, eq)
}

// EquipmentHistory обработчик для GET /api/equipment/:id/history.
func (h *Handler) EquipmentHistory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	if _, err := h.EquipmentService.GetByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Оборудование не найдено"})
		return
	}
	rows, err := h.EquipmentService.History(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить журнал"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
