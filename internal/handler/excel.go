package handler

import (
	"net/http"

	"github.com/KarlovS28/botgotoviy/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// equipmentColumns - заголовки таблицы импорта оборудования.
var equipmentColumns = []string{"Инвентарный номер", "Название", "Тип", "Расположение", "Статус"}

// EquipmentTemplate обработчик для GET /api/equipment/template -
// отдает пустой xlsx-шаблон для импорта оборудования.
func (h *Handler) EquipmentTemplate(c *gin.Context) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, col := range equipmentColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
	}
	c.Header("Content-Disposition", `attachment; filename="equipment_template.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.Log.Warn("не удалось отдать шаблон импорта", "error", err)
	}
}

// ImportEquipment обработчик для POST /api/equipment/import -
// принимает заполненный xlsx и ставит оборудование на учет.
// Строки с занятым инвентарным номером пропускаются.
func (h *Handler) ImportEquipment(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Прикрепите файл xlsx в поле file"})
		return
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Не удалось прочитать файл xlsx"})
		return
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil || len(rows) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Файл не содержит строк с оборудованием"})
		return
	}

	items := []model.Equipment{}
	for _, row := range rows[1:] {
		if len(row) < 2 || row[0] == "" {
			continue
		}
		eq := model.Equipment{
			InventoryNumber: row[0],
			Name:            row[1],
			Status:          model.EquipmentStorage,
		}
		if len(row) > 2 {
			eq.EqType = row[2]
		}
		if len(row) > 3 {
			eq.Location = row[3]
		}
		if len(row) > 4 && row[4] != "" {
			if !model.ValidEquipmentStatus(row[4]) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус: " + row[4]})
				return
			}
			eq.Status = row[4]
		}
		items = append(items, eq)
	}

	created, skipped, err := h.EquipmentService.Import(items, currentUser(c).ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Импорт прерван: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created, "skipped": skipped})
}
