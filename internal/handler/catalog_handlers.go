package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storybook-server/internal/models"
)

// @Summary Персонажи каталога
// @Tags catalog
// @Produce json
// @Param ageGroup query string false "Возрастная группа" Enums(3-5, 6-8, 9-12)
// @Success 200 {object} map[string][]models.Character
// @Failure 400 {object} validationErrorResponse
// @Security BearerAuth
// @Router /catalog/characters [get]
func (h *StoryHandler) listCharacters(c *gin.Context) {
	var q catalogQuery
	if !bindQuery(c, &q) {
		return
	}
	characters, err := h.deps.Catalog.ListCharacters(c.Request.Context(), models.AgeGroup(q.AgeGroup))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": characters})
}

// @Summary Темы каталога
// @Tags catalog
// @Produce json
// @Param ageGroup query string false "Возрастная группа" Enums(3-5, 6-8, 9-12)
// @Success 200 {object} map[string][]models.Theme
// @Failure 400 {object} validationErrorResponse
// @Security BearerAuth
// @Router /catalog/themes [get]
func (h *StoryHandler) listThemes(c *gin.Context) {
	var q catalogQuery
	if !bindQuery(c, &q) {
		return
	}
	themes, err := h.deps.Catalog.ListThemes(c.Request.Context(), models.AgeGroup(q.AgeGroup))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": themes})
}
