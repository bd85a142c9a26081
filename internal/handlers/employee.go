// internal/handlers/employee.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/utils"
)

type EmployeeHandler struct {
	employeeService *services.EmployeeService
}

func NewEmployeeHandler(employeeService *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// GET /cabinet/employees
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	employees, err := h.employeeService.List(user)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, employees)
}

// POST /cabinet/employees
func (h *EmployeeHandler) AddEmployee(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.AddEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	employee, err := h.employeeService.Add(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyEmployeeAdded),
		"employee": employee,
	})
}

// DELETE /cabinet/employees/:id
func (h *EmployeeHandler) RemoveEmployee(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.employeeService.Remove(user, id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyEmployeeRemoved),
	})
}
