package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/apns-backend/internal/http/response"
	"github.com/yungbote/apns-backend/internal/services"
)

type StudentHandler struct {
	studentService services.StudentService
}

func NewStudentHandler(studentService services.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

func (sh *StudentHandler) List(c *gin.Context) {
	students, err := sh.studentService.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "Unable to fetch students")
		return
	}
	response.RespondOK(c, students)
}

func (sh *StudentHandler) Create(c *gin.Context) {
	var req services.CreateStudentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	student, err := sh.studentService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "Unable to create student")
		return
	}
	response.RespondCreated(c, student)
}

func (sh *StudentHandler) Profile(c *gin.Context) {
	profile, err := sh.studentService.Profile(c.Request.Context(), c.Param("roll_no"))
	if err != nil {
		response.RespondAPIError(c, err, "Unable to fetch student")
		return
	}
	response.RespondOK(c, profile)
}

func (sh *StudentHandler) ContactAction(c *gin.Context) {
	var req services.ContactActionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := sh.studentService.ContactAction(c.Request.Context(), c.Param("roll_no"), req)
	if err != nil {
		response.RespondAPIError(c, err, "Unable to create contact action")
		return
	}
	if res.Memory {
		response.RespondCreated(c, gin.H{
			"ok":        true,
			"mode":      "memory",
			"roll_no":   res.RollNo,
			"channel":   res.Channel,
			"status":    "sent",
			"recipient": res.Recipient,
		})
		return
	}
	response.RespondCreated(c, res.Action)
}
