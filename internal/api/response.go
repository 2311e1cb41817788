package api

import (
	"errors"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/apierr"
	"nutriplan/internal/logger"
	"nutriplan/internal/nutrition"
	"nutriplan/internal/planner"
)

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	Code        string             `json:"code,omitempty"`
	Details     any                `json:"details,omitempty"`
	UserProfile *nutrition.Summary `json:"userProfile,omitempty"`
}

func respondOK(c *gin.Context, payload gin.H) {
	payload["success"] = true
	c.JSON(http.StatusOK, payload)
}

// respondError writes err as an ErrorBody. Errors that do not map to an
// apierr.Error become a 500 carrying fallback instead of the error text.
func respondError(c *gin.Context, log *logger.Logger, err error, fallback string, profile *nutrition.Summary) {
	apiErr := toAPIError(err)
	body := ErrorBody{Message: fallback, Code: "internal_error", UserProfile: profile}
	status := http.StatusInternalServerError

	if apiErr != nil {
		status = apiErr.Status
		body.Code = apiErr.Code
		body.Message = sentence(apiErr.Error())
		body.Details = apiErr.Details
	} else {
		log.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, body)
}

// toAPIError maps domain errors to their HTTP form, or returns nil.
func toAPIError(err error) *apierr.Error {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var notFound *planner.MealNotFoundError
	switch {
	case errors.As(err, &notFound):
		return apierr.NotFound("meal_not_found", planner.ErrMealNotFound).WithDetails(gin.H{
			"searchedFor": gin.H{
				"mealType":    notFound.MealType,
				"oldRecipeId": notFound.OldRecipeID,
			},
			"availableMeals": notFound.AvailableMeals,
		})
	case errors.Is(err, planner.ErrInvalidUserID):
		return apierr.BadRequest("invalid_user_id", err)
	case errors.Is(err, planner.ErrUserNotFound):
		return apierr.NotFound("user_not_found", err)
	case errors.Is(err, planner.ErrNoCandidates):
		return apierr.NotFound("no_candidates", err)
	case errors.Is(err, planner.ErrNoActivePlan):
		return apierr.NotFound("no_active_plan", err)
	case errors.Is(err, planner.ErrMealTypeNotFound):
		return apierr.NotFound("meal_type_not_found", err)
	}
	return nil
}

// sentence upper-cases the first letter of an error message.
func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
