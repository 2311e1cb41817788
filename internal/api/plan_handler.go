package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/apierr"
	"nutriplan/internal/logger"
	"nutriplan/internal/nutrition"
	"nutriplan/internal/planner"
	"nutriplan/internal/shopping"
)

// PlanService generates, reads and edits meal plans.
type PlanService interface {
	Generate(ctx context.Context, in planner.GenerateInput) (*planner.Output, error)
	ActivePlan(ctx context.Context, userID, nutritionistID string) (*planner.Output, error)
	Swap(ctx context.Context, req planner.SwapRequest) (*planner.Meal, error)
}

type PlanHandler struct {
	plans PlanService
	log   *logger.Logger
}

func NewPlanHandler(plans PlanService, log *logger.Logger) *PlanHandler {
	return &PlanHandler{plans: plans, log: log.With("handler", "plans")}
}

type generateRequest struct {
	UserID             string   `json:"userId" binding:"required"`
	NutritionistID     string   `json:"nutritionistId"`
	DietaryPreferences []string `json:"dietaryPreferences"`
	HealthLabels       []string `json:"healthLabels"`
}

type multiDayRequest struct {
	generateRequest
	ExcludedIngredients []string `json:"excludedIngredients"`
	NumberOfDays        int      `json:"numberOfDays"`
	MaxPagesPerMeal     int      `json:"maxPagesPerMeal"`
}

// Generate handles POST /api/generate/meals.
func (h *PlanHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apierr.BadRequest("invalid_request", err), "", nil)
		return
	}

	out, err := h.plans.Generate(c.Request.Context(), planner.GenerateInput{
		UserID:             req.UserID,
		NutritionistID:     req.NutritionistID,
		DietaryPreferences: req.DietaryPreferences,
		HealthLabels:       req.HealthLabels,
	})
	if err != nil {
		respondError(c, h.log, err, "Error generating meal plan", profileOf(out))
		return
	}
	respondOK(c, gin.H{"mealPlan": out.Plan, "userProfile": out.Profile})
}

// GenerateMultiDay handles POST /api/multi-day-generator/mealplan.
func (h *PlanHandler) GenerateMultiDay(c *gin.Context) {
	var req multiDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apierr.BadRequest("invalid_request", err), "", nil)
		return
	}
	if req.NumberOfDays == 0 {
		req.NumberOfDays = 1
	}

	out, err := h.plans.Generate(c.Request.Context(), planner.GenerateInput{
		UserID:              req.UserID,
		NutritionistID:      req.NutritionistID,
		DietaryPreferences:  req.DietaryPreferences,
		HealthLabels:        req.HealthLabels,
		ExcludedIngredients: req.ExcludedIngredients,
		NumberOfDays:        req.NumberOfDays,
		MaxPagesPerMeal:     req.MaxPagesPerMeal,
		MultiDay:            true,
	})
	if err != nil {
		respondError(c, h.log, err, "Error generating multi-day meal plan", profileOf(out))
		return
	}
	respondOK(c, gin.H{"mealPlan": out.Plan, "numberOfDays": out.Days, "userProfile": out.Profile})
}

type swapRequest struct {
	UserID         string             `json:"userId" binding:"required"`
	NutritionistID string             `json:"nutritionistId"`
	OldRecipeID    string             `json:"oldRecipeId"`
	NewRecipeID    string             `json:"newRecipeId" binding:"required"`
	MealType       string             `json:"mealType" binding:"required"`
	DayNumber      int                `json:"dayNumber"`
	NewRecipe      planner.SwapRecipe `json:"newRecipe"`
}

// Swap handles POST /api/swap-meal.
func (h *PlanHandler) Swap(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apierr.BadRequest("invalid_request", err), "", nil)
		return
	}

	meal, err := h.plans.Swap(c.Request.Context(), planner.SwapRequest{
		UserID:         req.UserID,
		NutritionistID: req.NutritionistID,
		OldRecipeID:    req.OldRecipeID,
		NewRecipeID:    req.NewRecipeID,
		MealType:       req.MealType,
		DayNumber:      req.DayNumber,
		NewRecipe:      req.NewRecipe,
	})
	if err != nil {
		respondError(c, h.log, err, "Error swapping meal", nil)
		return
	}
	respondOK(c, gin.H{"message": "Meal swapped successfully", "updatedMeal": meal})
}

// FetchActive handles GET /api/fetch-mealplans.
func (h *PlanHandler) FetchActive(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondError(c, h.log, apierr.BadRequest("invalid_request", errors.New("userId is required")), "", nil)
		return
	}

	out, err := h.plans.ActivePlan(c.Request.Context(), userID, c.Query("nutritionistId"))
	if errors.Is(err, planner.ErrNoActivePlan) {
		err = apierr.NotFound("no_active_plan", errors.New("no active meal plans found"))
	}
	if err != nil {
		respondError(c, h.log, err, "Error fetching meal plans", profileOf(out))
		return
	}
	respondOK(c, gin.H{"mealPlan": out.Plan, "numberOfDays": out.Days, "userProfile": out.Profile})
}

// ShoppingList handles GET /api/shopping-list. The optional day query
// parameter limits the list to one plan day.
func (h *PlanHandler) ShoppingList(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondError(c, h.log, apierr.BadRequest("invalid_request", errors.New("userId is required")), "", nil)
		return
	}
	day := 0
	if raw := c.Query("day"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 || d > planner.MaxDays {
			respondError(c, h.log, apierr.BadRequest("invalid_request", errors.New("day must be between 1 and 7")), "", nil)
			return
		}
		day = d
	}

	out, err := h.plans.ActivePlan(c.Request.Context(), userID, c.Query("nutritionistId"))
	if errors.Is(err, planner.ErrNoActivePlan) {
		err = apierr.NotFound("no_active_plan", errors.New("no active meal plans found"))
	}
	if err != nil {
		respondError(c, h.log, err, "Error building shopping list", profileOf(out))
		return
	}
	respondOK(c, gin.H{"shoppingList": shopping.Build(out.Plan, day)})
}

func profileOf(out *planner.Output) *nutrition.Summary {
	if out == nil {
		return nil
	}
	p := out.Profile
	return &p
}
