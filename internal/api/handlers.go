package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
)

type taskResponse struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	URL          string          `json:"url"`
	Platform     domain.Platform `json:"platform"`
	Category     domain.Category `json:"category"`
	RewardAmount int64           `json:"reward_amount"`
	Reward       string          `json:"reward"`
	Claimed      bool            `json:"claimed"`
	CreatedAt    time.Time       `json:"created_at"`
}

type earningsResponse struct {
	ByCategory   map[domain.Category]int64 `json:"by_category"`
	AllTimeTotal int64                     `json:"all_time_total"`
	Total        string                    `json:"total"`
}

type completionResponse struct {
	TaskID       uuid.UUID               `json:"task_id"`
	Status       domain.CompletionStatus `json:"status"`
	RewardEarned int64                   `json:"reward_earned"`
	CompletedAt  time.Time               `json:"completed_at"`
}

type userResponse struct {
	ID           uuid.UUID  `json:"id"`
	ReferralCode string     `json:"referral_code"`
	ReferredByID *uuid.UUID `json:"referred_by_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type referralRequest struct {
	Code string `json:"code" binding:"required"`
}

func newEarningsResponse(acc *domain.EarningsAccount) earningsResponse {
	return earningsResponse{
		ByCategory:   acc.ByCategory,
		AllTimeTotal: acc.AllTimeTotal,
		Total:        domain.FormatAmount(acc.AllTimeTotal),
	}
}

// statusFor maps domain errors to HTTP status codes. ErrCreditPending is
// checked first because it wraps the underlying store error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCreditPending):
		return http.StatusAccepted
	case errors.Is(err, domain.ErrTaskNotFound), errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTaskInactive):
		return http.StatusGone
	case errors.Is(err, domain.ErrAlreadyClaimed), errors.Is(err, domain.ErrReferralAlreadySet):
		return http.StatusConflict
	case errors.Is(err, domain.ErrReferralInvalid), errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ListTasks returns active tasks. A store outage yields an empty list with
// available=false instead of an error status.
func (h *handler) ListTasks(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)

	var filter *domain.Platform
	if raw := c.Query("platform"); raw != "" {
		p, ok := domain.ParsePlatform(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "unknown platform"})
			return
		}
		filter = &p
	}

	tasks, err := h.deps.Catalog.ListActiveTasks(ctx, filter)
	if err != nil {
		h.log.Warn("task catalog unavailable", "error", err)
		c.JSON(http.StatusOK, gin.H{"tasks": []taskResponse{}, "available": false})
		return
	}

	claimed := make(map[uuid.UUID]bool)
	history, err := h.deps.Ledger.History(ctx, user.ID)
	if err != nil {
		h.log.Warn("completion history unavailable", "error", err, "user_id", user.ID)
	}
	for _, rec := range history {
		claimed[rec.TaskID] = true
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse{
			ID:           t.ID,
			Title:        t.Title,
			URL:          t.URL,
			Platform:     t.Platform,
			Category:     domain.CategoryOf(t.Platform),
			RewardAmount: t.RewardAmount,
			Reward:       domain.FormatAmount(t.RewardAmount),
			Claimed:      claimed[t.ID],
			CreatedAt:    t.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out, "available": true})
}

func (h *handler) ClaimTask(c *gin.Context) {
	user := currentUser(c)

	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid task id"})
		return
	}

	result, err := h.deps.Claims.ClaimReward(c.Request.Context(), user.ID, taskID)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusAccepted {
			c.JSON(status, gin.H{"status": "pending", "detail": domain.ErrCreditPending.Error()})
			return
		}
		detail := err.Error()
		if status == http.StatusInternalServerError {
			detail = "claim failed"
		}
		c.JSON(status, gin.H{"detail": detail})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task_id":            result.TaskID,
		"category":           result.Category,
		"reward_amount":      result.RewardAmount,
		"new_category_total": result.NewCategoryTotal,
		"new_all_time_total": result.NewAllTimeTotal,
		"reward":             domain.FormatAmount(result.RewardAmount),
	})
}

func (h *handler) GetClaimStatus(c *gin.Context) {
	user := currentUser(c)

	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid task id"})
		return
	}

	claimed, err := h.deps.Ledger.HasClaimed(c.Request.Context(), user.ID, taskID)
	if err != nil {
		h.log.Error("failed to check claim", "error", err, "user_id", user.ID)
		c.JSON(statusFor(err), gin.H{"detail": "could not check claim"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": taskID, "claimed": claimed})
}

func (h *handler) GetEarnings(c *gin.Context) {
	user := currentUser(c)

	acc, err := h.deps.Earnings.Account(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to load earnings", "error", err, "user_id", user.ID)
		c.JSON(statusFor(err), gin.H{"detail": "could not load earnings"})
		return
	}
	c.JSON(http.StatusOK, newEarningsResponse(acc))
}

func (h *handler) ListCompletions(c *gin.Context) {
	user := currentUser(c)

	history, err := h.deps.Ledger.History(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to load completions", "error", err, "user_id", user.ID)
		c.JSON(statusFor(err), gin.H{"detail": "could not load completions"})
		return
	}

	out := make([]completionResponse, 0, len(history))
	for _, rec := range history {
		out = append(out, completionResponse{
			TaskID:       rec.TaskID,
			Status:       rec.Status,
			RewardEarned: rec.RewardEarned,
			CompletedAt:  rec.CompletedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"completions": out})
}

func (h *handler) GetMe(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, userResponse{
		ID:           user.ID,
		ReferralCode: user.ReferralCode,
		ReferredByID: user.ReferredByID,
		CreatedAt:    user.CreatedAt,
	})
}

func (h *handler) ApplyReferral(c *gin.Context) {
	user := currentUser(c)

	var req referralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "code is required"})
		return
	}

	referrer, err := h.deps.Referrals.Apply(c.Request.Context(), user, req.Code)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
			h.log.Error("failed to apply referral", "error", err, "user_id", user.ID)
			c.JSON(status, gin.H{"detail": "could not apply referral"})
			return
		}
		c.JSON(status, gin.H{"detail": err.Error()})
		return
	}

	h.log.Info("referral applied", "user_id", user.ID, "referrer_id", referrer.ID)
	c.JSON(http.StatusOK, gin.H{"referred_by_id": referrer.ID})
}
