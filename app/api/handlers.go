package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/lysyi3m/claim-tracker/app/cfg"
	"github.com/lysyi3m/claim-tracker/app/claims"
	"github.com/lysyi3m/claim-tracker/app/database"
	"github.com/lysyi3m/claim-tracker/app/tasks"
	"github.com/lysyi3m/claim-tracker/app/verdict"
)

const (
	cacheKeyCountdown = "countdown"
	cacheKeyStats     = "stats"

	defaultDueLimit = 100
	maxDueLimit     = 500
)

func NewHandler(repos database.Repositories, clock *claims.Clock, planner *claims.Planner,
	scheduler tasks.TaskSchedulerInterface, cacheTTL time.Duration) *Handler {
	loc := clock.Location()
	return &Handler{
		repos:       repos,
		clock:       clock,
		planner:     planner,
		partitioner: claims.NewPartitioner(loc),
		timeline:    claims.NewTimelineBuilder(loc),
		resolver:    claims.NewDueDateResolver(loc),
		scheduler:   scheduler,
		cache:       gocache.New(cacheTTL, 2*cacheTTL),
		cacheTTL:    cacheTTL,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"today":     claims.FormatDate(h.clock.Today()),
		"version":   cfg.GetVersion(),
	}

	counts, err := h.repos.Claims.CountByType(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "health", "error", err)
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	updates, err := h.repos.Updates.CountUpdates(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "health", "error", err)
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	health["status"] = "ok"
	health["claims"] = total
	health["updates"] = updates

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	if cached, ok := h.cached(cacheKeyStats); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	ctx := c.Request.Context()
	today := h.clock.Today()

	counts, err := h.repos.Claims.CountByType(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "count_claims", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	updates, err := h.repos.Updates.ListUpdates(ctx, nil)
	if err != nil {
		slog.Error("Database error", "operation", "list_updates", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	open, overdue, err := h.repos.Followups.CountOpen(ctx, today)
	if err != nil {
		slog.Error("Database error", "operation", "count_followups", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats := statsView{
		Claims:           make(map[string]int, len(counts)),
		Verdicts:         make(map[string]int),
		Updates:          len(updates),
		OpenFollowups:    open,
		OverdueFollowups: overdue,
		Today:            claims.FormatDate(today),
	}

	total := 0
	for t, n := range counts {
		stats.Claims[string(t)] = n
		total += n
	}

	latest := claims.LatestUpdates(updates)
	for _, u := range latest {
		stats.Verdicts[string(verdict.Normalize(u.Verdict).Category)]++
	}
	stats.Pending = max(total-len(latest), 0)

	h.store(cacheKeyStats, stats)
	c.JSON(http.StatusOK, stats)
}

// GetCountdown partitions promises and goals into upcoming and past. The
// optional article query parameter narrows it to one article's claims.
func (h *Handler) GetCountdown(c *gin.Context) {
	articleID := c.Query("article")
	key := cacheKeyCountdown + ":" + articleID

	if cached, ok := h.cached(key); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	snap, err := h.load(c.Request.Context(), database.ClaimFilter{
		Types:     []claims.ClaimType{claims.TypePromise, claims.TypeGoal},
		ArticleID: articleID,
	})
	if err != nil {
		slog.Error("Database error", "operation", "load_countdown", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	now := h.clock.Now()
	result := h.partitioner.Run(snap.claims, snap.followups, snap.updates, now)

	view := countdownView{
		Upcoming: make([]countdownEntryView, 0, len(result.Upcoming)),
		Past:     make([]countdownEntryView, 0, len(result.Past)),
		Today:    claims.FormatDate(h.clock.Today()),
	}
	for _, e := range result.Upcoming {
		view.Upcoming = append(view.Upcoming, newCountdownEntryView(e))
	}
	for _, e := range result.Past {
		view.Past = append(view.Past, newCountdownEntryView(e))
	}

	h.store(key, view)
	c.JSON(http.StatusOK, view)
}

func (h *Handler) GetClaim(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	claim, ok := h.findClaim(c, id)
	if !ok {
		return
	}

	snap, err := h.load(ctx, database.ClaimFilter{IDs: []string{id}})
	if err != nil {
		slog.Error("Database error", "operation", "load_claim", "claim_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	article, err := h.repos.Articles.GetArticle(ctx, claim.ArticleID)
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "article_id", claim.ArticleID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	view := claimDetailView{
		Claim:     newClaimView(*claim),
		Article:   newArticleView(article),
		Followups: make([]followupView, 0, len(snap.followups)),
		Updates:   make([]updateView, 0, len(snap.updates)),
	}

	if due, ok := h.resolver.Resolve(*claim, snap.followups); ok {
		view.DueDate = datePtr(&due)
	}
	if u, ok := claims.LatestUpdates(snap.updates)[claim.ID]; ok {
		v := verdict.Normalize(u.Verdict)
		view.Verdict = &v
	}
	if f, ok := claims.NextFollowups(snap.followups, h.clock.Today())[claim.ID]; ok {
		view.NextCheck = datePtr(f.FollowUpDate)
	}
	for _, f := range snap.followups {
		view.Followups = append(view.Followups, newFollowupView(f))
	}
	for _, u := range claims.SortUpdatesNewestFirst(snap.updates) {
		view.Updates = append(view.Updates, newUpdateView(u))
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) GetTimeline(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	claim, ok := h.findClaim(c, id)
	if !ok {
		return
	}

	snap, err := h.load(ctx, database.ClaimFilter{IDs: []string{id}})
	if err != nil {
		slog.Error("Database error", "operation", "load_timeline", "claim_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	article, err := h.repos.Articles.GetArticle(ctx, claim.ArticleID)
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "article_id", claim.ArticleID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	events := h.timeline.Run(*claim, article, snap.followups, snap.updates, h.clock.Now())

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, newEventView(e))
	}

	c.JSON(http.StatusOK, gin.H{
		"claim_id": claim.ID,
		"events":   views,
		"total":    len(views),
	})
}

func (h *Handler) APICreateArticle(c *gin.Context) {
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	article := claims.Article{
		ID:          req.ID,
		Title:       req.Title,
		Link:        req.Link,
		PublishDate: claims.OptionalTime(req.PublishDate, h.clock.Location()),
	}

	created, err := h.repos.Articles.CreateArticle(c.Request.Context(), article)
	if err != nil {
		slog.Error("Database error", "operation", "create_article", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	h.cache.Flush()
	c.JSON(http.StatusCreated, newArticleView(created))
}

// APICreateClaim accepts a claim from the extraction service, fixes its type
// and dates once and schedules its first checks.
func (h *Handler) APICreateClaim(c *gin.Context) {
	ctx := c.Request.Context()

	var req claims.NewClaim
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	claim, err := claims.NormalizeNew(req, h.clock.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid claim", "message": err.Error()})
		return
	}

	created, err := h.repos.Claims.CreateClaim(ctx, claim)
	if err != nil {
		slog.Error("Database error", "operation", "create_claim", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	today := h.clock.Today()
	start, err := tasks.PlanStart(ctx, h.repos.Articles, *created, today)
	if err != nil {
		slog.Error("Database error", "operation", "plan_start", "claim_id", created.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var pending []database.NewFollowup
	for _, d := range h.planner.Plan(*created, start, today) {
		pending = append(pending, database.NewFollowup{ClaimID: created.ID, Date: d, Note: "initial plan"})
	}

	followups, err := h.repos.Followups.CreateFollowups(ctx, pending)
	if err != nil {
		slog.Error("Database error", "operation", "create_followups", "claim_id", created.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	h.cache.Flush()
	slog.Info("Claim created", "claim_id", created.ID, "type", created.Type, "followups", len(followups))

	views := make([]followupView, 0, len(followups))
	for _, f := range followups {
		views = append(views, newFollowupView(f))
	}

	c.JSON(http.StatusCreated, gin.H{
		"claim":     newClaimView(*created),
		"followups": views,
	})
}

// APIListDueFollowups lists open followups due on or before the given date
// (default today) for external verification workers.
func (h *Handler) APIListDueFollowups(c *gin.Context) {
	dueBy := h.clock.Today()
	if raw := c.Query("date"); raw != "" {
		d, ok := claims.ParseDateOrAbsent(raw, h.clock.Location())
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date", "message": "Use YYYY-MM-DD"})
			return
		}
		dueBy = d
	}

	limit := defaultDueLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = min(n, maxDueLimit)
	}

	followups, err := h.repos.Followups.ListFollowups(c.Request.Context(), database.FollowupFilter{
		OpenOnly: true,
		DueBy:    &dueBy,
		Limit:    uint(limit),
	})
	if err != nil {
		slog.Error("Database error", "operation", "list_due_followups", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	views := make([]followupView, 0, len(followups))
	for _, f := range followups {
		views = append(views, newFollowupView(f))
	}

	c.JSON(http.StatusOK, gin.H{
		"followups": views,
		"total":     len(views),
		"due_by":    claims.FormatDate(dueBy),
	})
}

func (h *Handler) APICloseFollowup(c *gin.Context) {
	id := c.Param("id")

	var req closeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}
	if req.Verdict == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing verdict"})
		return
	}

	closure, err := h.repos.Followups.CloseFollowup(c.Request.Context(), id, claims.Verification{
		Verdict: req.Verdict,
		Output:  req.ModelOutput,
	}, time.Now())
	switch {
	case errors.Is(err, claims.ErrFollowupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Followup not found"})
		return
	case errors.Is(err, claims.ErrFollowupClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "Followup already processed"})
		return
	case err != nil:
		slog.Error("Database error", "operation", "close_followup", "followup_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	h.cache.Flush()
	slog.Info("Followup closed", "followup_id", id, "update_id", closure.Update.ID, "verdict", req.Verdict)

	resp := closeResponse{
		Followup: newFollowupView(closure.Followup),
		Update:   newUpdateView(closure.Update),
	}
	if closure.Next != nil {
		next := newFollowupView(*closure.Next)
		resp.Next = &next
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) APITriggerPlanning(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler not running"})
		return
	}

	if err := h.scheduler.TriggerPlanning(); err != nil {
		slog.Error("Failed to enqueue planning", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to enqueue planning", "message": err.Error()})
		return
	}

	h.cache.Flush()
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// findClaim writes the error response itself and reports whether to go on.
func (h *Handler) findClaim(c *gin.Context, id string) (*claims.Claim, bool) {
	claim, err := h.repos.Claims.GetClaim(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_claim", "claim_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	if claim == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Claim not found"})
		return nil, false
	}
	return claim, true
}

// Projections are cached for cacheTTL; a non-positive TTL disables caching.
func (h *Handler) cached(key string) (interface{}, bool) {
	if h.cacheTTL <= 0 {
		return nil, false
	}
	return h.cache.Get(key)
}

func (h *Handler) store(key string, value interface{}) {
	if h.cacheTTL <= 0 {
		return
	}
	h.cache.Set(key, value, gocache.DefaultExpiration)
}
