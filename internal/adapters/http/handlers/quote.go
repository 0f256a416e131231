package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-aggregator/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-aggregator/internal/app"
	"github.com/jsamuelsen/quote-aggregator/internal/domain"
)

// defaultTopLimit is the leaderboard size when no limit is requested.
const defaultTopLimit = 10

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
	sources map[string]string
}

// NewQuoteHandler creates a new quote handler. The sources map lists the
// configured providers (source name to base URL) for the sources endpoint.
func NewQuoteHandler(service *app.QuoteService, sources map[string]string) *QuoteHandler {
	return &QuoteHandler{
		service: service,
		sources: sources,
	}
}

// QuoteResponse is the HTTP response structure for a quote.
type QuoteResponse struct {
	ID                 string `json:"id"`
	QuoteText          string `json:"quoteText"`
	Author             string `json:"author,omitempty"`
	Category           string `json:"category,omitempty"`
	Source             string `json:"source"`
	Image              string `json:"image,omitempty"`
	Character          string `json:"character,omitempty"`
	CharacterDirection string `json:"characterDirection,omitempty"`
	Votes              int    `json:"votes"`
}

// VoteRequest is the HTTP request body for casting a vote. The userEmail
// field is an opaque voter identifier; any non-empty string is accepted.
type VoteRequest struct {
	UserEmail string `json:"userEmail" validate:"required"`
}

// toQuoteResponse converts a domain Quote to an HTTP response.
func toQuoteResponse(q *domain.Quote) *QuoteResponse {
	return &QuoteResponse{
		ID:                 q.ID,
		QuoteText:          q.Text,
		Author:             q.Author,
		Category:           q.Category,
		Source:             string(q.Source),
		Image:              q.Image,
		Character:          q.Character,
		CharacterDirection: q.CharacterDirection,
		Votes:              q.Votes,
	}
}

// GetSourceQuote handles GET /api/v1/quotes/source/:source
// Fetches a random quote from the named upstream provider, persisting it
// on first sight. An optional ?filter= narrows the draw (character name
// for character-quotes, category for generic-quotes).
//
// @Summary Get a quote from a source
// @Description Fetches a random quote from the named provider
// @Tags quotes
// @Produce json
// @Param source path string true "Quote source" Enums(character-quotes, generic-quotes)
// @Param filter query string false "Provider-specific filter"
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quotes/source/{source} [get]
func (h *QuoteHandler) GetSourceQuote(c *gin.Context) {
	source, err := domain.ParseSource(c.Param("source"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	quote, err := h.service.FetchQuote(c.Request.Context(), source, c.Query("filter"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// VoteForQuote handles POST /api/v1/quotes/:id/vote
// Casts one vote for the quote on behalf of the user in the request body.
// A user can vote for a given quote at most once.
//
// @Summary Vote for a quote
// @Description Casts a vote; each user may vote once per quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body VoteRequest true "Voter identity"
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id}/vote [post]
func (h *QuoteHandler) VoteForQuote(c *gin.Context) {
	var req VoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		if fieldErrors := dto.ValidationErrors(err); len(fieldErrors) > 0 {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
				dto.ErrorCodeValidation,
				"request validation failed",
				fieldErrors,
			).WithTraceID(dto.GetTraceID(c)))
			return
		}

		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"invalid request body",
		).WithTraceID(dto.GetTraceID(c)))
		return
	}

	quote, err := h.service.Vote(c.Request.Context(), c.Param("id"), req.UserEmail)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// GetTopQuotes handles GET /api/v1/quotes/top
// Returns the highest-voted quotes. The limit query parameter is clamped
// to the supported range; a missing limit defaults to 10.
//
// @Summary Get top-voted quotes
// @Description Returns the leaderboard of highest-voted quotes
// @Tags quotes
// @Produce json
// @Param limit query int false "Maximum quotes to return (default 10, clamped to 5..20)"
// @Success 200 {array} QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes/top [get]
func (h *QuoteHandler) GetTopQuotes(c *gin.Context) {
	limit := defaultTopLimit

	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrorCodeValidation,
				"limit must be an integer",
			).WithTraceID(dto.GetTraceID(c)))
			return
		}

		limit = parsed
	}

	quotes, err := h.service.TopQuotes(c.Request.Context(), limit)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := make([]*QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		resp = append(resp, toQuoteResponse(q))
	}

	c.JSON(http.StatusOK, resp)
}

// GetQuoteSources handles GET /api/v1/quotes/sources
// Returns the configured upstream providers and their base URLs.
//
// @Summary List quote sources
// @Description Returns the configured providers and their base URLs
// @Tags quotes
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/quotes/sources [get]
func (h *QuoteHandler) GetQuoteSources(c *gin.Context) {
	c.JSON(http.StatusOK, h.sources)
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("/source/:source", h.GetSourceQuote)
	quotes.GET("/top", h.GetTopQuotes)
	quotes.GET("/sources", h.GetQuoteSources)
	quotes.POST("/:id/vote", h.VoteForQuote)
}
