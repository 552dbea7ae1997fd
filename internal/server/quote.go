package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	quotedomain "github.com/smallbiznis/rentaldesk/internal/quote/domain"
	"github.com/smallbiznis/rentaldesk/pkg/db/pagination"
)

func (s *Server) SubmitQuote(c *gin.Context) {
	var req quotedomain.SubmitQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.Submit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("quote_id", resp.ID.String())

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListQuotes(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status        string `form:"status"`
		PaymentStatus string `form:"payment_status"`
		EventType     string `form:"event_type"`
		Email         string `form:"email"`
		Search        string `form:"q"`
		EventDateFrom string `form:"event_date_from"`
		EventDateTo   string `form:"event_date_to"`
		SortBy        string `form:"sort_by"`
		SortOrder     string `form:"sort_order"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sortDesc, err := parseSortOrder(query.SortOrder)
	if err != nil {
		AbortWithError(c, newValidationError("sort_order", "invalid_sort_order", "sort_order must be asc or desc"))
		return
	}

	resp, err := s.quoteSvc.List(c.Request.Context(), quotedomain.ListQuoteRequest{
		Pagination:    query.Pagination,
		Status:        strings.TrimSpace(query.Status),
		PaymentStatus: strings.TrimSpace(query.PaymentStatus),
		EventType:     strings.TrimSpace(query.EventType),
		Email:         strings.TrimSpace(query.Email),
		Search:        strings.TrimSpace(query.Search),
		EventDateFrom: strings.TrimSpace(query.EventDateFrom),
		EventDateTo:   strings.TrimSpace(query.EventDateTo),
		SortBy:        strings.TrimSpace(query.SortBy),
		SortDesc:      sortDesc,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetQuoteByID(c *gin.Context) {
	id := quoteIDParam(c)
	resp, err := s.quoteSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateQuote(c *gin.Context) {
	id := quoteIDParam(c)

	var req quotedomain.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.UpdateFields(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateQuoteStatus(c *gin.Context) {
	id := quoteIDParam(c)

	var req quotedomain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateQuotePaymentStatus(c *gin.Context) {
	id := quoteIDParam(c)

	var req quotedomain.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.UpdatePaymentStatus(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteQuote(c *gin.Context) {
	if err := s.quoteSvc.Delete(c.Request.Context(), quoteIDParam(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) DownloadQuotePDF(c *gin.Context) {
	doc, err := s.quoteSvc.RenderDocument(c.Request.Context(), quoteIDParam(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, contentType, doc.Content)
}

func quoteIDParam(c *gin.Context) string {
	id := strings.TrimSpace(c.Param("id"))
	c.Set("quote_id", id)
	return id
}

func isQuoteValidationError(err error) bool {
	return matchesAny(err,
		quotedomain.ErrEmptyItems,
		quotedomain.ErrEventDateNotFuture,
		quotedomain.ErrInvalidEventDate,
		quotedomain.ErrInvalidName,
		quotedomain.ErrInvalidEmail,
		quotedomain.ErrInvalidPhone,
		quotedomain.ErrInvalidItem,
		quotedomain.ErrInvalidPaymentMethod,
		quotedomain.ErrInvalidPaymentStatus,
		quotedomain.ErrInvalidID,
		quotedomain.ErrInvalidReference,
	)
}
