package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finance-tracker-backend/internal/ledger"
	"finance-tracker-backend/internal/validate"
)

func (s *Server) listAccounts(c *gin.Context) {
	accounts, err := s.ledger.ListAccounts(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (s *Server) getAccount(c *gin.Context) {
	id, err := ledger.ParseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	account, err := s.ledger.GetAccount(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) createAccount(c *gin.Context) {
	var in validate.AccountInput
	if err := validate.Bind(c, &in); err != nil {
		fail(c, err)
		return
	}
	account, err := s.ledger.CreateAccount(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (s *Server) updateAccount(c *gin.Context) {
	id, err := ledger.ParseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	var in validate.AccountInput
	if err := validate.Bind(c, &in); err != nil {
		fail(c, err)
		return
	}
	account, err := s.ledger.UpdateAccount(c.Request.Context(), currentUser(c).ID, id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) deleteAccount(c *gin.Context) {
	id, err := ledger.ParseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.ledger.DeleteAccount(c.Request.Context(), currentUser(c).ID, id); err != nil {
		fail(c, err)
		return
	}
	success(c)
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.ledger.ListCategories(c.Request.Context(), currentUser(c).ID, c.Query("type"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) createCategory(c *gin.Context) {
	var in validate.CategoryInput
	if err := validate.Bind(c, &in); err != nil {
		fail(c, err)
		return
	}
	category, err := s.ledger.CreateCategory(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// listTransactions serves the paginated, filtered listing.
func (s *Server) listTransactions(c *gin.Context) {
	params := ledger.ListParams{
		Page:       c.Query("page"),
		PageSize:   c.Query("pageSize"),
		Search:     c.Query("search"),
		Type:       c.Query("type"),
		CategoryID: c.Query("categoryId"),
		AccountID:  c.Query("accountId"),
		StartDate:  c.Query("startDate"),
		EndDate:    c.Query("endDate"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}
	page, err := s.ledger.ListTransactions(c.Request.Context(), currentUser(c).ID, params)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) getTransaction(c *gin.Context) {
	id, err := ledger.ParseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	t, err := s.ledger.GetTransaction(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) createTransaction(c *gin.Context) {
	var in validate.TransactionInput
	if err := validate.Bind(c, &in); err != nil {
		fail(c, err)
		return
	}
	t, err := s.ledger.CreateTransaction(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) updateTransaction(c *gin.Context) {
	id, err := ledger.ParseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	var in validate.TransactionInput
	if err := validate.Bind(c, &in); err != nil {
		fail(c, err)
		return
	}
	t, err := s.ledger.UpdateTransaction(c.Request.Context(), currentUser(c).ID, id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) deleteTransaction(c *gin.Context) {
	id, err := ledger.ParseID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.ledger.DeleteTransaction(c.Request.Context(), currentUser(c).ID, id); err != nil {
		fail(c, err)
		return
	}
	success(c)
}

func (s *Server) getDashboard(c *gin.Context) {
	d, err := s.dashboard.Snapshot(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
