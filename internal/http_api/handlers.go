package http_api

import (
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dinari-africa/dinari-ledger/internal/models"
	"github.com/dinari-africa/dinari-ledger/pkg/dinari"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// TransferRequest represents the JSON body for a token transfer
type TransferRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// ApproveRequest represents the JSON body for an allowance grant
type ApproveRequest struct {
	Owner   string `json:"owner" binding:"required"`
	Spender string `json:"spender" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// TransferFromRequest represents the JSON body for a delegated transfer
type TransferFromRequest struct {
	Spender string `json:"spender" binding:"required"`
	From    string `json:"from" binding:"required"`
	To      string `json:"to" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// MintRequest represents the JSON body for minting new supply
type MintRequest struct {
	Caller string `json:"caller" binding:"required"`
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// BurnRequest represents the JSON body for burning the caller's balance
type BurnRequest struct {
	Caller string `json:"caller" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// RoleChangeRequest represents the JSON body for ownership and minter changes
type RoleChangeRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// CallerRequest represents the JSON body for pause and unpause
type CallerRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// KYCRequest represents the JSON body for flipping an account's KYC flag
type KYCRequest struct {
	Caller   string `json:"caller" binding:"required"`
	Account  string `json:"account" binding:"required"`
	Verified *bool  `json:"verified" binding:"required"`
}

// DailyLimitRequest represents the JSON body for setting a rolling daily cap.
// A zero limit removes the cap.
type DailyLimitRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Account string `json:"account" binding:"required"`
	Limit   string `json:"limit" binding:"required"`
}

// RateRequest represents the JSON body for a rate table upsert
type RateRequest struct {
	Caller   string `json:"caller" binding:"required"`
	Currency string `json:"currency" binding:"required"`
	Rate     string `json:"rate" binding:"required"`
}

// CollateralRequest represents the JSON body for reporting reserve value
type CollateralRequest struct {
	Caller string `json:"caller" binding:"required"`
	Value  string `json:"value" binding:"required"`
}

// CreateGroupRequest represents the JSON body for opening a savings group
type CreateGroupRequest struct {
	Caller          string `json:"caller" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Target          string `json:"target" binding:"required"`
	DurationSeconds int64  `json:"duration_seconds" binding:"required,min=1"`
}

// GroupActionRequest represents the JSON body for joining a group
type GroupActionRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// ContributeRequest represents the JSON body for a group contribution
type ContributeRequest struct {
	Caller string `json:"caller" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// parseAmount converts a decimal token string ("12.5") into base units.
// Amounts with more than 18 fractional digits are rejected rather than
// silently truncated.
func parseAmount(value string) (*big.Int, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, err
	}
	shifted := d.Shift(18)
	if !shifted.IsInteger() {
		return nil, errors.New("amount has more than 18 decimal places")
	}
	return shifted.BigInt(), nil
}

// formatAmount renders base units back into a decimal token string.
func formatAmount(base *big.Int) string {
	return decimal.NewFromBigInt(base, -18).String()
}

// writeLedgerError maps taxonomy errors onto HTTP statuses. Validation
// failures are 400, role and KYC denials 403, missing groups 404, the paused
// contract 409 and the remaining domain rejections 422.
func (s *HTTPServer) writeLedgerError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrZeroAddress), errors.Is(err, models.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized), errors.Is(err, models.ErrKYCRequired):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrGroupNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrContractPaused):
		status = http.StatusConflict
	case errors.Is(err, models.ErrInsufficientBalance),
		errors.Is(err, models.ErrAllowanceExceeded),
		errors.Is(err, models.ErrDailyLimitExceeded),
		errors.Is(err, models.ErrGroupNotActive),
		errors.Is(err, models.ErrAlreadyMember),
		errors.Is(err, models.ErrNotAMember),
		errors.Is(err, models.ErrUnsupportedCurrency):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Unexpected ledger error: ", err)
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// bindJSON parses the body into req, writing the 400 response itself on
// failure.
func (s *HTTPServer) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return false
	}
	return true
}

func (s *HTTPServer) parseAmountField(c *gin.Context, name, value string) (*big.Int, bool) {
	amount, err := parseAmount(value)
	if err != nil {
		s.logger.Debug("Invalid amount", "field", name, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid " + name + ": " + err.Error(),
		})
		return nil, false
	}
	return amount, true
}

func (s *HTTPServer) validAddress(c *gin.Context, name, address string) bool {
	if err := dinari.ValidateAddress(address); err != nil {
		s.logger.Debug("Invalid address", "field", name, "error", err, "address", address)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid " + name + " address: " + err.Error(),
		})
		return false
	}
	return true
}

// transfer is a handler for the /transfer endpoint.
func (s *HTTPServer) transfer(c *gin.Context) {
	var req TransferRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "from", req.From) || !s.validAddress(c, "to", req.To) {
		return
	}
	amount, ok := s.parseAmountField(c, "amount", req.Amount)
	if !ok {
		return
	}

	if err := s.ledger.Transfer(req.From, req.To, amount); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// approve is a handler for the /approve endpoint.
func (s *HTTPServer) approve(c *gin.Context) {
	var req ApproveRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "owner", req.Owner) || !s.validAddress(c, "spender", req.Spender) {
		return
	}
	amount, ok := s.parseAmountField(c, "amount", req.Amount)
	if !ok {
		return
	}

	if err := s.ledger.Approve(req.Owner, req.Spender, amount); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// transferFrom is a handler for the /transfer_from endpoint.
func (s *HTTPServer) transferFrom(c *gin.Context) {
	var req TransferFromRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "spender", req.Spender) ||
		!s.validAddress(c, "from", req.From) ||
		!s.validAddress(c, "to", req.To) {
		return
	}
	amount, ok := s.parseAmountField(c, "amount", req.Amount)
	if !ok {
		return
	}

	if err := s.ledger.TransferFrom(req.Spender, req.From, req.To, amount); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// mint is a handler for the /mint endpoint.
func (s *HTTPServer) mint(c *gin.Context) {
	var req MintRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "caller", req.Caller) || !s.validAddress(c, "to", req.To) {
		return
	}
	amount, ok := s.parseAmountField(c, "amount", req.Amount)
	if !ok {
		return
	}

	if err := s.ledger.Mint(req.Caller, req.To, amount); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "total_supply": formatAmount(s.ledger.TotalSupply())})
}

// burn is a handler for the /burn endpoint.
func (s *HTTPServer) burn(c *gin.Context) {
	var req BurnRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "caller", req.Caller) {
		return
	}
	amount, ok := s.parseAmountField(c, "amount", req.Amount)
	if !ok {
		return
	}

	if err := s.ledger.Burn(req.Caller, amount); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "total_supply": formatAmount(s.ledger.TotalSupply())})
}

// tokenInfo is a handler for the /token endpoint.
func (s *HTTPServer) tokenInfo(c *gin.Context) {
	token := s.ledger.Token()
	c.JSON(http.StatusOK, gin.H{
		"name":     token.Name,
		"symbol":   token.Symbol,
		"decimals": token.Decimals,
	})
}

// totalSupply is a handler for the /supply endpoint.
func (s *HTTPServer) totalSupply(c *gin.Context) {
	supply := s.ledger.TotalSupply()
	c.JSON(http.StatusOK, gin.H{
		"total_supply":            formatAmount(supply),
		"total_supply_base_units": supply.String(),
	})
}

// balanceOf is a handler for the /balance/:address endpoint.
func (s *HTTPServer) balanceOf(c *gin.Context) {
	address := c.Param("address")
	if !s.validAddress(c, "address", address) {
		return
	}

	balance := s.ledger.BalanceOf(address)
	c.JSON(http.StatusOK, gin.H{
		"address":            address,
		"balance":            formatAmount(balance),
		"balance_base_units": balance.String(),
	})
}

// allowanceOf is a handler for the /allowance endpoint.
func (s *HTTPServer) allowanceOf(c *gin.Context) {
	owner := c.Query("owner")
	spender := c.Query("spender")
	if owner == "" || spender == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner and spender are required"})
		return
	}
	if !s.validAddress(c, "owner", owner) || !s.validAddress(c, "spender", spender) {
		return
	}

	allowance := s.ledger.AllowanceOf(owner, spender)
	c.JSON(http.StatusOK, gin.H{
		"owner":     owner,
		"spender":   spender,
		"allowance": formatAmount(allowance),
	})
}

// accountInfo is a handler for the /account/:address endpoint. It exposes the
// compliance view of an account alongside its balance.
func (s *HTTPServer) accountInfo(c *gin.Context) {
	address := c.Param("address")
	if !s.validAddress(c, "address", address) {
		return
	}

	account := s.ledger.GetAccount(address)
	if account == nil {
		// Address the ledger has never touched: report the zero view.
		account = &models.Account{Balance: new(big.Int)}
	}
	resp := gin.H{
		"address":  address,
		"balance":  formatAmount(account.Balance),
		"verified": account.Verified,
	}
	if account.DailyLimit != nil && account.DailyLimit.Sign() > 0 {
		resp["daily_limit"] = formatAmount(account.DailyLimit)
		resp["daily_used"] = formatAmount(account.DailyUsed)
		resp["window_start"] = account.WindowStart
	}
	c.JSON(http.StatusOK, resp)
}

// transferOwnership is a handler for the /admin/transfer_ownership endpoint.
func (s *HTTPServer) transferOwnership(c *gin.Context) {
	var req RoleChangeRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "caller", req.Caller) || !s.validAddress(c, "address", req.Address) {
		return
	}

	if err := s.ledger.TransferOwnership(req.Caller, req.Address); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "owner": s.ledger.Owner()})
}

// setMinter is a handler for the /admin/set_minter endpoint.
func (s *HTTPServer) setMinter(c *gin.Context) {
	var req RoleChangeRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "caller", req.Caller) || !s.validAddress(c, "address", req.Address) {
		return
	}

	if err := s.ledger.SetMinter(req.Caller, req.Address); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "minter": s.ledger.Minter()})
}

// pause is a handler for the /admin/pause endpoint.
func (s *HTTPServer) pause(c *gin.Context) {
	var req CallerRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "caller", req.Caller) {
		return
	}

	if err := s.ledger.Pause(req.Caller); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "paused": true})
}

// unpause is a handler for the /admin/unpause endpoint.
func (s *HTTPServer) unpause(c *gin.Context) {
	var req CallerRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "caller", req.Caller) {
		return
	}

	if err := s.ledger.Unpause(req.Caller); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "paused": false})
}

// setKYC is a handler for the /admin/kyc endpoint.
func (s *HTTPServer) setKYC(c *gin.Context) {
	var req KYCRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "caller", req.Caller) || !s.validAddress(c, "account", req.Account) {
		return
	}

	if err := s.ledger.SetKYCVerified(req.Caller, req.Account, *req.Verified); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "account": req.Account, "verified": *req.Verified})
}

// setDailyLimit is a handler for the /admin/daily_limit endpoint.
func (s *HTTPServer) setDailyLimit(c *gin.Context) {
	var req DailyLimitRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "caller", req.Caller) || !s.validAddress(c, "account", req.Account) {
		return
	}
	limit, ok := s.parseAmountField(c, "limit", req.Limit)
	if !ok {
		return
	}

	if err := s.ledger.SetDailyLimit(req.Caller, req.Account, limit); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "account": req.Account, "limit": formatAmount(limit)})
}

// updateRate is a handler for the /admin/rate endpoint.
func (s *HTTPServer) updateRate(c *gin.Context) {
	var req RateRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "caller", req.Caller) {
		return
	}
	rate, ok := s.parseAmountField(c, "rate", req.Rate)
	if !ok {
		return
	}

	if err := s.ledger.UpdateRate(req.Caller, req.Currency, rate); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "currency": req.Currency, "rate": formatAmount(rate)})
}

// setCollateral is a handler for the /admin/collateral endpoint.
func (s *HTTPServer) setCollateral(c *gin.Context) {
	var req CollateralRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "caller", req.Caller) {
		return
	}
	value, ok := s.parseAmountField(c, "value", req.Value)
	if !ok {
		return
	}

	if err := s.ledger.SetCollateralValue(req.Caller, value); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "collateral_value": formatAmount(value)})
}

// adminStatus is a handler for the /admin/status endpoint.
func (s *HTTPServer) adminStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"owner":  s.ledger.Owner(),
		"minter": s.ledger.Minter(),
		"paused": s.ledger.Paused(),
	})
}

// conversionRate is a handler for the /rates/:currency endpoint.
func (s *HTTPServer) conversionRate(c *gin.Context) {
	currency := c.Param("currency")
	rate := s.ledger.ConversionRate(currency)
	if rate.Sign() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no rate for currency: " + currency})
		return
	}
	c.JSON(http.StatusOK, gin.H{"currency": currency, "rate": formatAmount(rate)})
}

// convertToFiat is a handler for the /convert endpoint.
func (s *HTTPServer) convertToFiat(c *gin.Context) {
	currency := c.Query("currency")
	if currency == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency is required"})
		return
	}
	amount, ok := s.parseAmountField(c, "amount", c.Query("amount"))
	if !ok {
		return
	}

	fiat, err := s.ledger.ConvertToFiat(amount, currency)
	if err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"amount":     formatAmount(amount),
		"currency":   currency,
		"fiat_value": formatAmount(fiat),
	})
}

// collateralStatus is a handler for the /collateral endpoint. A zero ratio
// means it is undefined: either supply is zero or no reserve rate is set.
func (s *HTTPServer) collateralStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"collateral_value": formatAmount(s.ledger.CollateralValue()),
		"ratio_percent":    s.ledger.CollateralizationRatio().String(),
	})
}

// createSavingsGroup is a handler for the POST /savings/groups endpoint.
func (s *HTTPServer) createSavingsGroup(c *gin.Context) {
	var req CreateGroupRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "caller", req.Caller) {
		return
	}
	target, ok := s.parseAmountField(c, "target", req.Target)
	if !ok {
		return
	}

	groupID, err := s.ledger.CreateSavingsGroup(req.Caller, req.Name, target, req.DurationSeconds)
	if err != nil {
		s.writeLedgerError(c, err)
		return
	}

	s.logger.Info("Savings group created", "id", groupID, "name", req.Name, "creator", req.Caller)
	c.JSON(http.StatusCreated, gin.H{"success": true, "group_id": groupID})
}

// savingsGroupInfo is a handler for the GET /savings/groups/:id endpoint.
func (s *HTTPServer) savingsGroupInfo(c *gin.Context) {
	groupID, ok := s.parseGroupID(c)
	if !ok {
		return
	}

	info, err := s.ledger.SavingsGroupInfo(groupID)
	if err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// joinSavingsGroup is a handler for the /savings/groups/:id/join endpoint.
func (s *HTTPServer) joinSavingsGroup(c *gin.Context) {
	groupID, ok := s.parseGroupID(c)
	if !ok {
		return
	}
	var req GroupActionRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "caller", req.Caller) {
		return
	}

	if err := s.ledger.JoinSavingsGroup(req.Caller, groupID); err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "group_id": groupID})
}

// contributeToSavings is a handler for the /savings/groups/:id/contribute endpoint.
func (s *HTTPServer) contributeToSavings(c *gin.Context) {
	groupID, ok := s.parseGroupID(c)
	if !ok {
		return
	}
	var req ContributeRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if !s.validAddress(c, "caller", req.Caller) {
		return
	}
	amount, ok := s.parseAmountField(c, "amount", req.Amount)
	if !ok {
		return
	}

	if err := s.ledger.ContributeToSavings(req.Caller, groupID, amount); err != nil {
		s.writeLedgerError(c, err)
		return
	}

	info, err := s.ledger.SavingsGroupInfo(groupID)
	if err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "group": info})
}

// memberContribution is a handler for the /savings/groups/:id/members/:address endpoint.
func (s *HTTPServer) memberContribution(c *gin.Context) {
	groupID, ok := s.parseGroupID(c)
	if !ok {
		return
	}
	address := c.Param("address")
	if !s.validAddress(c, "address", address) {
		return
	}

	contribution, err := s.ledger.MemberContribution(groupID, address)
	if err != nil {
		s.writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"group_id":     groupID,
		"member":       address,
		"contribution": formatAmount(contribution),
	})
}

func (s *HTTPServer) parseGroupID(c *gin.Context) (uint64, bool) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return 0, false
	}
	return groupID, true
}

// listEvents is a handler for the /events endpoint. With an address query it
// returns events touching that address, otherwise the newest journal records.
func (s *HTTPServer) listEvents(c *gin.Context) {
	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if parsed > maxEventLimit {
			parsed = maxEventLimit
		}
		limit = parsed
	}

	var (
		events []*models.Event
		err    error
	)
	if address := c.Query("address"); address != "" {
		if !s.validAddress(c, "address", address) {
			return
		}
		events, err = s.repo.ListEventsByAddress(address, limit)
	} else {
		events, err = s.repo.ListRecentEvents(limit)
	}
	if err != nil {
		s.logger.Error("Failed to list events: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// health is a handler for the /health endpoint.
func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "paused": s.ledger.Paused()})
}
