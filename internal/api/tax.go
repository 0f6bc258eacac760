package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/zombor/fintrack-api/internal/tax"
)

type incomeTaxRequest struct {
	AnnualIncome    decimal.Decimal  `json:"annual_income" validate:"gte=0"`
	FilingStatus    string           `json:"filing_status" validate:"required,oneof=single married-joint married-separate head"`
	State           string           `json:"state" validate:"required"`
	DeductionType   string           `json:"deduction_type" validate:"required,oneof=standard itemized"`
	CustomDeduction *decimal.Decimal `json:"custom_deduction" validate:"omitempty,gte=0"`
}

type salesTaxRequest struct {
	PurchaseAmount decimal.Decimal `json:"purchase_amount" validate:"gte=0"`
	State          string          `json:"state" validate:"required"`
	IsEssential    bool            `json:"is_essential"`
}

type propertyTaxRequest struct {
	PropertyValue decimal.Decimal `json:"property_value" validate:"gte=0"`
	State         string          `json:"state" validate:"required"`
	County        string          `json:"county"`
}

// decodeRequest reads and validates a JSON body. The returned error is meant
// for the client.
func (s *Server) decodeRequest(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed %s validation", fe.Field(), fe.Tag())
		}
		return err
	}
	return nil
}

// taxResponse writes a tax result or error and fires the matching haptic cue
func (s *Server) taxResponse(w http.ResponseWriter, r *http.Request, kind string, result *tax.Result, err error) {
	s.signal(r.Context(), err)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, tax.ErrUnknownFilingStatus) {
			status = http.StatusBadRequest
		}
		writeError(w, status, fmt.Sprintf("Error calculating %s tax: %v", kind, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleIncomeTax(w http.ResponseWriter, r *http.Request) {
	var req incomeTaxRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.signal(r.Context(), err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := tax.IncomeTax(tax.IncomeRequest{
		AnnualIncome:    req.AnnualIncome,
		FilingStatus:    tax.FilingStatus(req.FilingStatus),
		State:           req.State,
		DeductionType:   tax.DeductionType(req.DeductionType),
		CustomDeduction: req.CustomDeduction,
	})
	s.taxResponse(w, r, "income", result, err)
}

func (s *Server) handleSalesTax(w http.ResponseWriter, r *http.Request) {
	var req salesTaxRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.signal(r.Context(), err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.taxResponse(w, r, "sales", tax.SalesTax(req.PurchaseAmount, req.State, req.IsEssential), nil)
}

func (s *Server) handlePropertyTax(w http.ResponseWriter, r *http.Request) {
	var req propertyTaxRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.signal(r.Context(), err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.taxResponse(w, r, "property", tax.PropertyTax(req.PropertyValue, req.State, req.County), nil)
}
