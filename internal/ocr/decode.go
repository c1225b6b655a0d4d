// Package ocr decodes the receipt JSON produced by the structuring backend
// into the allocation model.
//
// The backend answers either with the structured receipt itself or with an
// envelope {"raw_text", "structured_data", "confidence_score"}, where
// structured_data may be an object or a JSON string. The model output is
// sometimes wrapped in a ``` fence; Decode strips it.
package ocr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/jomsplit/internal/models"
)

// ErrMalformed is returned when the payload is not a usable receipt.
var ErrMalformed = errors.New("malformed structured receipt")

// Result is a decoded structuring response.
type Result struct {
	Receipt      models.Receipt
	Participants []models.Participant

	// SplitMethod is the policy name the backend suggested, possibly empty.
	SplitMethod string

	// Confidence is the backend's OCR reliability in [0, 1]. Zero when absent.
	Confidence float64

	// RawText is the OCR text, kept for debugging only.
	RawText string
}

type envelope struct {
	RawText         string          `json:"raw_text"`
	StructuredData  json.RawMessage `json:"structured_data"`
	ConfidenceScore *float64        `json:"confidence_score"`
	Confidence      *float64        `json:"confidenceScore"`
	Error           string          `json:"error"`
}

type structuredReceipt struct {
	BillID              string                  `json:"bill_id"`
	Name                string                  `json:"name"`
	Date                string                  `json:"date"`
	Time                string                  `json:"time"`
	Category            string                  `json:"category"`
	Location            string                  `json:"location"`
	Address             string                  `json:"address"`
	Currency            string                  `json:"currency"`
	TaxRate             decimal.Decimal         `json:"tax_rate"`
	ServiceChargeRate   decimal.Decimal         `json:"service_charge_rate"`
	SubtotalAmount      decimal.Decimal         `json:"subtotal_amount"`
	TaxAmount           decimal.Decimal         `json:"tax_amount"`
	ServiceChargeAmount decimal.Decimal         `json:"service_charge_amount"`
	RoundingAdjustment  decimal.Decimal         `json:"rounding_adjustment"`
	NettAmount          decimal.Decimal         `json:"nett_amount"`
	PaidBy              string                  `json:"paid_by"`
	Items               []structuredItem        `json:"items"`
	SplitMethod         string                  `json:"split_method"`
	Participants        []structuredParticipant `json:"participants"`
	Notes               string                  `json:"notes"`
	ConfidenceScore     *float64                `json:"confidence_score"`
}

type structuredItem struct {
	ID                 flexID           `json:"id"`
	Name               string           `json:"name"`
	Quantity           *int             `json:"quantity"`
	UnitPrice          *decimal.Decimal `json:"unit_price"`
	Price              *decimal.Decimal `json:"price"`
	TaxAmount          decimal.Decimal  `json:"tax_amount"`
	NettPrice          decimal.Decimal  `json:"nett_price"`
	RoundingAdjustment decimal.Decimal  `json:"rounding_adjustment"`
}

type structuredParticipant struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	Contact   string            `json:"contact"`
	TotalPaid decimal.Decimal   `json:"total_paid"`
	ItemsPaid []structuredShare `json:"items_paid"`
}

type structuredShare struct {
	ID         flexID          `json:"id"`
	ItemID     flexID          `json:"item_id"`
	Percentage decimal.Decimal `json:"percentage"`
	Value      decimal.Decimal `json:"value"`
	SplitType  string          `json:"split_type"`
}

// flexID accepts ids sent as either JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// StripFence removes a surrounding ``` or ```json fence.
func StripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		if lang := strings.TrimSpace(text[:nl]); lang == "" || strings.EqualFold(lang, "json") {
			text = text[nl+1:]
		}
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// Decode parses a structuring backend response.
func Decode(data []byte) (*Result, error) {
	text := StripFence(string(data))
	// The whole output may arrive as a JSON string.
	if strings.HasPrefix(text, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(text), &inner); err == nil {
			text = StripFence(inner)
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Error != "" && len(env.StructuredData) == 0 {
		return nil, fmt.Errorf("%w: backend error: %s", ErrMalformed, env.Error)
	}

	body := []byte(text)
	if len(env.StructuredData) > 0 {
		body = env.StructuredData
		// structured_data is sometimes a JSON document encoded as a string.
		var nested string
		if err := json.Unmarshal(body, &nested); err == nil {
			body = []byte(StripFence(nested))
		}
	}

	var sr structuredReceipt
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	res := &Result{
		Receipt:     sr.receipt(),
		SplitMethod: sr.SplitMethod,
		RawText:     env.RawText,
	}
	switch {
	case env.ConfidenceScore != nil:
		res.Confidence = *env.ConfidenceScore
	case env.Confidence != nil:
		res.Confidence = *env.Confidence
	case sr.ConfidenceScore != nil:
		res.Confidence = *sr.ConfidenceScore
	}
	if res.Confidence < 0 || res.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence score %v outside [0, 1]", ErrMalformed, res.Confidence)
	}

	participants, err := sr.participants()
	if err != nil {
		return nil, err
	}
	res.Participants = participants
	res.Receipt.PaidBy = models.ParseParticipantID(sr.PaidBy)
	return res, nil
}

func (sr structuredReceipt) receipt() models.Receipt {
	r := models.Receipt{
		BillID:              sr.BillID,
		Name:                sr.Name,
		Category:            sr.Category,
		Notes:               sr.Notes,
		Date:                sr.Date,
		Time:                sr.Time,
		Location:            sr.Location,
		Address:             sr.Address,
		Currency:            sr.Currency,
		SubtotalAmount:      sr.SubtotalAmount,
		TaxRate:             sr.TaxRate,
		TaxAmount:           sr.TaxAmount,
		ServiceChargeRate:   sr.ServiceChargeRate,
		ServiceChargeAmount: sr.ServiceChargeAmount,
		RoundingAdjustment:  sr.RoundingAdjustment,
		NettAmount:          sr.NettAmount,
		Items:               make([]models.Item, 0, len(sr.Items)),
	}
	for i, it := range sr.Items {
		item := models.Item{
			ID:                 string(it.ID),
			Name:               it.Name,
			Quantity:           1,
			NettPrice:          it.NettPrice,
			TaxAmount:          it.TaxAmount,
			RoundingAdjustment: it.RoundingAdjustment,
		}
		if item.ID == "" {
			item.ID = strconv.Itoa(i + 1)
		}
		if it.Quantity != nil {
			item.Quantity = *it.Quantity
		}
		switch {
		case it.UnitPrice != nil:
			item.UnitPrice = *it.UnitPrice
		case it.Price != nil:
			item.UnitPrice = *it.Price
		default:
			item.UnitPrice = it.NettPrice
		}
		r.Items = append(r.Items, item)
	}
	return r
}

func (sr structuredReceipt) participants() ([]models.Participant, error) {
	out := make([]models.Participant, 0, len(sr.Participants))
	for i, sp := range sr.Participants {
		id, contact := identity(sp)
		if id == "" {
			return nil, fmt.Errorf("%w: participant %d has no id, email or phone", ErrMalformed, i+1)
		}
		p := models.Participant{
			ID:        id,
			Name:      sp.Name,
			Contact:   contact,
			TotalPaid: sp.TotalPaid,
			ItemsPaid: make([]models.ItemShare, 0, len(sp.ItemsPaid)),
		}
		for _, s := range sp.ItemsPaid {
			itemID := s.ItemID
			if itemID == "" {
				itemID = s.ID
			}
			st := models.SplitType(s.SplitType)
			if !st.Valid() {
				st = models.SplitTypeManual
			}
			p.ItemsPaid = append(p.ItemsPaid, models.ItemShare{
				ItemID:     string(itemID),
				Value:      s.Value,
				Percentage: s.Percentage,
				SplitType:  st,
			})
		}
		out = append(out, p)
	}
	return out, nil
}

// identity adapts the contact fields older payloads key participants by.
func identity(sp structuredParticipant) (models.ParticipantID, string) {
	switch {
	case sp.ID != "":
		id := models.ParseParticipantID(sp.ID)
		contact := sp.Contact
		if contact == "" && id.Kind() != models.IdentityUser {
			contact = id.Value()
		}
		return id, contact
	case sp.Email != "":
		id := models.EmailParticipant(sp.Email)
		return id, id.Value()
	case sp.Phone != "":
		id := models.PhoneParticipant(sp.Phone)
		return id, id.Value()
	case sp.Contact != "":
		id := models.ContactParticipant(sp.Contact)
		return id, id.Value()
	}
	return "", ""
}
