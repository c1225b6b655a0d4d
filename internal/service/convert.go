package service

import (
	"github.com/mmynk/jomsplit/internal/calculator"
	"github.com/mmynk/jomsplit/internal/draft"
	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/money"
	"github.com/mmynk/jomsplit/internal/storage"
	"github.com/mmynk/jomsplit/pkg/api"
)

func receiptFromAPI(r api.Receipt) models.Receipt {
	items := make([]models.Item, len(r.Items))
	for i, item := range r.Items {
		items[i] = models.Item{
			ID:                 item.ID,
			Name:               item.Name,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			NettPrice:          item.NettPrice,
			TaxAmount:          item.TaxAmount,
			RoundingAdjustment: item.RoundingAdjustment,
		}
	}
	return models.Receipt{
		ID:                  r.ID,
		BillID:              r.BillID,
		Name:                r.Name,
		Category:            r.Category,
		Notes:               r.Notes,
		Date:                r.Date,
		Time:                r.Time,
		Location:            r.Location,
		Address:             r.Address,
		Currency:            r.Currency,
		SubtotalAmount:      r.SubtotalAmount,
		TaxRate:             r.TaxRate,
		TaxAmount:           r.TaxAmount,
		ServiceChargeRate:   r.ServiceChargeRate,
		ServiceChargeAmount: r.ServiceChargeAmount,
		RoundingAdjustment:  r.RoundingAdjustment,
		NettAmount:          r.NettAmount,
		PaidBy:              models.ParseParticipantID(r.PaidBy),
		Items:               items,
		FileURL:             r.FileURL,
	}
}

func receiptToAPI(r models.Receipt) api.Receipt {
	items := make([]api.Item, len(r.Items))
	for i, item := range r.Items {
		items[i] = api.Item{
			ID:                 item.ID,
			Name:               item.Name,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			NettPrice:          item.NettPrice,
			TaxAmount:          item.TaxAmount,
			RoundingAdjustment: item.RoundingAdjustment,
		}
	}
	return api.Receipt{
		ID:                  r.ID,
		BillID:              r.BillID,
		Name:                r.Name,
		Category:            r.Category,
		Notes:               r.Notes,
		Date:                r.Date,
		Time:                r.Time,
		Location:            r.Location,
		Address:             r.Address,
		Currency:            r.Currency,
		SubtotalAmount:      r.SubtotalAmount,
		TaxRate:             r.TaxRate,
		TaxAmount:           r.TaxAmount,
		ServiceChargeRate:   r.ServiceChargeRate,
		ServiceChargeAmount: r.ServiceChargeAmount,
		RoundingAdjustment:  r.RoundingAdjustment,
		NettAmount:          r.NettAmount,
		PaidBy:              r.PaidBy.String(),
		Items:               items,
		FileURL:             r.FileURL,
	}
}

func sharesFromAPI(shares []api.ItemShare) []models.ItemShare {
	if shares == nil {
		return nil
	}
	out := make([]models.ItemShare, len(shares))
	for i, s := range shares {
		out[i] = models.ItemShare{
			ItemID:     s.ItemID,
			Value:      s.Value,
			Percentage: s.Percentage,
			SplitType:  models.SplitType(s.SplitType),
		}
	}
	return out
}

func sharesToAPI(shares []models.ItemShare) []api.ItemShare {
	out := make([]api.ItemShare, len(shares))
	for i, s := range shares {
		out[i] = api.ItemShare{
			ItemID:     s.ItemID,
			Value:      s.Value,
			Percentage: s.Percentage,
			SplitType:  string(s.SplitType),
		}
	}
	return out
}

// participantsFromAPI normalizes ids at the boundary: bare emails and phone
// numbers become namespaced ParticipantIDs, and a missing contact is taken
// from the id.
func participantsFromAPI(ps []api.Participant) []models.Participant {
	out := make([]models.Participant, len(ps))
	for i, p := range ps {
		id := models.ParseParticipantID(p.ID)
		contact := p.Contact
		if contact == "" && id.Kind() != models.IdentityUser {
			contact = id.Value()
		}
		out[i] = models.Participant{
			ID:        id,
			Name:      p.Name,
			Contact:   contact,
			TotalPaid: p.TotalPaid,
			ItemsPaid: sharesFromAPI(p.ItemsPaid),
		}
	}
	return out
}

func participantsToAPI(ps []models.Participant) []api.Participant {
	out := make([]api.Participant, len(ps))
	for i, p := range ps {
		out[i] = api.Participant{
			ID:        p.ID.String(),
			Name:      p.Name,
			Contact:   p.Contact,
			TotalPaid: p.TotalPaid,
			ItemsPaid: sharesToAPI(p.ItemsPaid),
		}
	}
	return out
}

func participantIDs(ids []string) []models.ParticipantID {
	out := make([]models.ParticipantID, len(ids))
	for i, id := range ids {
		out[i] = models.ParseParticipantID(id)
	}
	return out
}

func percentagesFromAPI(ps []api.PercentageAssignment) []calculator.PercentageAssignment {
	out := make([]calculator.PercentageAssignment, len(ps))
	for i, p := range ps {
		out[i] = calculator.PercentageAssignment{
			ParticipantID: models.ParseParticipantID(p.ParticipantID),
			Percentage:    p.Percentage,
		}
	}
	return out
}

func balanceToAPI(b calculator.BalanceReport, currency string) api.BalanceReport {
	return api.BalanceReport{
		ComputedTotal:      b.ComputedTotal,
		AuthoritativeTotal: b.AuthoritativeTotal,
		Difference:         b.Difference,
		Accurate:           b.Accurate(),
		Display:            money.DisplayError(b.Difference, currency),
	}
}

func allocationToAPI(a *calculator.Allocation, currency string) api.Allocation {
	coverage := make([]api.ItemCoverage, len(a.Coverage))
	for i, c := range a.Coverage {
		coverage[i] = api.ItemCoverage{
			ItemID:             c.ItemID,
			LineTotal:          c.LineTotal,
			AssignedValue:      c.AssignedValue,
			AssignedPercentage: c.AssignedPercentage,
		}
	}
	warnings := make([]api.Warning, len(a.Warnings))
	for i, w := range a.Warnings {
		warnings[i] = api.Warning{Kind: string(w.Kind), ItemID: w.ItemID, Message: w.Message}
	}
	return api.Allocation{
		Policy:         string(a.Policy),
		Participants:   participantsToAPI(a.Participants),
		ReceiptBalance: balanceToAPI(a.ReceiptBalance, currency),
		SplitBalance:   balanceToAPI(a.SplitBalance, currency),
		Coverage:       coverage,
		Warnings:       warnings,
	}
}

// draftToAPI includes a verification of the draft's current shares. It never
// re-runs the equal split, so a review-stage draft reports its items as
// unassigned.
func draftToAPI(d *draft.Draft, currency string) api.Draft {
	r := d.Receipt
	coverage, warnings := calculator.CheckCoverage(&r, d.Participants)
	a := &calculator.Allocation{
		Policy:         d.Policy,
		Participants:   d.Participants,
		ReceiptBalance: calculator.VerifyReceipt(&r),
		SplitBalance:   calculator.VerifySplit(&r, d.Participants),
		Coverage:       coverage,
		Warnings:       warnings,
	}
	return api.Draft{
		ID:           d.ID,
		OwnerID:      d.OwnerID,
		Stage:        string(d.Stage),
		Policy:       string(d.Policy),
		Receipt:      receiptToAPI(d.Receipt),
		Participants: participantsToAPI(d.Participants),
		Confidence:   d.Confidence,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		ExpiresAt:    d.ExpiresAt,
		Allocation:   allocationToAPI(a, currency),
	}
}

func consumerReceiptToAPI(cr models.ConsumerReceipt) api.ReceiptShare {
	return api.ReceiptShare{
		Receipt:     receiptToAPI(cr.Receipt),
		OwnerID:     cr.OwnerID,
		SplitMethod: string(cr.SplitMethod),
		TotalPaid:   cr.TotalPaid,
		Breakdown:   sharesToAPI(cr.Breakdown),
		CreatedAt:   cr.CreatedAt,
	}
}

func friendToAPI(e models.FriendLedgerEntry) api.Friend {
	return api.Friend{
		FriendID:    e.FriendID,
		Name:        e.Name,
		Contact:     e.Contact,
		Since:       e.Since,
		NettBalance: e.NettBalance,
	}
}

func pageInfoToAPI(p storage.PageInfo) api.PageInfo {
	return api.PageInfo{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      p.Total,
		TotalPages: p.TotalPages,
		HasMore:    p.HasMore,
	}
}
