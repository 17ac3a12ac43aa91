package http

import (
	"github.com/jhoicas/hospitality-ops/internal/application/dto"
	"github.com/jhoicas/hospitality-ops/internal/application/order"
	"github.com/jhoicas/hospitality-ops/internal/application/transfer"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
)

func toOrderResponse(v *order.View) dto.OrderResponse {
	o := v.Order
	out := dto.OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Subtotal:      o.Subtotal,
		DiscountTotal: o.DiscountTotal,
		Tax:           o.Tax,
		Total:         o.Total,
		CustomerRef:   o.CustomerRef,
		Lines:         make([]dto.OrderLineResponse, 0, len(o.Lines)),
		Departments:   make([]dto.OrderDepartmentResponse, 0, len(o.Departments)),
		Fulfillment: dto.FulfillmentSummaryResponse{
			TotalLines:     v.Summary.TotalLines,
			FulfilledLines: v.Summary.FulfilledLines,
			Percent:        v.Summary.Percent,
			Status:         string(v.Summary.Status),
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, dto.OrderLineResponse{
			ID:           l.ID,
			LineNumber:   l.LineNumber,
			ProductID:    l.ProductID,
			ProductType:  string(l.ProductType),
			ProductName:  l.ProductName,
			DepartmentID: l.DepartmentID,
			SectionID:    l.SectionID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			LineTotal:    l.LineTotal,
			Status:       string(l.Status),
		})
	}
	for _, d := range o.Departments {
		out.Departments = append(out.Departments, dto.OrderDepartmentResponse{DepartmentID: d.DepartmentID, Status: string(d.Status)})
	}
	return out
}

func toTransferResponse(t *entity.Transfer) dto.TransferResponse {
	out := dto.TransferResponse{
		ID:               t.ID,
		FromDepartmentID: t.From.DepartmentID,
		ToDepartmentID:   t.To.DepartmentID,
		ToSectionID:      t.To.SectionID,
		Status:           string(t.Status),
		Notes:            t.Notes,
		Items:            make([]dto.TransferItemResponse, 0, len(t.Items)),
		RequestedBy:      t.RequestedBy,
		ApprovedBy:       t.ApprovedBy,
		CreatedAt:        t.CreatedAt,
		ApprovedAt:       t.ApprovedAt,
		CompletedAt:      t.CompletedAt,
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, dto.TransferItemResponse{
			Position:    it.Position,
			ProductType: string(it.ProductType),
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
		})
	}
	return out
}

func toApproveResponse(r *transfer.ApproveResult) dto.ApproveTransferResponse {
	out := dto.ApproveTransferResponse{
		Success:  r.Success,
		Message:  r.Message,
		Transfer: toTransferResponse(r.Transfer),
	}
	for _, f := range r.FailedExtras {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		out.FailedExtras = append(out.FailedExtras, dto.FailedExtraResponse{ExtraID: f.ExtraID, Quantity: f.Quantity, Error: msg})
	}
	return out
}

func toStockResponse(list []*entity.StockEntry) []dto.StockEntryResponse {
	out := make([]dto.StockEntryResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.StockEntryResponse{
			DepartmentID: s.Scope.DepartmentID,
			SectionID:    s.Scope.SectionID,
			ItemID:       s.ItemID,
			ItemType:     string(s.ItemType),
			Quantity:     s.Quantity,
			Reserved:     s.Reserved,
			Available:    s.Available(),
			UpdatedAt:    s.UpdatedAt,
		})
	}
	return out
}

func toMovementResponse(list []*entity.MovementRecord) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementResponse{
			ID:           m.ID,
			Type:         string(m.Type),
			Quantity:     m.Quantity,
			Reason:       string(m.Reason),
			Reference:    m.Reference,
			ItemID:       m.ItemID,
			ItemType:     string(m.ItemType),
			DepartmentID: m.Scope.DepartmentID,
			SectionID:    m.Scope.SectionID,
			CreatedBy:    m.CreatedBy,
			CreatedAt:    m.CreatedAt,
		})
	}
	return out
}

func toReservationResponse(r *entity.Reservation) dto.ReservationResponse {
	return dto.ReservationResponse{
		ID:           r.ID,
		OrderID:      r.OrderID,
		LineID:       r.LineID,
		ItemID:       r.ItemID,
		DepartmentID: r.Scope.DepartmentID,
		SectionID:    r.Scope.SectionID,
		Quantity:     r.Quantity,
		Consumed:     r.Consumed,
		Status:       string(r.Status),
	}
}

func toExtraResponse(e *entity.Extra) dto.ExtraResponse {
	return dto.ExtraResponse{ID: e.ID, Name: e.Name, TrackQuantity: e.TrackQuantity, CreatedAt: e.CreatedAt}
}

func toAllocationResponse(a *entity.ExtraAllocation) dto.ExtraAllocationResponse {
	return dto.ExtraAllocationResponse{
		DepartmentID: a.Scope.DepartmentID,
		SectionID:    a.Scope.SectionID,
		ExtraID:      a.ExtraID,
		Quantity:     a.Quantity,
		UpdatedAt:    a.UpdatedAt,
	}
}
