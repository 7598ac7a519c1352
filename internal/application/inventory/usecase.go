package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// RecordMovementFromRequest adapta el request HTTP al comando RecordMovement.
// Usar desde handlers HTTP o desde otros casos de uso que tengan tenantID, userID y dto.RecordMovementRequest.
func (uc *StockLedgerUseCase) RecordMovementFromRequest(ctx context.Context, tenantID, userID string, in dto.RecordMovementRequest) (*MovementResult, error) {
	return uc.RecordMovement(ctx, RecordMovementCommand{
		TenantID:       tenantID,
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		Type:           entity.MovementType(in.MovementType),
		Quantity:       in.Quantity,
		ReferenceNo:    in.ReferenceNo,
		Notes:          in.Notes,
		IdempotencyKey: in.IdempotencyKey,
		ActorID:        userID,
	})
}

// ToMovementResponse convierte el resultado del motor a su DTO.
func ToMovementResponse(r *MovementResult) *dto.MovementResultResponse {
	return &dto.MovementResultResponse{
		Movement: ToMovementDTO(r.Movement),
		Balance:  ToBalanceDTO(r.Balance),
		Replayed: r.Replayed,
	}
}

// ToMovementDTO convierte un movimiento del ledger a su DTO.
func ToMovementDTO(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		WarehouseID:    m.WarehouseID,
		MovementType:   string(m.Type),
		Quantity:       m.Quantity,
		ReferenceNo:    m.ReferenceNo,
		Notes:          m.Notes,
		IdempotencyKey: m.IdempotencyKey,
		BalanceBefore:  m.BalanceBefore,
		BalanceAfter:   m.BalanceAfter,
		Clamped:        m.Clamped,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

// ToBalanceDTO convierte un saldo a su DTO.
func ToBalanceDTO(s *entity.Stock) dto.BalanceResponse {
	out := dto.BalanceResponse{
		ProductID:   s.ProductID,
		WarehouseID: s.WarehouseID,
		Quantity:    s.Quantity,
	}
	if !s.LastUpdated.IsZero() {
		t := s.LastUpdated
		out.LastUpdated = &t
	}
	return out
}

// ToRecomputeResponse convierte el resultado de un recálculo a su DTO.
func ToRecomputeResponse(r *RecomputeResult) *dto.RecomputeResponse {
	return &dto.RecomputeResponse{
		Balance:   ToBalanceDTO(r.Balance),
		Previous:  r.Previous,
		Computed:  r.Computed,
		Diverged:  r.Diverged,
		Repaired:  r.Repaired,
		Movements: r.Movements,
	}
}

// ToReconcileResponse convierte el reporte de reconciliación a su DTO.
func ToReconcileResponse(r *ReconcileReport) *dto.ReconcileResponse {
	out := &dto.ReconcileResponse{
		DryRun:    r.DryRun,
		Checked:   r.Checked,
		Repaired:  r.Repaired,
		Divergent: make([]dto.DivergenceDTO, 0, len(r.Divergent)),
	}
	for _, d := range r.Divergent {
		out.Divergent = append(out.Divergent, dto.DivergenceDTO{
			ProductID:   d.ProductID,
			WarehouseID: d.WarehouseID,
			Stored:      d.Stored,
			Computed:    d.Computed,
		})
	}
	return out
}

// ToStockSummaryResponse convierte el resumen de stock de un producto a su DTO.
func ToStockSummaryResponse(s *ProductStockSummary) *dto.TotalStockResponse {
	out := &dto.TotalStockResponse{
		ProductID:     s.ProductID,
		TotalStock:    s.TotalStock,
		MinStockLevel: s.MinStockLevel,
		Level:         string(s.Level),
		IsLowStock:    s.IsLowStock,
		IsCritical:    s.IsCritical,
		Warehouses:    ToBreakdownDTO(s.Warehouses),
	}
	return out
}

// ToBreakdownDTO convierte el desglose por bodega a su DTO.
func ToBreakdownDTO(rows []WarehouseBalance) []dto.WarehouseBalanceDTO {
	out := make([]dto.WarehouseBalanceDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.WarehouseBalanceDTO{
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			Quantity:      r.Quantity,
		})
	}
	return out
}

// ToStockStatusDTO convierte el estado de stock a su DTO.
func ToStockStatusDTO(items []ProductStockStatus) []dto.StockStatusDTO {
	out := make([]dto.StockStatusDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.StockStatusDTO{
			ProductID:     it.ProductID,
			SKU:           it.SKU,
			ProductName:   it.ProductName,
			CategoryName:  it.CategoryName,
			Unit:          it.Unit,
			MinStockLevel: it.MinStockLevel,
			TotalStock:    it.TotalStock,
			Level:         string(it.Level),
			Shortage:      it.Shortage,
		})
	}
	return out
}
