package inventory

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/blake2b"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Límites de los campos libres del comando.
const (
	maxIdempotencyKeyLen = 128
	maxReferenceLen      = 100
	maxNotesLen          = 1000
)

// RecordMovementCommand entrada tipada de RecordMovement.
// Para adjustment, Quantity es el saldo objetivo.
type RecordMovementCommand struct {
	TenantID       string
	ProductID      string
	WarehouseID    string
	Type           entity.MovementType
	Quantity       decimal.Decimal
	ReferenceNo    string
	Notes          string
	IdempotencyKey string
	ActorID        string
}

// Key clave del saldo afectado.
func (c RecordMovementCommand) Key() entity.StockKey {
	return entity.StockKey{TenantID: c.TenantID, ProductID: c.ProductID, WarehouseID: c.WarehouseID}
}

func (c *RecordMovementCommand) normalize() {
	c.ProductID = strings.TrimSpace(c.ProductID)
	c.WarehouseID = strings.TrimSpace(c.WarehouseID)
	c.IdempotencyKey = strings.TrimSpace(c.IdempotencyKey)
	c.ReferenceNo = strings.TrimSpace(c.ReferenceNo)
	c.Notes = strings.TrimSpace(c.Notes)
	c.Type = entity.MovementType(strings.ToLower(strings.TrimSpace(string(c.Type))))
}

func (c RecordMovementCommand) validate() error {
	if c.TenantID == "" {
		return domain.ErrUnauthorized
	}
	if c.ProductID == "" || c.WarehouseID == "" {
		return domain.Invalid("product_id y warehouse_id son obligatorios")
	}
	if err := inventory.ValidateQuantity(c.Type, c.Quantity); err != nil {
		return err
	}
	if c.IdempotencyKey == "" {
		return domain.Invalid("idempotency_key es obligatorio")
	}
	if len(c.IdempotencyKey) > maxIdempotencyKeyLen {
		return domain.Invalid("idempotency_key admite como máximo %d caracteres", maxIdempotencyKeyLen)
	}
	if len(c.ReferenceNo) > maxReferenceLen {
		return domain.Invalid("reference_no admite como máximo %d caracteres", maxReferenceLen)
	}
	if len(c.Notes) > maxNotesLen {
		return domain.Invalid("notes admite como máximo %d caracteres", maxNotesLen)
	}
	return nil
}

// fingerprint resume el contenido del comando; dos envíos con la misma clave deben coincidir.
func (c RecordMovementCommand) fingerprint() string {
	payload := strings.Join([]string{
		c.ProductID,
		c.WarehouseID,
		string(c.Type),
		c.Quantity.StringFixed(inventory.QuantityScale),
		c.ReferenceNo,
		c.Notes,
	}, "\x1f")
	sum := blake2b.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// MovementResult resultado de RecordMovement.
// En un reintento (Replayed) Movement es el registro original y Balance el saldo actual.
type MovementResult struct {
	Movement *entity.StockMovement
	Balance  *entity.Stock
	Replayed bool
}

// RecordMovement aplica un movimiento al ledger y al saldo como una sola unidad atómica.
//
// Como máximo una mutación de saldo por clave de idempotencia: si la clave ya fue aplicada
// devuelve el resultado previo sin volver a aplicarlo. Las mutaciones de una misma clave de
// saldo se serializan; claves distintas avanzan en paralelo.
// Errores: ErrInvalidInput (incluye ErrIdempotencyMismatch), ErrNotFound, ErrConflict tras
// agotar reintentos y ErrStorage.
func (uc *StockLedgerUseCase) RecordMovement(ctx context.Context, cmd RecordMovementCommand) (*MovementResult, error) {
	cmd.normalize()
	ctx, span := tracer.Start(ctx, "inventory.RecordMovement", trace.WithAttributes(
		attribute.String("tenant.id", cmd.TenantID),
		attribute.String("product.id", cmd.ProductID),
		attribute.String("warehouse.id", cmd.WarehouseID),
		attribute.String("movement.type", string(cmd.Type)),
	))
	defer span.End()

	res, err := uc.recordMovement(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Bool("movement.replayed", res.Replayed))
	return res, nil
}

func (uc *StockLedgerUseCase) recordMovement(ctx context.Context, cmd RecordMovementCommand) (*MovementResult, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	fp := cmd.fingerprint()

	// Reintento del cliente: se resuelve sin tomar la sección exclusiva.
	prev, err := uc.movRepo.GetByIdempotencyKey(ctx, cmd.TenantID, cmd.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		return uc.replay(prev, fp)
	}

	if err := uc.ensureReferences(ctx, cmd.TenantID, cmd.ProductID, cmd.WarehouseID, true); err != nil {
		return nil, err
	}

	key := cmd.Key()
	var result *MovementResult
	err = uc.withKeyLock(ctx, key, "record movement", func() error {
		r, err := uc.applyInTx(ctx, key, cmd, fp)
		result = r
		return err
	})
	if errors.Is(err, domain.ErrDuplicate) {
		// Otra instancia confirmó la misma clave entre la verificación y el commit.
		prev, gerr := uc.movRepo.GetByIdempotencyKey(ctx, cmd.TenantID, cmd.IdempotencyKey)
		if gerr != nil {
			return nil, gerr
		}
		if prev == nil {
			return nil, err
		}
		return uc.replay(prev, fp)
	}
	if err != nil {
		return nil, err
	}

	mov := result.Movement
	var ev *zerolog.Event
	switch {
	case result.Replayed:
		ev = uc.log.Info()
	case mov.Clamped:
		ev = uc.log.Warn().
			Str("requested", mov.Quantity.String()).
			Str("balance_before", mov.BalanceBefore.String())
	default:
		ev = uc.log.Debug()
	}
	ev.Str("tenant_id", mov.TenantID).
		Str("product_id", mov.ProductID).
		Str("warehouse_id", mov.WarehouseID).
		Str("movement_id", mov.ID).
		Str("idempotency_key", mov.IdempotencyKey).
		Str("type", string(mov.Type)).
		Str("balance", result.Balance.Quantity.String()).
		Bool("replayed", result.Replayed).
		Msg(movementLogMessage(result))
	return result, nil
}

func movementLogMessage(r *MovementResult) string {
	switch {
	case r.Replayed:
		return "movimiento repetido, se devuelve el resultado original"
	case r.Movement.Clamped:
		return "salida mayor al saldo disponible, saldo recortado en cero"
	default:
		return "movimiento aplicado"
	}
}

// applyInTx corre los pasos del registro dentro de una transacción, con la sección exclusiva ya tomada.
func (uc *StockLedgerUseCase) applyInTx(ctx context.Context, key entity.StockKey, cmd RecordMovementCommand, fp string) (*MovementResult, error) {
	var result *MovementResult
	err := uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, stockRepo repository.StockRepository) error {
		// La clave pudo confirmarse mientras se esperaba la sección exclusiva.
		prev, err := movRepo.GetByIdempotencyKey(ctx, cmd.TenantID, cmd.IdempotencyKey)
		if err != nil {
			return err
		}
		if prev != nil {
			result, err = uc.replay(prev, fp)
			return err
		}

		stock, err := stockRepo.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		after, clamped := inventory.Apply(stock.Quantity, cmd.Type, cmd.Quantity)
		if err := inventory.ValidateBalance(after); err != nil {
			return err
		}
		createdAt := inventory.NextTimestamp(uc.now(), stock.LastUpdated)

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("%w: generar id de movimiento: %w", domain.ErrStorage, err)
		}
		mov := &entity.StockMovement{
			ID:             id.String(),
			TenantID:       cmd.TenantID,
			ProductID:      cmd.ProductID,
			WarehouseID:    cmd.WarehouseID,
			Type:           cmd.Type,
			Quantity:       cmd.Quantity,
			ReferenceNo:    cmd.ReferenceNo,
			Notes:          cmd.Notes,
			IdempotencyKey: cmd.IdempotencyKey,
			Fingerprint:    fp,
			BalanceBefore:  stock.Quantity,
			BalanceAfter:   after,
			Clamped:        clamped,
			CreatedBy:      cmd.ActorID,
			CreatedAt:      createdAt,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}

		next := *stock
		next.Quantity = after
		next.LastUpdated = createdAt
		next.Version = stock.Version + 1
		if err := stockRepo.Upsert(ctx, &next); err != nil {
			return err
		}
		result = &MovementResult{Movement: mov, Balance: &next}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// replay devuelve el resultado de un movimiento ya aplicado si el contenido coincide.
// El saldo es el que dejó ese movimiento (BalanceAfter), no el actual.
func (uc *StockLedgerUseCase) replay(prev *entity.StockMovement, fp string) (*MovementResult, error) {
	if prev.Fingerprint != fp {
		return nil, fmt.Errorf("%w (%s)", domain.ErrIdempotencyMismatch, prev.IdempotencyKey)
	}
	balance := &entity.Stock{
		TenantID:    prev.TenantID,
		ProductID:   prev.ProductID,
		WarehouseID: prev.WarehouseID,
		Quantity:    prev.BalanceAfter,
		LastUpdated: prev.CreatedAt,
	}
	return &MovementResult{Movement: prev, Balance: balance, Replayed: true}, nil
}
