package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/ports"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/storefront-api/internal/application/catalog")

// Límites de paginación hacia el catálogo externo.
const (
	MaxPageSize     = 250
	DefaultMaxPages = 40
	maxReportErrors = 20
)

// SyncConfig parámetros de la sincronización.
type SyncConfig struct {
	PageSize int
	MaxPages int
	Policy   FieldPolicy
}

// SyncUseCase sincroniza el catálogo externo con el local haciendo upsert por ExternalID.
// No archiva productos ausentes en el origen.
type SyncUseCase struct {
	source  ports.CatalogSource
	repo    repository.ProductRepository
	cfg     SyncConfig
	log     *logger.Logger
	metrics ports.Recorder
	now     func() time.Time
}

// NewSyncUseCase construye el caso de uso. metrics y log pueden ser nil.
func NewSyncUseCase(source ports.CatalogSource, repo repository.ProductRepository, cfg SyncConfig, log *logger.Logger, metrics ports.Recorder) *SyncUseCase {
	if cfg.PageSize <= 0 || cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if log == nil {
		log = logger.Nop()
	}
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &SyncUseCase{source: source, repo: repo, cfg: cfg, log: log.Named("catalog_sync"), metrics: metrics, now: time.Now}
}

// SyncAll recorre todas las páginas del catálogo externo (hasta MaxPages).
// Fallas de un registro se cuentan y no detienen la corrida; una falla al traer una página
// la aborta con ErrUpstream y devuelve el reporte parcial junto al error.
func (uc *SyncUseCase) SyncAll(ctx context.Context) (*dto.SyncReport, error) {
	ctx, span := tracer.Start(ctx, "catalog.SyncAll")
	defer span.End()
	start := uc.now()

	report := &dto.SyncReport{}
	cursor := ""
	for {
		if report.Pages >= uc.cfg.MaxPages {
			report.Truncated = true
			break
		}
		page, next, err := uc.source.ListProducts(ctx, uc.cfg.PageSize, cursor)
		if err != nil {
			if !errors.Is(err, domain.ErrUpstream) {
				err = fmt.Errorf("%w: %v", domain.ErrUpstream, err)
			}
			err = fmt.Errorf("catálogo externo, página %d: %w", report.Pages+1, err)
			report.Message = uc.message(report) + " Corrida interrumpida: " + err.Error()
			span.RecordError(err)
			span.SetStatus(codes.Error, "page fetch failed")
			uc.metrics.SyncRun("aborted", uc.now().Sub(start), report.Created, report.Updated, report.Failed)
			uc.log.Error().Err(err).Int("pages", report.Pages).Int("fetched", report.Fetched).Msg("sincronización abortada")
			return report, err
		}
		report.Pages++
		for _, rp := range page {
			report.Fetched++
			uc.upsert(ctx, rp, report)
		}
		if next == "" {
			break
		}
		cursor = next
	}

	report.Message = uc.message(report)
	span.SetAttributes(
		attribute.Int("sync.fetched", report.Fetched),
		attribute.Int("sync.created", report.Created),
		attribute.Int("sync.updated", report.Updated),
		attribute.Int("sync.failed", report.Failed),
	)
	uc.metrics.SyncRun("ok", uc.now().Sub(start), report.Created, report.Updated, report.Failed)
	uc.log.Info().
		Int("fetched", report.Fetched).Int("created", report.Created).Int("updated", report.Updated).
		Int("unchanged", report.Unchanged).Int("failed", report.Failed).Bool("truncated", report.Truncated).
		Msg("sincronización completada")
	return report, nil
}

func (uc *SyncUseCase) upsert(ctx context.Context, rp ports.RemoteProduct, report *dto.SyncReport) {
	if err := uc.upsertOne(ctx, rp, report); err != nil {
		report.Failed++
		if len(report.Errors) < maxReportErrors {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", rp.ID, err))
		}
		uc.log.Warn().Err(err).Str("external_id", rp.ID).Msg("producto no sincronizado")
	}
}

func (uc *SyncUseCase) upsertOne(ctx context.Context, rp ports.RemoteProduct, report *dto.SyncReport) error {
	mapped, err := MapProduct(rp)
	if err != nil {
		return err
	}
	current, err := uc.repo.GetByExternalID(ctx, mapped.ExternalID)
	if err != nil {
		return err
	}
	now := uc.now().UTC()
	if current == nil {
		mapped.ID = uuid.New().String()
		mapped.CreatedAt = now
		mapped.UpdatedAt = now
		if err := uc.repo.Create(ctx, mapped); err != nil {
			return err
		}
		report.Created++
		return nil
	}
	merged := uc.cfg.Policy.Merge(current, mapped)
	if SameContent(current, merged) {
		report.Unchanged++
		return nil
	}
	merged.UpdatedAt = now
	if err := uc.repo.Update(ctx, merged); err != nil {
		return err
	}
	report.Updated++
	return nil
}

func (uc *SyncUseCase) message(r *dto.SyncReport) string {
	msg := fmt.Sprintf("Sincronizados %d productos desde Shopify (%d creados, %d actualizados, %d sin cambios, %d con error).",
		r.Synced()+r.Unchanged, r.Created, r.Updated, r.Unchanged, r.Failed)
	if r.Truncated {
		msg += fmt.Sprintf(" Se alcanzó el límite de %d páginas; el resto del catálogo no se procesó.", uc.cfg.MaxPages)
	}
	return msg + " Los productos eliminados en Shopify no se reconcilian ni se archivan."
}
