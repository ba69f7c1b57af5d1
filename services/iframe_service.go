package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kendall-kelly/chatwidget-api/generator"
	"github.com/kendall-kelly/chatwidget-api/logger"
	"github.com/kendall-kelly/chatwidget-api/models"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound is returned when no order has the requested number
	ErrOrderNotFound = errors.New("order not found")
	// ErrBuildNotFound is returned when an order has never been generated
	ErrBuildNotFound = errors.New("widget has not been generated")
)

// IframeGenerator is the part of generator.Pipeline the service depends on
type IframeGenerator interface {
	GenerateIframe(ctx context.Context, order models.Order) (string, error)
}

// IframeServiceInterface defines the widget generation operations
type IframeServiceInterface interface {
	Generate(ctx context.Context, orderNumber string) (*models.WidgetBuild, error)
	Status(ctx context.Context, orderNumber string) (*models.WidgetBuild, error)
}

// IframeService generates widgets for stored orders and records the outcome
type IframeService struct {
	db        *gorm.DB
	generator IframeGenerator
	log       logger.Logger
	inflight  singleflight.Group
}

var iframeServiceInstance IframeServiceInterface

// NewIframeService creates the service
func NewIframeService(db *gorm.DB, gen IframeGenerator, log logger.Logger) *IframeService {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &IframeService{db: db, generator: gen, log: log}
}

// GetIframeService returns the process-wide service instance
func GetIframeService() IframeServiceInterface {
	return iframeServiceInstance
}

// SetIframeService sets the service instance (main wires it, tests replace it)
func SetIframeService(service IframeServiceInterface) {
	iframeServiceInstance = service
}

type generation struct {
	build *models.WidgetBuild
	err   error
}

// Generate runs the pipeline for the order and records the result. Requests
// for the same order that arrive while a run is in flight share its result.
// On failure the returned build carries the recorded failure along with the
// pipeline error.
func (s *IframeService) Generate(ctx context.Context, orderNumber string) (*models.WidgetBuild, error) {
	order, err := s.findOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	// The shared run must outlive whichever caller started it.
	runCtx := context.WithoutCancel(ctx)
	v, _, shared := s.inflight.Do(orderNumber, func() (interface{}, error) {
		publicPath, genErr := s.generator.GenerateIframe(runCtx, *order)
		build, recErr := s.record(runCtx, order.OrderNumber, publicPath, genErr)
		if recErr != nil {
			// the pipeline's error stays first so its code still drives the response
			return generation{err: errors.Join(genErr, recErr)}, nil
		}
		return generation{build: build, err: genErr}, nil
	})
	result := v.(generation)
	if shared {
		s.log.Debug("joined in-flight widget generation", map[string]interface{}{"order_number": orderNumber})
	}
	return result.build, result.err
}

// Status returns the most recent recorded generation for the order
func (s *IframeService) Status(ctx context.Context, orderNumber string) (*models.WidgetBuild, error) {
	if _, err := s.findOrder(ctx, orderNumber); err != nil {
		return nil, err
	}

	var build models.WidgetBuild
	err := s.db.WithContext(ctx).Where("order_number = ?", orderNumber).First(&build).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBuildNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load widget build: %w", err)
	}
	return &build, nil
}

func (s *IframeService) findOrder(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("order_number = ?", orderNumber).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// record upserts the order's build row. A failed run keeps the previous
// public path since the previously published artifacts are still served.
func (s *IframeService) record(ctx context.Context, orderNumber, publicPath string, genErr error) (*models.WidgetBuild, error) {
	var build models.WidgetBuild
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.WidgetBuild{OrderNumber: orderNumber}).FirstOrInit(&build).Error; err != nil {
			return err
		}
		build.Identifier = generator.NewIdentifier(orderNumber)
		build.Attempts++
		if genErr != nil {
			code := string(generator.CodeOf(genErr))
			build.Status = models.BuildStatusFailed
			build.ErrorCode = &code
		} else {
			build.Status = models.BuildStatusReady
			build.PublicPath = &publicPath
			build.ErrorCode = nil
		}
		return tx.Save(&build).Error
	})
	if err != nil {
		s.log.WithError(err).Error("failed to record widget build", map[string]interface{}{"order_number": orderNumber})
		return nil, fmt.Errorf("failed to record widget build: %w", err)
	}
	return &build, nil
}
