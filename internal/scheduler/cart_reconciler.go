package scheduler

import (
	"github.com/dimaspr/belimart-backend/internal/app/service"
	"github.com/dimaspr/belimart-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CartReconciler periodically repairs carts whose denormalized totals drifted
// from the sum of their item subtotals
type CartReconciler struct {
	cron        *cron.Cron
	cartService service.CartService
}

func NewCartReconciler(cartService service.CartService) *CartReconciler {
	return &CartReconciler{
		cron:        cron.New(),
		cartService: cartService,
	}
}

// Start schedules the nightly reconciliation run
func (s *CartReconciler) Start() error {
	// Every day at 03:00, while traffic is low
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		logger.Info("Starting scheduled cart total reconciliation", nil)

		repaired, err := s.cartService.ReconcileCartTotals()
		if err != nil {
			logger.Error("Failed to reconcile cart totals from scheduler", err)
			return
		}

		logger.Info("Scheduled cart total reconciliation finished", map[string]interface{}{
			"carts_repaired": repaired,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for cart reconciliation", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cart reconciler started successfully (daily at 3:00 AM)", nil)

	return nil
}

// Stop stops the scheduler
func (s *CartReconciler) Stop() {
	logger.Info("Stopping cart reconciler...", nil)
	s.cron.Stop()
	logger.Info("Cart reconciler stopped", nil)
}
