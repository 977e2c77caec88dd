package jobs

import (
	"time"

	"go.uber.org/zap"

	"github.com/mkarani/servicehub/database"
	"github.com/mkarani/servicehub/models"
	"github.com/mkarani/servicehub/utils"
)

// CompletePastBookings marks confirmed bookings whose end time passed more
// than an hour ago as completed. This is the non-interactive path by which a
// booking reaches its final status when the provider never closes it out.
func CompletePastBookings() {
	logger := utils.GetLogger()

	cutoff := time.Now().Add(-1 * time.Hour)

	res := database.DB.Model(&models.Booking{}).
		Where("status = ? AND end_time < ?", models.BookingStatusConfirmed, cutoff).
		Update("status", models.BookingStatusCompleted)
	if res.Error != nil {
		logger.Error("failed to complete past bookings", zap.Error(res.Error))
		return
	}

	if res.RowsAffected > 0 {
		logger.Info("completed past bookings", zap.Int64("count", res.RowsAffected))
	}
}
