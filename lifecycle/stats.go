package lifecycle

import (
	"time"

	"github.com/ray-remotestate/bazaar/models"
)

const weekDays = 7

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Income sums amountReceived over completed bookings. Windows are evaluated
// in now's location.
func Income(bookings []models.Booking, now time.Time) models.IncomeStats {
	loc := now.Location()
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var stats models.IncomeStats
	for i := range bookings {
		b := &bookings[i]
		if b.Status != models.BookingCompleted {
			continue
		}
		var amount float64
		if b.AmountReceived != nil {
			amount = *b.AmountReceived
		}
		stats.Count++
		stats.TotalIncome += amount

		at := b.CompletionTime().In(loc)
		if !at.Before(today) && at.Before(tomorrow) {
			stats.TodayIncome += amount
		}
		if !at.Before(monthStart) && at.Before(nextMonth) {
			stats.MonthIncome += amount
		}
	}
	if stats.Count > 0 {
		stats.Average = stats.TotalIncome / float64(stats.Count)
	}
	return stats
}

// WeekDates returns the seven dates ending today, oldest first.
func WeekDates(now time.Time) []string {
	today := startOfDay(now)
	dates := make([]string, weekDays)
	for i := 0; i < weekDays; i++ {
		dates[i] = today.AddDate(0, 0, i-(weekDays-1)).Format(models.BookingDateLayout)
	}
	return dates
}

// WeeklyIncome buckets completed bookings by completion day.
func WeeklyIncome(bookings []models.Booking, now time.Time) []models.DailyIncome {
	dates := WeekDates(now)
	series := make([]models.DailyIncome, len(dates))
	index := make(map[string]int, len(dates))
	for i, d := range dates {
		series[i] = models.DailyIncome{Date: d}
		index[d] = i
	}

	for i := range bookings {
		b := &bookings[i]
		if b.Status != models.BookingCompleted {
			continue
		}
		day := b.CompletionTime().In(now.Location()).Format(models.BookingDateLayout)
		j, ok := index[day]
		if !ok {
			continue
		}
		series[j].Count++
		if b.AmountReceived != nil {
			series[j].Income += *b.AmountReceived
		}
	}
	return series
}

// WeeklyBookings buckets bookings by the day they were requested.
func WeeklyBookings(bookings []models.Booking, now time.Time) []models.DailyBookings {
	dates := WeekDates(now)
	series := make([]models.DailyBookings, len(dates))
	index := make(map[string]int, len(dates))
	for i, d := range dates {
		series[i] = models.DailyBookings{Date: d}
		index[d] = i
	}

	for i := range bookings {
		day := bookings[i].CreatedAt.In(now.Location()).Format(models.BookingDateLayout)
		if j, ok := index[day]; ok {
			series[j].Count++
		}
	}
	return series
}
