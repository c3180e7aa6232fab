package lifecycle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ray-remotestate/bazaar/models"
)

var fixedNow = time.Date(2026, time.March, 15, 14, 30, 0, 0, time.UTC)

func completed(amount float64, completedAt *time.Time, updatedAt time.Time) models.Booking {
	return models.Booking{
		ID:             uuid.New(),
		Status:         models.BookingCompleted,
		AmountReceived: &amount,
		CompletedAt:    completedAt,
		UpdatedAt:      updatedAt,
		CreatedAt:      updatedAt,
	}
}

func at(t time.Time) *time.Time { return &t }

func TestIncome(t *testing.T) {
	t.Run("should return zeros when there are no bookings", func(t *testing.T) {
		got := Income(nil, fixedNow)
		want := models.IncomeStats{}
		if got != want {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got)
		}
	})

	t.Run("should bucket completed bookings into today, month and total", func(t *testing.T) {
		bookings := []models.Booking{
			completed(500, at(fixedNow.Add(-2*time.Hour)), fixedNow),
			completed(300, at(fixedNow.AddDate(0, 0, -3)), fixedNow),
			completed(200, at(fixedNow.AddDate(0, -2, 0)), fixedNow),
			{Status: models.BookingConfirmed, UpdatedAt: fixedNow},
			{Status: models.BookingPending, UpdatedAt: fixedNow},
		}

		got := Income(bookings, fixedNow)
		want := models.IncomeStats{
			TodayIncome: 500,
			MonthIncome: 800,
			TotalIncome: 1000,
			Count:       3,
			Average:     1000.0 / 3,
		}
		if got != want {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got)
		}
	})

	t.Run("should fall back to updated time when completedAt is missing", func(t *testing.T) {
		bookings := []models.Booking{
			completed(120, nil, fixedNow.Add(-time.Hour)),
			completed(80, nil, fixedNow.AddDate(0, 0, -20)),
		}

		got := Income(bookings, fixedNow)
		if got.TodayIncome != 120 {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", 120.0, got.TodayIncome)
		}
		if got.MonthIncome != 120 {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", 120.0, got.MonthIncome)
		}
		if got.TotalIncome != 200 {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", 200.0, got.TotalIncome)
		}
	})

	t.Run("should grow total by exactly the completion amount", func(t *testing.T) {
		bookings := []models.Booking{completed(250, at(fixedNow.AddDate(0, 0, -1)), fixedNow)}
		before := Income(bookings, fixedNow)

		bookings = append(bookings, completed(500, at(fixedNow), fixedNow))
		after := Income(bookings, fixedNow)

		if after.TotalIncome-before.TotalIncome != 500 {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", 500.0, after.TotalIncome-before.TotalIncome)
		}
		if after.Count-before.Count != 1 {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", 1, after.Count-before.Count)
		}
	})

	t.Run("should evaluate today in the location of now", func(t *testing.T) {
		kolkata := time.FixedZone("IST", 5*3600+1800)
		now := time.Date(2026, time.March, 15, 1, 0, 0, 0, kolkata)
		// 2026-03-14 19:00 UTC is 2026-03-15 00:30 in IST
		b := completed(90, at(time.Date(2026, time.March, 14, 19, 0, 0, 0, time.UTC)), now)

		got := Income([]models.Booking{b}, now)
		if got.TodayIncome != 90 {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", 90.0, got.TodayIncome)
		}
	})
}

func TestWeekDates(t *testing.T) {
	got := WeekDates(fixedNow)
	want := []string{"2026-03-09", "2026-03-10", "2026-03-11", "2026-03-12", "2026-03-13", "2026-03-14", "2026-03-15"}

	if len(got) != len(want) {
		t.Fatalf("\nwanted:\n%d\ngot:\n%d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	}
}

func TestWeeklyIncome(t *testing.T) {
	t.Run("should return seven zeroed days when nothing matches", func(t *testing.T) {
		got := WeeklyIncome(nil, fixedNow)
		if len(got) != 7 {
			t.Fatalf("\nwanted:\n7\ngot:\n%d", len(got))
		}
		for _, day := range got {
			if day.Income != 0 || day.Count != 0 {
				t.Fatalf("\nwanted:\nzero day\ngot:\n%+v", day)
			}
		}
		if got[6].Date != "2026-03-15" {
			t.Fatalf("\nwanted:\n%q\ngot:\n%q", "2026-03-15", got[6].Date)
		}
	})

	t.Run("should sum income per completion day", func(t *testing.T) {
		bookings := []models.Booking{
			completed(100, at(fixedNow), fixedNow),
			completed(50, at(fixedNow.Add(-time.Hour)), fixedNow),
			completed(70, at(fixedNow.AddDate(0, 0, -6)), fixedNow),
			completed(999, at(fixedNow.AddDate(0, 0, -7)), fixedNow),
			{Status: models.BookingConfirmed, UpdatedAt: fixedNow},
		}

		got := WeeklyIncome(bookings, fixedNow)
		if got[6].Income != 150 || got[6].Count != 2 {
			t.Fatalf("\nwanted:\n{Income:150 Count:2}\ngot:\n%+v", got[6])
		}
		if got[0].Income != 70 || got[0].Count != 1 {
			t.Fatalf("\nwanted:\n{Income:70 Count:1}\ngot:\n%+v", got[0])
		}
		for _, day := range got[1:6] {
			if day.Income != 0 || day.Count != 0 {
				t.Fatalf("\nwanted:\nzero day\ngot:\n%+v", day)
			}
		}
	})
}

func TestWeeklyBookings(t *testing.T) {
	bookings := []models.Booking{
		{Status: models.BookingPending, CreatedAt: fixedNow},
		{Status: models.BookingCancelled, CreatedAt: fixedNow.Add(-3 * time.Hour)},
		{Status: models.BookingCompleted, CreatedAt: fixedNow.AddDate(0, 0, -2)},
		{Status: models.BookingPending, CreatedAt: fixedNow.AddDate(0, 0, -10)},
	}

	got := WeeklyBookings(bookings, fixedNow)
	if len(got) != 7 {
		t.Fatalf("\nwanted:\n7\ngot:\n%d", len(got))
	}
	if got[6].Count != 2 {
		t.Fatalf("\nwanted:\n2\ngot:\n%d", got[6].Count)
	}
	if got[4].Count != 1 {
		t.Fatalf("\nwanted:\n1\ngot:\n%d", got[4].Count)
	}

	total := 0
	for _, day := range got {
		total += day.Count
	}
	if total != 3 {
		t.Fatalf("\nwanted:\n3\ngot:\n%d", total)
	}
}
