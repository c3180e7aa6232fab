package models

type IncomeStats struct {
	TodayIncome float64 `json:"todayIncome"`
	MonthIncome float64 `json:"monthIncome"`
	TotalIncome float64 `json:"totalIncome"`
	Count       int     `json:"count"`
	Average     float64 `json:"average"`
}

type DailyIncome struct {
	Date   string  `json:"date"`
	Income float64 `json:"income"`
	Count  int     `json:"count"`
}

type DailyBookings struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
