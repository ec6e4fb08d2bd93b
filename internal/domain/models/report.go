package models

import "github.com/shopspring/decimal"

// DashboardMetrics are the franchise-wide KPIs computed by the backend.
type DashboardMetrics struct {
	TotalUnits      int              `json:"totalUnidades"`
	TotalStudents   int              `json:"totalAlunos"`
	MonthlyRevenue  decimal.Decimal  `json:"faturamentoMensal"`
	DelinquencyRate decimal.Decimal  `json:"inadimplencia"`
	Churn           decimal.Decimal  `json:"churn"`
	RevenueByUnit   []UnitRevenue    `json:"receitaPorUnidade"`
	RevenueTrend    []RevenueHistory `json:"evolucaoFaturamento"`
}

// UnitRevenue is one bar of the revenue-per-unit chart.
type UnitRevenue struct {
	Unit     string          `json:"unidade"`
	Revenue  decimal.Decimal `json:"receita"`
	Students int             `json:"alunos"`
}

// RevenueHistory is one month of the revenue trend.
type RevenueHistory struct {
	Month    string          `json:"mes"`
	Revenue  decimal.Decimal `json:"receita"`
	Expenses decimal.Decimal `json:"despesas"`
	Profit   decimal.Decimal `json:"lucro"`
}

// MonthlySummary is the cash result of a month.
type MonthlySummary struct {
	Month           string          `json:"month"`
	Revenue         decimal.Decimal `json:"revenue"`
	PendingRevenue  decimal.Decimal `json:"pending_revenue"`
	Expenses        decimal.Decimal `json:"expenses"`
	Payouts         decimal.Decimal `json:"payouts"`
	Result          decimal.Decimal `json:"result"`
	PaidInvoices    int             `json:"paid_invoices"`
	OverdueInvoices int             `json:"overdue_invoices"`
}
