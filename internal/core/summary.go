package core

// SeededServices are the categories every summary reports even when no
// transaction references them. Any other service value encountered gets
// its own bucket.
var SeededServices = []string{"Photography", "Makeup", "Product Sales"}

// Summary is the transient aggregate the dashboard renders. Monetary
// fields are raw float64 sums; no rounding rule is applied, so long runs
// of fractional amounts accumulate ordinary floating point drift.
type Summary struct {
	TotalIncome        float64            `json:"totalIncome"`
	TotalExpenses      float64            `json:"totalExpenses"`
	NetIncome          float64            `json:"netIncome"`
	ServicePerformance map[string]float64 `json:"servicePerformance"`
	TransactionCount   int                `json:"transactionCount"`
}

// Summarize folds a transaction set into a Summary in one pass.
func Summarize(transactions []Transaction) Summary {
	s := Summary{
		ServicePerformance: make(map[string]float64, len(SeededServices)),
	}
	for _, name := range SeededServices {
		s.ServicePerformance[name] = 0
	}
	for _, t := range transactions {
		s.TotalIncome += t.AmountPaid
		s.TotalExpenses += t.Expenses
		s.ServicePerformance[t.Service] += t.AmountPaid
	}
	s.NetIncome = s.TotalIncome - s.TotalExpenses
	s.TransactionCount = len(transactions)
	return s
}
