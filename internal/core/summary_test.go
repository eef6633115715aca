package core

import "testing"

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TransactionCount != 0 || s.TotalIncome != 0 || s.TotalExpenses != 0 || s.NetIncome != 0 {
		t.Fatalf("empty summary not zeroed: %+v", s)
	}
	if len(s.ServicePerformance) != len(SeededServices) {
		t.Fatalf("expected %d seeded buckets, got %d", len(SeededServices), len(s.ServicePerformance))
	}
	for _, name := range SeededServices {
		if v, ok := s.ServicePerformance[name]; !ok || v != 0 {
			t.Fatalf("seed %q missing or nonzero: %v", name, v)
		}
	}
}

func TestSummarizeTotals(t *testing.T) {
	set := []Transaction{
		{Service: "Photography", AmountPaid: 100, Expenses: 20},
		{Service: "Makeup", AmountPaid: 50, Expenses: 0},
	}
	s := Summarize(set)
	if s.TotalIncome != 150 {
		t.Fatalf("total income = %v", s.TotalIncome)
	}
	if s.TotalExpenses != 20 {
		t.Fatalf("total expenses = %v", s.TotalExpenses)
	}
	if s.NetIncome != 130 {
		t.Fatalf("net income = %v", s.NetIncome)
	}
	if s.TransactionCount != 2 {
		t.Fatalf("count = %d", s.TransactionCount)
	}
	want := map[string]float64{"Photography": 100, "Makeup": 50, "Product Sales": 0}
	for name, amount := range want {
		if s.ServicePerformance[name] != amount {
			t.Fatalf("service %q = %v, want %v", name, s.ServicePerformance[name], amount)
		}
	}
}

func TestSummarizeOpenBuckets(t *testing.T) {
	// A service outside the seeded set gets its own bucket.
	set := []Transaction{
		{Service: "Hair Braiding", AmountPaid: 75},
		{Service: "Hair Braiding", AmountPaid: 25},
	}
	s := Summarize(set)
	if s.ServicePerformance["Hair Braiding"] != 100 {
		t.Fatalf("open bucket = %v", s.ServicePerformance["Hair Braiding"])
	}
	if len(s.ServicePerformance) != len(SeededServices)+1 {
		t.Fatalf("bucket count = %d", len(s.ServicePerformance))
	}
}

func TestSummarizeInvariants(t *testing.T) {
	sets := [][]Transaction{
		nil,
		{{Service: "Photography", AmountPaid: 10.5, Expenses: 3.25}},
		{
			{Service: "Makeup", AmountPaid: 19.75, Expenses: 5},
			{Service: "Product Sales", AmountPaid: 7.5, Expenses: 0.5},
			{Service: "Framing", AmountPaid: 42, Expenses: 10},
		},
	}
	for i, set := range sets {
		s := Summarize(set)
		if s.TotalIncome-s.TotalExpenses != s.NetIncome {
			t.Fatalf("set %d: income-expenses != net (%v - %v != %v)",
				i, s.TotalIncome, s.TotalExpenses, s.NetIncome)
		}
		var sum float64
		for _, v := range s.ServicePerformance {
			sum += v
		}
		if sum != s.TotalIncome {
			t.Fatalf("set %d: bucket sum %v != total income %v", i, sum, s.TotalIncome)
		}
	}
}
