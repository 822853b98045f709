package repository

// LabelCountRow is a count aggregate keyed by a text label
type LabelCountRow struct {
	Label string
	Count int64
}

// DateCountRow is a per-day count aggregate
type DateCountRow struct {
	Date  string
	Count int64
}

// DateAmountRow is a per-day sum aggregate
type DateAmountRow struct {
	Date   string
	Amount int64
}
