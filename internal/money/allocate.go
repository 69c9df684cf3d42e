package money

// Allocation is the outcome of applying one payment to one outstanding
// balance.
type Allocation struct {
	// 本次冲抵的欠额，按欠款币种
	Applied Amounts
	// 实际收取的现金，按现金币种
	Consumed Amounts
	// 未用上的现金
	Leftover Amounts
}

// Allocate applies payment to remaining. Each currency pays its own side
// first; what is still open on one side is then covered by converting the
// unused cash of the other currency at rate. Negative inputs are treated as
// zero.
func Allocate(remaining, payment Amounts, rate Rate) Allocation {
	remaining = remaining.ClampZero()
	payment = payment.ClampZero()

	sameUSD := Min(payment.USD, remaining.USD)
	sameLC := Min(payment.LC, remaining.LC)

	openUSD := remaining.USD.Sub(sameUSD)
	openLC := remaining.LC.Sub(sameLC)
	freeUSD := payment.USD.Sub(sameUSD)
	freeLC := payment.LC.Sub(sameLC)

	applied := Amounts{USD: sameUSD, LC: sameLC}
	consumed := Amounts{USD: sameUSD, LC: sameLC}

	if rate.IsZero() {
		return Allocation{Applied: applied, Consumed: consumed, Leftover: payment.Sub(consumed)}
	}

	// 本币现金冲抵美元欠额
	if openUSD.IsPositive() && freeLC.IsPositive() {
		need := rate.ToLC(openUSD)
		use := Min(freeLC, need)
		covered := openUSD
		if use.LessThan(need) {
			covered = rate.ToUSD(use)
		}
		applied.USD = applied.USD.Add(covered)
		consumed.LC = consumed.LC.Add(use)
	}

	// 美元现金冲抵本币欠额
	if openLC.IsPositive() && freeUSD.IsPositive() {
		need := rate.ToUSD(openLC)
		use := Min(freeUSD, need)
		covered := openLC
		if use.LessThan(need) {
			covered = rate.ToLC(use)
		}
		applied.LC = applied.LC.Add(covered)
		consumed.USD = consumed.USD.Add(use)
	}

	return Allocation{
		Applied:  applied,
		Consumed: consumed,
		Leftover: payment.Sub(consumed),
	}
}
