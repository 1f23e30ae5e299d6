package bond

// Bond pairs validated terms with a consistent yield/price pair, one given
// and the other derived at construction. It is immutable once constructed.
type Bond struct {
	terms     Terms
	cashflows []Cashflow
	yield     float64
	price     float64
}

// NewFromYield constructs a bond quoted by its flat annualized yield; the
// price is derived.
func NewFromYield(t Terms, yield float64) (*Bond, error) {
	if err := t.validate("NewFromYield"); err != nil {
		return nil, err
	}
	if err := t.validateYield("NewFromYield", yield); err != nil {
		return nil, err
	}

	cfs, err := Schedule(t)
	if err != nil {
		return nil, err
	}
	price, err := PriceFromYield(t, yield)
	if err != nil {
		return nil, err
	}
	return &Bond{terms: t, cashflows: cfs, yield: yield, price: price}, nil
}

// NewFromPrice constructs a bond quoted by price; the yield is solved.
func NewFromPrice(t Terms, price float64) (*Bond, error) {
	if err := t.validate("NewFromPrice"); err != nil {
		return nil, err
	}

	sol, err := YieldFromPrice(t, price)
	if err != nil {
		return nil, err
	}
	cfs, err := Schedule(t)
	if err != nil {
		return nil, err
	}
	return &Bond{terms: t, cashflows: cfs, yield: sol.Yield, price: price}, nil
}

// Terms returns the bond's terms.
func (b *Bond) Terms() Terms {
	return b.terms
}

// Yield returns the bond's flat annualized yield (decimal).
func (b *Bond) Yield() float64 {
	return b.yield
}

// Price returns the bond's price in the same units as Par.
func (b *Bond) Price() float64 {
	return b.price
}

// Cashflows returns a copy of the bond's cash-flow schedule.
func (b *Bond) Cashflows() []Cashflow {
	out := make([]Cashflow, len(b.cashflows))
	copy(out, b.cashflows)
	return out
}

// Sensitivities returns the analytic sensitivity measures at the bond's
// own yield.
func (b *Bond) Sensitivities() (Sensitivities, error) {
	return ComputeSensitivities(b.terms, b.yield)
}
