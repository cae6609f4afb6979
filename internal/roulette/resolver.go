package roulette

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultRangeMax is the highest pocket on a single-zero wheel.
	DefaultRangeMax = 36

	// CoinFlipRangeMax reproduces the variant that only ever drew 0 or 1.
	CoinFlipRangeMax = 1

	// PayoutMultiplier is applied to the stake on a straight-up win.
	PayoutMultiplier = 36
)

var payoutMultiplier = decimal.NewFromInt(PayoutMultiplier)

type OutcomeKind string

const (
	OutcomeRejected     OutcomeKind = "rejected"
	OutcomeWon          OutcomeKind = "won"
	OutcomeLost         OutcomeKind = "lost"
	OutcomeLostDepleted OutcomeKind = "lost_depleted"
)

// Outcome is the immutable result of one call to Resolve.
type Outcome struct {
	Kind            OutcomeKind     `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	ChosenNumber    int             `json:"chosen_number"`
	DrawnNumber     int             `json:"drawn_number"`
	Won             bool            `json:"won"`
	Payout          decimal.Decimal `json:"payout"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	BalanceDepleted bool            `json:"balance_depleted"`
	Message         string          `json:"message"`
}

func (o Outcome) Rejected() bool {
	return o.Kind == OutcomeRejected
}

type Resolver struct {
	rangeMax int
	source   Source
}

func NewResolver(rangeMax int, source Source) (*Resolver, error) {
	if rangeMax < 0 {
		return nil, fmt.Errorf("range max must be non-negative, got %d", rangeMax)
	}
	if source == nil {
		return nil, fmt.Errorf("random source is required")
	}

	return &Resolver{
		rangeMax: rangeMax,
		source:   source,
	}, nil
}

func (r *Resolver) RangeMax() int {
	return r.rangeMax
}

// Resolve settles a single straight-up bet against balance. Bad input is
// reported as a rejected outcome and never consults the random source.
func (r *Resolver) Resolve(balance decimal.Decimal, amountText, numberText string) Outcome {
	return r.resolveWith(r.source, balance, amountText, numberText)
}

// ResolveWith is Resolve with a per-round source, used for seeded fair draws.
func (r *Resolver) ResolveWith(source Source, balance decimal.Decimal, amountText, numberText string) Outcome {
	return r.resolveWith(source, balance, amountText, numberText)
}

func (r *Resolver) resolveWith(source Source, balance decimal.Decimal, amountText, numberText string) Outcome {
	amount, number, ok := r.validate(balance, amountText, numberText)
	if !ok {
		return Outcome{
			Kind:            OutcomeRejected,
			PreviousBalance: balance,
			NewBalance:      balance,
			Payout:          decimal.Zero,
			Message:         RejectedMessage,
		}
	}

	drawn := source.Intn(r.rangeMax + 1)

	out := Outcome{
		Amount:          amount,
		ChosenNumber:    number,
		DrawnNumber:     drawn,
		PreviousBalance: balance,
		Payout:          decimal.Zero,
	}

	newBalance := balance.Sub(amount)
	if drawn == number {
		out.Won = true
		out.Payout = amount.Mul(payoutMultiplier)
		newBalance = newBalance.Add(out.Payout)
	}

	out.NewBalance = newBalance
	out.BalanceDepleted = !newBalance.IsPositive()

	switch {
	case out.Won:
		out.Kind = OutcomeWon
	case out.BalanceDepleted:
		out.Kind = OutcomeLostDepleted
	default:
		out.Kind = OutcomeLost
	}
	out.Message = message(out)

	return out
}

func (r *Resolver) validate(balance decimal.Decimal, amountText, numberText string) (decimal.Decimal, int, bool) {
	amount, err := parseAmount(amountText)
	if err != nil || !amount.IsPositive() || amount.GreaterThan(balance) {
		return decimal.Zero, 0, false
	}

	number, err := strconv.Atoi(strings.TrimSpace(numberText))
	if err != nil || number < 0 || number > r.rangeMax {
		return decimal.Zero, 0, false
	}

	return amount, number, true
}
