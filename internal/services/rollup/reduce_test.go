package rollup

import (
	"testing"

	"github.com/sonsoflibertyy/lda/internal/models"
)

func quarterFiling(uuid, rid, cid, year, period string) models.Filing {
	return models.Filing{
		FilingUUID:   models.FlexString(uuid),
		RegistrantID: models.FlexString(rid),
		ClientID:     models.FlexString(cid),
		FilingYear:   models.FlexString(year),
		FilingPeriod: period,
	}
}

func TestReduceAmendments_AmountBeatsBlank(t *testing.T) {
	original := quarterFiling("a", "1", "2", "2024", "first_quarter")
	original.Income = 5000
	original.DtPosted = "2024-04-01"

	amendment := quarterFiling("b", "1", "2", "2024", "first_quarter")
	amendment.DtPosted = "2024-06-01" // later, but carries no figure

	// The row with a real amount wins regardless of input order.
	for _, rows := range [][]models.Filing{
		{original, amendment},
		{amendment, original},
	} {
		out := ReduceAmendments(rows, ReduceOptions{})
		if len(out) != 1 {
			t.Fatalf("got %d rows, want 1", len(out))
		}
		if out[0].UUID() != "a" {
			t.Errorf("winner = %s, want the $5,000 filing", out[0].UUID())
		}
		if out[0].EffectiveAmount != 5000 {
			t.Errorf("EffectiveAmount = %v, want 5000", out[0].EffectiveAmount)
		}
	}
}

func TestReduceAmendments_LargerAmountWins(t *testing.T) {
	a := quarterFiling("a", "1", "2", "2024", "first_quarter")
	a.Income = 10000
	b := quarterFiling("b", "1", "2", "2024", "first_quarter")
	b.Income = 12000

	out := ReduceAmendments([]models.Filing{a, b}, ReduceOptions{})
	if len(out) != 1 || out[0].UUID() != "b" {
		t.Fatalf("want the $12,000 amendment to win, got %+v", out)
	}
}

func TestReduceAmendments_LaterPostingBreaksTies(t *testing.T) {
	a := quarterFiling("a", "1", "2", "2024", "first_quarter")
	a.Income = 7500
	a.DtPosted = "2024-04-01"
	b := quarterFiling("b", "1", "2", "2024", "first_quarter")
	b.Income = 7500
	b.DtPosted = "2024-05-01"

	out := ReduceAmendments([]models.Filing{a, b}, ReduceOptions{})
	if len(out) != 1 || out[0].UUID() != "b" {
		t.Fatalf("want the later posting to win the tie, got %s", out[0].UUID())
	}
}

func TestReduceAmendments_MaxOfIncomeAndExpenses(t *testing.T) {
	f := quarterFiling("a", "1", "2", "2024", "first_quarter")
	f.Income = 3000
	f.Expenses = 9000

	out := ReduceAmendments([]models.Filing{f}, ReduceOptions{})
	if out[0].EffectiveAmount != 9000 {
		t.Errorf("EffectiveAmount = %v, want max(income, expenses) = 9000", out[0].EffectiveAmount)
	}
}

func TestReduceAmendments_LT5KTreatment(t *testing.T) {
	f := quarterFiling("a", "1", "2", "2024", "first_quarter")
	f.LessThan5K = true

	out := ReduceAmendments([]models.Filing{f}, ReduceOptions{})
	if out[0].EffectiveAmount != 0 {
		t.Errorf("default treatment: EffectiveAmount = %v, want 0", out[0].EffectiveAmount)
	}
	if out[0].HasNumericAmount {
		t.Error("a flagged-only row carries no numeric amount")
	}

	out = ReduceAmendments([]models.Filing{f}, ReduceOptions{TreatLT5KAs5000: true})
	if out[0].EffectiveAmount != 5000 {
		t.Errorf("nominal treatment: EffectiveAmount = %v, want 5000", out[0].EffectiveAmount)
	}
	if out[0].HasNumericAmount {
		t.Error("the nominal amount must not count as a concrete figure for winner selection")
	}
}

func TestReduceAmendments_DropsUnresolvableIdentity(t *testing.T) {
	ok := quarterFiling("a", "1", "2", "2024", "first_quarter")
	ok.Income = 100
	noClient := quarterFiling("b", "1", "", "2024", "first_quarter")
	noClient.Income = 900

	out := ReduceAmendments([]models.Filing{ok, noClient}, ReduceOptions{})
	if len(out) != 1 || out[0].UUID() != "a" {
		t.Fatalf("rows without a full grouping identity must be dropped, got %+v", out)
	}
}

func TestReduceAmendments_DistinctGroupsPreserved(t *testing.T) {
	a := quarterFiling("a", "1", "2", "2024", "first_quarter")
	a.Income = 100
	b := quarterFiling("b", "1", "2", "2024", "second_quarter")
	b.Income = 200
	c := quarterFiling("c", "1", "3", "2024", "first_quarter")
	c.Income = 300

	out := ReduceAmendments([]models.Filing{a, b, c}, ReduceOptions{})
	if len(out) != 3 {
		t.Fatalf("got %d rows, want 3 distinct groups", len(out))
	}
	// First-seen group order.
	if out[0].UUID() != "a" || out[1].UUID() != "b" || out[2].UUID() != "c" {
		t.Errorf("group order not preserved: %s %s %s", out[0].UUID(), out[1].UUID(), out[2].UUID())
	}
}

func TestReduceAmendments_FixedPoint(t *testing.T) {
	a := quarterFiling("a", "1", "2", "2024", "first_quarter")
	a.Income = 100
	b := quarterFiling("b", "1", "2", "2024", "first_quarter")
	b.Income = 200
	c := quarterFiling("c", "9", "9", "2023", "third_quarter")
	c.Expenses = 50

	once := ReduceAmendments([]models.Filing{a, b, c}, ReduceOptions{})

	input := make([]models.Filing, len(once))
	for i := range once {
		input[i] = once[i].Filing
	}
	twice := ReduceAmendments(input, ReduceOptions{})

	if len(once) != len(twice) {
		t.Fatalf("reduction is not idempotent: %d then %d rows", len(once), len(twice))
	}
	for i := range once {
		if once[i].UUID() != twice[i].UUID() || once[i].EffectiveAmount != twice[i].EffectiveAmount {
			t.Errorf("row %d changed on second reduction", i)
		}
	}
}
