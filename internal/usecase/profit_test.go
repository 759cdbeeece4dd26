package usecase

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/capperdesk/grader/internal/domain/pick"
)

func TestComputeProfit_Win(t *testing.T) {
	t.Parallel()

	units, amount := computeProfit(pick.ResultWin, decimal.NewFromInt(2), 20000, 1.91)
	if want := decimal.NewFromFloat(1.82); !units.Equal(want) {
		t.Fatalf("unexpected profit units: got=%s want=%s", units, want)
	}
	if amount != 18200 {
		t.Fatalf("unexpected profit amount: got=%d want=18200", amount)
	}
}

func TestComputeProfit_ParlayWin(t *testing.T) {
	t.Parallel()

	units, _ := computeProfit(pick.ResultWin, decimal.NewFromInt(1), 10000, 3.82)
	if want := decimal.NewFromFloat(2.82); !units.Equal(want) {
		t.Fatalf("unexpected parlay profit units: got=%s want=%s", units, want)
	}
}

func TestComputeProfit_Loss(t *testing.T) {
	t.Parallel()

	units, amount := computeProfit(pick.ResultLoss, decimal.RequireFromString("1.5"), 15000, 1.91)
	if want := decimal.RequireFromString("-1.5"); !units.Equal(want) {
		t.Fatalf("unexpected loss units: got=%s want=%s", units, want)
	}
	if amount != -15000 {
		t.Fatalf("unexpected loss amount: got=%d want=-15000", amount)
	}
}

func TestComputeProfit_PushAndVoidReturnStake(t *testing.T) {
	t.Parallel()

	for _, result := range []pick.Result{pick.ResultPush, pick.ResultVoid, pick.ResultPending} {
		units, amount := computeProfit(result, decimal.NewFromInt(3), 30000, 2.5)
		if !units.IsZero() || amount != 0 {
			t.Fatalf("%s must zero both profits, got units=%s amount=%d", result, units, amount)
		}
	}
}

func TestComputeProfit_RoundsToWholeCents(t *testing.T) {
	t.Parallel()

	// 1001 cents at -110 pays 910.09..., which rounds to 910.
	_, amount := computeProfit(pick.ResultWin, decimal.NewFromInt(1), 1001, 1.909090909)
	if amount != 910 {
		t.Fatalf("unexpected rounded amount: got=%d want=910", amount)
	}
}
