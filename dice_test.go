package eurydice

import (
	"math/rand"
	"testing"
)

func seededIP(t *testing.T, seed int64) *Interpreter {
	t.Helper()
	return NewInterpreter(WithRand(rand.New(rand.NewSource(seed))))
}

// tickBuiltin installs a deterministic roll source: tick() returns the
// values in order, then repeats the last one.
func tickBuiltin(ip *Interpreter, vals []float64) {
	i := 0
	ip.RegisterBuiltin("tick", 1, func(_ *Interpreter, m *Machine, _ []Value) {
		v := vals[len(vals)-1]
		if i < len(vals) {
			v = vals[i]
			i++
		}
		m.Yield(Num(v))
	})
}

func Test_Dice_RollRange(t *testing.T) {
	ip := seededIP(t, 1)
	for i := 0; i < 200; i++ {
		v, err := ip.EvalSource("d 20")
		if err != nil {
			t.Fatalf("eval: %v", err)
		}
		n := v.Data.(float64)
		if n < 1 || n > 20 || n != float64(int(n)) {
			t.Fatalf("roll %d: %g out of range", i, n)
		}
	}
}

func Test_Dice_SeededRollsReplay(t *testing.T) {
	a, err := seededIP(t, 7).EvalSource("10 d6")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	b, err := seededIP(t, 7).EvalSource("10 d6")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !deepEqual(a, b) {
		t.Fatalf("same seed diverged: %s vs %s", FormatValue(a), FormatValue(b))
	}
}

func Test_Dice_SidesValidation(t *testing.T) {
	wantErrContains(t, evalErr(t, "d 0"), "sides")
	wantErrContains(t, evalErr(t, "d(-2)"), "sides")
	// Fractional sides round first: d 0.4 has zero sides.
	wantErrContains(t, evalErr(t, "d(0.4)"), "sides")
}

func Test_Dice_ArrayFaces(t *testing.T) {
	ip := seededIP(t, 3)
	for i := 0; i < 50; i++ {
		v, err := ip.EvalSource(`d ["a". "b"]`)
		if err != nil {
			t.Fatalf("eval: %v", err)
		}
		if s := v.Data.(string); s != "a" && s != "b" {
			t.Fatalf("unexpected face %q", s)
		}
	}
	// Nested arrays roll down to a leaf.
	for i := 0; i < 50; i++ {
		v, err := ip.EvalSource("d [[1. 2]. [3]]")
		if err != nil {
			t.Fatalf("eval: %v", err)
		}
		if n := v.Data.(float64); n != 1 && n != 2 && n != 3 {
			t.Fatalf("unexpected leaf %g", n)
		}
	}
	wantErrContains(t, evalErr(t, "d []"), "empty array")
}

func Test_Dice_Fudge(t *testing.T) {
	ip := seededIP(t, 5)
	v, err := ip.EvalSource("100 dF()")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	xs := v.Data.([]Value)
	if len(xs) != 100 {
		t.Fatalf("want 100 rolls, got %d", len(xs))
	}
	for _, x := range xs {
		n := x.Data.(float64)
		if n != -1 && n != 0 && n != 1 {
			t.Fatalf("fudge die rolled %g", n)
		}
	}
}

func Test_Dice_RerollAcceptsOnTruthyCondition(t *testing.T) {
	ip := NewInterpreter()
	tickBuiltin(ip, []float64{1, 2, 3, 4})
	// The very first roll satisfies the condition and is kept as-is.
	v, err := ip.EvalSource("reroll(@_ tick(), @x x < 3)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	wantNum(t, v, 1)
}

func Test_Dice_RerollRetriesUntilAccepted(t *testing.T) {
	ip := NewInterpreter()
	tickBuiltin(ip, []float64{1, 2, 3, 4})
	// Rolls of 1 and 2 are rejected; the 3 is the first accepted roll.
	v, err := ip.EvalSource("reroll(@_ tick(), @x x >= 3)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	wantNum(t, v, 3)
}

func Test_Dice_RerollCapKeepsLastRoll(t *testing.T) {
	ip := NewInterpreter(WithMaxRerolls(5))
	tickBuiltin(ip, []float64{1, 2, 3, 4, 5, 6, 7})
	// The condition never accepts a roll; the fifth attempt stands anyway.
	v, err := ip.EvalSource("reroll(@_ tick(), @x 0)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	wantNum(t, v, 5)
}

func Test_Dice_Explode(t *testing.T) {
	ip := NewInterpreter()
	tickBuiltin(ip, []float64{6, 6, 2, 1})
	// First base roll chains through two sixes; second base roll is quiet.
	v, err := ip.EvalSource("explode(2, @_ tick(), @x x >= 6)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	wantNumArr(t, v, []float64{6, 6, 2, 1})
}

func Test_Dice_ExplodeZeroRolls(t *testing.T) {
	ip := NewInterpreter()
	tickBuiltin(ip, []float64{6})
	v, err := ip.EvalSource("explode(0, @_ tick(), @x 1)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	wantNumArr(t, v, nil)
}

func Test_Dice_Drop(t *testing.T) {
	// Dropping the minimum removes one instance, not every duplicate.
	wantNumArr(t, evalSrc(t, "drop(@rolls [min(rolls)], [4. 1. 3. 1])"), []float64{4, 3, 1})
	// Selected values cancel by multiset, preserving survivor order.
	wantNumArr(t, evalSrc(t, "drop(@rolls [1. 1], [4. 1. 3. 1])"), []float64{4, 3})
	wantNumArr(t, evalSrc(t, "drop(@rolls [], [2. 5])"), []float64{2, 5})
	// One 7 and both 2s go; the second 7 survives in place.
	wantNumArr(t,
		evalSrc(t, "drop(@_ [7. 2. 2], [3. 7. 9. 2. 15. 4. 5. 7])"),
		[]float64{3, 9, 15, 4, 5, 7})
}

func Test_Dice_HighestLowest(t *testing.T) {
	wantNumArr(t, evalSrc(t, "highest(2, [3. 1. 4. 1. 5])"), []float64{4, 5})
	wantNumArr(t, evalSrc(t, "lowest(2, [3. 1. 4. 1. 5])"), []float64{1, 1})
	// n clamps to the roll count.
	wantNumArr(t, evalSrc(t, "highest(9, [2. 1])"), []float64{1, 2})
	wantNumArr(t, evalSrc(t, "highest(0, [2. 1])"), nil)
}

func Test_Dice_KeepHighestIdiom(t *testing.T) {
	// 4d6 drop lowest. Deterministic via an injected roll source.
	ip := NewInterpreter()
	tickBuiltin(ip, []float64{4, 1, 6, 3})
	v, err := ip.EvalSource("... highest(3, 4 tick())")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	wantNum(t, v, 13)
}
