// dice.go — the randomness builtins: die rolls and the roll-manipulation
// combinators (reroll, explode, drop, highest, lowest).
//
// All randomness flows through the Interpreter's single rand source so a
// seeded interpreter replays identically. The combinators take their roll
// as a function value rather than a number so that each invocation is an
// independent sample; a "roll function" is any function of one (ignored)
// argument, conventionally called with the unit value.
package eurydice

import (
	"math"
	"sort"
)

func registerDice(ip *Interpreter) {
	reg := ip.RegisterBuiltin

	// d n rolls one die with round(n) sides, uniform on [1, sides].
	// d applied to an array picks a uniformly random element instead,
	// descending recursively into nested arrays until it hits a leaf.
	reg("d", 1, func(ip *Interpreter, m *Machine, args []Value) {
		switch args[0].Tag {
		case VTNum:
			sides := int(math.Round(args[0].Data.(float64)))
			if sides < 1 {
				m.Fail("Cannot roll a die with %d sides", sides)
			}
			m.Yield(Num(float64(1 + ip.Rand.Intn(sides))))
		case VTArray:
			var pick func(xs []Value) Value
			pick = func(xs []Value) Value {
				if len(xs) == 0 {
					m.Fail("Cannot roll on an empty array")
				}
				c := xs[ip.Rand.Intn(len(xs))]
				if c.Tag == VTArray {
					return pick(c.Data.([]Value))
				}
				return c
			}
			m.Yield(pick(args[0].Data.([]Value)))
		default:
			m.Fail("Expected number or array of faces, got %s", FormatValue(args[0]))
		}
	})

	// dF rolls one Fudge die: -1, 0, or 1 with equal probability. The
	// argument is ignored; it exists so dF can be called like any other
	// roll function, `dF()`.
	reg("dF", 1, func(ip *Interpreter, m *Machine, args []Value) {
		m.Yield(Num(float64(ip.Rand.Intn(3) - 1)))
	})

	// reroll roll cond: sample roll() until cond(result) is truthy and
	// return that result. After MaxRerolls attempts the last result
	// stands, with no error; a condition that never accepts must still
	// terminate.
	reg("reroll", 2, func(ip *Interpreter, m *Machine, args []Value) {
		rollFn := needFun(m, args[0])
		condFn := needFun(m, args[1])
		attempts := 0
		var attempt func()
		attempt = func() {
			attempts++
			m.PushCont(func(r Value) {
				if attempts >= ip.MaxRerolls {
					m.Yield(r)
					return
				}
				m.PushCont(func(c Value) {
					if valueTruthy(c) {
						m.Yield(r)
					} else {
						attempt()
					}
				})
				m.Call(condFn, r)
			})
			m.Call(rollFn, Null)
		}
		attempt()
	})

	// explode n roll cond: make round(n) base rolls; every roll whose
	// cond(result) is truthy immediately triggers one extra roll, which
	// is itself tested, so chains are unbounded. Results are returned in
	// roll order with each chain inline after the roll that spawned it.
	reg("explode", 3, func(ip *Interpreter, m *Machine, args []Value) {
		n := int(math.Round(needNum(m, args[0])))
		rollFn := needFun(m, args[1])
		condFn := needFun(m, args[2])

		out := []Value{}
		remaining := n
		var next func()
		next = func() {
			if remaining <= 0 {
				m.Yield(Arr(out))
				return
			}
			remaining--
			m.PushCont(func(r Value) {
				out = append(out, r)
				m.PushCont(func(c Value) {
					if valueTruthy(c) {
						remaining++
					}
					next()
				})
				m.Call(condFn, r)
			})
			m.Call(rollFn, Null)
		}
		next()
	})

	// drop select rolls: select receives the whole rolls array and returns
	// the values to discard. Removal is by multiset: each selected value
	// cancels at most one structurally equal roll, and survivors keep
	// their original order.
	reg("drop", 2, func(ip *Interpreter, m *Machine, args []Value) {
		selFn := needFun(m, args[0])
		rolls := needArr(m, args[1])
		m.PushCont(func(sel Value) {
			rm := append([]Value(nil), needArr(m, sel)...)
			out := make([]Value, 0, len(rolls))
			for _, r := range rolls {
				matched := -1
				for i, d := range rm {
					if deepEqual(r, d) {
						matched = i
						break
					}
				}
				if matched >= 0 {
					rm = append(rm[:matched], rm[matched+1:]...)
				} else {
					out = append(out, r)
				}
			}
			m.Yield(Arr(out))
		})
		m.Call(selFn, args[1])
	})

	reg("highest", 2, func(ip *Interpreter, m *Machine, args []Value) {
		m.Yield(pickEnd(m, args[0], args[1], false))
	})
	reg("lowest", 2, func(ip *Interpreter, m *Machine, args []Value) {
		m.Yield(pickEnd(m, args[0], args[1], true))
	})
}

// pickEnd implements highest/lowest n rolls: sort a copy of the numeric
// rolls (ascending for highest, descending for lowest) and keep the last
// round(n) entries. n clamps to [0, len(rolls)].
func pickEnd(m *Machine, nv, rollsv Value, descending bool) Value {
	n := int(math.Round(needNum(m, nv)))
	ns := needNums(m, rollsv)
	if n < 0 {
		n = 0
	}
	if n > len(ns) {
		n = len(ns)
	}
	sorted := append([]float64(nil), ns...)
	if descending {
		sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	} else {
		sort.Float64s(sorted)
	}
	out := make([]Value, 0, n)
	for _, x := range sorted[len(sorted)-n:] {
		out = append(out, Num(x))
	}
	return Arr(out)
}
