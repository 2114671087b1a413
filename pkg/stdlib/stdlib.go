package stdlib

import (
	"github.com/agenthands/ndeque/pkg/vm"
)

// Instructions returns a fresh instruction table holding every built-in.
func Instructions() map[string]vm.Instruction {
	return map[string]vm.Instruction{
		// Stack
		"clear": {Arity: 0, Fn: Clear},
		"pop":   {Arity: 1, Fn: Pop},
		"$":     {Arity: 1, Fn: Pop},
		"dup":   {Arity: 0, Fn: Dup},
		"rot":   {Arity: vm.Variadic, Fn: Rot},
		"over":  {Arity: vm.Variadic, Fn: Over},
		"swap":  {Arity: 2, Fn: Swap},
		"len":   {Arity: 0, Fn: Len},

		// Casting
		"toInt":   {Arity: 1, Fn: ToInt},
		"toFloat": {Arity: 1, Fn: ToFloat},
		"toChar":  {Arity: 1, Fn: ToChar},
		"toBool":  {Arity: 1, Fn: ToBool},

		// Arithmetic
		"+":   {Arity: 2, Fn: Add},
		"-":   {Arity: 2, Fn: Sub},
		"*":   {Arity: 2, Fn: Mul},
		"/":   {Arity: 2, Fn: Div},
		"//":  {Arity: 2, Fn: FloatDiv},
		"%":   {Arity: 2, Fn: Mod},
		"exp": {Arity: 2, Fn: Exp},
		"log": {Arity: 2, Fn: Log},
		"--":  {Arity: 1, Fn: Dec},
		"++":  {Arity: 1, Fn: Inc},
		"&":   {Arity: 2, Fn: BitAnd},
		"|":   {Arity: 2, Fn: BitOr},
		"^":   {Arity: 2, Fn: BitXor},
		"n":   {Arity: 1, Fn: BitNot},

		// Comparison
		"=":  {Arity: 2, Fn: Eq},
		"ne": {Arity: 2, Fn: Ne},
		"<":  {Arity: 2, Fn: Lt},
		">":  {Arity: 2, Fn: Gt},
		"<=": {Arity: 2, Fn: Le},
		">=": {Arity: 2, Fn: Ge},

		// Logical
		"nn": {Arity: 1, Fn: Not},
		"&&": {Arity: 2, Fn: And},
		"||": {Arity: 2, Fn: Or},

		// List
		"l+": {Arity: 2, Fn: ListConcat},
		"lj": {Arity: 1, Fn: ListJoin},
		"l/": {Arity: 3, Fn: ListSlice},
		"li": {Arity: 2, Fn: ListIndex},
		"ll": {Arity: 1, Fn: ListLen},
		"lb": {Arity: vm.Variadic, Fn: ListBundle},
		"ld": {Arity: 1, Fn: ListDump},

		// List functions
		"map":    {Arity: 2, Fn: Map},
		"filter": {Arity: 2, Fn: Filter},
		"reduce": {Arity: 3, Fn: Reduce},

		// Control flow
		"exec":  {Arity: 1, Fn: Exec},
		"loop":  {Arity: 1, Fn: Loop},
		"range": {Arity: 4, Fn: Range},
		"while": {Arity: 2, Fn: While},
		"ite":   {Arity: 3, Fn: IfThenElse},

		// I/O
		"il": {Arity: 0, Fn: ReadLine},
		"ia": {Arity: 0, Fn: ReadAll},
		"ol": {Arity: 1, Fn: WriteLine},
		"ow": {Arity: 1, Fn: Write},
	}
}

// NewMachine returns a machine wired with the full instruction table.
func NewMachine() *vm.Machine {
	return vm.NewMachine(Instructions())
}
