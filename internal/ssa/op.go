// Package ssa implements the SSA (Static Single Assignment) intermediate
// representation that Kaleidoscope functions are lowered to before they are
// emitted as LLVM IR or executed.
package ssa

// Op represents an SSA operation code.
type Op int

const (
	OpInvalid Op = iota

	// Constants
	OpConstFloat // float constant; AuxFloat = value

	// Parameters
	OpArg // function argument; AuxInt = param index; Aux = param name

	// Memory
	OpAlloca // stack slot for a variable; Aux = variable name
	OpLoad   // load from slot; Args[0] = alloca
	OpStore  // store to slot; Args[0] = alloca, Args[1] = val; void

	// Float arithmetic
	OpAddF64 // float + float
	OpSubF64 // float - float
	OpMulF64 // float * float

	// Float comparison, result is a bool
	OpLtF64  // float < float, true when unordered
	OpEqF64  // float == float, true when unordered
	OpNeqF64 // float != float, false when unordered

	// Conversion
	OpBoolToFloat // bool → 1.0 / 0.0

	// Calls
	OpStaticCall // direct call; Aux = callee name; Args = arguments

	// SSA-specific
	OpPhi // φ function; Args = one per predecessor

	opCount // sentinel; must be last
)

// OpInfo holds metadata about an SSA operation.
type OpInfo struct {
	Name   string // human-readable name
	IsPure bool   // true if the op has no side effects
	IsVoid bool   // true if the op produces no value
	Result Type   // result type of the op
}

// opInfoTable maps each Op to its OpInfo.
// Index by Op value.
var opInfoTable = [opCount]OpInfo{
	OpInvalid: {Name: "Invalid"},

	OpConstFloat: {Name: "ConstFloat", IsPure: true, Result: TypeFloat},
	OpArg:        {Name: "Arg", IsPure: true, Result: TypeFloat},

	// Memory: not pure
	OpAlloca: {Name: "Alloca", Result: TypePtr},
	OpLoad:   {Name: "Load", Result: TypeFloat},
	OpStore:  {Name: "Store", IsVoid: true, Result: TypeVoid},

	OpAddF64: {Name: "AddF64", IsPure: true, Result: TypeFloat},
	OpSubF64: {Name: "SubF64", IsPure: true, Result: TypeFloat},
	OpMulF64: {Name: "MulF64", IsPure: true, Result: TypeFloat},

	OpLtF64:  {Name: "LtF64", IsPure: true, Result: TypeBool},
	OpEqF64:  {Name: "EqF64", IsPure: true, Result: TypeBool},
	OpNeqF64: {Name: "NeqF64", IsPure: true, Result: TypeBool},

	OpBoolToFloat: {Name: "BoolToFloat", IsPure: true, Result: TypeFloat},

	// Calls may print or recurse: not pure
	OpStaticCall: {Name: "StaticCall", Result: TypeFloat},

	OpPhi: {Name: "Phi", IsPure: true, Result: TypeFloat},
}

// String returns the human-readable name of the op.
func (o Op) String() string {
	return o.Info().Name
}

// Info returns the OpInfo for this op.
func (o Op) Info() OpInfo {
	if o >= 0 && int(o) < len(opInfoTable) {
		return opInfoTable[o]
	}
	return OpInfo{Name: "unknown"}
}

// IsPure returns true if this op has no side effects.
func (o Op) IsPure() bool {
	return o.Info().IsPure
}

// IsVoid returns true if this op produces no value.
func (o Op) IsVoid() bool {
	return o.Info().IsVoid
}

// Type is the type of an SSA value. Source programs only know float64;
// the others appear during lowering.
type Type uint8

const (
	TypeVoid Type = iota
	TypeFloat
	TypeBool
	TypePtr
)

var typeNames = [...]string{
	TypeVoid:  "void",
	TypeFloat: "double",
	TypeBool:  "i1",
	TypePtr:   "ptr",
}

// String returns the LLVM spelling of the type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}
