package ir

import "fmt"

// StateRecord is the persisted calculator state.
// Its storage form is exactly 4 bytes, little-endian, with no header.
type StateRecord struct {
	Value uint32 `json:"value"`
}

// OpKind is the discriminant selecting which arithmetic an Operation performs.
// It is encoded as the first byte of an instruction.
type OpKind uint8

const (
	OpReset OpKind = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpSet
)

var opKindNames = [...]string{
	OpReset:    "reset",
	OpAdd:      "add",
	OpSubtract: "subtract",
	OpMultiply: "multiply",
	OpDivide:   "divide",
	OpSet:      "set",
}

// OpKinds lists every recognized discriminant in tag order.
func OpKinds() []OpKind {
	return []OpKind{OpReset, OpAdd, OpSubtract, OpMultiply, OpDivide, OpSet}
}

// Valid reports whether k is one of the recognized discriminants.
func (k OpKind) Valid() bool {
	return int(k) < len(opKindNames)
}

func (k OpKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("OpKind(%d)", uint8(k))
	}
	return opKindNames[k]
}

// ParseOpKind resolves an operation name such as "add" to its discriminant.
func ParseOpKind(name string) (OpKind, error) {
	for k, n := range opKindNames {
		if n == name {
			return OpKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

// Operation is one decoded instruction. It is immutable once built.
type Operation struct {
	Kind    OpKind `json:"kind"`
	Operand uint32 `json:"operand"`
}

// String describes the operation for humans, e.g. "add: 5".
func (op Operation) String() string {
	switch op.Kind {
	case OpReset:
		return "reset"
	case OpMultiply:
		return fmt.Sprintf("multiply by: %d", op.Operand)
	case OpDivide:
		return fmt.Sprintf("divide by: %d", op.Operand)
	default:
		return fmt.Sprintf("%s: %d", op.Kind, op.Operand)
	}
}

// Account is one storage slot: the record bytes plus the identity allowed
// to transition them. Owner is fixed at creation.
type Account struct {
	Key        Identity `json:"key"`
	Owner      Identity `json:"owner"`
	Data       []byte   `json:"data"`
	Initial    []byte   `json:"initial"`
	CreatedSeq int64    `json:"created_seq"`
}

// Outcome classifies how an invocation ended.
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeAuthorization Outcome = "authorization"
	OutcomeDecoding      Outcome = "decoding"
	OutcomeEvaluation    Outcome = "evaluation"
	OutcomeFailed        Outcome = "failed"
)

// Invocation is one entry in the append-only invocation log.
// Failed invocations are logged too; for them After equals Before.
type Invocation struct {
	ID            string   `json:"id"` // Content-addressed hash
	FlowToken     string   `json:"flow_token"`
	Seq           int64    `json:"seq"` // Logical clock
	Account       Identity `json:"account"`
	Caller        Identity `json:"caller"`
	Instruction   []byte   `json:"instruction"`
	Before        []byte   `json:"before"`
	After         []byte   `json:"after"`
	Outcome       Outcome  `json:"outcome"`
	ErrorMessage  string   `json:"error_message,omitempty"`
	EngineVersion string   `json:"engine_version"`
	IRVersion     string   `json:"ir_version"`
}
