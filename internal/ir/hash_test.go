package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvocation() Invocation {
	return Invocation{
		FlowToken:   "flow-1",
		Seq:         7,
		Account:     NamedIdentity("counter"),
		Caller:      NamedIdentity("alice"),
		Instruction: []byte{1, 5, 0, 0, 0},
		Before:      []byte{10, 0, 0, 0},
	}
}

func TestInvocationIDDeterministic(t *testing.T) {
	a, err := InvocationID(sampleInvocation())
	require.NoError(t, err)
	b, err := InvocationID(sampleInvocation())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestInvocationIDIgnoresOutcome(t *testing.T) {
	inv := sampleInvocation()
	base := MustInvocationID(inv)

	inv.After = []byte{15, 0, 0, 0}
	inv.Outcome = OutcomeOK
	inv.ErrorMessage = "ignored"
	assert.Equal(t, base, MustInvocationID(inv))
}

func TestInvocationIDCoversInputs(t *testing.T) {
	base := MustInvocationID(sampleInvocation())

	mutations := map[string]func(*Invocation){
		"flow token":  func(inv *Invocation) { inv.FlowToken = "flow-2" },
		"seq":         func(inv *Invocation) { inv.Seq = 8 },
		"account":     func(inv *Invocation) { inv.Account = NamedIdentity("other") },
		"caller":      func(inv *Invocation) { inv.Caller = NamedIdentity("bob") },
		"instruction": func(inv *Invocation) { inv.Instruction = []byte{1, 6, 0, 0, 0} },
		"before":      func(inv *Invocation) { inv.Before = []byte{11, 0, 0, 0} },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			inv := sampleInvocation()
			mutate(&inv)
			assert.NotEqual(t, base, MustInvocationID(inv))
		})
	}
}
