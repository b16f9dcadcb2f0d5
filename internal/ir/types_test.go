package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpKindTags(t *testing.T) {
	// Tags are part of the wire contract and must never move.
	assert.Equal(t, OpKind(0), OpReset)
	assert.Equal(t, OpKind(1), OpAdd)
	assert.Equal(t, OpKind(2), OpSubtract)
	assert.Equal(t, OpKind(3), OpMultiply)
	assert.Equal(t, OpKind(4), OpDivide)
	assert.Equal(t, OpKind(5), OpSet)
}

func TestOpKindValid(t *testing.T) {
	for _, k := range OpKinds() {
		assert.True(t, k.Valid(), k.String())
	}
	for tag := len(OpKinds()); tag <= 255; tag++ {
		assert.False(t, OpKind(tag).Valid(), "tag %d", tag)
	}
}

func TestParseOpKind(t *testing.T) {
	for _, k := range OpKinds() {
		parsed, err := ParseOpKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseOpKind("modulo")
	assert.Error(t, err)
}

func TestOpKindStringUnknown(t *testing.T) {
	assert.Equal(t, "OpKind(9)", OpKind(9).String())
}

func TestOperationString(t *testing.T) {
	tests := []struct {
		op       Operation
		expected string
	}{
		{Operation{Kind: OpReset}, "reset"},
		{Operation{Kind: OpAdd, Operand: 2}, "add: 2"},
		{Operation{Kind: OpSubtract, Operand: 3}, "subtract: 3"},
		{Operation{Kind: OpMultiply, Operand: 4}, "multiply by: 4"},
		{Operation{Kind: OpDivide, Operand: 5}, "divide by: 5"},
		{Operation{Kind: OpSet, Operand: 6}, "set: 6"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.op.String())
		})
	}
}
