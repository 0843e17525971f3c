package debug_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/i2/radix-engine-library/constraintmachine/debug"
)

func TestBuildAndDump_OrdersClassesAndShapesDeterministically(t *testing.T) {
	tokens := []debug.TokenDescriptor{
		{InputClass: "token", InputUsedType: "Fungible", OutputClass: "rri", OutputUsedType: "Void"},
		{InputClass: "rri", InputUsedType: "Void", OutputClass: "token", OutputUsedType: "Fungible"},
		{InputClass: "token", InputUsedType: "Void", OutputClass: "token", OutputUsedType: "Void"},
	}

	tg, err := debug.Build(tokens)
	require.NoError(t, err)

	dump, err := tg.Dump()
	require.NoError(t, err)
	require.Equal(t,
		"rri:\n  -> token [(Void,Fungible)]\ntoken:\n  -> rri [(Fungible,Void)]\n  -> token [(Void,Void)]\n",
		dump)
}

func TestBuild_DuplicateEdgeIsNotAnError(t *testing.T) {
	tokens := []debug.TokenDescriptor{
		{InputClass: "a", InputUsedType: "Void", OutputClass: "b", OutputUsedType: "Void"},
		{InputClass: "a", InputUsedType: "Fungible", OutputClass: "b", OutputUsedType: "Fungible"},
	}

	tg, err := debug.Build(tokens)
	require.NoError(t, err)

	dump, err := tg.Dump()
	require.NoError(t, err)
	require.Equal(t, "a:\n  -> b [(Void,Void) (Fungible,Fungible)]\n", dump)
}
