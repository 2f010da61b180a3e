package yosys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleNetlist = `{
  "creator": "Yosys 0.38",
  "modules": {
    "top": {
      "ports": {
        "clk": {"direction": "input", "bits": [2]},
        "q":   {"direction": "output", "bits": [3, "4", 5]}
      },
      "cells": {
        "inv0": {
          "type": "$not",
          "port_directions": {"A": "input", "Y": "output"},
          "connections": {"A": ["1", "0", "x"], "Y": [3, 4, 5]}
        }
      }
    }
  }
}`

func TestParseNormalizesBitEncodings(t *testing.T) {
	n, err := Parse([]byte(sampleNetlist))
	require.NoError(t, err)
	require.Contains(t, n.Modules, "top")

	mod := n.Modules["top"]
	q := mod.Ports["q"]
	require.NotNil(t, q)
	require.Equal(t, []BitID{3, 4, 5}, q.Bits, "numeric strings must normalize to numbers")

	inv := mod.Cells["inv0"]
	require.NotNil(t, inv)
	require.Equal(t, []BitID{BitHigh, BitLow, BitLow}, inv.Connections["A"],
		"constant strings and x levels must normalize to reserved bits")
}

func TestParseRejectsMalformedBits(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"non-numeric string", `{"modules":{"m":{"ports":{"p":{"direction":"input","bits":["abc"]}},"cells":{}}}}`},
		{"negative id", `{"modules":{"m":{"ports":{"p":{"direction":"input","bits":[-3]}},"cells":{}}}}`},
		{"empty document", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
		})
	}
}

func TestConstBits(t *testing.T) {
	require.True(t, BitLow.Const())
	require.True(t, BitHigh.Const())
	require.False(t, BitID(2).Const())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "design.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleNetlist), 0o644))

	n, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Yosys 0.38", n.Creator)

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
