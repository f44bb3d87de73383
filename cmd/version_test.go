package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCommandHidden(t *testing.T) {
	assert.True(t, versionCmd.Hidden)
}

func TestVersionCommandOutput(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, version+"\n", buf.String())
}
