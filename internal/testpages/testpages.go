// Package testpages holds page texts shared by tests. The three texts are long
// enough to pass the default quality filter and far enough apart (SimHash
// distance 23 or more) that none is a near duplicate of another.
package testpages

import (
	_ "embed"
	"strings"
)

var (
	//go:embed pages/ml.txt
	ml string
	//go:embed pages/systems.txt
	systems string
	//go:embed pages/history.txt
	history string
)

// ML describes a research group
var ML = strings.TrimSpace(ml)

// Systems describes a systems lab
var Systems = strings.TrimSpace(systems)

// History describes the school's history
var History = strings.TrimSpace(history)
