// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

// Format is the format of the logger output.
type Format uint8

const (
	// FormatConsole writes plain lines with a coloured level.
	FormatConsole Format = iota
	// FormatNoColour writes plain lines without colours,
	// which is what files and tests want.
	FormatNoColour
)
