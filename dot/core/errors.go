// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package core

import (
	"errors"
)

var (
	// ErrNilBlockState is returned when BlockState is nil
	ErrNilBlockState = errors.New("cannot have nil BlockState")

	// ErrNilStorageState is returned when StorageState is nil
	ErrNilStorageState = errors.New("cannot have nil StorageState")

	// ErrNilEngine is returned when the state transition engine is nil
	ErrNilEngine = errors.New("cannot have nil state transition engine")

	// ErrNilBlockHandlerParameter is returned when a block handler is given a nil parameter
	ErrNilBlockHandlerParameter = errors.New("unable to handle block due to nil parameter")
)
