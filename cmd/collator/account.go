// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"fmt"

	"github.com/ChainSafe/collator/lib/keystore"
	"github.com/urfave/cli"
)

// runAccountCommand generates, imports or lists the keys of the keystore
// under basepath.
func runAccountCommand(ctx *cli.Context, basepath string) error {
	switch {
	case ctx.Bool(GenerateFlag.Name):
		logger.Info("generating keypair...")
		password := passwordFromContext(ctx, "Enter password to encrypt keystore file:")

		file, mnemonic, err := keystore.GenerateKeypair(basepath, password)
		if err != nil {
			return fmt.Errorf("failed to generate keypair: %w", err)
		}

		logger.Info("generated key stored in " + file)
		_, err = fmt.Fprintf(ctx.App.Writer, "mnemonic: %s\n", mnemonic)
		return err

	case ctx.String(ImportRawFlag.Name) != "":
		logger.Info("importing raw key...")
		password := passwordFromContext(ctx, "Enter password to encrypt keystore file:")

		file, err := keystore.ImportRawPrivateKey(basepath, ctx.String(ImportRawFlag.Name), password)
		if err != nil {
			return fmt.Errorf("failed to import key: %w", err)
		}

		logger.Info("imported key stored in " + file)
		return nil

	case ctx.Bool(ListFlag.Name):
		addresses, err := keystore.ListKeys(basepath)
		if err != nil {
			return fmt.Errorf("failed to list keys: %w", err)
		}

		for i, address := range addresses {
			if _, err = fmt.Fprintf(ctx.App.Writer, "[%d] %s\n", i, address); err != nil {
				return err
			}
		}
		return nil

	default:
		return errNoAccountAction
	}
}
