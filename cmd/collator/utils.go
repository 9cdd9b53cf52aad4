// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/ChainSafe/collator/internal/log"
	"github.com/urfave/cli"
	terminal "golang.org/x/term"
)

const confirmCharacter = "Y"

// setupLogger sets up the global collator logger, at info level unless
// --log is set.
func setupLogger(ctx *cli.Context) (level log.Level, err error) {
	lvl := ctx.String(LogFlag.Name)
	switch lvlToInt, atoiErr := strconv.Atoi(lvl); {
	case lvl == "":
		level = log.Info
	case atoiErr == nil:
		level = log.Level(lvlToInt)
	default:
		level, err = log.ParseLevel(lvl)
		if err != nil {
			return 0, err
		}
	}

	log.Patch(
		log.SetWriter(os.Stdout),
		log.SetFormat(log.FormatConsole),
		log.SetCaller(true),
		log.SetLevel(level),
	)

	return level, nil
}

// getPassword prompts user to enter password
func getPassword(msg string) []byte {
	for {
		fmt.Println(msg)
		fmt.Print("> ")
		password, err := terminal.ReadPassword(int(syscall.Stdin))
		if err != nil {
			fmt.Printf("invalid input: %s\n", err)
		} else {
			fmt.Printf("\n")
			return password
		}
	}
}

// passwordFromContext returns the --password value, prompting for one when
// the flag is unset.
func passwordFromContext(ctx *cli.Context, msg string) []byte {
	if password := ctx.String(PasswordFlag.Name); password != "" {
		return []byte(password)
	}
	return getPassword(msg)
}

// confirmMessage prompts user to confirm message and returns true if "Y"
func confirmMessage(msg string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println(msg)
	fmt.Print("> ")
	text, _ := reader.ReadString('\n')
	text = strings.TrimSpace(text)
	return strings.EqualFold(confirmCharacter, text)
}
