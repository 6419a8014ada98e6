// regnav - terminal navigator for the EU AI Act and GDPR legal assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/jeranaias/regnav/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
