// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the CloudPrep CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cloudprep",
		Short: "CloudPrep - cloud certification study platform",
		Long: `CloudPrep serves a study platform for cloud certification exams:
account registration, login, session-gated tutorials, and password reset,
backed by a MongoDB user directory.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())

	return cmd
}
